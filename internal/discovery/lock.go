package discovery

import "sync"

// IndexLock allows one indexing run per source root at a time. Runs on
// different roots proceed concurrently.
type IndexLock struct {
	held sync.Map // root -> struct{}
}

// TryAcquire claims root without blocking. It returns false while another
// run holds it.
func (l *IndexLock) TryAcquire(root string) bool {
	_, busy := l.held.LoadOrStore(root, struct{}{})
	return !busy
}

// Release frees root. Only the caller that acquired it may release it.
func (l *IndexLock) Release(root string) {
	l.held.Delete(root)
}

// Held reports whether a run on root is in progress
func (l *IndexLock) Held(root string) bool {
	_, ok := l.held.Load(root)
	return ok
}
