package cli

import (
	"io"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"
)

// barProgress reports indexing progress as a bar on stderr
type barProgress struct {
	w       io.Writer
	verbose bool
	bar     *progressbar.ProgressBar
}

func newBarProgress(w io.Writer, verbose bool) *barProgress {
	return &barProgress{w: w, verbose: verbose}
}

func (p *barProgress) Start(totalFiles int) {
	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Parsing sources"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(p.w, "\n")
		}),
	)
}

// FileDone is called from worker goroutines; ProgressBar.Add locks internally.
func (p *barProgress) FileDone(path string, facts int, err error) {
	if err != nil && p.verbose {
		log.Printf("index: %s: %v", path, err)
	}
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
