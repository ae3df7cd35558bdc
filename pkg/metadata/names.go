package metadata

// CompareSymbolNames is the total order used to sort declarations by name.
//
// Names are compared byte by byte with ASCII letters folded to lower case.
// When two names are equal under folding, the first position at which they
// differ decides, and the lowercase letter sorts first; so "foo" < "Foo" <
// "FOO". Bytes outside ASCII, operator names ("operator<=") and conversion
// names ("operator bool") are ordered by their raw bytes like any other name.
// Names that are equal ignoring ASCII case are therefore always adjacent.
func CompareSymbolNames(a, b string) int {
	n := min(len(a), len(b))
	tie := 0
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		la, lb := lowerASCII(ca), lowerASCII(cb)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		if tie == 0 {
			if ca == la {
				tie = -1
			} else {
				tie = 1
			}
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return tie
}

// EqualFoldASCII reports whether a and b are equal ignoring ASCII case.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
