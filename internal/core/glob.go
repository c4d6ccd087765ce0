package core

import "strings"

// globMatch reports whether name matches pattern case-insensitively.
// Only * (any run) and ? (any single byte) are special; there are no
// character classes and no path separator semantics.
func globMatch(pattern, name string) bool {
	return matchBytes([]byte(strings.ToLower(pattern)), []byte(strings.ToLower(name)))
}

func matchBytes(p, t []byte) bool {
	switch {
	case len(p) == 0:
		return len(t) == 0
	case p[0] == '*':
		return matchBytes(p[1:], t) || (len(t) > 0 && matchBytes(p, t[1:]))
	case len(t) == 0:
		return false
	case p[0] == '?':
		return matchBytes(p[1:], t[1:])
	case p[0] == t[0]:
		return matchBytes(p[1:], t[1:])
	default:
		return false
	}
}
