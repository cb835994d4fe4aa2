// Package pathlist implements membership updates on a Windows style PATH
// value: a ';' separated list of directories compared case-insensitively.
package pathlist

import "strings"

const (
	// ListSeparator delimits segments of a PATH value.
	ListSeparator = ";"
	// DirSeparator is the trailing separator tolerated when matching a segment.
	DirSeparator = `\`
)

// Split returns the segments of p in order. Empty segments are kept so that
// joining the result with ListSeparator reproduces p.
func Split(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, ListSeparator)
}

// Match reports whether segment names dir. The comparison ignores case and
// also accepts the segment carrying one trailing directory separator.
func Match(segment, dir string) bool {
	if dir == "" {
		return false
	}
	return strings.EqualFold(segment, dir) || strings.EqualFold(segment, dir+DirSeparator)
}

// Index returns the position of the first segment of p matching dir, or -1.
func Index(p, dir string) int {
	for i, seg := range Split(p) {
		if Match(seg, dir) {
			return i
		}
	}
	return -1
}

// NeedsEntry reports whether dir is missing from p and should be appended.
func NeedsEntry(dir, p string) bool {
	return Index(p, dir) < 0
}

// Append returns p with dir added as the last segment. p is returned as is
// when it already contains dir, so repeated calls add a single entry.
func Append(p, dir string) string {
	if dir == "" || !NeedsEntry(dir, p) {
		return p
	}
	if p == "" {
		return dir
	}
	if strings.HasSuffix(p, ListSeparator) {
		return p + dir
	}
	return p + ListSeparator + dir
}

// Remove deletes the first segment of p matching dir together with one
// adjoining separator. Other segments keep their order and spelling. The
// boolean is false, and p is returned unchanged, when dir is not present.
func Remove(p, dir string) (string, bool) {
	segs := Split(p)
	i := Index(p, dir)
	if i < 0 {
		return p, false
	}
	out := make([]string, 0, len(segs)-1)
	out = append(out, segs[:i]...)
	out = append(out, segs[i+1:]...)
	return strings.Join(out, ListSeparator), true
}

// Count returns how many segments of p match dir.
func Count(p, dir string) int {
	n := 0
	for _, seg := range Split(p) {
		if Match(seg, dir) {
			n++
		}
	}
	return n
}
