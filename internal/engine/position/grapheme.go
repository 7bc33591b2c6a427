package position

import "github.com/rivo/uniseg"

// Grapheme helpers operate on decoded text. A grapheme cluster is one
// user-perceived character and may span several scalar values, so cursor
// movement by graphemes differs from movement by CharIndex.

// Graphemes returns the number of grapheme clusters in s.
func Graphemes(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// NextGrapheme returns the byte offset just past the grapheme cluster
// starting at off. Offsets at or past the end return len(s).
func NextGrapheme(s string, off int) int {
	if off >= len(s) {
		return len(s)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[off:], -1)
	return off + len(cluster)
}

// PrevGrapheme returns the byte offset of the grapheme cluster boundary
// strictly before off, or 0.
func PrevGrapheme(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off > len(s) {
		off = len(s)
	}

	prev := 0
	rest := s
	state := -1
	consumed := 0
	for len(rest) > 0 {
		cluster, tail, _, st := uniseg.FirstGraphemeClusterInString(rest, state)
		next := consumed + len(cluster)
		if next >= off {
			return prev
		}
		prev = next
		consumed = next
		rest = tail
		state = st
	}
	return prev
}
