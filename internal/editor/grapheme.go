package editor

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/sobir-git/fire-notes/internal/rope"
)

// graphemeWindow bounds how much context the cluster scans read. Real-world
// clusters stay far below this.
const graphemeWindow = 64

// prevClusterLen is the rune length of the grapheme cluster ending at offset,
// zero at the start of the buffer.
func prevClusterLen(buf *rope.Buffer, offset int) int {
	if offset <= 0 {
		return 0
	}
	start := offset - graphemeWindow
	if start < 0 {
		start = 0
	}
	window, err := buf.Slice(start, offset)
	if err != nil || window == "" {
		return 0
	}
	var last string
	state := -1
	rest := window
	for len(rest) > 0 {
		last, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
	}
	return utf8.RuneCountInString(last)
}

// nextClusterLen is the rune length of the grapheme cluster starting at
// offset, zero at the end of the buffer.
func nextClusterLen(buf *rope.Buffer, offset int) int {
	if offset >= buf.Len() {
		return 0
	}
	end := offset + graphemeWindow
	if end > buf.Len() {
		end = buf.Len()
	}
	window, err := buf.Slice(offset, end)
	if err != nil || window == "" {
		return 0
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(window, -1)
	return utf8.RuneCountInString(cluster)
}
