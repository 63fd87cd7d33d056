package editor

import (
	"unicode"

	"github.com/sobir-git/fire-notes/internal/rope"
)

type charClass int

const (
	classWord charClass = iota
	classSpace
	classOther
)

func classify(r rune) charClass {
	switch {
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	}
	return classOther
}

// prevWordBoundary walks left from caret: first across whitespace, then
// across the run sharing the class of the first non-space rune.
func prevWordBoundary(buf *rope.Buffer, caret int) int {
	i := caret
	for i > 0 {
		r, err := buf.RuneAt(i - 1)
		if err != nil || classify(r) != classSpace {
			break
		}
		i--
	}
	if i == 0 {
		return 0
	}
	first, err := buf.RuneAt(i - 1)
	if err != nil {
		return i
	}
	cls := classify(first)
	for i > 0 {
		r, err := buf.RuneAt(i - 1)
		if err != nil || classify(r) != cls {
			break
		}
		i--
	}
	return i
}

// nextWordBoundary mirrors prevWordBoundary to the right.
func nextWordBoundary(buf *rope.Buffer, caret int) int {
	n := buf.Len()
	i := caret
	for i < n {
		r, err := buf.RuneAt(i)
		if err != nil || classify(r) != classSpace {
			break
		}
		i++
	}
	if i >= n {
		return n
	}
	first, err := buf.RuneAt(i)
	if err != nil {
		return i
	}
	cls := classify(first)
	for i < n {
		r, err := buf.RuneAt(i)
		if err != nil || classify(r) != cls {
			break
		}
		i++
	}
	return i
}

// wordRangeAt expands around offset to the run sharing its class. Whitespace
// positions fall back to the run on their left.
func wordRangeAt(buf *rope.Buffer, offset int) (int, int, bool) {
	n := buf.Len()
	if n == 0 {
		return 0, 0, false
	}
	probe := offset
	if probe >= n {
		probe = n - 1
	}
	r, err := buf.RuneAt(probe)
	if err != nil {
		return 0, 0, false
	}
	if classify(r) == classSpace {
		if probe == 0 {
			return 0, 0, false
		}
		probe--
		if r, err = buf.RuneAt(probe); err != nil || classify(r) == classSpace {
			return 0, 0, false
		}
	}
	cls := classify(r)
	start, end := probe, probe+1
	for start > 0 {
		r, err := buf.RuneAt(start - 1)
		if err != nil || classify(r) != cls {
			break
		}
		start--
	}
	for end < n {
		r, err := buf.RuneAt(end)
		if err != nil || classify(r) != cls {
			break
		}
		end++
	}
	return start, end, true
}
