package rope

import (
	"errors"
	"testing"
)

func mustBuffer(t *testing.T, text string) *Buffer {
	t.Helper()
	b, err := NewFromString(text)
	if err != nil {
		t.Fatalf("building buffer from %q failed: %v", text, err)
	}
	return b
}

func TestOffsetToLineCol(t *testing.T) {
	b := mustBuffer(t, "one\ntwo\n\nfour")
	cases := []struct {
		offset, line, col int
	}{
		{0, 0, 0},
		{3, 0, 3},
		{4, 1, 0},
		{7, 1, 3},
		{8, 2, 0},
		{9, 3, 0},
		{13, 3, 4},
	}
	for _, c := range cases {
		line, col, err := b.OffsetToLineCol(c.offset)
		if err != nil {
			t.Fatalf("offset %d: %v", c.offset, err)
		}
		if line != c.line || col != c.col {
			t.Fatalf("offset %d: got %d:%d, want %d:%d", c.offset, line, col, c.line, c.col)
		}
	}
	if _, _, err := b.OffsetToLineCol(14); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange past end, got %v", err)
	}
}

func TestLineColToOffset(t *testing.T) {
	b := mustBuffer(t, "one\ntwo\n\nfour")
	for offset := 0; offset <= b.Len(); offset++ {
		line, col, err := b.OffsetToLineCol(offset)
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		back, err := b.LineColToOffset(line, col)
		if err != nil {
			t.Fatalf("line %d col %d: %v", line, col, err)
		}
		if back != offset {
			t.Fatalf("round trip of offset %d gave %d", offset, back)
		}
	}
	if _, err := b.LineColToOffset(4, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for bad line, got %v", err)
	}
	if _, err := b.LineColToOffset(0, 4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for col past line end, got %v", err)
	}
}

func TestLineStartEnd(t *testing.T) {
	b := mustBuffer(t, "one\ntwo\n\nfour")
	starts := []int{0, 4, 8, 9}
	ends := []int{3, 7, 8, 13}
	for line := 0; line < b.LineCount(); line++ {
		start, err := b.LineStart(line)
		if err != nil {
			t.Fatalf("line %d start: %v", line, err)
		}
		end, err := b.LineEnd(line)
		if err != nil {
			t.Fatalf("line %d end: %v", line, err)
		}
		if start != starts[line] || end != ends[line] {
			t.Fatalf("line %d: got [%d, %d), want [%d, %d)", line, start, end, starts[line], ends[line])
		}
	}
}

func TestLineText(t *testing.T) {
	b := mustBuffer(t, "one\ntwo\n\nfour")
	want := []string{"one", "two", "", "four"}
	for line, text := range want {
		got, err := b.Line(line)
		if err != nil {
			t.Fatalf("line %d: %v", line, err)
		}
		if got != text {
			t.Fatalf("line %d: got %q, want %q", line, got, text)
		}
	}
}

func TestTrailingNewline(t *testing.T) {
	b := mustBuffer(t, "one\n")
	if b.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.LineCount())
	}
	start, err := b.LineStart(1)
	if err != nil || start != 4 {
		t.Fatalf("expected last line start 4, got %d, %v", start, err)
	}
	end, err := b.LineEnd(1)
	if err != nil || end != 4 {
		t.Fatalf("expected last line end 4, got %d, %v", end, err)
	}
}
