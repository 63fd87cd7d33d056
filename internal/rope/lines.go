package rope

import "fmt"

// OffsetToLineCol converts a rune offset into zero-based line and column
// coordinates. Column is measured in runes from the line start.
func (b *Buffer) OffsetToLineCol(offset int) (int, int, error) {
	if offset < 0 || offset > b.Len() {
		return 0, 0, fmt.Errorf("rope: offset %d in buffer of length %d: %w", offset, b.Len(), ErrIndexOutOfRange)
	}
	line := b.breaksBefore(offset)
	if line == 0 {
		return 0, offset, nil
	}
	start := b.offsetOfBreak(line-1) + 1
	return line, offset - start, nil
}

// LineColToOffset converts zero-based line/column coordinates back into a
// rune offset. Column may be at most the line's length.
func (b *Buffer) LineColToOffset(line, col int) (int, error) {
	if line < 0 || line >= b.LineCount() || col < 0 {
		return 0, fmt.Errorf("rope: line %d col %d in buffer of %d lines: %w", line, col, b.LineCount(), ErrIndexOutOfRange)
	}
	start, err := b.LineStart(line)
	if err != nil {
		return 0, err
	}
	end, err := b.LineEnd(line)
	if err != nil {
		return 0, err
	}
	if col > end-start {
		return 0, fmt.Errorf("rope: col %d beyond line %d of length %d: %w", col, line, end-start, ErrIndexOutOfRange)
	}
	return start + col, nil
}

// LineStart is the offset of the first rune of line.
func (b *Buffer) LineStart(line int) (int, error) {
	if line < 0 || line >= b.LineCount() {
		return 0, fmt.Errorf("rope: line %d in buffer of %d lines: %w", line, b.LineCount(), ErrIndexOutOfRange)
	}
	if line == 0 {
		return 0, nil
	}
	return b.offsetOfBreak(line-1) + 1, nil
}

// LineEnd is the offset just past the last rune of line, excluding the
// terminating newline when one exists.
func (b *Buffer) LineEnd(line int) (int, error) {
	if line < 0 || line >= b.LineCount() {
		return 0, fmt.Errorf("rope: line %d in buffer of %d lines: %w", line, b.LineCount(), ErrIndexOutOfRange)
	}
	if line == b.LineCount()-1 {
		return b.Len(), nil
	}
	return b.offsetOfBreak(line), nil
}

// Line returns the text of one line without its terminating newline.
func (b *Buffer) Line(line int) (string, error) {
	start, err := b.LineStart(line)
	if err != nil {
		return "", err
	}
	end, err := b.LineEnd(line)
	if err != nil {
		return "", err
	}
	return b.Slice(start, end)
}

// breaksBefore counts line breaks in [0, offset) using cached subtree counts.
func (b *Buffer) breaksBefore(offset int) int {
	total := 0
	id := b.root
	for {
		n := b.nodes[id]
		if n.leaf {
			return total + countBreaks(n.text[:offset])
		}
		descended := false
		for _, c := range n.children {
			chars := b.nodes[c].chars
			if offset < chars {
				id = c
				descended = true
				break
			}
			total += b.nodes[c].breaks
			offset -= chars
		}
		if !descended {
			return total
		}
	}
}

// offsetOfBreak locates the k-th newline, zero-based. The caller guarantees
// k < the buffer's total break count.
func (b *Buffer) offsetOfBreak(k int) int {
	pos := 0
	id := b.root
	for {
		n := b.nodes[id]
		if n.leaf {
			for i, r := range n.text {
				if r != '\n' {
					continue
				}
				if k == 0 {
					return pos + i
				}
				k--
			}
			return pos + len(n.text)
		}
		descended := false
		for _, c := range n.children {
			breaks := b.nodes[c].breaks
			if k < breaks {
				id = c
				descended = true
				break
			}
			k -= breaks
			pos += b.nodes[c].chars
		}
		if !descended {
			return pos
		}
	}
}
