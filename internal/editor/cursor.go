package editor

import (
	"github.com/sobir-git/fire-notes/internal/rope"
)

// Direction names a cursor movement command.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	LineStart
	LineEnd
	DocStart
	DocEnd
)

// Unit is the granularity of horizontal movement.
type Unit int

const (
	Character Unit = iota
	Word
)

// Cursor tracks the caret and the selection anchor as rune offsets into a
// buffer. The goal column survives consecutive vertical moves so the caret
// returns to its column after crossing shorter lines; any horizontal move or
// edit drops it.
type Cursor struct {
	Anchor int
	Caret  int

	goalCol int
	hasGoal bool
}

// Move applies one movement command against buf. With extend the anchor stays
// put and the selection grows; otherwise it collapses onto the new caret.
func (c *Cursor) Move(buf *rope.Buffer, dir Direction, unit Unit, extend bool) error {
	target := c.Caret
	vertical := false
	switch dir {
	case Left:
		if unit == Word {
			target = prevWordBoundary(buf, c.Caret)
		} else if c.Caret > 0 {
			target = c.Caret - 1
		}
	case Right:
		if unit == Word {
			target = nextWordBoundary(buf, c.Caret)
		} else if c.Caret < buf.Len() {
			target = c.Caret + 1
		}
	case Up, Down:
		var err error
		if target, err = c.verticalTarget(buf, dir); err != nil {
			return err
		}
		vertical = true
	case LineStart:
		line, _, err := buf.OffsetToLineCol(c.Caret)
		if err != nil {
			return err
		}
		if target, err = buf.LineStart(line); err != nil {
			return err
		}
	case LineEnd:
		line, _, err := buf.OffsetToLineCol(c.Caret)
		if err != nil {
			return err
		}
		if target, err = buf.LineEnd(line); err != nil {
			return err
		}
	case DocStart:
		target = 0
	case DocEnd:
		target = buf.Len()
	}
	c.Caret = target
	if !extend {
		c.Anchor = target
	}
	if !vertical {
		c.hasGoal = false
	}
	return nil
}

// verticalTarget computes the caret for an up or down move, clamping the
// column to the goal column or the target line's width.
func (c *Cursor) verticalTarget(buf *rope.Buffer, dir Direction) (int, error) {
	line, col, err := buf.OffsetToLineCol(c.Caret)
	if err != nil {
		return 0, err
	}
	if !c.hasGoal {
		c.goalCol = col
		c.hasGoal = true
	}
	target := line + 1
	if dir == Up {
		target = line - 1
	}
	if target < 0 || target >= buf.LineCount() {
		return c.Caret, nil
	}
	start, err := buf.LineStart(target)
	if err != nil {
		return 0, err
	}
	end, err := buf.LineEnd(target)
	if err != nil {
		return 0, err
	}
	col = c.goalCol
	if width := end - start; col > width {
		col = width
	}
	return start + col, nil
}

// SelectAll covers the whole buffer.
func (c *Cursor) SelectAll(buf *rope.Buffer) {
	c.Anchor = 0
	c.Caret = buf.Len()
	c.hasGoal = false
}

// Collapse drops any selection, keeping the caret.
func (c *Cursor) Collapse() {
	c.Anchor = c.Caret
}

// Set places both anchor and caret at offset.
func (c *Cursor) Set(offset int) {
	c.Anchor = offset
	c.Caret = offset
	c.hasGoal = false
}

// SelectedRange reports the normalized selection bounds; ok is false when the
// selection is empty.
func (c *Cursor) SelectedRange() (start, end int, ok bool) {
	if c.Anchor == c.Caret {
		return 0, 0, false
	}
	if c.Anchor < c.Caret {
		return c.Anchor, c.Caret, true
	}
	return c.Caret, c.Anchor, true
}

func (c *Cursor) resetGoal() {
	c.hasGoal = false
}
