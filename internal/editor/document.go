package editor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sobir-git/fire-notes/internal/rope"
)

var (
	// ErrDecode reports file content that is not valid text.
	ErrDecode = errors.New("content is not valid text")
	// ErrNoPath reports a save on a document that has never been given a path.
	ErrNoPath = errors.New("document has no file path")
)

// Document is one open note: a buffer, its cursor, the backing file path when
// one exists, a title for the tab strip, and the dirty flag.
type Document struct {
	buf    *rope.Buffer
	cursor Cursor
	path   string
	title  string
	dirty  bool
	rev    uint64

	history history
}

// NewDocument returns an empty, unsaved document.
func NewDocument() *Document {
	return &Document{buf: rope.New()}
}

func (d *Document) Buffer() *rope.Buffer { return d.buf }
func (d *Document) Cursor() *Cursor      { return &d.cursor }
func (d *Document) Path() string         { return d.path }
func (d *Document) Title() string        { return d.title }
func (d *Document) Dirty() bool          { return d.dirty }

// Revision increments on every buffer mutation; save results compare it to
// decide whether dirty may clear.
func (d *Document) Revision() uint64 { return d.rev }

func (d *Document) SetPath(path string)   { d.path = path }
func (d *Document) SetTitle(title string) { d.title = title }

func (d *Document) touch() {
	d.dirty = true
	d.rev++
	d.cursor.resetGoal()
}

// ApplyEdit replaces the selection (if any) with text and leaves the caret
// after the insertion.
func (d *Document) ApplyEdit(text string) error {
	if start, end, ok := d.cursor.SelectedRange(); ok {
		if err := d.deleteForHistory(start, end); err != nil {
			return err
		}
	}
	if text != "" {
		caret := d.cursor.Caret
		if _, err := d.buf.Insert(caret, text); err != nil {
			return err
		}
		after := caret + utf8.RuneCountInString(text)
		d.history.push(editStep{kind: stepInsert, offset: caret, text: text, caretBefore: caret, caretAfter: after})
		d.cursor.Caret = after
		d.cursor.Anchor = after
		d.touch()
	}
	return nil
}

// DeleteBackward removes the selection, or the grapheme cluster left of the
// caret. No-op at the start of the document with nothing selected.
func (d *Document) DeleteBackward() error {
	if start, end, ok := d.cursor.SelectedRange(); ok {
		return d.deleteForHistory(start, end)
	}
	n := prevClusterLen(d.buf, d.cursor.Caret)
	if n == 0 {
		return nil
	}
	return d.deleteForHistory(d.cursor.Caret-n, d.cursor.Caret)
}

// DeleteForward removes the selection, or the grapheme cluster right of the
// caret. No-op at the end of the document with nothing selected.
func (d *Document) DeleteForward() error {
	if start, end, ok := d.cursor.SelectedRange(); ok {
		return d.deleteForHistory(start, end)
	}
	n := nextClusterLen(d.buf, d.cursor.Caret)
	if n == 0 {
		return nil
	}
	return d.deleteForHistory(d.cursor.Caret, d.cursor.Caret+n)
}

// DeleteWordBackward removes the selection, a run of two or more spaces, or
// the word left of the caret.
func (d *Document) DeleteWordBackward() error {
	if start, end, ok := d.cursor.SelectedRange(); ok {
		return d.deleteForHistory(start, end)
	}
	caret := d.cursor.Caret
	spaces := 0
	for caret-spaces > 0 {
		r, err := d.buf.RuneAt(caret - spaces - 1)
		if err != nil || r != ' ' {
			break
		}
		spaces++
	}
	if spaces >= 2 {
		return d.deleteForHistory(caret-spaces, caret)
	}
	target := prevWordBoundary(d.buf, caret)
	if target == caret {
		return nil
	}
	return d.deleteForHistory(target, caret)
}

func (d *Document) deleteForHistory(start, end int) error {
	caretBefore := d.cursor.Caret
	removed, err := d.buf.Delete(start, end)
	if err != nil {
		return err
	}
	d.history.push(editStep{kind: stepDelete, offset: start, text: removed, caretBefore: caretBefore, caretAfter: start})
	d.cursor.Caret = start
	d.cursor.Anchor = start
	d.touch()
	return nil
}

// Copy returns the selected text; ok is false with no selection, in which
// case the clipboard must stay untouched.
func (d *Document) Copy() (string, bool) {
	start, end, ok := d.cursor.SelectedRange()
	if !ok {
		return "", false
	}
	text, err := d.buf.Slice(start, end)
	if err != nil {
		return "", false
	}
	return text, true
}

// Cut copies the selection and removes it.
func (d *Document) Cut() (string, bool) {
	text, ok := d.Copy()
	if !ok {
		return "", false
	}
	start, end, _ := d.cursor.SelectedRange()
	if err := d.deleteForHistory(start, end); err != nil {
		return "", false
	}
	return text, true
}

// Paste inserts text at the caret, replacing any selection.
func (d *Document) Paste(text string) error {
	return d.ApplyEdit(text)
}

// SelectAll covers the whole document.
func (d *Document) SelectAll() {
	d.cursor.SelectAll(d.buf)
}

// SelectWordAtCaret selects the word run under (or left of) the caret.
func (d *Document) SelectWordAtCaret() bool {
	start, end, ok := wordRangeAt(d.buf, d.cursor.Caret)
	if !ok {
		return false
	}
	d.cursor.Anchor = start
	d.cursor.Caret = end
	d.cursor.resetGoal()
	return true
}

// SelectLineAtCaret selects the caret's line including its newline.
func (d *Document) SelectLineAtCaret() bool {
	line, _, err := d.buf.OffsetToLineCol(d.cursor.Caret)
	if err != nil {
		return false
	}
	start, err := d.buf.LineStart(line)
	if err != nil {
		return false
	}
	end, err := d.buf.LineEnd(line)
	if err != nil {
		return false
	}
	if end < d.buf.Len() {
		end++
	}
	if start == end {
		return false
	}
	d.cursor.Anchor = start
	d.cursor.Caret = end
	d.cursor.resetGoal()
	return true
}

// Load replaces the document content wholesale. On decode failure the prior
// state is left untouched.
func (d *Document) Load(path string, content []byte) error {
	buf, err := rope.NewFromString(string(content))
	if err != nil {
		return fmt.Errorf("load %s: %w", path, ErrDecode)
	}
	d.buf = buf
	d.cursor = Cursor{}
	d.path = path
	d.dirty = false
	d.rev++
	d.history.clear()
	return nil
}

// Snapshot captures what a save must write. The caller performs the write and
// calls MarkSaved once it succeeded.
func (d *Document) Snapshot() (string, []byte, error) {
	if d.path == "" {
		return "", nil, ErrNoPath
	}
	return d.path, []byte(d.buf.String()), nil
}

// MarkSaved clears the dirty flag after a successful write.
func (d *Document) MarkSaved() {
	d.dirty = false
}

// Undo reverses the most recent edit. Reports whether anything changed.
func (d *Document) Undo() bool {
	step, ok := d.history.popUndo()
	if !ok {
		return false
	}
	switch step.kind {
	case stepInsert:
		if _, err := d.buf.Delete(step.offset, step.offset+utf8.RuneCountInString(step.text)); err != nil {
			return false
		}
	case stepDelete:
		if _, err := d.buf.Insert(step.offset, step.text); err != nil {
			return false
		}
	}
	d.history.redo = append(d.history.redo, step)
	d.cursor.Set(step.caretBefore)
	d.dirty = true
	d.rev++
	return true
}

// Redo re-applies the most recently undone edit.
func (d *Document) Redo() bool {
	step, ok := d.history.popRedo()
	if !ok {
		return false
	}
	switch step.kind {
	case stepInsert:
		if _, err := d.buf.Insert(step.offset, step.text); err != nil {
			return false
		}
	case stepDelete:
		if _, err := d.buf.Delete(step.offset, step.offset+utf8.RuneCountInString(step.text)); err != nil {
			return false
		}
	}
	d.history.undo = append(d.history.undo, step)
	d.cursor.Set(step.caretAfter)
	d.dirty = true
	d.rev++
	return true
}

// MoveLinesUp swaps the lines covered by the selection (or the caret's line)
// with the line above.
func (d *Document) MoveLinesUp() error {
	first, last, err := d.coveredLines()
	if err != nil || first == 0 {
		return err
	}
	prevStart, err := d.buf.LineStart(first - 1)
	if err != nil {
		return err
	}
	blockStart, err := d.buf.LineStart(first)
	if err != nil {
		return err
	}
	blockEnd, err := d.lineEndWithBreak(last)
	if err != nil {
		return err
	}
	prev, err := d.buf.Slice(prevStart, blockStart)
	if err != nil {
		return err
	}
	block, err := d.buf.Slice(blockStart, blockEnd)
	if err != nil {
		return err
	}
	var swapped string
	if strings.HasSuffix(block, "\n") {
		swapped = block + prev
	} else {
		swapped = block + "\n" + strings.TrimSuffix(prev, "\n")
	}
	shift := utf8.RuneCountInString(prev)
	return d.replaceForHistory(prevStart, blockEnd, swapped, -shift)
}

// MoveLinesDown swaps the covered lines with the line below.
func (d *Document) MoveLinesDown() error {
	first, last, err := d.coveredLines()
	if err != nil || last >= d.buf.LineCount()-1 {
		return err
	}
	blockStart, err := d.buf.LineStart(first)
	if err != nil {
		return err
	}
	blockEnd, err := d.lineEndWithBreak(last)
	if err != nil {
		return err
	}
	nextEnd, err := d.lineEndWithBreak(last + 1)
	if err != nil {
		return err
	}
	block, err := d.buf.Slice(blockStart, blockEnd)
	if err != nil {
		return err
	}
	next, err := d.buf.Slice(blockEnd, nextEnd)
	if err != nil {
		return err
	}
	var swapped string
	shift := utf8.RuneCountInString(next)
	if strings.HasSuffix(next, "\n") {
		swapped = next + block
	} else {
		swapped = next + "\n" + strings.TrimSuffix(block, "\n")
		shift++
	}
	return d.replaceForHistory(blockStart, nextEnd, swapped, shift)
}

// replaceForHistory swaps [start, end) for text as a delete/insert pair and
// shifts the cursor by the given rune count.
func (d *Document) replaceForHistory(start, end int, text string, shift int) error {
	caret, anchor := d.cursor.Caret, d.cursor.Anchor
	removed, err := d.buf.Delete(start, end)
	if err != nil {
		return err
	}
	d.history.push(editStep{kind: stepDelete, offset: start, text: removed, caretBefore: caret, caretAfter: start})
	if _, err := d.buf.Insert(start, text); err != nil {
		return err
	}
	after := caret + shift
	d.history.push(editStep{kind: stepInsert, offset: start, text: text, caretBefore: start, caretAfter: after})
	d.cursor.Caret = after
	d.cursor.Anchor = anchor + shift
	d.touch()
	return nil
}

// coveredLines is the inclusive line range touched by the selection or caret.
func (d *Document) coveredLines() (int, int, error) {
	start, end, ok := d.cursor.SelectedRange()
	if !ok {
		start, end = d.cursor.Caret, d.cursor.Caret
	}
	first, _, err := d.buf.OffsetToLineCol(start)
	if err != nil {
		return 0, 0, err
	}
	// A selection ending at column zero does not cover that line.
	if end > start {
		end--
	}
	last, _, err := d.buf.OffsetToLineCol(end)
	if err != nil {
		return 0, 0, err
	}
	return first, last, nil
}

// lineEndWithBreak is LineEnd plus the newline when the line has one.
func (d *Document) lineEndWithBreak(line int) (int, error) {
	end, err := d.buf.LineEnd(line)
	if err != nil {
		return 0, err
	}
	if end < d.buf.Len() {
		end++
	}
	return end, nil
}

// CursorLineCol is the caret position in zero-based line/column coordinates.
func (d *Document) CursorLineCol() (int, int) {
	line, col, err := d.buf.OffsetToLineCol(d.cursor.Caret)
	if err != nil {
		return 0, 0
	}
	return line, col
}

// SelectionLineCol reports the normalized selection bounds in line/column
// coordinates; ok is false with no selection.
func (d *Document) SelectionLineCol() (startLine, startCol, endLine, endCol int, ok bool) {
	start, end, ok := d.cursor.SelectedRange()
	if !ok {
		return 0, 0, 0, 0, false
	}
	startLine, startCol, err := d.buf.OffsetToLineCol(start)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	endLine, endCol, err = d.buf.OffsetToLineCol(end)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return startLine, startCol, endLine, endCol, true
}
