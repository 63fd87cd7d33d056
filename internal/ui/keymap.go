package ui

import (
	"errors"
	"strconv"

	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/logging/events"
	"github.com/sobir-git/fire-notes/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// handleEditKey translates a keypress into one editor command. Chorded keys
// are matched on their canonical name first; plain typing falls through to
// the key type switch.
func (m *Model) handleEditKey(key tea.KeyMsg) tea.Cmd {
	doc := m.session.Active()

	switch key.String() {
	case "ctrl+q":
		return m.beginQuit()
	case "ctrl+s":
		return m.saveDoc(m.session.ActiveID(), doc, true)
	case "ctrl+n":
		m.session.NewTab()
		events.Tab.New(m.session.Active().Title(), m.session.Len())
		return nil
	case "ctrl+w":
		return m.closeActiveTab()
	case "alt+right":
		cmd := m.autosaveActiveCmd()
		m.session.SwitchNext()
		events.Tab.Switch(m.session.ActiveIndex(), m.session.Active().Title())
		return cmd
	case "alt+left":
		cmd := m.autosaveActiveCmd()
		m.session.SwitchPrev()
		events.Tab.Switch(m.session.ActiveIndex(), m.session.Active().Title())
		return cmd
	case "ctrl+p", "ctrl+o":
		return m.openPicker()
	case "ctrl+r", "f2":
		m.startRename()
		return nil
	case "ctrl+z":
		ok := doc.Undo()
		events.Document.Undo(doc.Title(), ok)
		return nil
	case "ctrl+y":
		ok := doc.Redo()
		events.Document.Redo(doc.Title(), ok)
		return nil
	case "ctrl+c":
		text, ok := doc.Copy()
		if !ok {
			return nil
		}
		events.Document.Copy(len([]rune(text)))
		return m.writeClipboardCmd(text)
	case "ctrl+x":
		text, ok := doc.Cut()
		if !ok {
			return nil
		}
		events.Document.Cut(len([]rune(text)))
		return tea.Batch(m.writeClipboardCmd(text), m.autosaveActiveCmd())
	case "ctrl+v":
		return m.readClipboardCmd()
	case "ctrl+a":
		doc.SelectAll()
		return nil
	case "ctrl+d":
		doc.SelectWordAtCaret()
		return nil
	case "ctrl+l":
		doc.SelectLineAtCaret()
		return nil
	case "alt+up":
		m.reportEditErr(doc.MoveLinesUp())
		return nil
	case "alt+down":
		m.reportEditErr(doc.MoveLinesDown())
		return nil
	case "alt+backspace":
		return m.deleteOnActive(doc, doc.DeleteWordBackward)
	case "ctrl+left":
		return m.moveCursor(doc, editor.Left, editor.Word, false)
	case "ctrl+right":
		return m.moveCursor(doc, editor.Right, editor.Word, false)
	case "ctrl+shift+left":
		return m.moveCursor(doc, editor.Left, editor.Word, true)
	case "ctrl+shift+right":
		return m.moveCursor(doc, editor.Right, editor.Word, true)
	case "shift+left":
		return m.moveCursor(doc, editor.Left, editor.Character, true)
	case "shift+right":
		return m.moveCursor(doc, editor.Right, editor.Character, true)
	case "shift+up":
		return m.moveCursor(doc, editor.Up, editor.Character, true)
	case "shift+down":
		return m.moveCursor(doc, editor.Down, editor.Character, true)
	case "shift+home":
		return m.moveCursor(doc, editor.LineStart, editor.Character, true)
	case "shift+end":
		return m.moveCursor(doc, editor.LineEnd, editor.Character, true)
	case "ctrl+home":
		return m.moveCursor(doc, editor.DocStart, editor.Character, false)
	case "ctrl+end":
		return m.moveCursor(doc, editor.DocEnd, editor.Character, false)
	case "ctrl+shift+home":
		return m.moveCursor(doc, editor.DocStart, editor.Character, true)
	case "ctrl+shift+end":
		return m.moveCursor(doc, editor.DocEnd, editor.Character, true)
	case "pgup":
		return m.movePage(doc, editor.Up)
	case "pgdown":
		return m.movePage(doc, editor.Down)
	}

	if idx, ok := tabIndexChord(key.String()); ok {
		if err := m.session.SwitchTo(idx); err == nil {
			events.Tab.Switch(idx, m.session.Active().Title())
		}
		return nil
	}

	switch key.Type {
	case tea.KeyLeft:
		return m.moveCursor(doc, editor.Left, editor.Character, false)
	case tea.KeyRight:
		return m.moveCursor(doc, editor.Right, editor.Character, false)
	case tea.KeyUp:
		return m.moveCursor(doc, editor.Up, editor.Character, false)
	case tea.KeyDown:
		return m.moveCursor(doc, editor.Down, editor.Character, false)
	case tea.KeyHome:
		return m.moveCursor(doc, editor.LineStart, editor.Character, false)
	case tea.KeyEnd:
		return m.moveCursor(doc, editor.LineEnd, editor.Character, false)
	case tea.KeyBackspace:
		return m.deleteOnActive(doc, doc.DeleteBackward)
	case tea.KeyDelete:
		return m.deleteOnActive(doc, doc.DeleteForward)
	case tea.KeyEsc:
		doc.Cursor().Collapse()
		m.errMsg = ""
		return nil
	case tea.KeyEnter:
		return m.applyEdit(doc, "\n")
	case tea.KeyTab:
		return m.applyEdit(doc, "\t")
	case tea.KeySpace:
		return m.applyEdit(doc, " ")
	case tea.KeyRunes:
		if key.Alt || len(key.Runes) == 0 {
			return nil
		}
		return m.applyEdit(doc, string(key.Runes))
	}
	return nil
}

// tabIndexChord maps alt+1 through alt+9 to a tab index.
func tabIndexChord(name string) (int, bool) {
	if len(name) != 5 || name[:4] != "alt+" {
		return 0, false
	}
	n, err := strconv.Atoi(name[4:])
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n - 1, true
}

func (m *Model) applyEdit(doc *editor.Document, text string) tea.Cmd {
	before := doc.Buffer().Len()
	if err := doc.ApplyEdit(text); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	inserted := len([]rune(text))
	deleted := before + inserted - doc.Buffer().Len()
	events.Document.Edit(doc.Title(), inserted, deleted)
	return nil
}

func (m *Model) deleteOnActive(doc *editor.Document, del func() error) tea.Cmd {
	before := doc.Buffer().Len()
	if err := del(); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	if deleted := before - doc.Buffer().Len(); deleted > 0 {
		events.Document.Edit(doc.Title(), 0, deleted)
	}
	return nil
}

func (m *Model) moveCursor(doc *editor.Document, dir editor.Direction, unit editor.Unit, extend bool) tea.Cmd {
	m.reportEditErr(doc.Cursor().Move(doc.Buffer(), dir, unit, extend))
	return nil
}

// movePage moves the caret a text-viewport's worth of lines.
func (m *Model) movePage(doc *editor.Document, dir editor.Direction) tea.Cmd {
	step := m.textHeight()
	if step < 1 {
		step = 1
	}
	for i := 0; i < step; i++ {
		if err := doc.Cursor().Move(doc.Buffer(), dir, editor.Character, false); err != nil {
			m.errMsg = err.Error()
			return nil
		}
	}
	return nil
}

func (m *Model) closeActiveTab() tea.Cmd {
	index := m.session.ActiveIndex()
	id := m.session.ActiveID()
	title := m.session.Active().Title()
	err := m.session.CloseTab(index)
	if errors.Is(err, session.ErrLastTab) {
		return m.beginQuit()
	}
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	delete(m.viewports, id)
	events.Tab.Close(index, title)
	m.syncWatched()
	return nil
}

func (m *Model) reportEditErr(err error) {
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
}
