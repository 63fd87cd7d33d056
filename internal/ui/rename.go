package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sobir-git/fire-notes/internal/logging/events"
)

// RenameForm edits the active tab's title in place.
type RenameForm struct {
	input    textinput.Model
	original string
	title    string
	help     string
}

func NewRenameForm(current string) *RenameForm {
	ti := textinput.New()
	ti.Placeholder = "note title"
	ti.CharLimit = 64
	ti.Focus()
	ti.SetValue(current)
	ti.CursorEnd()
	title := "Rename Tab"
	if current != "" {
		title = fmt.Sprintf("Rename %s", current)
	}
	return &RenameForm{
		input:    ti,
		original: current,
		title:    title,
		help:     "Press Enter to rename. Esc to cancel.",
	}
}

func (f *RenameForm) Value() string     { return strings.TrimSpace(f.input.Value()) }
func (f *RenameForm) InputView() string { return f.input.View() }
func (f *RenameForm) Original() string  { return f.original }
func (f *RenameForm) Title() string     { return f.title }
func (f *RenameForm) Help() string      { return f.help }

func (f *RenameForm) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch m.String() {
		case "ctrl+u":
			if f.input.Value() != "" {
				f.input.SetValue("")
				f.input.CursorStart()
			}
			return nil, false, false
		}
		switch m.Type {
		case tea.KeyEsc:
			events.Tab.CancelRename(f.original, events.TabReasonEscape)
			return nil, false, true
		case tea.KeyEnter:
			value := f.Value()
			if value == "" {
				events.Tab.CancelRename(f.original, events.TabReasonEmpty)
				return nil, false, true
			}
			events.Tab.SubmitRename(f.original, value)
			return nil, true, false
		}
	}

	updated, cmd := f.input.Update(msg)
	f.input = updated
	return cmd, false, false
}

func (m *Model) startRename() {
	doc := m.session.Active()
	if doc == nil {
		return
	}
	events.Tab.RenamePrompt(doc.Title())
	m.renameForm = NewRenameForm(doc.Title())
	m.renameForm.input.Cursor.SetMode(m.filterCursor.Mode())
	m.mode = ModeRename
	m.errMsg = ""
	m.forceClearInfo()
}

func (m *Model) handleRenameForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.renameForm == nil {
		return false, nil
	}
	cmd, done, cancel := m.renameForm.Update(msg)
	if cancel {
		m.renameForm = nil
		m.mode = ModeEdit
		return true, cmd
	}
	if done {
		old := m.renameForm.Original()
		title := m.renameForm.Value()
		m.renameForm = nil
		m.mode = ModeEdit
		if !m.session.RenameTab(m.session.ActiveIndex(), title) {
			m.errMsg = "could not rename tab"
			return true, cmd
		}
		events.Tab.Rename(old, title)
		if doc := m.session.Active(); doc != nil && doc.Path() != "" && m.store != nil {
			if err := m.store.SetTitle(doc.Path(), title); err != nil {
				m.errMsg = err.Error()
			}
		}
		return true, cmd
	}
	if cmd != nil {
		return true, cmd
	}
	return true, nil
}

func (m *Model) viewRename() string {
	if m.renameForm == nil {
		return ""
	}
	lines := []string{
		styles.FormTitle.Render(m.renameForm.Title()),
		"",
		m.renameForm.InputView(),
		"",
		styles.PickerHint.Render(m.renameForm.Help()),
	}
	if m.errMsg != "" {
		lines = append(lines, "", styles.StatusError.Render("Error: "+m.errMsg))
	}
	return strings.Join(lines, "\n")
}
