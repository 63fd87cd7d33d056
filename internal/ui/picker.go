package ui

import (
	"path/filepath"
	"unicode"

	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/logging/events"
	"github.com/sobir-git/fire-notes/internal/notes"
	uistate "github.com/sobir-git/fire-notes/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// openPicker enters the notes picker over the cached listing and kicks off a
// rescan so the list is fresh.
func (m *Model) openPicker() tea.Cmd {
	items := m.noteItems(m.notes)
	m.picker = uistate.NewLevel("Notes", items)
	m.picker.MultiSelect = true
	m.mode = ModePicker
	m.errMsg = ""
	m.forceClearInfo()
	events.UI.PickerOpen(len(items))
	m.syncViewport(m.picker)
	cmds := []tea.Cmd{m.scanNotesCmd()}
	if cmd := m.refreshPreview(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) closePicker() {
	m.picker = nil
	m.mode = ModeEdit
	m.previewSeq++
	m.preview = previewData{}
}

// noteItems converts a directory listing into picker items. The item ID is
// the file path; labels prefer the stored title over the probed one and mark
// notes that are already open in a tab.
func (m *Model) noteItems(entries []notes.Entry) []uistate.Item {
	items := make([]uistate.Item, 0, len(entries))
	for _, e := range entries {
		label := m.titleFor(e.Path, e.Title)
		if _, open := m.session.FindByPath(e.Path); open {
			label += " (open)"
		}
		items = append(items, uistate.Item{ID: e.Path, Label: label})
	}
	return items
}

// titleFor resolves the display title for a note path: the stored title when
// one exists, then the probed fallback, then the file name.
func (m *Model) titleFor(path, probed string) string {
	if m.store != nil {
		if title, ok := m.store.Title(path); ok && title != "" {
			return title
		}
	}
	if probed != "" {
		return probed
	}
	for _, e := range m.notes {
		if e.Path == path && e.Title != "" {
			return e.Title
		}
	}
	return filepath.Base(path)
}

func (m *Model) handlePickerKey(key tea.KeyMsg) tea.Cmd {
	current := m.picker
	if current == nil {
		m.mode = ModeEdit
		return nil
	}
	switch key.String() {
	case "esc":
		events.UI.PickerCancel()
		m.closePicker()
		return nil
	case "enter":
		return m.confirmPicker()
	case "tab":
		current.ToggleCurrentSelection()
		return nil
	case "up":
		if current.Cursor > 0 {
			current.Cursor--
			m.syncViewport(current)
			events.UI.PickerCursor(current.Cursor)
			return m.refreshPreview()
		}
		return nil
	case "down":
		if current.Cursor < len(current.Items)-1 {
			current.Cursor++
			m.syncViewport(current)
			events.UI.PickerCursor(current.Cursor)
			return m.refreshPreview()
		}
		return nil
	case "pgup":
		if current.MoveCursorPageUp(m.maxVisiblePickerItems()) {
			m.syncViewport(current)
			events.UI.PickerCursor(current.Cursor)
			return m.refreshPreview()
		}
		return nil
	case "pgdown":
		if current.MoveCursorPageDown(m.maxVisiblePickerItems()) {
			m.syncViewport(current)
			events.UI.PickerCursor(current.Cursor)
			return m.refreshPreview()
		}
		return nil
	case "home":
		if current.MoveCursorHome() {
			m.syncViewport(current)
			events.UI.PickerCursor(current.Cursor)
			return m.refreshPreview()
		}
		return nil
	case "end":
		if current.MoveCursorEnd() {
			m.syncViewport(current)
			events.UI.PickerCursor(current.Cursor)
			return m.refreshPreview()
		}
		return nil
	}
	if handled, cmd := m.handleFilterInput(key); handled {
		return cmd
	}
	return nil
}

// handleFilterInput owns text entry into the picker filter.
func (m *Model) handleFilterInput(key tea.KeyMsg) (bool, tea.Cmd) {
	current := m.picker
	if current == nil {
		return false, nil
	}
	switch key.String() {
	case "ctrl+u":
		if current.Filter == "" {
			return false, nil
		}
		before := current.FilterCursorPos()
		current.SetFilter("", 0)
		m.noteFilterCursorChange(current, before)
		m.errMsg = ""
		events.Filter.Cleared()
		m.syncViewport(current)
		return true, m.refreshPreview()
	case "ctrl+w":
		before := current.FilterCursorPos()
		if !current.DeleteFilterWordBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		m.errMsg = ""
		events.Filter.Backspace(current.Filter)
		m.syncViewport(current)
		return true, m.refreshPreview()
	case "ctrl+a":
		before := current.FilterCursorPos()
		if !current.MoveFilterCursorStart() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		return true, nil
	case "ctrl+e":
		before := current.FilterCursorPos()
		if !current.MoveFilterCursorEnd() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		return true, nil
	}
	switch key.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		if m.removeFilterRune() {
			return true, m.refreshPreview()
		}
		return false, nil
	case tea.KeyRunes:
		if key.Alt || len(key.Runes) == 0 {
			return false, nil
		}
		for _, r := range key.Runes {
			if unicode.IsControl(r) {
				return false, nil
			}
		}
		if m.appendToFilter(string(key.Runes)) {
			return true, m.refreshPreview()
		}
		return false, nil
	case tea.KeySpace:
		if m.appendToFilter(" ") {
			return true, m.refreshPreview()
		}
		return false, nil
	case tea.KeyLeft:
		before := current.FilterCursorPos()
		if !current.MoveFilterCursorRuneBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		return true, nil
	case tea.KeyRight:
		before := current.FilterCursorPos()
		if !current.MoveFilterCursorRuneForward() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		return true, nil
	}
	return false, nil
}

func (m *Model) appendToFilter(text string) bool {
	current := m.picker
	if text == "" || current == nil {
		return false
	}
	before := current.FilterCursorPos()
	if !current.InsertFilterText(text) {
		return false
	}
	m.noteFilterCursorChange(current, before)
	m.errMsg = ""
	events.Filter.Append(current.Filter)
	m.syncViewport(current)
	return true
}

func (m *Model) removeFilterRune() bool {
	current := m.picker
	if current == nil {
		return false
	}
	before := current.FilterCursorPos()
	if !current.DeleteFilterRuneBackward() {
		return false
	}
	m.noteFilterCursorChange(current, before)
	m.errMsg = ""
	events.Filter.Backspace(current.Filter)
	m.syncViewport(current)
	return true
}

func (m *Model) noteFilterCursorChange(l *level, before int) {
	if l == nil {
		return
	}
	if before != l.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

// confirmPicker opens the marked notes, or the note under the cursor when
// nothing is marked.
func (m *Model) confirmPicker() tea.Cmd {
	current := m.picker
	if current == nil || len(current.Items) == 0 {
		return nil
	}
	paths := []string{}
	if selected := current.SelectedItems(); len(selected) > 0 {
		for _, item := range selected {
			paths = append(paths, item.ID)
		}
	} else {
		paths = append(paths, current.Items[current.Cursor].ID)
	}
	m.closePicker()
	cmds := []tea.Cmd{}
	for _, path := range paths {
		events.UI.PickerConfirm(path)
		if cmd := m.openNote(path); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// openNote switches to the note's tab when it is already open, otherwise
// opens a new tab and starts the load.
func (m *Model) openNote(path string) tea.Cmd {
	if idx, ok := m.session.FindByPath(path); ok {
		if err := m.session.SwitchTo(idx); err == nil {
			events.Tab.Switch(idx, m.session.Active().Title())
		}
		return nil
	}
	doc := editor.NewDocument()
	doc.SetPath(path)
	doc.SetTitle(m.titleFor(path, ""))
	id := m.session.OpenDocument(doc)
	events.Tab.New(doc.Title(), m.session.Len())
	m.syncWatched()
	token, ok := m.session.BeginLoad(id)
	if !ok {
		return nil
	}
	events.File.LoadRequest(path, uint64(token))
	return m.loadCmd(id, token, path)
}
