package ui

import (
	"time"

	"github.com/sobir-git/fire-notes/internal/fileio"
	"github.com/sobir-git/fire-notes/internal/logging/events"
	"github.com/sobir-git/fire-notes/internal/notes"
	"github.com/sobir-git/fire-notes/internal/session"
	"github.com/sobir-git/fire-notes/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// loadResultMsg mirrors an asynchronous file read. The token decides whether
// the result still applies to the addressed document.
type loadResultMsg struct {
	id    session.DocID
	token session.Token
	path  string
	data  []byte
	err   error
}

// saveResultMsg mirrors an asynchronous file write.
type saveResultMsg struct {
	id    session.DocID
	token session.Token
	path  string
	bytes int
	err   error
}

// notesLoadedMsg carries a fresh notes directory listing.
type notesLoadedMsg struct {
	entries []notes.Entry
	err     error
}

// clipboardReadMsg carries system clipboard content for a pending paste.
type clipboardReadMsg struct {
	text string
	ok   bool
}

// clipboardWroteMsg reports a finished clipboard write.
type clipboardWroteMsg struct {
	chars int
	err   error
}

// autosaveTickMsg fires on the autosave interval.
type autosaveTickMsg struct{}

func (m *Model) loadCmd(id session.DocID, token session.Token, path string) tea.Cmd {
	return m.bus.Execute(command.Request{ID: "file:load", Label: path, Run: func() tea.Msg {
		data, err := fileio.Open(path)
		return loadResultMsg{id: id, token: token, path: path, data: data, err: err}
	}})
}

func (m *Model) saveCmd(id session.DocID, token session.Token, path string, data []byte) tea.Cmd {
	return m.bus.Execute(command.Request{ID: "file:save", Label: path, Run: func() tea.Msg {
		err := fileio.Save(path, data)
		return saveResultMsg{id: id, token: token, path: path, bytes: len(data), err: err}
	}})
}

func (m *Model) scanNotesCmd() tea.Cmd {
	dir := m.notesDir
	return m.bus.Execute(command.Request{ID: "notes:scan", Label: dir, Run: func() tea.Msg {
		entries, err := notes.Scan(dir)
		events.File.Scan(dir, len(entries), err)
		return notesLoadedMsg{entries: entries, err: err}
	}})
}

func (m *Model) readClipboardCmd() tea.Cmd {
	clip := m.clip
	return m.bus.Execute(command.Request{ID: "clipboard:read", Label: "paste", Run: func() tea.Msg {
		text, ok := clip.GetText()
		return clipboardReadMsg{text: text, ok: ok}
	}})
}

func (m *Model) writeClipboardCmd(text string) tea.Cmd {
	clip := m.clip
	return m.bus.Execute(command.Request{ID: "clipboard:write", Label: "copy", Run: func() tea.Msg {
		err := clip.SetText(text)
		return clipboardWroteMsg{chars: len([]rune(text)), err: err}
	}})
}

func (m *Model) scheduleAutosave() tea.Cmd {
	if !m.autosave || m.autosaveEvery <= 0 {
		return nil
	}
	return tea.Tick(m.autosaveEvery, func(time.Time) tea.Msg {
		return autosaveTickMsg{}
	})
}
