package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sobir-git/fire-notes/internal/backend"
	"github.com/sobir-git/fire-notes/internal/logging/events"
	"github.com/sobir-git/fire-notes/internal/notes"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		waitCmd := waitForBackendEvent(m.backend)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	if m.backendState == nil {
		m.backendState = make(map[backend.Kind]error)
	}
	m.backendState[evt.Kind] = evt.Err
	if evt.Err != nil {
		m.backendLastErr = evt.Err.Error()
		return nil
	}

	var cmd tea.Cmd
	switch evt.Kind {
	case backend.KindNotes:
		if entries, ok := evt.Data.([]notes.Entry); ok {
			m.notes = entries
			if m.picker != nil {
				m.picker.UpdateItems(m.noteItems(entries))
				m.syncViewport(m.picker)
				cmd = m.refreshPreview()
			}
		}
	case backend.KindFileChanged:
		if change, ok := evt.Data.(backend.FileChange); ok {
			cmd = m.applyFileChange(change)
		}
	}

	if warn, _ := m.hasBackendIssue(); !warn {
		m.backendLastErr = ""
	}
	return cmd
}

// applyFileChange reacts to a watched note changing on disk outside the
// editor. Clean tabs reload in place; dirty tabs keep their edits and warn.
func (m *Model) applyFileChange(change backend.FileChange) tea.Cmd {
	idx, ok := m.session.FindByPath(change.Path)
	if !ok {
		return nil
	}
	doc, err := m.session.DocAt(idx)
	if err != nil {
		return nil
	}
	if change.Gone {
		m.errMsg = fmt.Sprintf("%s was removed on disk", change.Path)
		return nil
	}
	if doc.Dirty() {
		m.errMsg = fmt.Sprintf("%s changed on disk; keeping unsaved edits", change.Path)
		return nil
	}
	infos := m.session.TabInfos()
	if idx >= len(infos) {
		return nil
	}
	id := infos[idx].ID
	line, col := doc.CursorLineCol()
	m.restore[change.Path] = RestorePoint{Line: line, Col: col}
	token, ok := m.session.BeginLoad(id)
	if !ok {
		return nil
	}
	events.File.LoadRequest(change.Path, uint64(token))
	return m.loadCmd(id, token, change.Path)
}

func (m *Model) hasBackendIssue() (bool, string) {
	for _, err := range m.backendState {
		if err != nil {
			msg := m.backendLastErr
			if msg == "" {
				msg = err.Error()
			}
			return true, msg
		}
	}
	return false, ""
}
