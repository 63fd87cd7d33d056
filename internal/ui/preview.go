package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sobir-git/fire-notes/internal/fileio"
	"github.com/sobir-git/fire-notes/internal/ui/command"
)

const previewMaxLines = 400

// previewData holds the file contents shown beside the picker list.
type previewData struct {
	path         string
	label        string
	lines        []string
	err          string
	loading      bool
	seq          int
	scrollOffset int // position within lines; clamped by renderPreviewPanel
}

type previewLoadedMsg struct {
	path  string
	seq   int
	lines []string
	err   error
}

// refreshPreview starts a read for the note under the picker cursor. Results
// carry a sequence number so a stale read never overwrites a newer one.
func (m *Model) refreshPreview() tea.Cmd {
	current := m.picker
	if current == nil {
		return nil
	}
	if len(current.Items) == 0 {
		m.preview = previewData{}
		return nil
	}
	if current.Cursor < 0 || current.Cursor >= len(current.Items) {
		current.Cursor = 0
	}
	item := current.Items[current.Cursor]
	if item.ID == "" {
		m.preview = previewData{}
		return nil
	}
	if m.preview.path == item.ID && !m.preview.loading {
		m.preview.label = item.Label
		return nil
	}
	m.previewSeq++
	seq := m.previewSeq
	m.preview = previewData{
		path:    item.ID,
		label:   item.Label,
		loading: true,
		seq:     seq,
	}
	return m.loadPreviewCmd(item.ID, seq)
}

func (m *Model) loadPreviewCmd(path string, seq int) tea.Cmd {
	return m.bus.Execute(command.Request{ID: "preview:load", Label: path, Run: func() tea.Msg {
		data, err := fileio.Open(path)
		if err != nil {
			return previewLoadedMsg{path: path, seq: seq, err: err}
		}
		return previewLoadedMsg{path: path, seq: seq, lines: previewLines(data)}
	}})
}

func (m *Model) handlePreviewLoadedMsg(msg tea.Msg) tea.Cmd {
	update, ok := msg.(previewLoadedMsg)
	if !ok {
		return nil
	}
	if m.picker == nil {
		return nil
	}
	if m.preview.seq != update.seq || m.preview.path != update.path {
		return nil
	}
	m.preview.loading = false
	if update.err != nil {
		m.preview.err = update.err.Error()
		m.preview.lines = nil
		m.preview.scrollOffset = 0
		return nil
	}
	m.preview.err = ""
	m.preview.lines = update.lines
	m.preview.scrollOffset = 0
	return nil
}

// previewLines splits file content for display, capped so a huge note cannot
// bloat the model.
func previewLines(data []byte) []string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > previewMaxLines {
		lines = lines[:previewMaxLines]
	}
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(line, "\t", "    ")
	}
	return lines
}
