package ui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sobir-git/fire-notes/internal/clipboard"
	"github.com/sobir-git/fire-notes/internal/session"
	"github.com/sobir-git/fire-notes/internal/store"
	tea "github.com/charmbracelet/bubbletea"
)

func TestRenameSubmitRetitlesTab(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)
	h.Send(tea.WindowSizeMsg{Width: 80, Height: 24})

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.mode != ModeRename {
		t.Fatalf("expected rename mode, got %v", m.mode)
	}
	if view := h.View(); !strings.Contains(view, "Rename Untitled-1") {
		t.Fatalf("expected form title, view =\n%s", view)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	typeText(h, "Meeting notes")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != ModeEdit {
		t.Fatalf("expected edit mode after submit")
	}
	if got := m.session.Active().Title(); got != "Meeting notes" {
		t.Fatalf("expected new title, got %q", got)
	}
	if view := h.View(); !strings.Contains(view, "1:Meeting notes") {
		t.Fatalf("expected retitled tab strip, view =\n%s", view)
	}
}

func TestRenameEscCancels(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	typeText(h, "discarded")
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != ModeEdit {
		t.Fatalf("expected edit mode after cancel")
	}
	if got := m.session.Active().Title(); got != "Untitled-1" {
		t.Fatalf("expected title unchanged, got %q", got)
	}
}

func TestRenameEmptySubmitCancels(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyF2})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != ModeEdit {
		t.Fatalf("expected empty submit to close the form")
	}
	if got := m.session.Active().Title(); got != "Untitled-1" {
		t.Fatalf("expected title unchanged, got %q", got)
	}
}

func TestRenameWhitespaceOnlySubmitCancels(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	typeText(h, "   ")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.session.Active().Title(); got != "Untitled-1" {
		t.Fatalf("expected title unchanged, got %q", got)
	}
}

func TestRenamePrefillsCurrentTitle(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})

	if m.renameForm == nil {
		t.Fatalf("expected rename form")
	}
	if got := m.renameForm.Value(); got != "Untitled-1" {
		t.Fatalf("expected current title prefilled, got %q", got)
	}
}

func TestRenamePersistsTitleForPathedNote(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	m := NewModel(session.New(), dir, st, clipboard.New(), nil, nil, false, 0, false)
	h := NewHarness(m)
	doc := m.session.Active()
	doc.SetPath(filepath.Join(dir, "note.md"))

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	typeText(h, "Journal")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	title, ok := st.Title(doc.Path())
	if !ok || title != "Journal" {
		t.Fatalf("expected stored title Journal, got %q (ok=%v)", title, ok)
	}
}

func TestRenameFormTypingEditsValue(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	typeText(h, "ab")
	h.Send(tea.KeyMsg{Type: tea.KeyBackspace})
	typeText(h, "c")

	if got := m.renameForm.Value(); got != "ac" {
		t.Fatalf("expected edited value %q, got %q", "ac", got)
	}
}
