package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sobir-git/fire-notes/internal/clipboard"
	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

func TestEditSaveReopenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir)
	h := NewHarness(m)
	h.Send(tea.WindowSizeMsg{Width: 80, Height: 24})

	typeText(h, "# Plan\n\nbuy milk")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	first := m.session.Active().Path()
	if first == "" {
		t.Fatalf("expected generated path after save")
	}

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlN})
	typeText(h, "scratch pad")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})
	second := m.session.Active().Path()
	if second == "" || second == first {
		t.Fatalf("expected a distinct generated path, got %q and %q", first, second)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.picker == nil || len(m.picker.Items) != 2 {
		t.Fatalf("expected both saved notes listed")
	}
	if view := h.View(); !strings.Contains(view, "(open)") {
		t.Fatalf("expected open markers in picker, view =\n%s", view)
	}

	typeText(h, "plan")
	if len(m.picker.Items) != 1 {
		t.Fatalf("expected filter to isolate the first note, items = %+v", m.picker.Items)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if m.session.Len() != 2 {
		t.Fatalf("open note must reuse its tab, got %d tabs", m.session.Len())
	}
	if got := m.session.Active().Path(); got != first {
		t.Fatalf("expected switch back to the first note, got %q", got)
	}
	if got := m.session.Active().Buffer().String(); !strings.Contains(got, "buy milk") {
		t.Fatalf("expected original content intact, got %q", got)
	}
}

func TestSessionRestoreLoadsTabsAndCursors(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.md")
	pathB := filepath.Join(dir, "b.md")
	if err := os.WriteFile(pathA, []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatalf("write a.md: %v", err)
	}
	if err := os.WriteFile(pathB, []byte("one two three"), 0o644); err != nil {
		t.Fatalf("write b.md: %v", err)
	}

	docA := editor.NewDocument()
	docA.SetTitle("a")
	docA.SetPath(pathA)
	docB := editor.NewDocument()
	docB.SetTitle("b")
	docB.SetPath(pathB)
	sess := session.FromDocuments([]*editor.Document{docA, docB}, 1)
	restore := map[string]RestorePoint{
		pathA: {Line: 1, Col: 2},
		pathB: {Line: 0, Col: 4},
	}
	m := NewModel(sess, dir, nil, clipboard.New(), nil, restore, false, 0, false)
	h := NewHarness(m)
	h.Init()

	if got := docA.Buffer().String(); got != "alpha\nbeta\n" {
		t.Fatalf("expected first tab loaded, got %q", got)
	}
	if got := docB.Buffer().String(); got != "one two three" {
		t.Fatalf("expected second tab loaded, got %q", got)
	}
	if line, col := docA.CursorLineCol(); line != 1 || col != 2 {
		t.Fatalf("expected caret restored at 1:2, got %d:%d", line, col)
	}
	if line, col := docB.CursorLineCol(); line != 0 || col != 4 {
		t.Fatalf("expected caret restored at 0:4, got %d:%d", line, col)
	}
	if m.session.ActiveIndex() != 1 {
		t.Fatalf("expected second tab active, got %d", m.session.ActiveIndex())
	}
}

func TestQuitSavesAcrossTabs(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.md")

	docA := editor.NewDocument()
	docA.SetTitle("a")
	docA.SetPath(pathA)
	sess := session.FromDocuments([]*editor.Document{docA}, 0)
	m := NewModel(sess, dir, nil, clipboard.New(), nil, nil, false, 0, false)
	h := NewHarness(m)

	typeText(h, "first tab edit")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlN})
	typeText(h, "second tab text")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlQ})

	if !h.Quit() {
		t.Fatalf("expected quit after both saves resolved")
	}
	data, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("expected first tab written: %v", err)
	}
	if string(data) != "first tab edit" {
		t.Fatalf("expected first tab content, got %q", string(data))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected the untitled tab flushed to a generated file, got %d files", len(entries))
	}
}

func TestEditorKeysIgnoredWhilePickerOpen(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "x.md", "content", time.Hour)
	m := newTestModel(t, dir)
	h := NewHarness(m)
	h.Send(tea.WindowSizeMsg{Width: 50, Height: 24})

	typeText(h, "before")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlP})
	typeText(h, "x")

	if got := m.session.Active().Buffer().String(); got != "before" {
		t.Fatalf("picker input must not reach the document, got %q", got)
	}
	if m.picker.Filter != "x" {
		t.Fatalf("expected filter to capture typing, got %q", m.picker.Filter)
	}
}

func TestRenameThenSavePersistsRenamedTitle(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir)
	h := NewHarness(m)

	typeText(h, "body")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlU})
	typeText(h, "Todo")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})

	doc := m.session.Active()
	if doc.Title() != "Todo" {
		t.Fatalf("expected renamed title, got %q", doc.Title())
	}
	if doc.Dirty() {
		t.Fatalf("expected clean document after save")
	}
	if view := h.View(); !strings.Contains(view, "1:Todo") {
		t.Fatalf("expected renamed tab in view, view =\n%s", view)
	}
}

func TestWordMotionAndDeleteKeys(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	typeText(h, "alpha beta gamma")
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}, Alt: true})

	// alt+space is not bound; buffer must be untouched.
	if got := m.session.Active().Buffer().String(); got != "alpha beta gamma" {
		t.Fatalf("unbound chord must not edit, got %q", got)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyBackspace, Alt: true})
	if got := m.session.Active().Buffer().String(); got != "alpha beta " {
		t.Fatalf("expected word deleted backward, got %q", got)
	}
}

func TestSelectionExtendsWithShiftArrows(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	h := NewHarness(m)

	typeText(h, "abc")
	h.Send(tea.KeyMsg{Type: tea.KeyHome})
	h.Send(tea.KeyMsg{Type: tea.KeyShiftRight})
	h.Send(tea.KeyMsg{Type: tea.KeyShiftRight})

	doc := m.session.Active()
	start, end, ok := doc.Cursor().SelectedRange()
	if !ok || start != 0 || end != 2 {
		t.Fatalf("expected selection [0,2), got [%d,%d) ok=%v", start, end, ok)
	}

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlV})
	if got := doc.Buffer().String(); got != "ababc" {
		t.Fatalf("expected selection copy pasted at caret, got %q", got)
	}
}
