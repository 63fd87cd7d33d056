package session

import (
	"errors"
	"testing"

	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/rope"
)

func TestNewTabActivates(t *testing.T) {
	s := New()
	if s.Len() != 1 || s.ActiveIndex() != 0 {
		t.Fatalf("expected one active tab, got %d active=%d", s.Len(), s.ActiveIndex())
	}
	s.NewTab()
	if s.Len() != 2 || s.ActiveIndex() != 1 {
		t.Fatalf("expected two tabs with the new one active, got %d active=%d", s.Len(), s.ActiveIndex())
	}
	if err := s.CloseTab(1); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if s.Len() != 1 || s.ActiveIndex() != 0 {
		t.Fatalf("expected one tab active=0, got %d active=%d", s.Len(), s.ActiveIndex())
	}
}

func TestUntitledTitles(t *testing.T) {
	s := New()
	s.NewTab()
	infos := s.TabInfos()
	if infos[0].Title != "Untitled-1" || infos[1].Title != "Untitled-2" {
		t.Fatalf("expected sequential untitled names, got %q and %q", infos[0].Title, infos[1].Title)
	}
}

func TestCloseLastTabRejected(t *testing.T) {
	s := New()
	if err := s.CloseTab(0); !errors.Is(err, ErrLastTab) {
		t.Fatalf("expected ErrLastTab, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected session untouched, got %d tabs", s.Len())
	}
}

func TestCloseTabBounds(t *testing.T) {
	s := New()
	if err := s.CloseTab(3); !errors.Is(err, rope.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestCloseActivePrefersRightNeighbor(t *testing.T) {
	s := New()
	s.NewTab()
	s.NewTab()
	if err := s.SwitchTo(1); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	right := s.TabInfos()[2].ID
	if err := s.CloseTab(1); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if s.ActiveIndex() != 1 || s.ActiveID() != right {
		t.Fatalf("expected right neighbor active, got index %d", s.ActiveIndex())
	}
}

func TestCloseLastPositionFallsLeft(t *testing.T) {
	s := New()
	s.NewTab()
	if err := s.CloseTab(1); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if s.ActiveIndex() != 0 {
		t.Fatalf("expected left neighbor active, got %d", s.ActiveIndex())
	}
}

func TestCloseBeforeActiveShiftsIndex(t *testing.T) {
	s := New()
	s.NewTab()
	s.NewTab()
	active := s.ActiveID()
	if err := s.CloseTab(0); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if s.ActiveID() != active {
		t.Fatalf("expected the same document to stay active")
	}
	if s.ActiveIndex() != 1 {
		t.Fatalf("expected active index shifted to 1, got %d", s.ActiveIndex())
	}
}

func TestSwitchCycles(t *testing.T) {
	s := New()
	s.NewTab()
	s.NewTab()
	if err := s.SwitchTo(2); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	s.SwitchNext()
	if s.ActiveIndex() != 0 {
		t.Fatalf("expected wrap to 0, got %d", s.ActiveIndex())
	}
	s.SwitchPrev()
	if s.ActiveIndex() != 2 {
		t.Fatalf("expected wrap to 2, got %d", s.ActiveIndex())
	}
	if err := s.SwitchTo(7); !errors.Is(err, rope.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestFindByPath(t *testing.T) {
	s := New()
	d := editor.NewDocument()
	if err := d.Load("/notes/a.md", []byte("hello")); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	s.OpenDocument(d)
	idx, ok := s.FindByPath("/notes/a.md")
	if !ok || idx != 1 {
		t.Fatalf("expected to find tab 1, got %d ok=%v", idx, ok)
	}
	if _, ok := s.FindByPath(""); ok {
		t.Fatalf("expected empty path to never match")
	}
}

func TestRenameTab(t *testing.T) {
	s := New()
	if s.RenameTab(0, "") {
		t.Fatalf("expected empty title rejected")
	}
	if !s.RenameTab(0, "Ideas") {
		t.Fatalf("expected rename to apply")
	}
	if s.TabInfos()[0].Title != "Ideas" {
		t.Fatalf("expected title updated, got %q", s.TabInfos()[0].Title)
	}
}

func TestLoadTokenLastRequestWins(t *testing.T) {
	s := New()
	id := s.ActiveID()
	tok1, ok := s.BeginLoad(id)
	if !ok {
		t.Fatalf("expected token issued")
	}
	// An edit lands while the first load is in flight, then a second load
	// supersedes it.
	if err := s.Active().ApplyEdit("x"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	tok2, _ := s.BeginLoad(id)
	if s.ResolveLoad(id, tok1) {
		t.Fatalf("expected stale token discarded")
	}
	if !s.ResolveLoad(id, tok2) {
		t.Fatalf("expected newest token to resolve")
	}
	if s.ResolveLoad(id, tok2) {
		t.Fatalf("expected token consumed after resolving")
	}
}

func TestTokensInvalidatedByClose(t *testing.T) {
	s := New()
	s.NewTab()
	id := s.ActiveID()
	tok, _ := s.BeginLoad(id)
	if err := s.CloseTab(s.ActiveIndex()); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if s.ResolveLoad(id, tok) {
		t.Fatalf("expected token dead after close")
	}
}

func TestSaveTokenRequiresUnchangedRevision(t *testing.T) {
	s := New()
	id := s.ActiveID()
	if err := s.Active().ApplyEdit("content"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	tok, _ := s.BeginSave(id)
	if !s.ResolveSave(id, tok) {
		t.Fatalf("expected save token to resolve")
	}

	tok, _ = s.BeginSave(id)
	if err := s.Active().ApplyEdit("more"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if s.ResolveSave(id, tok) {
		t.Fatalf("expected interim edit to block the dirty clear")
	}
}
