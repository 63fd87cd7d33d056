package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_CreateAndClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "state.db")

	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	if err := st.Close(); err != nil {
		t.Errorf("failed to close store: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file not created")
	}
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "deeper", "state.db")

	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store in nested dir: %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestStore_TitleRoundTrip(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	if _, ok := st.Title("/notes/a.md"); ok {
		t.Error("expected miss for unknown path")
	}

	if err := st.SetTitle("/notes/a.md", "Groceries"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	title, ok := st.Title("/notes/a.md")
	if !ok {
		t.Fatal("expected cached title")
	}
	if title != "Groceries" {
		t.Errorf("title = %q, want %q", title, "Groceries")
	}

	// Replacing an existing entry keeps one row per path.
	if err := st.SetTitle("/notes/a.md", "Shopping list"); err != nil {
		t.Fatalf("SetTitle replace failed: %v", err)
	}
	title, _ = st.Title("/notes/a.md")
	if title != "Shopping list" {
		t.Errorf("title after replace = %q, want %q", title, "Shopping list")
	}

	titles, err := st.Titles()
	if err != nil {
		t.Fatalf("Titles failed: %v", err)
	}
	if len(titles) != 1 {
		t.Fatalf("expected 1 cached title, got %d", len(titles))
	}
}

func TestStore_DeleteTitle(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	if err := st.SetTitle("/notes/gone.md", "Old"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}
	if err := st.DeleteTitle("/notes/gone.md"); err != nil {
		t.Fatalf("DeleteTitle failed: %v", err)
	}
	if _, ok := st.Title("/notes/gone.md"); ok {
		t.Error("title still present after delete")
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	loaded, err := st.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession on empty store failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty session, got %d tabs", len(loaded))
	}

	tabs := []SessionTab{
		{Path: "/notes/one.md", CursorLine: 3, CursorCol: 7},
		{Path: "/notes/two.md", CursorLine: 0, CursorCol: 0, Active: true},
		{Path: "/notes/three.md", CursorLine: 12, CursorCol: 1},
	}
	if err := st.SaveSession(tabs); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err = st.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if len(loaded) != len(tabs) {
		t.Fatalf("expected %d tabs, got %d", len(tabs), len(loaded))
	}
	for i := range tabs {
		if loaded[i] != tabs[i] {
			t.Errorf("tab %d = %+v, want %+v", i, loaded[i], tabs[i])
		}
	}
}

func TestStore_SaveSessionReplacesPrevious(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	first := []SessionTab{
		{Path: "/notes/a.md", Active: true},
		{Path: "/notes/b.md"},
	}
	if err := st.SaveSession(first); err != nil {
		t.Fatalf("first SaveSession failed: %v", err)
	}

	second := []SessionTab{{Path: "/notes/c.md", Active: true}}
	if err := st.SaveSession(second); err != nil {
		t.Fatalf("second SaveSession failed: %v", err)
	}

	loaded, err := st.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 tab after replace, got %d", len(loaded))
	}
	if loaded[0].Path != "/notes/c.md" {
		t.Errorf("tab path = %q, want %q", loaded[0].Path, "/notes/c.md")
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	st, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := st.SetTitle("/notes/keep.md", "Kept"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	st, err = Open(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer st.Close()

	title, ok := st.Title("/notes/keep.md")
	if !ok || title != "Kept" {
		t.Errorf("after reopen title = %q, %v; want %q, true", title, ok, "Kept")
	}
}
