package notes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s failed: %v", name, err)
	}
	return path
}

func TestScanFiltersAndTitles(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "note_1.md", "# Shopping List\n\nmilk\n")
	writeNote(t, dir, "note_2.txt", "\n\nplain title line\nbody\n")
	writeNote(t, dir, "ignore.json", "{}")
	writeNote(t, dir, ".hidden.md", "# secret")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(entries))
	}
	titles := map[string]string{}
	for _, e := range entries {
		titles[filepath.Base(e.Path)] = e.Title
	}
	if titles["note_1.md"] != "Shopping List" {
		t.Fatalf("expected heading stripped, got %q", titles["note_1.md"])
	}
	if titles["note_2.txt"] != "plain title line" {
		t.Fatalf("expected first non-empty line, got %q", titles["note_2.txt"])
	}
}

func TestScanOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	older := writeNote(t, dir, "old.md", "old")
	newer := writeNote(t, dir, "new.md", "new")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("chtimes failed: %v", err)
	}
	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if entries[0].Path != newer || entries[1].Path != older {
		t.Fatalf("expected newest first, got %v", []string{entries[0].Path, entries[1].Path})
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected an error for a missing directory")
	}
}

func TestTitleFallsBackToFilename(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "empty.md", "\n\n   \n")
	entries, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if entries[0].Title != "empty.md" {
		t.Fatalf("expected filename fallback, got %q", entries[0].Title)
	}
}

func TestGenerateFilenameAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	first := GenerateFilename(dir)
	if !strings.HasPrefix(filepath.Base(first), "note_") || !strings.HasSuffix(first, ".md") {
		t.Fatalf("unexpected filename %q", first)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	second := GenerateFilename(dir)
	if second == first {
		t.Fatalf("expected a fresh filename, got %q twice", first)
	}
}
