package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/sobir-git/fire-notes/internal/app"
	"github.com/sobir-git/fire-notes/internal/config"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			NotesDir:      "/tmp/notes",
			Autosave:      true,
			AutosaveEvery: 30 * time.Second,
			Verbose:       true,
			Files:         []string{"draft.md"},
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"notesDir":         "/tmp/notes",
			"autosave":         "true",
			"autosaveInterval": "30",
			"verbose":          "true",
		},
		Args: []string{"--notes-dir", "/tmp/notes", "draft.md"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["notesDir"] != "/tmp/notes" {
		t.Fatalf("expected notesDir flag %q, got %v", "/tmp/notes", flagsValue["notesDir"])
	}
	if flagsValue["autosave"] != "true" {
		t.Fatalf("expected autosave flag true, got %v", flagsValue["autosave"])
	}
	if flagsValue["autosaveInterval"] != "30" {
		t.Fatalf("expected autosaveInterval 30, got %v", flagsValue["autosaveInterval"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["verbose"] != "true" {
		t.Fatalf("expected verbose flag true, got %v", flagsValue["verbose"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if !reflect.DeepEqual(cfgValue.App, cfg.App) {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

func TestListNotesRendersTable(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	write("groceries.md", "# Groceries\n\nmilk\neggs\n")
	write("ideas.txt", "Ideas for later\n")

	output, err := listNotes(dir)
	if err != nil {
		t.Fatalf("listNotes failed: %v", err)
	}
	for _, want := range []string{"TITLE", "SIZE", "MODIFIED", "FILE", "Groceries", "Ideas for later"} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected list output to contain %q, got:\n%s", want, output)
		}
	}
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), output)
	}
}

func TestListNotesEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	output, err := listNotes(dir)
	if err != nil {
		t.Fatalf("listNotes failed: %v", err)
	}
	if !strings.Contains(output, "No notes in") {
		t.Fatalf("expected empty-directory message, got %q", output)
	}
}
