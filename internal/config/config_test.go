package config

import (
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if cfg.App.NotesDir != "" {
		t.Fatalf("expected empty notes dir, got %q", cfg.App.NotesDir)
	}
	if cfg.App.Autosave {
		t.Fatal("autosave should default to off")
	}
	if cfg.App.AutosaveEvery != 30*time.Second {
		t.Fatalf("expected 30s autosave interval, got %s", cfg.App.AutosaveEvery)
	}
	if cfg.Features.List {
		t.Fatal("list should default to off")
	}
	if cfg.Logging.Trace {
		t.Fatal("trace should default to off")
	}
}

func TestLoadArgsFlagsOverrideEnvironment(t *testing.T) {
	environ := []string{
		"FIRE_NOTES_DIR=/env/notes",
		"FIRE_NOTES_TRACE=true",
		"FIRE_NOTES_LOG_FILE=/env/log",
	}
	args := []string{"--notes-dir", "/flag/notes", "--log-file", "/flag/log"}

	cfg, err := LoadArgs(args, environ)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if cfg.App.NotesDir != "/flag/notes" {
		t.Fatalf("expected flag to win, got %q", cfg.App.NotesDir)
	}
	if cfg.Logging.FilePath != "/flag/log" {
		t.Fatalf("expected flag log file, got %q", cfg.Logging.FilePath)
	}
	if !cfg.Logging.Trace {
		t.Fatal("expected trace enabled from environment")
	}
}

func TestLoadArgsEnvironmentFallback(t *testing.T) {
	environ := []string{
		"FIRE_NOTES_DIR=/env/notes",
		"FIRE_NOTES_AUTOSAVE=1",
		"FIRE_NOTES_AUTOSAVE_INTERVAL=5",
		"FIRE_NOTES_VERBOSE=true",
	}

	cfg, err := LoadArgs(nil, environ)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if cfg.App.NotesDir != "/env/notes" {
		t.Fatalf("expected env notes dir, got %q", cfg.App.NotesDir)
	}
	if !cfg.App.Autosave {
		t.Fatal("expected autosave from environment")
	}
	if cfg.App.AutosaveEvery != 5*time.Second {
		t.Fatalf("expected 5s interval, got %s", cfg.App.AutosaveEvery)
	}
	if !cfg.Features.Verbose {
		t.Fatal("expected verbose from environment")
	}
}

func TestLoadArgsMalformedEnvironmentIgnored(t *testing.T) {
	environ := []string{
		"FIRE_NOTES_AUTOSAVE=definitely",
		"FIRE_NOTES_AUTOSAVE_INTERVAL=soon",
		"",
		"NO_SEPARATOR",
	}

	cfg, err := LoadArgs(nil, environ)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if cfg.App.Autosave {
		t.Fatal("unparseable bool should fall back to default")
	}
	if cfg.App.AutosaveEvery != 30*time.Second {
		t.Fatalf("unparseable int should fall back, got %s", cfg.App.AutosaveEvery)
	}
}

func TestLoadArgsCollectsPositionalFiles(t *testing.T) {
	cfg, err := LoadArgs([]string{"--trace", "a.md", "b.txt"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if len(cfg.App.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(cfg.App.Files))
	}
	if cfg.App.Files[0] != "a.md" || cfg.App.Files[1] != "b.txt" {
		t.Fatalf("unexpected files: %v", cfg.App.Files)
	}
}

func TestValidateRejectsShortAutosaveInterval(t *testing.T) {
	cfg, err := LoadArgs([]string{"--autosave", "--autosave-interval", "0"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for zero interval")
	}

	cfg, err = LoadArgs([]string{"--autosave-interval", "0"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs failed: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("interval only matters with autosave on: %v", err)
	}
}
