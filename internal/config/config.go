package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sobir-git/fire-notes/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
	List    bool
}

const (
	envNotesDir = "FIRE_NOTES_DIR"
	envAutosave = "FIRE_NOTES_AUTOSAVE"
	envInterval = "FIRE_NOTES_AUTOSAVE_INTERVAL"
	envVerbose  = "FIRE_NOTES_VERBOSE"
	envTrace    = "FIRE_NOTES_TRACE"
	envLogFile  = "FIRE_NOTES_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("fire-notes", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	notesDir := fs.String("notes-dir", envOrDefault(env, envNotesDir, ""), "directory holding notes (defaults to the user data dir)")
	autosave := fs.Bool("autosave", envOrBool(env, envAutosave, false), "periodically save dirty documents that have a path")
	interval := fs.Int("autosave-interval", envOrInt(env, envInterval, 30), "seconds between autosave sweeps")
	list := fs.Bool("list", false, "print the notes directory as a table and exit")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "show success messages in the status bar")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			NotesDir:      *notesDir,
			Autosave:      *autosave,
			AutosaveEvery: time.Duration(*interval) * time.Second,
			Verbose:       *verbose,
			Files:         append([]string(nil), fs.Args()...),
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
			List:    *list,
		},
		Flags: map[string]string{
			"notesDir":         *notesDir,
			"autosave":         strconv.FormatBool(*autosave),
			"autosaveInterval": strconv.Itoa(*interval),
			"list":             strconv.FormatBool(*list),
			"trace":            strconv.FormatBool(*trace),
			"verbose":          strconv.FormatBool(*verbose),
			"logFile":          *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if cfg.App.Autosave && cfg.App.AutosaveEvery < time.Second {
		return fmt.Errorf("autosave interval must be >= 1s (got %s)", cfg.App.AutosaveEvery)
	}
	return nil
}
