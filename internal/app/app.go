package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sobir-git/fire-notes/internal/backend"
	"github.com/sobir-git/fire-notes/internal/clipboard"
	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/logging/events"
	"github.com/sobir-git/fire-notes/internal/notes"
	"github.com/sobir-git/fire-notes/internal/session"
	"github.com/sobir-git/fire-notes/internal/store"
	"github.com/sobir-git/fire-notes/internal/ui"
)

const (
	storeFilename = ".fire-notes.db"
	watchInterval = 1500 * time.Millisecond
)

// Config describes user-provided application options.
type Config struct {
	NotesDir      string
	Autosave      bool
	AutosaveEvery time.Duration
	Verbose       bool
	Files         []string
}

// Run bootstraps and executes the Bubble Tea program, then persists the
// final tab layout for the next start.
func Run(cfg Config) error {
	dir := cfg.NotesDir
	if dir == "" {
		dir = notes.DefaultDir()
	}
	if err := notes.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure notes directory: %w", err)
	}

	st, err := store.Open(filepath.Join(dir, storeFilename))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	docs, active, restore, err := restoreTabs(st, cfg.Files)
	if err != nil {
		return err
	}
	sess := session.FromDocuments(docs, active)
	events.App.SessionRestored(sess.Len())

	watcher := backend.NewWatcher(dir, watchInterval)
	defer watcher.Stop()

	model := ui.NewModel(sess, dir, st, clipboard.New(), watcher, restore, cfg.Autosave, cfg.AutosaveEvery, cfg.Verbose)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	final, ok := finalModel.(*ui.Model)
	if !ok {
		final = model
	}
	if err := st.SaveSession(final.SessionTabs()); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// restoreTabs rebuilds the documents from the stored session and appends any
// files named on the command line. Content is not read here; the UI issues
// the loads so the editor comes up immediately.
func restoreTabs(st *store.Store, files []string) ([]*editor.Document, int, map[string]ui.RestorePoint, error) {
	tabs, err := st.LoadSession()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load session: %w", err)
	}
	titles, err := st.Titles()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("load titles: %w", err)
	}

	docs := make([]*editor.Document, 0, len(tabs)+len(files))
	restore := make(map[string]ui.RestorePoint, len(tabs))
	index := map[string]int{}
	active := 0
	for _, tab := range tabs {
		if _, dup := index[tab.Path]; dup {
			continue
		}
		doc := editor.NewDocument()
		doc.SetPath(tab.Path)
		doc.SetTitle(storedTitle(titles, tab.Path))
		index[tab.Path] = len(docs)
		if tab.Active {
			active = len(docs)
		}
		restore[tab.Path] = ui.RestorePoint{Line: tab.CursorLine, Col: tab.CursorCol}
		docs = append(docs, doc)
	}
	for _, file := range files {
		path, err := filepath.Abs(file)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("resolve %s: %w", file, err)
		}
		if i, dup := index[path]; dup {
			active = i
			continue
		}
		doc := editor.NewDocument()
		doc.SetPath(path)
		doc.SetTitle(storedTitle(titles, path))
		index[path] = len(docs)
		active = len(docs)
		docs = append(docs, doc)
	}
	return docs, active, restore, nil
}

func storedTitle(titles map[string]string, path string) string {
	if title, ok := titles[path]; ok && title != "" {
		return title
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
