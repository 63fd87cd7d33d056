package backend

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sobir-git/fire-notes/internal/notes"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindNotes Kind = iota
	KindFileChanged
)

// Event conveys updated data or an error from a backend poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// FileChange reports that a watched file was modified or removed on disk.
type FileChange struct {
	Path string
	Gone bool
}

// Watcher polls the notes directory and any watched files at a fixed
// interval. It emits an event only when something actually changed, so
// the UI is not redrawn on every tick.
type Watcher struct {
	dir      string
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	mu          sync.Mutex
	watched     map[string]time.Time
	fingerprint string
	polled      bool
}

// NewWatcher creates a watcher that polls dir every interval.
func NewWatcher(dir string, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
		watched:  make(map[string]time.Time),
	}

	w.startNotesPoller()
	w.startFilePoller()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Pollers exit after their current poll completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Touch re-baselines a watched file after the editor's own write so the next
// poll does not report it as an external change.
func (w *Watcher) Touch(path string) {
	info, err := os.Stat(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[path]; !ok {
		return
	}
	if err != nil {
		w.watched[path] = time.Time{}
		return
	}
	w.watched[path] = info.ModTime()
}

// SetWatched replaces the set of files checked for external modification.
// Baselines for files already being watched are kept.
func (w *Watcher) SetWatched(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		next[p] = w.watched[p]
	}
	w.watched = next
}

func (w *Watcher) startNotesPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(func() (Event, bool) {
			throttle.wait(w.ctx)
			return w.scanNotes()
		})
	}()
}

func (w *Watcher) startFilePoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(func() (Event, bool) {
			throttle.wait(w.ctx)
			return w.checkWatched()
		})
	}()
}

// pollLoop runs check immediately and then once per interval, forwarding
// events that report a change. It returns when the watcher is stopped.
func (w *Watcher) pollLoop(check func() (Event, bool)) {
	emit := func() bool {
		evt, changed := check()
		if !changed {
			return true
		}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

// scanNotes lists the notes directory and reports the listing when it
// differs from the previous poll. The first poll always reports.
func (w *Watcher) scanNotes() (Event, bool) {
	entries, err := notes.Scan(w.dir)
	if err != nil {
		if !w.swapFingerprint("error: " + err.Error()) {
			return Event{}, false
		}
		return Event{Kind: KindNotes, Err: err}, true
	}

	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s|%d|%d;", e.Path, e.ModTime.UnixNano(), e.Size)
	}
	if !w.swapFingerprint(sb.String()) {
		return Event{}, false
	}
	return Event{Kind: KindNotes, Data: entries}, true
}

// swapFingerprint records the latest listing fingerprint and reports
// whether an event should be emitted. The first poll always reports so
// the UI receives the initial listing.
func (w *Watcher) swapFingerprint(fp string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.polled && w.fingerprint == fp {
		return false
	}
	w.polled = true
	w.fingerprint = fp
	return true
}

// checkWatched stats every watched file and reports the first one whose
// modification time moved past its baseline. Files seen for the first time
// only record a baseline; a missing file reports once and drops out.
func (w *Watcher) checkWatched() (Event, bool) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.watched))
	for p := range w.watched {
		paths = append(paths, p)
	}
	w.mu.Unlock()
	sort.Strings(paths)

	for _, p := range paths {
		info, err := os.Stat(p)

		w.mu.Lock()
		base, still := w.watched[p]
		if !still {
			w.mu.Unlock()
			continue
		}
		if err != nil {
			delete(w.watched, p)
			w.mu.Unlock()
			if base.IsZero() {
				continue
			}
			return Event{Kind: KindFileChanged, Data: FileChange{Path: p, Gone: true}}, true
		}
		if base.IsZero() {
			w.watched[p] = info.ModTime()
			w.mu.Unlock()
			continue
		}
		if info.ModTime().After(base) {
			w.watched[p] = info.ModTime()
			w.mu.Unlock()
			return Event{Kind: KindFileChanged, Data: FileChange{Path: p}}, true
		}
		w.mu.Unlock()
	}

	return Event{}, false
}
