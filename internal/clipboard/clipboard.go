package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
)

// Bridge talks to the system clipboard, falling back to an in-process buffer
// when none is reachable (headless sessions, missing xclip). Reads and writes
// happen off the update loop, so the fallback is guarded.
type Bridge struct {
	mu        sync.Mutex
	fallback  string
	useSystem bool
}

// New probes clipboard support once.
func New() *Bridge {
	return &Bridge{useSystem: !clipboard.Unsupported}
}

// SetText stores text, preferring the system clipboard.
func (b *Bridge) SetText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.useSystem {
		if err := clipboard.WriteAll(text); err == nil {
			b.fallback = text
			return nil
		}
		b.useSystem = false
	}
	b.fallback = text
	return nil
}

// GetText returns the current clipboard text; ok is false when it is empty.
func (b *Bridge) GetText() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.useSystem {
		if text, err := clipboard.ReadAll(); err == nil {
			if text == "" {
				return "", false
			}
			return text, true
		}
		b.useSystem = false
	}
	if b.fallback == "" {
		return "", false
	}
	return b.fallback, true
}
