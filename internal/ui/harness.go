package ui

import (
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

// Harness drives the UI model programmatically for integration tests,
// executing returned commands synchronously.
type Harness struct {
	model *Model
	quit  bool
}

// NewHarness creates a harness for the provided model. The filter cursor is
// switched to static so command chains never wait on blink ticks.
func NewHarness(model *Model) *Harness {
	model.filterCursor.SetMode(cursor.CursorStatic)
	return &Harness{model: model}
}

// Init runs the model's startup commands.
func (h *Harness) Init() {
	if h.model == nil {
		return
	}
	h.processCmd(h.model.Init())
}

// Send routes a message through the model and executes any returned commands.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil || h.quit {
		return
	}
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(cmd)
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	if cmd == nil || h.quit {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	h.dispatch(msg)
}

func (h *Harness) dispatch(msg tea.Msg) {
	switch typed := msg.(type) {
	case tea.QuitMsg:
		h.quit = true
		return
	case tea.BatchMsg:
		for _, cmd := range typed {
			h.processCmd(cmd)
		}
		return
	}
	mdl, next := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.processCmd(next)
}

// Quit reports whether the model has requested shutdown.
func (h *Harness) Quit() bool { return h.quit }

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}
