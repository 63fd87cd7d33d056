package command

import (
	"fmt"

	"github.com/sobir-git/fire-notes/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Request encapsulates one asynchronous action: a piece of work that runs off
// the update loop and reports back as a message.
type Request struct {
	ID    string
	Label string
	Run   func() tea.Msg
}

// Bus coordinates the execution of asynchronous editor actions.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps a request into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Run == nil {
			events.Command.Skip(req.ID, req.Label)
			return nil
		}
		msg := req.Run()
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}
