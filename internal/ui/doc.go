// Package ui contains the Bubble Tea program that powers the editor. The
// package is structured so the Model type focuses on message orchestration,
// while dedicated helpers own key handling, the picker, forms, and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages.
//   - Update forwards messages to the rename form while it is active. All
//     other messages go through a typed handler registry so each tea.Msg is
//     handled by a focused function (key presses, load and save results,
//     watcher events, clipboard results).
//   - Edit-mode key handling (internal/ui/keymap.go) translates chords into
//     document operations. Picker key handling (internal/ui/picker.go) owns
//     list navigation and the fuzzy filter, with text entry concerns kept
//     apart from the Bubble Tea event loop.
//
// State ownership:
//   - Tabs and their documents live in internal/session.Session; every edit
//     targets the active document through it.
//   - Picker list state lives in internal/ui/state.Level, which tracks items,
//     filtering, selection, and viewport calculations.
//   - File reads and writes run asynchronously via the internal/ui/command
//     bus. Results carry the session token they were issued under, and stale
//     results are discarded rather than applied.
//
// Backend interactions:
//   - A backend.Watcher polls the notes directory and any open files; Update
//     waits for those events and hands them to applyBackendEvent, which
//     refreshes the picker listing and reloads clean tabs whose files changed
//     on disk.
//
// This separation keeps Model.Update compact and makes it easier to test
// independent concerns (editing, filtering, async IO) without needing to
// reason about the entire TUI at once.
package ui
