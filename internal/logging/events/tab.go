package events

import "github.com/sobir-git/fire-notes/internal/logging"

type TabTracer struct{}

type tabReason string

const (
	TabReasonEscape tabReason = "escape"
	TabReasonEmpty  tabReason = "empty"
)

var Tab = TabTracer{}

func (TabTracer) New(title string, existing int) {
	logging.Trace("tab.new", map[string]interface{}{"title": title, "existing": existing})
}

func (TabTracer) Close(index int, title string) {
	logging.Trace("tab.close", map[string]interface{}{"index": index, "title": title})
}

func (TabTracer) Switch(index int, title string) {
	logging.Trace("tab.switch", map[string]interface{}{"index": index, "title": title})
}

func (TabTracer) RenamePrompt(title string) {
	logging.Trace("tab.rename.prompt", map[string]interface{}{"title": title})
}

func (TabTracer) Rename(old, title string) {
	logging.Trace("tab.rename", map[string]interface{}{"old": old, "title": title})
}

func (TabTracer) CancelRename(title string, reason tabReason) {
	logging.Trace("tab.rename.cancel", map[string]interface{}{"title": title, "reason": string(reason)})
}

func (TabTracer) SubmitRename(old, title string) {
	logging.Trace("tab.rename.submit", map[string]interface{}{"old": old, "title": title})
}
