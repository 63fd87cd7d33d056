package events

import "github.com/sobir-git/fire-notes/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Quit(tabs, dirty int) {
	logging.Trace("app.quit", map[string]interface{}{"tabs": tabs, "dirty": dirty})
}

func (AppTracer) SessionRestored(tabs int) {
	logging.Trace("app.session.restored", map[string]interface{}{"tabs": tabs})
}
