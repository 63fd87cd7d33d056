package events

import "github.com/sobir-git/fire-notes/internal/logging"

type DocumentTracer struct{}

var Document = DocumentTracer{}

func (DocumentTracer) Edit(title string, inserted, deleted int) {
	logging.Trace("document.edit", map[string]interface{}{"title": title, "inserted": inserted, "deleted": deleted})
}

func (DocumentTracer) Undo(title string, ok bool) {
	logging.Trace("document.undo", map[string]interface{}{"title": title, "ok": ok})
}

func (DocumentTracer) Redo(title string, ok bool) {
	logging.Trace("document.redo", map[string]interface{}{"title": title, "ok": ok})
}

func (DocumentTracer) Copy(chars int) {
	logging.Trace("document.copy", map[string]interface{}{"chars": chars})
}

func (DocumentTracer) Cut(chars int) {
	logging.Trace("document.cut", map[string]interface{}{"chars": chars})
}

func (DocumentTracer) Paste(chars int) {
	logging.Trace("document.paste", map[string]interface{}{"chars": chars})
}
