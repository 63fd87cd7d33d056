package events

import "github.com/sobir-git/fire-notes/internal/logging"

type FileTracer struct{}

var File = FileTracer{}

func (FileTracer) LoadRequest(path string, token uint64) {
	logging.Trace("file.load.request", map[string]interface{}{"path": path, "token": token})
}

func (FileTracer) LoadResult(path string, token uint64, err error) {
	payload := map[string]interface{}{"path": path, "token": token}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("file.load.result", payload)
}

func (FileTracer) LoadDiscarded(path string, token uint64) {
	logging.Trace("file.load.discarded", map[string]interface{}{"path": path, "token": token})
}

func (FileTracer) SaveRequest(path string, token uint64, bytes int) {
	logging.Trace("file.save.request", map[string]interface{}{"path": path, "token": token, "bytes": bytes})
}

func (FileTracer) SaveResult(path string, token uint64, err error) {
	payload := map[string]interface{}{"path": path, "token": token}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("file.save.result", payload)
}

func (FileTracer) SaveDiscarded(path string, token uint64) {
	logging.Trace("file.save.discarded", map[string]interface{}{"path": path, "token": token})
}

func (FileTracer) Scan(dir string, entries int, err error) {
	payload := map[string]interface{}{"dir": dir, "entries": entries}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("file.scan", payload)
}
