package editor

type stepKind int

const (
	stepInsert stepKind = iota
	stepDelete
)

// editStep is one reversible buffer mutation together with the caret on both
// sides of it.
type editStep struct {
	kind        stepKind
	offset      int
	text        string
	caretBefore int
	caretAfter  int
}

type history struct {
	undo []editStep
	redo []editStep
}

// historyLimit caps how many steps are retained; the oldest fall off.
const historyLimit = 1000

func (h *history) push(s editStep) {
	h.undo = append(h.undo, s)
	if len(h.undo) > historyLimit {
		h.undo = h.undo[len(h.undo)-historyLimit:]
	}
	h.redo = h.redo[:0]
}

func (h *history) popUndo() (editStep, bool) {
	if len(h.undo) == 0 {
		return editStep{}, false
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return s, true
}

func (h *history) popRedo() (editStep, bool) {
	if len(h.redo) == 0 {
		return editStep{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return s, true
}

func (h *history) clear() {
	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}
