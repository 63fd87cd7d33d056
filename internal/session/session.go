package session

import (
	"errors"
	"fmt"

	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/rope"
)

// ErrLastTab rejects closing the only remaining tab. Hosts may reinterpret
// it as a quit request.
var ErrLastTab = errors.New("cannot close the last tab")

// DocID is a stable handle for one open document. Async I/O results address
// documents by ID so tab removals never misroute them.
type DocID uint64

// Token tags one asynchronous load or save request. A result applies only
// while its token is still the newest issued for that document.
type Token uint64

type tab struct {
	id  DocID
	doc *editor.Document

	pendingLoad Token
	pendingSave Token
	saveRev     uint64
}

// Session holds the ordered open documents and the active index. It is
// driven synchronously by the host loop; the invariant that it never reaches
// zero documents is kept by CloseTab.
type Session struct {
	tabs     []*tab
	active   int
	nextID   DocID
	nextTok  Token
	untitled int
}

// New returns a session holding one untitled document.
func New() *Session {
	s := &Session{}
	s.NewTab()
	return s
}

// FromDocuments builds a session over restored documents. An empty slice
// falls back to a single untitled tab; active is clamped into range.
func FromDocuments(docs []*editor.Document, active int) *Session {
	s := &Session{}
	for _, d := range docs {
		s.appendDoc(d)
	}
	if len(s.tabs) == 0 {
		s.NewTab()
		return s
	}
	if active < 0 || active >= len(s.tabs) {
		active = 0
	}
	s.active = active
	return s
}

func (s *Session) appendDoc(d *editor.Document) DocID {
	s.nextID++
	if d.Title() == "" {
		d.SetTitle(s.nextUntitled())
	}
	s.tabs = append(s.tabs, &tab{id: s.nextID, doc: d})
	return s.nextID
}

func (s *Session) nextUntitled() string {
	s.untitled++
	return fmt.Sprintf("Untitled-%d", s.untitled)
}

// NewTab appends an empty untitled document and activates it.
func (s *Session) NewTab() DocID {
	d := editor.NewDocument()
	id := s.appendDoc(d)
	s.active = len(s.tabs) - 1
	return id
}

// OpenDocument appends an already-built document and activates it.
func (s *Session) OpenDocument(d *editor.Document) DocID {
	id := s.appendDoc(d)
	s.active = len(s.tabs) - 1
	return id
}

// CloseTab removes the document at index. The tab to its right inherits the
// active slot, else the one to its left. Outstanding I/O for the closed tab
// is implicitly invalidated because its ID can no longer resolve.
func (s *Session) CloseTab(index int) error {
	if index < 0 || index >= len(s.tabs) {
		return fmt.Errorf("session: close tab %d of %d: %w", index, len(s.tabs), rope.ErrIndexOutOfRange)
	}
	if len(s.tabs) == 1 {
		return ErrLastTab
	}
	s.tabs = append(s.tabs[:index], s.tabs[index+1:]...)
	switch {
	case s.active > index:
		s.active--
	case s.active >= len(s.tabs):
		s.active = len(s.tabs) - 1
	}
	return nil
}

// SwitchNext activates the tab after the current one, cyclically.
func (s *Session) SwitchNext() {
	s.active = (s.active + 1) % len(s.tabs)
}

// SwitchPrev activates the tab before the current one, cyclically.
func (s *Session) SwitchPrev() {
	s.active = (s.active - 1 + len(s.tabs)) % len(s.tabs)
}

// SwitchTo activates the tab at index.
func (s *Session) SwitchTo(index int) error {
	if index < 0 || index >= len(s.tabs) {
		return fmt.Errorf("session: switch to tab %d of %d: %w", index, len(s.tabs), rope.ErrIndexOutOfRange)
	}
	s.active = index
	return nil
}

// Len is the number of open tabs.
func (s *Session) Len() int { return len(s.tabs) }

// ActiveIndex is the index of the active tab.
func (s *Session) ActiveIndex() int { return s.active }

// Active is the active document.
func (s *Session) Active() *editor.Document { return s.tabs[s.active].doc }

// ActiveID is the active document's handle.
func (s *Session) ActiveID() DocID { return s.tabs[s.active].id }

// DocAt returns the document at index.
func (s *Session) DocAt(index int) (*editor.Document, error) {
	if index < 0 || index >= len(s.tabs) {
		return nil, fmt.Errorf("session: tab %d of %d: %w", index, len(s.tabs), rope.ErrIndexOutOfRange)
	}
	return s.tabs[index].doc, nil
}

// ByID resolves a document handle; ok is false once the tab closed.
func (s *Session) ByID(id DocID) (*editor.Document, int, bool) {
	for i, t := range s.tabs {
		if t.id == id {
			return t.doc, i, true
		}
	}
	return nil, 0, false
}

// FindByPath locates an open tab by its backing file.
func (s *Session) FindByPath(path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	for i, t := range s.tabs {
		if t.doc.Path() == path {
			return i, true
		}
	}
	return 0, false
}

// RenameTab retitles the tab at index; empty titles are rejected.
func (s *Session) RenameTab(index int, title string) bool {
	if index < 0 || index >= len(s.tabs) || title == "" {
		return false
	}
	s.tabs[index].doc.SetTitle(title)
	return true
}

// TabInfo is the render collaborator's view of one tab.
type TabInfo struct {
	ID    DocID
	Title string
	Dirty bool
}

// TabInfos lists the tab strip in order.
func (s *Session) TabInfos() []TabInfo {
	infos := make([]TabInfo, len(s.tabs))
	for i, t := range s.tabs {
		infos[i] = TabInfo{ID: t.id, Title: t.doc.Title(), Dirty: t.doc.Dirty()}
	}
	return infos
}

// BeginLoad issues a fresh load token for the document, superseding any
// outstanding load.
func (s *Session) BeginLoad(id DocID) (Token, bool) {
	t := s.tabByID(id)
	if t == nil {
		return 0, false
	}
	s.nextTok++
	t.pendingLoad = s.nextTok
	return s.nextTok, true
}

// ResolveLoad reports whether a load result with the given token is still
// current; a true result consumes the pending token.
func (s *Session) ResolveLoad(id DocID, token Token) bool {
	t := s.tabByID(id)
	if t == nil || t.pendingLoad != token {
		return false
	}
	t.pendingLoad = 0
	return true
}

// BeginSave issues a fresh save token and remembers the document revision the
// snapshot was taken at.
func (s *Session) BeginSave(id DocID) (Token, bool) {
	t := s.tabByID(id)
	if t == nil {
		return 0, false
	}
	s.nextTok++
	t.pendingSave = s.nextTok
	t.saveRev = t.doc.Revision()
	return s.nextTok, true
}

// ResolveSave reports whether a save result may clear the dirty flag: the
// token must be current and the document unedited since the snapshot.
func (s *Session) ResolveSave(id DocID, token Token) bool {
	t := s.tabByID(id)
	if t == nil || t.pendingSave != token {
		return false
	}
	t.pendingSave = 0
	return t.doc.Revision() == t.saveRev
}

func (s *Session) tabByID(id DocID) *tab {
	for _, t := range s.tabs {
		if t.id == id {
			return t
		}
	}
	return nil
}
