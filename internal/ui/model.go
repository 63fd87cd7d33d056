package ui

import (
	"errors"
	"reflect"
	"time"

	"github.com/sobir-git/fire-notes/internal/backend"
	"github.com/sobir-git/fire-notes/internal/clipboard"
	"github.com/sobir-git/fire-notes/internal/editor"
	"github.com/sobir-git/fire-notes/internal/fileio"
	"github.com/sobir-git/fire-notes/internal/logging/events"
	"github.com/sobir-git/fire-notes/internal/notes"
	"github.com/sobir-git/fire-notes/internal/session"
	"github.com/sobir-git/fire-notes/internal/store"
	"github.com/sobir-git/fire-notes/internal/theme"
	"github.com/sobir-git/fire-notes/internal/ui/command"
	uistate "github.com/sobir-git/fire-notes/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

type level = uistate.Level

type Mode int

const (
	ModeEdit Mode = iota
	ModePicker
	ModeRename
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// RestorePoint is a remembered caret position for a file reopened from a
// previous session; it is applied once the file content has loaded.
type RestorePoint struct {
	Line int
	Col  int
}

// Model implements the Bubble Tea model for the editor.
type Model struct {
	session  *session.Session
	notesDir string
	store    *store.Store
	clip     *clipboard.Bridge

	mode       Mode
	width      int
	height     int
	errMsg     string
	infoMsg    string
	infoExpire time.Time
	verbose    bool

	autosave      bool
	autosaveEvery time.Duration

	quitting     bool
	pendingSaves int

	backend        *backend.Watcher
	backendState   map[backend.Kind]error
	backendLastErr string

	notes      []notes.Entry
	picker     *level
	preview    previewData
	previewSeq int

	renameForm *RenameForm

	restore map[string]RestorePoint

	filterCursor      cursor.Model
	filterCursorDirty bool

	viewports map[session.DocID]*viewport

	handlers map[reflect.Type]msgHandler
	bus      *command.Bus
}

// NewModel initialises the UI over an existing session. restore holds caret
// positions to reapply once reopened files finish loading; it may be nil.
func NewModel(sess *session.Session, notesDir string, st *store.Store, clip *clipboard.Bridge, watcher *backend.Watcher, restore map[string]RestorePoint, autosave bool, autosaveEvery time.Duration, verbose bool) *Model {
	if restore == nil {
		restore = map[string]RestorePoint{}
	}
	m := &Model{
		session:       sess,
		notesDir:      notesDir,
		store:         st,
		clip:          clip,
		backend:       watcher,
		backendState:  map[backend.Kind]error{},
		mode:          ModeEdit,
		verbose:       verbose,
		autosave:      autosave,
		autosaveEvery: autosaveEvery,
		restore:       restore,
		viewports:     map[session.DocID]*viewport{},
		bus:           command.New(),
	}
	c := cursor.New()
	if styles.CursorCell != nil {
		c.Style = styles.CursorCell.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	m.syncWatched()
	return m
}

// Init is part of the tea.Model interface. It kicks off loads for restored
// tabs whose content has not been read yet.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	for i, info := range m.session.TabInfos() {
		doc, err := m.session.DocAt(i)
		if err != nil || doc.Path() == "" || doc.Buffer().Len() > 0 {
			continue
		}
		token, ok := m.session.BeginLoad(info.ID)
		if !ok {
			continue
		}
		events.File.LoadRequest(doc.Path(), uint64(token))
		cmds = append(cmds, m.loadCmd(info.ID, token, doc.Path()))
	}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.scheduleAutosave(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handled, cmd := m.handleActiveForm(msg); handled {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	return m, m.finishUpdate(cmds)
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) handleActiveForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.mode == ModeRename {
		return m.handleRenameForm(msg)
	}
	return false, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(loadResultMsg{}):     m.handleLoadResultMsg,
		reflect.TypeOf(saveResultMsg{}):     m.handleSaveResultMsg,
		reflect.TypeOf(notesLoadedMsg{}):    m.handleNotesLoadedMsg,
		reflect.TypeOf(clipboardReadMsg{}):  m.handleClipboardReadMsg,
		reflect.TypeOf(clipboardWroteMsg{}): m.handleClipboardWroteMsg,
		reflect.TypeOf(autosaveTickMsg{}):   m.handleAutosaveTickMsg,
		reflect.TypeOf(previewLoadedMsg{}):  m.handlePreviewLoadedMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.mode == ModePicker {
		return m.handlePickerKey(key)
	}
	return m.handleEditKey(key)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = resize.Width
	m.height = resize.Height
	if m.picker != nil {
		m.syncViewport(m.picker)
	}
	return nil
}

func (m *Model) handleLoadResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(loadResultMsg)
	if !ok {
		return nil
	}
	events.File.LoadResult(res.path, uint64(res.token), res.err)
	if !m.session.ResolveLoad(res.id, res.token) {
		events.File.LoadDiscarded(res.path, uint64(res.token))
		return nil
	}
	if res.err != nil {
		// A missing file is a note that has not been written yet; keep the
		// empty buffer and create it on the first save.
		if errors.Is(res.err, fileio.ErrNotFound) {
			m.errMsg = ""
			return nil
		}
		m.errMsg = res.err.Error()
		events.Action.Error(res.err)
		return nil
	}
	doc, _, found := m.session.ByID(res.id)
	if !found {
		return nil
	}
	if err := doc.Load(res.path, res.data); err != nil {
		m.errMsg = err.Error()
		events.Action.Error(err)
		return nil
	}
	if pos, ok := m.restore[res.path]; ok {
		delete(m.restore, res.path)
		if off, err := doc.Buffer().LineColToOffset(pos.Line, pos.Col); err == nil {
			doc.Cursor().Set(off)
		}
	}
	m.errMsg = ""
	return nil
}

func (m *Model) handleSaveResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(saveResultMsg)
	if !ok {
		return nil
	}
	events.File.SaveResult(res.path, uint64(res.token), res.err)
	current := m.session.ResolveSave(res.id, res.token)
	switch {
	case res.err != nil:
		m.errMsg = res.err.Error()
		events.Action.Error(res.err)
	case !current:
		events.File.SaveDiscarded(res.path, uint64(res.token))
	default:
		if doc, _, found := m.session.ByID(res.id); found {
			doc.MarkSaved()
		}
		if m.backend != nil {
			m.backend.Touch(res.path)
		}
		m.errMsg = ""
		m.setInfo("Saved " + res.path + " (" + humanBytes(res.bytes) + ")")
	}
	if m.quitting {
		m.pendingSaves--
		if m.pendingSaves <= 0 {
			return tea.Quit
		}
	}
	return nil
}

func (m *Model) handleNotesLoadedMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(notesLoadedMsg)
	if !ok {
		return nil
	}
	if res.err != nil {
		m.errMsg = res.err.Error()
		return nil
	}
	m.notes = res.entries
	if m.picker != nil {
		m.picker.UpdateItems(m.noteItems(res.entries))
		m.syncViewport(m.picker)
		return m.refreshPreview()
	}
	return nil
}

func (m *Model) handleClipboardReadMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(clipboardReadMsg)
	if !ok {
		return nil
	}
	if !res.ok || res.text == "" {
		return nil
	}
	doc := m.session.Active()
	if err := doc.Paste(res.text); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	events.Document.Paste(len([]rune(res.text)))
	return m.autosaveActiveCmd()
}

func (m *Model) handleClipboardWroteMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(clipboardWroteMsg)
	if !ok {
		return nil
	}
	if res.err != nil {
		m.errMsg = res.err.Error()
		return nil
	}
	if m.verbose {
		m.setInfo("Copied " + humanCount(res.chars, "character"))
	}
	return nil
}

func (m *Model) handleAutosaveTickMsg(msg tea.Msg) tea.Cmd {
	cmds := []tea.Cmd{}
	for i, info := range m.session.TabInfos() {
		if !info.Dirty {
			continue
		}
		doc, err := m.session.DocAt(i)
		if err != nil || doc.Path() == "" {
			continue
		}
		if cmd := m.saveDoc(info.ID, doc, false); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if cmd := m.scheduleAutosave(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// saveDoc snapshots a document and issues the asynchronous write. With
// generatePath a pathless document is assigned a fresh filename in the notes
// directory; otherwise it is skipped.
func (m *Model) saveDoc(id session.DocID, doc *editor.Document, generatePath bool) tea.Cmd {
	if doc.Path() == "" {
		if !generatePath {
			return nil
		}
		doc.SetPath(notes.GenerateFilename(m.notesDir))
		m.syncWatched()
	}
	path, data, err := doc.Snapshot()
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	if m.store != nil && doc.Title() != "" {
		if err := m.store.SetTitle(path, doc.Title()); err != nil {
			events.Action.Error(err)
		}
	}
	token, ok := m.session.BeginSave(id)
	if !ok {
		return nil
	}
	events.File.SaveRequest(path, uint64(token), len(data))
	return m.saveCmd(id, token, path, data)
}

func (m *Model) autosaveActiveCmd() tea.Cmd {
	if !m.autosave {
		return nil
	}
	doc := m.session.Active()
	if !doc.Dirty() || doc.Path() == "" {
		return nil
	}
	return m.saveDoc(m.session.ActiveID(), doc, false)
}

// beginQuit saves every dirty document and quits once the writes resolve.
// Dirty documents that never had a path receive generated filenames; empty
// untitled tabs are dropped.
func (m *Model) beginQuit() tea.Cmd {
	cmds := []tea.Cmd{}
	dirty := 0
	for i, info := range m.session.TabInfos() {
		doc, err := m.session.DocAt(i)
		if err != nil || !doc.Dirty() {
			continue
		}
		if doc.Path() == "" && doc.Buffer().Len() == 0 {
			continue
		}
		dirty++
		if cmd := m.saveDoc(info.ID, doc, true); cmd != nil {
			cmds = append(cmds, cmd)
			m.pendingSaves++
		}
	}
	events.App.Quit(m.session.Len(), dirty)
	if m.pendingSaves == 0 {
		return tea.Quit
	}
	m.quitting = true
	return tea.Batch(cmds...)
}

// SessionTabs reports the open tabs for session persistence. Pathless tabs
// are omitted; they have nothing to reopen.
func (m *Model) SessionTabs() []store.SessionTab {
	infos := m.session.TabInfos()
	tabs := make([]store.SessionTab, 0, len(infos))
	for i := range infos {
		doc, err := m.session.DocAt(i)
		if err != nil || doc.Path() == "" {
			continue
		}
		line, col := doc.CursorLineCol()
		tabs = append(tabs, store.SessionTab{
			Path:       doc.Path(),
			CursorLine: line,
			CursorCol:  col,
			Active:     i == m.session.ActiveIndex(),
		})
	}
	return tabs
}

// syncWatched points the directory watcher at the files open in tabs so
// external modifications are noticed.
func (m *Model) syncWatched() {
	if m.backend == nil {
		return
	}
	paths := []string{}
	for i := 0; i < m.session.Len(); i++ {
		doc, err := m.session.DocAt(i)
		if err != nil || doc.Path() == "" {
			continue
		}
		paths = append(paths, doc.Path())
	}
	m.backend.SetWatched(paths)
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisiblePickerItems())
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
	events.Action.Success(message)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}
