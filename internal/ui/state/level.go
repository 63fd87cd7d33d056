package state

// Level encapsulates list state for a picker: cursor position, filter,
// selection, and viewport.
type Level struct {
	Title          string
	Items          []Item
	Full           []Item
	Filter         string
	FilterCursor   int
	Cursor         int
	MultiSelect    bool
	Selected       map[string]struct{}
	LastCursor     int
	ViewportOffset int
}

// NewLevel constructs a Level over the provided items.
func NewLevel(title string, items []Item) *Level {
	l := &Level{
		Title:      title,
		Cursor:     -1,
		LastCursor: -1,
		Selected:   make(map[string]struct{}),
	}
	l.UpdateItems(items)
	if len(l.Items) > 0 {
		l.Cursor = 0
	}
	return l
}

// IndexOf returns the index for a given item identifier.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// UpdateItems refreshes the level items while preserving selections and the
// viewport where possible.
func (l *Level) UpdateItems(items []Item) {
	prevOffset := l.ViewportOffset
	l.Full = CloneItems(items)
	l.CleanupSelections()
	l.applyFilter()
	if len(l.Items) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 {
		prevOffset = 0
	}
	if prevOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}
