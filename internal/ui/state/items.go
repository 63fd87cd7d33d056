package state

// Item is one row in a pickable list. ID carries the stable identity
// (a file path for note entries); Label is what the user sees.
type Item struct {
	ID    string
	Label string
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
