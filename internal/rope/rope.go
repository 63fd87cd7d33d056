package rope

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Leaf and fanout bounds. Leaves stay small enough that a per-leaf scan is
// cheap; merges keep siblings above the minimum after every operation.
const (
	maxLeafLen  = 256
	minLeafLen  = maxLeafLen / 4
	maxChildren = 8
	minChildren = maxChildren / 2
)

var (
	// ErrIndexOutOfRange reports an offset or range outside the buffer.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidBoundary reports text that is not valid scalar-value data.
	ErrInvalidBoundary = errors.New("invalid boundary")
)

type nodeID int32

type node struct {
	leaf     bool
	chars    int
	breaks   int
	text     []rune
	children []nodeID
}

// Buffer holds text as a balanced tree of chunks. Nodes live in an arena
// indexed by integer handles; offsets and lengths are in Unicode scalar
// values.
type Buffer struct {
	nodes []node
	free  []nodeID
	root  nodeID
}

// New returns an empty buffer.
func New() *Buffer {
	b := &Buffer{}
	b.root = b.alloc(node{leaf: true})
	return b
}

// NewFromString builds a buffer from s in one bottom-up pass.
func NewFromString(s string) (*Buffer, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("rope: content is not valid UTF-8: %w", ErrInvalidBoundary)
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return New(), nil
	}
	b := &Buffer{}
	level := make([]nodeID, 0, len(runes)/maxLeafLen+1)
	for _, size := range evenPieces(len(runes), maxLeafLen) {
		chunk := make([]rune, size)
		copy(chunk, runes[:size])
		runes = runes[size:]
		level = append(level, b.alloc(leafNode(chunk)))
	}
	for len(level) > 1 {
		next := make([]nodeID, 0, len(level)/maxChildren+1)
		rest := level
		for _, size := range evenPieces(len(level), maxChildren) {
			kids := make([]nodeID, size)
			copy(kids, rest[:size])
			rest = rest[size:]
			next = append(next, b.alloc(b.internalNode(kids)))
		}
		level = next
	}
	b.root = level[0]
	return b, nil
}

// Len is the total rune count.
func (b *Buffer) Len() int { return b.nodes[b.root].chars }

// LineCount is the number of lines; an empty buffer has one.
func (b *Buffer) LineCount() int { return b.nodes[b.root].breaks + 1 }

// String reassembles the full text.
func (b *Buffer) String() string {
	s, _ := b.Slice(0, b.Len())
	return s
}

// Insert places text at offset and returns the new length.
func (b *Buffer) Insert(offset int, text string) (int, error) {
	if offset < 0 || offset > b.Len() {
		return 0, fmt.Errorf("rope: insert at %d in buffer of length %d: %w", offset, b.Len(), ErrIndexOutOfRange)
	}
	if !utf8.ValidString(text) {
		return 0, fmt.Errorf("rope: insert text is not valid UTF-8: %w", ErrInvalidBoundary)
	}
	runes := []rune(text)
	// Large pastes go in leaf-sized steps so each split stays local.
	for len(runes) > 0 {
		step := len(runes)
		if step > maxLeafLen/2 {
			step = maxLeafLen / 2
		}
		b.insertRunes(offset, runes[:step])
		offset += step
		runes = runes[step:]
	}
	return b.Len(), nil
}

// Delete removes [start, end) and returns the removed text.
func (b *Buffer) Delete(start, end int) (string, error) {
	if start < 0 || start > end || end > b.Len() {
		return "", fmt.Errorf("rope: delete [%d, %d) in buffer of length %d: %w", start, end, b.Len(), ErrIndexOutOfRange)
	}
	if start == end {
		return "", nil
	}
	removed, err := b.Slice(start, end)
	if err != nil {
		return "", err
	}
	b.deleteRange(b.root, start, end)
	b.fixRoot()
	return removed, nil
}

// Slice extracts [start, end) without mutating the buffer.
func (b *Buffer) Slice(start, end int) (string, error) {
	if start < 0 || start > end || end > b.Len() {
		return "", fmt.Errorf("rope: slice [%d, %d) in buffer of length %d: %w", start, end, b.Len(), ErrIndexOutOfRange)
	}
	var sb strings.Builder
	b.collect(b.root, start, end, &sb)
	return sb.String(), nil
}

// RuneAt returns the rune at offset.
func (b *Buffer) RuneAt(offset int) (rune, error) {
	if offset < 0 || offset >= b.Len() {
		return 0, fmt.Errorf("rope: rune at %d in buffer of length %d: %w", offset, b.Len(), ErrIndexOutOfRange)
	}
	id := b.root
	for !b.nodes[id].leaf {
		for _, c := range b.nodes[id].children {
			chars := b.nodes[c].chars
			if offset < chars {
				id = c
				break
			}
			offset -= chars
		}
	}
	return b.nodes[id].text[offset], nil
}

func (b *Buffer) alloc(n node) nodeID {
	if k := len(b.free); k > 0 {
		id := b.free[k-1]
		b.free = b.free[:k-1]
		b.nodes[id] = n
		return id
	}
	b.nodes = append(b.nodes, n)
	return nodeID(len(b.nodes) - 1)
}

func (b *Buffer) release(id nodeID) {
	b.nodes[id] = node{}
	b.free = append(b.free, id)
}

func (b *Buffer) releaseTree(id nodeID) {
	if !b.nodes[id].leaf {
		for _, c := range b.nodes[id].children {
			b.releaseTree(c)
		}
	}
	b.release(id)
}

func leafNode(text []rune) node {
	return node{leaf: true, chars: len(text), breaks: countBreaks(text), text: text}
}

func (b *Buffer) internalNode(children []nodeID) node {
	n := node{children: children}
	for _, c := range children {
		n.chars += b.nodes[c].chars
		n.breaks += b.nodes[c].breaks
	}
	return n
}

func countBreaks(text []rune) int {
	n := 0
	for _, r := range text {
		if r == '\n' {
			n++
		}
	}
	return n
}

func (b *Buffer) refreshLeaf(id nodeID) {
	text := b.nodes[id].text
	b.nodes[id].chars = len(text)
	b.nodes[id].breaks = countBreaks(text)
}

func (b *Buffer) refresh(id nodeID) {
	chars, breaks := 0, 0
	for _, c := range b.nodes[id].children {
		chars += b.nodes[c].chars
		breaks += b.nodes[c].breaks
	}
	b.nodes[id].chars = chars
	b.nodes[id].breaks = breaks
}

func (b *Buffer) insertRunes(offset int, runes []rune) {
	extra := b.insertAt(b.root, offset, runes)
	if len(extra) == 0 {
		return
	}
	children := make([]nodeID, 0, len(extra)+1)
	children = append(children, b.root)
	children = append(children, extra...)
	b.root = b.alloc(b.internalNode(children))
}

// insertAt splices runes into the subtree at id. When the node splits, the
// new right siblings are returned for the caller to adopt.
func (b *Buffer) insertAt(id nodeID, offset int, runes []rune) []nodeID {
	if b.nodes[id].leaf {
		old := b.nodes[id].text
		text := make([]rune, 0, len(old)+len(runes))
		text = append(text, old[:offset]...)
		text = append(text, runes...)
		text = append(text, old[offset:]...)
		b.nodes[id].text = text
		b.refreshLeaf(id)
		if len(text) <= maxLeafLen {
			return nil
		}
		return b.splitLeaf(id)
	}
	idx, rel := b.childFor(id, offset)
	child := b.nodes[id].children[idx]
	extra := b.insertAt(child, rel, runes)
	if len(extra) > 0 {
		old := b.nodes[id].children
		children := make([]nodeID, 0, len(old)+len(extra))
		children = append(children, old[:idx+1]...)
		children = append(children, extra...)
		children = append(children, old[idx+1:]...)
		b.nodes[id].children = children
	}
	b.refresh(id)
	if len(b.nodes[id].children) <= maxChildren {
		return nil
	}
	return b.splitInternal(id)
}

// childFor locates the child of id covering offset, biasing insertions at a
// boundary into the right-hand child.
func (b *Buffer) childFor(id nodeID, offset int) (int, int) {
	children := b.nodes[id].children
	for i, c := range children {
		chars := b.nodes[c].chars
		if offset < chars || (offset == chars && i == len(children)-1) {
			return i, offset
		}
		offset -= chars
	}
	return len(children) - 1, b.nodes[children[len(children)-1]].chars
}

func (b *Buffer) splitLeaf(id nodeID) []nodeID {
	text := b.nodes[id].text
	pieces := evenPieces(len(text), maxLeafLen)
	var extra []nodeID
	pos := pieces[0]
	for _, size := range pieces[1:] {
		chunk := make([]rune, size)
		copy(chunk, text[pos:pos+size])
		extra = append(extra, b.alloc(leafNode(chunk)))
		pos += size
	}
	head := make([]rune, pieces[0])
	copy(head, text[:pieces[0]])
	b.nodes[id].text = head
	b.refreshLeaf(id)
	return extra
}

func (b *Buffer) splitInternal(id nodeID) []nodeID {
	children := b.nodes[id].children
	half := len(children) / 2
	right := make([]nodeID, len(children)-half)
	copy(right, children[half:])
	left := make([]nodeID, half)
	copy(left, children[:half])
	sibling := b.alloc(b.internalNode(right))
	b.nodes[id].children = left
	b.refresh(id)
	return []nodeID{sibling}
}

// deleteRange removes [start, end) from the subtree at id, rebalancing the
// node's children afterwards.
func (b *Buffer) deleteRange(id nodeID, start, end int) {
	if b.nodes[id].leaf {
		text := b.nodes[id].text
		b.nodes[id].text = append(text[:start], text[end:]...)
		b.refreshLeaf(id)
		return
	}
	children := b.nodes[id].children
	keep := children[:0]
	acc := 0
	for _, c := range children {
		chars := b.nodes[c].chars
		lo, hi := start-acc, end-acc
		acc += chars
		if lo < 0 {
			lo = 0
		}
		if hi > chars {
			hi = chars
		}
		if lo >= hi {
			keep = append(keep, c)
			continue
		}
		if lo == 0 && hi == chars {
			b.releaseTree(c)
			continue
		}
		b.deleteRange(c, lo, hi)
		keep = append(keep, c)
	}
	b.nodes[id].children = keep
	b.rebalanceChildren(id)
	b.refresh(id)
}

// rebalanceChildren merges or evens out underfull children so that no two
// siblings collectively underflow after an operation.
func (b *Buffer) rebalanceChildren(id nodeID) {
	for {
		children := b.nodes[id].children
		if len(children) < 2 {
			return
		}
		idx := -1
		for i, c := range children {
			if b.underfull(c) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		left := idx
		if left == len(children)-1 {
			left--
		}
		if b.mergeOrShare(children[left], children[left+1]) {
			b.nodes[id].children = append(children[:left+1], children[left+2:]...)
			continue
		}
	}
}

func (b *Buffer) underfull(id nodeID) bool {
	if b.nodes[id].leaf {
		return len(b.nodes[id].text) < minLeafLen
	}
	return len(b.nodes[id].children) < minChildren
}

// mergeOrShare folds right into left when the pair fits in one node,
// otherwise evens the pair out. Reports whether right was removed.
func (b *Buffer) mergeOrShare(left, right nodeID) bool {
	if b.nodes[left].leaf {
		lt, rt := b.nodes[left].text, b.nodes[right].text
		combined := make([]rune, 0, len(lt)+len(rt))
		combined = append(combined, lt...)
		combined = append(combined, rt...)
		if len(combined) <= maxLeafLen {
			b.nodes[left].text = combined
			b.refreshLeaf(left)
			b.release(right)
			return true
		}
		half := (len(combined) + 1) / 2
		b.nodes[left].text = combined[:half:half]
		b.nodes[right].text = combined[half:]
		b.refreshLeaf(left)
		b.refreshLeaf(right)
		return false
	}
	lc, rc := b.nodes[left].children, b.nodes[right].children
	combined := make([]nodeID, 0, len(lc)+len(rc))
	combined = append(combined, lc...)
	combined = append(combined, rc...)
	if len(combined) <= maxChildren {
		b.nodes[left].children = combined
		// The merged list may carry an underfull grandchild from a side that
		// had too few children to fix it locally.
		b.rebalanceChildren(left)
		b.refresh(left)
		b.release(right)
		return true
	}
	half := (len(combined) + 1) / 2
	b.nodes[left].children = combined[:half:half]
	b.nodes[right].children = combined[half:]
	b.rebalanceChildren(left)
	b.rebalanceChildren(right)
	b.refresh(left)
	b.refresh(right)
	return false
}

// fixRoot collapses redundant levels left behind by deletes.
func (b *Buffer) fixRoot() {
	for {
		root := b.nodes[b.root]
		if root.leaf {
			return
		}
		switch len(root.children) {
		case 0:
			b.release(b.root)
			b.root = b.alloc(node{leaf: true})
			return
		case 1:
			child := root.children[0]
			b.release(b.root)
			b.root = child
		default:
			return
		}
	}
}

func (b *Buffer) collect(id nodeID, start, end int, sb *strings.Builder) {
	if start >= end {
		return
	}
	n := b.nodes[id]
	if n.leaf {
		for _, r := range n.text[start:end] {
			sb.WriteRune(r)
		}
		return
	}
	acc := 0
	for _, c := range n.children {
		chars := b.nodes[c].chars
		lo, hi := start-acc, end-acc
		acc += chars
		if lo < 0 {
			lo = 0
		}
		if hi > chars {
			hi = chars
		}
		if lo < hi {
			b.collect(c, lo, hi, sb)
		}
		if acc >= end {
			return
		}
	}
}

// evenPieces distributes n across the fewest pieces of at most max, keeping
// sizes within one of each other.
func evenPieces(n, max int) []int {
	k := (n + max - 1) / max
	if k == 0 {
		k = 1
	}
	base, rem := n/k, n%k
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}
