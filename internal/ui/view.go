package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/sobir-git/fire-notes/internal/session"
)

const (
	tabStopWidth           = 4
	previewMaxDisplayLines = 12  // used by inline (vertical) preview only
	previewPanelMinWidth   = 40  // minimum cols for the preview panel; below this no split
	previewPanelFraction   = 0.6 // fraction of total width given to the preview panel
	fallbackWidth          = 80
	fallbackHeight         = 24
)

// previewBorder styles used when drawing the preview box.
var (
	previewBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	previewScrollStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
}

// viewport is per-document scroll state. top is the first visible buffer
// line, left the first visible display column.
type viewport struct {
	top  int
	left int
}

func (m *Model) viewportFor(id session.DocID) *viewport {
	vp, ok := m.viewports[id]
	if !ok {
		vp = &viewport{}
		m.viewports[id] = vp
	}
	return vp
}

// View implements tea.Model.
func (m *Model) View() string {
	switch m.mode {
	case ModeRename:
		if m.renameForm != nil {
			return m.viewRename()
		}
	case ModePicker:
		if m.picker != nil {
			if m.hasSidePreview() {
				return m.viewPickerSideBySide()
			}
			return m.viewPickerVertical()
		}
	}
	return m.viewEditor()
}

func (m *Model) textWidth() int {
	if m.width <= 0 {
		return fallbackWidth
	}
	return m.width
}

// textHeight is the number of rows left for buffer text after the tab strip,
// the status line and the status bar.
func (m *Model) textHeight() int {
	h := m.height
	if h <= 0 {
		h = fallbackHeight
	}
	rows := h - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) viewEditor() string {
	width := m.textWidth()
	rows := make([]string, 0, m.textHeight()+3)
	rows = append(rows, m.renderTabStrip(width))
	rows = append(rows, m.renderTextArea(width, m.textHeight())...)
	rows = append(rows, m.renderStatusLine(width))
	rows = append(rows, m.renderStatusBar(width))
	return strings.Join(rows, "\n")
}

func (m *Model) renderTabStrip(width int) string {
	infos := m.session.TabInfos()
	active := m.session.ActiveIndex()
	var b strings.Builder
	for i, info := range infos {
		label := fmt.Sprintf(" %d:%s", i+1, info.Title)
		if i == active {
			if info.Dirty {
				label += " ●"
			}
			b.WriteString(styles.TabActive.Render(label + " "))
			continue
		}
		if info.Dirty {
			b.WriteString(styles.TabInactive.Render(label))
			b.WriteString(styles.TabDirty.Render(" ●"))
			b.WriteString(styles.TabInactive.Render(" "))
			continue
		}
		b.WriteString(styles.TabInactive.Render(label + " "))
	}
	strip := b.String()
	if lipgloss.Width(strip) > width {
		strip = truncate.StringWithTail(strip, uint(width-1), "…")
	}
	return strip
}

type cellClass int

const (
	cellNormal cellClass = iota
	cellSelected
	cellCaret
)

// textCell is one display column. content is empty for the right half of a
// wide rune.
type textCell struct {
	content string
	class   cellClass
}

func (m *Model) renderTextArea(width, height int) []string {
	doc := m.session.Active()
	rows := make([]string, 0, height)
	if doc == nil {
		for len(rows) < height {
			rows = append(rows, "")
		}
		return rows
	}
	buf := doc.Buffer()
	caretLine, caretCol := doc.CursorLineCol()
	gutterW := numWidth(buf.LineCount()) + 1
	textW := width - gutterW
	if textW < 1 {
		textW = 1
	}

	vp := m.viewportFor(m.session.ActiveID())
	if caretLine < vp.top {
		vp.top = caretLine
	}
	if caretLine >= vp.top+height {
		vp.top = caretLine - height + 1
	}
	if maxTop := buf.LineCount() - height; vp.top > maxTop {
		vp.top = maxTop
	}
	if vp.top < 0 {
		vp.top = 0
	}
	caretCellCol := 0
	if text, err := buf.Line(caretLine); err == nil {
		caretCellCol = displayCol(text, caretCol)
	}
	if caretCellCol < vp.left {
		vp.left = caretCellCol
	}
	if caretCellCol >= vp.left+textW {
		vp.left = caretCellCol - textW + 1
	}
	if vp.left < 0 {
		vp.left = 0
	}

	sl, sc, el, ec, hasSel := doc.SelectionLineCol()
	for row := 0; row < height; row++ {
		lineIdx := vp.top + row
		if lineIdx >= buf.LineCount() {
			rows = append(rows, "")
			continue
		}
		text, err := buf.Line(lineIdx)
		if err != nil {
			rows = append(rows, "")
			continue
		}
		gutter := styles.LineNumber.Render(fmt.Sprintf("%*d ", gutterW-1, lineIdx+1))
		selStart, selEnd := -1, -1
		if hasSel && lineIdx >= sl && lineIdx <= el {
			selStart, selEnd = 0, len([]rune(text))
			if lineIdx == sl {
				selStart = sc
			}
			if lineIdx == el {
				selEnd = ec
			}
		}
		newlineSelected := hasSel && lineIdx >= sl && lineIdx < el
		caretAt := -1
		if lineIdx == caretLine {
			caretAt = caretCol
		}
		cells := lineCells(text, selStart, selEnd, newlineSelected, caretAt)
		rows = append(rows, gutter+renderCells(window(cells, vp.left, textW)))
	}
	return rows
}

// lineCells expands one buffer line into display cells with a class per cell.
// selStart/selEnd are rune columns (selStart < 0 means no selection on the
// line), caretAt the caret's rune column or -1.
func lineCells(text string, selStart, selEnd int, newlineSelected bool, caretAt int) []textCell {
	runes := []rune(text)
	cells := make([]textCell, 0, len(runes)+1)
	col := 0
	for i, r := range runes {
		class := cellNormal
		if selStart >= 0 && i >= selStart && i < selEnd {
			class = cellSelected
		}
		if i == caretAt {
			class = cellCaret
		}
		if r == '\t' {
			next := (col/tabStopWidth + 1) * tabStopWidth
			for col < next {
				cells = append(cells, textCell{content: " ", class: class})
				col++
			}
			continue
		}
		switch w := runewidth.RuneWidth(r); {
		case w <= 0:
			// Combining mark; attach to the preceding cell.
			if n := len(cells); n > 0 {
				cells[n-1].content += string(r)
			} else {
				cells = append(cells, textCell{content: string(r), class: class})
				col++
			}
		case w == 1:
			cells = append(cells, textCell{content: string(r), class: class})
			col++
		default:
			cells = append(cells, textCell{content: string(r), class: class}, textCell{class: class})
			col += 2
		}
	}
	if caretAt >= len(runes) && caretAt >= 0 {
		cells = append(cells, textCell{content: " ", class: cellCaret})
	} else if newlineSelected {
		cells = append(cells, textCell{content: " ", class: cellSelected})
	}
	return cells
}

// window slices cells to [left, left+width), patching wide runes cut at
// either edge.
func window(cells []textCell, left, width int) []textCell {
	if left >= len(cells) {
		return nil
	}
	end := left + width
	if end > len(cells) {
		end = len(cells)
	}
	out := make([]textCell, end-left)
	copy(out, cells[left:end])
	if len(out) > 0 && out[0].content == "" {
		out[0].content = " "
	}
	if end < len(cells) && cells[end].content == "" && len(out) > 0 && out[len(out)-1].content != "" {
		out[len(out)-1].content = " "
	}
	return out
}

func renderCells(cells []textCell) string {
	var b strings.Builder
	i := 0
	for i < len(cells) {
		j := i
		var seg strings.Builder
		for j < len(cells) && cells[j].class == cells[i].class {
			seg.WriteString(cells[j].content)
			j++
		}
		switch cells[i].class {
		case cellSelected:
			b.WriteString(styles.Selection.Render(seg.String()))
		case cellCaret:
			b.WriteString(styles.CursorCell.Render(seg.String()))
		default:
			b.WriteString(styles.Text.Render(seg.String()))
		}
		i = j
	}
	return b.String()
}

// displayCol converts a rune column into a display column with tabs expanded.
func displayCol(text string, runeCol int) int {
	col := 0
	for i, r := range []rune(text) {
		if i >= runeCol {
			break
		}
		if r == '\t' {
			col = (col/tabStopWidth + 1) * tabStopWidth
			continue
		}
		if w := runewidth.RuneWidth(r); w > 0 {
			col += w
		}
	}
	return col
}

func (m *Model) renderStatusLine(width int) string {
	if m.errMsg != "" {
		return styles.StatusError.Render(truncateText(fmt.Sprintf("Error: %s", m.errMsg), width))
	}
	if info := m.currentInfo(); info != "" {
		return styles.StatusInfo.Render(truncateText(info, width))
	}
	if warn, msg := m.hasBackendIssue(); warn {
		return styles.StatusError.Render(truncateText(fmt.Sprintf("Watcher: %s", msg), width))
	}
	return ""
}

func (m *Model) renderStatusBar(width int) string {
	doc := m.session.Active()
	if doc == nil {
		return styles.StatusBar.Render(strings.Repeat(" ", width))
	}
	left := " " + doc.Title()
	if doc.Dirty() {
		left += " ●"
	}
	line, col := doc.CursorLineCol()
	right := fmt.Sprintf("Ln %d, Col %d ", line+1, col+1)
	pad := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if pad < 1 {
		keep := width - runewidth.StringWidth(right) - 2
		if keep < 1 {
			keep = 1
		}
		left = truncateText(left, keep)
		pad = width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
		if pad < 0 {
			pad = 0
		}
	}
	return styles.StatusBar.Render(left + strings.Repeat(" ", pad) + right)
}

func numWidth(n int) int {
	w := 1
	for n >= 10 {
		n /= 10
		w++
	}
	return w
}

func humanBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func humanCount(n int, noun string) string {
	return english.Plural(n, noun, "")
}

// hasSidePreview reports whether the picker should be rendered with the
// preview panel on the right rather than inline below the items.
func (m *Model) hasSidePreview() bool {
	if m.mode != ModePicker || m.picker == nil {
		return false
	}
	return m.previewPanelWidth() > 0
}

// previewPanelWidth returns the width in columns for the right-hand preview
// panel. Returns 0 when the terminal is too narrow to split.
func (m *Model) previewPanelWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * previewPanelFraction)
	if w < previewPanelMinWidth {
		return 0
	}
	return w
}

// pickerColumnWidth returns the width available for the left-hand list column.
func (m *Model) pickerColumnWidth() int {
	return m.width - m.previewPanelWidth()
}

func (m *Model) pickerHeader() string {
	if m.picker == nil {
		return ""
	}
	return fmt.Sprintf("Notes (%d)", len(m.picker.Items))
}

const pickerFooterText = "↑/↓ move  enter open  tab mark  esc cancel"

// viewPickerVertical is the single-column picker layout with an optional
// inline preview block below the items (used when the terminal is too narrow
// for side-by-side).
func (m *Model) viewPickerVertical() string {
	current := m.picker
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: m.pickerHeader(), style: styles.FormTitle})
	m.syncViewport(current)
	start := 0
	displayItems := current.Items
	if maxItems := m.maxVisiblePickerItems(); maxItems > 0 && len(displayItems) > maxItems {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(displayItems) {
			start = len(displayItems) - maxItems
			if start < 0 {
				start = 0
			}
			current.ViewportOffset = start
		}
		displayItems = displayItems[start : start+maxItems]
	}
	if len(current.Items) == 0 {
		msg := "(no notes)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		}
		lines = append(lines, styledLine{text: msg, style: styles.StatusInfo})
	} else {
		for i, item := range displayItems {
			idx := start + i
			lines = append(lines, m.buildItemLine(item.ID, item.Label, idx, current, m.width))
		}
	}
	if shouldRenderPreview(m.preview) {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: previewTitleText(m.preview), style: styles.PreviewTitle})
		if m.preview.err != "" {
			lines = append(lines, styledLine{text: m.preview.err, style: styles.PreviewError})
		} else {
			for _, line := range previewDisplayLines(m.preview) {
				lines = append(lines, styledLine{text: line, style: styles.PreviewBody})
			}
		}
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.StatusInfo})
	}
	lines = append(lines, styledLine{})
	lines = append(lines, styledLine{text: pickerFooterText, style: styles.PickerHint})
	// Reserve 2 rows for the bottom bar (error/status + prompt).
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)

	var statusLine styledLine
	if m.errMsg != "" {
		statusLine = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.StatusError}
	}
	promptText, _ := m.filterPrompt()
	bottomLines := []styledLine{
		statusLine,
		{text: promptText},
	}
	bottomLines = applyWidth(bottomLines, m.width)
	lines = append(lines, bottomLines...)
	return renderLines(lines)
}

// viewPickerSideBySide renders the list on the left and a preview panel on
// the right.
func (m *Model) viewPickerSideBySide() string {
	current := m.picker
	menuW := m.pickerColumnWidth()
	prevW := m.previewPanelWidth()

	// Bottom bar: status/error line + filter prompt. These span the full
	// terminal width beneath both columns.
	const bottomBarRows = 2

	contentLines := make([]styledLine, 0, 16)
	contentLines = append(contentLines, styledLine{text: m.pickerHeader(), style: styles.FormTitle})
	m.syncViewport(current)
	start := 0
	displayItems := current.Items
	if maxItems := m.maxVisiblePickerItems(); maxItems > 0 && len(displayItems) > maxItems {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(displayItems) {
			start = len(displayItems) - maxItems
			if start < 0 {
				start = 0
			}
			current.ViewportOffset = start
		}
		displayItems = displayItems[start : start+maxItems]
	}
	if len(current.Items) == 0 {
		msg := "(no notes)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		}
		contentLines = append(contentLines, styledLine{text: msg, style: styles.StatusInfo})
	} else {
		for i, item := range displayItems {
			idx := start + i
			contentLines = append(contentLines, m.buildItemLine(item.ID, item.Label, idx, current, menuW))
		}
	}
	if info := m.currentInfo(); info != "" {
		contentLines = append(contentLines, styledLine{})
		contentLines = append(contentLines, styledLine{text: info, style: styles.StatusInfo})
	}
	contentLines = append(contentLines, styledLine{})
	contentLines = append(contentLines, styledLine{text: pickerFooterText, style: styles.PickerHint})

	// Pad content lines so the columns fill the space above the bottom bar.
	panelH := m.height - bottomBarRows
	if panelH < 1 {
		panelH = 1
	}
	if len(contentLines) > panelH {
		contentLines = contentLines[:panelH]
	}
	for len(contentLines) < panelH {
		contentLines = append(contentLines, styledLine{})
	}

	contentLines = applyWidth(contentLines, menuW)
	leftStr := renderLines(contentLines)

	// Pad/truncate every rendered row to exactly menuW visible columns so
	// JoinHorizontal keeps the preview panel flush to the right edge
	// regardless of content length or cursor-blink state. Uses lipgloss.Width
	// (ANSI-aware visual measurement) and reflow/truncate (ANSI-safe
	// truncation).
	leftRows := strings.Split(leftStr, "\n")
	for i, row := range leftRows {
		w := lipgloss.Width(row)
		if w > menuW {
			leftRows[i] = truncate.StringWithTail(row, uint(menuW-1), "…")
		} else if w < menuW {
			leftRows[i] = row + strings.Repeat(" ", menuW-w)
		}
	}
	leftStr = strings.Join(leftRows, "\n")

	rightStr := m.renderPreviewPanel(&m.preview, prevW, panelH)

	topSection := lipgloss.JoinHorizontal(lipgloss.Top, leftStr, rightStr)

	var statusLine styledLine
	if m.errMsg != "" {
		statusLine = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.StatusError}
	}
	promptText, _ := m.filterPrompt()
	bottomLines := []styledLine{
		statusLine,
		{text: promptText},
	}
	bottomLines = applyWidth(bottomLines, m.width)
	bottomStr := renderLines(bottomLines)

	return topSection + "\n" + bottomStr
}

// buildItemLine constructs a single styledLine for a picker item. width is
// the target column width; when > 0 the text is padded so that the current
// item's background spans the full container.
func (m *Model) buildItemLine(id, label string, idx int, current *level, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.PickerItem
	indicatorStyle := styles.PickerHint
	selectDisplay := ""
	if current.MultiSelect {
		mark := " "
		if current.IsSelected(id) {
			mark = "✓"
		}
		selectDisplay = fmt.Sprintf("[%s] ", mark)
	}
	if idx == current.Cursor {
		indicatorStyle = styles.FilterPrompt
		lineStyle = styles.PickerCurrent
	}
	fullText := indicator + " " + selectDisplay + label
	if width > 0 {
		if pad := width - len([]rune(fullText)); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

// renderPreviewPanel builds the bordered preview box as a string with exactly
// height rows and totalWidth columns.
func (m *Model) renderPreviewPanel(preview *previewData, totalWidth, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)

	innerW := totalWidth - 2
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	titleLabel := "Preview"
	scrollInfo := ""
	var contentLines []string
	var errLine string

	if lbl := strings.TrimSpace(preview.label); lbl != "" {
		titleLabel = "Preview: " + lbl
	}
	switch {
	case preview.err != "":
		errLine = preview.err
	case len(preview.lines) > 0:
		maxOffset := len(preview.lines) - innerH
		if maxOffset < 0 {
			maxOffset = 0
		}
		if preview.scrollOffset > maxOffset {
			preview.scrollOffset = maxOffset
		}
		if preview.scrollOffset < 0 {
			preview.scrollOffset = 0
		}
		end := preview.scrollOffset + innerH
		if end > len(preview.lines) {
			end = len(preview.lines)
		}
		contentLines = preview.lines[preview.scrollOffset:end]
		lastVisible := preview.scrollOffset + len(contentLines)
		scrollInfo = fmt.Sprintf(" %d/%d ", lastVisible, len(preview.lines))
	case preview.loading:
		contentLines = []string{"Loading…"}
	}

	// Top border: ╭─ title ──────────── scrollInfo ─╮
	// Fixed chars: tlc + hz + titleSeg + <dashes> + scrollSeg + hz + trc,
	// so dashes = totalWidth - 4 - len(titleSeg) - len(scrollSeg).
	titleSeg := " " + titleLabel + " "
	scrollSeg := scrollInfo
	dashes := totalWidth - 4 - len([]rune(titleSeg)) - len([]rune(scrollSeg))
	if dashes < 0 {
		scrollSeg = ""
		dashes = totalWidth - 4 - len([]rune(titleSeg))
	}
	if dashes < 0 {
		titleSeg = " … "
		dashes = totalWidth - 4 - len([]rune(titleSeg))
	}
	if dashes < 0 {
		dashes = 0
	}
	topLine := previewBorderStyle.Render(tlc+hz) +
		styles.PreviewTitle.Render(titleSeg) +
		previewBorderStyle.Render(strings.Repeat(hz, dashes)) +
		previewScrollStyle.Render(scrollSeg) +
		previewBorderStyle.Render(hz+trc)

	bottomLine := previewBorderStyle.Render(blc + strings.Repeat(hz, innerW) + brc)

	bodyStyle := styles.PreviewBody
	if errLine != "" {
		bodyStyle = styles.PreviewError
		contentLines = []string{errLine}
	}

	rows := make([]string, 0, height)
	rows = append(rows, topLine)
	for i := 0; i < innerH; i++ {
		var content string
		if i < len(contentLines) {
			content = contentLines[i]
		}
		w := lipgloss.Width(content)
		if w > innerW {
			content = truncate.StringWithTail(content, uint(innerW-1), "…")
			w = lipgloss.Width(content)
		}
		if w < innerW {
			content = content + strings.Repeat(" ", innerW-w)
		}
		styledContent := content
		if bodyStyle != nil {
			styledContent = bodyStyle.Render(content)
		}
		rows = append(rows, previewBorderStyle.Render(vt)+styledContent+previewBorderStyle.Render(vt))
	}
	rows = append(rows, bottomLine)
	return strings.Join(rows, "\n")
}

// handleMouseMsg handles mouse wheel events to scroll the preview panel.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	if !m.hasSidePreview() {
		return nil
	}
	if m.preview.loading {
		return nil
	}
	innerH := m.height - 2
	if innerH < 1 {
		innerH = 1
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.preview.scrollOffset -= 3
		if m.preview.scrollOffset < 0 {
			m.preview.scrollOffset = 0
		}
	case tea.MouseButtonWheelDown:
		maxOffset := len(m.preview.lines) - innerH
		if maxOffset < 0 {
			maxOffset = 0
		}
		m.preview.scrollOffset += 3
		if m.preview.scrollOffset > maxOffset {
			m.preview.scrollOffset = maxOffset
		}
	}
	return nil
}

func shouldRenderPreview(data previewData) bool {
	if data.err != "" {
		return true
	}
	if len(data.lines) > 0 {
		return true
	}
	return data.loading
}

func previewTitleText(data previewData) string {
	label := strings.TrimSpace(data.label)
	if label == "" {
		label = strings.TrimSpace(data.path)
	}
	if label == "" {
		label = "(unknown)"
	}
	status := ""
	if data.loading && data.err == "" {
		status = " (loading…)"
	}
	return fmt.Sprintf("Preview: %s%s", label, status)
}

func previewDisplayLines(data previewData) []string {
	lines := data.lines
	if len(lines) == 0 {
		if data.loading {
			return []string{"Loading preview…"}
		}
		return []string{}
	}
	if previewMaxDisplayLines > 0 && len(lines) > previewMaxDisplayLines {
		return lines[:previewMaxDisplayLines]
	}
	return lines
}

// maxVisiblePickerItems is the number of list rows that fit above the bottom
// bar with the current terminal size. Negative means no limit.
func (m *Model) maxVisiblePickerItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // bottom bar: error/status + filter prompt
	used++    // header
	if info := m.currentInfo(); info != "" {
		used += 2
	}
	used += 2 // blank + footer
	// In side-by-side mode the full height is available for the left column;
	// no preview rows need to be reserved.
	if !m.hasSidePreview() {
		if shouldRenderPreview(m.preview) {
			used += 2 // blank separator + title line
			if m.preview.err != "" {
				used++
			} else {
				used += len(previewDisplayLines(m.preview))
			}
		} else if m.picker != nil && len(m.picker.Items) > 0 {
			// Reserve space for the preview that is about to load.
			used += 3
		}
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) filterPrompt() (string, *lipgloss.Style) {
	current := m.picker
	if current == nil {
		return ">", styles.Filter
	}
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	if styles.CursorCell != nil {
		m.filterCursor.Style = styles.CursorCell.Copy()
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}
	prompt := "» "
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	text := current.Filter
	if text == "" {
		placeholder := "(type to search)"
		runes := []rune(placeholder)
		var caretRune string
		var rest string
		if len(runes) > 0 {
			caretRune = string(runes[0])
			rest = string(runes[1:])
		}
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		caret := m.renderFilterCursor(caretRune)
		return prompt + caret + render(styles.FilterPlaceholder, rest), nil
	}
	runes := []rune(text)
	pos := current.FilterCursorPos()
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	before := render(styles.Filter, string(runes[:pos]))
	var caretRune string
	if pos < len(runes) {
		caretRune = string(runes[pos])
	} else {
		caretRune = " "
	}
	caret := m.renderFilterCursor(caretRune)
	var after string
	if pos < len(runes) {
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + caret + after, nil
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)

	base := m.filterCursor.TextStyle.Copy()
	base = base.Inline(true)

	if m.filterCursor.Blink {
		return base.Render(char)
	}

	if styles.CursorCell != nil {
		cursorStyle := styles.CursorCell.Copy().Inline(true)
		base = base.Inherit(cursorStyle).Blink(false)
		return base.Render(char)
	}

	return base.Reverse(true).Render(char)
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		result[i] = styledLine{
			text:          truncateText(line.text, width),
			style:         line.style,
			prefixStyle:   line.prefixStyle,
			highlightFrom: line.highlightFrom,
		}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
