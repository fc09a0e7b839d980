package tui

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/pipedeck/internal/app"
	"github.com/hylla/pipedeck/internal/domain"
)

// boardPane holds the view state of one board.
type boardPane struct {
	boardID string
	board   domain.Board
	column  int
	row     int
	filter  string

	// dragItemID mirrors the service drag session so the dragged card can render dimmed.
	dragItemID  string
	hoverColumn int
}

// boardLoadedMsg carries a freshly loaded board.
type boardLoadedMsg struct {
	boardID string
	board   domain.Board
}

// dropMsg carries the outcome of a drop.
type dropMsg struct {
	boardID string
	result  app.DropResult
}

// itemCreatedMsg reports a new card.
type itemCreatedMsg struct {
	boardID string
	item    domain.Item
}

// boardLayout captures the geometry used both to render a board and to hit-test the mouse.
type boardLayout struct {
	colWidth     int
	outerWidth   int
	firstColumn  int
	lastColumn   int
	cardHeight   int
	visibleCards int
	height       int
}

// cardsTopOffset is the number of column rows above the first card: border, title, rule.
const cardsTopOffset = 3

func newBoardPane(boardID string) boardPane {
	return boardPane{boardID: boardID, hoverColumn: -1}
}

// setBoard replaces the board and keeps the cursor in range.
func (p *boardPane) setBoard(b domain.Board) {
	p.board = b
	p.clampCursor()
}

// setFilter changes the card filter and keeps the cursor in range.
func (p *boardPane) setFilter(query string) {
	p.filter = query
	p.clampCursor()
}

// clampCursor keeps column and row inside the visible items.
func (p *boardPane) clampCursor() {
	p.column = clamp(p.column, 0, len(p.board.Columns)-1)
	p.row = clamp(p.row, 0, len(p.visibleItems(p.column))-1)
}

// visibleItems returns the items of column idx that pass the filter.
func (p boardPane) visibleItems(idx int) []domain.Item {
	if idx < 0 || idx >= len(p.board.Columns) {
		return nil
	}
	return domain.Filter(p.filter, p.board.Columns[idx].Items)
}

// selectedItem returns the card under the cursor.
func (p boardPane) selectedItem() (domain.Item, bool) {
	items := p.visibleItems(p.column)
	if p.row < 0 || p.row >= len(items) {
		return domain.Item{}, false
	}
	return items[p.row], true
}

// focusItem moves the cursor onto itemID when it is visible.
func (p *boardPane) focusItem(itemID string) {
	for colIdx := range p.board.Columns {
		for rowIdx, item := range p.visibleItems(colIdx) {
			if item.ID == itemID {
				p.column = colIdx
				p.row = rowIdx
				return
			}
		}
	}
	p.clampCursor()
}

// activePane returns the pane behind the active board view, or nil.
func (m *Model) activePane() *boardPane {
	switch m.view {
	case viewLeads:
		return &m.leads
	case viewOpportunities:
		return &m.opps
	default:
		return nil
	}
}

// currentPane returns a copy of the active board pane.
func (m Model) currentPane() (boardPane, bool) {
	switch m.view {
	case viewLeads:
		return m.leads, true
	case viewOpportunities:
		return m.opps, true
	default:
		return boardPane{}, false
	}
}

// paneFor returns the pane that owns boardID, or nil.
func (m *Model) paneFor(boardID string) *boardPane {
	switch boardID {
	case m.leads.boardID:
		return &m.leads
	case m.opps.boardID:
		return &m.opps
	default:
		return nil
	}
}

// handleBoardKey handles board navigation, drag keys, and the board inputs.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	pane := m.activePane()
	if pane == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.moveLeft):
		pane.column = clamp(pane.column-1, 0, len(pane.board.Columns)-1)
		pane.clampCursor()
		pane.trackDropTarget()
	case key.Matches(msg, m.keys.moveRight):
		pane.column = clamp(pane.column+1, 0, len(pane.board.Columns)-1)
		pane.clampCursor()
		pane.trackDropTarget()
	case key.Matches(msg, m.keys.moveUp):
		pane.row = max(0, pane.row-1)
	case key.Matches(msg, m.keys.moveDown):
		pane.row = clamp(pane.row+1, 0, len(pane.visibleItems(pane.column))-1)
	case key.Matches(msg, m.keys.grab):
		if pane.dragItemID != "" {
			if pane.column < 0 || pane.column >= len(pane.board.Columns) {
				return m, nil
			}
			return m, m.dropCmd(pane.boardID, pane.board.Columns[pane.column].ID)
		}
		item, ok := pane.selectedItem()
		if !ok {
			return m, nil
		}
		m.beginDrag(pane, item)
	case key.Matches(msg, m.keys.cancel):
		if pane.dragItemID != "" {
			m.cancelDrag(pane)
			return m, nil
		}
		if pane.filter != "" {
			pane.setFilter("")
		}
	case key.Matches(msg, m.keys.newItem):
		if len(pane.board.Columns) == 0 {
			return m, nil
		}
		column := pane.board.Columns[pane.column]
		m.startInput(modeAddItem, "new card in "+column.Title+": ", "title", "", 120)
	case key.Matches(msg, m.keys.search):
		m.startInput(modeSearch, "filter: ", m.placeholders.Board, pane.filter, 80)
	}
	return m, nil
}

// beginDrag starts a drag inline so a quick mouse release cannot overtake it.
func (m *Model) beginDrag(pane *boardPane, item domain.Item) {
	if err := m.svc.BeginDrag(context.Background(), pane.boardID, item.ID); err != nil {
		m.status = fmt.Sprintf("drag failed: %v", err)
		return
	}
	pane.dragItemID = item.ID
	pane.hoverColumn = pane.column
	m.status = fmt.Sprintf("dragging %q: move to a column and drop", item.Title)
}

// trackDropTarget keeps the drop highlight on the focused column during a keyboard drag.
func (p *boardPane) trackDropTarget() {
	if p.dragItemID != "" {
		p.hoverColumn = p.column
	}
}

// cancelActiveDrags ends every board drag, so at most one gesture is ever live.
func (m *Model) cancelActiveDrags() {
	for _, pane := range []*boardPane{&m.leads, &m.opps} {
		if pane.dragItemID != "" {
			m.cancelDrag(pane)
		}
	}
}

// cancelDrag ends the drag without moving anything.
func (m *Model) cancelDrag(pane *boardPane) {
	if err := m.svc.CancelDrag(context.Background(), pane.boardID); err != nil {
		m.status = fmt.Sprintf("cancel failed: %v", err)
	}
	pane.dragItemID = ""
	pane.hoverColumn = -1
	m.status = "drag cancelled"
}

// dropCmd resolves the active drag against targetColumnID.
func (m Model) dropCmd(boardID, targetColumnID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		result, err := svc.DropOnColumn(context.Background(), boardID, targetColumnID)
		if err != nil {
			return actionErrMsg{action: "drop", boardID: boardID, err: err}
		}
		return dropMsg{boardID: boardID, result: result}
	}
}

// applyDrop folds a drop outcome into the pane.
func (m Model) applyDrop(msg dropMsg) (tea.Model, tea.Cmd) {
	pane := m.paneFor(msg.boardID)
	if pane == nil {
		return m, nil
	}
	pane.dragItemID = ""
	pane.hoverColumn = -1
	if msg.result.Board.ID != "" {
		pane.setBoard(msg.result.Board)
	}
	if !msg.result.Outcome.Applied() {
		m.status = "drop skipped: " + strings.ReplaceAll(string(msg.result.Outcome), "_", " ")
		return m, nil
	}
	pane.focusItem(msg.result.ItemID)
	item, _, _ := pane.board.Item(msg.result.ItemID)
	column, _ := pane.board.Column(msg.result.TargetColumnID)
	m.status = fmt.Sprintf("moved %q to %s", item.Title, column.Title)
	return m, m.refreshSummaryCmd()
}

// createItemCmd adds a card to the focused column.
func (m Model) createItemCmd(title string) tea.Cmd {
	pane, ok := m.currentPane()
	if !ok || len(pane.board.Columns) == 0 {
		return nil
	}
	svc := m.svc
	in := app.CreateItemInput{
		BoardID:  pane.boardID,
		ColumnID: pane.board.Columns[clamp(pane.column, 0, len(pane.board.Columns)-1)].ID,
		Title:    title,
	}
	return func() tea.Msg {
		item, err := svc.CreateItem(context.Background(), in)
		if err != nil {
			return actionError("create", err)
		}
		return itemCreatedMsg{boardID: in.BoardID, item: item}
	}
}

// loadBoardCmd reloads one board.
func (m Model) loadBoardCmd(boardID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		board, err := svc.GetBoard(context.Background(), boardID)
		if err != nil {
			return actionError("load board", err)
		}
		return boardLoadedMsg{boardID: boardID, board: board}
	}
}

// boardSubheader summarizes the active board.
func (m Model) boardSubheader() string {
	pane, ok := m.currentPane()
	if !ok {
		return ""
	}
	parts := []string{fmt.Sprintf("%s  %d cards in %d stages", pane.board.Title, pane.board.ItemCount(), len(pane.board.Columns))}
	if m.view == viewOpportunities {
		parts = append(parts, fmt.Sprintf("pipeline %s open (%d deals)  won %s",
			app.FormatAmount(m.pipeline.OpenValue), m.pipeline.OpenCount, app.FormatAmount(m.pipeline.ClosedWonValue)))
	}
	if q := strings.TrimSpace(pane.filter); q != "" {
		parts = append(parts, "filter: "+q)
	}
	if pane.dragItemID != "" {
		item, _, _ := pane.board.Item(pane.dragItemID)
		parts = append(parts, "dragging: "+item.Title)
	}
	return strings.Join(parts, "  •  ")
}

// cardHeight returns the rows one card occupies, including its spacer row.
func (m Model) cardHeight() int {
	rows := 2
	if m.boardCfg.ShowDescription {
		rows++
	}
	if m.boardCfg.ShowValue || m.boardCfg.ShowTags {
		rows++
	}
	return rows
}

// layoutBoard computes the board geometry for the current terminal size.
func (m Model) layoutBoard(pane boardPane, bodyHeight int) boardLayout {
	colWidth := max(12, m.boardCfg.ColumnWidth)
	out := boardLayout{
		colWidth:   colWidth,
		outerWidth: colWidth + 4,
		cardHeight: m.cardHeight(),
		height:     bodyHeight,
	}
	total := len(pane.board.Columns)
	maxColumns := total
	if m.width > 0 {
		maxColumns = max(1, (m.width+1)/(out.outerWidth+1))
	}
	out.firstColumn, out.lastColumn = windowBounds(total, pane.column, maxColumns)

	out.visibleCards = 1 << 20
	if bodyHeight > 0 {
		inner := bodyHeight - 2 - (cardsTopOffset - 1)
		out.visibleCards = max(1, inner/out.cardHeight)
	}
	return out
}

// cardWindow returns the visible item range of one column.
func (l boardLayout) cardWindow(pane boardPane, colIdx int) (int, int) {
	total := len(pane.visibleItems(colIdx))
	selected := 0
	if colIdx == pane.column {
		selected = pane.row
	}
	return windowBounds(total, selected, l.visibleCards)
}

// columnAt returns the column index under screen x, or -1.
func (l boardLayout) columnAt(x int) int {
	if x < 0 {
		return -1
	}
	stride := l.outerWidth + 1
	offset := x / stride
	if x%stride >= l.outerWidth {
		return -1
	}
	idx := l.firstColumn + offset
	if idx >= l.lastColumn {
		return -1
	}
	return idx
}

// insideBoard reports whether screen row y lies within the rendered columns.
func (l boardLayout) insideBoard(y int) bool {
	if y < headerRows {
		return false
	}
	if l.height <= 0 {
		return true
	}
	return y < headerRows+l.height
}

// cardAt returns the visible item index under screen (x, y) in column colIdx.
func (l boardLayout) cardAt(pane boardPane, colIdx, y int) (int, bool) {
	rel := y - headerRows - cardsTopOffset
	if rel < 0 {
		return 0, false
	}
	if rel%l.cardHeight == l.cardHeight-1 {
		return 0, false
	}
	start, end := l.cardWindow(pane, colIdx)
	idx := start + rel/l.cardHeight
	if idx >= end {
		return 0, false
	}
	return idx, true
}

// renderBoardView renders the columns of the active board.
func (m Model) renderBoardView(bodyHeight int) string {
	pane, ok := m.currentPane()
	if !ok {
		return ""
	}
	if len(pane.board.Columns) == 0 {
		return "This board has no columns."
	}
	layout := m.layoutBoard(pane, bodyHeight)
	accent := m.accentColor()
	dim := lipgloss.Color("239")

	contentRows := 0
	if bodyHeight > 0 {
		contentRows = max(cardsTopOffset, bodyHeight-2)
	}

	views := make([]string, 0, layout.lastColumn-layout.firstColumn)
	for colIdx := layout.firstColumn; colIdx < layout.lastColumn; colIdx++ {
		lines := m.renderColumnLines(pane, layout, colIdx)
		if contentRows > 0 {
			if len(lines) > contentRows {
				lines = lines[:contentRows]
			}
			for len(lines) < contentRows {
				lines = append(lines, strings.Repeat(" ", layout.colWidth))
			}
		}
		border := dim
		switch {
		case pane.dragItemID != "" && colIdx == pane.hoverColumn:
			border = lipgloss.Color("214")
		case colIdx == pane.column:
			border = accent
		}
		style := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
		if colIdx > layout.firstColumn {
			views = append(views, " ")
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderColumnLines renders the rows inside one column, each exactly colWidth cells wide.
func (m Model) renderColumnLines(pane boardPane, layout boardLayout, colIdx int) []string {
	column := pane.board.Columns[colIdx]
	items := pane.visibleItems(colIdx)
	width := layout.colWidth
	muted := lipgloss.Color("241")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColumnColor(column.Color))
	ruleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	normalStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	subStyle := lipgloss.NewStyle().Foreground(muted)
	draggedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Faint(true)

	header := fmt.Sprintf("%s (%d)", column.Title, len(column.Items))
	lines := []string{
		titleStyle.Render(padCells(header, width)),
		ruleStyle.Render(strings.Repeat("─", width)),
	}
	if len(items) == 0 {
		hint := "(empty)"
		if pane.filter != "" {
			hint = "(no matches)"
		}
		lines = append(lines, subStyle.Render(padCells("  "+hint, width)))
		return lines
	}

	start, end := layout.cardWindow(pane, colIdx)
	for idx := start; idx < end; idx++ {
		item := items[idx]
		selected := colIdx == pane.column && idx == pane.row
		titleStyle, detailStyle := normalStyle, subStyle
		marker := "  "
		switch {
		case item.ID == pane.dragItemID:
			titleStyle, detailStyle = draggedStyle, draggedStyle
			marker = "⠿ "
		case selected:
			titleStyle = selectedStyle
			marker = "› "
		}
		lines = append(lines, titleStyle.Render(cardTitle(marker, item, width)))
		if m.boardCfg.ShowDescription {
			lines = append(lines, detailStyle.Render(padCells("  "+item.Description, width)))
		}
		if m.boardCfg.ShowValue || m.boardCfg.ShowTags {
			lines = append(lines, detailStyle.Render(padCells("  "+m.cardMeta(item), width)))
		}
		lines = append(lines, strings.Repeat(" ", width))
	}
	return lines
}

// cardMeta renders the value, priority, and tag summary of a card.
func (m Model) cardMeta(item domain.Item) string {
	parts := make([]string, 0, 3)
	if m.boardCfg.ShowValue && item.Value != "" {
		parts = append(parts, item.Value)
	}
	if item.Priority != "" {
		parts = append(parts, string(item.Priority))
	}
	if m.boardCfg.ShowTags && len(item.Tags) > 0 {
		parts = append(parts, summarizeTags(item.Tags, 2))
	}
	return strings.Join(parts, " • ")
}

// cardTitle renders the title row of a card with the assignee badge pinned right.
func cardTitle(marker string, item domain.Item, width int) string {
	badge := item.Initial()
	if badge == "" || width < 12 {
		return padCells(marker+item.Title, width)
	}
	return padCells(marker+item.Title, width-4) + " (" + badge + ")"
}

// boardMouseClick selects the card under the pointer and starts dragging it.
func (m Model) boardMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	pane := m.activePane()
	if pane == nil || msg.Button != tea.MouseLeft {
		return m, nil
	}
	layout := m.layoutBoard(*pane, m.bodyHeight(2))
	if !layout.insideBoard(msg.Y) {
		return m, nil
	}
	colIdx := layout.columnAt(msg.X)
	if colIdx < 0 {
		return m, nil
	}
	pane.column = colIdx
	pane.clampCursor()
	idx, ok := layout.cardAt(*pane, colIdx, msg.Y)
	if !ok {
		return m, nil
	}
	pane.row = idx
	item, ok := pane.selectedItem()
	if !ok {
		return m, nil
	}
	m.beginDrag(pane, item)
	return m, nil
}

// boardMouseMotion tracks the column under a dragged card.
func (m Model) boardMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	pane := m.activePane()
	if pane == nil || pane.dragItemID == "" {
		return m, nil
	}
	layout := m.layoutBoard(*pane, m.bodyHeight(2))
	pane.hoverColumn = -1
	if layout.insideBoard(msg.Y) {
		pane.hoverColumn = layout.columnAt(msg.X)
	}
	return m, nil
}

// boardMouseRelease drops over a column, or cancels the drag anywhere else.
func (m Model) boardMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	pane := m.activePane()
	if pane == nil || pane.dragItemID == "" {
		return m, nil
	}
	layout := m.layoutBoard(*pane, m.bodyHeight(2))
	colIdx := -1
	if layout.insideBoard(msg.Y) {
		colIdx = layout.columnAt(msg.X)
	}
	if colIdx < 0 {
		m.cancelDrag(pane)
		return m, nil
	}
	pane.column = colIdx
	return m, m.dropCmd(pane.boardID, pane.board.Columns[colIdx].ID)
}

// ColumnColor maps a stored column color (palette name or hex) to a terminal color.
func ColumnColor(raw string) color.Color {
	raw = strings.TrimSpace(raw)
	for _, entry := range palette {
		if strings.EqualFold(entry.Name, raw) {
			return lipgloss.Color(entry.Hex)
		}
	}
	if strings.HasPrefix(raw, "#") {
		return lipgloss.Color(raw)
	}
	return lipgloss.Color("252")
}
