package tui

import tea "charm.land/bubbletea/v2"

// handleMouseWheel moves the selection of the active view.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode == modeSearch || m.mode == modeAddItem {
		return m, nil
	}
	delta := 0
	switch msg.Button {
	case tea.MouseWheelUp:
		delta = -1
	case tea.MouseWheelDown:
		delta = 1
	default:
		return m, nil
	}

	switch m.view {
	case viewLeads, viewOpportunities:
		pane := m.activePane()
		pane.row = clamp(pane.row+delta, 0, len(pane.visibleItems(pane.column))-1)
	case viewContacts, viewAccounts:
		m.moveListSelection(delta)
	case viewConversations:
		// the wheel scrolls the thread; positive scroll moves toward older messages
		m.conversations.scroll = max(0, m.conversations.scroll-delta)
	}
	return m, nil
}

// handleMouseClick selects tabs and list rows, and starts card drags on boards.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if msg.Y == 0 {
		if idx, ok := m.tabAt(msg.X); ok {
			return m.switchView(idx)
		}
		return m, nil
	}
	switch m.view {
	case viewLeads, viewOpportunities:
		return m.boardMouseClick(msg)
	case viewContacts, viewAccounts, viewConversations:
		left, _ := m.listWidths()
		if msg.X >= left || msg.Y < headerRows {
			return m, nil
		}
		return m.selectListRow((msg.Y - headerRows) / listRowHeight)
	}
	return m, nil
}

// handleMouseMotion tracks drag hover on boards.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.isBoardView() {
		return m, nil
	}
	return m.boardMouseMotion(msg)
}

// handleMouseRelease finishes a mouse drag on boards. A release anywhere else ends any drag
// left over from a board.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.isBoardView() {
		m.cancelActiveDrags()
		return m, nil
	}
	return m.boardMouseRelease(msg)
}

// selectListRow selects the visible row at offset in the active list view.
func (m Model) selectListRow(offset int) (tea.Model, tea.Cmd) {
	visible := 1 << 20
	if h := m.bodyHeight(2); h > 0 {
		visible = max(1, h/listRowHeight)
	}
	switch m.view {
	case viewContacts:
		start, end := windowBounds(len(m.contacts.results), m.contacts.selected, visible)
		if start+offset < end {
			m.contacts.selected = start + offset
		}
	case viewAccounts:
		start, end := windowBounds(len(m.accounts.results), m.accounts.selected, visible)
		if start+offset < end {
			m.accounts.selected = start + offset
		}
	case viewConversations:
		start, end := windowBounds(len(m.conversations.results), m.conversations.selected, visible)
		if start+offset < end {
			return m.selectConversation(start + offset - m.conversations.selected)
		}
	}
	return m, nil
}

// tabAt returns the view index of the tab under screen column x on the title row.
func (m Model) tabAt(x int) (int, bool) {
	pos := len("pipedeck") + 2
	for idx, v := range viewOrder {
		label := len([]rune(v.title())) + 2
		if x >= pos && x < pos+label {
			return idx, true
		}
		pos += label + 2
	}
	return 0, false
}
