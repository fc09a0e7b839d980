package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/pipedeck/internal/app"
	"github.com/hylla/pipedeck/internal/domain"
)

// Service is the application surface the TUI drives.
type Service interface {
	GetBoard(context.Context, string) (domain.Board, error)
	BeginDrag(context.Context, string, string) error
	DropOnColumn(context.Context, string, string) (app.DropResult, error)
	CancelDrag(context.Context, string) error
	CreateItem(context.Context, app.CreateItemInput) (domain.Item, error)
	SearchContacts(context.Context, string) ([]domain.Contact, error)
	SearchAccounts(context.Context, string) ([]domain.Account, error)
	SearchConversationContacts(context.Context, string) ([]domain.Contact, error)
	ListMessages(context.Context, string) ([]domain.Message, error)
	SendMessage(context.Context, string, string) (domain.Message, error)
	PipelineSummary(context.Context) (domain.PipelineSummary, error)
	Dashboard(context.Context) (app.Dashboard, error)
}

// view identifies one top-level screen.
type view int

// view values in sidebar order.
const (
	viewDashboard view = iota
	viewLeads
	viewContacts
	viewAccounts
	viewOpportunities
	viewConversations
)

// viewOrder lists the views in tab order.
var viewOrder = []view{viewDashboard, viewLeads, viewContacts, viewAccounts, viewOpportunities, viewConversations}

// title returns the tab label of a view.
func (v view) title() string {
	switch v {
	case viewLeads:
		return "Leads"
	case viewContacts:
		return "Contacts"
	case viewAccounts:
		return "Accounts"
	case viewOpportunities:
		return "Opportunities"
	case viewConversations:
		return "Conversations"
	default:
		return "Dashboard"
	}
}

// viewByName resolves a configured view name.
func viewByName(name string) (view, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range viewOrder {
		if strings.ToLower(v.title()) == name {
			return v, true
		}
	}
	return viewDashboard, false
}

// inputMode identifies which text input owns the keyboard.
type inputMode int

// inputMode values.
const (
	modeNone inputMode = iota
	modeSearch
	modeAddItem
	modeCompose
)

// headerRows is the number of rows above the body of every view.
const headerRows = 3

// Model is the root bubbletea model.
type Model struct {
	svc Service

	keys         keyMap
	help         help.Model
	md           *markdownRenderer
	copyText     func(string) error
	boardCfg     BoardConfig
	placeholders SearchPlaceholders
	mouse        bool

	leadsBoardID string
	oppsBoardID  string

	ready  bool
	err    error
	status string
	width  int
	height int

	view  view
	mode  inputMode
	input textinput.Model

	leads    boardPane
	opps     boardPane
	pipeline domain.PipelineSummary

	contacts      contactPane
	accounts      accountPane
	conversations conversationPane

	dashboard app.Dashboard

	searchSeq int
}

// loadedMsg carries the initial (or reloaded) data set.
type loadedMsg struct {
	leads         domain.Board
	opps          domain.Board
	pipeline      domain.PipelineSummary
	contacts      []domain.Contact
	accounts      []domain.Account
	conversations []domain.Contact
	dashboard     app.Dashboard
}

// loadErrMsg reports a failed load.
type loadErrMsg struct {
	err error
}

// actionErrMsg reports a failed user action without leaving the current screen.
type actionErrMsg struct {
	action  string
	boardID string
	err     error
}

// summaryMsg carries refreshed dashboard figures.
type summaryMsg struct {
	pipeline  domain.PipelineSummary
	dashboard app.Dashboard
}

// NewModel constructs the root model.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:          svc,
		keys:         newKeyMap(),
		help:         h,
		md:           newMarkdownRenderer(),
		copyText:     defaultClipboard,
		boardCfg:     DefaultBoardConfig(),
		placeholders: DefaultSearchPlaceholders(),
		mouse:        true,
		leadsBoardID: app.DefaultLeadsBoardID,
		oppsBoardID:  app.DefaultOpportunitiesBoardID,
		status:       "loading...",
		view:         viewDashboard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.leads = newBoardPane(m.leadsBoardID)
	m.opps = newBoardPane(m.oppsBoardID)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update handles update.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		return m, nil

	case loadErrMsg:
		m.err = msg.err
		m.status = "error"
		return m, nil

	case actionErrMsg:
		if msg.action == "drop" {
			// the service idles its session even when a drop fails
			if pane := m.paneFor(msg.boardID); pane != nil {
				pane.dragItemID = ""
				pane.hoverColumn = -1
			}
		}
		m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		return m, nil

	case loadedMsg:
		m.err = nil
		m.ready = true
		m.leads.setBoard(msg.leads)
		m.opps.setBoard(msg.opps)
		m.pipeline = msg.pipeline
		m.contacts.setResults(msg.contacts)
		m.accounts.setResults(msg.accounts)
		m.conversations.setResults(msg.conversations)
		m.dashboard = msg.dashboard
		m.status = "ready"
		return m, m.loadThreadCmd()

	case summaryMsg:
		m.pipeline = msg.pipeline
		m.dashboard = msg.dashboard
		return m, nil

	case boardLoadedMsg:
		if pane := m.paneFor(msg.boardID); pane != nil {
			pane.setBoard(msg.board)
		}
		return m, m.refreshSummaryCmd()

	case dropMsg:
		return m.applyDrop(msg)

	case itemCreatedMsg:
		m.status = fmt.Sprintf("added %q", msg.item.Title)
		return m, m.loadBoardCmd(msg.boardID)

	case searchResultMsg:
		m.applySearchResult(msg)
		if msg.target == viewConversations {
			return m, m.loadThreadCmd()
		}
		return m, nil

	case threadMsg:
		if msg.contactID == m.conversations.selectedContactID() {
			m.conversations.messages = msg.messages
			m.conversations.threadContactID = msg.contactID
		}
		return m, nil

	case messageSentMsg:
		m.status = "message sent"
		return m, tea.Batch(m.loadThreadCmd(), m.refreshSummaryCmd())

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)
	}
	return m, nil
}

// View renders the active screen with header, body, and help line.
func (m Model) View() tea.View {
	return m.newView(m.render())
}

// render builds the frame content.
func (m Model) render() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n\npress r to retry • q quit\n"
	}
	if !m.ready {
		return "loading..."
	}

	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	accent := m.accentColor()

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	bodyHeight := m.bodyHeight(lipgloss.Height(helpLine))
	var body string
	switch m.view {
	case viewLeads, viewOpportunities:
		body = m.renderBoardView(bodyHeight)
	case viewContacts:
		body = m.renderContactsView(bodyHeight)
	case viewAccounts:
		body = m.renderAccountsView(bodyHeight)
	case viewConversations:
		body = m.renderConversationsView(bodyHeight)
	default:
		body = m.renderDashboardView(bodyHeight)
	}
	if bodyHeight > 0 {
		body = fitLines(body, bodyHeight)
	}

	header := strings.Join([]string{m.renderTabs(accent, dim), m.renderSubheader(muted), m.renderInputLine(muted)}, "\n")
	content := header + "\n" + body + "\n" + helpLine
	if m.help.ShowAll {
		overlay := m.renderHelpOverlay(accent, muted, dim, m.width-8)
		overlayHeight := lipgloss.Height(content)
		if m.height > 0 {
			overlayHeight = m.height
		}
		content = overlayOnContent(content, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return content
}

// newView wraps rendered content with the program-level view settings.
func (m Model) newView(content string) tea.View {
	v := tea.NewView(content)
	if m.mouse {
		v.MouseMode = tea.MouseModeCellMotion
	}
	v.AltScreen = true
	return v
}

// bodyHeight returns the rows left for the view body, or 0 when the terminal size is unknown.
func (m Model) bodyHeight(helpHeight int) int {
	if m.height <= 0 {
		return 0
	}
	return max(4, m.height-headerRows-helpHeight)
}

// accentColor returns the accent for the active view.
func (m Model) accentColor() color.Color {
	switch m.view {
	case viewLeads:
		return lipgloss.Color("62")
	case viewOpportunities:
		return lipgloss.Color("35")
	case viewContacts, viewConversations:
		return lipgloss.Color("69")
	case viewAccounts:
		return lipgloss.Color("172")
	default:
		return lipgloss.Color("212")
	}
}

// renderTabs renders the title row with one tab per view.
func (m Model) renderTabs(accent, dim color.Color) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Render("pipedeck")
	active := lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(dim)
	parts := []string{title}
	for idx, v := range viewOrder {
		label := fmt.Sprintf("%d %s", idx+1, v.title())
		if v == m.view {
			parts = append(parts, active.Render(label))
			continue
		}
		parts = append(parts, inactive.Render(label))
	}
	return truncateStyled(strings.Join(parts, "  "), m.width)
}

// renderSubheader renders the one-line summary under the tabs.
func (m Model) renderSubheader(muted color.Color) string {
	style := lipgloss.NewStyle().Foreground(muted)
	var line string
	switch m.view {
	case viewLeads, viewOpportunities:
		line = m.boardSubheader()
	case viewContacts:
		line = fmt.Sprintf("%d contacts", len(m.contacts.results))
		if q := strings.TrimSpace(m.contacts.query); q != "" {
			line += fmt.Sprintf("  search: %s", q)
		}
	case viewAccounts:
		line = fmt.Sprintf("%d accounts", len(m.accounts.results))
		if q := strings.TrimSpace(m.accounts.query); q != "" {
			line += fmt.Sprintf("  search: %s", q)
		}
	case viewConversations:
		line = fmt.Sprintf("%d conversations", len(m.conversations.results))
		if q := strings.TrimSpace(m.conversations.query); q != "" {
			line += fmt.Sprintf("  search: %s", q)
		}
	default:
		line = "Overview of your pipeline and recent activity"
	}
	return truncateStyled(style.Render(line), m.width)
}

// renderInputLine renders the focused input, or the status text when no input is open.
func (m Model) renderInputLine(muted color.Color) string {
	if m.mode != modeNone {
		in := m.input
		in.SetWidth(max(20, m.width-len(in.Prompt)-4))
		return truncateStyled(in.View(), m.width)
	}
	status := strings.TrimSpace(m.status)
	if status == "" || status == "ready" {
		return ""
	}
	return truncateStyled(lipgloss.NewStyle().Foreground(muted).Italic(true).Render(status), m.width)
}

// handleNormalModeKey handles keys while no input is focused.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.reload):
			m.err = nil
			m.ready = false
			return m, m.loadData
		}
		return m, nil
	}

	if m.help.ShowAll {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggleHelp), msg.String() == "esc":
			m.help.ShowAll = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.cancelActiveDrags()
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.nextView):
		return m.switchView(m.viewIndex() + 1)
	case key.Matches(msg, m.keys.prevView):
		return m.switchView(m.viewIndex() - 1)
	case key.Matches(msg, m.keys.jumpView):
		idx := int(msg.Code - '1')
		if idx >= 0 && idx < len(viewOrder) {
			return m.switchView(idx)
		}
		return m, nil
	}

	switch m.view {
	case viewLeads, viewOpportunities:
		return m.handleBoardKey(msg)
	case viewContacts, viewAccounts:
		return m.handleListKey(msg)
	case viewConversations:
		return m.handleConversationKey(msg)
	}
	return m, nil
}

// handleInputModeKey routes keys to the focused input.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		mode := m.mode
		m.closeInput()
		if mode == modeSearch && m.isBoardView() {
			// esc in a board filter drops the filter; list searches keep their query.
			m.activePane().setFilter("")
		}
		return m, nil
	case "enter":
		return m.submitInput()
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch && m.input.Value() != before {
		return m, tea.Batch(cmd, m.applySearchInput())
	}
	return m, cmd
}

// startInput focuses the shared text input for one mode.
func (m *Model) startInput(mode inputMode, prompt, placeholder, value string, limit int) {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()
	m.input = in
	m.mode = mode
}

// closeInput blurs the input and returns to normal mode.
func (m *Model) closeInput() {
	m.input.Blur()
	m.mode = modeNone
}

// submitInput handles enter in the focused input.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeSearch:
		m.closeInput()
		return m, nil
	case modeAddItem:
		if value == "" {
			m.status = "title required"
			return m, nil
		}
		m.closeInput()
		return m, m.createItemCmd(value)
	case modeCompose:
		if value == "" {
			return m, nil
		}
		contactID := m.conversations.selectedContactID()
		if contactID == "" {
			m.status = "no conversation selected"
			return m, nil
		}
		m.input.SetValue("")
		return m, m.sendMessageCmd(contactID, value)
	}
	m.closeInput()
	return m, nil
}

// applySearchInput re-runs the active search after every keystroke.
func (m *Model) applySearchInput() tea.Cmd {
	return m.runSearch(m.input.Value())
}

// runSearch applies query to the active view. Board filters apply in place; list searches go
// through the service tagged with a fresh sequence so stale responses can be dropped.
func (m *Model) runSearch(query string) tea.Cmd {
	m.searchSeq++
	switch m.view {
	case viewLeads, viewOpportunities:
		m.activePane().setFilter(query)
		return nil
	case viewContacts:
		m.contacts.query, m.contacts.seq = query, m.searchSeq
	case viewAccounts:
		m.accounts.query, m.accounts.seq = query, m.searchSeq
	case viewConversations:
		m.conversations.query, m.conversations.seq = query, m.searchSeq
	default:
		return nil
	}
	return m.searchCmd(m.view, query, m.searchSeq)
}

// viewIndex returns the tab index of the active view.
func (m Model) viewIndex() int {
	for idx, v := range viewOrder {
		if v == m.view {
			return idx
		}
	}
	return 0
}

// switchView activates the view at idx, wrapping around.
func (m Model) switchView(idx int) (tea.Model, tea.Cmd) {
	next := viewOrder[wrapIndex(idx, 0, len(viewOrder))]
	if next != m.view {
		m.cancelActiveDrags()
	}
	m.view = next
	if m.view == viewConversations {
		return m, m.loadThreadCmd()
	}
	return m, nil
}

// isBoardView reports whether the active view is a kanban board.
func (m Model) isBoardView() bool {
	return m.view == viewLeads || m.view == viewOpportunities
}

// loadData loads every view's data.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	leads, err := m.svc.GetBoard(ctx, m.leadsBoardID)
	if err != nil {
		return loadErrMsg{err: err}
	}
	opps, err := m.svc.GetBoard(ctx, m.oppsBoardID)
	if err != nil {
		return loadErrMsg{err: err}
	}
	pipeline, err := m.svc.PipelineSummary(ctx)
	if err != nil {
		return loadErrMsg{err: err}
	}
	contacts, err := m.svc.SearchContacts(ctx, m.contacts.query)
	if err != nil {
		return loadErrMsg{err: err}
	}
	accounts, err := m.svc.SearchAccounts(ctx, m.accounts.query)
	if err != nil {
		return loadErrMsg{err: err}
	}
	conversations, err := m.svc.SearchConversationContacts(ctx, m.conversations.query)
	if err != nil {
		return loadErrMsg{err: err}
	}
	dashboard, err := m.svc.Dashboard(ctx)
	if err != nil {
		return loadErrMsg{err: err}
	}
	return loadedMsg{
		leads:         leads,
		opps:          opps,
		pipeline:      pipeline,
		contacts:      contacts,
		accounts:      accounts,
		conversations: conversations,
		dashboard:     dashboard,
	}
}

// refreshSummaryCmd reloads the pipeline and dashboard figures.
func (m Model) refreshSummaryCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		pipeline, err := svc.PipelineSummary(ctx)
		if err != nil {
			return actionErrMsg{action: "refresh", err: err}
		}
		dashboard, err := svc.Dashboard(ctx)
		if err != nil {
			return actionErrMsg{action: "refresh", err: err}
		}
		return summaryMsg{pipeline: pipeline, dashboard: dashboard}
	}
}

// actionError wraps err for display unless it is a context cancellation.
func actionError(action string, err error) tea.Msg {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return actionErrMsg{action: action, err: err}
}
