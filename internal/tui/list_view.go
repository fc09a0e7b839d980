package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/pipedeck/internal/domain"
)

// listPane holds the shared search and selection state of a searchable list.
type listPane[T any] struct {
	query    string
	seq      int
	results  []T
	selected int
}

// setResults replaces the rows and keeps the selection in range.
func (p *listPane[T]) setResults(results []T) {
	p.results = results
	p.selected = clamp(p.selected, 0, len(results)-1)
}

// move shifts the selection by delta without wrapping.
func (p *listPane[T]) move(delta int) {
	p.selected = clamp(p.selected+delta, 0, len(p.results)-1)
}

// current returns the selected row.
func (p listPane[T]) current() (T, bool) {
	var zero T
	if p.selected < 0 || p.selected >= len(p.results) {
		return zero, false
	}
	return p.results[p.selected], true
}

type contactPane = listPane[domain.Contact]

type accountPane = listPane[domain.Account]

// searchResultMsg carries one search response tagged with the sequence that issued it.
type searchResultMsg struct {
	target   view
	seq      int
	contacts []domain.Contact
	accounts []domain.Account
}

// listDetailRatio is the share of the body width given to the list column.
const listDetailRatio = 0.4

// searchCmd runs one search for target.
func (m Model) searchCmd(target view, query string, seq int) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		out := searchResultMsg{target: target, seq: seq}
		var err error
		switch target {
		case viewContacts:
			out.contacts, err = svc.SearchContacts(ctx, query)
		case viewAccounts:
			out.accounts, err = svc.SearchAccounts(ctx, query)
		case viewConversations:
			out.contacts, err = svc.SearchConversationContacts(ctx, query)
		}
		if err != nil {
			return actionError("search", err)
		}
		return out
	}
}

// applySearchResult stores a search response unless a newer search has been issued since.
func (m *Model) applySearchResult(msg searchResultMsg) {
	switch msg.target {
	case viewContacts:
		if msg.seq == m.contacts.seq {
			m.contacts.setResults(msg.contacts)
		}
	case viewAccounts:
		if msg.seq == m.accounts.seq {
			m.accounts.setResults(msg.accounts)
		}
	case viewConversations:
		if msg.seq == m.conversations.seq {
			m.conversations.setResults(msg.contacts)
		}
	}
}

// handleListKey handles keys in the Contacts and Accounts views.
func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.moveListSelection(-1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveListSelection(1)
	case key.Matches(msg, m.keys.search):
		if m.view == viewContacts {
			m.startInput(modeSearch, "search: ", m.placeholders.Contacts, m.contacts.query, 80)
		} else {
			m.startInput(modeSearch, "search: ", m.placeholders.Accounts, m.accounts.query, 80)
		}
	case key.Matches(msg, m.keys.copyEmail):
		if m.view == viewContacts {
			contact, ok := m.contacts.current()
			m.copyContactEmail(contact, ok)
		}
	case key.Matches(msg, m.keys.cancel):
		return m.clearListQuery()
	}
	return m, nil
}

// moveListSelection moves the selection of the active list view.
func (m *Model) moveListSelection(delta int) {
	switch m.view {
	case viewContacts:
		m.contacts.move(delta)
	case viewAccounts:
		m.accounts.move(delta)
	case viewConversations:
		m.conversations.move(delta)
	}
}

// clearListQuery resets a non-empty search of the active list view.
func (m Model) clearListQuery() (tea.Model, tea.Cmd) {
	var query *string
	switch m.view {
	case viewContacts:
		query = &m.contacts.query
	case viewAccounts:
		query = &m.accounts.query
	case viewConversations:
		query = &m.conversations.query
	default:
		return m, nil
	}
	if *query == "" {
		return m, nil
	}
	return m, m.runSearch("")
}

// copyContactEmail writes the contact's email to the clipboard.
func (m *Model) copyContactEmail(contact domain.Contact, ok bool) {
	if !ok || strings.TrimSpace(contact.Email) == "" {
		m.status = "no email to copy"
		return
	}
	if err := m.copyText(contact.Email); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.status = "copied " + contact.Email
}

// listWidths splits the body width into list and detail columns.
func (m Model) listWidths() (int, int) {
	width := m.width
	if width <= 0 {
		width = 100
	}
	left := max(24, int(float64(width)*listDetailRatio))
	right := max(24, width-left-3)
	return left, right
}

// renderContactsView renders the contact list with a detail pane.
func (m Model) renderContactsView(bodyHeight int) string {
	left, right := m.listWidths()
	rows := make([]listRow, 0, len(m.contacts.results))
	for _, c := range m.contacts.results {
		rows = append(rows, listRow{
			badge:   c.Initials(),
			title:   c.Name,
			detail:  strings.TrimSpace(c.Position + " • " + c.Company),
			trailer: string(c.Status),
			dim:     c.Status != domain.StatusActive,
		})
	}
	list := m.renderList(rows, m.contacts.selected, left, bodyHeight, "No contacts match.")
	detail := ""
	if contact, ok := m.contacts.current(); ok {
		detail = m.md.render(contactMarkdown(contact), right)
	}
	return joinListDetail(list, detail, bodyHeight)
}

// renderAccountsView renders the account list with a detail pane.
func (m Model) renderAccountsView(bodyHeight int) string {
	left, right := m.listWidths()
	rows := make([]listRow, 0, len(m.accounts.results))
	for _, a := range m.accounts.results {
		rows = append(rows, listRow{
			badge:   a.Initials(),
			title:   a.Name,
			detail:  a.Industry + " • " + a.Revenue,
			trailer: string(a.Tier),
			dim:     a.Status != domain.StatusActive,
		})
	}
	list := m.renderList(rows, m.accounts.selected, left, bodyHeight, "No accounts match.")
	detail := ""
	if account, ok := m.accounts.current(); ok {
		detail = m.md.render(accountMarkdown(account), right)
	}
	return joinListDetail(list, detail, bodyHeight)
}

// listRow is one rendered list entry.
type listRow struct {
	badge   string
	title   string
	detail  string
	trailer string
	dim     bool
}

// listRowHeight is the rows one list entry occupies: title, detail, spacer.
const listRowHeight = 3

// renderList renders rows as a windowed selectable list of fixed width.
func (m Model) renderList(rows []listRow, selected, width, bodyHeight int, empty string) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if len(rows) == 0 {
		return muted.Render(padCells(empty, width))
	}
	visible := len(rows)
	if bodyHeight > 0 {
		visible = max(1, bodyHeight/listRowHeight)
	}
	start, end := windowBounds(len(rows), selected, visible)

	badgeStyle := lipgloss.NewStyle().Bold(true).Foreground(m.accentColor())
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	lines := make([]string, 0, (end-start)*listRowHeight)
	for idx := start; idx < end; idx++ {
		row := rows[idx]
		marker := "  "
		style := titleStyle
		if row.dim {
			style = dimStyle
		}
		if idx == selected {
			marker = "› "
			style = selectedStyle
		}
		trailer := ""
		if row.trailer != "" {
			trailer = " [" + row.trailer + "]"
		}
		titleWidth := max(1, width-len([]rune(marker))-3-len([]rune(trailer)))
		lines = append(lines,
			marker+badgeStyle.Render(padCells(row.badge, 2))+" "+style.Render(padCells(row.title, titleWidth))+muted.Render(trailer),
			muted.Render(padCells("     "+row.detail, width)),
			"",
		)
	}
	return strings.Join(lines, "\n")
}

// joinListDetail places the list and detail columns side by side.
func joinListDetail(list, detail string, bodyHeight int) string {
	if bodyHeight > 0 {
		list = fitLines(list, bodyHeight)
		detail = fitLines(detail, bodyHeight)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " │ ", detail)
}

// contactMarkdown renders a contact as a markdown card.
func contactMarkdown(c domain.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	if c.Position != "" || c.Company != "" {
		fmt.Fprintf(&b, "**%s** at %s\n\n", c.Position, c.Company)
	}
	writeField(&b, "Email", c.Email)
	writeField(&b, "Phone", c.Phone)
	writeField(&b, "Location", c.Location)
	writeField(&b, "Status", string(c.Status))
	writeField(&b, "Last contact", c.LastContact)
	if notes := strings.TrimSpace(c.Notes); notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", notes)
	}
	return b.String()
}

// accountMarkdown renders an account as a markdown card.
func accountMarkdown(a domain.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Name)
	if a.Industry != "" {
		fmt.Fprintf(&b, "**%s** • %s tier\n\n", a.Industry, a.Tier)
	}
	writeField(&b, "Revenue", a.Revenue)
	writeField(&b, "Employees", a.Employees)
	writeField(&b, "Contacts", fmt.Sprint(a.Contacts))
	writeField(&b, "Open opportunities", fmt.Sprint(a.Opportunities))
	writeField(&b, "Location", a.Location)
	writeField(&b, "Website", a.Website)
	writeField(&b, "Last activity", a.LastActivity)
	writeField(&b, "Status", string(a.Status))
	return b.String()
}

// writeField appends one "- **label:** value" line when value is set.
func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "- **%s:** %s\n", label, value)
}
