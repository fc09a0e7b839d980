package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/pipedeck/internal/domain"
)

// conversationPane holds the contact list and open thread of the Conversations view.
type conversationPane struct {
	listPane[domain.Contact]

	threadContactID string
	messages        []domain.Message
	scroll          int
}

// selectedContactID returns the id of the highlighted contact.
func (p conversationPane) selectedContactID() string {
	contact, ok := p.current()
	if !ok {
		return ""
	}
	return contact.ID
}

// threadMsg carries the messages of one contact.
type threadMsg struct {
	contactID string
	messages  []domain.Message
}

// messageSentMsg reports a sent message.
type messageSentMsg struct {
	message domain.Message
}

// loadThreadCmd loads the thread of the selected contact.
func (m Model) loadThreadCmd() tea.Cmd {
	contactID := m.conversations.selectedContactID()
	if contactID == "" {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		messages, err := svc.ListMessages(context.Background(), contactID)
		if err != nil {
			return actionError("load thread", err)
		}
		return threadMsg{contactID: contactID, messages: messages}
	}
}

// sendMessageCmd sends body to contactID.
func (m Model) sendMessageCmd(contactID, body string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		message, err := svc.SendMessage(context.Background(), contactID, body)
		if err != nil {
			return actionError("send", err)
		}
		return messageSentMsg{message: message}
	}
}

// handleConversationKey handles keys in the Conversations view.
func (m Model) handleConversationKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.moveUp):
		return m.selectConversation(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m.selectConversation(1)
	case key.Matches(msg, m.keys.search):
		m.startInput(modeSearch, "search: ", m.placeholders.Conversations, m.conversations.query, 80)
	case key.Matches(msg, m.keys.compose):
		contact, ok := m.conversations.current()
		if !ok {
			m.status = "no conversation selected"
			return m, nil
		}
		m.startInput(modeCompose, "to "+contact.Name+": ", "Type a message...", "", 1000)
	case key.Matches(msg, m.keys.copyEmail):
		contact, ok := m.conversations.current()
		m.copyContactEmail(contact, ok)
	case key.Matches(msg, m.keys.cancel):
		return m.clearListQuery()
	case msg.String() == "pgup":
		m.conversations.scroll += m.threadViewportStep()
	case msg.String() == "pgdown":
		m.conversations.scroll = max(0, m.conversations.scroll-m.threadViewportStep())
	}
	return m, nil
}

// selectConversation moves the contact selection and loads its thread.
func (m Model) selectConversation(delta int) (tea.Model, tea.Cmd) {
	before := m.conversations.selectedContactID()
	m.conversations.move(delta)
	if m.conversations.selectedContactID() == before {
		return m, nil
	}
	m.conversations.scroll = 0
	return m, m.loadThreadCmd()
}

// renderConversationsView renders the contact list beside the open thread.
func (m Model) renderConversationsView(bodyHeight int) string {
	left, right := m.listWidths()
	rows := make([]listRow, 0, len(m.conversations.results))
	for _, c := range m.conversations.results {
		rows = append(rows, listRow{
			badge:  c.Initials(),
			title:  c.Name,
			detail: c.Company,
			dim:    c.Status != domain.StatusActive,
		})
	}
	list := m.renderList(rows, m.conversations.selected, left, bodyHeight, "No conversations match.")
	return joinListDetail(list, m.renderThread(right, bodyHeight), bodyHeight)
}

// renderThread renders the open thread, newest at the bottom, scrolled up by the pane scroll.
func (m Model) renderThread(width, bodyHeight int) string {
	contact, ok := m.conversations.current()
	if !ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("Select a conversation.")
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(m.accentColor())
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	header := []string{
		headerStyle.Render(truncate(contact.Name, width)),
		hintStyle.Render(truncate(strings.TrimSpace(contact.Position+" • "+contact.Company), width)),
		"",
	}

	body := m.threadBodyLines(width)
	if m.conversations.threadContactID != contact.ID {
		body = []string{hintStyle.Render("loading...")}
	}
	if bodyHeight <= 0 {
		return strings.Join(append(header, body...), "\n")
	}

	visibleRows := max(1, bodyHeight-len(header))
	maxScroll := max(0, len(body)-visibleRows)
	scroll := clamp(m.conversations.scroll, 0, maxScroll)
	end := len(body) - scroll
	start := max(0, end-visibleRows)
	return strings.Join(append(header, body[start:end]...), "\n")
}

// threadBodyLines renders one bubble per message; sent messages align right.
func (m Model) threadBodyLines(width int) []string {
	if len(m.conversations.messages) == 0 {
		return []string{lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("No messages yet. Press m to write one.")}
	}
	bubbleWidth := max(16, width*3/4)
	sentStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.accentColor()).
		Padding(0, 1).
		Width(bubbleWidth)
	receivedStyle := sentStyle.BorderForeground(lipgloss.Color("241"))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	lines := make([]string, 0, len(m.conversations.messages)*5)
	for _, message := range m.conversations.messages {
		style, align := receivedStyle, lipgloss.Left
		if message.Direction == domain.MessageSent {
			style, align = sentStyle, lipgloss.Right
		}
		meta := metaStyle.Render(fmt.Sprintf("%s • %s", message.Sender, formatThreadTimestamp(message.SentAt)))
		bubble := lipgloss.JoinVertical(align, style.Render(message.Body), meta)
		placed := lipgloss.PlaceHorizontal(width, align, bubble)
		lines = append(lines, strings.Split(placed, "\n")...)
		lines = append(lines, "")
	}
	return lines
}

// threadViewportStep returns how many rows pgup and pgdown scroll.
func (m Model) threadViewportStep() int {
	if m.height <= 0 {
		return 5
	}
	return max(3, m.height/3)
}

// formatThreadTimestamp renders a message time for the thread meta line.
func formatThreadTimestamp(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return at.Local().Format("Jan 2 15:04")
}
