package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// renderDashboardView renders the stat cards and the recent activity feed.
func (m Model) renderDashboardView(bodyHeight int) string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	stats := m.dashboard.Stats
	cards := make([]string, 0, len(stats)*2)
	if len(stats) > 0 {
		cardWidth := max(18, (width-(len(stats)-1))/len(stats)-4)
		labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
		detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		cardStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("239")).
			Padding(0, 1)
		for idx, stat := range stats {
			if idx > 0 {
				cards = append(cards, " ")
			}
			cards = append(cards, cardStyle.Render(strings.Join([]string{
				labelStyle.Render(padCells(stat.Title, cardWidth)),
				valueStyle.Render(padCells(stat.Value, cardWidth)),
				detailStyle.Render(padCells(stat.Detail, cardWidth)),
			}, "\n")))
		}
	}
	statsRow := lipgloss.JoinHorizontal(lipgloss.Top, cards...)

	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(m.accentColor())
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	lines := []string{statsRow, "", sectionStyle.Render("Recent Activity")}
	if len(m.dashboard.Activity) == 0 {
		lines = append(lines, mutedStyle.Render("No activity yet."))
	}
	for _, event := range m.dashboard.Activity {
		when := "-"
		if !event.OccurredAt.IsZero() {
			when = event.OccurredAt.Local().Format("Jan 2 15:04")
		}
		lines = append(lines,
			titleStyle.Render(truncate(fmt.Sprintf("• %s", event.Title), width))+mutedStyle.Render("  "+when),
			mutedStyle.Render(truncate("  "+event.Description, width)),
		)
	}
	content := strings.Join(lines, "\n")
	if bodyHeight > 0 {
		content = fitLines(content, bodyHeight)
	}
	return content
}
