// ABOUTME: Reject confirmation dialog
// ABOUTME: Rejecting moves the reference row to the REJ bucket server-side
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmRejectView() string {
	detail := m.session.Detail()
	if detail == nil {
		return mutedStyle.Render("No conciliation open.")
	}

	title := warningStyle.Render("⚠  REJECT CONCILIATION  ⚠")
	message := "Are you sure you want to reject this conciliation?"
	reference := fmt.Sprintf("\n%s — R$ %.2f\n", detail.Reference.Descricao, detail.Reference.Valor)
	warning := "The reference will be moved to REJ."

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Reject (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		reference,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) handleConfirmRejectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, rejectCmd(m.session)
	case "n", "N", "esc":
		m.viewMode = ViewDetails
	}
	return m, nil
}
