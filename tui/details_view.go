// ABOUTME: Details view: reference record, candidate list, selection toggling
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/models"
	"github.com/olivinha/console/review"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(12)

	amountStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	selectedCandidateStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)
)

func (m Model) renderDetailsView() string {
	detail := m.session.Detail()
	if detail == nil {
		return mutedStyle.Render("No conciliation open.")
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Review Conciliation"))
	s.WriteString("\n\n")

	s.WriteString(sectionStyle.Render("Reference (DIF)"))
	s.WriteString("\n")
	s.WriteString(cardStyle.Render(renderRecord(detail.Reference, false)))
	s.WriteString("\n")

	s.WriteString(sectionStyle.Render(fmt.Sprintf("Candidates (%d)", len(detail.Candidates))))
	s.WriteString("\n\n")

	if len(detail.Candidates) == 0 {
		s.WriteString(mutedStyle.Render("No candidates found."))
		s.WriteString("\n")
	}

	for i, candidate := range detail.Candidates {
		checkbox := "[ ]"
		if m.session.IsSelected(candidate.RowIndex) {
			checkbox = "[x]"
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "▶ "
		}

		line := fmt.Sprintf("%s%s %s", cursor, checkbox, renderRecord(candidate, true))
		if i == m.cursor {
			line = selectedCandidateStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	if m.actionErr != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Error: " + m.actionErr))
		s.WriteString("\n")
	}

	s.WriteString(m.renderDetailsHelp())
	return s.String()
}

func renderRecord(record models.Transaction, compact bool) string {
	amount := amountStyle.Render(fmt.Sprintf("R$ %.2f", record.Valor))
	if compact {
		return fmt.Sprintf("%s  %s  %s", record.Descricao, amount, record.Data)
	}

	var s strings.Builder
	s.WriteString(labelStyle.Render("Description") + record.Descricao + "\n")
	s.WriteString(labelStyle.Render("Amount") + amount + "\n")
	s.WriteString(labelStyle.Render("Date") + record.Data + "\n")
	s.WriteString(labelStyle.Render("Account") + record.Conta + "\n")
	installment := record.IdParcela
	if installment == "" {
		installment = "-"
	}
	s.WriteString(labelStyle.Render("Installment") + installment)
	return s.String()
}

func (m Model) renderDetailsHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Space: Toggle",
		"a: Accept selection",
		"x: Reject",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	detail := m.session.Detail()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if detail != nil && m.cursor < len(detail.Candidates)-1 {
			m.cursor++
		}
	case " ":
		if detail != nil && m.cursor < len(detail.Candidates) {
			m.session.Toggle(detail.Candidates[m.cursor].RowIndex)
		}
	case "a":
		if m.session.SelectionCount() == 0 {
			m.actionErr = review.ErrNoSelection.Error()
			return m, nil
		}
		m.actionErr = ""
		return m, acceptCmd(m.session)
	case "x":
		m.actionErr = ""
		m.viewMode = ViewConfirmReject
	case "esc":
		return m.navigate(ViewQueue)
	}

	return m, nil
}

func (m Model) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.sessionLost(msg.err) {
			return m.navigate(ViewLogin)
		}
		m.queueErr = msg.err.Error()
		return m, nil
	}

	m.cursor = 0
	m.actionErr = ""
	m.viewMode = ViewDetails
	return m, nil
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.sessionLost(msg.err) {
			return m.navigate(ViewLogin)
		}
		m.actionErr = msg.err.Error()
		m.viewMode = ViewDetails
		return m, nil
	}

	// Decision recorded; back to a fresh queue.
	return m.navigate(ViewQueue)
}

func (m Model) sessionLost(err error) bool {
	return errors.Is(err, api.ErrSessionExpired)
}
