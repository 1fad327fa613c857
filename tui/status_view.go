// ABOUTME: Execution status overlay: progress, step, metrics, recent history
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/models"
)

// The history list shows at most this many entries.
const historyDisplayLimit = 5

var (
	statusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(1, 3).
			Width(64)

	statusBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1)

	completedBadge = statusBadgeStyle.
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("10"))

	failedBadge = statusBadgeStyle.
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("9"))

	runningBadge = statusBadgeStyle.
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11"))

	historyHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Underline(true)
)

func (m Model) renderStatusOverlay() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Transaction Processing"))
	s.WriteString("\n\n")

	state := m.execState
	switch state.Phase {
	case execution.PhaseIdle:
		s.WriteString(mutedStyle.Render("No execution running."))
		s.WriteString("\n")
	default:
		s.WriteString(renderStatusBadge(state))
		s.WriteString("\n\n")

		s.WriteString(m.progressBar.ViewAs(float64(state.Status.Progress) / 100))
		s.WriteString(fmt.Sprintf("  %d%%\n", state.Status.Progress))

		s.WriteString(mutedStyle.Render("Step: " + models.StepLabel(state.Status.Step)))
		s.WriteString("\n")

		if state.Phase == execution.PhaseInterrupted && state.Err != nil {
			s.WriteString("\n")
			s.WriteString(errorStyle.Render("Lost contact with the processing API: " + state.Err.Error()))
			s.WriteString("\n")
			s.WriteString(mutedStyle.Render("The job may still be running server-side."))
			s.WriteString("\n")
		}

		if state.Metrics != nil {
			s.WriteString("\n")
			s.WriteString(renderMetrics(*state.Metrics))
		}
	}

	if len(state.History) > 0 {
		s.WriteString("\n")
		s.WriteString(historyHeaderStyle.Render("Recent Executions"))
		s.WriteString("\n\n")

		limit := len(state.History)
		if limit > historyDisplayLimit {
			limit = historyDisplayLimit
		}
		for _, entry := range state.History[:limit] {
			line := fmt.Sprintf("%s  %-24s %s", entry.CreatedAt, models.StepLabel(entry.Step), entry.Status)
			s.WriteString(mutedStyle.Render(line))
			s.WriteString("\n")
		}
	}

	s.WriteString(helpStyle.Render("Esc: Close • q: Quit"))

	box := statusBoxStyle.Render(s.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func renderStatusBadge(state execution.State) string {
	switch state.Phase {
	case execution.PhaseCompleted:
		return completedBadge.Render(models.ExecutionCompleted)
	case execution.PhaseFailed:
		return failedBadge.Render(models.ExecutionFailed)
	case execution.PhaseInterrupted:
		return failedBadge.Render("INTERRUPTED")
	default:
		status := state.Status.Status
		if status == "" {
			status = models.StepQueued
		}
		return runningBadge.Render(status)
	}
}

func renderMetrics(metrics models.ExecutionMetrics) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("Fetched") + fmt.Sprintf("%d transactions\n", metrics.TransactionsFetched))
	s.WriteString(labelStyle.Render("Created") + fmt.Sprintf("%d installments\n", metrics.InstallmentsCreated))
	s.WriteString(labelStyle.Render("Removed") + fmt.Sprintf("%d duplicates\n", metrics.DuplicatesRemoved))
	return s.String()
}

func (m Model) handleStatusKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "s":
		// Closing the presentation never stops the polling loop.
		m.showStatus = false
	}
	return m, nil
}

func (m Model) handleExecStarted(msg execStartedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.sessionLost(msg.err) {
			return m.navigate(ViewLogin)
		}
		m.execErr = msg.err.Error()
		return m, nil
	}

	m.execErr = ""
	m.showStatus = true
	return m, nil
}
