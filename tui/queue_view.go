// ABOUTME: Queue view: pending conciliations with live search filtering
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/models"
)

var (
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	pollingBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

func newQueueTable(items []models.ConciliationSummary, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Description", Width: 32},
		{Title: "Owner", Width: 12},
		{Title: "Bank", Width: 14},
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Cand.", Width: 6},
	}

	var rows []table.Row
	for _, item := range items {
		rows = append(rows, table.Row{
			item.Descricao,
			item.Dono,
			item.Banco,
			item.Data,
			fmt.Sprintf("R$ %.2f", item.Valor),
			fmt.Sprintf("%d", item.CandidateCount),
		})
	}

	tableHeight := height - 10
	if tableHeight < 3 {
		tableHeight = 3
	}

	return table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)
}

// visibleItems applies the current search to the queue snapshot.
func (m Model) visibleItems() []models.ConciliationSummary {
	return m.queue.Filter(m.searchInput.Value())
}

func (m Model) renderQueueView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Pending Conciliations"))
	s.WriteString("\n")

	visible := m.visibleItems()
	header := countStyle.Render(fmt.Sprintf("%d pending", len(visible)))
	if m.orchestrator.Active() {
		header += "  " + pollingBadgeStyle.Render("⟳ processing")
	}
	s.WriteString(header)
	s.WriteString("\n\n")

	s.WriteString("Search: ")
	s.WriteString(m.searchInput.View())
	s.WriteString("\n\n")

	switch {
	case m.loading:
		s.WriteString(mutedStyle.Render("Loading queue..."))
	case m.queueErr != "":
		s.WriteString(errorStyle.Render("Error: " + m.queueErr))
	case len(visible) == 0:
		s.WriteString(mutedStyle.Render("No pending conciliations."))
	default:
		s.WriteString(m.queueTable.View())
	}
	s.WriteString("\n")

	if m.execErr != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Processing: " + m.execErr))
		s.WriteString("\n")
	}

	s.WriteString(m.renderQueueHelp())
	return s.String()
}

func (m Model) renderQueueHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: Review",
		"/: Search",
		"r: Refresh",
		"p: Process transactions",
		"s: Status",
		"L: Logout",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleQueueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchInput.Focused() {
		switch msg.String() {
		case "esc", "enter":
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.queueTable = newQueueTable(m.visibleItems(), m.width, m.height)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searchInput.Focus()
		return m, nil
	case "r":
		m.loading = true
		m.queueErr = ""
		return m, refreshQueueCmd(m.queue)
	case "p":
		m.execErr = ""
		return m, startExecutionCmd(m.orchestrator, m.optionsStore)
	case "s":
		m.showStatus = true
		return m, nil
	case "L":
		return m, logoutCmd(m.client)
	case "enter":
		visible := m.visibleItems()
		row := m.queueTable.Cursor()
		if row < 0 || row >= len(visible) {
			return m, nil
		}
		m.actionErr = ""
		m.cursor = 0
		return m, openDetailCmd(m.session, visible[row].DifRowIndex)
	}

	var cmd tea.Cmd
	m.queueTable, cmd = m.queueTable.Update(msg)
	return m, cmd
}

func (m Model) handleQueueLoaded(msg queueLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		if m.sessionLost(msg.err) {
			return m.navigate(ViewLogin)
		}
		m.queueErr = msg.err.Error()
		return m, nil
	}

	m.items = msg.items
	m.queueErr = ""
	m.queueTable = newQueueTable(m.visibleItems(), m.width, m.height)
	return m, nil
}

func (m Model) handleExecUpdate(msg execUpdateMsg) (tea.Model, tea.Cmd) {
	m.execState = msg.state

	rearm := waitForExecUpdate(m.execUpdates)

	// The session expired underneath the run: the orchestrator already
	// reset itself, so drop the overlay and send the operator to login.
	if !m.client.Authenticated() {
		m.showStatus = false
		if m.viewMode != ViewLogin {
			next, cmd := m.navigate(ViewLogin)
			return next, tea.Batch(rearm, cmd)
		}
		return m, rearm
	}

	cmds := []tea.Cmd{rearm}

	// A completed run changed the sheet; reload the queue when the
	// operator is looking at it.
	if msg.state.Phase == execution.PhaseCompleted && m.viewMode == ViewQueue {
		m.loading = true
		cmds = append(cmds, refreshQueueCmd(m.queue))
	}

	return m, tea.Batch(cmds...)
}
