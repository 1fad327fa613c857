// ABOUTME: Login view: username/password form against the auth endpoint
package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivinha/console/api"
)

var loginBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("170")).
	Padding(1, 3).
	Width(44)

func (m Model) renderLoginView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Olivia Console"))
	s.WriteString("\n\n")

	if m.verifying {
		s.WriteString(mutedStyle.Render("Checking session..."))
		return s.String()
	}

	s.WriteString("Username\n")
	s.WriteString(m.userInput.View())
	s.WriteString("\n\nPassword\n")
	s.WriteString(m.passInput.View())
	s.WriteString("\n")

	if m.loginErr != "" {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(m.loginErr))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("Tab: Switch field • Enter: Log in • Ctrl+C: Quit"))

	box := loginBoxStyle.Render(s.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.focusIndex = (m.focusIndex + 1) % 2
		if m.focusIndex == 0 {
			m.userInput.Focus()
			m.passInput.Blur()
		} else {
			m.userInput.Blur()
			m.passInput.Focus()
		}
		return m, nil

	case "enter":
		username := strings.TrimSpace(m.userInput.Value())
		password := m.passInput.Value()
		if username == "" || password == "" {
			m.loginErr = "Enter a username and password."
			return m, nil
		}
		m.loginErr = ""
		return m, loginCmd(m.client, username, password)
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.userInput, cmd = m.userInput.Update(msg)
	} else {
		m.passInput, cmd = m.passInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrInvalidCredentials) {
			m.loginErr = "Invalid credentials."
		} else {
			m.loginErr = msg.err.Error()
		}
		return m, nil
	}

	m.loginErr = ""
	m.passInput.SetValue("")
	return m.navigate(ViewQueue)
}
