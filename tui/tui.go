// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Routes between login, queue, and details views; owns navigation gating
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/models"
	"github.com/olivinha/console/options"
	"github.com/olivinha/console/review"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewLogin ViewMode = iota
	ViewQueue
	ViewDetails
	ViewConfirmReject
)

// Model is the main bubbletea model
type Model struct {
	client       *api.Client
	queue        *review.Queue
	session      *review.Session
	orchestrator *execution.Orchestrator
	optionsStore *options.Store
	execUpdates  <-chan execution.State

	viewMode ViewMode

	// Login view state
	userInput  textinput.Model
	passInput  textinput.Model
	focusIndex int
	loginErr   string
	verifying  bool

	// Queue view state
	items       []models.ConciliationSummary
	searchInput textinput.Model
	queueTable  table.Model
	queueErr    string
	loading     bool

	// Details view state
	cursor    int
	actionErr string

	// Execution status overlay state
	showStatus  bool
	execState   execution.State
	execErr     string
	progressBar progress.Model

	// UI state
	width  int
	height int
}

// NewModel wires the TUI over the app components. execUpdates delivers
// orchestrator snapshots into the bubbletea loop.
func NewModel(client *api.Client, queue *review.Queue, session *review.Session, orch *execution.Orchestrator, store *options.Store, execUpdates <-chan execution.State) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.Focus()
	user.CharLimit = 64

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.CharLimit = 64

	search := textinput.New()
	search.Placeholder = "owner, bank, or amount"
	search.CharLimit = 64

	return Model{
		client:       client,
		queue:        queue,
		session:      session,
		orchestrator: orch,
		optionsStore: store,
		execUpdates:  execUpdates,
		viewMode:     ViewLogin,
		userInput:    user,
		passInput:    pass,
		searchInput:  search,
		queueTable:   newQueueTable(nil, 80, 24),
		progressBar:  progress.New(progress.WithDefaultGradient()),
		verifying:    true,
		width:        80,
		height:       24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		verifySessionCmd(m.client),
		waitForExecUpdate(m.execUpdates),
		textinput.Blink,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.queueTable = newQueueTable(m.visibleItems(), m.width, m.height)
		return m, nil

	case sessionVerifiedMsg:
		m.verifying = false
		if msg.ok {
			return m.navigate(ViewQueue)
		}
		return m.navigate(ViewLogin)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case queueLoadedMsg:
		return m.handleQueueLoaded(msg)

	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case execStartedMsg:
		return m.handleExecStarted(msg)

	case execUpdateMsg:
		return m.handleExecUpdate(msg)

	case loggedOutMsg:
		return m.navigate(ViewLogin)
	}

	return m, nil
}

func (m Model) View() string {
	if m.showStatus {
		return m.renderStatusOverlay()
	}

	switch m.viewMode {
	case ViewLogin:
		return m.renderLoginView()
	case ViewQueue:
		return m.renderQueueView()
	case ViewDetails:
		return m.renderDetailsView()
	case ViewConfirmReject:
		return m.renderConfirmRejectView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showStatus {
		return m.handleStatusKeys(msg)
	}

	switch m.viewMode {
	case ViewLogin:
		return m.handleLoginKeys(msg)
	case ViewQueue:
		return m.handleQueueKeys(msg)
	case ViewDetails:
		return m.handleDetailsKeys(msg)
	case ViewConfirmReject:
		return m.handleConfirmRejectKeys(msg)
	}

	return m, nil
}

// navigate switches views. Any non-login view is denied while
// unauthenticated and falls back to login.
func (m Model) navigate(view ViewMode) (Model, tea.Cmd) {
	if view != ViewLogin && !m.client.Authenticated() {
		view = ViewLogin
	}

	m.viewMode = view

	switch view {
	case ViewLogin:
		m.showStatus = false
		m.userInput.Focus()
		m.passInput.Blur()
		m.focusIndex = 0
		return m, textinput.Blink
	case ViewQueue:
		m.loading = true
		m.queueErr = ""
		return m, refreshQueueCmd(m.queue)
	default:
		return m, nil
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)
