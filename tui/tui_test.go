// ABOUTME: Tests for view navigation, key handling, and rendering
// ABOUTME: Drives the model directly; backend calls hit a local test server
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/models"
	"github.com/olivinha/console/options"
	"github.com/olivinha/console/review"
)

func testBackend(t *testing.T) *httptest.Server {
	t.Helper()

	queue := []models.ConciliationSummary{
		{DifRowIndex: 5, Descricao: "Mercado Central", Dono: "Ana", Banco: "Nubank", Data: "2026-05-02", Valor: 123.45, CandidateCount: 2},
		{DifRowIndex: 8, Descricao: "Aluguel", Dono: "Bruno", Banco: "Itau", Data: "2026-05-01", Valor: 2500, CandidateCount: 1},
	}
	detail := models.ConciliationDetail{
		Reference: models.Transaction{RowIndex: 5, Descricao: "Mercado Central", Valor: 123.45, Data: "2026-05-02"},
		Candidates: []models.Transaction{
			{RowIndex: 20, Descricao: "MERCADO CENTRAL LTDA", Valor: 123.45, Data: "2026-05-02"},
			{RowIndex: 21, Descricao: "MERCADO C", Valor: 123.45, Data: "2026-05-03"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/conciliations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(queue)
	})
	mux.HandleFunc("/conciliations/5", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(detail)
	})
	mux.HandleFunc("/conciliations/5/accept", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/conciliations/5/reject", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testModel(t *testing.T, serverURL string, authenticated bool) Model {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	transport := api.NewBearerTransportAt(filepath.Join(t.TempDir(), "session-token"))
	require.NoError(t, transport.StoreLogin(api.LoginResponse{Authenticated: true, Token: signed}))

	client := api.NewClient(serverURL, serverURL, transport)
	if authenticated {
		require.True(t, client.VerifySession(context.Background()))
	}

	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	store := options.NewStoreAt(filepath.Join(t.TempDir(), "execution_options_v1.json"), clock)
	queue := review.NewQueue(client)
	session := review.NewSession(client)

	updates := make(chan execution.State, 16)
	orch := execution.New(client, store, clock, func(s execution.State) { updates <- s })

	m := NewModel(client, queue, session, orch, store, updates)
	m.verifying = false
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestNavigationDeniedWhileLoggedOut(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, false)

	updated, _ := m.navigate(ViewQueue)
	assert.Equal(t, ViewLogin, updated.viewMode)

	updated, _ = m.navigate(ViewDetails)
	assert.Equal(t, ViewLogin, updated.viewMode)
}

func TestNavigationAllowedAfterVerify(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)

	updated, cmd := m.navigate(ViewQueue)
	assert.Equal(t, ViewQueue, updated.viewMode)
	assert.NotNil(t, cmd, "entering the queue triggers a refresh")
	assert.True(t, updated.loading)
}

func TestLoginRequiresBothFields(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, false)
	m.userInput.SetValue("admin")
	m.passInput.SetValue("")

	updated, cmd := m.handleLoginKeys(keyMsg("enter"))
	model := updated.(Model)

	assert.Nil(t, cmd, "an incomplete form must not hit the backend")
	assert.NotEmpty(t, model.loginErr)
}

func TestLoginFailureShowsFriendlyMessage(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, false)

	updated, _ := m.handleLoginResult(loginResultMsg{err: api.ErrInvalidCredentials})
	model := updated.(Model)

	assert.Equal(t, "Invalid credentials.", model.loginErr)
	assert.Equal(t, ViewLogin, model.viewMode)
}

func TestQueueViewShowsCountAndRows(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.viewMode = ViewQueue

	items, err := m.queue.Refresh(context.Background())
	require.NoError(t, err)
	updated, _ := m.handleQueueLoaded(queueLoadedMsg{items: items})
	m = updated.(Model)

	output := m.renderQueueView()
	assert.Contains(t, output, "2 pending")
	assert.Contains(t, output, "Mercado Central")
	assert.Contains(t, output, "Aluguel")
}

func TestQueueSearchNarrowsTable(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.viewMode = ViewQueue

	items, err := m.queue.Refresh(context.Background())
	require.NoError(t, err)
	updated, _ := m.handleQueueLoaded(queueLoadedMsg{items: items})
	m = updated.(Model)

	m.searchInput.SetValue("nubank")
	m.queueTable = newQueueTable(m.visibleItems(), m.width, m.height)

	output := m.renderQueueView()
	assert.Contains(t, output, "1 pending")
	assert.NotContains(t, output, "Aluguel")
}

func TestQueueSessionLossFallsBackToLogin(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.viewMode = ViewQueue

	updated, _ := m.handleQueueLoaded(queueLoadedMsg{err: api.ErrSessionExpired})
	model := updated.(Model)

	assert.Equal(t, ViewLogin, model.viewMode)
}

func TestDetailsToggleAndAcceptGating(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	require.NoError(t, m.session.Open(context.Background(), 5))
	m.viewMode = ViewDetails

	// Accepting with nothing selected stays local and shows the error.
	updated, cmd := m.handleDetailsKeys(keyMsg("a"))
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, review.ErrNoSelection.Error(), m.actionErr)

	updated, _ = m.handleDetailsKeys(keyMsg(" "))
	m = updated.(Model)
	assert.True(t, m.session.IsSelected(20))

	updated, cmd = m.handleDetailsKeys(keyMsg("a"))
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.actionErr)
}

func TestDetailsViewMarksSelection(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	require.NoError(t, m.session.Open(context.Background(), 5))
	m.viewMode = ViewDetails
	m.session.Toggle(20)

	output := m.renderDetailsView()
	assert.Contains(t, output, "[x]")
	assert.Contains(t, output, "Candidates (2)")
}

func TestRejectGoesThroughConfirmation(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	require.NoError(t, m.session.Open(context.Background(), 5))
	m.viewMode = ViewDetails

	updated, _ := m.handleDetailsKeys(keyMsg("x"))
	m = updated.(Model)
	assert.Equal(t, ViewConfirmReject, m.viewMode)

	// Backing out returns to the details without touching the backend.
	updated, cmd := m.handleConfirmRejectKeys(keyMsg("n"))
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, ViewDetails, m.viewMode)

	m.viewMode = ViewConfirmReject
	_, cmd = m.handleConfirmRejectKeys(keyMsg("y"))
	assert.NotNil(t, cmd, "confirming submits the rejection")
}

func TestStatusOverlayInterrupted(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.showStatus = true
	m.execState = execution.State{
		Phase:       execution.PhaseInterrupted,
		ExecutionID: "exec-1",
		Status:      models.ExecutionStatus{Status: "RUNNING", Progress: 40, Step: models.StepFetchingTransactions},
		Err:         errors.New("connection refused"),
	}

	output := m.renderStatusOverlay()
	assert.Contains(t, output, "INTERRUPTED")
	assert.Contains(t, output, "Lost contact")
	assert.Contains(t, output, "may still be running")
}

func TestStatusOverlayCompletedShowsMetrics(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.showStatus = true
	m.execState = execution.State{
		Phase:   execution.PhaseCompleted,
		Status:  models.ExecutionStatus{Status: models.ExecutionCompleted, Progress: 100, Step: models.StepDone},
		Metrics: &models.ExecutionMetrics{TransactionsFetched: 120, InstallmentsCreated: 30, DuplicatesRemoved: 4},
		History: []models.ExecutionHistoryEntry{
			{CreatedAt: "2026-06-01T10:00:00Z", Step: models.StepDone, Status: models.ExecutionCompleted},
		},
	}

	output := m.renderStatusOverlay()
	assert.Contains(t, output, "COMPLETED")
	assert.Contains(t, output, "120 transactions")
	assert.Contains(t, output, "Recent Executions")
}

func TestStatusOverlayCloseKeepsPolling(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.showStatus = true

	updated, _ := m.handleStatusKeys(keyMsg("esc"))
	model := updated.(Model)
	assert.False(t, model.showStatus)
}

func TestExecUpdateRefreshesQueueOnCompletion(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.viewMode = ViewQueue

	updated, cmd := m.handleExecUpdate(execUpdateMsg{state: execution.State{Phase: execution.PhaseCompleted}})
	model := updated.(Model)

	assert.NotNil(t, cmd)
	assert.True(t, model.loading, "a finished run reloads the visible queue")
	assert.Equal(t, execution.PhaseCompleted, model.execState.Phase)
}

func TestExecUpdateAfterSessionLossClosesOverlay(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, false)
	m.viewMode = ViewQueue
	m.showStatus = true

	updated, cmd := m.handleExecUpdate(execUpdateMsg{state: execution.State{Phase: execution.PhaseIdle}})
	model := updated.(Model)

	assert.False(t, model.showStatus, "the status overlay must not outlive the session")
	assert.Equal(t, ViewLogin, model.viewMode)
	assert.NotNil(t, cmd)
}

func TestExecUpdateWhileElsewhereOnlyRearms(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)
	m.viewMode = ViewDetails

	updated, cmd := m.handleExecUpdate(execUpdateMsg{state: execution.State{Phase: execution.PhasePolling}})
	model := updated.(Model)

	assert.NotNil(t, cmd, "the update listener is always re-armed")
	assert.False(t, model.loading)
}

func TestQueueHelpListsProcessKey(t *testing.T) {
	server := testBackend(t)
	m := testModel(t, server.URL, true)

	help := m.renderQueueHelp()
	for _, binding := range []string{"Process", "Search", "Refresh", "Logout"} {
		assert.True(t, strings.Contains(help, binding), "help should mention %s", binding)
	}
}
