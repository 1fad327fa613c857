// ABOUTME: Async bubbletea commands and their completion messages
// ABOUTME: Every backend call leaves the Update loop through one of these
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/models"
	"github.com/olivinha/console/options"
	"github.com/olivinha/console/review"
)

type sessionVerifiedMsg struct {
	ok bool
}

type loginResultMsg struct {
	err error
}

type loggedOutMsg struct{}

type queueLoadedMsg struct {
	items []models.ConciliationSummary
	err   error
}

type detailLoadedMsg struct {
	err error
}

type actionKind int

const (
	actionAccept actionKind = iota
	actionReject
)

type actionDoneMsg struct {
	kind actionKind
	err  error
}

type execStartedMsg struct {
	err error
}

type execUpdateMsg struct {
	state execution.State
}

func verifySessionCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		return sessionVerifiedMsg{ok: client.VerifySession(context.Background())}
	}
}

func loginCmd(client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: client.Login(context.Background(), username, password)}
	}
}

func logoutCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		client.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func refreshQueueCmd(queue *review.Queue) tea.Cmd {
	return func() tea.Msg {
		items, err := queue.Refresh(context.Background())
		return queueLoadedMsg{items: items, err: err}
	}
}

func openDetailCmd(session *review.Session, difRowIndex int) tea.Cmd {
	return func() tea.Msg {
		return detailLoadedMsg{err: session.Open(context.Background(), difRowIndex)}
	}
}

func acceptCmd(session *review.Session) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionAccept, err: session.Accept(context.Background())}
	}
}

func rejectCmd(session *review.Session) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionReject, err: session.Reject(context.Background(), true)}
	}
}

func startExecutionCmd(orch *execution.Orchestrator, store *options.Store) tea.Cmd {
	return func() tea.Msg {
		return execStartedMsg{err: orch.Start(context.Background(), store.Load())}
	}
}

// waitForExecUpdate blocks on the orchestrator update channel and feeds
// the next snapshot into the program. Re-issued after every message.
func waitForExecUpdate(updates <-chan execution.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return nil
		}
		return execUpdateMsg{state: state}
	}
}
