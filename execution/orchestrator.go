// ABOUTME: Drives a processing run: submit, poll on a fixed cadence, finish
// ABOUTME: One polling loop per client instance, cancelled by terminal
// status, session expiry, or logout
package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/models"
	"github.com/olivinha/console/options"
)

// pollInterval is the fixed status cadence. Ticks are strictly
// sequential: the next wait only starts after the previous tick's
// handling finished.
const pollInterval = 2 * time.Second

// Phase is the orchestrator's position in the run lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePolling
	PhaseCompleted
	PhaseFailed
	// PhaseInterrupted means a poll tick failed and the loop stopped. The
	// job may well still be running server-side; the client just lost
	// contact and will not retry.
	PhaseInterrupted
)

// State is the snapshot handed to the UI. Every update replaces the
// previous snapshot entirely; nothing accumulates across ticks.
type State struct {
	Phase       Phase
	ExecutionID string
	Status      models.ExecutionStatus
	Metrics     *models.ExecutionMetrics
	History     []models.ExecutionHistoryEntry
	Err         error
}

// Orchestrator owns the one live execution of this client instance.
type Orchestrator struct {
	client   *api.Client
	validate func(models.ExecutionOptions) error
	clock    clockwork.Clock
	onUpdate func(State)

	mu         sync.Mutex
	state      State
	polling    bool
	submitting bool
	stop       chan struct{}
}

// New builds an orchestrator. onUpdate receives every state change and
// must be safe to call from the polling goroutine; the TUI adapts it to a
// program message.
func New(client *api.Client, store *options.Store, clock clockwork.Clock, onUpdate func(State)) *Orchestrator {
	if onUpdate == nil {
		onUpdate = func(State) {}
	}
	o := &Orchestrator{
		client:   client,
		validate: store.ValidateForSubmission,
		clock:    clock,
		onUpdate: onUpdate,
		state:    State{Phase: PhaseIdle},
	}
	client.OnSessionExpired(o.CancelOnSessionEnd)
	return o
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Active reports whether a polling loop is running.
func (o *Orchestrator) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.polling
}

// Start validates the options and submits a run. If a loop is already
// polling, or another Start holds an in-flight submission, this is a
// no-op that re-presents the current status instead of submitting a
// second concurrent job. A rejected submission is terminal for the
// attempt; nothing is retried and no partial state is kept.
func (o *Orchestrator) Start(ctx context.Context, opts models.ExecutionOptions) error {
	o.mu.Lock()
	if o.polling || o.submitting {
		snapshot := o.state
		o.mu.Unlock()
		o.onUpdate(snapshot)
		return nil
	}
	// Claim the submission slot before releasing the lock, so a racing
	// Start cannot POST a second job while this one is in flight.
	o.submitting = true
	o.mu.Unlock()

	if err := o.validate(opts); err != nil {
		o.clearSubmitting()
		return err
	}

	executionID, err := o.client.StartExecution(ctx, opts)
	if err != nil {
		o.clearSubmitting()
		return err
	}

	stop := make(chan struct{})

	o.mu.Lock()
	o.submitting = false
	o.polling = true
	o.stop = stop
	o.state = State{
		Phase:       PhasePolling,
		ExecutionID: executionID,
		Status:      models.ExecutionStatus{ExecutionID: executionID, Status: models.StepQueued, Step: models.StepQueued},
	}
	snapshot := o.state
	o.mu.Unlock()

	o.onUpdate(snapshot)
	go o.pollLoop(executionID, stop)
	return nil
}

func (o *Orchestrator) clearSubmitting() {
	o.mu.Lock()
	o.submitting = false
	o.mu.Unlock()
}

// CancelOnSessionEnd stops the polling loop and forgets the in-memory
// execution. The job itself is not cancelled server-side. Registered as
// the API client's session-expiry handler; also invoked on logout.
func (o *Orchestrator) CancelOnSessionEnd() {
	o.mu.Lock()
	if o.polling {
		o.polling = false
		close(o.stop)
	}
	o.state = State{Phase: PhaseIdle}
	snapshot := o.state
	o.mu.Unlock()

	o.onUpdate(snapshot)
}

func (o *Orchestrator) pollLoop(executionID string, stop chan struct{}) {
	for {
		if !o.tick(executionID, stop) {
			return
		}
		select {
		case <-stop:
			return
		case <-o.clock.After(pollInterval):
		}
	}
}

// tick performs one status read and reports whether polling continues.
func (o *Orchestrator) tick(executionID string, stop chan struct{}) bool {
	snapshot, err := o.client.GetExecutionStatus(context.Background(), executionID)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			// The expiry handler already tore everything down.
			return false
		}
		o.interrupt(stop, err)
		return false
	}

	select {
	case <-stop:
		return false
	default:
	}

	o.mu.Lock()
	o.state.Status = *snapshot
	current := o.state
	o.mu.Unlock()
	o.onUpdate(current)

	if !snapshot.Terminal() {
		return true
	}

	o.finish(stop, *snapshot)
	return false
}

// interrupt records a lost-contact stop: the timer is cleared but the
// last known status stays visible. A loop that lost its claim (logout or
// expiry already reset the state) must not resurrect a stale execution.
func (o *Orchestrator) interrupt(stop chan struct{}, err error) {
	o.mu.Lock()
	if o.stop != stop || !o.polling {
		o.mu.Unlock()
		return
	}
	o.polling = false
	close(o.stop)
	o.state.Phase = PhaseInterrupted
	o.state.Err = err
	snapshot := o.state
	o.mu.Unlock()

	o.onUpdate(snapshot)
}

// finish handles a terminal status: clear the timer, then fetch metrics
// and history exactly once each. Both fetches are best-effort; their
// failure does not demote a completed run.
func (o *Orchestrator) finish(stop chan struct{}, last models.ExecutionStatus) {
	o.mu.Lock()
	if o.stop != stop || !o.polling {
		o.mu.Unlock()
		return
	}
	o.polling = false
	close(o.stop)
	phase := PhaseFailed
	if last.Status == models.ExecutionCompleted {
		phase = PhaseCompleted
	}
	o.state.Phase = phase
	executionID := o.state.ExecutionID
	o.mu.Unlock()

	var metrics *models.ExecutionMetrics
	if detail, err := o.client.GetExecutionDetail(context.Background(), executionID); err == nil {
		metrics = &detail.Metrics
	}

	var history []models.ExecutionHistoryEntry
	if listing, err := o.client.GetExecutionHistory(context.Background()); err == nil {
		history = listing.Items
	}

	o.mu.Lock()
	if o.state.Phase != phase {
		// A logout reset the state while the fetches were in flight.
		o.mu.Unlock()
		return
	}
	o.state.Metrics = metrics
	o.state.History = history
	snapshot := o.state
	o.mu.Unlock()

	o.onUpdate(snapshot)
}
