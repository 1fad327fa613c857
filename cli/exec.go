// ABOUTME: Execution CLI commands: start and follow a run, one-shot status, history
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/models"
	"github.com/olivinha/console/options"
)

// ExecStartCommand submits a processing run and follows it to a terminal
// status, printing each polling snapshot.
func ExecStartCommand(client *api.Client, store *options.Store, args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	startDate := fs.String("start-date", "", "Override the start date (YYYY-MM-DD) for this run only")
	_ = fs.Parse(args)

	opts := store.Load()
	if *startDate != "" {
		opts.StartDate = *startDate
	}

	updates := make(chan execution.State, 16)
	orch := execution.New(client, store, clockwork.NewRealClock(), func(state execution.State) {
		updates <- state
	})

	if err := orch.Start(context.Background(), opts); err != nil {
		return err
	}

	for state := range updates {
		switch state.Phase {
		case execution.PhasePolling:
			fmt.Printf("  %-12s %3d%%  %s\n",
				state.Status.Status, state.Status.Progress, models.StepLabel(state.Status.Step))
		case execution.PhaseInterrupted:
			fmt.Println("✗ Lost contact with the processing API; the job may still be running.")
			if state.Err != nil {
				return state.Err
			}
			return fmt.Errorf("polling interrupted")
		case execution.PhaseCompleted, execution.PhaseFailed:
			printOutcome(state)
			if state.Phase == execution.PhaseFailed {
				return fmt.Errorf("execution %s failed", state.ExecutionID)
			}
			return nil
		case execution.PhaseIdle:
			// Session ended underneath the run.
			return api.ErrSessionExpired
		}
	}
	return nil
}

func printOutcome(state execution.State) {
	if state.Phase == execution.PhaseCompleted {
		fmt.Printf("✓ Execution %s completed\n", state.ExecutionID)
	} else {
		fmt.Printf("✗ Execution %s failed\n", state.ExecutionID)
	}

	if state.Metrics != nil {
		fmt.Printf("  transactions fetched: %d\n", state.Metrics.TransactionsFetched)
		fmt.Printf("  installments created: %d\n", state.Metrics.InstallmentsCreated)
		fmt.Printf("  duplicates removed:   %d\n", state.Metrics.DuplicatesRemoved)
	}

	printHistory(state.History)
}

func printHistory(entries []models.ExecutionHistoryEntry) {
	if len(entries) == 0 {
		return
	}

	limit := len(entries)
	if limit > 5 {
		limit = 5
	}

	fmt.Println("\nRecent executions:")
	for _, entry := range entries[:limit] {
		fmt.Printf("  %s  %-24s %s\n", entry.CreatedAt, models.StepLabel(entry.Step), entry.Status)
	}
}

// ExecStatusCommand prints one status snapshot for an execution id.
func ExecStatusCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("execution id is required")
	}

	snapshot, err := client.GetExecutionStatus(context.Background(), fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("%s  %3d%%  %s\n", snapshot.Status, snapshot.Progress, models.StepLabel(snapshot.Step))
	return nil
}

// ExecHistoryCommand lists past executions, most recent first.
func ExecHistoryCommand(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	all := fs.Bool("all", false, "Show every entry instead of the last 5")
	_ = fs.Parse(args)

	history, err := client.GetExecutionHistory(context.Background())
	if err != nil {
		return err
	}
	if len(history.Items) == 0 {
		fmt.Println("No executions yet.")
		return nil
	}

	entries := history.Items
	if !*all && len(entries) > 5 {
		entries = entries[:5]
	}
	for _, entry := range entries {
		fmt.Printf("%s  %-24s %s\n", entry.CreatedAt, models.StepLabel(entry.Step), entry.Status)
	}
	return nil
}
