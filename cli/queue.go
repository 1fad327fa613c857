// ABOUTME: Queue listing CLI command
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/olivinha/console/review"
)

// QueueCommand prints the pending conciliations, optionally filtered.
func QueueCommand(queue *review.Queue, args []string) error {
	fs := flag.NewFlagSet("queue", flag.ExitOnError)
	query := fs.String("query", "", "Filter by owner, bank, or amount")
	_ = fs.Parse(args)

	if _, err := queue.Refresh(context.Background()); err != nil {
		return err
	}

	items := queue.Filter(*query)
	if len(items) == 0 {
		fmt.Println("No pending conciliations.")
		return nil
	}

	fmt.Printf("%d pending\n\n", len(items))
	fmt.Printf("%-6s %-32s %-12s %-14s %-12s %10s  %s\n",
		"ROW", "DESCRIPTION", "OWNER", "BANK", "DATE", "AMOUNT", "CAND.")
	for _, item := range items {
		fmt.Printf("%-6d %-32s %-12s %-14s %-12s %10.2f  %d\n",
			item.DifRowIndex,
			truncate(item.Descricao, 32),
			truncate(item.Dono, 12),
			truncate(item.Banco, 14),
			item.Data,
			item.Valor,
			item.CandidateCount,
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
