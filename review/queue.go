// ABOUTME: In-memory queue of pending conciliations with client-side filtering
package review

import (
	"context"
	"strconv"
	"strings"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/models"
)

// Queue holds the pending conciliations last fetched from the backend.
// Refresh replaces the list wholesale; an item missing from a response is
// gone, there is no merging.
type Queue struct {
	client *api.Client
	items  []models.ConciliationSummary
}

// NewQueue builds an empty queue over the API client.
func NewQueue(client *api.Client) *Queue {
	return &Queue{client: client}
}

// Refresh reloads the queue from the backend and returns the new snapshot.
func (q *Queue) Refresh(ctx context.Context) ([]models.ConciliationSummary, error) {
	items, err := q.client.ListConciliations(ctx)
	if err != nil {
		return nil, err
	}
	q.items = items
	return q.Items(), nil
}

// Items returns a copy of the current snapshot in backend order.
func (q *Queue) Items() []models.ConciliationSummary {
	snapshot := make([]models.ConciliationSummary, len(q.items))
	copy(snapshot, q.items)
	return snapshot
}

// Len returns the number of pending conciliations.
func (q *Queue) Len() int {
	return len(q.items)
}

// Filter returns the items whose owner, bank, or stringified amount
// contains the query, case-insensitively. An empty query returns all
// items. Ordering is preserved and the stored list is untouched.
func (q *Queue) Filter(query string) []models.ConciliationSummary {
	search := strings.ToLower(strings.TrimSpace(query))
	if search == "" {
		return q.Items()
	}

	var matched []models.ConciliationSummary
	for _, item := range q.items {
		if matchesQuery(item, search) {
			matched = append(matched, item)
		}
	}
	return matched
}

func matchesQuery(item models.ConciliationSummary, search string) bool {
	if strings.Contains(strings.ToLower(item.Dono), search) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Banco), search) {
		return true
	}
	amount := strconv.FormatFloat(item.Valor, 'f', -1, 64)
	return strings.Contains(amount, search)
}
