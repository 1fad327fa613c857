// ABOUTME: The currently opened conciliation and the operator's selection
// ABOUTME: Accept/reject submit decisions; reject is gated on confirmation
package review

import (
	"context"
	"errors"
	"sort"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/models"
)

var (
	// ErrNoSelection blocks accept before any network call.
	ErrNoSelection = errors.New("select at least one candidate")

	// ErrNotConfirmed blocks reject until the operator confirmed it.
	// Rejecting moves the reference to the rejected bucket server-side.
	ErrNotConfirmed = errors.New("reject requires confirmation")

	// ErrNoConciliationOpen means accept/reject was called with no detail
	// loaded.
	ErrNoConciliationOpen = errors.New("no conciliation is open")
)

// Session holds the opened conciliation detail and the in-progress
// candidate selection. Opening a conciliation replaces the detail
// wholesale and unconditionally clears the selection.
type Session struct {
	client   *api.Client
	detail   *models.ConciliationDetail
	selected map[int]struct{}
}

// NewSession builds an empty review session over the API client.
func NewSession(client *api.Client) *Session {
	return &Session{
		client:   client,
		selected: make(map[int]struct{}),
	}
}

// Open fetches one conciliation by reference row index. The previous
// detail and selection are dropped even when reopening the same row.
func (s *Session) Open(ctx context.Context, difRowIndex int) error {
	detail, err := s.client.GetConciliation(ctx, difRowIndex)
	if err != nil {
		return err
	}

	s.detail = detail
	s.selected = make(map[int]struct{})
	return nil
}

// Detail returns the open conciliation, or nil.
func (s *Session) Detail() *models.ConciliationDetail {
	return s.detail
}

// Toggle flips a candidate row in or out of the selection.
func (s *Session) Toggle(rowIndex int) {
	if _, ok := s.selected[rowIndex]; ok {
		delete(s.selected, rowIndex)
	} else {
		s.selected[rowIndex] = struct{}{}
	}
}

// IsSelected reports membership of a candidate row in the selection.
func (s *Session) IsSelected(rowIndex int) bool {
	_, ok := s.selected[rowIndex]
	return ok
}

// Selected returns the selected row indices in ascending order.
func (s *Session) Selected() []int {
	indices := make([]int, 0, len(s.selected))
	for rowIndex := range s.selected {
		indices = append(indices, rowIndex)
	}
	sort.Ints(indices)
	return indices
}

// SelectionCount returns how many candidates are selected.
func (s *Session) SelectionCount() int {
	return len(s.selected)
}

// Accept submits the selected candidates for the open reference row. An
// empty selection fails locally without touching the network. On success
// the selection is cleared; the caller leaves the detail view and
// refreshes the queue.
func (s *Session) Accept(ctx context.Context) error {
	if s.detail == nil {
		return ErrNoConciliationOpen
	}
	if len(s.selected) == 0 {
		return ErrNoSelection
	}

	if err := s.client.AcceptConciliation(ctx, s.detail.Reference.RowIndex, s.Selected()); err != nil {
		return err
	}

	s.selected = make(map[int]struct{})
	return nil
}

// Reject moves the open reference row to the rejected bucket. The caller
// must pass confirmed=true after an explicit operator confirmation.
func (s *Session) Reject(ctx context.Context, confirmed bool) error {
	if s.detail == nil {
		return ErrNoConciliationOpen
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := s.client.RejectConciliation(ctx, s.detail.Reference.RowIndex); err != nil {
		return err
	}

	s.selected = make(map[int]struct{})
	return nil
}
