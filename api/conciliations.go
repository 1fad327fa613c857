// ABOUTME: Conciliation endpoints: queue listing, details, accept, reject
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/olivinha/console/models"
)

// ListConciliations fetches the full pending queue. The result is a
// wholesale snapshot; callers replace, never merge.
func (c *Client) ListConciliations(ctx context.Context) ([]models.ConciliationSummary, error) {
	var items []models.ConciliationSummary
	if err := c.getJSON(ctx, c.apiURL+"/conciliations", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetConciliation fetches one reference row and its candidates.
func (c *Client) GetConciliation(ctx context.Context, difRowIndex int) (*models.ConciliationDetail, error) {
	var detail models.ConciliationDetail
	url := fmt.Sprintf("%s/conciliations/%d", c.apiURL, difRowIndex)
	if err := c.getJSON(ctx, url, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// AcceptConciliation matches the reference row against the selected
// candidate rows. Success is the HTTP status; the body is only read for
// an error message.
func (c *Client) AcceptConciliation(ctx context.Context, difRowIndex int, esRowIndices []int) error {
	url := fmt.Sprintf("%s/conciliations/%d/accept", c.apiURL, difRowIndex)
	status, body, err := c.postJSON(ctx, url, models.AcceptRequest{EsRowIndices: esRowIndices})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	return nil
}

// RejectConciliation moves the reference row to the rejected bucket
// server-side. No body is sent.
func (c *Client) RejectConciliation(ctx context.Context, difRowIndex int) error {
	url := fmt.Sprintf("%s/conciliations/%d/reject", c.apiURL, difRowIndex)
	status, body, err := c.postJSON(ctx, url, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}
	return nil
}
