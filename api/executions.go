// ABOUTME: Execution endpoints: submit a processing run, poll it, read results
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/olivinha/console/models"
)

// Fixed submission settings for this deployment; only the operator
// options vary per run.
var (
	defaultSheetConfig    = models.SheetConfig{Enabled: true, TabName: "Homologacao"}
	defaultArtifactConfig = models.ArtifactConfig{CSVEnabled: false}
)

// StartExecution submits a processing run and returns the execution id.
// Anything but a 202 fails the attempt; a 202 without an id is a protocol
// violation and no state is kept.
func (c *Client) StartExecution(ctx context.Context, options models.ExecutionOptions) (string, error) {
	payload := models.StartExecutionRequest{
		Options:   options,
		Sheet:     defaultSheetConfig,
		Artifacts: defaultArtifactConfig,
	}

	status, body, err := c.postJSON(ctx, c.execURL+"/transactions", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusAccepted {
		return "", apiError(status, body)
	}

	var parsed models.StartExecutionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if parsed.ExecutionID == "" {
		return "", fmt.Errorf("%w: missing executionId", ErrProtocol)
	}
	return parsed.ExecutionID, nil
}

// GetExecutionStatus reads one status snapshot for a running execution.
func (c *Client) GetExecutionStatus(ctx context.Context, executionID string) (*models.ExecutionStatus, error) {
	var snapshot models.ExecutionStatus
	url := fmt.Sprintf("%s/transactions/%s/status", c.execURL, executionID)
	if err := c.getJSON(ctx, url, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetExecutionDetail reads the metrics of a finished execution.
func (c *Client) GetExecutionDetail(ctx context.Context, executionID string) (*models.ExecutionDetail, error) {
	var detail models.ExecutionDetail
	url := fmt.Sprintf("%s/transactions/%s", c.execURL, executionID)
	if err := c.getJSON(ctx, url, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetExecutionHistory lists past executions, most recent first.
func (c *Client) GetExecutionHistory(ctx context.Context) (*models.ExecutionHistory, error) {
	var history models.ExecutionHistory
	if err := c.getJSON(ctx, c.execURL+"/transactions", &history); err != nil {
		return nil, err
	}
	return &history, nil
}
