// ABOUTME: Wire types for the Olivia conciliation and execution APIs
// ABOUTME: Field names mirror the backend's JSON contract exactly
package models

// Transaction is one spreadsheet row, either the reference side ("DIF")
// or a candidate side ("ES").
type Transaction struct {
	RowIndex   int     `json:"rowIndex"`
	Dono       string  `json:"dono"`
	Banco      string  `json:"banco"`
	Conta      string  `json:"conta"`
	Descricao  string  `json:"descricao"`
	Recorrente bool    `json:"recorrente"`
	Data       string  `json:"data"`
	Valor      float64 `json:"valor"`
	IdParcela  string  `json:"idParcela"`
	Sheet      string  `json:"sheet"`
}

// ConciliationSummary is the lightweight queue entry. The backend keys
// conciliations by the reference row index in the DIF sheet.
type ConciliationSummary struct {
	DifRowIndex    int     `json:"difRowIndex"`
	IdParcela      string  `json:"idParcela"`
	Dono           string  `json:"dono"`
	Banco          string  `json:"banco"`
	Conta          string  `json:"conta"`
	Descricao      string  `json:"descricao"`
	Data           string  `json:"data"`
	Valor          float64 `json:"valor"`
	CandidateCount int     `json:"candidateCount"`
}

// ConciliationDetail is one reference row plus its proposed matches.
type ConciliationDetail struct {
	Reference  Transaction   `json:"reference"`
	Candidates []Transaction `json:"candidates"`
}

// AcceptRequest is the body for accepting a conciliation.
type AcceptRequest struct {
	EsRowIndices []int `json:"esRowIndices"`
}

// Execution status values reported by the processing API.
const (
	ExecutionCompleted = "COMPLETED"
	ExecutionFailed    = "FAILED"
)

// ExecutionStatus is one polling snapshot. Each response supersedes the
// previous one entirely; the client never merges snapshots.
type ExecutionStatus struct {
	ExecutionID string `json:"executionId"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Step        string `json:"step"`
}

// Terminal reports whether no further progress updates will follow.
func (s ExecutionStatus) Terminal() bool {
	return s.Status == ExecutionCompleted || s.Status == ExecutionFailed
}

// ExecutionMetrics summarizes a finished run.
type ExecutionMetrics struct {
	TransactionsFetched int `json:"transactionsFetched"`
	InstallmentsCreated int `json:"installmentsCreated"`
	DuplicatesRemoved   int `json:"duplicatesRemoved"`
}

// ExecutionDetail is the full record of one execution.
type ExecutionDetail struct {
	ExecutionID string           `json:"executionId"`
	Status      string           `json:"status"`
	Metrics     ExecutionMetrics `json:"metrics"`
}

// ExecutionHistoryEntry is one line of the execution history list,
// most recent first.
type ExecutionHistoryEntry struct {
	CreatedAt string `json:"createdAt"`
	Step      string `json:"step"`
	Status    string `json:"status"`
}

// ExecutionHistory wraps the history listing response.
type ExecutionHistory struct {
	Items []ExecutionHistoryEntry `json:"items"`
}

// StartExecutionRequest is the job submission body. Sheet and artifact
// settings are fixed for this deployment; only Options vary per run.
type StartExecutionRequest struct {
	Options   ExecutionOptions `json:"options"`
	Sheet     SheetConfig      `json:"sheet"`
	Artifacts ArtifactConfig   `json:"artifacts"`
}

// ExecutionOptions are the operator-chosen run parameters.
type ExecutionOptions struct {
	StartDate         string   `json:"startDate,omitempty"`
	ExcludeCategories []string `json:"excludeCategories"`
}

// SheetConfig controls the spreadsheet update step of a run.
type SheetConfig struct {
	Enabled bool   `json:"enabled"`
	TabName string `json:"tabName"`
}

// ArtifactConfig controls artifact generation for a run.
type ArtifactConfig struct {
	CSVEnabled bool `json:"csvEnabled"`
}

// StartExecutionResponse is the 202 body of a job submission.
type StartExecutionResponse struct {
	ExecutionID string `json:"executionId"`
}
