// ABOUTME: Processing pipeline step vocabulary and display labels
// ABOUTME: Codes come from the backend; unknown codes render as-is
package models

// Step codes emitted by the processing pipeline. The vocabulary is stable;
// the client maps codes to display text and never rewrites them.
const (
	StepQueued               = "QUEUED"
	StepStarted              = "STARTED"
	StepFetchingTransactions = "FETCHING_TRANSACTIONS"
	StepCreatingInstallments = "CREATING_INSTALLMENTS"
	StepDeduplicating        = "DEDUPLICATING"
	StepGeneratingCSV        = "GENERATING_CSV"
	StepUpdatingSheet        = "UPDATING_SHEET"
	StepFinalizing           = "FINALIZING"
	StepDone                 = "DONE"
	StepError                = "ERROR"
)

var stepLabels = map[string]string{
	StepQueued:               "Queued",
	StepStarted:              "Started",
	StepFetchingTransactions: "Fetching transactions",
	StepCreatingInstallments: "Creating installments",
	StepDeduplicating:        "Removing duplicates",
	StepGeneratingCSV:        "Generating CSV",
	StepUpdatingSheet:        "Updating sheet",
	StepFinalizing:           "Finalizing",
	StepDone:                 "Done",
	StepError:                "Error",
}

// StepLabel returns the display text for a step code. Unknown codes are
// returned as-is so new backend steps still render.
func StepLabel(code string) string {
	if label, ok := stepLabels[code]; ok {
		return label
	}
	return code
}
