package model

// Finding kinds produced by the consistency validator.
const (
	FindingMissingDocument       = "missing_document"
	FindingAmountMismatch        = "amount_mismatch"
	FindingDateOrder             = "date_order"
	FindingMissingChangeContract = "missing_change_contract"
)

// Finding severities.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Aggregate validation statuses.
const (
	ValidationOK      = "ok"
	ValidationWarning = "warning"
	ValidationError   = "error"
)

// Finding is one cross-document inconsistency detected by the
// validator. Findings are never mutated after creation.
type Finding struct {
	Kind         string   `json:"type"`
	Severity     string   `json:"severity"`
	Message      string   `json:"message"`
	RelatedFiles []string `json:"related_files,omitempty"`
}

// ValidationResult is the outcome of running the full check battery
// over one project's documents.
type ValidationResult struct {
	Status   string    `json:"status"`
	Warnings []Finding `json:"warnings"`
	Errors   []Finding `json:"errors"`
	Summary  string    `json:"summary"`
}
