package model

// ExtractedAmount is a monetary value found in document text. Two
// amounts are considered the same when their numeric values match,
// regardless of the surface text.
type ExtractedAmount struct {
	Text  string `json:"text"`
	Value int    `json:"amount"`
}

// ParsedDocument holds the facts extracted from one source file. It is
// built once per file during an analysis run and never mutated after.
type ParsedDocument struct {
	Filename string            `json:"filename"`
	DocType  string            `json:"type"`
	Dates    []string          `json:"dates"` // canonical YYYY.MM.DD, deduplicated, ascending
	Amounts  []ExtractedAmount `json:"amounts"`
	Parties  []string          `json:"parties"`
	Keywords []string          `json:"keywords"`
	RawText  string            `json:"raw_text"`
}

// Document type constants. The classifier only ever produces these.
const (
	TypeProposal       = "기안"
	TypeContract       = "계약서"
	TypeCompletion     = "준공"
	TypeDesignChange   = "설계변경"
	TypeChangeContract = "변경"
	TypeExpenditure    = "지출"
	TypeSettlement     = "정산"
	TypeOther          = "기타"
)

// Workflow phases a document type belongs to, used for grouping and
// timeline placement.
const (
	PhasePlan     = "plan"
	PhaseContract = "contract"
	PhaseExecute  = "execute"
	PhaseClose    = "close"
	PhaseEtc      = "etc"
)
