package model

import "time"

// RowReason identifies why a CSV row was rejected during import.
type RowReason string

const (
	ReasonMalformedRow    RowReason = "malformed_row"
	ReasonDateParse       RowReason = "date_parse_error"
	ReasonAmbiguousAmount RowReason = "ambiguous_amount"
	ReasonZeroAmount      RowReason = "zero_amount"
)

// RowError describes a single rejected row. Row-level errors never abort
// an import; they are collected and returned in the report.
type RowError struct {
	RowIndex int       `json:"row"`
	Reason   RowReason `json:"reason"`
	Detail   string    `json:"detail,omitempty"`
}

// ImportReport summarizes one import run. It is built fresh per call and
// never persisted.
type ImportReport struct {
	TotalRows  int        `json:"total_rows"`
	Inserted   int        `json:"inserted"`
	Duplicates int        `json:"duplicates"`
	Errors     []RowError `json:"errors"`
}

// ImportBatch records one completed import for audit history. All
// transactions created by a run share its BatchID.
type ImportBatch struct {
	ID         string
	AccountID  string
	MappingID  string
	FileName   string
	TotalRows  int
	Inserted   int
	Duplicates int
	Rejected   int
	CreatedAt  time.Time
}
