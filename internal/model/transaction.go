package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a persisted bank transaction. Rows created by an import
// are never mutated afterward; edits go through a separate manual flow.
type Transaction struct {
	ID          string
	AccountID   string
	Date        time.Time
	Amount      decimal.Decimal // negative = outflow, positive = inflow
	Description string
	CategoryID  string
	Signature   string // duplicate-detection fingerprint
	BatchID     string // import batch that created this row, empty for manual entry
	CreatedAt   time.Time
}

// TransactionDraft is a normalized CSV row that has not been persisted yet.
type TransactionDraft struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	RowIndex    int // 1-based row number in the source file, for error reporting
}
