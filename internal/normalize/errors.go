package normalize

import (
	"fmt"

	"github.com/MacroMan5/budgetmanager/internal/model"
)

// RowError is implemented by all row-level normalization failures. These
// are collected per row by the importer and never abort a run.
type RowError interface {
	error
	Row() int
	Reason() model.RowReason
}

// MalformedRowError reports a row with fewer cells than the mapping
// references, or a cell that cannot be read at all.
type MalformedRowError struct {
	RowIndex int
	Cells    int
	Need     int
	Detail   string
}

func (e *MalformedRowError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("row %d: %s", e.RowIndex, e.Detail)
	}
	return fmt.Sprintf("row %d: has %d cells, mapping needs %d", e.RowIndex, e.Cells, e.Need)
}

func (e *MalformedRowError) Row() int                { return e.RowIndex }
func (e *MalformedRowError) Reason() model.RowReason { return model.ReasonMalformedRow }

// DateParseError reports a date cell that does not match the mapping's
// date format. The raw value is kept for the report.
type DateParseError struct {
	RowIndex int
	Raw      string
	Format   string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: date %q does not match format %q", e.RowIndex, e.Raw, e.Format)
}

func (e *DateParseError) Row() int                { return e.RowIndex }
func (e *DateParseError) Reason() model.RowReason { return model.ReasonDateParse }

// AmbiguousAmountError reports a debit/credit row where both cells are
// populated, both are empty, or a populated cell is not a number.
type AmbiguousAmountError struct {
	RowIndex int
	Debit    string
	Credit   string
}

func (e *AmbiguousAmountError) Error() string {
	return fmt.Sprintf("row %d: ambiguous amount (debit %q, credit %q)", e.RowIndex, e.Debit, e.Credit)
}

func (e *AmbiguousAmountError) Row() int                { return e.RowIndex }
func (e *AmbiguousAmountError) Reason() model.RowReason { return model.ReasonAmbiguousAmount }

// ZeroAmountError reports a row whose amount parsed to zero.
type ZeroAmountError struct {
	RowIndex int
}

func (e *ZeroAmountError) Error() string {
	return fmt.Sprintf("row %d: zero amount", e.RowIndex)
}

func (e *ZeroAmountError) Row() int                { return e.RowIndex }
func (e *ZeroAmountError) Reason() model.RowReason { return model.ReasonZeroAmount }
