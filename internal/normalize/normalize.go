package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MacroMan5/budgetmanager/internal/mapping"
	"github.com/MacroMan5/budgetmanager/internal/model"
)

// Row converts one raw CSV row into a TransactionDraft using the given
// mapping. It is a pure function: the same row and mapping always yield
// the same draft. Failures are returned as RowError values carrying the
// row index; the caller decides whether to collect or abort.
func Row(cells []string, rowIndex int, m mapping.Mapping) (model.TransactionDraft, error) {
	if len(cells) <= m.MaxColumn() {
		return model.TransactionDraft{}, &MalformedRowError{
			RowIndex: rowIndex,
			Cells:    len(cells),
			Need:     m.MaxColumn() + 1,
		}
	}

	date, err := parseDate(cells, rowIndex, m)
	if err != nil {
		return model.TransactionDraft{}, err
	}

	amount, err := parseAmount(cells, rowIndex, m)
	if err != nil {
		return model.TransactionDraft{}, err
	}
	if amount.IsZero() {
		// Zero-amount rows are typically balance markers, not transactions.
		return model.TransactionDraft{}, &ZeroAmountError{RowIndex: rowIndex}
	}

	return model.TransactionDraft{
		Date:        date,
		Amount:      amount,
		Description: description(cells, m),
		RowIndex:    rowIndex,
	}, nil
}

func parseDate(cells []string, rowIndex int, m mapping.Mapping) (time.Time, error) {
	raw := strings.TrimSpace(cells[m.DateColumn])
	date, err := time.Parse(m.DateFormat, raw)
	if err != nil {
		return time.Time{}, &DateParseError{RowIndex: rowIndex, Raw: raw, Format: m.DateFormat}
	}
	return date, nil
}

func parseAmount(cells []string, rowIndex int, m mapping.Mapping) (decimal.Decimal, error) {
	if m.AmountPolicy() == mapping.PolicySignedColumn {
		amount, err := parseDecimal(cells[m.AmountColumn])
		if err != nil {
			return decimal.Zero, &MalformedRowError{
				RowIndex: rowIndex,
				Cells:    len(cells),
				Need:     m.MaxColumn() + 1,
				Detail:   "bad amount " + strings.TrimSpace(cells[m.AmountColumn]),
			}
		}
		if m.FlipSign {
			amount = amount.Neg()
		}
		return amount, nil
	}

	debitRaw := strings.TrimSpace(cells[m.DebitColumn])
	creditRaw := strings.TrimSpace(cells[m.CreditColumn])

	// Exactly one of the two cells must carry a value.
	if (debitRaw == "") == (creditRaw == "") {
		return decimal.Zero, &AmbiguousAmountError{
			RowIndex: rowIndex,
			Debit:    debitRaw,
			Credit:   creditRaw,
		}
	}

	if debitRaw != "" {
		amount, err := parseDecimal(debitRaw)
		if err != nil {
			return decimal.Zero, &AmbiguousAmountError{RowIndex: rowIndex, Debit: debitRaw}
		}
		// Debits are always outflows.
		return amount.Abs().Neg(), nil
	}

	amount, err := parseDecimal(creditRaw)
	if err != nil {
		return decimal.Zero, &AmbiguousAmountError{RowIndex: rowIndex, Credit: creditRaw}
	}
	return amount.Abs(), nil
}

// parseDecimal reads a fixed-point amount, tolerating currency symbols,
// thousands separators, and accounting-style parentheses for negatives.
func parseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "-$") {
		s = "-" + s[2:]
	} else {
		s = strings.TrimPrefix(s, "$")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// description joins the mapped description columns with single spaces,
// trims the result, and collapses internal whitespace runs.
func description(cells []string, m mapping.Mapping) string {
	parts := make([]string, 0, len(m.DescriptionColumns))
	for _, c := range m.DescriptionColumns {
		if v := strings.TrimSpace(cells[c]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
