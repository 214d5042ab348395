package mapping

import (
	"fmt"
	"time"
)

// ValidationError describes a single mapping configuration problem.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// referenceDate is rendered through the mapping's date format and parsed
// back to prove the format round-trips.
var referenceDate = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

// Validate checks a mapping at save time. A mapping that passes can be
// applied to rows without further configuration checks.
func (m Mapping) Validate() []ValidationError {
	var errs []ValidationError

	if m.Institution == "" {
		errs = append(errs, ValidationError{
			Field:       "institution",
			Description: "institution name is required",
		})
	}

	if m.DateColumn < 0 {
		errs = append(errs, ValidationError{
			Field:       "date_column",
			Description: "date column is required",
		})
	}

	if m.DateFormat == "" {
		errs = append(errs, ValidationError{
			Field:       "date_format",
			Description: "date format is required",
		})
	} else {
		rendered := referenceDate.Format(m.DateFormat)
		parsed, err := time.Parse(m.DateFormat, rendered)
		if err != nil || !parsed.Equal(referenceDate) {
			errs = append(errs, ValidationError{
				Field:       "date_format",
				Description: fmt.Sprintf("format %q does not round-trip a calendar date", m.DateFormat),
			})
		}
	}

	// Exactly one amount policy must be configured.
	hasSigned := m.AmountColumn >= 0
	hasSplit := m.DebitColumn >= 0 || m.CreditColumn >= 0
	switch {
	case hasSigned && hasSplit:
		errs = append(errs, ValidationError{
			Field:       "amount_column",
			Description: "amount column and debit/credit columns are mutually exclusive",
		})
	case !hasSigned && !hasSplit:
		errs = append(errs, ValidationError{
			Field:       "amount_column",
			Description: "either an amount column or debit/credit columns are required",
		})
	case hasSplit && (m.DebitColumn < 0 || m.CreditColumn < 0):
		errs = append(errs, ValidationError{
			Field:       "debit_column",
			Description: "debit/credit policy requires both columns",
		})
	}

	if len(m.DescriptionColumns) == 0 {
		errs = append(errs, ValidationError{
			Field:       "description_columns",
			Description: "at least one description column is required",
		})
	}

	if m.SkipRows < 0 {
		errs = append(errs, ValidationError{
			Field:       "skip_rows",
			Description: "skip row count cannot be negative",
		})
	}

	// No two field roles may share a column.
	errs = append(errs, m.checkOverlap()...)

	return errs
}

func (m Mapping) checkOverlap() []ValidationError {
	var errs []ValidationError
	seen := make(map[int]string)

	claim := func(col int, field string) {
		if col < 0 {
			return
		}
		if prev, ok := seen[col]; ok {
			errs = append(errs, ValidationError{
				Field:       field,
				Description: fmt.Sprintf("column %d is already used by %s", col, prev),
			})
			return
		}
		seen[col] = field
	}

	claim(m.DateColumn, "date_column")
	claim(m.AmountColumn, "amount_column")
	claim(m.DebitColumn, "debit_column")
	claim(m.CreditColumn, "credit_column")
	for _, c := range m.DescriptionColumns {
		claim(c, "description_columns")
	}
	return errs
}
