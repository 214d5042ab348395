package mapping

import "time"

// AmountPolicy selects how a mapping extracts the transaction amount.
type AmountPolicy string

const (
	// PolicySignedColumn reads one signed amount column, optionally flipping sign.
	PolicySignedColumn AmountPolicy = "signed_column"
	// PolicyDebitCredit reads separate debit and credit columns. Exactly one
	// of the two cells must be non-empty per row.
	PolicyDebitCredit AmountPolicy = "debit_credit"
)

// unsetColumn marks a column reference as not configured.
const unsetColumn = -1

// Mapping describes one institution's CSV layout for one user: which
// columns hold which transaction fields and how to interpret them.
// Mappings are validated once at save time so row processing can assume
// a well-formed configuration.
type Mapping struct {
	ID          string `yaml:"id,omitempty"`
	UserID      string `yaml:"user_id,omitempty"`
	Institution string `yaml:"institution"`

	DateColumn int    `yaml:"date_column"`
	DateFormat string `yaml:"date_format"` // Go reference layout, e.g. "01/02/2006"

	// Signed-column policy. AmountColumn is unset (-1) under debit/credit.
	AmountColumn int  `yaml:"amount_column"`
	FlipSign     bool `yaml:"flip_sign,omitempty"` // institution reports outflows as positive

	// Debit/credit policy. Both unset (-1) under the signed-column policy.
	DebitColumn  int `yaml:"debit_column"`
	CreditColumn int `yaml:"credit_column"`

	DescriptionColumns []int `yaml:"description_columns"`

	HasHeader bool `yaml:"has_header"`
	SkipRows  int  `yaml:"skip_rows,omitempty"`

	CreatedAt time.Time `yaml:"-"`
	UpdatedAt time.Time `yaml:"-"`
}

// New returns a Mapping with all column references unset.
func New() Mapping {
	return Mapping{
		DateColumn:   unsetColumn,
		AmountColumn: unsetColumn,
		DebitColumn:  unsetColumn,
		CreditColumn: unsetColumn,
	}
}

// AmountPolicy reports which amount extraction policy the mapping uses.
func (m Mapping) AmountPolicy() AmountPolicy {
	if m.AmountColumn >= 0 {
		return PolicySignedColumn
	}
	return PolicyDebitCredit
}

// MaxColumn returns the highest column index the mapping references.
func (m Mapping) MaxColumn() int {
	max := m.DateColumn
	for _, c := range []int{m.AmountColumn, m.DebitColumn, m.CreditColumn} {
		if c > max {
			max = c
		}
	}
	for _, c := range m.DescriptionColumns {
		if c > max {
			max = c
		}
	}
	return max
}
