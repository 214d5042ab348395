package postgres

import (
	"strings"

	"github.com/shopspring/decimal"
)

// decimalFromDB parses a NUMERIC column value. lib/pq returns numerics
// as strings.
func decimalFromDB(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(v))
}
