package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroMan5/budgetmanager/internal/mapping"
)

func signedMapping() mapping.Mapping {
	m := mapping.New()
	m.Institution = "chase"
	m.DateColumn = 0
	m.DateFormat = "01/02/2006"
	m.AmountColumn = 1
	m.DescriptionColumns = []int{2}
	return m
}

func splitMapping() mapping.Mapping {
	m := mapping.New()
	m.Institution = "boa_checking"
	m.DateColumn = 0
	m.DateFormat = "01/02/2006"
	m.DebitColumn = 2
	m.CreditColumn = 3
	m.DescriptionColumns = []int{1}
	return m
}

func TestRow_SignedColumn(t *testing.T) {
	d, err := Row([]string{"01/15/2024", "-42.50", "Coffee Shop"}, 1, signedMapping())
	require.NoError(t, err)

	assert.Equal(t, 2024, d.Date.Year())
	assert.Equal(t, 1, int(d.Date.Month()))
	assert.Equal(t, 15, d.Date.Day())
	assert.Equal(t, "-42.50", d.Amount.StringFixed(2))
	assert.Equal(t, "Coffee Shop", d.Description)
	assert.Equal(t, 1, d.RowIndex)
}

func TestRow_Deterministic(t *testing.T) {
	cells := []string{"01/15/2024", "-42.50", "Coffee Shop"}
	a, err := Row(cells, 1, signedMapping())
	require.NoError(t, err)
	b, err := Row(cells, 1, signedMapping())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRow_FlipSign(t *testing.T) {
	m := signedMapping()
	m.FlipSign = true

	d, err := Row([]string{"01/15/2024", "42.50", "Coffee Shop"}, 1, m)
	require.NoError(t, err)
	assert.Equal(t, "-42.50", d.Amount.StringFixed(2))
}

func TestRow_CurrencyAndThousands(t *testing.T) {
	d, err := Row([]string{"01/15/2024", "$1,234.56", "Rent"}, 1, signedMapping())
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.Amount.StringFixed(2))

	d, err = Row([]string{"01/15/2024", "-$1,234.56", "Rent"}, 1, signedMapping())
	require.NoError(t, err)
	assert.Equal(t, "-1234.56", d.Amount.StringFixed(2))

	d, err = Row([]string{"01/15/2024", "(15.00)", "Refund reversal"}, 1, signedMapping())
	require.NoError(t, err)
	assert.Equal(t, "-15.00", d.Amount.StringFixed(2))
}

func TestRow_TooFewCells(t *testing.T) {
	_, err := Row([]string{"01/15/2024", "-42.50"}, 3, signedMapping())
	var mre *MalformedRowError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, 3, mre.Row())
	assert.Equal(t, 2, mre.Cells)
	assert.Equal(t, 3, mre.Need)
}

func TestRow_BadDate(t *testing.T) {
	_, err := Row([]string{"13/40/2024", "10.00", "Bad Date"}, 2, signedMapping())
	var dpe *DateParseError
	require.ErrorAs(t, err, &dpe)
	assert.Equal(t, 2, dpe.Row())
	assert.Equal(t, "13/40/2024", dpe.Raw)
}

func TestRow_NeverDefaultsDate(t *testing.T) {
	// An empty date cell is a rejection, not today's date.
	_, err := Row([]string{"", "10.00", "No Date"}, 1, signedMapping())
	var dpe *DateParseError
	require.ErrorAs(t, err, &dpe)
}

func TestRow_ZeroAmount(t *testing.T) {
	_, err := Row([]string{"01/15/2024", "0.00", "Balance marker"}, 4, signedMapping())
	var zae *ZeroAmountError
	require.ErrorAs(t, err, &zae)
	assert.Equal(t, 4, zae.Row())
}

func TestRow_DebitCredit(t *testing.T) {
	d, err := Row([]string{"01/15/2024", "Groceries", "54.10", ""}, 1, splitMapping())
	require.NoError(t, err)
	assert.Equal(t, "-54.10", d.Amount.StringFixed(2))

	d, err = Row([]string{"01/16/2024", "Payroll", "", "2500.00"}, 2, splitMapping())
	require.NoError(t, err)
	assert.Equal(t, "2500.00", d.Amount.StringFixed(2))
}

func TestRow_DebitAlwaysNegative(t *testing.T) {
	// Institutions that report debits as signed values still come out negative.
	d, err := Row([]string{"01/15/2024", "Groceries", "-54.10", ""}, 1, splitMapping())
	require.NoError(t, err)
	assert.Equal(t, "-54.10", d.Amount.StringFixed(2))
}

func TestRow_BothColumnsFilled(t *testing.T) {
	_, err := Row([]string{"01/15/2024", "Odd row", "10.00", "20.00"}, 5, splitMapping())
	var aae *AmbiguousAmountError
	require.ErrorAs(t, err, &aae)
	assert.Equal(t, 5, aae.Row())
}

func TestRow_BothColumnsEmpty(t *testing.T) {
	_, err := Row([]string{"01/15/2024", "Odd row", "", ""}, 6, splitMapping())
	var aae *AmbiguousAmountError
	require.ErrorAs(t, err, &aae)
}

func TestRow_DescriptionWhitespace(t *testing.T) {
	d, err := Row([]string{"01/15/2024", "-5.00", "  COFFEE   SHOP  #42  "}, 1, signedMapping())
	require.NoError(t, err)
	assert.Equal(t, "COFFEE SHOP #42", d.Description)
}

func TestRow_MultipleDescriptionColumns(t *testing.T) {
	m := signedMapping()
	m.DescriptionColumns = []int{2, 3}

	d, err := Row([]string{"01/15/2024", "-5.00", "COFFEE SHOP", "CARD 1234"}, 1, m)
	require.NoError(t, err)
	assert.Equal(t, "COFFEE SHOP CARD 1234", d.Description)

	// Empty columns are dropped, not joined as blank runs.
	d, err = Row([]string{"01/15/2024", "-5.00", "COFFEE SHOP", ""}, 1, m)
	require.NoError(t, err)
	assert.Equal(t, "COFFEE SHOP", d.Description)
}

func TestRow_BadAmountValue(t *testing.T) {
	_, err := Row([]string{"01/15/2024", "NOTANUMBER", "desc"}, 1, signedMapping())
	var mre *MalformedRowError
	require.ErrorAs(t, err, &mre)
	assert.Contains(t, mre.Error(), "bad amount")
}
