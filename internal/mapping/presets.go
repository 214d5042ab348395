package mapping

import "strings"

// Preset returns a builtin mapping for a known institution layout, or
// false if none exists. Presets have no ID or user and are starting
// points for user configuration, not stored mappings.
func Preset(name string) (Mapping, bool) {
	switch strings.ToLower(name) {
	case "chase":
		return chasePreset(), true
	case "boa_checking":
		return boaCheckingPreset(), true
	case "amex_card":
		return amexCardPreset(), true
	default:
		return Mapping{}, false
	}
}

// PresetNames lists the builtin institution layouts.
func PresetNames() []string {
	return []string{"chase", "boa_checking", "amex_card"}
}

// Chase checking exports: Details,Posting Date,Description,Amount,Type,...
func chasePreset() Mapping {
	m := New()
	m.Institution = "chase"
	m.DateColumn = 1
	m.DateFormat = "01/02/2006"
	m.AmountColumn = 3
	m.DescriptionColumns = []int{2}
	m.HasHeader = true
	return m
}

// Bank of America checking exports separate debit and credit columns
// after a multi-line summary block.
func boaCheckingPreset() Mapping {
	m := New()
	m.Institution = "boa_checking"
	m.DateColumn = 0
	m.DateFormat = "01/02/2006"
	m.DebitColumn = 2
	m.CreditColumn = 3
	m.DescriptionColumns = []int{1}
	m.HasHeader = true
	m.SkipRows = 5
	return m
}

// Amex card exports report charges as positive numbers.
func amexCardPreset() Mapping {
	m := New()
	m.Institution = "amex_card"
	m.DateColumn = 0
	m.DateFormat = "01/02/2006"
	m.AmountColumn = 4
	m.FlipSign = true
	m.DescriptionColumns = []int{1, 2}
	m.HasHeader = true
	return m
}
