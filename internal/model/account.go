package model

import "time"

// AccountType classifies bank accounts a user tracks.
type AccountType string

const (
	AccountTypeChecking     AccountType = "checking"
	AccountTypeSavings      AccountType = "savings"
	AccountTypeCreditCard   AccountType = "credit_card"
	AccountTypeMortgage     AccountType = "mortgage"
	AccountTypeLineOfCredit AccountType = "line_of_credit"
)

// Account represents a bank account owned by a user.
type Account struct {
	ID            string
	UserID        string
	Name          string
	Type          AccountType
	BankName      string
	AccountNumber string
	Description   string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName returns the account name with bank info if available.
func (a Account) DisplayName() string {
	if a.BankName != "" {
		return a.Name + " (" + a.BankName + ")"
	}
	return a.Name
}

// MaskedNumber returns the account number with all but the last four
// digits hidden. Numbers of four digits or fewer are returned as-is.
func (a Account) MaskedNumber() string {
	n := a.AccountNumber
	if n == "" {
		return ""
	}
	if len(n) <= 4 {
		return n
	}
	return "****" + n[len(n)-4:]
}
