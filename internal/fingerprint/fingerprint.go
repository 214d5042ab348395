// Package fingerprint computes stable duplicate-detection signatures for
// normalized transactions. Two imports of the same logical transaction
// must produce the same signature even when the institution varies the
// description slightly between exports.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/MacroMan5/budgetmanager/internal/model"
)

// descPrefixLen bounds how much of the normalized description feeds the
// signature, counted in bytes. The cut may land inside a multi-byte
// rune; the partial bytes are hashed as-is, which stays deterministic.
// Institutions append per-transaction reference numbers to otherwise
// identical descriptions; truncating lets those rows collide when date
// and amount also match. Accepted limitation: two distinct same-day,
// same-amount transactions sharing a long description prefix are merged.
const descPrefixLen = 32

const dateFormat = "2006-01-02"

// Signature returns the fingerprint for a draft bound to an account.
// It is deterministic: account, date, amount, and the normalized
// description prefix fully determine the result.
func Signature(accountID string, d model.TransactionDraft) string {
	var b strings.Builder
	b.WriteString(accountID)
	b.WriteByte('|')
	b.WriteString(d.Date.Format(dateFormat))
	b.WriteByte('|')
	b.WriteString(d.Amount.StringFixed(2))
	b.WriteByte('|')
	b.WriteString(normalizeDesc(d.Description))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// normalizeDesc lower-cases, collapses whitespace runs, and truncates to
// the signature prefix length.
func normalizeDesc(desc string) string {
	s := strings.ToLower(strings.Join(strings.Fields(desc), " "))
	if len(s) > descPrefixLen {
		s = s[:descPrefixLen]
	}
	return s
}

// Set holds the signatures already on record for one account. It is
// loaded once per import run and extended in memory as rows are
// admitted, so duplicates within a single file are caught too.
type Set map[string]struct{}

// NewSet returns an empty signature set.
func NewSet() Set {
	return make(Set)
}

// Contains reports whether sig is already in the set.
func (s Set) Contains(sig string) bool {
	_, ok := s[sig]
	return ok
}

// Add inserts sig into the set.
func (s Set) Add(sig string) {
	s[sig] = struct{}{}
}

// Len returns the number of signatures in the set.
func (s Set) Len() int {
	return len(s)
}
