// Package models provides the data structures used throughout the application.
package models

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted transaction date shape (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Transaction is one validated bank-style record. The sign of Amount decides
// whether it is income (positive) or expense (negative).
type Transaction struct {
	Date        string          `json:"date" csv:"Date"`
	Description string          `json:"description" csv:"Description"`
	Amount      decimal.Decimal `json:"amount" csv:"Amount"`
}

// IsExpense reports whether the transaction moves money out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction moves money in.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// MarshalJSON emits the amount as a bare JSON number rather than a quoted string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        string      `json:"date"`
		Description string      `json:"description"`
		Amount      json.Number `json:"amount"`
	}{
		Date:        t.Date,
		Description: t.Description,
		Amount:      Number(t.Amount),
	})
}

// ValidDate reports whether s is a real calendar date written as YYYY-MM-DD.
func ValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Number converts a decimal into a json.Number so it serializes unquoted.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
