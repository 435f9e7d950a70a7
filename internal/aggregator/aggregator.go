// Package aggregator reduces a transaction sequence into per-category expense
// totals, total income and total expense.
package aggregator

import (
	"bytes"
	"encoding/json"

	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"

	"github.com/shopspring/decimal"
)

// Categorizer maps a description to a category.
type Categorizer interface {
	Categorize(description string) models.Category
}

// CategoryTotal is one accumulated expense bucket.
type CategoryTotal struct {
	Category models.Category
	Amount   decimal.Decimal
}

// CategoryTotals maps categories to accumulated absolute expense, keeping the
// order in which each category was first observed. The zero value is empty and
// ready to use. Categories never added are absent rather than zero.
type CategoryTotals struct {
	entries []CategoryTotal
}

// Add accumulates amount into category.
func (ct *CategoryTotals) Add(category models.Category, amount decimal.Decimal) {
	for i := range ct.entries {
		if ct.entries[i].Category == category {
			ct.entries[i].Amount = ct.entries[i].Amount.Add(amount)
			return
		}
	}
	ct.entries = append(ct.entries, CategoryTotal{Category: category, Amount: amount})
}

// Get returns the total for category and whether it was observed.
func (ct CategoryTotals) Get(category models.Category) (decimal.Decimal, bool) {
	for _, entry := range ct.entries {
		if entry.Category == category {
			return entry.Amount, true
		}
	}
	return decimal.Zero, false
}

// Entries returns the buckets in first-occurrence order.
func (ct CategoryTotals) Entries() []CategoryTotal {
	out := make([]CategoryTotal, len(ct.entries))
	copy(out, ct.entries)
	return out
}

// Len returns the number of observed categories.
func (ct CategoryTotals) Len() int {
	return len(ct.entries)
}

// Sum adds up every bucket.
func (ct CategoryTotals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, entry := range ct.entries {
		sum = sum.Add(entry.Amount)
	}
	return sum
}

// MarshalJSON emits a JSON object keyed by category identifier, in
// first-occurrence order, with amounts as bare numbers.
func (ct CategoryTotals) MarshalJSON() ([]byte, error) {
	return ct.marshal(func(c models.Category) string { return string(c) })
}

// MarshalLabeledJSON is MarshalJSON keyed by the categories' display labels.
func (ct CategoryTotals) MarshalLabeledJSON() ([]byte, error) {
	return ct.marshal(models.Category.Label)
}

func (ct CategoryTotals) marshal(key func(models.Category) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range ct.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key(entry.Category))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(entry.Amount.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary is the aggregator's output for one request.
type Summary struct {
	CategoryTotals CategoryTotals
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
}

// Aggregator applies a Categorizer to expenses while summing.
type Aggregator struct {
	categorizer Categorizer
	logger      logging.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(categorizer Categorizer, logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Aggregator{categorizer: categorizer, logger: logger}
}

// Aggregate sums transactions. Negative amounts are categorized and counted as
// expense by absolute value, positive amounts are income, zero amounts are ignored.
func (a *Aggregator) Aggregate(transactions []models.Transaction) Summary {
	summary := Summary{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}

	for _, tx := range transactions {
		switch {
		case tx.IsExpense():
			amount := tx.Amount.Abs()
			summary.CategoryTotals.Add(a.categorizer.Categorize(tx.Description), amount)
			summary.TotalExpense = summary.TotalExpense.Add(amount)
		case tx.IsIncome():
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		}
	}

	a.logger.Debug("Aggregated transactions",
		logging.F(logging.FieldCount, len(transactions)),
		logging.F("categories", summary.CategoryTotals.Len()),
		logging.F("total_expense", summary.TotalExpense.String()),
		logging.F("total_income", summary.TotalIncome.String()))

	return summary
}

// Categorize returns every transaction paired with its category, in input order.
func (a *Aggregator) Categorize(transactions []models.Transaction) []models.CategorizedTransaction {
	out := make([]models.CategorizedTransaction, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, models.CategorizedTransaction{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount.String(),
			Category:    a.categorizer.Categorize(tx.Description),
		})
	}
	return out
}
