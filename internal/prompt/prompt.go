// Package prompt composes the single instruction string sent to the oracle for a
// spending analysis.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"fjacquet/spending-coach/internal/aggregator"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/structurer"
)

// Placeholder stands in for any absent field so the template shape never changes.
const Placeholder = "无"

//go:embed templates/*.tmpl
var templateFS embed.FS

// Input is everything the analysis prompt is built from.
type Input struct {
	UserDescription string
	FinancialGoal   string
	Transactions    []models.Transaction
	Summary         aggregator.Summary
}

type templateData struct {
	UserDescription      string
	FinancialGoal        string
	Transactions         string
	CategoryTotals       string
	TotalExpense         string
	TotalIncome          string
	Placeholder          string
	LabelSummary         string
	LabelSuggestions     string
	LabelGoalSuggestions string
}

// Composer renders the analysis template.
type Composer struct {
	analysis *template.Template
}

// NewComposer parses the embedded templates.
func NewComposer() (*Composer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/analysis_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis_prompt template: %w", err)
	}
	return &Composer{analysis: tmpl}, nil
}

// Compose renders the prompt for in. Description and goal are quoted verbatim,
// transactions and category totals are embedded as JSON so the oracle can cite
// exact figures.
func (c *Composer) Compose(in Input) (string, error) {
	transactions := Placeholder
	if len(in.Transactions) > 0 {
		encoded, err := json.Marshal(in.Transactions)
		if err != nil {
			return "", fmt.Errorf("failed to encode transactions: %w", err)
		}
		transactions = string(encoded)
	}

	totals, err := in.Summary.CategoryTotals.MarshalLabeledJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode category totals: %w", err)
	}

	data := templateData{
		UserDescription:      orPlaceholder(in.UserDescription),
		FinancialGoal:        orPlaceholder(in.FinancialGoal),
		Transactions:         transactions,
		CategoryTotals:       string(totals),
		TotalExpense:         in.Summary.TotalExpense.String(),
		TotalIncome:          in.Summary.TotalIncome.String(),
		Placeholder:          Placeholder,
		LabelSummary:         structurer.LabelSummary,
		LabelSuggestions:     structurer.LabelSuggestions,
		LabelGoalSuggestions: structurer.LabelGoalSuggestions,
	}

	var buf bytes.Buffer
	if err := c.analysis.ExecuteTemplate(&buf, "analysis_prompt.tmpl", data); err != nil {
		return "", fmt.Errorf("failed to execute analysis_prompt template: %w", err)
	}
	return buf.String(), nil
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
