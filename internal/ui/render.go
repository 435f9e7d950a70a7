package ui

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/parsererror"
	"fjacquet/spending-coach/internal/structurer"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RenderAnalysis formats an analysis result: category totals, overall
// totals, then the advice split into its labeled sections when present.
func RenderAnalysis(resp *coach.AnalysisResponse) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Expense categories"))
	b.WriteString("\n")
	if resp.ExpenseCategories.Len() == 0 {
		b.WriteString(SubtleStyle.Render("No expenses"))
		b.WriteString("\n")
	}
	for _, entry := range resp.ExpenseCategories.Entries() {
		b.WriteString(row(categoryLabel(entry.Category), ExpenseStyle, entry.Amount))
	}

	b.WriteString("\n")
	b.WriteString(row("Total expense", ExpenseStyle, resp.TotalExpense))
	b.WriteString(row("Total income", IncomeStyle, resp.TotalIncome))
	b.WriteString("\n")

	b.WriteString(RenderStructured(resp.Structured))
	return b.String()
}

// RenderStructured formats the oracle's advice. Unlabeled text is shown as-is.
func RenderStructured(s structurer.StructuredAnalysis) string {
	if !s.HasSections() {
		return BoxStyle.Render(strings.TrimSpace(s.Raw)) + "\n"
	}

	var blocks []string
	if s.Intro != "" {
		blocks = append(blocks, s.Intro)
	}
	if s.Summary != "" {
		blocks = append(blocks, TitleStyle.Render(structurer.LabelSummary)+"\n"+s.Summary)
	}
	if len(s.Suggestions) > 0 {
		blocks = append(blocks, TitleStyle.Render(structurer.LabelSuggestions)+"\n"+bullets(s.Suggestions))
	}
	if len(s.GoalSuggestions) > 0 {
		blocks = append(blocks, TitleStyle.Render(structurer.LabelGoalSuggestions)+"\n"+bullets(s.GoalSuggestions))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// RenderReply formats one chat reply.
func RenderReply(reply string) string {
	return BoxStyle.Render(strings.TrimSpace(reply)) + "\n"
}

// RenderCategory formats one categorize result.
func RenderCategory(description string, category models.Category) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		LabelStyle.Render(categoryLabel(category)),
		SubtleStyle.Render(description),
	) + "\n"
}

// RenderError formats an error, listing each invalid line of a validation failure.
func RenderError(err error) string {
	var verr *parsererror.InputValidationError
	if !errors.As(err, &verr) {
		return ErrorStyle.Render("Error: "+err.Error()) + "\n"
	}

	var b strings.Builder
	b.WriteString(ErrorStyle.Render(verr.Message))
	b.WriteString("\n")
	for _, detail := range verr.Details() {
		b.WriteString("  - ")
		b.WriteString(detail)
		b.WriteString("\n")
	}
	return b.String()
}

func row(label string, style lipgloss.Style, amount decimal.Decimal) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		LabelStyle.Render(label),
		style.Inherit(AmountStyle).Render(amount.StringFixed(2)),
	) + "\n"
}

func categoryLabel(c models.Category) string {
	return fmt.Sprintf("%s (%s)", c.Label(), c)
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "  • " + item
	}
	return strings.Join(lines, "\n")
}
