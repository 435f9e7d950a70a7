package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fjacquet/spending-coach/internal/aggregator"
	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/parsererror"
	"fjacquet/spending-coach/internal/structurer"
)

// Generic messages for server-side failures.
const (
	MessageAnalyzeFailed    = "Error processing financial data"
	MessageChatFailed       = "Error processing chat message"
	MessageInvalidBody      = "Invalid request body"
	MessageMethodNotAllowed = "Method Not Allowed"
)

// AnalyzeResponse is the wire form of a successful analysis.
type AnalyzeResponse struct {
	Analysis          string                        `json:"analysis"`
	ExpenseCategories aggregator.CategoryTotals     `json:"expenseCategories"`
	TotalExpense      json.Number                   `json:"totalExpense"`
	TotalIncome       json.Number                   `json:"totalIncome"`
	Structured        structurer.StructuredAnalysis `json:"structured"`
}

// NewAnalyzeResponse converts a service result to its wire form.
func NewAnalyzeResponse(resp *coach.AnalysisResponse) AnalyzeResponse {
	return AnalyzeResponse{
		Analysis:          resp.Analysis,
		ExpenseCategories: resp.ExpenseCategories,
		TotalExpense:      models.Number(resp.TotalExpense),
		TotalIncome:       models.Number(resp.TotalIncome),
		Structured:        resp.Structured,
	}
}

// validationResponse is the 400 body: a summary plus one entry per problem.
type validationResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// errorResponse is the body of every other failure.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// classify maps a service error to a status code and body.
func classify(err error, serverMessage string) (int, interface{}) {
	var verr *parsererror.InputValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, validationResponse{Message: verr.Message, Errors: verr.Details()}
	}

	detail := err.Error()
	var oerr *parsererror.OracleError
	if errors.As(err, &oerr) && oerr.Err != nil {
		detail = oerr.Err.Error()
	}
	return http.StatusInternalServerError, errorResponse{Message: serverMessage, Error: detail}
}
