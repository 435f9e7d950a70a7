// Package coach runs the two user-facing operations: a spending analysis of
// notes and transactions, and a chat turn with the AI coach.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"fjacquet/spending-coach/internal/aggregator"
	"fjacquet/spending-coach/internal/conversation"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/oracle"
	"fjacquet/spending-coach/internal/parsererror"
	"fjacquet/spending-coach/internal/prompt"
	"fjacquet/spending-coach/internal/structurer"
	"fjacquet/spending-coach/internal/txparser"

	"github.com/shopspring/decimal"
)

// Validation messages.
const (
	MessageMissingAnalysisInput = "Missing userDescription, transactionData, or financialGoal"
	MessageMissingChatMessage   = "Missing message in request body"
)

// AnalysisRequest is the input of Analyze. TransactionData holds either a JSON
// string of "date, description, amount" lines or a JSON array of records.
type AnalysisRequest struct {
	UserDescription string          `json:"userDescription,omitempty"`
	TransactionData json.RawMessage `json:"transactionData,omitempty"`
	FinancialGoal   string          `json:"financialGoal,omitempty"`
}

func (r AnalysisRequest) hasTransactionData() bool {
	raw := bytes.TrimSpace(r.TransactionData)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte(`""`))
}

// IsEmpty reports whether none of the three inputs is present.
func (r AnalysisRequest) IsEmpty() bool {
	return strings.TrimSpace(r.UserDescription) == "" &&
		strings.TrimSpace(r.FinancialGoal) == "" &&
		!r.hasTransactionData()
}

// AnalysisResponse is the output of Analyze.
type AnalysisResponse struct {
	Analysis          string
	ExpenseCategories aggregator.CategoryTotals
	TotalExpense      decimal.Decimal
	TotalIncome       decimal.Decimal
	Structured        structurer.StructuredAnalysis
	Transactions      []models.Transaction
}

// ChatRequest is the input of Chat. History is held by the client and sent
// back in full on every turn.
type ChatRequest struct {
	Message        string               `json:"message"`
	ChatHistory    conversation.History `json:"chatHistory,omitempty"`
	AnalysisResult string               `json:"analysisResult,omitempty"`
}

// ChatResponse is the output of Chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Service wires the pipeline together. It holds no per-request state.
type Service struct {
	oracle     oracle.Oracle
	aggregator *aggregator.Aggregator
	composer   *prompt.Composer
	builder    *conversation.Builder
	logger     logging.Logger
}

// NewService creates a Service.
func NewService(o oracle.Oracle, agg *aggregator.Aggregator, composer *prompt.Composer, builder *conversation.Builder, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if builder == nil {
		builder = conversation.NewBuilder(false)
	}
	return &Service{
		oracle:     o,
		aggregator: agg,
		composer:   composer,
		builder:    builder,
		logger:     logger,
	}
}

// Analyze validates and aggregates the request, asks the oracle for an analysis
// and structures the reply. Validation failures return a
// *parsererror.InputValidationError before the oracle is contacted; oracle
// failures return a *parsererror.OracleError.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	if req.IsEmpty() {
		return nil, &parsererror.InputValidationError{Message: MessageMissingAnalysisInput}
	}

	transactions, err := txparser.Parse(req.TransactionData)
	if err != nil {
		s.logger.WithError(err).Warn("Rejected transaction data",
			logging.F(logging.FieldOperation, "analyze"))
		return nil, err
	}

	summary := s.aggregator.Aggregate(transactions)

	text, err := s.composer.Compose(prompt.Input{
		UserDescription: req.UserDescription,
		FinancialGoal:   req.FinancialGoal,
		Transactions:    transactions,
		Summary:         summary,
	})
	if err != nil {
		return nil, err
	}

	reply, err := s.oracle.Complete(ctx, text)
	if err != nil {
		return nil, asOracleError("complete", err)
	}

	s.logger.Info("Analysis completed",
		logging.F(logging.FieldOperation, "analyze"),
		logging.F(logging.FieldCount, len(transactions)))

	return &AnalysisResponse{
		Analysis:          reply,
		ExpenseCategories: summary.CategoryTotals,
		TotalExpense:      summary.TotalExpense,
		TotalIncome:       summary.TotalIncome,
		Structured:        structurer.Structure(reply),
		Transactions:      transactions,
	}, nil
}

// Chat builds the conversation context for req and returns the oracle's reply.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &parsererror.InputValidationError{Message: MessageMissingChatMessage}
	}

	turns := s.builder.Build(req.Message, req.ChatHistory, req.AnalysisResult)

	reply, err := s.oracle.Converse(ctx, turns)
	if err != nil {
		return nil, asOracleError("converse", err)
	}

	s.logger.Info("Chat turn completed",
		logging.F(logging.FieldOperation, "chat"),
		logging.F(logging.FieldTurns, len(turns)))

	return &ChatResponse{Reply: reply}, nil
}

// asOracleError leaves OracleErrors untouched and wraps anything else, so an
// unwrapped Oracle implementation still surfaces as a server error.
func asOracleError(operation string, err error) error {
	var oerr *parsererror.OracleError
	if errors.As(err, &oerr) {
		return err
	}
	return &parsererror.OracleError{Provider: "oracle", Operation: operation, Err: err}
}
