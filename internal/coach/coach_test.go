package coach

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fjacquet/spending-coach/internal/aggregator"
	"fjacquet/spending-coach/internal/categorizer"
	"fjacquet/spending-coach/internal/conversation"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/oracle"
	"fjacquet/spending-coach/internal/parsererror"
	"fjacquet/spending-coach/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cannedAnalysis = "你好。\n\n支出模式总结: 购物 100。\n\n储蓄建议:\n购物：列清单\n餐饮：自己做饭\n交通：骑车"

func newService(t *testing.T, backend oracle.Backend, dropLocal bool) *Service {
	t.Helper()
	logger := logging.NewMockLogger()
	composer, err := prompt.NewComposer()
	require.NoError(t, err)

	client := oracle.NewClient(backend, oracle.Settings{}, logger)
	agg := aggregator.NewAggregator(categorizer.NewDefaultCategorizer(logger), logger)
	return NewService(client, agg, composer, conversation.NewBuilder(dropLocal), logger)
}

func TestAnalyze_EmptyRequestNeverCallsOracle(t *testing.T) {
	stub := oracle.NewStub(cannedAnalysis)
	svc := newService(t, stub, false)

	for _, req := range []AnalysisRequest{
		{},
		{UserDescription: "  ", TransactionData: json.RawMessage(`null`)},
		{TransactionData: json.RawMessage(`""`)},
	} {
		_, err := svc.Analyze(context.Background(), req)

		var verr *parsererror.InputValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, MessageMissingAnalysisInput, verr.Message)
	}
	assert.Equal(t, 0, stub.CallCount())
}

func TestAnalyze_InvalidLinesNeverCallOracle(t *testing.T) {
	stub := oracle.NewStub(cannedAnalysis)
	svc := newService(t, stub, false)

	_, err := svc.Analyze(context.Background(), AnalysisRequest{
		TransactionData: json.RawMessage(`"2023-10-26, 咖啡, -30\n2023-13-40, lunch, -30"`),
	})

	var verr *parsererror.InputValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"第 2 行: 日期格式不正确 (应为 YYYY-MM-DD)。"}, verr.Details())
	assert.Equal(t, 0, stub.CallCount())
}

func TestAnalyze_Success(t *testing.T) {
	stub := oracle.NewStub(cannedAnalysis)
	svc := newService(t, stub, false)

	resp, err := svc.Analyze(context.Background(), AnalysisRequest{
		UserDescription: "想多存钱",
		TransactionData: json.RawMessage(`[{"date":"2023-01-01","description":"超市","amount":-100},{"date":"2023-01-02","description":"工资","amount":2000}]`),
	})
	require.NoError(t, err)

	assert.Equal(t, cannedAnalysis, resp.Analysis)
	assert.Equal(t, "100", resp.TotalExpense.String())
	assert.Equal(t, "2000", resp.TotalIncome.String())
	total, ok := resp.ExpenseCategories.Get(models.CategoryShopping)
	require.True(t, ok)
	assert.Equal(t, "100", total.String())
	assert.Equal(t, 1, resp.ExpenseCategories.Len())

	assert.Equal(t, "你好。", resp.Structured.Intro)
	assert.Equal(t, "购物 100。", resp.Structured.Summary)
	assert.Len(t, resp.Structured.Suggestions, 3)
	assert.Len(t, resp.Transactions, 2)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "complete", calls[0].Operation)
	assert.Contains(t, calls[0].Prompt, `用户描述: "想多存钱"`)
	assert.Contains(t, calls[0].Prompt, `我的财务目标是: "无"`)
	assert.Contains(t, calls[0].Prompt, `{"购物":100}`)
}

func TestAnalyze_GoalOnly(t *testing.T) {
	stub := oracle.NewStub("plain advice")
	svc := newService(t, stub, false)

	resp, err := svc.Analyze(context.Background(), AnalysisRequest{FinancialGoal: "买房"})
	require.NoError(t, err)
	assert.True(t, resp.TotalExpense.IsZero())
	assert.Equal(t, 0, resp.ExpenseCategories.Len())
	assert.Equal(t, "plain advice", resp.Structured.Intro)
	assert.Empty(t, resp.Structured.Suggestions)
}

func TestAnalyze_OracleFailure(t *testing.T) {
	cause := errors.New("503 from upstream")
	svc := newService(t, oracle.NewFailingStub(cause), false)

	resp, err := svc.Analyze(context.Background(), AnalysisRequest{UserDescription: "hi"})
	assert.Nil(t, resp)

	var oerr *parsererror.OracleError
	require.True(t, errors.As(err, &oerr))
	assert.ErrorIs(t, err, cause)
}

func TestChat_MissingMessage(t *testing.T) {
	stub := oracle.NewStub("reply")
	svc := newService(t, stub, false)

	_, err := svc.Chat(context.Background(), ChatRequest{Message: "  ", AnalysisResult: "x"})
	var verr *parsererror.InputValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MessageMissingChatMessage, verr.Message)
	assert.Equal(t, 0, stub.CallCount())
}

func TestChat_BuildsContext(t *testing.T) {
	history := conversation.History{
		{Role: conversation.RoleUser, Text: "q1"},
		{Role: conversation.RoleAssistant, Text: "a1"},
		{Role: conversation.RoleLocal, Text: "网络错误"},
	}

	t.Run("fold", func(t *testing.T) {
		stub := oracle.NewStub("a2")
		resp, err := newService(t, stub, false).Chat(context.Background(), ChatRequest{
			Message:        "q2",
			ChatHistory:    history,
			AnalysisResult: "analysis",
		})
		require.NoError(t, err)
		assert.Equal(t, "a2", resp.Reply)

		turns := stub.Calls()[0].Turns
		require.Len(t, turns, 7)
		assert.Equal(t, conversation.RoleSystem, turns[0].Role)
		assert.Equal(t, conversation.Turn{Role: conversation.RoleAssistant, Text: "网络错误"}, turns[5])
		assert.Equal(t, conversation.Turn{Role: conversation.RoleUser, Text: "q2"}, turns[6])
	})

	t.Run("drop local", func(t *testing.T) {
		stub := oracle.NewStub("a2")
		_, err := newService(t, stub, true).Chat(context.Background(), ChatRequest{Message: "q2", ChatHistory: history})
		require.NoError(t, err)
		assert.Len(t, stub.Calls()[0].Turns, 4)
	})
}

func TestChat_OracleFailure(t *testing.T) {
	svc := newService(t, oracle.NewStub(""), false)

	_, err := svc.Chat(context.Background(), ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, parsererror.ErrEmptyReply)
	assert.True(t, parsererror.IsOracle(err))
}

type bareOracle struct{ err error }

func (b bareOracle) Complete(context.Context, string) (string, error) { return "", b.err }
func (b bareOracle) Converse(context.Context, []conversation.Turn) (string, error) {
	return "", b.err
}

func TestService_WrapsForeignOracleErrors(t *testing.T) {
	composer, err := prompt.NewComposer()
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	svc := NewService(bareOracle{err: errors.New("raw")}, aggregator.NewAggregator(categorizer.NewDefaultCategorizer(logger), logger), composer, nil, logger)

	_, err = svc.Chat(context.Background(), ChatRequest{Message: "hi"})
	assert.True(t, parsererror.IsOracle(err))
	_, err = svc.Analyze(context.Background(), AnalysisRequest{UserDescription: "x"})
	assert.True(t, parsererror.IsOracle(err))
}

func TestAnalysisRequest_JSON(t *testing.T) {
	var req AnalysisRequest
	require.NoError(t, json.Unmarshal([]byte(`{"userDescription":"d","transactionData":"2023-10-26, 咖啡, -30"}`), &req))
	assert.Equal(t, "d", req.UserDescription)
	assert.False(t, req.IsEmpty())
	assert.JSONEq(t, `"2023-10-26, 咖啡, -30"`, string(req.TransactionData))
}
