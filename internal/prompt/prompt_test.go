package prompt

import (
	"strings"
	"testing"

	"fjacquet/spending-coach/internal/aggregator"
	"fjacquet/spending-coach/internal/categorizer"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/structurer"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	txs := []models.Transaction{
		{Date: "2023-01-01", Description: "超市", Amount: decimal.NewFromInt(-100)},
		{Date: "2023-01-02", Description: "工资", Amount: decimal.NewFromInt(2000)},
	}
	logger := logging.NewMockLogger()
	agg := aggregator.NewAggregator(categorizer.NewDefaultCategorizer(logger), logger)
	return Input{
		UserDescription: "我每个月都存不下钱",
		FinancialGoal:   "一年存 1 万元",
		Transactions:    txs,
		Summary:         agg.Aggregate(txs),
	}
}

func TestNewComposer(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)
	assert.NotNil(t, c.analysis)
}

func TestCompose_AllFields(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	out, err := c.Compose(sampleInput())
	require.NoError(t, err)

	assert.Contains(t, out, `用户描述: "我每个月都存不下钱"`)
	assert.Contains(t, out, `我的财务目标是: "一年存 1 万元"`)
	assert.Contains(t, out, `[{"date":"2023-01-01","description":"超市","amount":-100},{"date":"2023-01-02","description":"工资","amount":2000}]`)
	assert.Contains(t, out, `（{"购物":100}）`)
	assert.Contains(t, out, "已计算的总支出: 100，总收入: 2000")
	assert.Contains(t, out, "至少3条")
	assert.Contains(t, out, "请避免使用复杂的财务术语")
	assert.Contains(t, out, structurer.LabelSummary+":")
	assert.Contains(t, out, structurer.LabelSuggestions+":")
	assert.Contains(t, out, structurer.LabelGoalSuggestions+":")
}

func TestCompose_PlaceholdersKeepTemplateShape(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	full, err := c.Compose(sampleInput())
	require.NoError(t, err)

	empty, err := c.Compose(Input{UserDescription: "  "})
	require.NoError(t, err)

	assert.Contains(t, empty, `用户描述: "无"`)
	assert.Contains(t, empty, `我的财务目标是: "无"`)
	assert.Contains(t, empty, "关联的银行交易数据: 无\n")
	assert.Contains(t, empty, "（{}）")
	assert.Equal(t, strings.Count(full, "\n"), strings.Count(empty, "\n"))
}

func TestCompose_GoalInstructionAlwaysPresent(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	withGoal, err := c.Compose(sampleInput())
	require.NoError(t, err)
	in := sampleInput()
	in.FinancialGoal = ""
	withoutGoal, err := c.Compose(in)
	require.NoError(t, err)

	for _, out := range []string{withGoal, withoutGoal} {
		assert.Contains(t, out, "如果用户提到了财务目标")
	}
}

func TestCompose_Deterministic(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	first, err := c.Compose(sampleInput())
	require.NoError(t, err)
	second, err := c.Compose(sampleInput())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
