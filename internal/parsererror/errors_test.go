package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	original := errors.New("can't convert abc to decimal")
	err := &ParseError{Parser: "lines", Field: "amount", Value: "abc", Err: original}

	assert.Equal(t, "lines: failed to parse amount='abc': can't convert abc to decimal", err.Error())
	assert.True(t, errors.Is(err, original))
}

func TestLineError(t *testing.T) {
	cause := errors.New("bad")
	err := &LineError{Line: 3, Reason: "金额不是有效的数字。", Err: cause}

	assert.Equal(t, "第 3 行: 金额不是有效的数字。", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestInputValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *InputValidationError
		expected string
		details  []string
	}{
		{
			name:     "message only",
			err:      &InputValidationError{Message: "missing message"},
			expected: "missing message",
			details:  []string{},
		},
		{
			name: "with lines",
			err: &InputValidationError{
				Message: "交易数据存在格式错误：",
				Lines: []*LineError{
					{Line: 1, Reason: "日期格式不正确 (应为 YYYY-MM-DD)。"},
					{Line: 4, Reason: "格式不正确 (应为 日期, 描述, 金额)。"},
				},
			},
			expected: "交易数据存在格式错误：\n第 1 行: 日期格式不正确 (应为 YYYY-MM-DD)。\n第 4 行: 格式不正确 (应为 日期, 描述, 金额)。",
			details: []string{
				"第 1 行: 日期格式不正确 (应为 YYYY-MM-DD)。",
				"第 4 行: 格式不正确 (应为 日期, 描述, 金额)。",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.Equal(t, tt.details, tt.err.Details())
		})
	}
}

func TestOracleError(t *testing.T) {
	err := &OracleError{Provider: "gemini", Operation: "complete", Err: ErrEmptyReply}

	assert.Equal(t, "oracle gemini complete failed: empty response from oracle", err.Error())
	assert.True(t, errors.Is(err, ErrEmptyReply))
}

func TestClassifiers(t *testing.T) {
	validation := fmt.Errorf("analyze: %w", &InputValidationError{Message: "empty request"})
	oracle := fmt.Errorf("analyze: %w", &OracleError{Provider: "stub", Operation: "complete", Err: errors.New("down")})

	assert.True(t, IsValidation(validation))
	assert.False(t, IsOracle(validation))
	assert.True(t, IsOracle(oracle))
	assert.False(t, IsValidation(oracle))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestCategorizationError(t *testing.T) {
	cause := errors.New("unknown category: \"groceries\"")
	err := &CategorizationError{Source: "rules.yaml", Err: cause}

	assert.Equal(t, `category rules from rules.yaml: unknown category: "groceries"`, err.Error())
	assert.ErrorIs(t, err, cause)
}
