package container

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"
	"fjacquet/spending-coach/internal/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*config.Config) *config.Config
		expectError string
	}{
		{
			name:        "nil config",
			modify:      func(*config.Config) *config.Config { return nil },
			expectError: "configuration cannot be nil",
		},
		{
			name:   "default gemini provider without key",
			modify: func(c *config.Config) *config.Config { return c },
		},
		{
			name: "anthropic provider",
			modify: func(c *config.Config) *config.Config {
				c.AI.Provider = config.ProviderAnthropic
				c.AI.AnthropicAPIKey = "test-key"
				return c
			},
		},
		{
			name: "genai provider",
			modify: func(c *config.Config) *config.Config {
				c.AI.Provider = config.ProviderGenAI
				c.AI.APIKey = "test-key"
				return c
			},
		},
		{
			name: "unknown provider",
			modify: func(c *config.Config) *config.Config {
				c.AI.Provider = "carrier-pigeon"
				return c
			},
			expectError: "unsupported oracle provider",
		},
		{
			name: "missing rules file",
			modify: func(c *config.Config) *config.Config {
				c.Categories.File = filepath.Join(t.TempDir(), "absent.yaml")
				return c
			},
			expectError: "failed to create categorizer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewContainer(tt.modify(config.Defaults()))
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c.GetLogger())
			assert.NotNil(t, c.GetConfig())
			assert.NotNil(t, c.GetStore())
			assert.NotNil(t, c.GetCategorizer())
			assert.NotNil(t, c.GetAggregator())
			assert.NotNil(t, c.GetOracle())
			assert.NotNil(t, c.GetCoach())
			assert.NotNil(t, c.GetServer())
			assert.NoError(t, c.Close())
		})
	}
}

func TestNewContainerWithOracle_Validation(t *testing.T) {
	_, err := NewContainerWithOracle(nil, oracle.NewStub("x"), nil)
	assert.EqualError(t, err, "configuration cannot be nil")

	_, err = NewContainerWithOracle(config.Defaults(), nil, nil)
	assert.EqualError(t, err, "oracle cannot be nil")
}

func TestContainer_UsesRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - category: entertainment
    keywords: ["coffee"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := config.Defaults()
	cfg.Categories.File = path
	c, err := NewContainerWithOracle(cfg, oracle.NewStub("ok"), logging.NewMockLogger())
	require.NoError(t, err)

	assert.Equal(t, models.CategoryEntertainment, c.GetCategorizer().Categorize("Morning Coffee"))
	assert.Equal(t, models.CategoryOther, c.GetCategorizer().Categorize("Starbucks"))
}

func TestContainer_CoachIsWired(t *testing.T) {
	stub := oracle.NewStub("支出模式总结：餐饮偏高")
	logger := logging.NewMockLogger()
	c, err := NewContainerWithOracle(config.Defaults(), stub, logger)
	require.NoError(t, err)
	assert.True(t, logger.HasEntry("INFO", "Container initialized successfully"))

	resp, err := c.GetCoach().Analyze(context.Background(), coach.AnalysisRequest{
		UserDescription: "student",
		TransactionData: json.RawMessage(`"2024-03-01,Starbucks,-30"`),
		FinancialGoal:   "save",
	})
	require.NoError(t, err)
	assert.Equal(t, "支出模式总结：餐饮偏高", resp.Analysis)
	assert.Equal(t, 1, stub.CallCount())
}
