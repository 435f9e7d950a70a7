package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fjacquet/spending-coach/internal/conversation"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend uses the Anthropic Messages API.
type AnthropicBackend struct {
	apiKey    string
	model     string
	maxTokens int

	once    sync.Once
	client  *anthropic.Client
	initErr error
}

// NewAnthropicBackend creates a backend. The client is created on first use.
func NewAnthropicBackend(apiKey, model string, maxTokens int) *AnthropicBackend {
	return &AnthropicBackend{apiKey: apiKey, model: model, maxTokens: maxTokens}
}

// Name implements Backend.
func (a *AnthropicBackend) Name() string { return "anthropic" }

func (a *AnthropicBackend) ensureClient() error {
	a.once.Do(func() {
		if a.apiKey == "" {
			a.initErr = errors.New("ANTHROPIC_API_KEY environment variable not set")
			return
		}
		client := anthropic.NewClient(anthropicoption.WithAPIKey(a.apiKey))
		a.client = &client
	})
	return a.initErr
}

func (a *AnthropicBackend) send(ctx context.Context, system string, messages []anthropic.MessageParam) (string, error) {
	if err := a.ensureClient(); err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Complete implements Oracle.
func (a *AnthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	return a.send(ctx, "", []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
}

// Converse implements Oracle. Adjacent turns of one role are merged because the
// Messages API expects alternating speakers.
func (a *AnthropicBackend) Converse(ctx context.Context, turns []conversation.Turn) (string, error) {
	system, dialogue := conversation.SplitSystem(turns)
	dialogue = conversation.MergeAdjacent(conversation.UserFirst(dialogue))
	if len(dialogue) == 0 {
		return "", errors.New("conversation has no turns to send")
	}

	messages := make([]anthropic.MessageParam, 0, len(dialogue))
	for _, turn := range dialogue {
		block := anthropic.NewTextBlock(turn.Text)
		if turn.Role == conversation.RoleUser {
			messages = append(messages, anthropic.NewUserMessage(block))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		}
	}
	return a.send(ctx, system, messages)
}
