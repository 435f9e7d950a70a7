package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fjacquet/spending-coach/internal/conversation"

	"google.golang.org/genai"
)

// GenAIBackend uses the Gemini API through the unified google.golang.org/genai SDK.
type GenAIBackend struct {
	apiKey    string
	model     string
	maxTokens int

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGenAIBackend creates a backend. The client is created on first use.
func NewGenAIBackend(apiKey, model string, maxTokens int) *GenAIBackend {
	return &GenAIBackend{apiKey: apiKey, model: model, maxTokens: maxTokens}
}

// Name implements Backend.
func (g *GenAIBackend) Name() string { return "genai" }

func (g *GenAIBackend) ensureClient(ctx context.Context) error {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = errors.New("GEMINI_API_KEY environment variable not set")
			return
		}
		client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			g.initErr = fmt.Errorf("create genai client: %w", err)
			return
		}
		g.client = client
	})
	return g.initErr
}

func (g *GenAIBackend) generate(ctx context.Context, system string, contents []*genai.Content) (string, error) {
	if err := g.ensureClient(ctx); err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{}
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Complete implements Oracle.
func (g *GenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, "", []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	})
}

// Converse implements Oracle.
func (g *GenAIBackend) Converse(ctx context.Context, turns []conversation.Turn) (string, error) {
	system, dialogue := conversation.SplitSystem(turns)
	dialogue = conversation.MergeAdjacent(conversation.UserFirst(dialogue))
	if len(dialogue) == 0 {
		return "", errors.New("conversation has no turns to send")
	}

	contents := make([]*genai.Content, 0, len(dialogue))
	for _, turn := range dialogue {
		contents = append(contents, &genai.Content{
			Role:  geminiRole(turn.Role),
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}
	return g.generate(ctx, system, contents)
}
