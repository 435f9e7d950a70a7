package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fjacquet/spending-coach/internal/conversation"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend uses the Gemini API through github.com/google/generative-ai-go.
type GeminiBackend struct {
	apiKey    string
	model     string
	maxTokens int

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiBackend creates a backend. The client is created on first use.
func NewGeminiBackend(apiKey, model string, maxTokens int) *GeminiBackend {
	return &GeminiBackend{apiKey: apiKey, model: model, maxTokens: maxTokens}
}

// Name implements Backend.
func (g *GeminiBackend) Name() string { return "gemini" }

func (g *GeminiBackend) ensureClient(ctx context.Context) error {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = errors.New("GEMINI_API_KEY environment variable not set")
			return
		}
		// The client outlives the request that triggered its creation.
		client, err := genai.NewClient(context.WithoutCancel(ctx), option.WithAPIKey(g.apiKey))
		if err != nil {
			g.initErr = fmt.Errorf("failed to create Gemini client: %w", err)
			return
		}
		g.client = client
	})
	return g.initErr
}

// newModel returns a fresh model handle per call so per-call settings never race.
func (g *GeminiBackend) newModel(system string) *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.model)
	if g.maxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.maxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model
}

// Complete implements Oracle.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if err := g.ensureClient(ctx); err != nil {
		return "", err
	}
	resp, err := g.newModel("").GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return geminiText(resp), nil
}

// Converse implements Oracle. System turns become the system instruction, prior
// turns the chat history, and the final turn is sent as the new message.
func (g *GeminiBackend) Converse(ctx context.Context, turns []conversation.Turn) (string, error) {
	if err := g.ensureClient(ctx); err != nil {
		return "", err
	}

	system, dialogue := conversation.SplitSystem(turns)
	dialogue = conversation.MergeAdjacent(conversation.UserFirst(dialogue))
	if len(dialogue) == 0 {
		return "", errors.New("conversation has no turns to send")
	}

	session := g.newModel(system).StartChat()
	for _, turn := range dialogue[:len(dialogue)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(dialogue[len(dialogue)-1].Text))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return geminiText(resp), nil
}

func geminiRole(role conversation.Role) string {
	if role == conversation.RoleUser {
		return "user"
	}
	return "model"
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
