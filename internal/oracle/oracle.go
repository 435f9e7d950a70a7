// Package oracle talks to the external text-completion backend. Backends are
// initialised lazily on first use; the Client wrapper adds rate limiting, a
// per-call timeout, logging and error classification.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/conversation"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/parsererror"

	"golang.org/x/time/rate"
)

// Oracle returns one text completion for a flat prompt or a multi-turn context.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Converse(ctx context.Context, turns []conversation.Turn) (string, error)
}

// Backend is a provider-specific Oracle.
type Backend interface {
	Oracle
	Name() string
}

// Settings configures a backend and its Client wrapper.
type Settings struct {
	Provider          string
	Model             string
	APIKey            string
	MaxTokens         int
	RequestsPerMinute int
	Timeout           time.Duration
}

// SettingsFromConfig extracts oracle settings from the application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Provider:          cfg.AI.Provider,
		Model:             cfg.AI.Model,
		APIKey:            cfg.ActiveAPIKey(),
		MaxTokens:         cfg.AI.MaxTokens,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Timeout:           time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
}

// New returns a Client over the backend selected by settings.Provider.
func New(settings Settings, logger logging.Logger) (*Client, error) {
	var backend Backend
	switch settings.Provider {
	case config.ProviderGemini, "":
		backend = NewGeminiBackend(settings.APIKey, settings.Model, settings.MaxTokens)
	case config.ProviderGenAI:
		backend = NewGenAIBackend(settings.APIKey, settings.Model, settings.MaxTokens)
	case config.ProviderAnthropic:
		backend = NewAnthropicBackend(settings.APIKey, settings.Model, settings.MaxTokens)
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", settings.Provider)
	}
	return NewClient(backend, settings, logger), nil
}

// Client decorates a Backend. It never retries and never substitutes an answer:
// every failure reaches the caller as a *parsererror.OracleError.
type Client struct {
	backend Backend
	limiter *rate.Limiter
	timeout time.Duration
	logger  logging.Logger
}

// NewClient wraps backend. A non-positive RequestsPerMinute disables limiting and
// a non-positive Timeout disables the per-call deadline.
func NewClient(backend Backend, settings Settings, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetLogger()
	}

	limit := rate.Inf
	if settings.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(settings.RequestsPerMinute))
	}

	return &Client{
		backend: backend,
		limiter: rate.NewLimiter(limit, 1),
		timeout: settings.Timeout,
		logger:  logger.WithField(logging.FieldProvider, backend.Name()),
	}
}

// Name returns the wrapped backend's name.
func (c *Client) Name() string {
	return c.backend.Name()
}

// Complete sends a flat prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.call(ctx, "complete", len(prompt), func(ctx context.Context) (string, error) {
		return c.backend.Complete(ctx, prompt)
	})
}

// Converse sends an ordered multi-turn context.
func (c *Client) Converse(ctx context.Context, turns []conversation.Turn) (string, error) {
	size := 0
	for _, turn := range turns {
		size += len(turn.Text)
	}
	c.logger.Debug("Sending conversation", logging.F(logging.FieldTurns, len(turns)))
	return c.call(ctx, "converse", size, func(ctx context.Context) (string, error) {
		return c.backend.Converse(ctx, turns)
	})
}

func (c *Client) call(ctx context.Context, operation string, promptBytes int, fn func(context.Context) (string, error)) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", c.fail(operation, fmt.Errorf("rate limiter: %w", err))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := fn(ctx)
	duration := time.Since(start)
	if err != nil {
		return "", c.fail(operation, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", c.fail(operation, parsererror.ErrEmptyReply)
	}

	c.logger.Info("Oracle call completed",
		logging.F(logging.FieldOperation, operation),
		logging.F(logging.FieldPromptBytes, promptBytes),
		logging.F(logging.FieldReplyBytes, len(reply)),
		logging.F(logging.FieldDuration, duration.String()))
	return reply, nil
}

func (c *Client) fail(operation string, err error) error {
	c.logger.WithError(err).Error("Oracle call failed", logging.F(logging.FieldOperation, operation))
	return &parsererror.OracleError{Provider: c.backend.Name(), Operation: operation, Err: err}
}
