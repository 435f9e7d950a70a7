// Package container provides dependency injection for the spending-coach application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/spending-coach/internal/aggregator"
	"fjacquet/spending-coach/internal/api"
	"fjacquet/spending-coach/internal/categorizer"
	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/conversation"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/oracle"
	"fjacquet/spending-coach/internal/prompt"
	"fjacquet/spending-coach/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.RuleStore
	categorizer *categorizer.Categorizer
	aggregator  *aggregator.Aggregator
	composer    *prompt.Composer
	builder     *conversation.Builder
	oracle      oracle.Oracle
	coach       *coach.Service
	server      *api.Server
}

// NewContainer creates and wires all application dependencies, selecting the
// oracle backend from cfg.AI.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	client, err := oracle.New(oracle.SettingsFromConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create oracle client: %w", err)
	}
	if cfg.ActiveAPIKey() == "" {
		logger.Warn("No API key configured; oracle calls will fail",
			logging.F(logging.FieldProvider, cfg.AI.Provider))
	}

	return build(cfg, logger, client)
}

// NewContainerWithOracle wires the application around a caller-supplied oracle
// and logger instead of the configured backend.
func NewContainerWithOracle(cfg *config.Config, o oracle.Oracle, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if o == nil {
		return nil, fmt.Errorf("oracle cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}
	return build(cfg, logger, o)
}

func build(cfg *config.Config, logger logging.Logger, o oracle.Oracle) (*Container, error) {
	ruleStore := store.NewRuleStore(cfg.Categories.File, logger)

	cat, err := categorizer.NewCategorizerFromSource(ruleStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create categorizer: %w", err)
	}

	composer, err := prompt.NewComposer()
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt composer: %w", err)
	}

	agg := aggregator.NewAggregator(cat, logger)
	builder := conversation.NewBuilder(cfg.Chat.DropLocalTurns)
	service := coach.NewService(o, agg, composer, builder, logger)
	server := api.NewServer(service, cfg.Server, logger)

	logger.Info("Container initialized successfully",
		logging.F(logging.FieldProvider, cfg.AI.Provider),
		logging.F(logging.FieldModel, cfg.AI.Model),
		logging.F("rules_count", len(cat.Rules())))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       ruleStore,
		categorizer: cat,
		aggregator:  agg,
		composer:    composer,
		builder:     builder,
		oracle:      o,
		coach:       service,
		server:      server,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the category rule store.
func (c *Container) GetStore() *store.RuleStore {
	return c.store
}

// GetCategorizer returns the keyword categorizer.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetAggregator returns the transaction aggregator.
func (c *Container) GetAggregator() *aggregator.Aggregator {
	return c.aggregator
}

// GetOracle returns the text-completion client.
func (c *Container) GetOracle() oracle.Oracle {
	return c.oracle
}

// GetCoach returns the analysis and chat service.
func (c *Container) GetCoach() *coach.Service {
	return c.coach
}

// GetServer returns the HTTP API server.
func (c *Container) GetServer() *api.Server {
	return c.server
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Info("Container closed")
	return nil
}
