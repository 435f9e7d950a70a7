// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/spending-coach/internal/config"
	"fjacquet/spending-coach/internal/container"
	"fjacquet/spending-coach/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	LogLevel  string
	LogFormat string
	Provider  string
	Model     string
	Rules     string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// AppConfig is the configuration resolved before each command runs
	AppConfig *config.Config

	// AppContainer holds the wired dependencies for the running command
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "spending-coach",
		Short: "A CLI tool that analyzes spending and gives savings advice.",
		Long: `spending-coach categorizes bank-style transactions, totals expenses and income
per category, and asks a text-completion model for a savings plan toward a goal.
It also serves the same analysis and a follow-up chat over HTTP and WebSocket.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to spending-coach!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&SharedFlags.Provider, "provider", "", "Oracle provider (gemini, genai, anthropic)")
	flags.StringVar(&SharedFlags.Model, "model", "", "Oracle model name")
	flags.StringVar(&SharedFlags.Rules, "rules", "", "YAML file with category keyword rules")
}

// Setup loads .env and configuration, applies flag overrides and wires the container.
func Setup() error {
	config.LoadEnv(Log)

	cfg, err := config.InitializeConfig()
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	ApplyFlags(cfg, SharedFlags)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	AppConfig = cfg
	AppContainer = c
	Log = c.GetLogger()
	return nil
}

// ApplyFlags overrides cfg with any non-empty flag values.
func ApplyFlags(cfg *config.Config, flags CommonFlags) {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Provider != "" {
		cfg.AI.Provider = flags.Provider
	}
	if flags.Model != "" {
		cfg.AI.Model = flags.Model
	}
	if flags.Rules != "" {
		cfg.Categories.File = flags.Rules
	}
}

// GetContainer returns the wired container or an error when Setup has not run.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return AppContainer, nil
}
