package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mara/internal/agent"
	"mara/internal/config"
	"mara/internal/decompose"
	"mara/internal/extract"
	"mara/internal/llm"
	"mara/internal/printer"
	"mara/internal/report"
	"mara/internal/retry"
	"mara/internal/synthesis"
	"mara/internal/workflow"
)

var (
	configPath     string
	nonInteractive bool
)

var researchCmd = &cobra.Command{
	Use:   `research "<query>"`,
	Short: "Run a research session for a natural-language query",
	Long: `Research runs one pipeline session: the query is decomposed into a task,
the workers acquire, synthesize, validate, and report, and the final report
is printed. Follow-up questions are read from the terminal until you exit;
use --non-interactive to stop at the first settled state.`,
	Args:          cobra.ExactArgs(1),
	RunE:          runResearch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	researchCmd.Flags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to the configuration file (default %q, built-in defaults if absent)", config.DefaultPath))
	researchCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false,
		"exit at the first settled state instead of prompting for follow-ups")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return printer.Error("Configuration error", err.Error(), []string{
			"Fix the reported field in your configuration file",
			"Or remove the file to run with built-in defaults",
		})
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return printer.Error("Logging setup failed", err.Error(), nil)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return printer.Error("Pipeline setup failed", err.Error(), nil)
	}

	printer.Step("researching: %s\n", query)
	result, err := engine.Run(ctx, query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return printer.Error("Interrupted", "The research session was cancelled before it settled.", nil)
		}
		return printer.Error("Research session failed", err.Error(), nil)
	}

	// Interactive sessions already showed each report through the feedback
	// prompt; non-interactive runs print the one final report here.
	if nonInteractive && result.Report != "" {
		printer.Report(result.Report)
		printer.Println()
	}

	if result.Failed() {
		return printer.Error("Research failed", result.ErrorMessage, []string{
			"Check that the configured source URL is reachable",
			"Re-run with logging.level: debug for the full trail",
		})
	}

	printer.Success("session ended at %q\n", result.Status)
	return nil
}

// loadConfig applies the built-in defaults when the default file is absent;
// an explicitly given --config path must exist.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(config.DefaultPath); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(config.DefaultPath)
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if lc.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	if lc.Level != "" {
		level, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging level %q: %w", lc.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

// buildEngine assembles the collaborator strategies from configuration. An
// available Gemini key enables the LLM strategies; without one the
// deterministic keyword decomposer and HTML extractor carry the pipeline.
func buildEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*workflow.Engine, error) {
	var generator llm.Generator
	if key := cfg.APIKey(); key != "" {
		g, err := llm.NewGemini(ctx, key, cfg.LLM.Model)
		if err != nil {
			logger.Warn("Gemini unavailable, using deterministic strategies", zap.Error(err))
		} else {
			generator = g
		}
	}

	var primary decompose.Decomposer
	if generator != nil {
		primary = decompose.NewLLM(generator, cfg.Source.URL, logger)
	}
	decomposer := decompose.NewChain(primary, decompose.NewKeyword(cfg.Source.URL), logger)

	var extractor extract.Extractor
	if cfg.Extractor == config.ExtractorLLM && generator != nil {
		extractor = extract.NewLLMExtractor(nil, generator, logger)
	} else {
		if cfg.Extractor == config.ExtractorLLM {
			logger.Warn("llm extractor configured but no API key available, using html")
		}
		extractor = extract.NewHTTPExtractor(nil, logger)
	}

	var feedback agent.FeedbackSource = agent.NewCLIFeedback(os.Stdin)
	if nonInteractive {
		feedback = agent.AutoExit{}
	}

	return workflow.New(workflow.Options{
		Decomposer:  decomposer,
		Extractor:   extractor,
		Synthesizer: synthesis.New(cfg.Source.PlaceholderAuthor),
		Renderer:    report.New(),
		Feedback:    feedback,
		RetryPolicy: retry.Policy{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			Delay:          cfg.Retry.Delay.Std(),
			AttemptTimeout: cfg.Retry.AttemptTimeout.Std(),
		},
		StaleThreshold: cfg.Staleness.Threshold,
		SourceURL:      cfg.Source.URL,
		Logger:         logger,
	})
}
