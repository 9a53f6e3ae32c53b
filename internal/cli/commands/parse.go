package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/crashlog/internal/logging"
	"github.com/ccollicutt/crashlog/pkg/analyzer"
	"github.com/ccollicutt/crashlog/pkg/config"
	"github.com/ccollicutt/crashlog/pkg/output"
	"github.com/ccollicutt/crashlog/pkg/parser"
	"github.com/ccollicutt/crashlog/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Config  string
	Output  string
	Pattern string
	Workers int
	Verbose bool
	Quiet   bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <log-file|dir|glob>...",
		Short: "Parse crash logs into crash reports",
		Long: `Parse ImHex crash logs and print a crash report for each one.

Each report carries the version, commit, OS and GPU from the log banner,
the crash reason, and the stack frames that led to the crash with the
crash handler frames removed.

Directories are expanded to the files matching --pattern.

Exit codes:
  0 - Every log held a crash
  1 - At least one log held no crash or could not be read
  2 - Configuration or runtime error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|embed)")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", parser.DefaultLogPattern, "File pattern used inside directories")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", 0, "Logs parsed concurrently (default from config)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show crash signatures and timing")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "always", "When to fire webhook (always|on_valid|never)")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, opts.Config, opts.cliWebhook())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	files, err := parser.ExpandInputs(args, opts.Pattern)
	if err != nil {
		return fmt.Errorf("expanding inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no crash logs matched: %v", args)
	}

	a, err := analyzer.NewAnalyzer(cfg,
		analyzer.WithWorkers(opts.Workers),
		analyzer.WithLogger(logger),
		analyzer.WithRetainLogs(len(cfg.Webhooks) > 0),
	)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	result, err := a.Analyze(ctx, files)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	report := output.NewBatchReport(result, opts.Config)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks (failures are logged but don't fail the run)
	dispatcher := webhook.NewDispatcher(nil, cfg.Webhooks, logger)
	for i, fr := range result.Files {
		deliver(ctx, dispatcher, fr, report.Reports[i])
	}

	// Set exit code based on results
	if report.HasInvalid() {
		ExitCode = 1
	}

	return nil
}

// cliWebhook returns the webhook given on the command line, if any.
func (o *ParseOptions) cliWebhook() *config.WebhookConfig {
	if o.WebhookURL == "" {
		return nil
	}
	return &config.WebhookConfig{
		Name:    "cli",
		URL:     o.WebhookURL,
		Token:   o.WebhookToken,
		Trigger: config.WebhookTrigger(o.WebhookTrigger),
		Timeout: config.DefaultWebhookTimeout,
	}
}

// loadConfig loads the configuration and appends an extra webhook before
// validation, so flags are checked like file settings.
func loadConfig(ctx context.Context, path string, extra *config.WebhookConfig) (*config.Config, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if extra != nil {
		cfg.Webhooks = append(cfg.Webhooks, *extra)
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid webhook flags: %w", err)
		}
	}

	return cfg, nil
}

// deliver forwards one report with the bytes it was parsed from.
func deliver(ctx context.Context, d *webhook.Dispatcher, fr *analyzer.FileResult, r *output.Report) []webhook.Delivery {
	if d.Webhooks() == 0 {
		return nil
	}
	return d.Deliver(ctx, r, webhook.NewAttachment(fr.Source, fr.Log))
}
