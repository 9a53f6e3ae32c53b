package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/crashlog/internal/logging"
	"github.com/ccollicutt/crashlog/internal/watch"
	"github.com/ccollicutt/crashlog/pkg/analyzer"
	"github.com/ccollicutt/crashlog/pkg/output"
	"github.com/ccollicutt/crashlog/pkg/webhook"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	Config   string
	Pattern  string
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Parse crash logs as they appear in a directory",
		Long: `Watch a directory and parse every crash log written to it.

A file is parsed once it has not changed for the debounce interval, then
its report is printed and forwarded to the configured webhooks. Runs until
interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", "", "File pattern to watch (default from config)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Quiet period before a file is parsed (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, opts *WatchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	cfg, err := loadConfig(ctx, opts.Config, nil)
	if err != nil {
		return err
	}
	if opts.Pattern != "" {
		cfg.Watch.Pattern = opts.Pattern
	}
	if opts.Debounce > 0 {
		cfg.Watch.Debounce = opts.Debounce
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := analyzer.NewAnalyzer(cfg,
		analyzer.WithLogger(logger),
		analyzer.WithRetainLogs(len(cfg.Webhooks) > 0),
	)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	handler := newWatchHandler(a, webhook.NewDispatcher(nil, cfg.Webhooks, logger), cmd.OutOrStdout(), logger)

	w, err := watch.New(dir, cfg.Watch, handler, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	<-w.Done()
	return nil
}

// newWatchHandler parses a settled file, prints its report and forwards it.
func newWatchHandler(a *analyzer.Analyzer, d *webhook.Dispatcher, out io.Writer, logger *zap.Logger) watch.Handler {
	formatter := output.NewTextFormatter(output.FormatOptions{})

	return func(ctx context.Context, path string) {
		fr := a.AnalyzeFile(ctx, path)
		report := output.NewReport(fr)

		if err := formatter.WriteReport(report, out); err != nil {
			logger.Warn("writing report", zap.Error(err))
		}

		deliver(ctx, d, fr, report)
	}
}
