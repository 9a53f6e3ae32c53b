package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/crashlog/internal/logging"
	"github.com/ccollicutt/crashlog/internal/server"
	"github.com/ccollicutt/crashlog/pkg/analyzer"
	"github.com/ccollicutt/crashlog/pkg/webhook"
)

// ServeOptions holds command-line options for the serve command.
type ServeOptions struct {
	Config string
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept crash log uploads over HTTP",
		Long: `Run the crash upload service.

Endpoints:
  POST /crash_upload  multipart upload with the log in the "file" field
  GET  /healthz       liveness check
  GET  /metrics       Prometheus metrics

Every upload is parsed and forwarded to the configured webhooks. The
server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file")
	cmd.Flags().StringVarP(&opts.Listen, "listen", "l", "", "Listen address (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, opts.Config, nil)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := analyzer.NewAnalyzer(cfg, analyzer.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg, a, webhook.NewDispatcher(nil, cfg.Webhooks, logger), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
