package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/crashlog/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a crashlog configuration file without parsing any logs.

Checks:
  - YAML syntax
  - Limits and server settings
  - Watch pattern validity
  - Logging level and format
  - Webhook URLs, triggers and formats`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Max log size: %d bytes\n", cfg.Limits.MaxLogSize)
	fmt.Fprintf(w, "  Workers:      %d\n", cfg.Limits.Workers)
	fmt.Fprintf(w, "  Listen:       %s\n", cfg.Server.Listen)
	if cfg.Server.RateLimit > 0 {
		fmt.Fprintf(w, "  Rate limit:   %g/s (burst %d)\n", cfg.Server.RateLimit, cfg.Server.Burst)
	} else {
		fmt.Fprintf(w, "  Rate limit:   disabled\n")
	}
	fmt.Fprintf(w, "  Watch:        %s (debounce %s)\n", cfg.Watch.Pattern, cfg.Watch.Debounce)
	fmt.Fprintf(w, "  Logging:      %s, %s\n", cfg.Logging.Level, cfg.Logging.Format)

	if len(cfg.Webhooks) == 0 {
		fmt.Fprintf(w, "\nNo webhooks configured\n")
		return nil
	}

	fmt.Fprintf(w, "\nWebhooks:\n")
	for i, wh := range cfg.Webhooks {
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, wh.Format, wh.DisplayName())
		fmt.Fprintf(w, "     trigger: %s, attach log: %t, timeout: %s\n", wh.Trigger, wh.ShouldAttachLog(), wh.Timeout)
	}

	return nil
}
