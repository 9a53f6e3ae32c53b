package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/crashlog/pkg/config"
	"github.com/ccollicutt/crashlog/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output     string
	SampleSize int
	ShowAll    bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect which platform produced a crash log",
		Long: `Score a crash log against known platform signatures.

Looks at the OS banner, the exception and signal dispatch frames, and the
module extensions that appear in the stack trace. Reports the most likely
platform with a confidence score.

Supports:
  - Windows (KiUserExceptionDispatcher, .dll and .exe modules)
  - Linux (__restore_rt, __libc_start_main, .so modules)
  - macOS (_sigtramp, libsystem_*, .dylib modules)

Example:
  crashlog detect crash.log
  crashlog detect --all -o json crash.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 0, "Number of lines to examine (0 for all)")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every matching platform, not just the best match")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format: %s (supported: text, json)", opts.Output)
	}

	// Check file exists
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	result, err := d.DetectFromFile(ctx, logFile, config.DefaultMaxLogSize)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if opts.Output == "json" {
		return outputDetectJSON(w, result, logFile, opts)
	}
	return outputDetectText(w, result, logFile, opts)
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Platform Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines examined: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with signatures: %d\n", result.MatchedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No platform detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: The log may be truncated before the OS banner and the stack trace.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Platform: %s\n", best.Platform)
	fmt.Fprintf(w, "Confidence: %.1f%% (score %d)\n", best.Confidence*100, best.Score)
	fmt.Fprintf(w, "Signatures: %s\n", strings.Join(best.Signatures, ", "))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintln(w)

	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other platforms ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence, score %d)\n", i+2, m.Platform, m.Confidence*100, m.Score)
			fmt.Fprintf(w, "   signatures: %s\n", strings.Join(m.Signatures, ", "))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a platform match in JSON output.
type JSONMatch struct {
	Platform   string   `json:"platform"`
	Score      int      `json:"score"`
	Confidence float64  `json:"confidence"`
	Signatures []string `json:"signatures"`
	SampleLine string   `json:"sample_line"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File          string      `json:"file"`
	Platform      string      `json:"platform"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	MatchedLines  int         `json:"matched_lines"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:          logFile,
		Platform:      result.Platform(),
		SampledLines:  result.SampledLines,
		MatchedLines:  result.MatchedLines,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Platform:   string(m.Platform),
			Score:      m.Score,
			Confidence: m.Confidence,
			Signatures: m.Signatures,
			SampleLine: m.SampleLine,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
