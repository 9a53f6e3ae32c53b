package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *BatchReport, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *BatchReport, w io.Writer) error {
	_, err := fmt.Fprintf(w, "crashlog: %d logs, %d valid, %d invalid, %d failed, %d distinct crashes\n",
		report.Summary.Logs,
		report.Summary.Valid,
		report.Summary.Invalid,
		report.Summary.Failed,
		report.Summary.Signatures)
	return err
}

func (f *TextFormatter) formatFull(report *BatchReport, w io.Writer) error {
	// Header
	fmt.Fprintln(w, "=== Crash Log Report ===")
	fmt.Fprintln(w)

	for _, r := range report.Reports {
		f.formatReport(r, w)
	}

	if f.opts.Verbose && len(report.Groups) > 0 {
		fmt.Fprintln(w, "Crash signatures:")
		for _, g := range report.Groups {
			fmt.Fprintf(w, "  %dx %s\n", g.Count, g.Signature)
			fmt.Fprintf(w, "     %s\n", strings.Join(g.Sources, ", "))
		}
		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	_, err := fmt.Fprintf(w, "Summary: %d logs, %d valid, %d invalid, %d failed\n",
		report.Summary.Logs,
		report.Summary.Valid,
		report.Summary.Invalid,
		report.Summary.Failed)
	if err != nil {
		return err
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Distinct crashes: %d\n", report.Summary.Signatures)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatReport(r *Report, w io.Writer) {
	fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(r.Metadata.Platform), r.Metadata.Source)

	switch {
	case r.Metadata.Error != "":
		fmt.Fprintf(w, "  Error: %s\n", r.Metadata.Error)
		fmt.Fprintln(w)
		return
	case !r.Crash.Valid:
		fmt.Fprintln(w, "  No crash found")
		fmt.Fprintln(w)
		return
	}

	c := r.Crash
	fmt.Fprintf(w, "  Version: %s\n", c.Version)
	fmt.Fprintf(w, "  Commit:  %s\n", c.Commit)
	fmt.Fprintf(w, "  OS:      %s\n", c.OS)
	fmt.Fprintf(w, "  GPU:     %s\n", c.GPU)
	if c.StackImplementation != "" && f.opts.Verbose {
		fmt.Fprintf(w, "  Stack:   %s\n", c.StackImplementation)
	}
	fmt.Fprintf(w, "  Reason:  %s\n", c.CrashReason)

	if len(c.RelevantFrames) == 0 {
		fmt.Fprintln(w, "  No relevant frames")
	} else {
		fmt.Fprintf(w, "  Relevant frames (%d):\n", len(c.RelevantFrames))
		for _, frame := range c.RelevantFrames {
			fmt.Fprintf(w, "    %s\n", frame)
		}
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "  Size: %d bytes, parsed in %s\n", r.Metadata.Size, r.Metadata.Duration.Round(1e3))
	}

	fmt.Fprintln(w)
}

// WriteReport renders a single report without header or summary.
func (f *TextFormatter) WriteReport(r *Report, w io.Writer) error {
	var b strings.Builder
	f.formatReport(r, &b)
	_, err := io.WriteString(w, b.String())
	return err
}
