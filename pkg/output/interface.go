package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders crash reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *BatchReport, w io.Writer) error

	// Name returns the format name (text, json, embed).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose enables detailed output including crash signature groups.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "embed":
		return NewEmbedFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s (use text, json or embed)", name)
	}
}
