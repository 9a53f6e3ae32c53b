package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ccollicutt/crashlog/pkg/analyzer"
)

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := NewBatchReport(&analyzer.AnalysisResult{}, "")

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Crash Log Report") {
		t.Error("Output missing header")
	}
	if !strings.Contains(output, "0 logs") {
		t.Error("Output missing summary")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"[WINDOWS] a.log",
		"Version: 1.34.0",
		"Commit:  abcdef1",
		"GPU:     NVIDIA RTX",
		"Reason:  Null pointer dereference",
		"Relevant frames (2):",
		"    hex::plugin::doStuff+0x10",
		"[UNKNOWN] b.log",
		"No crash found",
		"Error: opening log file d.log: permission denied",
		"Summary: 4 logs, 2 valid, 1 invalid, 1 failed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\n%s", want, output)
		}
	}

	// Verbose-only details
	if strings.Contains(output, "Crash signatures:") {
		t.Error("Non-verbose output should not list signatures")
	}
	if strings.Contains(output, "Stack:") {
		t.Error("Non-verbose output should not show the stack implementation")
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "crashlog: 4 logs, 2 valid, 1 invalid, 1 failed, 1 distinct crashes\n"
	if buf.String() != want {
		t.Errorf("Quiet output = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Crash signatures:",
		"2x hex::plugin::doStuff+0x10",
		"a.log, c.log",
		"Stack:   stacktrace",
		"Distinct crashes: 1",
		"Duration: 2s",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Verbose output missing %q", want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "text", false},
		{"text", "text", false},
		{"json", "json", false},
		{"embed", "embed", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.name, FormatOptions{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && f.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.want)
			}
		})
	}
}
