// Package output provides formatting and output generation for crash reports.
package output

import (
	"time"

	"github.com/ccollicutt/crashlog/pkg/analyzer"
	"github.com/ccollicutt/crashlog/pkg/parser"
)

// Report is one parsed crash log together with where it came from.
type Report struct {
	// Crash is the parsed crash report.
	Crash parser.Report `json:"report"`

	// Metadata provides context about the log.
	Metadata Metadata `json:"metadata"`
}

// Metadata describes the crash log a Report was built from.
type Metadata struct {
	// Source is the file path or upload name.
	Source string `json:"source"`

	// Size is the log size in bytes.
	Size int64 `json:"size"`

	// Platform is the detected platform.
	Platform string `json:"platform"`

	// ParsedAt is when the log was parsed.
	ParsedAt time.Time `json:"parsed_at"`

	// Duration is how long reading and parsing took.
	Duration time.Duration `json:"duration"`

	// Error is set when the log could not be read.
	Error string `json:"error,omitempty"`
}

// NewReport creates a Report from a single analysis result.
func NewReport(fr *analyzer.FileResult) *Report {
	r := &Report{
		Crash: fr.Report,
		Metadata: Metadata{
			Source:   fr.Source,
			Size:     fr.Size,
			Platform: fr.Platform,
			ParsedAt: fr.ParsedAt,
			Duration: fr.Duration,
		},
	}
	if fr.Err != nil {
		r.Metadata.Error = fr.Err.Error()
	}
	return r
}

// Valid returns true if the log was read and holds a crash.
func (r *Report) Valid() bool {
	return r.Metadata.Error == "" && r.Crash.Valid
}

// BatchReport is the complete output of a batch run.
type BatchReport struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Reports holds one entry per input, in input order.
	Reports []*Report `json:"reports"`

	// Groups lists distinct crash sites, most frequent first.
	Groups []Group `json:"groups,omitempty"`

	// Metadata provides context about the run.
	Metadata BatchMetadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Logs       int `json:"logs"`
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Failed     int `json:"failed"`
	Signatures int `json:"signatures"`
}

// Group is a crash site shared by several logs.
type Group struct {
	Signature string   `json:"signature"`
	Count     int      `json:"count"`
	Sources   []string `json:"sources"`
}

// BatchMetadata provides context about the run.
type BatchMetadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// AnalyzedAt is when the batch finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the batch took.
	Duration time.Duration `json:"duration"`
}

// NewBatchReport creates a BatchReport from analysis results.
func NewBatchReport(result *analyzer.AnalysisResult, configFile string) *BatchReport {
	report := &BatchReport{
		Reports: make([]*Report, 0, len(result.Files)),
		Metadata: BatchMetadata{
			ConfigFile: configFile,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			Logs:    len(result.Files),
			Valid:   result.ValidCount(),
			Invalid: result.InvalidCount(),
			Failed:  result.FailedCount(),
		},
	}

	for _, fr := range result.Files {
		report.Reports = append(report.Reports, NewReport(fr))
	}

	for _, g := range result.Groups() {
		report.Groups = append(report.Groups, Group{
			Signature: g.Signature,
			Count:     g.Count,
			Sources:   g.Sources,
		})
	}
	report.Summary.Signatures = len(report.Groups)

	return report
}

// HasInvalid returns true if any log was unreadable or held no crash.
func (b *BatchReport) HasInvalid() bool {
	return b.Summary.Invalid > 0 || b.Summary.Failed > 0
}
