// Package analyzer parses batches of crash logs and groups them by crash site.
package analyzer

import (
	"sort"
	"time"

	"github.com/ccollicutt/crashlog/pkg/parser"
)

// FileResult is the outcome of analyzing one crash log.
type FileResult struct {
	// Source is the file path or upload name the log came from.
	Source string

	// Size is the number of bytes read.
	Size int64

	// Report is the parsed crash report. It is parser.InvalidReport() when Err is set.
	Report parser.Report

	// Log holds the bytes that were parsed. Only set when the analyzer
	// retains logs.
	Log []byte

	// Platform is the detected platform, or "unknown".
	Platform string

	// ParsedAt is when parsing finished.
	ParsedAt time.Time

	// Duration is how long reading and parsing took.
	Duration time.Duration

	// Err is set when the log could not be read.
	Err error
}

// Failed returns true if the log could not be read.
func (f *FileResult) Failed() bool {
	return f.Err != nil
}

// Valid returns true if the log was read and contained a crash marker.
func (f *FileResult) Valid() bool {
	return f.Err == nil && f.Report.Valid
}

// AnalysisResult contains the outcome of a batch.
type AnalysisResult struct {
	// Files holds one result per input, in input order.
	Files []*FileResult

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Sources lists the inputs that were analyzed.
	Sources []string

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// Group collects the valid reports that share a crash signature.
type Group struct {
	Signature string
	Count     int
	Sources   []string

	// Report is the first report seen with this signature.
	Report parser.Report
}

// ValidCount returns the number of logs that produced a valid report.
func (r *AnalysisResult) ValidCount() int {
	count := 0
	for _, f := range r.Files {
		if f.Valid() {
			count++
		}
	}
	return count
}

// InvalidCount returns the number of logs that were read but had no crash marker.
func (r *AnalysisResult) InvalidCount() int {
	count := 0
	for _, f := range r.Files {
		if !f.Failed() && !f.Report.Valid {
			count++
		}
	}
	return count
}

// FailedCount returns the number of logs that could not be read.
func (r *AnalysisResult) FailedCount() int {
	count := 0
	for _, f := range r.Files {
		if f.Failed() {
			count++
		}
	}
	return count
}

// Groups buckets valid reports by signature, most frequent first.
func (r *AnalysisResult) Groups() []Group {
	index := make(map[string]int)
	var groups []Group

	for _, f := range r.Files {
		if !f.Valid() {
			continue
		}
		sig := f.Report.Signature()
		i, ok := index[sig]
		if !ok {
			i = len(groups)
			index[sig] = i
			groups = append(groups, Group{Signature: sig, Report: f.Report})
		}
		groups[i].Count++
		groups[i].Sources = append(groups[i].Sources, f.Source)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Signature < groups[j].Signature
	})

	return groups
}
