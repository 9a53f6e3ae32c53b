// Package parser turns raw crash-handler logs into bounded crash reports.
//
// Parsing is a forward pipeline of pure stages: Normalize, LocateMarkers,
// ExtractFields, SegmentStack and Classify. Parse runs all of them and builds
// the Report. Nothing in this package keeps state between calls, so Parse is
// safe to call from multiple goroutines.
package parser

// Unknown is substituted for any informational field whose banner is missing.
const Unknown = "Unknown"

// MaxRelevantFrames bounds the number of frames kept in Report.RelevantFrames.
const MaxRelevantFrames = 10

// Report is the result of parsing one crash log.
//
// Consumers must check Valid before using any other field. An invalid report
// is the zero value: no field is populated and RelevantFrames is empty.
type Report struct {
	// Version is the application version from the welcome banner.
	Version string `json:"version"`

	// Commit is the commit hash from the commit banner.
	Commit string `json:"commit"`

	// OS is the operating system description from the OS banner.
	OS string `json:"os"`

	// GPU is the GPU name from the GPU banner.
	GPU string `json:"gpu"`

	// StackImplementation names the stack printer, empty when not reported.
	StackImplementation string `json:"stack_implementation,omitempty"`

	// CrashReason is the line logged right before the crash marker.
	CrashReason string `json:"crash_reason"`

	// RelevantFrames is the bounded window of frames around the fault site.
	RelevantFrames []string `json:"relevant_frames"`

	// Valid is true only if a crash marker was found.
	Valid bool `json:"valid"`
}

// Fields holds the informational fields pulled from banner lines.
type Fields struct {
	Version string
	Commit  string
	OS      string
	GPU     string
}

// Segment is the part of the log that follows the crash marker.
type Segment struct {
	// CrashReason is the line immediately preceding the crash marker.
	CrashReason string

	// StackImplementation is set when the implementation banner directly follows the marker.
	StackImplementation string

	// Stack holds the frames between the marker and the first process-exit line.
	Stack []string
}
