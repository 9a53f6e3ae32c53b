// Package detector guesses which platform produced a crash log.
package detector

import (
	"context"
	"sort"
	"strings"

	"github.com/ccollicutt/crashlog/pkg/parser"
)

// DetectionResult holds the result of analyzing a crash log.
type DetectionResult struct {
	Matches       []PlatformMatch // Platforms that matched, sorted by score descending
	SampledLines  int             // Number of lines examined
	MatchedLines  int             // Number of lines that hit at least one signature
	AmbiguityNote string          // Set when the top platforms are tied
}

// PlatformMatch is one platform's share of the signature hits.
type PlatformMatch struct {
	Platform   Platform
	Score      int      // Sum of the weights of every hit
	Confidence float64  // 0.0 to 1.0 (share of the total score)
	Signatures []string // Names of the signatures that hit, in table order
	SampleLine string   // First line that hit
}

// Detector scores crash log lines against platform signatures.
type Detector struct {
	signatures []*Signature
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize limits detection to the first n lines (default: all lines).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithSignatures replaces the built-in signature table.
func WithSignatures(signatures []*Signature) Option {
	return func(d *Detector) {
		d.signatures = signatures
	}
}

// New creates a new Detector with the default signatures.
func New(opts ...Option) *Detector {
	d := &Detector{
		signatures: DefaultSignatures(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile reads and normalizes a crash log, then detects its platform.
func (d *Detector) DetectFromFile(_ context.Context, path string, maxSize int64) (*DetectionResult, error) {
	raw, err := parser.ReadLog(path, maxSize)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(parser.Normalize(raw)), nil
}

// DetectFromLines scores normalized log lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	if d.sampleSize > 0 && len(lines) > d.sampleSize {
		lines = lines[:d.sampleSize]
	}

	result := &DetectionResult{
		SampledLines: len(lines),
	}

	stats := make(map[Platform]*PlatformMatch)
	hit := make(map[Platform]map[string]bool)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matched := false
		for _, sig := range d.signatures {
			if !sig.Pattern.MatchString(line) {
				continue
			}
			matched = true

			m := stats[sig.Platform]
			if m == nil {
				m = &PlatformMatch{Platform: sig.Platform, SampleLine: line}
				stats[sig.Platform] = m
				hit[sig.Platform] = make(map[string]bool)
			}
			m.Score += sig.Weight
			hit[sig.Platform][sig.Name] = true
		}
		if matched {
			result.MatchedLines++
		}
	}

	total := 0
	for _, m := range stats {
		total += m.Score
	}

	for platform, m := range stats {
		for _, sig := range d.signatures {
			if sig.Platform == platform && hit[platform][sig.Name] {
				m.Signatures = append(m.Signatures, sig.Name)
			}
		}
		if total > 0 {
			m.Confidence = float64(m.Score) / float64(total)
		}
		result.Matches = append(result.Matches, *m)
	}

	// Sort by score descending, then by name for a deterministic order
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].Score != result.Matches[j].Score {
			return result.Matches[i].Score > result.Matches[j].Score
		}
		return result.Matches[i].Platform < result.Matches[j].Platform
	})

	if len(result.Matches) > 1 && result.Matches[0].Score == result.Matches[1].Score {
		result.AmbiguityNote = "Signatures for " + string(result.Matches[0].Platform) + " and " +
			string(result.Matches[1].Platform) + " scored equally; check the OS banner of the log."
	}

	return result
}

// BestMatch returns the highest scoring platform, or nil if nothing matched.
func (r *DetectionResult) BestMatch() *PlatformMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one signature matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Platform returns the best matching platform, or "unknown".
func (r *DetectionResult) Platform() string {
	if best := r.BestMatch(); best != nil {
		return string(best.Platform)
	}
	return "unknown"
}
