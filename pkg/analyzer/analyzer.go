package analyzer

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/crashlog/pkg/config"
	"github.com/ccollicutt/crashlog/pkg/detector"
	"github.com/ccollicutt/crashlog/pkg/parser"
)

// Analyzer reads, parses and classifies crash logs.
type Analyzer struct {
	workers  int
	maxSize  int64
	detector *detector.Detector
	logger   *zap.Logger
	keepLogs bool
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithWorkers sets how many logs are parsed at once.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithMaxLogSize sets the largest log, in bytes, that will be read.
func WithMaxLogSize(n int64) AnalyzerOption {
	return func(a *Analyzer) {
		a.maxSize = n
	}
}

// WithDetector replaces the platform detector.
func WithDetector(d *detector.Detector) AnalyzerOption {
	return func(a *Analyzer) {
		a.detector = d
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *zap.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRetainLogs keeps the parsed bytes on each FileResult so they can be
// forwarded without reading the source again.
func WithRetainLogs(keep bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.keepLogs = keep
	}
}

// NewAnalyzer creates a new analyzer from configuration. A nil cfg uses the defaults.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	a := &Analyzer{
		workers:  cfg.Limits.Workers,
		maxSize:  cfg.Limits.MaxLogSize,
		detector: detector.New(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", a.workers)
	}

	return a, nil
}

// Analyze parses every file concurrently. Unreadable files are recorded in
// their FileResult and do not stop the batch; only cancellation does.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*AnalysisResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no crash logs to analyze")
	}

	result := &AnalysisResult{
		Files: make([]*FileResult, len(files)),
		Metadata: AnalysisMetadata{
			Sources:   files,
			StartTime: time.Now(),
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Files[i] = a.AnalyzeFile(gctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing crash logs: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyzing crash logs: %w", err)
	}

	result.Metadata.EndTime = time.Now()

	return result, nil
}

// AnalyzeFile reads and parses a single file. A cancelled ctx is recorded as
// the file's error.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) *FileResult {
	start := time.Now()

	raw, err := parser.ReadLog(path, a.maxSize)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		a.logger.Warn("skipping crash log", zap.String("source", path), zap.Error(err))
		return &FileResult{
			Source:   path,
			Report:   parser.InvalidReport(),
			Platform: "unknown",
			ParsedAt: time.Now(),
			Duration: time.Since(start),
			Err:      err,
		}
	}

	return a.analyze(path, raw, start)
}

// AnalyzeReader reads a crash log from r and parses it. Read failures,
// including parser.ErrLogTooLarge, are returned as errors.
func (a *Analyzer) AnalyzeReader(ctx context.Context, source string, r io.Reader) (*FileResult, error) {
	start := time.Now()

	raw, err := parser.ReadLogFrom(r, a.maxSize)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.analyze(source, raw, start), nil
}

func (a *Analyzer) analyze(source, raw string, start time.Time) *FileResult {
	lines := parser.Normalize(raw)
	report := parser.ParseLines(lines)
	platform := a.detector.DetectFromLines(lines).Platform()

	fr := &FileResult{
		Source:   source,
		Size:     int64(len(raw)),
		Report:   report,
		Platform: platform,
		ParsedAt: time.Now(),
	}
	fr.Duration = fr.ParsedAt.Sub(start)
	if a.keepLogs {
		fr.Log = []byte(raw)
	}

	a.logger.Debug("parsed crash log",
		zap.String("source", source),
		zap.Bool("valid", report.Valid),
		zap.String("platform", platform),
		zap.Int("frames", len(report.RelevantFrames)),
		zap.Duration("duration", fr.Duration),
	)

	return fr
}
