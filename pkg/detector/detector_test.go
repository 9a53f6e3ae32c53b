package detector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/crashlog/pkg/parser"
)

func TestDetector_DetectFromLines_Windows(t *testing.T) {
	lines := []string{
		"Welcome to ImHex 1.34.0!",
		"Running on Windows 11 Pro",
		"Wrote crash.json file to C:/imhex/crash.json",
		"KiUserExceptionDispatcher+0x2e",
		"ntdll.dll!RtlRaiseException",
		"imhex.exe!main",
	}

	d := New()
	result := d.DetectFromLines(lines)

	if !result.HasMatch() {
		t.Fatal("Expected to detect a platform")
	}

	best := result.BestMatch()
	if best.Platform != PlatformWindows {
		t.Errorf("Expected windows, got %s", best.Platform)
	}
	if best.Score != 18 {
		t.Errorf("Expected score 18, got %d", best.Score)
	}
	if best.Confidence != 1.0 {
		t.Errorf("Expected 100%% confidence, got %.1f%%", best.Confidence*100)
	}
	if best.SampleLine != "Running on Windows 11 Pro" {
		t.Errorf("Unexpected sample line %q", best.SampleLine)
	}
	if result.MatchedLines != 4 {
		t.Errorf("Expected 4 matched lines, got %d", result.MatchedLines)
	}
	if len(best.Signatures) != 3 {
		t.Errorf("Expected 3 signatures to hit, got %v", best.Signatures)
	}
}

func TestDetector_DetectFromLines_Linux(t *testing.T) {
	lines := []string{
		"Running on Linux 6.5.0-arch1",
		"__restore_rt",
		"/usr/lib/libc.so.6(__libc_start_main+0x80)",
	}

	d := New()
	result := d.DetectFromLines(lines)

	best := result.BestMatch()
	if best == nil {
		t.Fatal("Expected to detect a platform")
	}
	if best.Platform != PlatformLinux {
		t.Errorf("Expected linux, got %s", best.Platform)
	}
	if best.Score != 17 {
		t.Errorf("Expected score 17, got %d", best.Score)
	}
	if result.Platform() != "linux" {
		t.Errorf("Expected Platform() linux, got %s", result.Platform())
	}
}

func TestDetector_DetectFromLines_MacOS(t *testing.T) {
	lines := []string{
		"Running on macOS 14.2",
		"_sigtramp+0x1c",
		"/usr/lib/system/libsystem_c.dylib(abort+0x84)",
	}

	result := New().DetectFromLines(lines)

	best := result.BestMatch()
	if best == nil || best.Platform != PlatformMacOS {
		t.Fatalf("Expected macos, got %+v", best)
	}
}

func TestDetector_DetectFromLines_BannerOutweighsFrames(t *testing.T) {
	lines := []string{
		"Running on Linux 6.5",
		"wine/ntdll.dll",
		"wine/kernel32.dll",
		"KiUserExceptionDispatcher",
	}

	result := New().DetectFromLines(lines)

	if got := result.Platform(); got != "linux" {
		t.Errorf("Expected linux, got %s", got)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("Expected 2 platforms, got %d", len(result.Matches))
	}
	if result.Matches[0].Score < result.Matches[1].Score {
		t.Error("Expected matches sorted by score descending")
	}
	sum := result.Matches[0].Confidence + result.Matches[1].Confidence
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("Expected confidences to sum to 1, got %f", sum)
	}
}

func TestDetector_DetectFromLines_NoMatch(t *testing.T) {
	lines := []string{
		"Welcome to ImHex 1.34.0!",
		"Wrote crash.json file to crash.json",
		"hex::plugin::doStuff+0x10",
	}

	result := New().DetectFromLines(lines)

	if result.HasMatch() {
		t.Errorf("Expected no match, got %+v", result.Matches)
	}
	if result.BestMatch() != nil {
		t.Error("Expected nil best match")
	}
	if result.Platform() != "unknown" {
		t.Errorf("Expected unknown, got %s", result.Platform())
	}
}

func TestDetector_DetectFromLines_EmptyInput(t *testing.T) {
	result := New().DetectFromLines(nil)

	if result.HasMatch() {
		t.Error("Expected no match for empty input")
	}
	if result.SampledLines != 0 {
		t.Errorf("Expected 0 sampled lines, got %d", result.SampledLines)
	}
}

func TestDetector_DetectFromLines_Ambiguous(t *testing.T) {
	lines := []string{
		"plugins/builtin.dll",
		"plugins/builtin.so",
	}

	result := New().DetectFromLines(lines)

	if result.AmbiguityNote == "" {
		t.Error("Expected an ambiguity note for a tie")
	}
	// Ties are broken by platform name
	if got := result.Platform(); got != "linux" {
		t.Errorf("Expected linux on tie, got %s", got)
	}
}

func TestDetector_WithSampleSize(t *testing.T) {
	lines := []string{"one", "two", "Running on Linux"}

	d := New(WithSampleSize(2))
	if d.sampleSize != 2 {
		t.Errorf("Expected sample size 2, got %d", d.sampleSize)
	}

	result := d.DetectFromLines(lines)
	if result.SampledLines != 2 {
		t.Errorf("Expected 2 sampled lines, got %d", result.SampledLines)
	}
	if result.HasMatch() {
		t.Error("Expected banner outside the sample to be ignored")
	}
}

func TestDetector_WithSampleSize_Invalid(t *testing.T) {
	d := New(WithSampleSize(-1))
	if d.sampleSize != 0 {
		t.Errorf("Expected unlimited sample size, got %d", d.sampleSize)
	}
}

func TestDetector_WithSignatures(t *testing.T) {
	custom := DefaultSignatures()[:1]
	d := New(WithSignatures(custom))

	result := d.DetectFromLines([]string{"Running on Linux", "Running on Windows 10"})
	if got := result.Platform(); got != "windows" {
		t.Errorf("Expected windows, got %s", got)
	}
	if len(result.Matches) != 1 {
		t.Errorf("Expected only the custom signature to match, got %d", len(result.Matches))
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "crash.log")

	content := `[12:00:00] [INFO] [main] Welcome to ImHex 1.34.0!
[12:00:00] [INFO] [main] Running on Linux 6.5.0
[12:00:01] [FATAL] [main] Wrote crash.json file to /tmp/crash.json
[12:00:01] [FATAL] [main] __restore_rt
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	d := New()
	result, err := d.DetectFromFile(context.Background(), tmpFile, 0)
	if err != nil {
		t.Fatalf("DetectFromFile failed: %v", err)
	}

	best := result.BestMatch()
	if best == nil || best.Platform != PlatformLinux {
		t.Fatalf("Expected linux, got %+v", best)
	}
	if strings.HasPrefix(best.SampleLine, "[") {
		t.Errorf("Expected normalized sample line, got %q", best.SampleLine)
	}
}

func TestDetector_DetectFromFile_TooLarge(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "crash.log")
	if err := os.WriteFile(tmpFile, []byte(strings.Repeat("x", 64)), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	_, err := New().DetectFromFile(context.Background(), tmpFile, 16)
	if !errors.Is(err, parser.ErrLogTooLarge) {
		t.Errorf("Expected ErrLogTooLarge, got %v", err)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	d := New()
	_, err := d.DetectFromFile(context.Background(), "/nonexistent/crash.log", 0)
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestDefaultSignatures(t *testing.T) {
	signatures := DefaultSignatures()

	platforms := make(map[Platform]int)
	for _, s := range signatures {
		if s.Pattern == nil {
			t.Errorf("Signature %q has no compiled pattern", s.Name)
		}
		if s.Weight <= 0 {
			t.Errorf("Signature %q has non-positive weight", s.Name)
		}
		platforms[s.Platform]++
	}

	for _, p := range []Platform{PlatformWindows, PlatformLinux, PlatformMacOS} {
		if platforms[p] == 0 {
			t.Errorf("No signatures for %s", p)
		}
	}
}
