package detector

import "regexp"

// Platform is the operating system a crash log was produced on.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "macos"
)

// Signature is a piece of log text that points to one platform.
type Signature struct {
	Name       string         // Human-readable name
	Platform   Platform       // Platform the signature indicates
	Pattern    *regexp.Regexp // Compiled regex (set by DefaultSignatures)
	PatternStr string         // Pattern source
	Weight     int            // Score added for every matching line
}

// DefaultSignatures returns the built-in platform signatures.
// Banner lines are weighted far above frame hints because they are authoritative.
func DefaultSignatures() []*Signature {
	signatures := []*Signature{
		{
			Name:       "Windows OS banner",
			Platform:   PlatformWindows,
			PatternStr: `Running on Windows`,
			Weight:     10,
		},
		{
			Name:       "Windows exception dispatch",
			Platform:   PlatformWindows,
			PatternStr: `KiUserExceptionDispatcher|RtlRaiseException|RtlUserThreadStart|BaseThreadInitThunk`,
			Weight:     3,
		},
		{
			Name:       "Windows module",
			Platform:   PlatformWindows,
			PatternStr: `(?i)\.(dll|exe)\b`,
			Weight:     1,
		},
		{
			Name:       "Linux OS banner",
			Platform:   PlatformLinux,
			PatternStr: `Running on Linux`,
			Weight:     10,
		},
		{
			Name:       "glibc signal frames",
			Platform:   PlatformLinux,
			PatternStr: `__restore_rt|__libc_start_main|__GI_raise|__pthread_kill`,
			Weight:     3,
		},
		{
			Name:       "Shared object",
			Platform:   PlatformLinux,
			PatternStr: `\.so(\.\d+)*\b`,
			Weight:     1,
		},
		{
			Name:       "macOS OS banner",
			Platform:   PlatformMacOS,
			PatternStr: `Running on (macOS|Mac OS|Darwin)`,
			Weight:     10,
		},
		{
			Name:       "Darwin signal frames",
			Platform:   PlatformMacOS,
			PatternStr: `_sigtramp|libsystem_\w+`,
			Weight:     3,
		},
		{
			Name:       "Dynamic library",
			Platform:   PlatformMacOS,
			PatternStr: `\.dylib\b`,
			Weight:     1,
		},
	}

	for _, s := range signatures {
		s.Pattern = regexp.MustCompile(s.PatternStr)
	}

	return signatures
}
