package parser

import "strings"

// BoundaryKind labels the kind of infrastructure frame that ends crash handling.
type BoundaryKind string

const (
	// BoundaryNone means no frame matched any rule.
	BoundaryNone BoundaryKind = "none"

	// BoundaryWindowsDispatch is the Windows exception dispatcher.
	BoundaryWindowsDispatch BoundaryKind = "windows-dispatch"

	// BoundaryAbortExit is a libc abort or exit call.
	BoundaryAbortExit BoundaryKind = "abort-exit"

	// BoundarySignalHandler is the in-process signal handler.
	BoundarySignalHandler BoundaryKind = "signal-handler"

	// BoundaryCrashHandler is the application's crash handler entry or setup.
	BoundaryCrashHandler BoundaryKind = "crash-handler"
)

// BoundaryRule recognizes one kind of infrastructure frame by its rendered text.
type BoundaryRule struct {
	Kind  BoundaryKind
	Match func(frame string) bool
}

// DefaultBoundaryRules returns the built-in rules in priority order.
// Frame text is matched case-sensitively, which is what mangled symbols need.
func DefaultBoundaryRules() []BoundaryRule {
	return []BoundaryRule{
		{Kind: BoundaryWindowsDispatch, Match: containsAny("RtlRaiseException", "KiUserExceptionDispatcher")},
		{Kind: BoundaryAbortExit, Match: containsAny("abort", "exit")},
		{Kind: BoundarySignalHandler, Match: containsAny("signal")},
		{Kind: BoundaryCrashHandler, Match: containsAll("hex", "crash")},
	}
}

// Classification is the outcome of searching a stack trace for the handler boundary.
type Classification struct {
	// Kind is the rule that identified the boundary frame.
	Kind BoundaryKind

	// Boundary is the forward index of the boundary frame, NotFound for an empty stack.
	Boundary int

	// Frames is the window of relevant frames, at most MaxRelevantFrames long.
	Frames []string
}

// Classify finds the handler boundary in stack using the default rules.
func Classify(stack []string) Classification {
	return ClassifyWith(stack, DefaultBoundaryRules())
}

// ClassifyWith finds the handler boundary in stack using rules in priority order.
//
// The stack is scanned from its end toward its start and the first frame that
// matches any rule is the boundary. The relevant window starts one frame after
// it. When nothing matches, the last frame is the boundary and the window is
// empty. When the very last frame already matches, the trace was printed with
// the capture point at the end: the trailing run of infrastructure frames is
// skipped and the window holds the frames right before it.
func ClassifyWith(stack []string, rules []BoundaryRule) Classification {
	n := len(stack)
	if n == 0 {
		return Classification{Kind: BoundaryNone, Boundary: NotFound, Frames: []string{}}
	}

	pos := NotFound
	kind := BoundaryNone
	for i := 0; i < n; i++ {
		if k, ok := matchFrame(stack[n-1-i], rules); ok {
			pos, kind = i, k
			break
		}
	}

	switch pos {
	case NotFound:
		return Classification{Kind: BoundaryNone, Boundary: n - 1, Frames: []string{}}

	case 0:
		start := n - 1
		for start > 0 {
			if _, ok := matchFrame(stack[start-1], rules); !ok {
				break
			}
			start--
		}
		k, _ := matchFrame(stack[start], rules)
		return Classification{
			Kind:     k,
			Boundary: start,
			Frames:   window(stack, max(0, start-MaxRelevantFrames), start),
		}

	default:
		boundary := n - 1 - pos
		return Classification{
			Kind:     kind,
			Boundary: boundary,
			Frames:   window(stack, boundary+1, boundary+1+MaxRelevantFrames),
		}
	}
}

// matchFrame returns the kind of the first rule that matches frame.
func matchFrame(frame string, rules []BoundaryRule) (BoundaryKind, bool) {
	for _, rule := range rules {
		if rule.Match(frame) {
			return rule.Kind, true
		}
	}
	return BoundaryNone, false
}

// window copies stack[from:to], clamped to the stack bounds.
func window(stack []string, from, to int) []string {
	from = min(max(from, 0), len(stack))
	to = min(max(to, from), len(stack))
	return append([]string{}, stack[from:to]...)
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func containsAll(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}
