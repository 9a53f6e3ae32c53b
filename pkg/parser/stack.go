package parser

import "strings"

// exitMarkers end the stack trace; they are logged once the process terminates.
var exitMarkers = []string{"Exit task", "Aborted"}

// SegmentStack slices the crash reason and stack trace out of the lines that
// surround the crash marker. It returns false when the log has no crash marker.
func SegmentStack(m Markers) (Segment, bool) {
	crash := m.Index(MarkerCrash)
	if crash == NotFound {
		return Segment{}, false
	}

	lines := m.lines
	seg := Segment{CrashReason: Unknown}
	if crash > 0 {
		seg.CrashReason = lines[crash-1]
	}

	start := crash + 1
	if start < len(lines) && strings.Contains(lines[start], MarkerStackImpl.Phrase()) {
		seg.StackImplementation = implementationFrom(lines[start])
		start++
	}

	var stack []string
	if start < len(lines) {
		stack = lines[start:]
	}
	for i, line := range stack {
		if isExitLine(line) {
			stack = stack[:i]
			break
		}
	}

	seg.Stack = append([]string(nil), stack...)
	return seg, true
}

// implementationFrom handles "Printing stacktrace using implementation '<name>'".
func implementationFrom(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Trim(tokens[len(tokens)-1], `'"`)
}

func isExitLine(line string) bool {
	for _, marker := range exitMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
