package parser

import "strings"

// Marker identifies a kind of anchor line in a crash log.
type Marker int

const (
	MarkerWelcome Marker = iota
	MarkerCommit
	MarkerOS
	MarkerGPU
	MarkerCrash
	MarkerStackImpl

	markerCount
)

// NotFound is the index reported for a marker that does not appear in the log.
const NotFound = -1

// markerPhrases maps each marker to the substring that identifies its line.
var markerPhrases = [markerCount]string{
	MarkerWelcome:   "Welcome to ImHex",
	MarkerCommit:    "Compiled using commit",
	MarkerOS:        "Running on",
	MarkerGPU:       "Using '",
	MarkerCrash:     "Wrote crash.json file to",
	MarkerStackImpl: "Printing stacktrace using implementation",
}

// String returns the marker name used in logs and test output.
func (m Marker) String() string {
	switch m {
	case MarkerWelcome:
		return "welcome"
	case MarkerCommit:
		return "commit"
	case MarkerOS:
		return "os"
	case MarkerGPU:
		return "gpu"
	case MarkerCrash:
		return "crash"
	case MarkerStackImpl:
		return "stack-impl"
	default:
		return "unknown"
	}
}

// Phrase returns the substring that identifies the marker's line.
func (m Marker) Phrase() string {
	if m < 0 || m >= markerCount {
		return ""
	}
	return markerPhrases[m]
}

// Markers records the index of the first line matching each marker.
type Markers struct {
	index [markerCount]int
	lines []string
}

// LocateMarkers scans lines once per marker and records the first match of each.
// A missing marker is recorded as NotFound and does not affect the others.
func LocateMarkers(lines []string) Markers {
	m := Markers{lines: lines}
	for kind := Marker(0); kind < markerCount; kind++ {
		m.index[kind] = indexOf(lines, markerPhrases[kind])
	}
	return m
}

// Index returns the line index of the marker, or NotFound.
func (m Markers) Index(kind Marker) int {
	if kind < 0 || kind >= markerCount {
		return NotFound
	}
	return m.index[kind]
}

// Found reports whether the marker was located.
func (m Markers) Found(kind Marker) bool {
	return m.Index(kind) != NotFound
}

// Line returns the marker's line and whether it was found.
func (m Markers) Line(kind Marker) (string, bool) {
	i := m.Index(kind)
	if i == NotFound || i >= len(m.lines) {
		return "", false
	}
	return m.lines[i], true
}

func indexOf(lines []string, phrase string) int {
	for i, line := range lines {
		if strings.Contains(line, phrase) {
			return i
		}
	}
	return NotFound
}
