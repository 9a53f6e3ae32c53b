package parser

import "strings"

// ExtractFields pulls version, commit, OS and GPU from the banner lines.
// Every missing or unusable banner yields Unknown; extraction never fails.
func ExtractFields(m Markers) Fields {
	return Fields{
		Version: fieldOrUnknown(m, MarkerWelcome, versionFrom),
		Commit:  fieldOrUnknown(m, MarkerCommit, commitFrom),
		OS:      fieldOrUnknown(m, MarkerOS, osFrom),
		GPU:     fieldOrUnknown(m, MarkerGPU, gpuFrom),
	}
}

// fieldOrUnknown looks up a banner and applies extract to it. It is the only
// place Unknown is substituted for banner fields.
func fieldOrUnknown(m Markers, kind Marker, extract func(string) string) string {
	line, ok := m.Line(kind)
	if !ok {
		return Unknown
	}
	if v := extract(line); v != "" {
		return v
	}
	return Unknown
}

// versionFrom handles "Welcome to ImHex 1.34.0!".
func versionFrom(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ""
	}
	return strings.TrimSuffix(tokens[len(tokens)-1], "!")
}

// commitFrom handles "Compiled using commit <branch>@<hash>" and returns the hash.
func commitFrom(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) < 4 {
		return ""
	}
	ref := tokens[3]
	if at := strings.LastIndexByte(ref, '@'); at >= 0 {
		return ref[at+1:]
	}
	return ref
}

// osFrom handles "Running on <os description>".
func osFrom(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return ""
	}
	return strings.Join(tokens[2:], " ")
}

// gpuFrom handles "Using '<gpu name>' GPU". Names may contain spaces, so the
// quoted span is preferred over the second token.
func gpuFrom(line string) string {
	if start := strings.IndexByte(line, '\''); start >= 0 {
		if end := strings.IndexByte(line[start+1:], '\''); end > 0 {
			return strings.TrimSpace(line[start+1 : start+1+end])
		}
	}

	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return ""
	}
	return strings.ReplaceAll(tokens[1], "'", "")
}
