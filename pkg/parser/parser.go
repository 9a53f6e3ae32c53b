package parser

// shortStack is the stack length below which the classifier is skipped and the
// whole stack is reported as relevant.
const shortStack = 3

// Parse runs the full pipeline over a raw crash log and returns its report.
// A log without a crash marker yields InvalidReport().
func Parse(raw string) Report {
	return ParseLines(Normalize(raw))
}

// ParseLines runs the pipeline over lines that were already normalized.
func ParseLines(lines []string) Report {
	markers := LocateMarkers(lines)

	seg, ok := SegmentStack(markers)
	if !ok {
		return InvalidReport()
	}

	fields := ExtractFields(markers)

	var frames []string
	if len(seg.Stack) < shortStack {
		frames = append([]string{}, seg.Stack...)
	} else {
		frames = Classify(seg.Stack).Frames
	}

	return Report{
		Version:             fields.Version,
		Commit:              fields.Commit,
		OS:                  fields.OS,
		GPU:                 fields.GPU,
		StackImplementation: seg.StackImplementation,
		CrashReason:         seg.CrashReason,
		RelevantFrames:      frames,
		Valid:               true,
	}
}

// InvalidReport returns the report of a log that holds no crash. Every field
// is empty and RelevantFrames is an empty, non-nil slice.
func InvalidReport() Report {
	return Report{RelevantFrames: []string{}}
}

// Signature returns a short key identifying the crash site, used to group
// reports of the same crash. Invalid reports have no signature.
func (r Report) Signature() string {
	if !r.Valid {
		return ""
	}
	if len(r.RelevantFrames) > 0 {
		return r.RelevantFrames[0]
	}
	return r.CrashReason
}
