package parser

import "strings"

// prefixBrackets is the number of bracketed tags in a structured log prefix:
// [timestamp] [level] [thread].
const prefixBrackets = 3

// Normalize splits a raw log into lines and strips the structural prefix from each.
//
// Everything up to and including the third closing bracket found at or after the
// second character is removed. When only two closing brackets exist the cut is made
// after the second one. Lines with fewer than two closing brackets, or shorter than
// two characters, are kept as they are. Lines that are empty after trimming are
// dropped; the order of the remaining lines is preserved.
func Normalize(raw string) []string {
	rawLines := strings.Split(raw, "\n")
	lines := make([]string, 0, len(rawLines))

	for _, line := range rawLines {
		line = strings.TrimSpace(stripPrefix(line))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// stripPrefix removes the bracketed prefix from a single line.
func stripPrefix(line string) string {
	if len(line) < 2 {
		return line
	}

	cut := -1
	found := 0
	// Start at index 1 so a message that itself opens with ']' is not counted.
	for i := 1; i < len(line) && found < prefixBrackets; i++ {
		if line[i] == ']' {
			found++
			cut = i
		}
	}

	if found < 2 {
		return line
	}
	return line[cut+1:]
}
