package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultLogPattern selects crash logs inside directories passed as inputs.
const DefaultLogPattern = "*.log"

// ExpandInputs resolves files, directories and glob patterns into a sorted,
// deduplicated list of crash log paths. Directories contribute the files that
// match pattern (DefaultLogPattern when empty). Inputs that match nothing are
// returned as-is so the caller reports a precise file-not-found error.
func ExpandInputs(inputs []string, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultLogPattern
	}

	seen := make(map[string]bool)
	var result []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, input := range inputs {
		if info, err := os.Stat(input); err == nil && info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(input, pattern))
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, match := range matches {
				if isRegularFile(match) {
					add(match)
				}
			}
			continue
		}

		matches, err := filepath.Glob(input)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", input, err)
		}
		if len(matches) == 0 {
			add(input)
			continue
		}
		for _, match := range matches {
			if isRegularFile(match) {
				add(match)
			}
		}
	}

	sort.Strings(result)
	return result, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
