package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrLogTooLarge is returned when a log exceeds the configured size limit.
var ErrLogTooLarge = errors.New("log exceeds size limit")

// ReadLog reads a crash log file, refusing files larger than maxSize bytes.
// A maxSize of zero or less disables the limit.
func ReadLog(path string, maxSize int64) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return "", fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	raw, err := ReadLogFrom(f, maxSize)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

// ReadLogFrom reads a crash log from r, refusing input larger than maxSize bytes.
// The limit is checked before any parsing happens so that oversized uploads
// cost at most maxSize+1 bytes of memory.
func ReadLogFrom(r io.Reader, maxSize int64) (string, error) {
	if maxSize <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w (%d bytes)", ErrLogTooLarge, maxSize)
	}
	return string(data), nil
}
