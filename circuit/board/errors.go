package board

import (
	"errors"
	"fmt"
)

var (
	ErrFormat     = errors.New("invalid board format")
	ErrFileAccess = errors.New("board file not accessible")
	ErrOccupied   = errors.New("position occupied")
)

// FormatError reports malformed layout text. Line is 1-based; 0 means the
// problem is not tied to a single line (for example a missing start marker).
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", ErrFormat, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrFormat, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

func formatErrorf(line int, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// FileAccessError reports a board file that could not be opened or read
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFileAccess, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying os error, so
// errors.Is(err, fs.ErrNotExist) keeps working.
func (e *FileAccessError) Unwrap() []error { return []error{ErrFileAccess, e.Err} }

// OccupiedError reports an attempt to trace a cell that is not open.
// It signals a caller bug: callers must check IsOpen first.
type OccupiedError struct {
	Pos  Position
	Cell Cell
}

func (e *OccupiedError) Error() string {
	if e.Cell == 0 {
		return fmt.Sprintf("%s: %s is outside the board", ErrOccupied, e.Pos)
	}
	return fmt.Sprintf("%s: %s contains '%s'", ErrOccupied, e.Pos, e.Cell)
}

func (e *OccupiedError) Unwrap() error { return ErrOccupied }
