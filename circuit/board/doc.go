// Package board provides the circuit board model for the circuit tracer.
//
// The board package implements:
//   - Parsing a board from its textual layout (header plus grid)
//   - Validation of dimensions, labels and terminal counts
//   - Out-of-bounds-safe open-cell checks
//   - Copy-on-write trace marking
//   - Breadth-first hop distance between the two terminals
//
// Layout Format:
//
//	<rows> <cols>
//	1 O X
//	O O O
//	X O 2
//
// Labels are O (open), X (blocked), 1 (start), 2 (end). T (trace) is
// reserved for output and rejected in input.
//
// Usage:
//
//	b, err := board.Load("boards/grid1.dat")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if b.IsOpen(0, 1) {
//		traced, _ := b.MarkTrace(0, 1)
//		fmt.Print(traced)
//	}
//
// Errors:
//
// Parse failures are *FormatError, unreadable files are *FileAccessError and
// tracing a non-open cell is *OccupiedError. Each unwraps to the matching
// sentinel (ErrFormat, ErrFileAccess, ErrOccupied) for use with errors.Is.
package board
