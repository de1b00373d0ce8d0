package board

import "strings"

// Board is an immutable rectangular circuit board with one start and one end cell.
//
// Boards are never modified in place. MarkTrace returns a new Board that shares
// every untouched row with its source, so rows must be treated as read-only.
type Board struct {
	cells [][]Cell
	start Position
	end   Position
}

// Rows returns the number of rows
func (b *Board) Rows() int {
	return len(b.cells)
}

// Cols returns the number of columns
func (b *Board) Cols() int {
	if len(b.cells) == 0 {
		return 0
	}
	return len(b.cells[0])
}

// Start returns the position of the '1' cell
func (b *Board) Start() Position {
	return b.start
}

// End returns the position of the '2' cell
func (b *Board) End() Position {
	return b.end
}

// CellAt returns the label at row, col. The caller guarantees the coordinates are in bounds.
func (b *Board) CellAt(row, col int) Cell {
	return b.cells[row][col]
}

// InBounds reports whether row, col lies on the board
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b.cells) && col >= 0 && col < len(b.cells[row])
}

// IsOpen reports whether row, col is an open cell. Out-of-bounds coordinates are never open.
func (b *Board) IsOpen(row, col int) bool {
	if !b.InBounds(row, col) {
		return false
	}
	return b.cells[row][col] == Open
}

// MarkTrace returns a copy of the board with row, col set to Trace.
// The receiver is left untouched.
func (b *Board) MarkTrace(row, col int) (*Board, error) {
	if !b.IsOpen(row, col) {
		occupied := &OccupiedError{Pos: Position{Row: row, Col: col}}
		if b.InBounds(row, col) {
			occupied.Cell = b.cells[row][col]
		}
		return nil, occupied
	}

	// Copy the outer slice and the one row that changes; other rows are shared.
	cells := make([][]Cell, len(b.cells))
	copy(cells, b.cells)
	rowCopy := make([]Cell, len(b.cells[row]))
	copy(rowCopy, b.cells[row])
	rowCopy[col] = Trace
	cells[row] = rowCopy

	return &Board{cells: cells, start: b.start, end: b.end}, nil
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]Cell, len(b.cells))
	for i, row := range b.cells {
		cells[i] = make([]Cell, len(row))
		copy(cells[i], row)
	}
	return &Board{cells: cells, start: b.start, end: b.end}
}

// Equal reports whether two boards have the same dimensions, terminals and labels
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.start != other.start || b.end != other.end || len(b.cells) != len(other.cells) {
		return false
	}
	for i := range b.cells {
		if string(b.cells[i]) != string(other.cells[i]) {
			return false
		}
	}
	return true
}

// Count returns how many cells carry the given label
func (b *Board) Count(cell Cell) int {
	count := 0
	for _, row := range b.cells {
		for _, c := range row {
			if c == cell {
				count++
			}
		}
	}
	return count
}

// TracedPositions returns every Trace cell in row-major order
func (b *Board) TracedPositions() []Position {
	var traced []Position
	for r, row := range b.cells {
		for c, cell := range row {
			if cell == Trace {
				traced = append(traced, Position{Row: r, Col: c})
			}
		}
	}
	return traced
}

// Lines renders each row as space-separated labels
func (b *Board) Lines() []string {
	lines := make([]string, len(b.cells))
	var sb strings.Builder
	for i, row := range b.cells {
		sb.Reset()
		for j, cell := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(byte(cell))
		}
		lines[i] = sb.String()
	}
	return lines
}

// String renders the board one row per line, the same way it is printed on the console
func (b *Board) String() string {
	var sb strings.Builder
	for _, line := range b.Lines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
