package trace

import (
	"github.com/wricardo/circuit-tracer/circuit/board"
)

// PathState is one partial or complete path from the start cell.
//
// Each state owns its view of the board: the cells it has stepped on are
// marked Trace there and nowhere else. Boards are immutable, so sibling
// states may share untouched rows without seeing each other's marks.
type PathState struct {
	board  *board.Board
	head   board.Position
	length int
	route  []board.Position
}

// NewPathState builds the first state of a path whose head is row, col.
//
// The start cell itself gives a zero-length state. An open cell is traced and
// counts as the first step, and so does the end cell (which is never traced).
func NewPathState(b *board.Board, row, col int) (*PathState, error) {
	pos := board.Position{Row: row, Col: col}
	own := b.Clone()

	switch {
	case pos == own.Start():
		return &PathState{board: own, head: pos}, nil
	case pos == own.End():
		return &PathState{board: own, head: pos, length: 1, route: []board.Position{pos}}, nil
	}

	traced, err := own.MarkTrace(row, col)
	if err != nil {
		return nil, err
	}
	return &PathState{board: traced, head: pos, length: 1, route: []board.Position{pos}}, nil
}

// Branch returns a new state one step further, with row, col as its head.
// The target must be open in this state's board or be the end cell;
// anything else is an *board.OccupiedError.
func (s *PathState) Branch(row, col int) (*PathState, error) {
	pos := board.Position{Row: row, Col: col}

	next := s.board
	if pos != s.board.End() {
		traced, err := s.board.MarkTrace(row, col)
		if err != nil {
			return nil, err
		}
		next = traced
	}

	route := make([]board.Position, len(s.route), len(s.route)+1)
	copy(route, s.route)

	return &PathState{
		board:  next,
		head:   pos,
		length: s.length + 1,
		route:  append(route, pos),
	}, nil
}

// IsOpenFromHere reports whether row, col is open in this state's board
func (s *PathState) IsOpenFromHere(row, col int) bool {
	return s.board.IsOpen(row, col)
}

// CanReach reports whether Branch(row, col) would succeed
func (s *PathState) CanReach(row, col int) bool {
	return s.IsOpenFromHere(row, col) || (board.Position{Row: row, Col: col}) == s.board.End()
}

// IsSolution reports whether the head sits on the end cell
func (s *PathState) IsSolution() bool {
	return s.head == s.board.End()
}

// PathLength returns the number of steps taken from the start cell
func (s *PathState) PathLength() int {
	return s.length
}

// Row returns the head row
func (s *PathState) Row() int {
	return s.head.Row
}

// Col returns the head column
func (s *PathState) Col() int {
	return s.head.Col
}

// Head returns the head position
func (s *PathState) Head() board.Position {
	return s.head
}

// Board returns a copy of the state's board with its trace marks
func (s *PathState) Board() *board.Board {
	return s.board.Clone()
}

// Route returns the cells stepped onto, in order, excluding the start cell
func (s *PathState) Route() []board.Position {
	route := make([]board.Position, len(s.route))
	copy(route, s.route)
	return route
}

// String renders the traced board
func (s *PathState) String() string {
	return s.board.String()
}
