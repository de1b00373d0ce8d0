package board

import "fmt"

// Cell is a single board label
type Cell byte

const (
	Open    Cell = 'O'
	Blocked Cell = 'X'
	Trace   Cell = 'T'
	Start   Cell = '1'
	End     Cell = '2'
)

// allowedInput lists the labels accepted in a layout file. Trace is output only.
const allowedInput = "OX12"

// String returns the single-character label
func (c Cell) String() string {
	return string(rune(c))
}

// Valid reports whether c is one of the five board labels
func (c Cell) Valid() bool {
	switch c {
	case Open, Blocked, Trace, Start, End:
		return true
	}
	return false
}

// Position represents row,col coordinates
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Neighbors returns the four axis-aligned neighbors in up, down, left, right order.
// Coordinates may fall outside the board; IsOpen treats those as closed.
func (p Position) Neighbors() [4]Position {
	return [4]Position{
		{Row: p.Row - 1, Col: p.Col}, // up
		{Row: p.Row + 1, Col: p.Col}, // down
		{Row: p.Row, Col: p.Col - 1}, // left
		{Row: p.Row, Col: p.Col + 1}, // right
	}
}

// Adjacent reports whether q is one orthogonal step away from p
func (p Position) Adjacent(q Position) bool {
	return ManhattanDistance(p, q) == 1
}
