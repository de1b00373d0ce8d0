package service

import (
	"time"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/trace"
)

// LayoutBoardName names boards traced from inline layout text
const LayoutBoardName = "layout"

// Solution is one shortest path
type Solution struct {
	Length int              `json:"length"`
	Route  []board.Position `json:"route"`
	Grid   []string         `json:"grid"`
}

// TraceSummary is the transport-friendly outcome of a search
type TraceSummary struct {
	RunID          string            `json:"run_id"`
	Board          string            `json:"board"`
	Storage        trace.StorageKind `json:"storage"`
	Rows           int               `json:"rows"`
	Cols           int               `json:"cols"`
	Start          board.Position    `json:"start"`
	End            board.Position    `json:"end"`
	Layout         []string          `json:"layout"`
	Found          bool              `json:"found"`
	ShortestLength int               `json:"shortest_length"`
	SolutionCount  int               `json:"solution_count"`
	Solutions      []Solution        `json:"solutions"`
	Stats          trace.Stats       `json:"stats"`
}

// NewTraceSummary converts a search result for the given board
func NewTraceSummary(name string, b *board.Board, result *trace.Result) *TraceSummary {
	summary := &TraceSummary{
		Board:          name,
		Storage:        result.Storage,
		Rows:           b.Rows(),
		Cols:           b.Cols(),
		Start:          b.Start(),
		End:            b.End(),
		Layout:         b.Lines(),
		Found:          result.Found(),
		ShortestLength: result.Shortest(),
		SolutionCount:  len(result.Solutions),
		Solutions:      make([]Solution, 0, len(result.Solutions)),
		Stats:          result.Stats,
	}

	for _, path := range result.Solutions {
		summary.Solutions = append(summary.Solutions, Solution{
			Length: path.PathLength(),
			Route:  path.Route(),
			Grid:   path.Board().Lines(),
		})
	}
	return summary
}

// BoardDetail is a catalog entry with its rendered layout
type BoardDetail struct {
	*config.BoardInfo
	Layout           []string `json:"layout"`
	Reachable        bool     `json:"reachable"`
	ShortestDistance int      `json:"shortest_distance"`
}

// RunInfo describes a stored run. Summary is only filled for single-run lookups.
type RunInfo struct {
	ID             string            `json:"id"`
	Board          string            `json:"board"`
	Storage        trace.StorageKind `json:"storage"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	ShortestLength int               `json:"shortest_length"`
	SolutionCount  int               `json:"solution_count"`
	Summary        *TraceSummary     `json:"summary,omitempty"`
}

func newRunInfo(run *Run, withSummary bool) *RunInfo {
	info := &RunInfo{
		ID:             run.ID,
		Board:          run.Board,
		Storage:        run.Storage,
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}
	if run.Summary != nil {
		info.ShortestLength = run.Summary.ShortestLength
		info.SolutionCount = run.Summary.SolutionCount
		if withSummary {
			info.Summary = run.Summary
		}
	}
	return info
}
