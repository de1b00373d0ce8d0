package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/trace"
)

var (
	ErrRunNotFound    = errors.New("run not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// TraceService defines all tracer operations
type TraceService interface {
	// Tracing
	TraceBoard(ctx context.Context, name, storage string) (*TraceSummary, error)
	TraceLayout(ctx context.Context, layout, storage string) (*TraceSummary, error)

	// Boards
	ListBoards(ctx context.Context) ([]*config.BoardInfo, error)
	GetBoard(ctx context.Context, name string) (*BoardDetail, error)

	// Runs
	GetRun(ctx context.Context, id string) (*RunInfo, error)
	ListRuns(ctx context.Context) ([]*RunInfo, error)
	DeleteRun(ctx context.Context, id string) error
}

// BoardCatalog loads named boards
type BoardCatalog interface {
	LoadBoard(name string) (*board.Board, error)
	GetBoardInfo(name string) (*config.BoardInfo, error)
	ListBoards() ([]*config.BoardInfo, error)
}

// RunStore keeps finished runs
type RunStore interface {
	Create(run *Run) (*Run, error)
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
}

// Run is one finished search
type Run struct {
	ID             string
	Board          string
	Storage        trace.StorageKind
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Summary        *TraceSummary
}
