package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/trace"
)

// traceServiceImpl implements the TraceService interface
type traceServiceImpl struct {
	boards         BoardCatalog
	runs           RunStore
	logger         *zap.Logger
	timeout        time.Duration
	defaultStorage trace.StorageKind
}

// Option configures the trace service
type Option func(*traceServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *traceServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTraceTimeout bounds every search. Zero disables the bound.
func WithTraceTimeout(d time.Duration) Option {
	return func(s *traceServiceImpl) {
		s.timeout = d
	}
}

// WithDefaultStorage sets the storage used when a request names none
func WithDefaultStorage(kind trace.StorageKind) Option {
	return func(s *traceServiceImpl) {
		s.defaultStorage = kind
	}
}

// NewTraceService creates a new trace service instance
func NewTraceService(boards BoardCatalog, runs RunStore, opts ...Option) TraceService {
	s := &traceServiceImpl{
		boards:         boards,
		runs:           runs,
		logger:         zap.NewNop(),
		defaultStorage: trace.Queue,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TraceBoard searches a board from the catalog
func (s *traceServiceImpl) TraceBoard(ctx context.Context, name, storage string) (*TraceSummary, error) {
	b, err := s.boards.LoadBoard(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load board %s: %w", name, err)
	}
	return s.trace(ctx, name, b, storage)
}

// TraceLayout parses and searches board text supplied by the caller
func (s *traceServiceImpl) TraceLayout(ctx context.Context, layout, storage string) (*TraceSummary, error) {
	b, err := board.ParseString(layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return s.trace(ctx, LayoutBoardName, b, storage)
}

func (s *traceServiceImpl) trace(ctx context.Context, name string, b *board.Board, storage string) (*TraceSummary, error) {
	kind := s.defaultStorage
	if storage != "" {
		parsed, err := trace.ParseStorageKind(storage)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		kind = parsed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tracer := trace.NewTracer(trace.WithStorage(kind), trace.WithLogger(s.logger))
	result, err := tracer.Search(ctx, b)
	if err != nil {
		s.logger.Warn("trace aborted",
			zap.String("board", name),
			zap.String("storage", string(kind)),
			zap.Error(err))
		return nil, fmt.Errorf("trace %s: %w", name, err)
	}

	summary := NewTraceSummary(name, b, result)
	run, err := s.runs.Create(&Run{
		Board:   name,
		Storage: kind,
		Summary: summary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	summary.RunID = run.ID

	s.logger.Info("trace complete",
		zap.String("run_id", run.ID),
		zap.String("board", name),
		zap.String("storage", string(kind)),
		zap.Int("shortest", summary.ShortestLength),
		zap.Int("solutions", summary.SolutionCount),
		zap.Duration("elapsed", result.Stats.Elapsed))

	return summary, nil
}

// ListBoards returns every valid board in the catalog
func (s *traceServiceImpl) ListBoards(ctx context.Context) ([]*config.BoardInfo, error) {
	return s.boards.ListBoards()
}

// GetBoard returns a board's summary together with its layout
func (s *traceServiceImpl) GetBoard(ctx context.Context, name string) (*BoardDetail, error) {
	info, err := s.boards.GetBoardInfo(name)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.LoadBoard(name)
	if err != nil {
		return nil, err
	}

	dist, ok := b.ShortestDistance()
	return &BoardDetail{
		BoardInfo:        info,
		Layout:           b.Lines(),
		Reachable:        ok,
		ShortestDistance: dist,
	}, nil
}

// GetRun returns a stored run with its full summary
func (s *traceServiceImpl) GetRun(ctx context.Context, id string) (*RunInfo, error) {
	run, err := s.runs.Get(id)
	if err != nil {
		return nil, err
	}
	return newRunInfo(run, true), nil
}

// ListRuns returns stored runs, newest first
func (s *traceServiceImpl) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	runs := s.runs.List()
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	infos := make([]*RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, newRunInfo(run, false))
	}
	return infos, nil
}

// DeleteRun removes a stored run
func (s *traceServiceImpl) DeleteRun(ctx context.Context, id string) error {
	return s.runs.Delete(id)
}
