package trace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/circuit-tracer/circuit/board"
)

// ctxCheckInterval is how many retrievals run between context checks
const ctxCheckInterval = 128

// Stats describes the work done by one search
type Stats struct {
	Seeded        int           `json:"seeded"`
	Expanded      int           `json:"expanded"`
	Stored        int           `json:"stored"`
	SolutionsSeen int           `json:"solutions_seen"`
	MaxFrontier   int           `json:"max_frontier"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// Result holds every tied-shortest path found by a search
type Result struct {
	Storage   StorageKind
	Solutions []*PathState
	Stats     Stats
}

// Found reports whether at least one path connects the terminals
func (r *Result) Found() bool {
	return len(r.Solutions) > 0
}

// Shortest returns the length shared by all solutions, or 0 when none exist
func (r *Result) Shortest() int {
	if len(r.Solutions) == 0 {
		return 0
	}
	return r.Solutions[0].PathLength()
}

// Tracer finds all shortest paths between the terminals of a board
type Tracer struct {
	kind   StorageKind
	logger *zap.Logger
}

// Option configures a Tracer
type Option func(*Tracer)

// WithStorage selects the frontier ordering
func WithStorage(kind StorageKind) Option {
	return func(t *Tracer) { t.kind = kind }
}

// WithLogger attaches a logger for search diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracer creates a tracer. The default storage is Stack.
func NewTracer(opts ...Option) *Tracer {
	t := &Tracer{
		kind:   Stack,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Storage returns the configured frontier ordering
func (t *Tracer) Storage() StorageKind {
	return t.kind
}

// Search enumerates every simple path from the start to the end cell and keeps
// those of minimal length.
//
// A solution is kept when no solution has been kept yet or when it ties the
// current best length. A strictly shorter solution replaces all kept ones.
// Longer solutions are dropped by that comparison; nothing is pruned early,
// so the result does not depend on the storage ordering.
func (t *Tracer) Search(ctx context.Context, b *board.Board) (*Result, error) {
	storage, err := NewStorage[*PathState](t.kind)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	result := &Result{Storage: t.kind}
	stats := &result.Stats

	t.logger.Debug("Starting trace",
		zap.String("storage", string(t.kind)),
		zap.Int("rows", b.Rows()),
		zap.Int("cols", b.Cols()),
		zap.Stringer("start", b.Start()),
		zap.Stringer("end", b.End()))

	// Seed with every reachable neighbor of the start cell
	start := b.Start()
	for _, n := range start.Neighbors() {
		if !b.IsOpen(n.Row, n.Col) && n != b.End() {
			continue
		}
		seed, err := NewPathState(b, n.Row, n.Col)
		if err != nil {
			panic(fmt.Sprintf("trace: seeding guarded neighbor %s: %v", n, err))
		}
		storage.Store(seed)
		stats.Seeded++
	}
	stats.MaxFrontier = storage.Len()

	var best []*PathState
	retrieved := 0

	for !storage.IsEmpty() {
		retrieved++
		if retrieved%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("trace interrupted after %d expansions: %w", stats.Expanded, err)
			}
		}

		current := storage.Retrieve()

		if current.IsSolution() {
			stats.SolutionsSeen++
			switch {
			case len(best) == 0 || current.PathLength() == best[0].PathLength():
				best = append(best, current)
			case current.PathLength() < best[0].PathLength():
				best = []*PathState{current}
			}
			continue
		}

		stats.Expanded++
		head := current.Head()
		for _, n := range head.Neighbors() {
			if !current.CanReach(n.Row, n.Col) {
				continue
			}
			next, err := current.Branch(n.Row, n.Col)
			if err != nil {
				panic(fmt.Sprintf("trace: branching guarded neighbor %s: %v", n, err))
			}
			storage.Store(next)
			stats.Stored++
		}

		if size := storage.Len(); size > stats.MaxFrontier {
			stats.MaxFrontier = size
		}
	}

	result.Solutions = best
	stats.Elapsed = time.Since(began)

	t.logger.Debug("Trace complete",
		zap.String("storage", string(t.kind)),
		zap.Int("solutions", len(best)),
		zap.Int("shortest", result.Shortest()),
		zap.Int("expanded", stats.Expanded),
		zap.Int("max_frontier", stats.MaxFrontier),
		zap.Duration("elapsed", stats.Elapsed))

	return result, nil
}
