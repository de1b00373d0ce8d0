// Command analyze prints quick, human-readable statistics about the boards in
// a directory (default "boards"). For every board it summarizes dimensions and
// cell counts, compares Manhattan and BFS distances between the terminals, and
// traces the board with both frontier orderings to check that they agree.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/trace"
)

// traceBudget bounds each of the two searches per board
const traceBudget = 10 * time.Second

// Analysis is the outcome of analyzing one board.
type Analysis struct {
	Rows, Cols   int
	Open         int
	Blocked      int
	Manhattan    int
	BFSDistance  int
	Reachable    bool
	Results      map[trace.StorageKind]*trace.Result
	Agree        bool
	TraceFailure error
}

func main() {
	dir := "boards"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.dat"))
	if err != nil {
		fmt.Printf("Error finding boards: %v\n", err)
		os.Exit(1)
	}
	txt, _ := filepath.Glob(filepath.Join(dir, "*.txt"))
	files = append(files, txt...)
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeBoard(os.Stdout, file)
	}
}

// analyze computes statistics for a parsed board
func analyze(ctx context.Context, b *board.Board) *Analysis {
	a := &Analysis{
		Rows:      b.Rows(),
		Cols:      b.Cols(),
		Open:      b.Count(board.Open),
		Blocked:   b.Count(board.Blocked),
		Manhattan: board.ManhattanDistance(b.Start(), b.End()),
		Results:   make(map[trace.StorageKind]*trace.Result),
	}
	a.BFSDistance, a.Reachable = b.ShortestDistance()

	for _, kind := range []trace.StorageKind{trace.Stack, trace.Queue} {
		tctx, cancel := context.WithTimeout(ctx, traceBudget)
		result, err := trace.NewTracer(trace.WithStorage(kind)).Search(tctx, b)
		cancel()
		if err != nil {
			a.TraceFailure = fmt.Errorf("%s trace: %w", kind, err)
			return a
		}
		a.Results[kind] = result
	}

	a.Agree = sameSolutions(a.Results[trace.Stack], a.Results[trace.Queue])
	return a
}

// sameSolutions reports whether two results hold the same set of traced boards
func sameSolutions(x, y *trace.Result) bool {
	if len(x.Solutions) != len(y.Solutions) || x.Shortest() != y.Shortest() {
		return false
	}
	seen := make(map[string]int, len(x.Solutions))
	for _, s := range x.Solutions {
		seen[s.Board().String()]++
	}
	for _, s := range y.Solutions {
		key := s.Board().String()
		if seen[key] == 0 {
			return false
		}
		seen[key]--
	}
	return true
}

// analyzeBoard loads one board file and writes its analysis to out
func analyzeBoard(out io.Writer, path string) {
	b, err := board.Load(path)
	if err != nil {
		fmt.Fprintf(out, "Error loading board: %v\n", err)
		return
	}

	a := analyze(context.Background(), b)

	fmt.Fprintf(out, "Size: %dx%d\n", a.Rows, a.Cols)
	fmt.Fprintf(out, "Cells: %d open, %d blocked\n", a.Open, a.Blocked)
	fmt.Fprintf(out, "Start: %s  End: %s\n", b.Start(), b.End())
	fmt.Fprintf(out, "Manhattan distance: %d\n", a.Manhattan)
	if a.Reachable {
		fmt.Fprintf(out, "BFS distance: %d", a.BFSDistance)
		if detour := a.BFSDistance - a.Manhattan; detour > 0 {
			fmt.Fprintf(out, " (detour of %d)", detour)
		}
		fmt.Fprintln(out)
	} else {
		fmt.Fprintln(out, "BFS distance: unreachable")
	}

	if a.TraceFailure != nil {
		fmt.Fprintf(out, "Trace failed: %v\n", a.TraceFailure)
		return
	}

	for _, kind := range []trace.StorageKind{trace.Stack, trace.Queue} {
		r := a.Results[kind]
		fmt.Fprintf(out, "%-5s: %d solution(s), length %d, expanded %d, max frontier %d, %s\n",
			kind, len(r.Solutions), r.Shortest(), r.Stats.Expanded, r.Stats.MaxFrontier,
			r.Stats.Elapsed.Round(time.Microsecond))
	}

	if a.Agree {
		fmt.Fprintln(out, "✓ Stack and queue orderings agree")
	} else {
		fmt.Fprintln(out, "✗ Stack and queue orderings DISAGREE")
	}

	if r := a.Results[trace.Queue]; r.Found() && a.Reachable && r.Shortest() != a.BFSDistance {
		fmt.Fprintf(out, "✗ Traced length %d differs from BFS distance %d\n", r.Shortest(), a.BFSDistance)
	}

	if r := a.Results[trace.Queue]; r.Found() {
		fmt.Fprintln(out, "First solution:")
		fmt.Fprint(out, indent(r.Solutions[0].Board().String(), "  "))
	}
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(line)
	}
	return sb.String()
}
