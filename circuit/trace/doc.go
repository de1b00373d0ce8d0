// Package trace finds every shortest path between the two terminals of a board.
//
// A PathState is an immutable snapshot of one candidate path. Branching from a
// state produces a new state with one more traced cell; no state ever sees the
// marks of a sibling. The Tracer drives a Storage of pending states until it is
// empty, keeping every complete path whose length ties the best seen so far.
//
// Storage comes in two orderings behind one interface:
//   - Stack: last in, first out (depth-first exploration)
//   - Queue: first in, first out (breadth-first exploration)
//
// The ordering changes only the exploration order. Both orderings return the
// same set of solutions.
//
// Usage:
//
//	tracer := trace.NewTracer(trace.WithStorage(trace.Queue))
//	result, err := tracer.Search(ctx, b)
//	if err != nil {
//		return err
//	}
//	for _, path := range result.Solutions {
//		fmt.Println(path)
//	}
//
// The search enumerates all simple paths, so time and memory grow quickly with
// the amount of open area. Callers that need a bound should pass a context
// with a deadline.
package trace
