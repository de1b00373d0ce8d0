// Package service provides the business logic layer for the circuit tracer.
//
// The service package orchestrates board loading, searching and run
// bookkeeping, and is the single entry point used by the REST API and,
// through it, the MCP tools.
//
// Core Interfaces:
//
// TraceService defines every operation exposed to transports. BoardCatalog
// and RunStore abstract the board directory and the run registry so they can
// be swapped in tests.
//
// Usage:
//
//	catalog, _ := config.NewManager("boards")
//	svc := service.NewTraceService(catalog, runs.NewManager(),
//		service.WithTraceTimeout(30*time.Second))
//
//	summary, err := svc.TraceBoard(ctx, "grid1", "queue")
//	if err != nil {
//		return err
//	}
//	fmt.Println(summary.ShortestLength, summary.SolutionCount)
//
// Every search runs synchronously inside the calling goroutine. The trace
// timeout bounds boards with large open areas, whose exhaustive enumeration
// would otherwise run for a very long time.
package service
