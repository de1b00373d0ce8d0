// Package api provides the HTTP REST API for the circuit tracer.
//
// Endpoints:
//
// Boards:
//   - GET /api/boards - List boards in the boards directory
//   - GET /api/boards/{name} - Board summary, layout and BFS distance
//   - POST /api/boards/{name}/trace - Search a board
//
// Inline layouts:
//   - POST /api/trace - Search board text sent in the request
//
// Runs:
//   - GET /api/runs - List finished searches, newest first (?limit=N)
//   - GET /api/runs/{id} - Fetch a run with all of its solutions
//   - DELETE /api/runs/{id} - Forget a run
//
// Live updates:
//   - GET /ws?board={name} - WebSocket feed of trace_complete events
//
// Request/Response Format:
//
// Trace requests take an optional storage, "stack" or "queue":
//
//	POST /api/boards/grid1/trace
//	{"storage": "stack"}
//
//	POST /api/trace
//	{"layout": "3 3\n1 O X\nO O O\nX O 2\n", "storage": "queue"}
//
// Both return a service.TraceSummary with the shortest length, every tied
// solution (route and rendered grid) and search statistics.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status code derived from the
// error chain:
//   - 400 for malformed boards and bad parameters
//   - 404 for unknown boards and runs
//   - 504 when the trace timeout cuts a search short
//
//	{
//	  "error": "error message",
//	  "code": 400
//	}
package api
