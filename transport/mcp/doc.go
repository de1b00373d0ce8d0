// Package mcp exposes the circuit tracer to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so the stdio and HTTP transports see the same boards and runs as
// browser clients.
//
// MCP Tools:
//   - list_boards: List boards in the server's boards directory
//   - describe_board: Show a board's layout and BFS distance
//   - trace_board: Find all shortest traces on a named board
//   - trace_layout: Find all shortest traces on inline board text
//   - get_run: Fetch the solutions of an earlier trace
//   - list_runs: List earlier traces
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: the serve command forwards POST /mcp bodies to HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", version, mcp.WithTimeout(time.Minute))
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
