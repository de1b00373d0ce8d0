package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/service"
)

// maxListedSolutions bounds how many grids a tool result renders
const maxListedSolutions = 10

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// DefaultTimeout is the HTTP timeout used when WithTimeout is not given
const DefaultTimeout = 30 * time.Second

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout for API calls. It should exceed the
// server's trace timeout; 0 disables the client-side limit.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL, version string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"Circuit Tracer",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Circuit Tracer - MCP Interface

This is a thin client that proxies all requests to the REST API server.

BOARDS:
A board is a grid of cells: O open, X blocked, 1 start, 2 end.
A trace connects 1 to 2 through open cells moving up, down, left or right.
Every shortest trace is returned; traced cells are rendered as T.

AVAILABLE TOOLS:
- list_boards: List boards available on the server
- describe_board: Show a board's layout and BFS distance
- trace_board: Find all shortest traces on a named board
- trace_layout: Find all shortest traces on board text you provide
- get_run: Fetch the solutions of an earlier trace by run ID
- list_runs: List earlier traces

Board text starts with a "rows cols" header followed by one line per row.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	storageProperty := map[string]interface{}{
		"type":        "string",
		"description": "Frontier ordering: stack (depth-first) or queue (breadth-first). Optional.",
		"enum":        []string{"stack", "queue"},
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_boards",
		Description: "List all boards in the server's boards directory",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListBoards)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_board",
		Description: "Show a board's layout, terminals and BFS distance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board": map[string]interface{}{
					"type":        "string",
					"description": "Board name as returned by list_boards",
				},
			},
			Required: []string{"board"},
		},
	}, c.handleDescribeBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "trace_board",
		Description: "Find every shortest trace between the terminals of a named board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board": map[string]interface{}{
					"type":        "string",
					"description": "Board name as returned by list_boards",
				},
				"storage": storageProperty,
			},
			Required: []string{"board"},
		},
	}, c.handleTraceBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "trace_layout",
		Description: "Find every shortest trace on board text supplied inline",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "string",
					"description": "Board text: a 'rows cols' header line, then one line of O/X/1/2 cells per row",
				},
				"storage": storageProperty,
			},
			Required: []string{"layout"},
		},
	}, c.handleTraceLayout)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Fetch the solutions of an earlier trace",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID returned by trace_board or trace_layout",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List earlier traces, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of runs to list (optional)",
				},
			},
		},
	}, c.handleListRuns)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count  int                 `json:"count"`
		Boards []*config.BoardInfo `json:"boards"`
	}
	if err := c.apiCall(ctx, "GET", "/api/boards", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("No boards available"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Available boards (%d):\n", resp.Count)
	for _, b := range resp.Boards {
		fmt.Fprintf(&sb, "- %s: %dx%d, start %s, end %s, %d open cells\n",
			b.Name, b.Rows, b.Cols, b.Start, b.End, b.OpenCells)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleDescribeBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	name, _ := args["board"].(string)
	if name == "" {
		return mcp.NewToolResultError("board is required"), nil
	}

	var detail service.BoardDetail
	if err := c.apiCall(ctx, "GET", "/api/boards/"+url.PathEscape(name), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardDetail(&detail)), nil
}

func (c *Client) handleTraceBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	name, _ := args["board"].(string)
	storage, _ := args["storage"].(string)
	if name == "" {
		return mcp.NewToolResultError("board is required"), nil
	}

	body := map[string]string{}
	if storage != "" {
		body["storage"] = storage
	}

	var summary service.TraceSummary
	if err := c.apiCall(ctx, "POST", "/api/boards/"+url.PathEscape(name)+"/trace", body, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTraceSummary(&summary)), nil
}

func (c *Client) handleTraceLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	layout, _ := args["layout"].(string)
	storage, _ := args["storage"].(string)
	if strings.TrimSpace(layout) == "" {
		return mcp.NewToolResultError("layout is required"), nil
	}

	body := map[string]string{"layout": layout}
	if storage != "" {
		body["storage"] = storage
	}

	var summary service.TraceSummary
	if err := c.apiCall(ctx, "POST", "/api/trace", body, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTraceSummary(&summary)), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	runID, _ := args["run_id"].(string)
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(runID), nil, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if run.Summary == nil {
		return mcp.NewToolResultText(formatRunLine(&run)), nil
	}
	return mcp.NewToolResultText(formatTraceSummary(run.Summary)), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	path := "/api/runs"
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, int(limit))
	}

	var resp struct {
		Count int                `json:"count"`
		Total int                `json:"total"`
		Runs  []*service.RunInfo `json:"runs"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Total == 0 {
		return mcp.NewToolResultText("No runs recorded"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Runs (%d of %d):\n", resp.Count, resp.Total)
	for _, run := range resp.Runs {
		sb.WriteString("- ")
		sb.WriteString(formatRunLine(run))
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// Formatting helpers

func formatBoardDetail(detail *service.BoardDetail) string {
	var sb strings.Builder
	if detail.BoardInfo != nil {
		fmt.Fprintf(&sb, "Board: %s (%dx%d)\n", detail.Name, detail.Rows, detail.Cols)
		fmt.Fprintf(&sb, "Start: %s  End: %s\n", detail.Start, detail.End)
	}
	if detail.Reachable {
		fmt.Fprintf(&sb, "Shortest trace length: %d\n", detail.ShortestDistance)
	} else {
		sb.WriteString("The end is not reachable from the start\n")
	}
	sb.WriteString("\n")
	writeGrid(&sb, detail.Layout)
	return sb.String()
}

func formatTraceSummary(summary *service.TraceSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run: %s\nBoard: %s (%dx%d)\nStorage: %s\n",
		summary.RunID, summary.Board, summary.Rows, summary.Cols, summary.Storage)

	if !summary.Found {
		sb.WriteString("No trace connects the start and end cells.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Shortest length: %d\nSolutions: %d\n", summary.ShortestLength, summary.SolutionCount)
	fmt.Fprintf(&sb, "Expanded %d states, max frontier %d\n", summary.Stats.Expanded, summary.Stats.MaxFrontier)

	for i, s := range summary.Solutions {
		if i == maxListedSolutions {
			fmt.Fprintf(&sb, "\n... %d more (use get_run with run %s)\n", len(summary.Solutions)-i, summary.RunID)
			break
		}
		fmt.Fprintf(&sb, "\nSolution %d:\n", i+1)
		writeGrid(&sb, s.Grid)
	}
	return sb.String()
}

func formatRunLine(run *service.RunInfo) string {
	return fmt.Sprintf("%s: board %s, %s, %d solution(s) of length %d, created %s",
		run.ID, run.Board, run.Storage, run.SolutionCount, run.ShortestLength,
		run.CreatedAt.Format(time.RFC3339))
}

func writeGrid(sb *strings.Builder, lines []string) {
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
