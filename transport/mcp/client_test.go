package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/service"
	"github.com/wricardo/circuit-tracer/circuit/trace"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func sampleSummary() service.TraceSummary {
	return service.TraceSummary{
		RunID:          "abc123",
		Board:          "grid1",
		Storage:        trace.Queue,
		Rows:           3,
		Cols:           3,
		Found:          true,
		ShortestLength: 4,
		SolutionCount:  2,
		Solutions: []service.Solution{
			{Length: 4, Grid: []string{"1 T X", "O T T", "X O 2"}},
			{Length: 4, Grid: []string{"1 O X", "T T T", "X O 2"}},
		},
		Stats: trace.Stats{Expanded: 12, MaxFrontier: 3},
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", "test")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestNewClient_Timeout(t *testing.T) {
	if got := NewClient("http://localhost:8080", "test").httpClient.Timeout; got != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, got)
	}
	if got := NewClient("http://localhost:8080", "test", WithTimeout(2*time.Minute)).httpClient.Timeout; got != 2*time.Minute {
		t.Errorf("Expected 2m timeout, got %v", got)
	}
	if got := NewClient("http://localhost:8080", "test", WithTimeout(0)).httpClient.Timeout; got != 0 {
		t.Errorf("Expected no timeout, got %v", got)
	}
}

func TestClient_SlowTraceWithinTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy"})
	}))
	defer server.Close()

	var result map[string]interface{}
	short := NewClient(server.URL, "test", WithTimeout(20*time.Millisecond))
	if err := short.apiCall(context.Background(), "GET", "/api/health", nil, &result); err == nil {
		t.Error("Expected a client-side timeout shorter than the response time to fail")
	}

	long := NewClient(server.URL, "test", WithTimeout(5*time.Second))
	if err := long.apiCall(context.Background(), "GET", "/api/health", nil, &result); err != nil {
		t.Errorf("Expected call within the timeout to succeed, got %v", err)
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", response["status"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999", "test")

	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"plain body", "Internal Server Error", "API error: 500"},
		{"json error", `{"error":"board not found: grid9","code":404}`, "board not found: grid9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "test")

			err := client.apiCall(context.Background(), "GET", "/api/boards", nil, nil)
			if err == nil {
				t.Fatal("Expected error for HTTP 500 response")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected %q in error message, got: %v", tt.expected, err)
			}
		})
	}
}

func TestClient_handleListBoards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/boards" {
			t.Errorf("Expected GET /api/boards, got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"boards": []*config.BoardInfo{{
				Name: "grid1", Rows: 3, Cols: 3,
				Start: board.Position{Row: 0, Col: 0}, End: board.Position{Row: 2, Col: 2},
				OpenCells: 5,
			}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")
	result, err := client.handleListBoards(context.Background(), callRequest("list_boards", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleListBoards failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "grid1: 3x3, start (0,0), end (2,2), 5 open cells") {
		t.Errorf("Unexpected board listing: %s", text)
	}
}

func TestClient_handleTraceBoard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/boards/grid1/trace" {
			t.Errorf("Expected POST /api/boards/grid1/trace, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["storage"] != "stack" {
			t.Errorf("Expected storage stack, got %q", body["storage"])
		}
		json.NewEncoder(w).Encode(sampleSummary())
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")
	result, err := client.handleTraceBoard(context.Background(), callRequest("trace_board", map[string]interface{}{
		"board":   "grid1",
		"storage": "stack",
	}))
	if err != nil {
		t.Fatalf("handleTraceBoard failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Run: abc123", "Shortest length: 4", "Solutions: 2", "Solution 2:", "1 T X\nO T T\nX O 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_handleTraceBoard_MissingBoard(t *testing.T) {
	client := NewClient("http://localhost:0", "test")

	result, err := client.handleTraceBoard(context.Background(), callRequest("trace_board", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleTraceBoard failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result when board is missing")
	}
}

func TestClient_handleTraceLayout(t *testing.T) {
	layout := "1 3\n1 O 2\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trace" {
			t.Errorf("Expected /api/trace, got %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["layout"] != layout {
			t.Errorf("Expected layout to be forwarded, got %q", body["layout"])
		}
		if _, ok := body["storage"]; ok {
			t.Error("Expected storage to be omitted when not given")
		}
		json.NewEncoder(w).Encode(service.TraceSummary{
			RunID: "def456", Board: service.LayoutBoardName, Rows: 1, Cols: 3,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")
	result, err := client.handleTraceLayout(context.Background(), callRequest("trace_layout", map[string]interface{}{
		"layout": layout,
	}))
	if err != nil {
		t.Fatalf("handleTraceLayout failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "No trace connects") {
		t.Errorf("Expected no-path message, got: %s", text)
	}
}

func TestClient_handleGetRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/runs/abc123" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "run not found: " + strings.TrimPrefix(r.URL.Path, "/api/runs/")})
			return
		}
		summary := sampleSummary()
		json.NewEncoder(w).Encode(service.RunInfo{ID: "abc123", Board: "grid1", Summary: &summary})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")
	ctx := context.Background()

	result, err := client.handleGetRun(ctx, callRequest("get_run", map[string]interface{}{"run_id": "abc123"}))
	if err != nil {
		t.Fatalf("handleGetRun failed: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Solution 1:") {
		t.Errorf("Expected solutions in result, got: %s", text)
	}

	result, err = client.handleGetRun(ctx, callRequest("get_run", map[string]interface{}{"run_id": "zzz999"}))
	if err != nil {
		t.Fatalf("handleGetRun failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result for unknown run")
	}
	if text := resultText(t, result); !strings.Contains(text, "run not found: zzz999") {
		t.Errorf("Expected API error message, got: %s", text)
	}
}

func TestClient_handleListRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("Expected limit=1, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"total": 2,
			"runs": []*service.RunInfo{
				{ID: "abc123", Board: "grid1", Storage: trace.Stack, SolutionCount: 4, ShortestLength: 4},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")
	result, err := client.handleListRuns(context.Background(), callRequest("list_runs", map[string]interface{}{"limit": float64(1)}))
	if err != nil {
		t.Fatalf("handleListRuns failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Runs (1 of 2)") || !strings.Contains(text, "abc123: board grid1, stack, 4 solution(s) of length 4") {
		t.Errorf("Unexpected run listing: %s", text)
	}
}

func TestFormatTraceSummary_Truncates(t *testing.T) {
	summary := sampleSummary()
	summary.Solutions = nil
	for i := 0; i < maxListedSolutions+3; i++ {
		summary.Solutions = append(summary.Solutions, service.Solution{Length: 4, Grid: []string{"1 T 2"}})
	}
	summary.SolutionCount = len(summary.Solutions)

	text := formatTraceSummary(&summary)

	if !strings.Contains(text, "... 3 more") {
		t.Errorf("Expected truncation notice, got: %s", text)
	}
	if strings.Contains(text, "Solution 11:") {
		t.Error("Expected at most 10 rendered solutions")
	}
}

func TestFormatBoardDetail(t *testing.T) {
	detail := &service.BoardDetail{
		BoardInfo: &config.BoardInfo{Name: "blocked", Rows: 2, Cols: 3},
		Layout:    []string{"1 X O", "X X 2"},
	}

	text := formatBoardDetail(detail)

	if !strings.Contains(text, "Board: blocked (2x3)") {
		t.Errorf("Expected header, got: %s", text)
	}
	if !strings.Contains(text, "not reachable") {
		t.Errorf("Expected unreachable note, got: %s", text)
	}
	if !strings.Contains(text, "1 X O\nX X 2\n") {
		t.Errorf("Expected layout, got: %s", text)
	}
}
