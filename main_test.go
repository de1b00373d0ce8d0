package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/runs"
	"github.com/wricardo/circuit-tracer/circuit/service"
	"github.com/wricardo/circuit-tracer/transport/mcp"
)

const sampleBoard = `3 3
1 O X
O O O
X O 2
`

func writeBoard(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write board: %v", err)
	}
	return path
}

// runCLI runs the root command and returns its output and error
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &out
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := cmd.Run(context.Background(), append([]string{AppName}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "circuit-tracer" {
		t.Errorf("Expected app name circuit-tracer, got %s", AppName)
	}
}

func TestRootCommand_Usage(t *testing.T) {
	path := writeBoard(t, t.TempDir(), "grid1.dat", sampleBoard)

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing filename", []string{"-s", "-c"}},
		{"missing storage", []string{"-c", path}},
		{"both storages", []string{"-s", "-q", "-c", path}},
		{"missing output", []string{"-q", path}},
		{"both outputs", []string{"-q", "-c", "-g", path}},
		{"extra argument", []string{"-q", "-c", path, "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if out != usageText {
				t.Errorf("Expected usage text, got:\n%s", out)
			}
		})
	}
}

func TestRootCommand_ConsoleOutput(t *testing.T) {
	path := writeBoard(t, t.TempDir(), "grid1.dat", sampleBoard)

	expected := []string{
		"1 O X\nT T O\nX T 2",
		"1 O X\nT T T\nX O 2",
		"1 T X\nO T O\nX T 2",
		"1 T X\nO T T\nX O 2",
	}

	for _, flag := range []string{"-s", "-q"} {
		t.Run(flag, func(t *testing.T) {
			out, err := runCLI(t, flag, "-c", path)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			if !strings.HasSuffix(out, "\n\n") {
				t.Errorf("Expected every board to be followed by a blank line, got %q", out)
			}
			blocks := strings.Split(strings.TrimSuffix(out, "\n\n"), "\n\n")
			sort.Strings(blocks)
			if diff := cmp.Diff(expected, blocks); diff != "" {
				t.Errorf("Solutions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRootCommand_NoSolution(t *testing.T) {
	path := writeBoard(t, t.TempDir(), "blocked.dat", "2 3\n1 X O\nX X 2\n")

	out, err := runCLI(t, "-q", "-c", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "" {
		t.Errorf("Expected no output, got %q", out)
	}
}

func TestRootCommand_GUI(t *testing.T) {
	path := writeBoard(t, t.TempDir(), "grid1.dat", sampleBoard)

	out, err := runCLI(t, "-s", "-g", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "GUI output not supported\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRootCommand_FileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.dat")

	out, err := runCLI(t, "-q", "-c", path)
	if exitCode(err) != 1 {
		t.Errorf("Expected exit code 1, got %v", err)
	}
	if !strings.HasPrefix(out, "File not found: "+path) {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{"bad header", "three 3\n", "row count"},
		{"bad character", "1 3\n1 Z 2\n", "invalid character 'Z'"},
		{"two starts", "1 3\n1 1 2\n", "start"},
		{"short row", "2 2\n1 2\nO\n", "columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeBoard(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".dat", tt.content)

			out, err := runCLI(t, "-s", "-c", path)
			if exitCode(err) != 1 {
				t.Errorf("Expected exit code 1, got %v", err)
			}
			if !strings.HasPrefix(out, "Invalid file format: ") {
				t.Errorf("Expected invalid format message, got %q", out)
			}
			if !strings.Contains(out, tt.reason) {
				t.Errorf("Expected reason containing %q, got %q", tt.reason, out)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != AppName+" v"+Version+"\n" {
		t.Errorf("Unexpected version output %q", out)
	}
}

func testSettings(boardsDir string) config.Settings {
	settings := config.DefaultSettings()
	settings.BoardsDir = boardsDir
	return settings
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	writeBoard(t, dir, "grid1.dat", sampleBoard)

	traceService, runStore, err := initializeServices(testSettings(dir), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	summary, err := traceService.TraceBoard(context.Background(), "grid1", "")
	if err != nil {
		t.Fatalf("Failed to trace board: %v", err)
	}
	if summary.ShortestLength != 4 || summary.SolutionCount != 4 {
		t.Errorf("Expected 4 solutions of length 4, got %d of %d", summary.SolutionCount, summary.ShortestLength)
	}
	if runStore.Count() != 1 {
		t.Errorf("Expected the trace to be recorded as a run, got %d runs", runStore.Count())
	}
}

func TestInitializeServices_InvalidBoardsDir(t *testing.T) {
	_, _, err := initializeServices(testSettings("/non/existent/path"), zap.NewNop())
	if err == nil {
		t.Error("Expected error for non-existent boards directory")
	}
}

func TestHTTPHandler(t *testing.T) {
	dir := t.TempDir()
	writeBoard(t, dir, "grid1.dat", sampleBoard)

	traceService, _, err := initializeServices(testSettings(dir), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	handler := newHTTPHandler(traceService, nil, mcp.NewClient("http://localhost:0", Version), zap.NewNop())

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{"health", "GET", "/api/health", "", http.StatusOK, "healthy"},
		{"boards", "GET", "/api/boards", "", http.StatusOK, "grid1"},
		{"trace", "POST", "/api/boards/grid1/trace", `{"storage":"stack"}`, http.StatusOK, `"shortest_length":4`},
		{"oversized layout header", "POST", "/api/trace", `{"layout":"4000000000 1\n"}`, http.StatusBadRequest, "board too large"},
		{"mcp wrong method", "GET", "/mcp", "", http.StatusMethodNotAllowed, ""},
		{"mcp ping", "POST", "/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, http.StatusOK, `"jsonrpc":"2.0"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedBody != "" && !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestWriteTimeout(t *testing.T) {
	if got := writeTimeout(0); got != 0 {
		t.Errorf("Expected unbounded write timeout, got %v", got)
	}
	if got := writeTimeout(30 * time.Second); got != 45*time.Second {
		t.Errorf("Expected 45s, got %v", got)
	}
}

func TestRunCleanupRoutine(t *testing.T) {
	store := runs.NewManager()
	if _, err := store.Create(&service.Run{Board: "grid1"}); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runCleanupRoutine(ctx, store, 10*time.Millisecond, zap.NewNop())

	deadline := time.Now().Add(time.Second)
	for store.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.Count() != 0 {
		t.Error("Expected expired run to be cleaned up")
	}
}

func TestAPIAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if !apiAvailable(context.Background(), server.URL) {
		t.Error("Expected API to be available")
	}
	if apiAvailable(context.Background(), "http://127.0.0.1:1") {
		t.Error("Expected unreachable API to be unavailable")
	}
}
