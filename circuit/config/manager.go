package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/circuit-tracer/circuit/board"
)

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidName   = errors.New("invalid board name")
)

// boardExtensions are tried in order when a name has no extension
var boardExtensions = []string{".dat", ".txt"}

// BoardInfo summarizes a board in the catalog
type BoardInfo struct {
	Name      string         `json:"name"`
	Filename  string         `json:"filename"`
	Rows      int            `json:"rows"`
	Cols      int            `json:"cols"`
	Start     board.Position `json:"start"`
	End       board.Position `json:"end"`
	OpenCells int            `json:"open_cells"`
}

// NewBoardInfo builds the summary of a parsed board
func NewBoardInfo(name, filename string, b *board.Board) *BoardInfo {
	return &BoardInfo{
		Name:      name,
		Filename:  filename,
		Rows:      b.Rows(),
		Cols:      b.Cols(),
		Start:     b.Start(),
		End:       b.End(),
		OpenCells: b.Count(board.Open),
	}
}

// Manager handles board loading and caching
type Manager struct {
	boardsDir string
	boards    map[string]*board.Board
	mu        sync.RWMutex
}

// NewManager creates a new board catalog over boardsDir
func NewManager(boardsDir string) (*Manager, error) {
	info, err := os.Stat(boardsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("boards directory does not exist: %s", boardsDir)
		}
		return nil, fmt.Errorf("failed to stat boards directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("boards path is not a directory: %s", boardsDir)
	}

	return &Manager{
		boardsDir: boardsDir,
		boards:    make(map[string]*board.Board),
	}, nil
}

// Dir returns the boards directory
func (m *Manager) Dir() string {
	return m.boardsDir
}

// LoadBoard loads a board by name. The extension is optional.
func (m *Manager) LoadBoard(name string) (*board.Board, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if b, exists := m.boards[name]; exists {
		m.mu.RUnlock()
		return b, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists := m.boards[name]; exists {
		return b, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	b, err := board.Load(path)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", name, err)
	}

	m.boards[name] = b
	return b, nil
}

// GetBoardInfo loads a board by name and returns its summary
func (m *Manager) GetBoardInfo(name string) (*BoardInfo, error) {
	b, err := m.LoadBoard(name)
	if err != nil {
		return nil, err
	}
	name, _ = normalizeName(name)
	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}
	return NewBoardInfo(name, filepath.Base(path), b), nil
}

// ListBoards returns information about every valid board in the directory
func (m *Manager) ListBoards() ([]*BoardInfo, error) {
	entries, err := os.ReadDir(m.boardsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read boards directory: %w", err)
	}

	var boards []*BoardInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasBoardExtension(entry.Name()) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[name] {
			continue
		}
		seen[name] = true

		b, err := m.LoadBoard(name)
		if err != nil {
			// Skip invalid boards
			continue
		}

		path, err := m.resolve(name)
		if err != nil {
			continue
		}
		boards = append(boards, NewBoardInfo(name, filepath.Base(path), b))
	}

	sort.Slice(boards, func(i, j int) bool { return boards[i].Name < boards[j].Name })
	return boards, nil
}

// RefreshCache drops all cached boards so the next load rereads the files
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = make(map[string]*board.Board)
}

// resolve finds the file backing a board name
func (m *Manager) resolve(name string) (string, error) {
	if hasBoardExtension(name) {
		path := filepath.Join(m.boardsDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrBoardNotFound, name)
		}
		return path, nil
	}

	for _, ext := range boardExtensions {
		path := filepath.Join(m.boardsDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBoardNotFound, name)
}

// normalizeName rejects names that would escape the boards directory
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

func hasBoardExtension(filename string) bool {
	ext := filepath.Ext(filename)
	for _, allowed := range boardExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
