package runs

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/circuit-tracer/circuit/service"
)

var (
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrNilRun           = errors.New("run is nil")
)

// idAttempts bounds ID regeneration on collision
const idAttempts = 8

// Manager handles run lifecycle
type Manager struct {
	runs map[string]*service.Run
	now  func() time.Time
	mu   sync.RWMutex
}

// NewManager creates a new run manager
func NewManager() *Manager {
	return &Manager{
		runs: make(map[string]*service.Run),
		now:  time.Now,
	}
}

// Create stores a run, assigning an ID when the run has none
func (m *Manager) Create(run *service.Run) (*service.Run, error) {
	if run == nil {
		return nil, ErrNilRun
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if run.ID == "" {
		id, err := m.uniqueID()
		if err != nil {
			return nil, err
		}
		run.ID = id
	} else if _, exists := m.runs[strings.ToLower(run.ID)]; exists {
		return nil, ErrRunAlreadyExists
	}

	if run.Summary != nil {
		run.Summary.RunID = run.ID
	}

	now := m.now()
	run.CreatedAt = now
	run.LastAccessedAt = now
	m.runs[strings.ToLower(run.ID)] = run

	return run, nil
}

// Get retrieves a run by ID (case-insensitive) and refreshes its access time
func (m *Manager) Get(id string) (*service.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", service.ErrRunNotFound, id)
	}
	run.LastAccessedAt = m.now()
	return run, nil
}

// List returns all runs in no particular order
func (m *Manager) List() []*service.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*service.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	return runs
}

// Delete removes a run
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.runs[key]; !exists {
		return fmt.Errorf("%w: %s", service.ErrRunNotFound, id)
	}
	delete(m.runs, key)
	return nil
}

// CleanupExpired removes runs not accessed within maxAge and returns how many were removed
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for key, run := range m.runs {
		if run.LastAccessedAt.Before(cutoff) {
			delete(m.runs, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of stored runs
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// uniqueID generates an unused ID. Callers must hold the write lock.
func (m *Manager) uniqueID() (string, error) {
	for i := 0; i < idAttempts; i++ {
		id, err := generateRunID()
		if err != nil {
			return "", err
		}
		if _, exists := m.runs[id]; !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique run ID after %d attempts", idAttempts)
}

// generateRunID generates a random 6-character run ID
func generateRunID() (string, error) {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
