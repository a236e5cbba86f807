package dicomfile

import (
	"fmt"
	"sync"

	"github.com/nao1215/petrd/internal/model"
)

// Memory is an in-memory Container. Values must be one of string, []string,
// []byte, []int or []float64.
type Memory struct {
	mu     sync.RWMutex
	path   string
	values map[Tag]any
	closed bool
}

// NewMemory creates an empty container that reports path as its location.
// The path matters to callers that look for a sidecar next to the container.
func NewMemory(path string) *Memory {
	return &Memory{path: path, values: make(map[Tag]any)}
}

// Set stores v under t and returns m for chaining.
func (m *Memory) Set(t Tag, v any) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[t] = v
	return m
}

// Path returns the path given to NewMemory.
func (m *Memory) Path() string {
	return m.path
}

// Text returns the decoded value of t.
func (m *Memory) Text(t Tag) (string, bool, error) {
	v, ok, err := m.lookup(t)
	if !ok || err != nil {
		return "", false, err
	}
	s, err := decodeText(v)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", t, err)
	}
	return s, s != "", nil
}

// Bytes returns the raw value of t.
func (m *Memory) Bytes(t Tag) ([]byte, bool, error) {
	v, ok, err := m.lookup(t)
	if !ok || err != nil {
		return nil, false, err
	}
	b, err := decodeBytes(v)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", t, err)
	}
	return b, len(b) > 0, nil
}

// Close marks the container closed; later reads fail with model.ErrIO.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) lookup(t Tag) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, fmt.Errorf("%w: container %s is closed", model.ErrIO, m.path)
	}
	v, ok := m.values[t]
	return v, ok, nil
}
