package trace

import (
	"fmt"
	"strings"
)

// Storage holds states waiting to be explored. The implementation decides the
// order states come back out; the search loop does not care which one it gets.
type Storage[T any] interface {
	Store(item T)
	// Retrieve removes and returns the next item. It panics on empty storage.
	Retrieve() T
	IsEmpty() bool
	Len() int
}

// StorageKind selects a Storage ordering
type StorageKind string

const (
	Stack StorageKind = "stack"
	Queue StorageKind = "queue"
)

// ParseStorageKind maps user input to a StorageKind
func ParseStorageKind(s string) (StorageKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stack", "s", "lifo", "dfs":
		return Stack, nil
	case "queue", "q", "fifo", "bfs":
		return Queue, nil
	default:
		return "", fmt.Errorf("unknown storage %q: use stack or queue", s)
	}
}

// NewStorage returns an empty Storage of the given kind
func NewStorage[T any](kind StorageKind) (Storage[T], error) {
	switch kind {
	case Stack:
		return NewStack[T](), nil
	case Queue:
		return NewQueue[T](), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
}

// stack retrieves the most recently stored item (depth-first order)
type stack[T any] struct {
	items []T
}

// NewStack returns last-in-first-out storage
func NewStack[T any]() Storage[T] {
	return &stack[T]{items: make([]T, 0, 16)}
}

func (s *stack[T]) Store(item T) {
	s.items = append(s.items, item)
}

func (s *stack[T]) Retrieve() T {
	if len(s.items) == 0 {
		panic("trace: retrieve from empty stack")
	}
	last := len(s.items) - 1
	item := s.items[last]
	var zero T
	s.items[last] = zero // drop the reference so the state can be collected
	s.items = s.items[:last]
	return item
}

func (s *stack[T]) IsEmpty() bool { return len(s.items) == 0 }

func (s *stack[T]) Len() int { return len(s.items) }

// queue retrieves the earliest stored item (breadth-first order)
type queue[T any] struct {
	items []T
	head  int
}

// NewQueue returns first-in-first-out storage
func NewQueue[T any]() Storage[T] {
	return &queue[T]{items: make([]T, 0, 16)}
}

func (q *queue[T]) Store(item T) {
	q.items = append(q.items, item)
}

func (q *queue[T]) Retrieve() T {
	if q.head == len(q.items) {
		panic("trace: retrieve from empty queue")
	}
	item := q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++

	// Compact once the consumed prefix dominates the backing array
	if q.head > 32 && q.head*2 >= len(q.items) {
		remaining := copy(q.items, q.items[q.head:])
		clear(q.items[remaining:])
		q.items = q.items[:remaining]
		q.head = 0
	}
	return item
}

func (q *queue[T]) IsEmpty() bool { return q.head == len(q.items) }

func (q *queue[T]) Len() int { return len(q.items) - q.head }
