package trace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func drain(s Storage[int]) []int {
	var out []int
	for !s.IsEmpty() {
		out = append(out, s.Retrieve())
	}
	return out
}

func TestStack_LastInFirstOut(t *testing.T) {
	s := NewStack[int]()
	for i := 1; i <= 4; i++ {
		s.Store(i)
	}
	if s.Len() != 4 {
		t.Errorf("Expected Len 4, got %d", s.Len())
	}
	if diff := cmp.Diff([]int{4, 3, 2, 1}, drain(s)); diff != "" {
		t.Errorf("Stack order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_FirstInFirstOut(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 4; i++ {
		q.Store(i)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, drain(q)); diff != "" {
		t.Errorf("Queue order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_InterleavedAndCompaction(t *testing.T) {
	q := NewQueue[int]()
	next := 0
	var got []int

	// Enough traffic to trigger compaction several times
	for round := 0; round < 50; round++ {
		for i := 0; i < 5; i++ {
			q.Store(next)
			next++
		}
		for i := 0; i < 3; i++ {
			got = append(got, q.Retrieve())
		}
	}
	got = append(got, drain(q)...)

	if len(got) != next {
		t.Fatalf("Expected %d items, got %d", next, len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected item %d at position %d, got %d", i, i, v)
		}
	}
}

func TestStorage_EmptyRetrievePanics(t *testing.T) {
	for _, kind := range []StorageKind{Stack, Queue} {
		t.Run(string(kind), func(t *testing.T) {
			s, err := NewStorage[int](kind)
			if err != nil {
				t.Fatalf("NewStorage failed: %v", err)
			}
			if !s.IsEmpty() {
				t.Error("New storage should be empty")
			}
			defer func() {
				if recover() == nil {
					t.Error("Expected panic on empty retrieve")
				}
			}()
			s.Retrieve()
		})
	}
}

func TestParseStorageKind(t *testing.T) {
	tests := []struct {
		input    string
		expected StorageKind
		wantErr  bool
	}{
		{"stack", Stack, false},
		{"S", Stack, false},
		{"lifo", Stack, false},
		{"queue", Queue, false},
		{" q ", Queue, false},
		{"FIFO", Queue, false},
		{"heap", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			kind, err := ParseStorageKind(test.input)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseStorageKind(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			}
			if kind != test.expected {
				t.Errorf("ParseStorageKind(%q) = %q, expected %q", test.input, kind, test.expected)
			}
		})
	}
}

func TestNewStorage_UnknownKind(t *testing.T) {
	if _, err := NewStorage[int]("heap"); err == nil {
		t.Error("Expected error for unknown storage kind")
	}
}
