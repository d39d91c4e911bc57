package linestore

import (
	"sync"

	"tailsift/internal/config"
)

// Line is a single stored log line with its original number. Numbers start
// at 1 and increase by one per append; Reset restarts numbering at 1.
type Line struct {
	Number int
	Text   string
}

// Store defines the interface for the append-only line store
type Store interface {
	Append(text string) int
	Snapshot() []Line
	Tail(n int) []Line
	Len() int
	Reset()
}

// store implements the Store interface with single-writer/multi-reader safety
type store struct {
	lines    []Line
	next     int
	maxLines int
	mu       sync.RWMutex
}

// New creates a new line store bounded by the configured maximum
func New(cfg *config.Config) Store {
	return NewWithMax(cfg.Store.MaxLines)
}

// NewWithMax creates a new line store retaining at most maxLines lines
func NewWithMax(maxLines int) Store {
	return &store{
		lines:    []Line{},
		next:     1,
		maxLines: maxLines,
	}
}

// Append stores a line and returns its assigned original number. When the
// retention cap is exceeded the oldest lines are evicted; numbering continues.
func (s *store) Append(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	num := s.next
	s.next++

	s.lines = append(s.lines, Line{Number: num, Text: text})
	if s.maxLines > 0 && len(s.lines) > s.maxLines {
		s.lines = s.lines[len(s.lines)-s.maxLines:]
	}

	return num
}

// Snapshot returns an immutable point-in-time copy of the retained lines
func (s *store) Snapshot() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)

	return out
}

// Tail returns a copy of the last n retained lines
func (s *store) Tail(n int) []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.lines) {
		n = len(s.lines)
	}

	if n <= 0 {
		return []Line{}
	}

	out := make([]Line, n)
	copy(out, s.lines[len(s.lines)-n:])

	return out
}

// Len returns the number of retained lines
func (s *store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.lines)
}

// Reset clears all lines and restarts numbering at 1
func (s *store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = []Line{}
	s.next = 1
}
