package source

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailsift/internal/app/errors"
)

// syncHandler is a goroutine-safe recording handler for tail tests
type syncHandler struct {
	mu     sync.Mutex
	lines  []string
	errs   []error
	resets int
}

func (h *syncHandler) Line(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines = append(h.lines, text)
}

func (h *syncHandler) Err(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.errs = append(h.errs, err)
}

func (h *syncHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.resets++
}

func (h *syncHandler) snapshot() ([]string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.lines))
	copy(out, h.lines)

	return out, h.resets
}

func waitForLines(t *testing.T, h *syncHandler, n int) []string {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		lines, _ := h.snapshot()
		if len(lines) >= n {
			return lines
		}

		time.Sleep(10 * time.Millisecond)
	}

	lines, _ := h.snapshot()
	t.Fatalf("expected %d lines, got %v", n, lines)

	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString(content)
	require.NoError(t, err)
}

func Test_Tail_ReadsExistingThenFollowsAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "one\ntwo\n")

	s, err := NewTail(path, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &syncHandler{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = s.Run(ctx, h)
	}()

	waitForLines(t, h, 2)

	appendFile(t, path, "three\n")

	lines := waitForLines(t, h, 3)
	assert.Equal(t, []string{"one", "two", "three"}, lines)

	cancel()
	<-done
}

func Test_Tail_PartialLineWaitsForNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "complete\npart")

	s, err := NewTail(path, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &syncHandler{}
	go func() { _ = s.Run(ctx, h) }()

	lines := waitForLines(t, h, 1)
	assert.Equal(t, []string{"complete"}, lines)

	appendFile(t, path, "ial\n")

	lines = waitForLines(t, h, 2)
	assert.Equal(t, []string{"complete", "partial"}, lines)
}

func Test_Tail_TruncationResetsHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	writeFile(t, path, "old one\nold two\n")

	s, err := NewTail(path, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &syncHandler{}
	go func() { _ = s.Run(ctx, h) }()

	waitForLines(t, h, 2)

	writeFile(t, path, "fresh\n")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		lines, resets := h.snapshot()
		if resets > 0 && len(lines) == 3 && lines[2] == "fresh" {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	lines, resets := h.snapshot()
	t.Fatalf("truncation not handled: lines=%v resets=%d", lines, resets)
}

func Test_Tail_MissingFileRejected(t *testing.T) {
	_, err := NewTail(filepath.Join(t.TempDir(), "nope.log"), nil, testLogger())

	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}

func Test_Tail_DirectoryResolvesFirstMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.log"), "from b\n")
	writeFile(t, filepath.Join(dir, "a.log"), "from a\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a log\n")

	m, err := NewMatcher([]string{"*.log"}, nil)
	require.NoError(t, err)

	s, err := NewTail(dir, m, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &syncHandler{}
	go func() { _ = s.Run(ctx, h) }()

	lines := waitForLines(t, h, 1)
	assert.Equal(t, []string{"from a"}, lines)
}

func Test_Tail_DirectoryWithoutMatchRejected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "text\n")

	m, err := NewMatcher([]string{"*.log"}, nil)
	require.NoError(t, err)

	_, err = NewTail(dir, m, testLogger())

	assert.ErrorIs(t, err, errors.ErrNoSourceMatched)
}
