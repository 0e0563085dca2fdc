package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches []Event
	signal  chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{signal: make(chan struct{}, 16)}
}

func (r *batchRecorder) handler(_ context.Context, event Event) error {
	r.mu.Lock()
	r.batches = append(r.batches, event)
	r.mu.Unlock()
	r.signal <- struct{}{}
	return nil
}

func (r *batchRecorder) wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for change batch")
	}
}

func (r *batchRecorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make([]Event, len(r.batches))
	copy(copied, r.batches)
	return copied
}

func TestNewRequiresHandlerAndDirectory(t *testing.T) {
	_, err := New(Config{Directory: "./notes"}, nil, nil)
	require.Error(t, err)

	_, err = New(Config{}, func(context.Context, Event) error { return nil }, nil)
	require.Error(t, err)
}

func TestWatcherCoalescesBurstIntoSingleBatch(t *testing.T) {
	dir := t.TempDir()
	recorder := newBatchRecorder()

	watcher, err := New(Config{
		Directory: dir,
		Debounce:  50 * time.Millisecond,
	}, recorder.handler, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Give the watcher time to establish before generating events.
	time.Sleep(100 * time.Millisecond)

	first := filepath.Join(dir, "spring.md")
	second := filepath.Join(dir, "jpa.md")
	require.NoError(t, os.WriteFile(first, []byte("# @Autowired"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("# @Entity"), 0o644))
	require.NoError(t, os.WriteFile(first, []byte("# @Autowired updated"), 0o644))

	recorder.wait(t, 3*time.Second)

	batches := recorder.snapshot()
	require.Len(t, batches, 1)
	assert.ElementsMatch(t, []string{first, second}, batches[0].Paths)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	recorder := newBatchRecorder()

	watcher, err := New(Config{
		Directory: dir,
		Pattern:   "**/*.md",
		Debounce:  50 * time.Millisecond,
	}, recorder.handler, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# @Qualifier"), 0o644))

	recorder.wait(t, 3*time.Second)

	batches := recorder.snapshot()
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Paths, 1)
	assert.Equal(t, filepath.Join(dir, "notes.md"), batches[0].Paths[0])

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(Config{Directory: dir}, func(context.Context, Event) error { return nil }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
