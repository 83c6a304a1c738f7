package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/docscan/internal/testutil"
)

func TestWatcherIngestsDroppedFiles(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "before.jpg", testutil.JPEGBytes(t, 8, 8))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewWatcher(e.svc, "c1", dir, 50*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	testutil.WriteFile(t, dir, "slip-2.jpg", testutil.JPEGBytes(t, 8, 8))
	testutil.WriteFile(t, dir, "slip-10.jpg", testutil.JPEGBytes(t, 8, 8))
	testutil.WriteFile(t, dir, "readme.txt", []byte("ignored"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0755))

	require.Eventually(t, func() bool {
		e.queues.mu.Lock()
		defer e.queues.mu.Unlock()
		return len(e.queues.enqueued) == 2
	}, 3*time.Second, 20*time.Millisecond)

	e.queues.mu.Lock()
	names := []string{e.queues.enqueued[0].SourceFileName, e.queues.enqueued[1].SourceFileName}
	e.queues.mu.Unlock()
	assert.Equal(t, []string{"slip-2.jpg", "slip-10.jpg"}, names)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	e := newEnv(t)
	w := NewWatcher(e.svc, "c1", filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, w.Run(context.Background()))
}
