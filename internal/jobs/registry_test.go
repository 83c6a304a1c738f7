package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/docscan/internal/models"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	t.Run("Unknown client", func(t *testing.T) {
		_, ok := reg.Lookup("nobody")
		assert.False(t, ok)
		assert.ErrorIs(t, reg.Enqueue("nobody", models.Job{}), ErrInvalidClient)
	})

	t.Run("Connect creates an idle empty queue", func(t *testing.T) {
		reg.OnConnect("b")
		reg.OnConnect("a")
		q, ok := reg.Lookup("a")
		require.True(t, ok)
		assert.Zero(t, q.Len())
		assert.False(t, q.Processing())
		assert.Equal(t, []string{"a", "b"}, reg.ClientIDs())
	})

	t.Run("Enqueue and snapshot", func(t *testing.T) {
		jobs := pageJobs(t, 3)
		require.NoError(t, reg.Enqueue("a", jobs...))

		assert.Equal(t, []models.QueueStatus{
			{ClientID: "a", Queued: 3},
			{ClientID: "b", Queued: 0},
		}, reg.Snapshot())

		pending := reg.PendingPaths()
		assert.Len(t, pending, 3)
		assert.Contains(t, pending, jobs[0].StoragePath)
	})

	t.Run("Reconnect with the same id replaces the stale queue", func(t *testing.T) {
		q, _ := reg.Lookup("a")
		stale := q.paths()
		reg.OnConnect("a")

		fresh, _ := reg.Lookup("a")
		assert.Zero(t, fresh.Len())
		for _, p := range stale {
			assert.NoFileExists(t, p)
		}
	})

	t.Run("Disconnect removes the entry", func(t *testing.T) {
		reg.OnDisconnect("b")
		_, ok := reg.Lookup("b")
		assert.False(t, ok)
		assert.Equal(t, []string{"a"}, reg.ClientIDs())

		// Disconnecting twice is harmless.
		reg.OnDisconnect("b")
	})
}

func TestClientQueueReleasesFlagWhenEmpty(t *testing.T) {
	q := &ClientQueue{}
	assert.False(t, q.tryStart(), "empty queue must not start")

	require.True(t, q.push(models.Job{PageNumber: 1}))
	require.True(t, q.tryStart())
	assert.False(t, q.tryStart(), "second loop must not start")

	job, ok := q.next()
	require.True(t, ok)
	assert.Equal(t, 1, job.PageNumber)

	_, ok = q.next()
	assert.False(t, ok)
	assert.False(t, q.Processing())

	q.close()
	assert.False(t, q.push(models.Job{}))
	assert.False(t, q.tryStart())
}
