package jobs

import (
	"sync"

	"github.com/vrsandeep/docscan/internal/models"
)

// ClientQueue is the FIFO of pending page jobs for one connected client.
// At most one drain loop owns it at a time, tracked by the processing flag.
type ClientQueue struct {
	mu         sync.Mutex
	jobs       []models.Job
	processing bool
	closed     bool
}

// push appends jobs in order. It reports false once the queue was closed by
// a disconnect, in which case nothing is appended.
func (q *ClientQueue) push(jobs ...models.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, jobs...)
	return true
}

// tryStart claims the drain loop. It fails when a loop is already running,
// when there is nothing to do, or when the queue is closed.
func (q *ClientQueue) tryStart() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.processing || q.closed || len(q.jobs) == 0 {
		return false
	}
	q.processing = true
	return true
}

// next pops the head job. When there is none it releases the drain loop in
// the same critical section, so a concurrent push either lands before the
// check and is drained, or finds the flag clear and may start a new loop.
func (q *ClientQueue) next() (models.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.jobs) == 0 {
		q.processing = false
		return models.Job{}, false
	}
	job := q.jobs[0]
	q.jobs[0] = models.Job{}
	q.jobs = q.jobs[1:]
	return job, true
}

func (q *ClientQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processing = false
}

// close marks the queue dead and hands back the jobs that never started.
func (q *ClientQueue) close() []models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	pending := q.jobs
	q.jobs = nil
	return pending
}

// Len returns the number of jobs waiting to start.
func (q *ClientQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Processing reports whether a drain loop currently owns the queue.
func (q *ClientQueue) Processing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

func (q *ClientQueue) paths() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.StoragePath)
	}
	return out
}
