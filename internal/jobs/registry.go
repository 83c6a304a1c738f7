package jobs

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
	"github.com/vrsandeep/docscan/internal/util"
)

// ErrInvalidClient is returned when addressing a client id with no queue.
var ErrInvalidClient = errors.New("invalid or disconnected client")

// Registry maps connected client ids to their queues. Its keys are exactly
// the set of connected clients.
type Registry struct {
	mu     sync.RWMutex
	queues map[string]*ClientQueue
	log    zerolog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		queues: make(map[string]*ClientQueue),
		log:    logger.WithComponent("registry"),
	}
}

// OnConnect creates an empty, idle queue for clientID, replacing any stale
// entry with the same id.
func (r *Registry) OnConnect(clientID string) {
	r.mu.Lock()
	stale := r.queues[clientID]
	r.queues[clientID] = &ClientQueue{}
	r.mu.Unlock()
	if stale != nil {
		r.discard(clientID, stale)
	}
}

// OnDisconnect removes the client's queue and deletes the artifacts of
// every job that had not started. No events are sent for them.
func (r *Registry) OnDisconnect(clientID string) {
	r.mu.Lock()
	q, ok := r.queues[clientID]
	delete(r.queues, clientID)
	r.mu.Unlock()
	if ok {
		r.discard(clientID, q)
	}
}

func (r *Registry) discard(clientID string, q *ClientQueue) {
	pending := q.close()
	for _, job := range pending {
		util.RemoveQuietly(job.StoragePath)
	}
	if len(pending) > 0 {
		r.log.Info().Str("client_id", clientID).Int("discarded", len(pending)).Msg("Discarded queued jobs of departed client")
	}
}

func (r *Registry) Lookup(clientID string) (*ClientQueue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[clientID]
	return q, ok
}

// Enqueue appends jobs to the client's queue as one unit: either all of
// them are queued or, if the client is unknown or leaves, none are.
func (r *Registry) Enqueue(clientID string, jobs ...models.Job) error {
	q, ok := r.Lookup(clientID)
	if !ok || !q.push(jobs...) {
		return ErrInvalidClient
	}
	return nil
}

// ClientIDs returns the connected client ids in sorted order.
func (r *Registry) ClientIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.queues))
	for id := range r.queues {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Snapshot reports the state of every queue, ordered by client id.
func (r *Registry) Snapshot() []models.QueueStatus {
	r.mu.RLock()
	out := make([]models.QueueStatus, 0, len(r.queues))
	for id, q := range r.queues {
		out = append(out, models.QueueStatus{ClientID: id, Queued: q.Len(), Processing: q.Processing()})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// PendingPaths returns the artifact paths of every queued job.
func (r *Registry) PendingPaths() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{})
	for _, q := range r.queues {
		for _, p := range q.paths() {
			out[p] = struct{}{}
		}
	}
	return out
}
