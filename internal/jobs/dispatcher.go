package jobs

import (
	"context"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/logger"
	"github.com/vrsandeep/docscan/internal/models"
)

// Processor runs one page job to its terminal event.
type Processor interface {
	Process(ctx context.Context, clientID string, job models.Job)
}

// Dispatcher drains client queues. Jobs of one client run strictly one
// after another; different clients drain concurrently.
type Dispatcher struct {
	registry  *Registry
	processor Processor
	log       zerolog.Logger
}

func NewDispatcher(registry *Registry, processor Processor) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		processor: processor,
		log:       logger.WithComponent("dispatcher"),
	}
}

// Trigger drains the client's queue on the calling goroutine. It returns
// immediately when the client is unknown, its queue is empty, or another
// drain loop already owns it.
func (d *Dispatcher) Trigger(ctx context.Context, clientID string) {
	q, ok := d.registry.Lookup(clientID)
	if !ok || !q.tryStart() {
		return
	}

	owned := true
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("client_id", clientID).Interface("panic", r).Msg("Drain loop panicked")
		}
		if owned {
			q.stop()
		}
	}()

	for {
		job, ok := q.next()
		if !ok {
			// next released the queue; a new loop may already own it.
			owned = false
			return
		}
		d.process(ctx, clientID, job)
	}
}

// process isolates a panicking job so the rest of the queue still drains.
func (d *Dispatcher) process(ctx context.Context, clientID string, job models.Job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("client_id", clientID).
				Str("file", job.SourceFileName).
				Int("page", job.PageNumber).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Page job panicked")
		}
	}()
	d.processor.Process(ctx, clientID, job)
}

// TriggerAll starts a drain for every connected client that has work and
// no active loop. It does not wait for the drains to finish.
func (d *Dispatcher) TriggerAll(ctx context.Context) int {
	started := 0
	for _, id := range d.registry.ClientIDs() {
		q, ok := d.registry.Lookup(id)
		if !ok || q.Processing() || q.Len() == 0 {
			continue
		}
		started++
		go d.Trigger(ctx, id)
	}
	return started
}
