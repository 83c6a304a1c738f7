package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/logger"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobRunning  = errors.New("job is already running")
)

// Task is a named maintenance job.
type Task func(ctx context.Context) (string, error)

type JobStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "idle", "running", "success", "failed"
	Message   string    `json:"message"`
	Runs      int       `json:"runs"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Manager runs registered maintenance jobs and tracks their last outcome.
// A job never runs twice concurrently.
type Manager struct {
	mu     sync.Mutex
	jobs   map[string]Task
	status map[string]*JobStatus
	log    zerolog.Logger
}

func NewManager() *Manager {
	return &Manager{
		jobs:   make(map[string]Task),
		status: make(map[string]*JobStatus),
		log:    logger.WithComponent("job_manager"),
	}
}

func (m *Manager) Register(id, name string, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[id] = task
	m.status[id] = &JobStatus{ID: id, Name: name, Status: "idle"}
}

// RunJob starts the job in a new goroutine.
func (m *Manager) RunJob(ctx context.Context, id string) error {
	m.mu.Lock()
	task, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: '%s'", ErrJobNotFound, id)
	}
	status := m.status[id]
	if status.Status == "running" {
		m.mu.Unlock()
		return fmt.Errorf("%w: '%s'", ErrJobRunning, id)
	}
	status.Status = "running"
	status.StartTime = time.Now()
	status.Message = "Job started..."
	status.Runs++
	m.mu.Unlock()

	m.log.Debug().Str("job", id).Msg("Starting job")
	go func() {
		var (
			msg string
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
			m.mu.Lock()
			status.EndTime = time.Now()
			if err != nil {
				status.Status = "failed"
				status.Message = err.Error()
			} else {
				status.Status = "success"
				status.Message = msg
			}
			m.mu.Unlock()
			if err != nil {
				m.log.Error().Err(err).Str("job", id).Msg("Job failed")
			}
		}()
		msg, err = task(ctx)
	}()
	return nil
}

// GetStatus returns a copy of every job's status ordered by id.
func (m *Manager) GetStatus() []JobStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]JobStatus, 0, len(m.status))
	for _, s := range m.status {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
