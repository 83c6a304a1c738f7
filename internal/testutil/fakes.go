// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/vrsandeep/docscan/internal/models"
)

// FakeOCR returns canned text per page image base name.
type FakeOCR struct {
	mu      sync.Mutex
	Texts   map[string]string
	Default string
	Errs    map[string]error
	Delay   time.Duration
	calls   []string
}

func (f *FakeOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	name := filepath.Base(imagePath)
	f.mu.Lock()
	f.calls = append(f.calls, name)
	text, ok := f.Texts[name]
	err := f.Errs[name]
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		text = f.Default
	}
	return text, nil
}

func (f *FakeOCR) Close() error { return nil }

// Calls returns the base names of every recognized image, in call order.
func (f *FakeOCR) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Event is one status event captured by RecordingEmitter.
type Event struct {
	ClientID string
	Status   models.FileStatus
}

// RecordingEmitter captures every emitted status event.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *RecordingEmitter) Emit(_ context.Context, clientID string, status models.FileStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{ClientID: clientID, Status: status})
	return r.Err
}

func (r *RecordingEmitter) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// For returns the statuses sent to one client, in order.
func (r *RecordingEmitter) For(clientID string) []models.FileStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FileStatus
	for _, e := range r.events {
		if e.ClientID == clientID {
			out = append(out, e.Status)
		}
	}
	return out
}
