// Package export orchestrates course exports: it fetches a stored document
// snapshot, runs the validation/build pipeline and reports progress.
package export

import (
	"sync"
	"time"
)

// Event is one progress notification for an export job.
type Event struct {
	JobID     string    `json:"jobId"`
	CourseID  string    `json:"courseId"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventLogger receives export progress events.
type EventLogger interface {
	LogEvent(event Event)
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) {}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{events: []Event{}}
}

func (l *MemoryEventLogger) LogEvent(event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// Feed fans export events out to per-job subscribers, backing the progress
// websocket. Slow subscribers drop events rather than block the export.
type Feed struct {
	mu   sync.Mutex
	subs map[string][]chan Event
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string][]chan Event)}
}

// LogEvent implements EventLogger by broadcasting to the job's subscribers.
func (f *Feed) LogEvent(event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers for events of one job. The returned cancel func must
// be called to release the subscription.
func (f *Feed) Subscribe(jobID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	f.mu.Lock()
	f.subs[jobID] = append(f.subs[jobID], ch)
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[jobID]
		for i, c := range subs {
			if c == ch {
				f.subs[jobID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(f.subs[jobID]) == 0 {
			delete(f.subs, jobID)
		}
		close(ch)
	}
	return ch, cancel
}

// Multi fans events out to several loggers.
type Multi []EventLogger

func (m Multi) LogEvent(event Event) {
	for _, l := range m {
		l.LogEvent(event)
	}
}
