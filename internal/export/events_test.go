package export_test

import (
	"testing"

	"github.com/courseforge/courseforge/internal/export"
)

func TestMemoryEventLogger_StampsAndCopies(t *testing.T) {
	l := export.NewMemoryEventLogger()
	l.LogEvent(export.Event{JobID: "j1", CourseID: "c1", Stage: "started"})

	events := l.Events()
	if len(events) != 1 {
		t.Fatalf("Events() = %d, want 1", len(events))
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}

	// Mutating the returned slice must not affect the logger.
	events[0].Stage = "tampered"
	if l.Events()[0].Stage != "started" {
		t.Error("Events() returned shared backing storage")
	}
}

func TestFeed_SubscribeReceivesJobEvents(t *testing.T) {
	feed := export.NewFeed()
	ch, cancel := feed.Subscribe("j1")
	defer cancel()

	feed.LogEvent(export.Event{JobID: "j1", Stage: "started"})
	feed.LogEvent(export.Event{JobID: "other", Stage: "started"})
	feed.LogEvent(export.Event{JobID: "j1", Stage: "completed"})

	if e := <-ch; e.Stage != "started" {
		t.Errorf("first event stage = %q, want started", e.Stage)
	}
	if e := <-ch; e.Stage != "completed" {
		t.Errorf("second event stage = %q, want completed", e.Stage)
	}
	select {
	case e := <-ch:
		t.Errorf("unexpected event %+v, other jobs must not leak in", e)
	default:
	}
}

func TestFeed_CancelClosesChannel(t *testing.T) {
	feed := export.NewFeed()
	ch, cancel := feed.Subscribe("j1")

	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	// Logging after cancel must not panic or block.
	feed.LogEvent(export.Event{JobID: "j1", Stage: "started"})
}

func TestFeed_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	feed := export.NewFeed()
	ch, cancel := feed.Subscribe("j1")
	defer cancel()

	// Overfill the buffer; LogEvent must never block.
	for i := 0; i < 40; i++ {
		feed.LogEvent(export.Event{JobID: "j1", Stage: "started"})
	}

	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want full buffer %d with the rest dropped", len(ch), cap(ch))
	}
}

func TestMulti_FansOut(t *testing.T) {
	a := export.NewMemoryEventLogger()
	b := export.NewMemoryEventLogger()

	export.Multi{a, b}.LogEvent(export.Event{JobID: "j1", Stage: "started"})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("fan-out delivered %d/%d events, want 1/1", len(a.Events()), len(b.Events()))
	}
}
