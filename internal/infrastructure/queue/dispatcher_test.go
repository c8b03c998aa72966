package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied []domain.SessionChange
	done    chan struct{}
	expect  int
}

func newRecordingApplier(expect int) *recordingApplier {
	return &recordingApplier{done: make(chan struct{}), expect: expect}
}

func (a *recordingApplier) Apply(change domain.SessionChange) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, change)
	if len(a.applied) == a.expect {
		close(a.done)
	}
}

func (a *recordingApplier) wait(t *testing.T) []domain.SessionChange {
	t.Helper()
	select {
	case <-a.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for changes to apply")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.SessionChange, len(a.applied))
	copy(out, a.applied)
	return out
}

func TestDispatcher_PreservesPerUserOrdering(t *testing.T) {
	const changes = 50
	applier := newRecordingApplier(changes)
	d := NewDispatcher(4, applier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < changes; i++ {
		d.Enqueue(domain.SessionChange{
			UserID: "user-1",
			Type:   fmt.Sprintf("change-%d", i),
		})
	}

	applied := applier.wait(t)
	for i, change := range applied {
		want := fmt.Sprintf("change-%d", i)
		if change.Type != want {
			t.Fatalf("ordering broken at %d: expected %s, got %s", i, want, change.Type)
		}
	}
}

func TestDispatcher_SameUserAlwaysSameShard(t *testing.T) {
	d := NewDispatcher(8, newRecordingApplier(0), zerolog.Nop())

	first := d.shardIndex("user-42")
	for i := 0; i < 100; i++ {
		if got := d.shardIndex("user-42"); got != first {
			t.Fatalf("shard changed between calls: %d vs %d", got, first)
		}
	}
}

func TestDispatcher_BatchDeliversAllChanges(t *testing.T) {
	applier := newRecordingApplier(3)
	d := NewDispatcher(0, applier, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.EnqueueBatch([]domain.SessionChange{
		{UserID: "a", Type: "signed_in"},
		{UserID: "b", Type: "signed_in"},
		{UserID: "a", Type: "signed_out"},
	})

	applied := applier.wait(t)
	if len(applied) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(applied))
	}

	var aTypes []string
	for _, c := range applied {
		if c.UserID == "a" {
			aTypes = append(aTypes, c.Type)
		}
	}
	if len(aTypes) != 2 || aTypes[0] != "signed_in" || aTypes[1] != "signed_out" {
		t.Fatalf("per-user order lost: %v", aTypes)
	}
}
