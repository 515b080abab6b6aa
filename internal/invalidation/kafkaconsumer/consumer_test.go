package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/openglam/tilegate/internal/invalidation"
)

type fakePurger struct {
	mu     sync.Mutex
	purged []string
	fail   bool
}

func (f *fakePurger) Purge(_ context.Context, identifier string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errors.New("boom")
	}
	f.purged = append(f.purged, identifier)
	return 1, nil
}

func newConsumerForTest(p Purger) *Consumer {
	cfg := NewConfig("localhost:9092", "tile-invalidation", "tilegate")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, log, p)
}

func msgFor(t *testing.T, ev invalidation.Event) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &sarama.ConsumerMessage{Topic: "tile-invalidation", Value: b}
}

func event(identifier string, seq uint64) invalidation.Event {
	return invalidation.Event{
		Version:    1,
		Identifier: identifier,
		TS:         time.Now().UTC(),
		Seq:        seq,
	}
}

func TestProcessOne_Purges(t *testing.T) {
	fp := &fakePurger{}
	c := newConsumerForTest(fp)

	if err := c.ProcessOne(context.Background(), msgFor(t, event("img1", 1))); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	if len(fp.purged) != 1 || fp.purged[0] != "img1" {
		t.Fatalf("purged = %v", fp.purged)
	}
}

func TestProcessOne_SkipsReplays(t *testing.T) {
	fp := &fakePurger{}
	c := newConsumerForTest(fp)
	ctx := context.Background()

	for _, seq := range []uint64{5, 5, 4} {
		if err := c.ProcessOne(ctx, msgFor(t, event("img1", seq))); err != nil {
			t.Fatalf("ProcessOne(seq=%d): %v", seq, err)
		}
	}
	if len(fp.purged) != 1 {
		t.Fatalf("purged %d times, want 1 (replays must be skipped)", len(fp.purged))
	}

	// a newer event applies again
	if err := c.ProcessOne(ctx, msgFor(t, event("img1", 6))); err != nil {
		t.Fatalf("ProcessOne(seq=6): %v", err)
	}
	if len(fp.purged) != 2 {
		t.Fatalf("purged %d times, want 2", len(fp.purged))
	}
}

func TestProcessOne_FailedPurgeStaysEligible(t *testing.T) {
	fp := &fakePurger{fail: true}
	c := newConsumerForTest(fp)
	ctx := context.Background()

	if err := c.ProcessOne(ctx, msgFor(t, event("img1", 1))); err == nil {
		t.Fatal("expected error from failed purge")
	}

	// redelivery after the purger recovers must apply
	fp.mu.Lock()
	fp.fail = false
	fp.mu.Unlock()
	if err := c.ProcessOne(ctx, msgFor(t, event("img1", 1))); err != nil {
		t.Fatalf("ProcessOne redelivery: %v", err)
	}
	if len(fp.purged) != 1 {
		t.Fatalf("purged = %v, want one entry", fp.purged)
	}
}

func TestProcessOne_DropsBadEvents(t *testing.T) {
	fp := &fakePurger{}
	c := newConsumerForTest(fp)
	ctx := context.Background()

	bad := []*sarama.ConsumerMessage{
		{Value: []byte("not json")},
		msgFor(t, invalidation.Event{Version: 2, Identifier: "img1", TS: time.Now()}),
		msgFor(t, invalidation.Event{Version: 1, Identifier: "", TS: time.Now()}),
		msgFor(t, invalidation.Event{Version: 1, Identifier: "a/b", TS: time.Now()}),
		msgFor(t, invalidation.Event{Version: 1, Identifier: "img1"}),
	}
	for i, m := range bad {
		if err := c.ProcessOne(ctx, m); err != nil {
			t.Fatalf("bad event #%d returned error (must be dropped): %v", i, err)
		}
	}
	if len(fp.purged) != 0 {
		t.Fatalf("bad events triggered purges: %v", fp.purged)
	}
}

func TestEventValidate(t *testing.T) {
	good := event("img1", 0)
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
