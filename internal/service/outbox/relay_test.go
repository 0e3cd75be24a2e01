package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

type stubPublisher struct {
	mu       sync.Mutex
	failures int
	events   []domain.ChangeEvent
	attempts int
}

func (s *stubPublisher) PublishChange(_ context.Context, event domain.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failures > 0 {
		s.failures--
		return errors.New("broker unavailable")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubPublisher) delivered() []domain.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChangeEvent(nil), s.events...)
}

func (s *stubPublisher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func event(id string) domain.ChangeEvent {
	return domain.ChangeEvent{Collection: "shops", Action: domain.ChangeCreated, RecordID: id}
}

func TestRelay_FlushDeliversInOrder(t *testing.T) {
	t.Parallel()

	publisher := &stubPublisher{}
	relay := NewRelay(publisher, WithRetryBaseDelay(0))

	for _, id := range []string{"1", "2", "3"} {
		if err := relay.PublishChange(context.Background(), event(id)); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}
	if got := relay.Pending(); got != 3 {
		t.Fatalf("expected 3 pending events, got %d", got)
	}

	if got := relay.Flush(context.Background()); got != 3 {
		t.Fatalf("expected 3 delivered events, got %d", got)
	}
	delivered := publisher.delivered()
	for i, id := range []string{"1", "2", "3"} {
		if delivered[i].RecordID != id {
			t.Fatalf("event %d: expected record %s, got %s", i, id, delivered[i].RecordID)
		}
	}
	if relay.Pending() != 0 {
		t.Fatalf("queue must be empty after flush")
	}
}

func TestRelay_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	publisher := &stubPublisher{failures: 2}
	relay := NewRelay(publisher, WithRetryBaseDelay(0), WithMaxAttempts(3))

	_ = relay.PublishChange(context.Background(), event("1"))
	if got := relay.Flush(context.Background()); got != 1 {
		t.Fatalf("expected event delivered after retries, got %d", got)
	}
	if got := publisher.calls(); got != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", got)
	}
}

func TestRelay_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	publisher := &stubPublisher{failures: 10}
	relay := NewRelay(publisher, WithRetryBaseDelay(0), WithMaxAttempts(2))

	_ = relay.PublishChange(context.Background(), event("1"))
	_ = relay.PublishChange(context.Background(), event("2"))
	if got := relay.Flush(context.Background()); got != 0 {
		t.Fatalf("expected no deliveries, got %d", got)
	}
	if got := publisher.calls(); got != 4 {
		t.Fatalf("expected 2 attempts per event, got %d", got)
	}
}

func TestRelay_DropsWhenQueueIsFull(t *testing.T) {
	t.Parallel()

	relay := NewRelay(&stubPublisher{}, WithQueueSize(1))
	if err := relay.PublishChange(context.Background(), event("1")); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := relay.PublishChange(context.Background(), event("2")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestRelay_RunDeliversUntilCanceled(t *testing.T) {
	t.Parallel()

	publisher := &stubPublisher{}
	relay := NewRelay(publisher, WithRetryBaseDelay(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	_ = relay.PublishChange(context.Background(), event("1"))
	deadline := time.Now().Add(time.Second)
	for len(publisher.delivered()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(publisher.delivered()) != 1 {
		t.Fatalf("Run did not deliver the event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRelay_RetryBackoff(t *testing.T) {
	t.Parallel()

	relay := NewRelay(nil, WithRetryBaseDelay(10*time.Millisecond))
	if got := relay.retryBackoff(1); got != 10*time.Millisecond {
		t.Fatalf("attempt 1: %v", got)
	}
	if got := relay.retryBackoff(3); got != 40*time.Millisecond {
		t.Fatalf("attempt 3: %v", got)
	}

	huge := NewRelay(nil, WithRetryBaseDelay(time.Duration(1<<62)))
	if got := huge.retryBackoff(10); got != time.Duration(1<<63-1) {
		t.Fatalf("expected saturation, got %v", got)
	}
}

func TestRelay_NilDownstreamIsDisabled(t *testing.T) {
	t.Parallel()

	relay := NewRelay(nil)
	_ = relay.PublishChange(context.Background(), event("1"))
	if got := relay.Flush(context.Background()); got != 0 {
		t.Fatalf("expected no deliveries without downstream, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay.Run(ctx)
}
