package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []Event
	dispatcher.Subscribe(EventLoginFailed, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	event := Event{ID: "1", Type: EventLoginFailed, Subject: "alice@x.com", Timestamp: time.Now()}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(got) != 1 || got[0].Subject != "alice@x.com" {
		t.Fatalf("got = %v", got)
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventLoginSucceeded, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	_ = dispatcher.Publish(context.Background(), Event{Type: EventLoginFailed})
	if called {
		t.Fatal("handler for a different event type must not run")
	}
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var secondRan bool
	dispatcher.Subscribe(EventTokenRejected, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventTokenRejected, func(_ context.Context, _ Event) error {
		secondRan = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTokenRejected}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !secondRan {
		t.Fatal("second handler must run despite first handler's error")
	}
}
