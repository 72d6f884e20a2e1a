package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroker_FansOutToEverySubscriber(t *testing.T) {
	t.Parallel()

	broker, err := NewBroker(2, nil, nil)
	require.NoError(t, err)
	defer broker.Close()

	first, cancelFirst := broker.Subscribe(4)
	defer cancelFirst()
	second, cancelSecond := broker.Subscribe(4)
	defer cancelSecond()

	broker.Publish(context.Background(), "league:updated", map[string]any{"reason": "saveLeague"})

	for _, ch := range []<-chan Event{first, second} {
		ev := receive(t, ch)
		assert.Equal(t, "league:updated", ev.Name)
		assert.Equal(t, "saveLeague", ev.Reason)
		assert.False(t, ev.At.IsZero())
	}
}

func TestBroker_CancelledSubscriberReceivesNothing(t *testing.T) {
	t.Parallel()

	broker, err := NewBroker(1, nil, nil)
	require.NoError(t, err)
	defer broker.Close()

	ch, cancel := broker.Subscribe(1)
	cancel()
	cancel()
	assert.Equal(t, 0, broker.Subscribers())

	broker.Publish(context.Background(), "league:updated", map[string]any{"reason": "bidPlaced"})

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event after cancel: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	t.Parallel()

	broker, err := NewBroker(1, nil, nil)
	require.NoError(t, err)
	defer broker.Close()

	_, cancel := broker.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			broker.Publish(context.Background(), "league:updated", map[string]any{"reason": "saveLeague"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestBroker_SubscribeAfterClose(t *testing.T) {
	t.Parallel()

	broker, err := NewBroker(1, nil, nil)
	require.NoError(t, err)
	broker.Close()

	_, cancel := broker.Subscribe(1)
	defer cancel()
	assert.Equal(t, 0, broker.Subscribers())

	broker.Publish(context.Background(), "league:updated", nil)
}
