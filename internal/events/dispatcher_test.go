package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcher_FanOut(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var first, second []Event
	dispatcher.Subscribe(EventAuthDenied, func(_ context.Context, event Event) error {
		first = append(first, event)
		return nil
	})
	dispatcher.Subscribe(EventAuthDenied, func(_ context.Context, event Event) error {
		second = append(second, event)
		return nil
	})

	event := Event{
		ID:        "evt-1",
		Type:      EventAuthDenied,
		Timestamp: time.Now(),
		Payload:   AuthDeniedPayload{FailureKind: "expired", Method: "GET", Path: "/api/v1/me"},
	}
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, event.ID, first[0].ID)
}

func TestDispatcher_HandlerErrorDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	called := false
	dispatcher.Subscribe(EventAuthAllowed, func(context.Context, Event) error {
		return errors.New("sink unavailable")
	})
	dispatcher.Subscribe(EventAuthAllowed, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "evt-2", Type: EventAuthAllowed})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())
	err := dispatcher.Publish(context.Background(), Event{ID: "evt-3", Type: EventAuthAllowed})
	require.NoError(t, err)
}
