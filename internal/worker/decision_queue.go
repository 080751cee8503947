package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-gateway/internal/auth"
	"github.com/spec-kit/agent-gateway/internal/events"
)

const defaultQueueSize = 256

// DecisionQueue decouples the request path from audit sinks. Record never
// blocks: when the buffer is full the decision is dropped and counted.
type DecisionQueue struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	mu         sync.RWMutex
	closed     bool
	ch         chan auth.Decision
	dropped    atomic.Uint64
	done       chan struct{}
}

// NewDecisionQueue builds the queue and starts its drain goroutine.
func NewDecisionQueue(size int, dispatcher events.Dispatcher, logger *zap.Logger) *DecisionQueue {
	if size <= 0 {
		size = defaultQueueSize
	}
	q := &DecisionQueue{
		dispatcher: dispatcher,
		logger:     logger,
		ch:         make(chan auth.Decision, size),
		done:       make(chan struct{}),
	}
	go q.drain()
	return q
}

// Record enqueues a decision without blocking. It implements auth.Recorder.
// Decisions recorded after Close are discarded.
func (q *DecisionQueue) Record(_ context.Context, decision auth.Decision) {
	if q == nil {
		return
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- decision:
	default:
		q.dropped.Add(1)
		q.logger.Warn("decision queue full, dropping record",
			zap.String("outcome", string(decision.Outcome)),
			zap.String("path", decision.Path))
	}
}

// Close stops accepting decisions and waits for the buffer to drain. Safe to
// call more than once.
func (q *DecisionQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()
	<-q.done
}

// Dropped reports how many decisions were discarded due to a full buffer.
func (q *DecisionQueue) Dropped() uint64 {
	return q.dropped.Load()
}

func (q *DecisionQueue) drain() {
	defer close(q.done)
	for decision := range q.ch {
		q.publish(decision)
	}
}

func (q *DecisionQueue) publish(decision auth.Decision) {
	event := events.Event{
		ID:        uuid.NewString(),
		Timestamp: decision.At,
	}
	switch decision.Outcome {
	case auth.DecisionAllowed:
		event.Type = events.EventAuthAllowed
		event.Payload = events.AuthAllowedPayload{
			UserID: decision.UserID,
			Method: decision.Method,
			Path:   decision.Path,
		}
	default:
		event.Type = events.EventAuthDenied
		event.Payload = events.AuthDeniedPayload{
			FailureKind: string(decision.FailureKind),
			Diagnostic:  decision.Diagnostic,
			Method:      decision.Method,
			Path:        decision.Path,
		}
	}

	if err := q.dispatcher.Publish(context.Background(), event); err != nil {
		q.logger.Error("failed to publish auth decision", zap.Error(err))
	}
}
