package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-gateway/internal/events"
	"github.com/spec-kit/agent-gateway/internal/persistence"
)

// AlertService forwards denied decisions to a Redis stream so operators can
// watch rejection spikes. Without a configured Redis client it is a no-op.
type AlertService struct {
	redis  *persistence.Redis
	stream string
	logger *zap.Logger
}

// NewAlertService creates the service.
func NewAlertService(r *persistence.Redis, stream string, logger *zap.Logger) *AlertService {
	return &AlertService{redis: r, stream: stream, logger: logger}
}

// RegisterHandlers subscribes to denied decision events.
func (s *AlertService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventAuthDenied, s.handleDenied)
}

func (s *AlertService) handleDenied(ctx context.Context, event events.Event) error {
	if !s.redis.Enabled() {
		return nil
	}
	payload, ok := event.Payload.(events.AuthDeniedPayload)
	if !ok {
		return nil
	}

	err := s.redis.Client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"failure_kind": payload.FailureKind,
			"diagnostic":   payload.Diagnostic,
			"method":       payload.Method,
			"path":         payload.Path,
			"decided_at":   event.Timestamp.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		// Logged here; alerting is best effort and the dispatcher should
		// not log it a second time.
		s.logger.Warn("failed to publish denial alert",
			zap.String("stream", s.stream),
			zap.Error(err))
	}
	return nil
}
