package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/agent-gateway/internal/domain"
	"github.com/spec-kit/agent-gateway/internal/events"
	"github.com/spec-kit/agent-gateway/internal/observability"
	"github.com/spec-kit/agent-gateway/internal/repository"
)

const defaultHistoryLimit = 50

// AuditService consumes auth decision events. Every decision becomes a
// structured log line and a metrics increment; when a repository is
// configured the decision is also persisted.
type AuditService struct {
	repo         repository.AuditRepository
	metrics      *observability.Metrics
	logger       *zap.Logger
	historyLimit int
}

// NewAuditService creates the service. A nil repo disables persistence.
func NewAuditService(repo repository.AuditRepository, metrics *observability.Metrics, logger *zap.Logger, historyLimit int) *AuditService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &AuditService{
		repo:         repo,
		metrics:      metrics,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

// RegisterHandlers subscribes to decision events.
func (s *AuditService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventAuthAllowed, s.handleAllowed)
	dispatcher.Subscribe(events.EventAuthDenied, s.handleDenied)
}

// Recent returns the caller's latest persisted decisions, newest first.
// Without a configured store it returns an empty slice.
func (s *AuditService) Recent(ctx context.Context, userID string, limit int) ([]domain.AuthDecisionRecord, error) {
	if s.repo == nil {
		return []domain.AuthDecisionRecord{}, nil
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	records, err := s.repo.ListBySubject(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list auth decisions: %w", err)
	}
	if records == nil {
		records = []domain.AuthDecisionRecord{}
	}
	return records, nil
}

func (s *AuditService) handleAllowed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AuthAllowedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for auth_allowed event", zap.String("event_id", event.ID))
		return nil
	}

	s.logger.Info("auth allowed",
		zap.String("user.id", payload.UserID),
		zap.String("method", payload.Method),
		zap.String("path", payload.Path))
	s.metrics.RecordAuthDecision("allowed")

	if s.repo == nil {
		return nil
	}
	record := &domain.AuthDecisionRecord{
		Outcome:   domain.DecisionOutcomeAllowed,
		UserID:    &payload.UserID,
		Method:    payload.Method,
		Path:      payload.Path,
		DecidedAt: event.Timestamp,
	}
	return s.repo.Insert(ctx, record)
}

func (s *AuditService) handleDenied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AuthDeniedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for auth_denied event", zap.String("event_id", event.ID))
		return nil
	}

	s.logger.Info("auth denied",
		zap.String("failure_kind", payload.FailureKind),
		zap.String("diagnostic", payload.Diagnostic),
		zap.String("method", payload.Method),
		zap.String("path", payload.Path))
	s.metrics.RecordAuthDecision(payload.FailureKind)

	if s.repo == nil {
		return nil
	}
	record := &domain.AuthDecisionRecord{
		Outcome:     domain.DecisionOutcomeDenied,
		FailureKind: &payload.FailureKind,
		Diagnostic:  &payload.Diagnostic,
		Method:      payload.Method,
		Path:        payload.Path,
		DecidedAt:   event.Timestamp,
	}
	return s.repo.Insert(ctx, record)
}
