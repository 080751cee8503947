package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/agent-gateway/internal/domain"
)

// DB is the slice of pgxpool.Pool the repository needs. Declared as an
// interface so pgxmock can stand in during tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuditRepository stores auth decision records.
type AuditRepository interface {
	Insert(ctx context.Context, record *domain.AuthDecisionRecord) error
	ListBySubject(ctx context.Context, userID string, limit int) ([]domain.AuthDecisionRecord, error)
}

type auditRepository struct {
	db DB
}

// NewAuditRepository builds repository.
func NewAuditRepository(db DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, record *domain.AuthDecisionRecord) error {
	const query = `
        INSERT INTO auth_decisions (outcome, user_id, failure_kind, diagnostic, method, path, decided_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		record.Outcome,
		record.UserID,
		record.FailureKind,
		record.Diagnostic,
		record.Method,
		record.Path,
		record.DecidedAt,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *auditRepository) ListBySubject(ctx context.Context, userID string, limit int) ([]domain.AuthDecisionRecord, error) {
	const query = `
        SELECT id, outcome, user_id, failure_kind, diagnostic, method, path, decided_at, created_at
        FROM auth_decisions WHERE user_id=$1 ORDER BY decided_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuthDecisionRecord
	for rows.Next() {
		var record domain.AuthDecisionRecord
		if err := rows.Scan(
			&record.ID,
			&record.Outcome,
			&record.UserID,
			&record.FailureKind,
			&record.Diagnostic,
			&record.Method,
			&record.Path,
			&record.DecidedAt,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
