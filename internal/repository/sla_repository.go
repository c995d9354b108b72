package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// SLARepository reads the priority-to-hours commitment table.
type SLARepository interface {
	List(ctx context.Context) ([]domain.SLAPolicy, error)
	GetByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error)
}

type slaRepository struct {
	pool *pgxpool.Pool
}

// NewSLARepository instantiates repository.
func NewSLARepository(pool *pgxpool.Pool) SLARepository {
	return &slaRepository{pool: pool}
}

func (r *slaRepository) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `SELECT id, priority, sla_hours, description, updated_at FROM sla_config ORDER BY sla_hours`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(&policy.ID, &policy.Priority, &policy.Hours, &policy.Description, &policy.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}

// GetByPriority returns nil without error when no policy exists for the
// priority; callers fall back to the default window.
func (r *slaRepository) GetByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	const query = `SELECT id, priority, sla_hours, description, updated_at FROM sla_config WHERE priority=$1`
	var policy domain.SLAPolicy
	err := r.pool.QueryRow(ctx, query, priority).Scan(&policy.ID, &policy.Priority, &policy.Hours, &policy.Description, &policy.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}
