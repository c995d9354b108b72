package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// PriorityRuleRepository reads the keyword-to-priority lookup table.
type PriorityRuleRepository interface {
	List(ctx context.Context) ([]domain.PriorityRule, error)
	Create(ctx context.Context, rule *domain.PriorityRule) error
	Delete(ctx context.Context, id string) error
}

type priorityRuleRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRuleRepository instantiates repository.
func NewPriorityRuleRepository(pool *pgxpool.Pool) PriorityRuleRepository {
	return &priorityRuleRepository{pool: pool}
}

func (r *priorityRuleRepository) List(ctx context.Context) ([]domain.PriorityRule, error) {
	const query = `SELECT id, keyword, category, priority, created_at FROM priority_rules ORDER BY priority, keyword`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PriorityRule
	for rows.Next() {
		var rule domain.PriorityRule
		if err := rows.Scan(&rule.ID, &rule.Keyword, &rule.Category, &rule.Priority, &rule.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

func (r *priorityRuleRepository) Create(ctx context.Context, rule *domain.PriorityRule) error {
	const query = `
        INSERT INTO priority_rules (id, keyword, category, priority)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		rule.ID,
		strings.ToLower(rule.Keyword),
		rule.Category,
		rule.Priority,
	).Scan(&rule.CreatedAt)
}

func (r *priorityRuleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM priority_rules WHERE id=$1`, id)
	return err
}
