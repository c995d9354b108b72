package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// FeedbackRepository appends conversation feedback records. Both tables are
// append-only; there are no update paths.
type FeedbackRepository interface {
	CreateSolutionFeedback(ctx context.Context, entry *domain.SolutionFeedback) error
	CreateFlowFeedback(ctx context.Context, entry *domain.FlowFeedback) error
	ListSolutionFeedbackBySession(ctx context.Context, sessionID string) ([]domain.SolutionFeedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) CreateSolutionFeedback(ctx context.Context, entry *domain.SolutionFeedback) error {
	const query = `
        INSERT INTO solution_feedback (ticket_id, session_id, solution_index, solution_text, feedback_tag)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.SessionID,
		entry.SolutionIndex,
		entry.SolutionText,
		entry.Tag,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *feedbackRepository) CreateFlowFeedback(ctx context.Context, entry *domain.FlowFeedback) error {
	const query = `
        INSERT INTO flow_feedback (ticket_id, session_id, flow_type, rating, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.SessionID,
		entry.FlowType,
		entry.Rating,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *feedbackRepository) ListSolutionFeedbackBySession(ctx context.Context, sessionID string) ([]domain.SolutionFeedback, error) {
	const query = `
        SELECT id, ticket_id, session_id, solution_index, solution_text, feedback_tag, created_at
        FROM solution_feedback WHERE session_id=$1 ORDER BY solution_index, created_at`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SolutionFeedback
	for rows.Next() {
		var entry domain.SolutionFeedback
		if err := rows.Scan(&entry.ID, &entry.TicketID, &entry.SessionID, &entry.SolutionIndex, &entry.SolutionText, &entry.Tag, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
