package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TechnicianRepository encapsulates technician persistence.
type TechnicianRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	ListActive(ctx context.Context) ([]domain.Technician, error)
	MarkAssigned(ctx context.Context, id string, at time.Time) error
	MarkResolved(ctx context.Context, id string) error
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository instantiates repository.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

const technicianColumns = `id, name, email, role, department, specialization, active,
           shift_start_minute, shift_end_minute, assigned_tickets, resolved_tickets,
           last_assigned_at, created_at, updated_at`

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE id=$1`
	var tech domain.Technician
	if err := r.pool.QueryRow(ctx, query, id).Scan(technicianTargets(&tech)...); err != nil {
		return nil, err
	}
	return &tech, nil
}

// ListActive returns active technicians ordered by id so selection ties are
// deterministic before the scheduler even looks at timestamps.
func (r *technicianRepository) ListActive(ctx context.Context) ([]domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE active=true ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		var tech domain.Technician
		if err := rows.Scan(technicianTargets(&tech)...); err != nil {
			return nil, err
		}
		result = append(result, tech)
	}
	return result, rows.Err()
}

// MarkAssigned bumps the running assignment counter and the last-assignment
// marker in one statement so the next scheduler pass sees both.
func (r *technicianRepository) MarkAssigned(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE technicians
        SET assigned_tickets = assigned_tickets + 1, last_assigned_at = $1, updated_at = NOW()
        WHERE id = $2`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) MarkResolved(ctx context.Context, id string) error {
	const query = `
        UPDATE technicians
        SET resolved_tickets = resolved_tickets + 1, updated_at = NOW()
        WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func technicianTargets(t *domain.Technician) []any {
	return []any{
		&t.ID,
		&t.Name,
		&t.Email,
		&t.Role,
		&t.Department,
		&t.Specialization,
		&t.Active,
		&t.ShiftStart,
		&t.ShiftEnd,
		&t.AssignedCount,
		&t.ResolvedCount,
		&t.LastAssignedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}
