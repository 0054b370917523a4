package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexio-backend/internal/models"
)

// ProgressRepo reads the activity-completion history, the source of truth
// the rollup merger filters by day bucket.
type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

// CompletionsForDay returns the completions whose timestamp falls inside the
// given day bucket, ordered by completion time.
func (r *ProgressRepo) CompletionsForDay(ctx context.Context, studentID uuid.UUID, day time.Time) ([]models.ActivityCompletion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT activity_id, completed_at, score
		FROM activity_completions
		WHERE student_id = $1
		  AND completed_at >= $2
		  AND completed_at < $3
		ORDER BY completed_at ASC
	`, studentID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := make([]models.ActivityCompletion, 0)
	for rows.Next() {
		var c models.ActivityCompletion
		if scanErr := rows.Scan(&c.ActivityID, &c.CompletedAt, &c.Score); scanErr != nil {
			return nil, scanErr
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}
