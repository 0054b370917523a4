package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexio-backend/internal/models"
)

// ContentRepo reads the content hierarchy for display joins only. This
// subsystem never writes content rows.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

// ActivityLabel joins activity → lesson → group → category. A missing
// reference degrades to a placeholder label rather than failing the report.
func (r *ContentRepo) ActivityLabel(ctx context.Context, activityID uuid.UUID) (*models.ActivityLabel, error) {
	l := &models.ActivityLabel{}
	err := r.pool.QueryRow(ctx, `
		SELECT a.title,
			COALESCE(l.title, ''),
			COALESCE(g.name, ''),
			COALESCE(c.name, '')
		FROM activities a
		LEFT JOIN lessons l ON a.lesson_id = l.id
		LEFT JOIN lesson_groups g ON l.group_id = g.id
		LEFT JOIN categories c ON g.category_id = c.id
		WHERE a.id = $1
	`, activityID).Scan(&l.Title, &l.LessonTitle, &l.GroupName, &l.CategoryName)

	if errors.Is(err, pgx.ErrNoRows) {
		return &models.ActivityLabel{Title: "Unknown activity"}, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
