package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexio-backend/internal/models"
)

type StudentRepo struct {
	pool *pgxpool.Pool
}

type ReportRecipient struct {
	StudentID     uuid.UUID
	StudentName   string
	ParentEmail   string
	ParentName    string
	LastSentAtRaw string
}

func NewStudentRepo(pool *pgxpool.Pool) *StudentRepo {
	return &StudentRepo{pool: pool}
}

func (r *StudentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	s := &models.Student{}
	var snapshotRaw []byte

	query := `SELECT id, role, email, full_name, parent_email, parent_name, last_session_json, created_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Role, &s.Email, &s.FullName, &s.ParentEmail, &s.ParentName, &snapshotRaw, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(snapshotRaw) > 0 {
		json.Unmarshal(snapshotRaw, &s.LastSession)
	}
	return s, nil
}

// UpdateLastSession replaces the student's entire last-session snapshot.
// The snapshot only ever reflects the single most recent session.
func (r *StudentRepo) UpdateLastSession(ctx context.Context, studentID uuid.UUID, snapshot models.LastSessionSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		"UPDATE users SET last_session_json = $1 WHERE id = $2",
		raw, studentID,
	)
	return err
}

// ListReportRecipients returns students whose parents opted into scheduled
// report emails, along with the last-sent stamp kept in settings_json.
func (r *StudentRepo) ListReportRecipients(ctx context.Context, enabledKey, lastSentKey string) ([]ReportRecipient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			id,
			full_name,
			parent_email,
			COALESCE(parent_name, ''),
			COALESCE(settings_json->>$2, '') AS last_sent_at
		FROM users
		WHERE role = 'student'
		  AND parent_email IS NOT NULL
		  AND COALESCE((
			CASE
				WHEN LOWER(COALESCE(settings_json->>$1, '')) IN ('true', 'false')
				THEN (settings_json->>$1)::boolean
				ELSE false
			END
		  ), false) = TRUE
	`, enabledKey, lastSentKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := make([]ReportRecipient, 0)
	for rows.Next() {
		var rec ReportRecipient
		if scanErr := rows.Scan(
			&rec.StudentID,
			&rec.StudentName,
			&rec.ParentEmail,
			&rec.ParentName,
			&rec.LastSentAtRaw,
		); scanErr != nil {
			return nil, scanErr
		}
		recipients = append(recipients, rec)
	}

	return recipients, rows.Err()
}

func (r *StudentRepo) SetNotificationTimestamp(ctx context.Context, studentID uuid.UUID, key string, at time.Time) error {
	formatted := at.UTC().Format(time.RFC3339)

	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET settings_json = COALESCE(settings_json, '{}'::jsonb) ||
			jsonb_build_object($2::text, to_jsonb($3::text))
		WHERE id = $1
	`, studentID, key, formatted)
	return err
}
