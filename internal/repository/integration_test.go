//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexio-backend/internal/models"
	"lexio-backend/internal/timeutil"
)

// These tests run against a migrated database: go test -tags integration
// with TEST_DATABASE_URL set.

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func createTestStudent(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO users (id, role, email, full_name) VALUES ($1, 'student', $2, 'Test Student')",
		id, fmt.Sprintf("student-%s@test.local", id),
	)
	if err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", id)
	})
	return id
}

func TestAddAppTime_AccumulatesAcrossCloses(t *testing.T) {
	pool := testPool(t)
	repo := NewDailyStatsRepo(pool)
	studentID := createTestStudent(t, pool)
	ctx := context.Background()
	day := timeutil.DayBucket(time.Now().UTC())

	if err := repo.AddAppTime(ctx, studentID, day, 600); err != nil {
		t.Fatalf("First merge failed: %v", err)
	}
	if err := repo.AddAppTime(ctx, studentID, day, 300); err != nil {
		t.Fatalf("Second merge failed: %v", err)
	}

	roll, err := repo.GetByDay(ctx, studentID, day)
	if err != nil {
		t.Fatalf("Failed to load rollup: %v", err)
	}
	if roll.TotalAppTimeSeconds != 900 {
		t.Errorf("Expected two closes to sum to 900, got %d", roll.TotalAppTimeSeconds)
	}
}

func TestAppendCompletionIfAbsent_DedupsByActivity(t *testing.T) {
	pool := testPool(t)
	repo := NewDailyStatsRepo(pool)
	studentID := createTestStudent(t, pool)
	ctx := context.Background()
	day := timeutil.DayBucket(time.Now().UTC())

	// The append targets an existing rollup row.
	if err := repo.AddAppTime(ctx, studentID, day, 60); err != nil {
		t.Fatalf("Failed to seed rollup: %v", err)
	}

	entry := models.CompletionEntry{
		ActivityID:  uuid.New(),
		Title:       "Phonics A",
		Category:    "Phonics",
		Score:       90,
		CompletedAt: time.Now().UTC(),
	}

	appended, err := repo.AppendCompletionIfAbsent(ctx, studentID, day, entry)
	if err != nil {
		t.Fatalf("First append failed: %v", err)
	}
	if !appended {
		t.Fatalf("Expected first append to add the entry")
	}

	appended, err = repo.AppendCompletionIfAbsent(ctx, studentID, day, entry)
	if err != nil {
		t.Fatalf("Replayed append failed: %v", err)
	}
	if appended {
		t.Errorf("Expected replayed append to be a no-op")
	}

	roll, err := repo.GetByDay(ctx, studentID, day)
	if err != nil {
		t.Fatalf("Failed to load rollup: %v", err)
	}
	if len(roll.Completions) != 1 {
		t.Errorf("Expected exactly one completion entry, got %d", len(roll.Completions))
	}
	if roll.CompletedActivities != 1 {
		t.Errorf("Expected completed_activities 1, got %d", roll.CompletedActivities)
	}
}

func TestCloseApp_ClaimsAndComputesDurationAtomically(t *testing.T) {
	pool := testPool(t)
	repo := NewSessionRepo(pool)
	studentID := createTestStudent(t, pool)
	ctx := context.Background()

	start := time.Now().UTC().Add(-2 * time.Minute)
	if _, err := pool.Exec(ctx,
		"INSERT INTO app_sessions (id, student_id, started_at, day) VALUES ($1, $2, $3, $4)",
		uuid.New(), studentID, start, timeutil.DayBucket(start),
	); err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}

	closed, err := repo.CloseApp(ctx, studentID, start.Add(125*time.Second))
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed.DurationSeconds != 125 {
		t.Errorf("Expected duration 125, got %d", closed.DurationSeconds)
	}

	// The duration returned is the duration persisted.
	var stored int
	if err := pool.QueryRow(ctx,
		"SELECT duration_seconds FROM app_sessions WHERE id = $1", closed.ID,
	).Scan(&stored); err != nil {
		t.Fatalf("Failed to read back session: %v", err)
	}
	if stored != closed.DurationSeconds {
		t.Errorf("Persisted duration %d does not match returned %d", stored, closed.DurationSeconds)
	}

	// A repeat close finds nothing to claim.
	if _, err := repo.CloseApp(ctx, studentID, time.Now().UTC()); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("Expected ErrNoRows on repeated close, got %v", err)
	}
}
