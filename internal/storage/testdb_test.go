package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/liftlog/internal/models"
)

// newTestDB opens a throwaway in-memory SQLite database. It exercises the
// real adapter, including placeholder rewriting and boolean encoding.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	b, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	db := NewDB(b, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(db.Close)
	return db
}

func newTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	user, err := db.CreateUser(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return user
}

// newTestWorkout creates a workout with one exercise for the given user.
func newTestWorkout(t *testing.T, db *DB, userID, name string, sets, reps int, weight float64) *models.Workout {
	t.Helper()
	ctx := context.Background()
	workout, err := db.CreateWorkout(ctx, userID, name)
	if err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}
	if _, err := db.CreateExercise(ctx, userID, workout.ID, name+" exercise", sets, reps, weight); err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	workout, err = db.GetWorkout(ctx, userID, workout.ID)
	if err != nil {
		t.Fatalf("GetWorkout: %v", err)
	}
	return workout
}
