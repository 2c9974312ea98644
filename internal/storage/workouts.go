package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const workoutCols = "id, user_id, name, created_at, updated_at"
const exerciseCols = "id, workout_id, name, sets, reps, weight, created_at, updated_at"

// CreateWorkout inserts a workout plan owned by userID.
func (db *DB) CreateWorkout(ctx context.Context, userID, name string) (*models.Workout, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("name", "must not be empty")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	var w models.Workout
	err := db.insertReturning(ctx, db.b,
		`INSERT INTO workouts (id, user_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		workoutCols,
		`SELECT `+workoutCols+` FROM workouts WHERE id = $1`,
		[]any{id, userID, name, now, now}, id,
		&w.ID, &w.UserID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating workout: %w", err)
	}
	w.Exercises = []models.Exercise{}
	return &w, nil
}

// ListWorkouts returns the caller's workouts, newest first, each with its
// exercises attached in creation order.
func (db *DB) ListWorkouts(ctx context.Context, userID string) ([]*models.Workout, error) {
	rows, err := db.b.Query(ctx,
		`SELECT `+workoutCols+` FROM workouts
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	workouts := []*models.Workout{}
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		workouts = append(workouts, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, w := range workouts {
		exercises, err := db.exercisesByWorkout(ctx, db.b, w.ID)
		if err != nil {
			return nil, err
		}
		w.Exercises = exercises
	}
	return workouts, nil
}

// GetWorkout returns one workout with exercises attached. Unknown IDs and
// workouts owned by other users both yield ErrNotFound.
func (db *DB) GetWorkout(ctx context.Context, userID, id string) (*models.Workout, error) {
	var w models.Workout
	err := db.b.QueryRow(ctx,
		`SELECT `+workoutCols+` FROM workouts
		 WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&w.ID, &w.UserID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, errNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	exercises, err := db.exercisesByWorkout(ctx, db.b, id)
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises
	return &w, nil
}

// DeleteWorkout removes a workout and its exercises. Sessions that reference
// the workout keep their snapshots and stay readable.
func (db *DB) DeleteWorkout(ctx context.Context, userID, id string) error {
	if err := db.authorize(ctx, db.b, userID, kindWorkout, id); err != nil {
		return err
	}
	return db.withTx(ctx, func(q Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM exercises WHERE workout_id = $1`, id); err != nil {
			return fmt.Errorf("deleting exercises: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("deleting workout: %w", err)
		}
		return nil
	})
}

// CreateExercise adds an exercise to a workout the caller owns.
func (db *DB) CreateExercise(ctx context.Context, userID, workoutID, name string, sets, reps int, weight float64) (*models.Exercise, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationErr("name", "must not be empty")
	}
	if sets < 1 {
		return nil, validationErr("sets", "must be at least 1")
	}
	if reps < 1 {
		return nil, validationErr("reps", "must be at least 1")
	}
	if weight < 0 {
		return nil, validationErr("weight", "must not be negative")
	}
	if err := db.authorize(ctx, db.b, userID, kindWorkout, workoutID); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	var e models.Exercise
	err := db.insertReturning(ctx, db.b,
		`INSERT INTO exercises (id, workout_id, name, sets, reps, weight, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		exerciseCols,
		`SELECT `+exerciseCols+` FROM exercises WHERE id = $1`,
		[]any{id, workoutID, name, sets, reps, weight, now, now}, id,
		&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps, &e.Weight, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating exercise: %w", err)
	}
	return &e, nil
}

// DeleteExercise removes one exercise from a workout the caller owns.
func (db *DB) DeleteExercise(ctx context.Context, userID, id string) error {
	if err := db.authorize(ctx, db.b, userID, kindExercise, id); err != nil {
		return err
	}
	if _, err := db.b.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	return nil
}

// getExercise reads one exercise row without an ownership check; callers
// authorize first.
func (db *DB) getExercise(ctx context.Context, q Querier, id string) (*models.Exercise, error) {
	var e models.Exercise
	err := q.QueryRow(ctx,
		`SELECT `+exerciseCols+` FROM exercises WHERE id = $1`, id).
		Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps, &e.Weight, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, errNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

func (db *DB) exercisesByWorkout(ctx context.Context, q Querier, workoutID string) ([]models.Exercise, error) {
	rows, err := q.Query(ctx,
		`SELECT `+exerciseCols+` FROM exercises
		 WHERE workout_id = $1
		 ORDER BY created_at ASC, id ASC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	exercises := []models.Exercise{}
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps, &e.Weight, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}
