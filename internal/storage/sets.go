package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const setCols = "id, session_exercise_id, reps, weight, completed, notes, created_at, updated_at"

// AddExerciseSet appends an incomplete set to a session exercise the caller
// owns. Reps and weight are the planned values; they stay editable until the
// set is logged.
func (db *DB) AddExerciseSet(ctx context.Context, userID, sessionExerciseID string, reps int, weight float64) (*models.ExerciseSet, error) {
	if reps < 1 {
		return nil, validationErr("reps", "must be at least 1")
	}
	if weight < 0 {
		return nil, validationErr("weight", "must not be negative")
	}
	if err := db.authorize(ctx, db.b, userID, kindSessionExercise, sessionExerciseID); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	var set models.ExerciseSet
	err := db.insertReturning(ctx, db.b,
		`INSERT INTO exercise_sets (id, session_exercise_id, reps, weight, completed, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		setCols,
		`SELECT `+setCols+` FROM exercise_sets WHERE id = $1`,
		[]any{id, sessionExerciseID, reps, weight, false, nil, now, now}, id,
		&set.ID, &set.SessionExerciseID, &set.Reps, &set.Weight, &set.Completed, &set.Notes, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating exercise set: %w", err)
	}
	return &set, nil
}

// LogSet records what was actually performed for a set the caller owns,
// overwriting the pre-filled values and marking the set completed. Logging an
// already completed set overwrites it again; the last write wins.
func (db *DB) LogSet(ctx context.Context, userID, id string, reps int, weight float64, notes *string) (*models.ExerciseSet, error) {
	if reps < 1 {
		return nil, validationErr("reps", "must be at least 1")
	}
	if weight < 0 {
		return nil, validationErr("weight", "must not be negative")
	}
	if err := db.authorize(ctx, db.b, userID, kindSet, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err := db.b.Exec(ctx,
		`UPDATE exercise_sets
		 SET reps = $1, weight = $2, notes = $3, completed = $4, updated_at = $5
		 WHERE id = $6`,
		reps, weight, notes, true, now, id)
	if err != nil {
		return nil, fmt.Errorf("logging set: %w", err)
	}
	return db.setRow(ctx, id)
}

// CompleteSetByIndex marks the setIndex-th set (zero-based, creation order)
// of a session exercise completed without changing its planned values. An
// out-of-range index is ErrInvalidArgument.
func (db *DB) CompleteSetByIndex(ctx context.Context, userID, sessionExerciseID string, setIndex int) (*models.ExerciseSet, error) {
	if err := db.authorize(ctx, db.b, userID, kindSessionExercise, sessionExerciseID); err != nil {
		return nil, err
	}

	sets, err := db.exerciseSets(ctx, db.b, sessionExerciseID)
	if err != nil {
		return nil, err
	}
	if setIndex < 0 || setIndex >= len(sets) {
		return nil, fmt.Errorf("set index %d out of range: %w", setIndex, ErrInvalidArgument)
	}
	set := sets[setIndex]

	now := time.Now().UTC()
	_, err = db.b.Exec(ctx,
		`UPDATE exercise_sets SET completed = $1, updated_at = $2 WHERE id = $3`,
		true, now, set.ID)
	if err != nil {
		return nil, fmt.Errorf("completing set: %w", err)
	}
	set.Completed = true
	set.UpdatedAt = now
	return set, nil
}

func (db *DB) setRow(ctx context.Context, id string) (*models.ExerciseSet, error) {
	var set models.ExerciseSet
	err := db.b.QueryRow(ctx,
		`SELECT `+setCols+` FROM exercise_sets WHERE id = $1`, id).
		Scan(&set.ID, &set.SessionExerciseID, &set.Reps, &set.Weight, &set.Completed, &set.Notes, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying set: %w", err)
	}
	return &set, nil
}

// exerciseSets returns a session exercise's sets in creation order. The id
// tiebreaker keeps the order stable for sets created in the same instant,
// which is the normal case for sets materialized at session start.
func (db *DB) exerciseSets(ctx context.Context, q Querier, sessionExerciseID string) ([]*models.ExerciseSet, error) {
	rows, err := q.Query(ctx,
		`SELECT `+setCols+` FROM exercise_sets
		 WHERE session_exercise_id = $1
		 ORDER BY created_at ASC, id ASC`, sessionExerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	sets := []*models.ExerciseSet{}
	for rows.Next() {
		var set models.ExerciseSet
		if err := rows.Scan(&set.ID, &set.SessionExerciseID, &set.Reps, &set.Weight, &set.Completed, &set.Notes, &set.CreatedAt, &set.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, &set)
	}
	return sets, rows.Err()
}
