package storage

import (
	"context"
	"errors"
	"fmt"
)

// entityKind names a row type whose ownership chain can be resolved to a user.
type entityKind string

const (
	kindWorkout         entityKind = "workout"
	kindExercise        entityKind = "exercise"
	kindSession         entityKind = "session"
	kindSessionExercise entityKind = "session_exercise"
	kindSet             entityKind = "exercise_set"
)

// ownerQueries walk each entity's chain up to the owning user in one query.
var ownerQueries = map[entityKind]string{
	kindWorkout: `SELECT user_id FROM workouts WHERE id = $1`,
	kindExercise: `SELECT w.user_id FROM exercises e
		JOIN workouts w ON e.workout_id = w.id
		WHERE e.id = $1`,
	kindSession: `SELECT user_id FROM workout_sessions WHERE id = $1`,
	kindSessionExercise: `SELECT ws.user_id FROM session_exercises se
		JOIN workout_sessions ws ON se.session_id = ws.id
		WHERE se.id = $1`,
	kindSet: `SELECT ws.user_id FROM exercise_sets es
		JOIN session_exercises se ON es.session_exercise_id = se.id
		JOIN workout_sessions ws ON se.session_id = ws.id
		WHERE es.id = $1`,
}

// ownerOf resolves an entity's owning user ID.
func (db *DB) ownerOf(ctx context.Context, q Querier, kind entityKind, id string) (string, error) {
	query, ok := ownerQueries[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
	var owner string
	if err := q.QueryRow(ctx, query, id).Scan(&owner); err != nil {
		return "", err
	}
	return owner, nil
}

// authorize verifies that callerID owns the entity. A missing row and a row
// owned by someone else are both reported as ErrNotFound.
func (db *DB) authorize(ctx context.Context, q Querier, callerID string, kind entityKind, id string) error {
	owner, err := db.ownerOf(ctx, q, kind, id)
	if errors.Is(err, errNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("resolving %s owner: %w", kind, err)
	}
	if owner != callerID {
		return ErrNotFound
	}
	return nil
}
