package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

const sessionCols = "id, user_id, workout_id, workout_name, started_at, ended_at, is_active, created_at, updated_at"
const sessionExerciseCols = "id, session_id, exercise_id, exercise_name, created_at, updated_at"

// StartSession creates a session from a workout the caller owns, snapshotting
// every exercise into a session exercise and materializing one pre-filled set
// row per planned set. The fan-out runs in a single transaction; the snapshot
// is whatever the workout looked like at read time.
//
// Returns ErrConflict when the caller already has an active session. A
// partial unique index on (user_id) WHERE is_active backs this up, so two
// concurrent starts cannot both succeed.
func (db *DB) StartSession(ctx context.Context, userID, workoutID string) (*models.WorkoutSession, error) {
	workout, err := db.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	active, err := db.activeSessionRow(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrConflict
	}

	sessionID := uuid.New().String()
	now := time.Now().UTC()

	err = db.withTx(ctx, func(q Querier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO workout_sessions (id, user_id, workout_id, workout_name, started_at, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sessionID, userID, workout.ID, workout.Name, now, true, now, now)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}

		for _, ex := range workout.Exercises {
			seID := uuid.New().String()
			_, err := q.Exec(ctx,
				`INSERT INTO session_exercises (id, session_id, exercise_id, exercise_name, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				seID, sessionID, ex.ID, ex.Name, now, now)
			if err != nil {
				return fmt.Errorf("creating session exercise: %w", err)
			}

			for i := 0; i < ex.Sets; i++ {
				_, err := q.Exec(ctx,
					`INSERT INTO exercise_sets (id, session_exercise_id, reps, weight, completed, notes, created_at, updated_at)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					uuid.New().String(), seID, ex.Reps, ex.Weight, false, nil, now, now)
				if err != nil {
					return fmt.Errorf("creating exercise set: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		if db.isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	return db.GetActiveSession(ctx, userID)
}

// GetActiveSession returns the caller's active session fully populated with
// its session exercises and sets, or (nil, nil) when nothing is active.
func (db *DB) GetActiveSession(ctx context.Context, userID string) (*models.WorkoutSession, error) {
	session, err := db.activeSessionRow(ctx, userID)
	if err != nil || session == nil {
		return nil, err
	}
	if err := db.populateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetCompletedSessions returns the caller's ended sessions, newest first.
func (db *DB) GetCompletedSessions(ctx context.Context, userID string) ([]*models.WorkoutSession, error) {
	rows, err := db.b.Query(ctx,
		`SELECT `+sessionCols+` FROM workout_sessions
		 WHERE user_id = $1 AND is_active = $2 AND ended_at IS NOT NULL
		 ORDER BY ended_at DESC`, userID, false)
	if err != nil {
		return nil, fmt.Errorf("querying completed sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.WorkoutSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// EndSession transitions an active session the caller owns to ended. The
// session must exist, be owned by the caller, and still be active; any other
// state is reported as ErrConflict so repeated or misdirected ends are
// visible to the caller.
func (db *DB) EndSession(ctx context.Context, userID, id string) (*models.WorkoutSession, error) {
	now := time.Now().UTC()
	affected, err := db.b.Exec(ctx,
		`UPDATE workout_sessions
		 SET ended_at = $1, is_active = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5 AND is_active = $6`,
		now, false, now, id, userID, true)
	if err != nil {
		return nil, fmt.Errorf("ending session: %w", err)
	}
	if affected == 0 {
		return nil, ErrConflict
	}

	return db.sessionRow(ctx, id)
}

// AddSessionExercise appends an exercise to an existing session, snapshotting
// the exercise name. Both the session and the exercise must belong to the
// caller.
func (db *DB) AddSessionExercise(ctx context.Context, userID, sessionID, exerciseID string) (*models.SessionExercise, error) {
	if err := db.authorize(ctx, db.b, userID, kindSession, sessionID); err != nil {
		return nil, err
	}
	if err := db.authorize(ctx, db.b, userID, kindExercise, exerciseID); err != nil {
		return nil, err
	}
	exercise, err := db.getExercise(ctx, db.b, exerciseID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	var se models.SessionExercise
	err = db.insertReturning(ctx, db.b,
		`INSERT INTO session_exercises (id, session_id, exercise_id, exercise_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionExerciseCols,
		`SELECT `+sessionExerciseCols+` FROM session_exercises WHERE id = $1`,
		[]any{id, sessionID, exerciseID, exercise.Name, now, now}, id,
		&se.ID, &se.SessionID, &se.ExerciseID, &se.ExerciseName, &se.CreatedAt, &se.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session exercise: %w", err)
	}
	return &se, nil
}

// activeSessionRow reads the most recently started active session without
// populating children. Returns (nil, nil) when none is active.
func (db *DB) activeSessionRow(ctx context.Context, userID string) (*models.WorkoutSession, error) {
	row := db.b.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM workout_sessions
		 WHERE user_id = $1 AND is_active = $2
		 ORDER BY started_at DESC
		 LIMIT 1`, userID, true)

	s, err := scanSession(row)
	if errors.Is(err, errNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) sessionRow(ctx context.Context, id string) (*models.WorkoutSession, error) {
	row := db.b.QueryRow(ctx,
		`SELECT `+sessionCols+` FROM workout_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, errNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// populateSession attaches session exercises (each carrying its source
// exercise when it still exists) and their sets, all in creation order.
func (db *DB) populateSession(ctx context.Context, s *models.WorkoutSession) error {
	rows, err := db.b.Query(ctx,
		`SELECT `+sessionExerciseCols+` FROM session_exercises
		 WHERE session_id = $1
		 ORDER BY created_at ASC, id ASC`, s.ID)
	if err != nil {
		return fmt.Errorf("querying session exercises: %w", err)
	}
	defer rows.Close()

	var sessionExercises []*models.SessionExercise
	for rows.Next() {
		var se models.SessionExercise
		if err := rows.Scan(&se.ID, &se.SessionID, &se.ExerciseID, &se.ExerciseName, &se.CreatedAt, &se.UpdatedAt); err != nil {
			return fmt.Errorf("scanning session exercise: %w", err)
		}
		sessionExercises = append(sessionExercises, &se)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, se := range sessionExercises {
		if se.ExerciseID != nil {
			exercise, err := db.getExercise(ctx, db.b, *se.ExerciseID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			se.Exercise = exercise
		}
		sets, err := db.exerciseSets(ctx, db.b, se.ID)
		if err != nil {
			return err
		}
		se.Sets = sets
	}

	s.Exercises = sessionExercises
	return nil
}

// scanSession reads one session row from either a Row or Rows cursor.
func scanSession(r interface{ Scan(dest ...any) error }) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := r.Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.WorkoutName, &s.StartedAt,
		&s.EndedAt, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, errNoRows) {
			return nil, errNoRows
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &s, nil
}
