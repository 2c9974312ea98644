package models

import "time"

// WorkoutSession is a single run of a workout plan. It snapshots the plan's
// exercises at start time; later edits to the plan never reach past sessions.
// At most one session per user is active at any moment.
type WorkoutSession struct {
	ID          string             `json:"id"`
	UserID      string             `json:"-"`
	WorkoutID   *string            `json:"workout_id"`
	WorkoutName string             `json:"workout_name"`
	StartedAt   time.Time          `json:"started_at"`
	EndedAt     *time.Time         `json:"ended_at"`
	IsActive    bool               `json:"is_active"`
	Exercises   []*SessionExercise `json:"exercises,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// SessionExercise is one exercise performed during a session. ExerciseName is
// copied from the source exercise when the session starts; ExerciseID keeps
// the link to the source and goes nil if the source is deleted.
type SessionExercise struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id"`
	ExerciseID   *string        `json:"exercise_id"`
	ExerciseName string         `json:"exercise_name"`
	Exercise     *Exercise      `json:"exercise,omitempty"`
	Sets         []*ExerciseSet `json:"sets,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ExerciseSet is one set of an exercise within a session. Reps and weight are
// pre-filled with the planned values at session start and overwritten with
// the actual values when the set is logged.
type ExerciseSet struct {
	ID                string    `json:"id"`
	SessionExerciseID string    `json:"session_exercise_id"`
	Reps              int       `json:"reps"`
	Weight            float64   `json:"weight"`
	Completed         bool      `json:"completed"`
	Notes             *string   `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProgressEntry is a per-exercise, per-day summary over completed sets.
type ProgressEntry struct {
	ExerciseName string  `json:"exerciseName"`
	Date         string  `json:"date"`
	MaxWeight    float64 `json:"maxWeight"`
	TotalVolume  float64 `json:"totalVolume"`
}
