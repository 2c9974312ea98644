package models

import "time"

// Workout is a named, reusable plan of exercises owned by one user.
type Workout struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Exercise is a planned movement within a workout: target sets, reps and weight.
// Weight zero means bodyweight.
type Exercise struct {
	ID        string    `json:"id"`
	WorkoutID string    `json:"workout_id"`
	Name      string    `json:"name"`
	Sets      int       `json:"sets"`
	Reps      int       `json:"reps"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
