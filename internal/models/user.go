package models

import "time"

// User owns workouts and sessions. Emails are stored lower-cased so lookups
// are case-insensitive on both backends.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
