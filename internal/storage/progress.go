package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// GetProgress aggregates the caller's completed sets into one entry per
// (exercise name, UTC day): heaviest weight and total volume (sum of weight
// times reps). Only sets marked completed count; a set completed in a
// still-running session appears immediately. Entries come back newest day
// first, exercise name ascending within a day.
//
// Aggregation happens here rather than in SQL so both backends group by day
// identically regardless of their date function dialects.
func (db *DB) GetProgress(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	rows, err := db.b.Query(ctx,
		`SELECT se.exercise_name, s.started_at, es.weight, es.reps
		 FROM exercise_sets es
		 JOIN session_exercises se ON se.id = es.session_exercise_id
		 JOIN workout_sessions s ON s.id = se.session_id
		 WHERE s.user_id = $1 AND es.completed = $2`,
		userID, true)
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	defer rows.Close()

	type key struct {
		name string
		date string
	}
	totals := map[key]*models.ProgressEntry{}

	for rows.Next() {
		var (
			name      string
			startedAt time.Time
			weight    float64
			reps      int
		)
		if err := rows.Scan(&name, &startedAt, &weight, &reps); err != nil {
			return nil, fmt.Errorf("scanning progress row: %w", err)
		}

		k := key{name: name, date: startedAt.UTC().Format("2006-01-02")}
		entry, ok := totals[k]
		if !ok {
			entry = &models.ProgressEntry{ExerciseName: k.name, Date: k.date}
			totals[k] = entry
		}
		if weight > entry.MaxWeight {
			entry.MaxWeight = weight
		}
		entry.TotalVolume += weight * float64(reps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]models.ProgressEntry, 0, len(totals))
	for _, entry := range totals {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].ExerciseName < entries[j].ExerciseName
	})
	return entries, nil
}
