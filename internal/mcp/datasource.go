package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. *storage.DB satisfies
// it; tests substitute a fake.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID string) ([]*models.Workout, error)
	GetActiveSession(ctx context.Context, userID string) (*models.WorkoutSession, error)
	GetCompletedSessions(ctx context.Context, userID string) ([]*models.WorkoutSession, error)
	GetProgress(ctx context.Context, userID string) ([]models.ProgressEntry, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
