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

const userCols = "id, email, password_hash, created_at"

// CreateUser stores a new account. Emails are normalized to lower case so
// the unique constraint is effectively case-insensitive; a duplicate email is
// reported as ErrConflict.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, validationErr("email", "must not be empty")
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	var u models.User
	err := db.insertReturning(ctx, db.b,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		userCols,
		`SELECT `+userCols+` FROM users WHERE id = $1`,
		[]any{id, email, passwordHash, now}, id,
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if db.isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail looks an account up by its normalized email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return db.userRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email)
}

// GetUserByID looks an account up by id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.userRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
}

func (db *DB) userRow(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	err := db.b.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, errNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
