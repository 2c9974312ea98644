package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/auth"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// newTestServer wires a full server against an in-memory SQLite database.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	b, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := storage.NewDB(b, log)
	t.Cleanup(db.Close)
	issuer := auth.NewIssuer("test-secret", time.Hour, 30*24*time.Hour)
	return New(db, issuer, log)
}

// do runs one request through the router, optionally authenticated, with a
// JSON body.
func do(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

// register creates an account and returns its token.
func register(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "Passw0rd1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string]any](t, rec)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

// TestHealth verifies the unauthenticated health endpoint.
func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestRegisterLoginMe verifies the account round trip: register, log in with
// the same credentials, read /auth/me with the login token.
func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "u@example.com")

	rec := do(t, srv, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "u@example.com", "password": "Passw0rd1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string]any](t, rec)
	token, _ := resp["token"].(string)

	rec = do(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d", rec.Code)
	}
	me := decode[models.User](t, rec)
	if me.Email != "u@example.com" {
		t.Errorf("email = %q, want %q", me.Email, "u@example.com")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks the password hash")
	}
}

// TestRegisterRejectsWeakPassword verifies the strength rules at the API edge.
func TestRegisterRejectsWeakPassword(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "u@example.com", "password": "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestRegisterDuplicateEmail verifies the 409 on re-registration.
func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "u@example.com")
	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "u@example.com", "password": "Passw0rd1",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestLoginWrongPassword verifies that bad credentials and unknown accounts
// give the same 401.
func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "u@example.com")

	for _, body := range []map[string]any{
		{"email": "u@example.com", "password": "Wrong0Password"},
		{"email": "nobody@example.com", "password": "Passw0rd1"},
	} {
		rec := do(t, srv, http.MethodPost, "/api/auth/login", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login %v: status = %d, want 401", body["email"], rec.Code)
		}
	}
}

// TestUnauthenticatedRequestsRejected verifies the auth wall in front of the
// API group.
func TestUnauthenticatedRequestsRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/workouts", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestWorkoutCRUD verifies create, list, get, and delete through the HTTP
// surface, including the 404 for an unknown id.
func TestWorkoutCRUD(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "u@example.com")

	rec := do(t, srv, http.MethodPost, "/api/workouts", token, map[string]string{"name": "Push Day"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	workout := decode[models.Workout](t, rec)

	rec = do(t, srv, http.MethodPost, "/api/exercises", token, map[string]any{
		"workout_id": workout.ID, "name": "Bench Press", "sets": 3, "reps": 8, "weight": 135,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create exercise: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(t, srv, http.MethodGet, "/api/workouts", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	workouts := decode[[]models.Workout](t, rec)
	if len(workouts) != 1 || len(workouts[0].Exercises) != 1 {
		t.Fatalf("list = %d workouts, want 1 with 1 exercise", len(workouts))
	}

	rec = do(t, srv, http.MethodGet, "/api/workouts/"+workout.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/workouts/no-such-id", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get unknown: status = %d, want 404", rec.Code)
	}

	rec = do(t, srv, http.MethodDelete, "/api/workouts/"+workout.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: status = %d", rec.Code)
	}
	rec = do(t, srv, http.MethodDelete, "/api/workouts/"+workout.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete again: status = %d, want 404", rec.Code)
	}
}

// TestValidationMapsTo400 verifies that field validation surfaces as 400.
func TestValidationMapsTo400(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "u@example.com")

	rec := do(t, srv, http.MethodPost, "/api/workouts", token, map[string]string{"name": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSessionFlow walks the whole session lifecycle over HTTP: start, read
// active, log a set, complete one by index, end, list completed, progress.
func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "u@example.com")

	rec := do(t, srv, http.MethodPost, "/api/workouts", token, map[string]string{"name": "Push Day"})
	workout := decode[models.Workout](t, rec)
	do(t, srv, http.MethodPost, "/api/exercises", token, map[string]any{
		"workout_id": workout.ID, "name": "Bench Press", "sets": 3, "reps": 8, "weight": 135,
	})

	// Nothing active yet: 200 with null body.
	rec = do(t, srv, http.MethodGet, "/api/sessions/active", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active: status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Errorf("active body = %q, want null", rec.Body.String())
	}

	rec = do(t, srv, http.MethodPost, "/api/sessions", token, map[string]string{"workout_id": workout.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	session := decode[models.WorkoutSession](t, rec)
	if len(session.Exercises) != 1 || len(session.Exercises[0].Sets) != 3 {
		t.Fatalf("fan-out = %d/%d, want 1 exercise with 3 sets",
			len(session.Exercises), len(session.Exercises[0].Sets))
	}

	// Starting again conflicts.
	rec = do(t, srv, http.MethodPost, "/api/sessions", token, map[string]string{"workout_id": workout.ID})
	if rec.Code != http.StatusConflict {
		t.Errorf("second start: status = %d, want 409", rec.Code)
	}

	setID := session.Exercises[0].Sets[0].ID
	rec = do(t, srv, http.MethodPut, "/api/exercise-sets/"+setID, token, map[string]any{
		"reps": 8, "weight": 140,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("log set: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	logged := decode[models.ExerciseSet](t, rec)
	if !logged.Completed || logged.Weight != 140 {
		t.Errorf("logged set = completed %v weight %.0f, want true/140", logged.Completed, logged.Weight)
	}

	seID := session.Exercises[0].ID
	rec = do(t, srv, http.MethodPut, "/api/exercise-sets/"+seID+"/complete", token, map[string]int{"setIndex": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete by index: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = do(t, srv, http.MethodPut, "/api/exercise-sets/"+seID+"/complete", token, map[string]int{"setIndex": 5})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range index: status = %d, want 400", rec.Code)
	}

	rec = do(t, srv, http.MethodPut, "/api/sessions/"+session.ID+"/end", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = do(t, srv, http.MethodPut, "/api/sessions/"+session.ID+"/end", token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("double end: status = %d, want 409", rec.Code)
	}

	rec = do(t, srv, http.MethodGet, "/api/sessions/completed", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("completed: status = %d", rec.Code)
	}
	completed := decode[[]models.WorkoutSession](t, rec)
	if len(completed) != 1 {
		t.Errorf("completed = %d, want 1", len(completed))
	}

	rec = do(t, srv, http.MethodGet, "/api/progress", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: status = %d", rec.Code)
	}
	entries := decode[[]models.ProgressEntry](t, rec)
	if len(entries) != 1 {
		t.Fatalf("progress entries = %d, want 1", len(entries))
	}
	if entries[0].MaxWeight != 140 {
		t.Errorf("maxWeight = %.0f, want 140", entries[0].MaxWeight)
	}
}

// TestCrossUserIsolationOverHTTP verifies that one user's token cannot read
// another user's workout, matching the storage-level NotFound behavior.
func TestCrossUserIsolationOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	alice := register(t, srv, "alice@example.com")
	bob := register(t, srv, "bob@example.com")

	rec := do(t, srv, http.MethodPost, "/api/workouts", alice, map[string]string{"name": "Push Day"})
	workout := decode[models.Workout](t, rec)

	rec = do(t, srv, http.MethodGet, "/api/workouts/"+workout.ID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
