package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/auth"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	issuer *auth.Issuer
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, issuer *auth.Issuer, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		issuer: issuer,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Everything else requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuth(s.issuer))

			r.Get("/auth/me", s.handleMe)

			r.Get("/workouts", s.handleListWorkouts)
			r.Post("/workouts", s.handleCreateWorkout)
			r.Get("/workouts/{id}", s.handleGetWorkout)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)

			r.Post("/exercises", s.handleCreateExercise)
			r.Delete("/exercises/{id}", s.handleDeleteExercise)

			r.Post("/sessions", s.handleStartSession)
			r.Get("/sessions/active", s.handleActiveSession)
			r.Get("/sessions/completed", s.handleCompletedSessions)
			r.Put("/sessions/{id}/end", s.handleEndSession)
			r.Post("/sessions/{id}/exercises", s.handleAddSessionExercise)

			r.Post("/exercise-sets", s.handleAddExerciseSet)
			r.Put("/exercise-sets/{id}", s.handleLogSet)
			r.Put("/exercise-sets/{id}/complete", s.handleCompleteSet)

			r.Get("/progress", s.handleProgress)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
