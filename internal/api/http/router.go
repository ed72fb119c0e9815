// Package http exposes the attempt lifecycle over chi: start, submit, essay
// grading, and the read surfaces for students and graders.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/edupress/quizcore/internal/attempt"
	"github.com/edupress/quizcore/internal/quiz"
)

type RouterOpts struct {
	CORSOrigins []string

	// InvalidateQuiz drops a cached quiz definition after an authoring write.
	InvalidateQuiz func(id string)
}

// NewRouter wires the full API surface.
func NewRouter(svc *attempt.Service, quizzes quiz.Repository, opts RouterOpts) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", headerUserID, headerUserRole},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Group(func(pr chi.Router) {
		pr.Use(requirePrincipal)

		// Student flow
		pr.Get("/quizzes", ListQuizzesHandler(quizzes))
		pr.Post("/quizzes/{quizID}/start", StartAttemptHandler(svc))
		pr.Post("/quizzes/{quizID}/submit", SubmitAttemptHandler(svc))
		pr.Get("/submissions/{submissionID}", GetSubmissionHandler(svc))
		pr.Get("/attempts", ListAttemptsHandler(svc))

		// Authoring + grading (teacher/admin)
		pr.With(requireRole("teacher", "admin")).
			Put("/quizzes/{quizID}", UpsertQuizHandler(quizzes, opts.InvalidateQuiz))
		pr.With(requireRole("teacher", "admin")).
			Post("/quizzes", UpsertQuizHandler(quizzes, opts.InvalidateQuiz))
		pr.With(requireRole("teacher", "admin")).
			Get("/quizzes/{quizID}/full", GetQuizAdminHandler(quizzes))
		pr.With(requireRole("teacher", "admin")).
			Get("/submissions/{submissionID}/grading", PendingEssaysHandler(svc))
		pr.With(requireRole("teacher", "admin")).
			Patch("/submissions/{submissionID}/answers/{answerID}/grade", GradeEssayHandler(svc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	return r
}
