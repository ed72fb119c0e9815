package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edupress/quizcore/internal/quiz"
)

func unixTime(v int64) time.Time { return time.Unix(v, 0).UTC() }

var validate = validator.New()

type upsertQuizReq struct {
	Title           string `json:"title" validate:"required"`
	Instructions    string `json:"instructions,omitempty"`
	Board           string `json:"board,omitempty"`
	Level           string `json:"level,omitempty"`
	Topic           string `json:"topic,omitempty"`
	DurationMinutes int    `json:"duration_minutes" validate:"gt=0"`
	MaxAttempts     int    `json:"max_attempts" validate:"gte=1"`

	StartAt *int64 `json:"start_at,omitempty"` // unix seconds
	EndAt   *int64 `json:"end_at,omitempty"`

	ShuffleQuestions   bool `json:"shuffle_questions"`
	ShowResults        bool `json:"show_results"`
	ShowCorrectAnswers bool `json:"show_correct_answers"`
	PassingScore       int  `json:"passing_score" validate:"gte=0,lte=100"`

	Questions []quiz.Question `json:"questions"`
	Publish   bool            `json:"publish"`
}

// PUT /quizzes/{quizID}
// Authoring upsert: validates, recomputes total points, applies publish
// state. The attempt engine only ever sees quizzes written through here.
func UpsertQuizHandler(repo quiz.Repository, invalidate func(string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		if id == "" {
			id = uuid.NewString()
		}

		var req upsertQuizReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrCode(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrCode(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		q := quiz.Quiz{
			ID:                 id,
			Title:              req.Title,
			Instructions:       req.Instructions,
			Board:              req.Board,
			Level:              req.Level,
			Topic:              req.Topic,
			DurationMinutes:    req.DurationMinutes,
			MaxAttempts:        req.MaxAttempts,
			ShuffleQuestions:   req.ShuffleQuestions,
			ShowResults:        req.ShowResults,
			ShowCorrectAnswers: req.ShowCorrectAnswers,
			PassingScore:       req.PassingScore,
			Questions:          req.Questions,
			Status:             quiz.StatusDraft,
		}
		if req.StartAt != nil {
			t := unixTime(*req.StartAt)
			q.StartAt = &t
		}
		if req.EndAt != nil {
			t := unixTime(*req.EndAt)
			q.EndAt = &t
		}
		for i := range q.Questions {
			if q.Questions[i].ID == "" {
				q.Questions[i].ID = uuid.NewString()
			}
		}
		if req.Publish {
			q.Status = quiz.StatusPublished
		}

		q.Normalize()
		if err := q.Validate(); err != nil {
			writeErrCode(w, http.StatusBadRequest, "invalid_quiz", err.Error())
			return
		}

		// Publication state changes on an existing quiz must follow the
		// transition table.
		existing, err := repo.GetQuiz(r.Context(), id)
		switch {
		case err == nil:
			if existing.Status != q.Status && !existing.Status.CanTransition(q.Status) {
				writeErrCode(w, http.StatusConflict, "illegal_status_change",
					fmt.Sprintf("cannot move quiz from %s to %s", existing.Status, q.Status))
				return
			}
		case !errors.Is(err, quiz.ErrNotFound):
			writeErr(w, err)
			return
		}

		if err := repo.PutQuiz(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		if invalidate != nil {
			invalidate(q.ID)
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /quizzes?board=&level=&topic=&status=
func ListQuizzesHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, role := principal(r)
		status := quiz.Status(strings.TrimSpace(r.URL.Query().Get("status")))
		// Students never see drafts.
		if role != "teacher" && role != "admin" {
			status = quiz.StatusPublished
		}
		list, err := repo.ListQuizzes(r.Context(), quiz.ListOpts{
			Board:  strings.TrimSpace(r.URL.Query().Get("board")),
			Level:  strings.TrimSpace(r.URL.Query().Get("level")),
			Topic:  strings.TrimSpace(r.URL.Query().Get("topic")),
			Status: status,
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []quiz.Summary{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /quizzes/{quizID}/full
// Answer keys included, graders only.
func GetQuizAdminHandler(repo quiz.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := repo.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}
