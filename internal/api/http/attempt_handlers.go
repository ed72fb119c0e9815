package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edupress/quizcore/internal/attempt"
)

// POST /quizzes/{quizID}/start
func StartAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		studentID, _ := principal(r)

		payload, err := svc.Start(r.Context(), quizID, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

type submitReq struct {
	Answers []attempt.AnswerInput `json:"answers" validate:"required,dive"`
}

// POST /quizzes/{quizID}/submit
func SubmitAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		studentID, _ := principal(r)

		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrCode(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrCode(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		res, err := svc.Submit(r.Context(), quizID, studentID, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /submissions/{submissionID}
// Students may only read their own submissions; graders read any.
func GetSubmissionHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		sub, err := svc.GetSubmission(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		userID, role := principal(r)
		if role != "teacher" && role != "admin" && sub.StudentID != userID {
			writeErrCode(w, http.StatusForbidden, "forbidden", "not your submission")
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}

// GET /attempts?quiz_id=...&student_id=...&status=...&limit=50&offset=0
// Students are forced onto their own attempts; graders may filter freely.
func ListAttemptsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role := principal(r)

		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		if role != "teacher" && role != "admin" {
			studentID = userID
		}

		list, err := svc.ListAttempts(r.Context(), attempt.ListOpts{
			QuizID:    strings.TrimSpace(r.URL.Query().Get("quiz_id")),
			StudentID: studentID,
			Status:    attempt.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		if list == nil {
			list = []attempt.Submission{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
