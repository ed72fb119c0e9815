package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edupress/quizcore/internal/attempt"
)

// GET /submissions/{submissionID}/grading
func PendingEssaysHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		items, err := svc.PendingEssays(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if items == nil {
			items = []attempt.PendingEssayItem{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type gradeEssayReq struct {
	PointsAwarded float64 `json:"points_awarded" validate:"gte=0"`
	Feedback      string  `json:"feedback,omitempty"`
}

// PATCH /submissions/{submissionID}/answers/{answerID}/grade
func GradeEssayHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "submissionID")
		answerID := chi.URLParam(r, "answerID")

		var req gradeEssayReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrCode(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErrCode(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		sub, err := svc.GradeEssay(r.Context(), submissionID, answerID, req.PointsAwarded, req.Feedback)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}
