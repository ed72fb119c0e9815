package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edupress/quizcore/internal/attempt"
	"github.com/edupress/quizcore/internal/quiz"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

// writeErr maps domain errors onto stable codes and 4xx statuses. Admission
// refusals and timing failures are single-shot decisions; nothing here is
// retryable.
func writeErr(w http.ResponseWriter, err error) {
	if ae, ok := attempt.AsAdmissionError(err); ok {
		status := http.StatusForbidden
		if ae.Code == attempt.CodeNotAvailable {
			status = http.StatusNotFound
		}
		writeErrCode(w, status, string(ae.Code), ae.Msg)
		return
	}
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		writeErrCode(w, http.StatusNotFound, "quiz_not_found", err.Error())
	case errors.Is(err, attempt.ErrNoActiveAttempt):
		writeErrCode(w, http.StatusConflict, "no_active_attempt", err.Error())
	case errors.Is(err, attempt.ErrTimeExpired):
		writeErrCode(w, http.StatusGone, "time_expired", err.Error())
	case errors.Is(err, attempt.ErrSubmissionNotFound):
		writeErrCode(w, http.StatusNotFound, "submission_not_found", err.Error())
	case errors.Is(err, attempt.ErrAnswerNotFound):
		writeErrCode(w, http.StatusNotFound, "answer_not_found", err.Error())
	case errors.Is(err, attempt.ErrEssayNotGradable):
		writeErrCode(w, http.StatusUnprocessableEntity, "not_gradable", err.Error())
	default:
		writeErrCode(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
