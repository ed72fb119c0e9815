package attempt

import (
	"errors"
	"fmt"
)

// AdmissionCode identifies why a start request was refused. Codes are stable
// and surfaced to clients as-is.
type AdmissionCode string

const (
	CodeNotAvailable      AdmissionCode = "not_available"
	CodeNotStarted        AdmissionCode = "not_started"
	CodeEnded             AdmissionCode = "ended"
	CodeAttemptsExhausted AdmissionCode = "attempts_exhausted"
)

// AdmissionError is a user-facing, non-retryable refusal to start or resume
// an attempt.
type AdmissionError struct {
	Code AdmissionCode
	Msg  string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admission refused (%s): %s", e.Code, e.Msg)
}

func admissionErr(code AdmissionCode, msg string) error {
	return &AdmissionError{Code: code, Msg: msg}
}

// AsAdmissionError unwraps err to an AdmissionError if it is one.
func AsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

var (
	// ErrNoActiveAttempt means submit was called without a live in-progress
	// attempt for (quiz, student).
	ErrNoActiveAttempt = errors.New("no active attempt")

	// ErrTimeExpired means the attempt ran past its duration; the submission
	// has been marked expired and must not be retried.
	ErrTimeExpired = errors.New("attempt time expired")

	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAnswerNotFound     = errors.New("answer not found")

	// ErrIllegalTransition is returned by stores refusing a lifecycle change
	// the state machine does not permit.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrEssayNotGradable is returned when a grade targets a non-essay answer.
	ErrEssayNotGradable = errors.New("answer is not manually gradable")
)
