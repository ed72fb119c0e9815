package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/edupress/quizcore/internal/quiz"
)

// Decision is the outcome of a successful admission check: either resume the
// existing live attempt or create a new one with the given attempt number.
type Decision struct {
	Resume        *Submission
	AttemptNumber int
}

// AdmissionController decides whether a student may start or resume an
// attempt. It never creates submissions; its only write is the idempotent
// expiry of a stale in-progress attempt.
type AdmissionController struct {
	store Store
}

func NewAdmissionController(store Store) *AdmissionController {
	return &AdmissionController{store: store}
}

// Admit runs the admission checks in order: publish state, schedule window,
// attempt limit, then live-attempt lookup. now is injected so window and
// expiry checks are deterministic under test.
func (c *AdmissionController) Admit(ctx context.Context, qz quiz.Quiz, studentID string, now time.Time) (Decision, error) {
	if qz.Status != quiz.StatusPublished {
		return Decision{}, admissionErr(CodeNotAvailable, "quiz is not published")
	}
	if qz.StartAt != nil && now.Before(*qz.StartAt) {
		return Decision{}, admissionErr(CodeNotStarted, "quiz has not started yet")
	}
	if qz.EndAt != nil && now.After(*qz.EndAt) {
		return Decision{}, admissionErr(CodeEnded, "quiz has ended")
	}

	completed, err := c.store.CountCompleted(ctx, qz.ID, studentID)
	if err != nil {
		return Decision{}, fmt.Errorf("count completed attempts: %w", err)
	}
	if completed >= qz.MaxAttempts {
		return Decision{}, admissionErr(CodeAttemptsExhausted,
			fmt.Sprintf("maximum of %d attempts reached", qz.MaxAttempts))
	}

	live, err := c.store.FindInProgress(ctx, qz.ID, studentID)
	switch {
	case err == nil:
		if Elapsed(live.StartedAt, now) > time.Duration(qz.DurationMinutes)*time.Minute {
			if err := c.expire(ctx, live); err != nil {
				return Decision{}, fmt.Errorf("expire stale attempt: %w", err)
			}
			return Decision{AttemptNumber: completed + 1}, nil
		}
		return Decision{Resume: &live}, nil
	case err == ErrNoActiveAttempt:
		return Decision{AttemptNumber: completed + 1}, nil
	default:
		return Decision{}, fmt.Errorf("find in-progress attempt: %w", err)
	}
}

func (c *AdmissionController) expire(ctx context.Context, sub Submission) error {
	sub.Status = StatusExpired
	return c.store.Update(ctx, sub)
}

// Elapsed is the wall-clock time the attempt has been open.
func Elapsed(startedAt, now time.Time) time.Duration {
	return now.Sub(startedAt)
}
