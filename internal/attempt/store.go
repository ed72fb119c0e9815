package attempt

import "context"

type ListOpts struct {
	QuizID    string
	StudentID string
	Status    Status
	Limit     int
	Offset    int
}

// Store is the submission persistence collaborator. Implementations must
// guarantee at most one in_progress submission per (quiz, student) so that
// concurrent start requests collapse onto a single row.
type Store interface {
	Create(ctx context.Context, sub Submission) error
	Get(ctx context.Context, id string) (Submission, error)

	// FindInProgress returns the live attempt for (quiz, student) or
	// ErrNoActiveAttempt.
	FindInProgress(ctx context.Context, quizID, studentID string) (Submission, error)

	// CountCompleted counts submissions with status submitted or graded.
	CountCompleted(ctx context.Context, quizID, studentID string) (int, error)

	// Update persists a full submission. The status change, if any, must be
	// legal under the lifecycle transition table.
	Update(ctx context.Context, sub Submission) error

	// Mutate applies fn to the current stored submission under a
	// read-modify-write so concurrent graders merge rather than overwrite.
	Mutate(ctx context.Context, id string, fn func(*Submission) error) (Submission, error)

	List(ctx context.Context, opts ListOpts) ([]Submission, error)
}
