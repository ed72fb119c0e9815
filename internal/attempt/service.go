package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edupress/quizcore/internal/events"
	"github.com/edupress/quizcore/internal/quiz"
)

// graceMinutes is the slack allowed on submit beyond the quiz duration, to
// absorb client clock skew and upload latency.
const graceMinutes = 1

// AnswerInput is one answer as submitted by the student.
type AnswerInput struct {
	QuestionID      string `json:"question_id"`
	SelectedOption  *int   `json:"selected_option,omitempty"`
	SelectedOptions []int  `json:"selected_options,omitempty"`
	TextAnswer      string `json:"text_answer,omitempty"`
}

// SubmitResult is the student-facing outcome of a submit call. Status is
// present only when the quiz reveals results; Answers only when it reveals
// correct answers.
type SubmitResult struct {
	SubmissionID string   `json:"submission_id"`
	TotalScore   float64  `json:"total_score"`
	MaxScore     float64  `json:"max_score"`
	Percentage   int      `json:"percentage"`
	Passed       bool     `json:"passed"`
	TimeSpentSec int      `json:"time_spent_sec"`
	Status       Status   `json:"status,omitempty"`
	Answers      []Answer `json:"answers,omitempty"`
}

// Service drives the attempt lifecycle: admission, capture, grading, and the
// essay-grading increment. It owns no state beyond its collaborators.
type Service struct {
	quizzes   quiz.Loader
	store     Store
	admission *AdmissionController
	capture   *Capture
	clock     func() time.Time
	log       *events.Repo
	newID     func() string
}

type ServiceOption func(*Service)

// WithClock injects the time source; admission windows and expiry checks use
// it exclusively.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithEventLog wires lifecycle events to a durable log.
func WithEventLog(log *events.Repo) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithShuffle injects the question shuffle source.
func WithShuffle(fn ShuffleFunc) ServiceOption {
	return func(s *Service) { s.capture.WithShuffle(fn) }
}

// WithIDGenerator injects submission/answer id generation.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		s.newID = fn
		s.capture.WithIDGenerator(fn)
	}
}

func NewService(quizzes quiz.Loader, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		quizzes:   quizzes,
		store:     store,
		admission: NewAdmissionController(store),
		capture:   NewCapture(store),
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start admits the student and returns the safe payload for a new or resumed
// attempt.
func (s *Service) Start(ctx context.Context, quizID, studentID string) (StartPayload, error) {
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return StartPayload{}, err
	}
	now := s.clock()

	dec, err := s.admission.Admit(ctx, qz, studentID, now)
	if err != nil {
		return StartPayload{}, err
	}
	if dec.Resume != nil {
		return s.capture.PrepareAttempt(qz, *dec.Resume), nil
	}

	sub, err := s.capture.CreateSubmission(ctx, qz, studentID, dec.AttemptNumber, now)
	if err != nil {
		// Concurrent start lost the race on the one-live-attempt constraint:
		// resume the winner's row.
		if live, ferr := s.store.FindInProgress(ctx, quizID, studentID); ferr == nil {
			return s.capture.PrepareAttempt(qz, live), nil
		}
		return StartPayload{}, fmt.Errorf("create submission: %w", err)
	}
	_ = s.log.Emit(ctx, events.TypeAttemptStarted, sub.ID, sub)
	return s.capture.PrepareAttempt(qz, sub), nil
}

// Submit snapshots the student's answers, grades the auto-gradable portion,
// and persists the result. The whole attempt fails with ErrTimeExpired when
// the duration plus one grace minute has passed; the submission is then
// marked expired as a write-through.
func (s *Service) Submit(ctx context.Context, quizID, studentID string, inputs []AnswerInput) (SubmitResult, error) {
	qz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return SubmitResult{}, err
	}

	sub, err := s.store.FindInProgress(ctx, quizID, studentID)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.clock()
	elapsed := Elapsed(sub.StartedAt, now)
	if elapsed > time.Duration(qz.DurationMinutes+graceMinutes)*time.Minute {
		sub.Status = StatusExpired
		if uerr := s.store.Update(ctx, sub); uerr != nil {
			return SubmitResult{}, fmt.Errorf("expire on submit: %w", uerr)
		}
		_ = s.log.Emit(ctx, events.TypeAttemptExpired, sub.ID, sub)
		return SubmitResult{}, ErrTimeExpired
	}

	sub.Answers = make([]Answer, len(inputs))
	for i, in := range inputs {
		sub.Answers[i] = Answer{
			ID:              s.newID(),
			QuestionID:      in.QuestionID,
			SelectedOption:  in.SelectedOption,
			SelectedOptions: in.SelectedOptions,
			TextAnswer:      in.TextAnswer,
		}
	}
	sub.Status = StatusSubmitted
	sub.SubmittedAt = &now
	sub.TimeSpentSec = int(elapsed / time.Second)

	graded := Grade(sub, qz, qz.QuestionsByID())
	if err := s.store.Update(ctx, graded); err != nil {
		return SubmitResult{}, fmt.Errorf("persist submission: %w", err)
	}

	typ := events.TypeAttemptSubmitted
	if graded.Status == StatusGraded {
		typ = events.TypeAttemptGraded
	}
	_ = s.log.Emit(ctx, typ, graded.ID, graded)

	return buildSubmitResult(graded, qz), nil
}

// GradeEssay finalizes one essay answer and recomputes the submission's
// aggregate score under the store's read-modify-write, so two graders
// finalizing different answers both land.
func (s *Service) GradeEssay(ctx context.Context, submissionID, answerID string, points float64, feedback string) (Submission, error) {
	cur, err := s.store.Get(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	qz, err := s.quizzes.GetQuiz(ctx, cur.QuizID)
	if err != nil {
		return Submission{}, err
	}
	questions := qz.QuestionsByID()

	next, err := s.store.Mutate(ctx, submissionID, func(sub *Submission) error {
		idx := sub.AnswerByID(answerID)
		if idx < 0 {
			return ErrAnswerNotFound
		}
		a := &sub.Answers[idx]
		q, ok := questions[a.QuestionID]
		if !ok || q.Type.AutoGradable() {
			return ErrEssayNotGradable
		}
		awarded := clamp(points, 0, q.Points)
		a.PointsAwarded = &awarded
		correct := awarded > 0
		a.IsCorrect = &correct
		a.Feedback = feedback
		*sub = Recompute(*sub, qz)
		return nil
	})
	if err != nil {
		return Submission{}, err
	}

	if next.Status == StatusGraded {
		_ = s.log.Emit(ctx, events.TypeAttemptGraded, next.ID, next)
	}
	return next, nil
}

// GetSubmission fetches one submission by id.
func (s *Service) GetSubmission(ctx context.Context, id string) (Submission, error) {
	return s.store.Get(ctx, id)
}

// ListAttempts lists submissions for grader dashboards and student history.
func (s *Service) ListAttempts(ctx context.Context, opts ListOpts) ([]Submission, error) {
	return s.store.List(ctx, opts)
}

// PendingEssayItem is one ungraded essay answer awaiting a grader.
type PendingEssayItem struct {
	AnswerID     string  `json:"answer_id"`
	QuestionID   string  `json:"question_id"`
	QuestionText string  `json:"question_text"`
	MaxPoints    float64 `json:"max_points"`
	TextAnswer   string  `json:"text_answer"`
}

// PendingEssays lists the essay answers of a submission that still need a
// manual score.
func (s *Service) PendingEssays(ctx context.Context, submissionID string) ([]PendingEssayItem, error) {
	sub, err := s.store.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	qz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return nil, err
	}
	questions := qz.QuestionsByID()

	var out []PendingEssayItem
	for _, a := range sub.Answers {
		if a.Graded() {
			continue
		}
		q, ok := questions[a.QuestionID]
		if !ok || q.Type.AutoGradable() {
			continue
		}
		out = append(out, PendingEssayItem{
			AnswerID:     a.ID,
			QuestionID:   q.ID,
			QuestionText: q.Text,
			MaxPoints:    q.Points,
			TextAnswer:   a.TextAnswer,
		})
	}
	return out, nil
}

func buildSubmitResult(sub Submission, qz quiz.Quiz) SubmitResult {
	res := SubmitResult{
		SubmissionID: sub.ID,
		TotalScore:   sub.TotalScore,
		MaxScore:     sub.MaxScore,
		Percentage:   sub.Percentage,
		Passed:       sub.Passed,
		TimeSpentSec: sub.TimeSpentSec,
	}
	if qz.ShowResults {
		res.Status = sub.Status
	}
	if qz.ShowCorrectAnswers {
		res.Answers = sub.Answers
	}
	return res
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
