package attempt

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/edupress/quizcore/internal/quiz"
)

// SafeOption is an option with the correctness flag stripped.
type SafeOption struct {
	Text  string `json:"text"`
	Media string `json:"media,omitempty"`
}

// SafeQuestion is a question view with every correctness-revealing field
// removed, suitable for sending to the test-taker.
type SafeQuestion struct {
	ID      string            `json:"id"`
	Type    quiz.QuestionType `json:"type"`
	Text    string            `json:"text"`
	Media   string            `json:"media,omitempty"`
	Points  float64           `json:"points"`
	Options []SafeOption      `json:"options,omitempty"`
}

// QuizMeta is the student-facing envelope of a quiz for a running attempt.
type QuizMeta struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Instructions    string  `json:"instructions,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	TotalPoints     float64 `json:"total_points"`
}

// SubmissionMeta identifies a started attempt to the client.
type SubmissionMeta struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	AttemptNumber int       `json:"attempt_number"`
}

// StartPayload is the response to a successful start or resume.
type StartPayload struct {
	Submission SubmissionMeta `json:"submission"`
	Quiz       QuizMeta       `json:"quiz"`
	Questions  []SafeQuestion `json:"questions"`
}

// ShuffleFunc reorders n elements via swap; signature matches rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// Capture materializes safe question views and creates the initial
// submission row once admission signals create. The shuffle and id generator
// are injected so behavior is deterministic under test.
type Capture struct {
	store   Store
	shuffle ShuffleFunc
	newID   func() string
}

func NewCapture(store Store) *Capture {
	return &Capture{
		store:   store,
		shuffle: rand.Shuffle,
		newID:   uuid.NewString,
	}
}

// WithShuffle overrides the shuffle source; nil disables shuffling entirely.
func (c *Capture) WithShuffle(fn ShuffleFunc) *Capture {
	c.shuffle = fn
	return c
}

// WithIDGenerator overrides submission/answer id generation.
func (c *Capture) WithIDGenerator(fn func() string) *Capture {
	c.newID = fn
	return c
}

// CreateSubmission persists the initial in-progress row for a new attempt.
func (c *Capture) CreateSubmission(ctx context.Context, qz quiz.Quiz, studentID string, attemptNumber int, now time.Time) (Submission, error) {
	sub := Submission{
		ID:            c.newID(),
		QuizID:        qz.ID,
		StudentID:     studentID,
		AttemptNumber: attemptNumber,
		Status:        StatusInProgress,
		StartedAt:     now,
		Answers:       []Answer{},
	}
	if err := c.store.Create(ctx, sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// PrepareAttempt builds the student-facing payload for a live attempt. The
// question order is shuffled per call when the quiz requests it; the order is
// not persisted, so a re-fetch may differ.
func (c *Capture) PrepareAttempt(qz quiz.Quiz, sub Submission) StartPayload {
	questions := make([]SafeQuestion, len(qz.Questions))
	for i, q := range qz.Questions {
		questions[i] = safeView(q)
	}
	if qz.ShuffleQuestions && c.shuffle != nil {
		c.shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}
	return StartPayload{
		Submission: SubmissionMeta{
			ID:            sub.ID,
			StartedAt:     sub.StartedAt,
			AttemptNumber: sub.AttemptNumber,
		},
		Quiz: QuizMeta{
			ID:              qz.ID,
			Title:           qz.Title,
			Instructions:    qz.Instructions,
			DurationMinutes: qz.DurationMinutes,
			TotalPoints:     qz.TotalPoints,
		},
		Questions: questions,
	}
}

func safeView(q quiz.Question) SafeQuestion {
	sq := SafeQuestion{
		ID:     q.ID,
		Type:   q.Type,
		Text:   q.Text,
		Media:  q.Media,
		Points: q.Points,
	}
	if len(q.Options) > 0 {
		sq.Options = make([]SafeOption, len(q.Options))
		for i, o := range q.Options {
			sq.Options[i] = SafeOption{Text: o.Text, Media: o.Media}
		}
	}
	return sq
}
