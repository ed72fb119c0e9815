package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("quiz not found")
)

// Validate checks the structural invariants of a quiz definition. It is run
// on authoring writes; the attempt engine assumes stored quizzes are valid.
func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return errors.New("quiz: title required")
	}
	if q.DurationMinutes <= 0 {
		return errors.New("quiz: duration must be positive")
	}
	if q.MaxAttempts < 1 {
		return errors.New("quiz: max attempts must be at least 1")
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return errors.New("quiz: passing score must be 0-100")
	}
	if q.StartAt != nil && q.EndAt != nil && q.EndAt.Before(*q.StartAt) {
		return errors.New("quiz: end date before start date")
	}
	if q.Status == StatusPublished && len(q.Questions) == 0 {
		return errors.New("quiz: cannot publish with zero questions")
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for i, qu := range q.Questions {
		if err := qu.Validate(); err != nil {
			return fmt.Errorf("quiz: question %d: %w", i, err)
		}
		if _, dup := seen[qu.ID]; dup {
			return fmt.Errorf("quiz: duplicate question id %q", qu.ID)
		}
		seen[qu.ID] = struct{}{}
	}
	return nil
}

// Validate checks a single question definition against the rules for its type.
func (q Question) Validate() error {
	if !q.Type.Valid() {
		return fmt.Errorf("unknown type %q", q.Type)
	}
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("text required")
	}
	if q.Points < 0 {
		return errors.New("points must not be negative")
	}
	switch {
	case q.Type.ChoiceBased():
		if len(q.Options) < 2 {
			return errors.New("choice question needs at least 2 options")
		}
		correct := len(q.CorrectOptionIndices())
		if correct == 0 {
			return errors.New("choice question needs a correct option")
		}
		if q.Type != MultiSelect && correct != 1 {
			return errors.New("exactly one correct option required")
		}
		if q.Type == TrueFalse && len(q.Options) != 2 {
			return errors.New("true/false question needs exactly 2 options")
		}
	case q.Type == Essay:
		// No machine-checkable answer.
	case q.Type.TextBased():
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return errors.New("correct answer required")
		}
	}
	return nil
}

// Normalize fills defaults before validation: passing score falls back to 50
// and true/false questions are coerced to a canonical True/False option pair.
func (q *Quiz) Normalize() {
	if q.PassingScore == 0 {
		q.PassingScore = 50
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	for i := range q.Questions {
		q.Questions[i].normalize()
	}
	q.RecomputeTotalPoints()
}

func (q *Question) normalize() {
	if q.Type != TrueFalse {
		return
	}
	// Preserve which of the pair is correct even when options were sent as a
	// bare boolean answer.
	correctFirst := true
	if idx := q.CorrectOptionIndices(); len(idx) == 1 {
		correctFirst = idx[0] == 0
	}
	if len(q.Options) != 2 {
		q.Options = []Option{
			{Text: "True", IsCorrect: correctFirst},
			{Text: "False", IsCorrect: !correctFirst},
		}
	}
}
