package attempt

import (
	"fmt"
	"time"

	"github.com/edupress/quizcore/internal/quiz"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// twoChoiceQuiz is the canonical fixture: two single-choice questions worth
// 5 points each, option 1 correct, passing score 60.
func twoChoiceQuiz() quiz.Quiz {
	q := quiz.Quiz{
		ID:              "quiz-1",
		Title:           "Fractions",
		DurationMinutes: 30,
		MaxAttempts:     3,
		PassingScore:    60,
		ShowResults:     true,
		Status:          quiz.StatusPublished,
		Questions: []quiz.Question{
			choiceQuestion("q1", 5, 1),
			choiceQuestion("q2", 5, 1),
		},
	}
	q.RecomputeTotalPoints()
	return q
}

func choiceQuestion(id string, points float64, correct int) quiz.Question {
	q := quiz.Question{
		ID:     id,
		Type:   quiz.SingleChoice,
		Text:   "question " + id,
		Points: points,
		Options: []quiz.Option{
			{Text: "a"}, {Text: "b"}, {Text: "c"},
		},
	}
	q.Options[correct].IsCorrect = true
	return q
}

func essayQuestion(id string, points float64) quiz.Question {
	return quiz.Question{
		ID:     id,
		Type:   quiz.Essay,
		Text:   "discuss " + id,
		Points: points,
	}
}

// seqIDs returns a deterministic id generator for tests.
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func intPtr(v int) *int { return &v }
