package attempt

import (
	"math"

	"github.com/edupress/quizcore/internal/grading"
	"github.com/edupress/quizcore/internal/quiz"
)

// Grade scores every answer of a submission against the quiz's question set
// and aggregates the totals. It is pure: the input submission is not mutated
// and the result is fully determined by its arguments.
//
// An answer referencing a question missing from questionsByID is scored zero
// rather than failing; question sets are immutable once published, so a
// dangling reference is tolerated, not propagated.
func Grade(sub Submission, qz quiz.Quiz, questionsByID map[string]quiz.Question) Submission {
	out := sub
	out.Answers = make([]Answer, len(sub.Answers))
	copy(out.Answers, sub.Answers)

	for i := range out.Answers {
		a := &out.Answers[i]
		q, ok := questionsByID[a.QuestionID]
		if !ok {
			a.IsCorrect = boolPtr(false)
			a.PointsAwarded = floatPtr(0)
			continue
		}
		res := grading.GradeAnswer(q, grading.Response{
			SelectedOption:  a.SelectedOption,
			SelectedOptions: a.SelectedOptions,
			Text:            a.TextAnswer,
		})
		if res.Pending {
			// Essay: left for manual grading.
			a.IsCorrect = nil
			a.PointsAwarded = nil
			continue
		}
		a.IsCorrect = boolPtr(res.Correct)
		a.PointsAwarded = floatPtr(res.Awarded)
	}

	return Recompute(out, qz)
}

// Recompute refreshes the aggregate fields from the answer set and applies
// the terminal-state rule: graded only once every answer holds a score.
// MaxScore snapshots quiz.TotalPoints so later quiz edits cannot change a
// historical grade.
func Recompute(sub Submission, qz quiz.Quiz) Submission {
	total := 0.0
	allGraded := true
	for _, a := range sub.Answers {
		if a.PointsAwarded == nil {
			allGraded = false
			continue
		}
		total += *a.PointsAwarded
	}

	sub.TotalScore = total
	sub.MaxScore = qz.TotalPoints
	if sub.MaxScore > 0 {
		sub.Percentage = int(math.Round(total / sub.MaxScore * 100))
	} else {
		sub.Percentage = 0
	}
	sub.Passed = sub.Percentage >= qz.PassingScore

	if allGraded && sub.Status == StatusSubmitted {
		sub.Status = StatusGraded
	}
	return sub
}

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }
