// Package grading decides correctness and points for a single answered
// question. It is pure: it never touches storage and never mutates its inputs.
package grading

import (
	"github.com/edupress/quizcore/internal/quiz"
)

// Response is the student's answer to one question, already decoded from the
// submission payload. Exactly one of the fields is meaningful per type.
type Response struct {
	SelectedOption  *int
	SelectedOptions []int
	Text            string
}

// Outcome is the grading result for one answer.
//
// Pending is true for essay answers: no correctness or points can be decided
// until a grader supplies them. For every other type Correct and Awarded are
// always set.
type Outcome struct {
	Correct bool
	Awarded float64
	Max     float64
	Pending bool
}

// GradeAnswer scores one response against its question definition. Scoring
// is all-or-nothing for every auto-gradable type; there is no partial credit,
// including for multi-select with partial overlap.
func GradeAnswer(q quiz.Question, resp Response) Outcome {
	out := Outcome{Max: q.Points}
	switch q.Type {
	case quiz.SingleChoice, quiz.TrueFalse:
		if resp.SelectedOption == nil {
			return out
		}
		idx := *resp.SelectedOption
		if idx >= 0 && idx < len(q.Options) && q.Options[idx].IsCorrect {
			out.Correct = true
			out.Awarded = q.Points
		}
	case quiz.MultiSelect:
		if indexSetEqual(resp.SelectedOptions, q.CorrectOptionIndices()) {
			out.Correct = true
			out.Awarded = q.Points
		}
	case quiz.ShortAnswer, quiz.FillBlank:
		if textMatches(resp.Text, q.CorrectAnswer, q.AlternativeAnswers) {
			out.Correct = true
			out.Awarded = q.Points
		}
	case quiz.Essay:
		out.Pending = true
	}
	return out
}

// indexSetEqual compares submitted and correct option indices as sets:
// same size, same members, duplicates collapsed.
func indexSetEqual(got, want []int) bool {
	gs := toSet(got)
	ws := toSet(want)
	if len(gs) != len(ws) || len(ws) == 0 {
		return false
	}
	for k := range gs {
		if _, ok := ws[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(xs []int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}
