package attempt

import "time"

// Status is the submission lifecycle state. graded and expired are terminal.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusGraded     Status = "graded"
	StatusExpired    Status = "expired"
)

var transitions = map[Status][]Status{
	StatusInProgress: {StatusSubmitted, StatusExpired},
	StatusSubmitted:  {StatusGraded},
	StatusGraded:     {},
	StatusExpired:    {},
}

// CanTransition reports whether to is a legal next state.
func (s Status) CanTransition(to Status) bool {
	for _, n := range transitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

// canPersist validates a stored status change. A fully auto-gradable submit
// lands as in_progress -> graded in a single write, passing through
// submitted logically, so that composed step is also legal.
func canPersist(from, to Status) bool {
	if from == to {
		return true
	}
	if from == StatusInProgress && to == StatusGraded {
		return true
	}
	return from.CanTransition(to)
}

// Answer is one student response embedded in a submission. IsCorrect and
// PointsAwarded stay nil for essay answers until a grader scores them.
type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`

	SelectedOption  *int   `json:"selected_option,omitempty"`
	SelectedOptions []int  `json:"selected_options,omitempty"`
	TextAnswer      string `json:"text_answer,omitempty"`

	IsCorrect     *bool    `json:"is_correct,omitempty"`
	PointsAwarded *float64 `json:"points_awarded,omitempty"`
	Feedback      string   `json:"feedback,omitempty"`
}

// Graded reports whether the answer has a final score.
func (a Answer) Graded() bool { return a.PointsAwarded != nil }

// Submission is one attempt by one student at one quiz.
type Submission struct {
	ID            string `json:"id"`
	QuizID        string `json:"quiz_id"`
	StudentID     string `json:"student_id"`
	AttemptNumber int    `json:"attempt_number"`

	Status       Status     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	TimeSpentSec int        `json:"time_spent_sec"`

	Answers []Answer `json:"answers"`

	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage int     `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// Completed reports whether the attempt counts against the quiz's attempt
// limit.
func (s Submission) Completed() bool {
	return s.Status == StatusSubmitted || s.Status == StatusGraded
}

// AnswerByID finds an embedded answer, returning its index or -1.
func (s Submission) AnswerByID(answerID string) int {
	for i := range s.Answers {
		if s.Answers[i].ID == answerID {
			return i
		}
	}
	return -1
}
