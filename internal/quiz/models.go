package quiz

import "time"

// QuestionType is a closed set; grading dispatches on it exhaustively.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiSelect  QuestionType = "multi_select"
	TrueFalse    QuestionType = "true_false"
	ShortAnswer  QuestionType = "short_answer"
	FillBlank    QuestionType = "fill_blank"
	Essay        QuestionType = "essay"
)

func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultiSelect, TrueFalse, ShortAnswer, FillBlank, Essay:
		return true
	}
	return false
}

// ChoiceBased reports whether the type answers by option index.
func (t QuestionType) ChoiceBased() bool {
	switch t {
	case SingleChoice, MultiSelect, TrueFalse:
		return true
	}
	return false
}

// TextBased reports whether the type answers by free text.
func (t QuestionType) TextBased() bool {
	switch t {
	case ShortAnswer, FillBlank, Essay:
		return true
	}
	return false
}

// AutoGradable reports whether correctness can be decided without a human.
func (t QuestionType) AutoGradable() bool { return t != Essay }

type Option struct {
	Text      string `json:"text"`
	Media     string `json:"media,omitempty"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID     string       `json:"id"`
	Type   QuestionType `json:"type"`
	Text   string       `json:"text"`
	Media  string       `json:"media,omitempty"`
	Points float64      `json:"points"`

	// Choice-like types only.
	Options []Option `json:"options,omitempty"`

	// Text-like types only (except essay, which has no machine key).
	CorrectAnswer      string   `json:"correct_answer,omitempty"`
	AlternativeAnswers []string `json:"alternative_answers,omitempty"`
}

// CorrectOptionIndices returns the indices of options flagged correct.
func (q Question) CorrectOptionIndices() []int {
	var out []int
	for i, o := range q.Options {
		if o.IsCorrect {
			out = append(out, i)
		}
	}
	return out
}

// Status is the quiz publication state. Draft quizzes are invisible to
// students; only published quizzes admit attempts.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Quiz struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Instructions string `json:"instructions,omitempty"`

	// Catalog metadata, opaque to the attempt engine.
	Board string `json:"board,omitempty"`
	Level string `json:"level,omitempty"`
	Topic string `json:"topic,omitempty"`

	DurationMinutes int        `json:"duration_minutes"`
	MaxAttempts     int        `json:"max_attempts"`
	StartAt         *time.Time `json:"start_at,omitempty"`
	EndAt           *time.Time `json:"end_at,omitempty"`

	ShuffleQuestions   bool `json:"shuffle_questions"`
	ShowResults        bool `json:"show_results"`
	ShowCorrectAnswers bool `json:"show_correct_answers"`

	// PassingScore is a percentage threshold, defaulted to 50 on normalize.
	PassingScore int `json:"passing_score"`

	Questions   []Question `json:"questions"`
	TotalPoints float64    `json:"total_points"`

	Status    Status `json:"status"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// RecomputeTotalPoints refreshes the derived TotalPoints. Call whenever the
// question set changes.
func (q *Quiz) RecomputeTotalPoints() {
	total := 0.0
	for _, qu := range q.Questions {
		total += qu.Points
	}
	q.TotalPoints = total
}

// QuestionsByID indexes the question set for grading lookups.
func (q Quiz) QuestionsByID() map[string]Question {
	m := make(map[string]Question, len(q.Questions))
	for _, qu := range q.Questions {
		m[qu.ID] = qu
	}
	return m
}

// CanTransition validates a publication state change.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusPublished
	case StatusPublished:
		return to == StatusDraft
	}
	return false
}
