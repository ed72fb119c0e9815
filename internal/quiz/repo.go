package quiz

import "context"

type ListOpts struct {
	Board  string
	Level  string
	Topic  string
	Status Status
	Limit  int
	Offset int
}

// Summary is the list-view projection of a quiz, without its question set.
type Summary struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Board           string  `json:"board,omitempty"`
	Level           string  `json:"level,omitempty"`
	Topic           string  `json:"topic,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	QuestionCount   int     `json:"question_count"`
	TotalPoints     float64 `json:"total_points"`
	Status          Status  `json:"status"`
}

// Repository is the catalog collaborator: full definitions including answer
// keys. Callers that serve students must go through the safe views in the
// attempt package instead.
type Repository interface {
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	PutQuiz(ctx context.Context, q Quiz) error
	ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, error)
}

// Loader is the read-only subset used by caching layers.
type Loader interface {
	GetQuiz(ctx context.Context, id string) (Quiz, error)
}
