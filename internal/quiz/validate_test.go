package quiz

import (
	"strings"
	"testing"
	"time"
)

func testTime(min int) time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC).Add(time.Duration(min) * time.Minute)
}

func validChoice(id string) Question {
	return Question{
		ID: id, Type: SingleChoice, Text: "pick", Points: 5,
		Options: []Option{{Text: "a", IsCorrect: true}, {Text: "b"}},
	}
}

func validQuiz() Quiz {
	return Quiz{
		ID: "quiz-1", Title: "T", DurationMinutes: 30, MaxAttempts: 1,
		PassingScore: 50, Status: StatusDraft,
		Questions: []Question{validChoice("q1")},
	}
}

func TestQuizValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Quiz)
		wantErr string
	}{
		{"valid", func(q *Quiz) {}, ""},
		{"missing title", func(q *Quiz) { q.Title = " " }, "title"},
		{"zero duration", func(q *Quiz) { q.DurationMinutes = 0 }, "duration"},
		{"zero attempts", func(q *Quiz) { q.MaxAttempts = 0 }, "attempts"},
		{"bad passing score", func(q *Quiz) { q.PassingScore = 101 }, "passing"},
		{"publish empty", func(q *Quiz) {
			q.Status = StatusPublished
			q.Questions = nil
		}, "zero questions"},
		{"window inverted", func(q *Quiz) {
			start := testTime(10)
			end := testTime(5)
			q.StartAt = &start
			q.EndAt = &end
		}, "end date"},
		{"duplicate question ids", func(q *Quiz) {
			q.Questions = []Question{validChoice("q1"), validChoice("q1")}
		}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuiz()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err=%v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"valid single choice", validChoice("q"), false},
		{"unknown type", Question{ID: "q", Type: "ranking", Text: "x"}, true},
		{"one option", Question{
			ID: "q", Type: SingleChoice, Text: "x", Points: 1,
			Options: []Option{{Text: "a", IsCorrect: true}},
		}, true},
		{"no correct option", Question{
			ID: "q", Type: MultiSelect, Text: "x", Points: 1,
			Options: []Option{{Text: "a"}, {Text: "b"}},
		}, true},
		{"two correct for single", Question{
			ID: "q", Type: SingleChoice, Text: "x", Points: 1,
			Options: []Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}},
		}, true},
		{"multi select several correct", Question{
			ID: "q", Type: MultiSelect, Text: "x", Points: 1,
			Options: []Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}, {Text: "c"}},
		}, false},
		{"true false three options", Question{
			ID: "q", Type: TrueFalse, Text: "x", Points: 1,
			Options: []Option{{Text: "a", IsCorrect: true}, {Text: "b"}, {Text: "c"}},
		}, true},
		{"short answer missing key", Question{
			ID: "q", Type: ShortAnswer, Text: "x", Points: 1,
		}, true},
		{"essay without key", Question{
			ID: "q", Type: Essay, Text: "x", Points: 10,
		}, false},
		{"negative points", Question{
			ID: "q", Type: Essay, Text: "x", Points: -1,
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	q := Quiz{Title: "T", Questions: []Question{
		{ID: "q1", Type: TrueFalse, Text: "sky is blue", Points: 1,
			Options: []Option{{Text: "True", IsCorrect: true}}},
	}}
	q.Normalize()

	if q.PassingScore != 50 {
		t.Fatalf("passing score default=%d, want 50", q.PassingScore)
	}
	if q.Status != StatusDraft {
		t.Fatalf("status default=%s", q.Status)
	}
	tf := q.Questions[0]
	if len(tf.Options) != 2 {
		t.Fatalf("true/false options=%d, want 2", len(tf.Options))
	}
	if !tf.Options[0].IsCorrect || tf.Options[1].IsCorrect {
		t.Fatalf("correctness lost in normalization: %+v", tf.Options)
	}
	if q.TotalPoints != 1 {
		t.Fatalf("total points=%v, want 1", q.TotalPoints)
	}
}

func TestRecomputeTotalPoints(t *testing.T) {
	q := validQuiz()
	q.Questions = append(q.Questions, Question{
		ID: "q2", Type: Essay, Text: "discuss", Points: 10,
	})
	q.RecomputeTotalPoints()
	if q.TotalPoints != 15 {
		t.Fatalf("total=%v, want 15", q.TotalPoints)
	}
}

func TestStatusTransitions(t *testing.T) {
	if !StatusDraft.CanTransition(StatusPublished) {
		t.Fatal("draft -> published must be allowed")
	}
	if !StatusPublished.CanTransition(StatusDraft) {
		t.Fatal("published -> draft (unpublish) must be allowed")
	}
	if StatusDraft.CanTransition(StatusDraft) {
		t.Fatal("no-op transition must be rejected")
	}
}
