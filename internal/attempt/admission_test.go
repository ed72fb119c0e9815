package attempt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/edupress/quizcore/internal/quiz"
)

func seedCompleted(t *testing.T, store Store, quizID, studentID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		sub := Submission{
			ID:            fmt.Sprintf("done-%s-%d", studentID, i+1),
			QuizID:        quizID,
			StudentID:     studentID,
			AttemptNumber: i + 1,
			Status:        StatusGraded,
			StartedAt:     testNow.Add(-time.Duration(i+1) * time.Hour),
			Answers:       []Answer{},
		}
		if err := store.Create(context.Background(), sub); err != nil {
			t.Fatalf("seed completed: %v", err)
		}
	}
}

func TestAdmitRefusals(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	draft := twoChoiceQuiz()
	draft.Status = quiz.StatusDraft

	notStarted := twoChoiceQuiz()
	notStarted.StartAt = &future

	ended := twoChoiceQuiz()
	ended.EndAt = &past

	tests := []struct {
		name string
		qz   quiz.Quiz
		code AdmissionCode
	}{
		{"unpublished", draft, CodeNotAvailable},
		{"before window", notStarted, CodeNotStarted},
		{"after window", ended, CodeEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAdmissionController(NewInMemoryStore())
			_, err := ctrl.Admit(context.Background(), tt.qz, "s1", testNow)
			ae, ok := AsAdmissionError(err)
			if !ok {
				t.Fatalf("want admission error, got %v", err)
			}
			if ae.Code != tt.code {
				t.Fatalf("code=%s, want %s", ae.Code, tt.code)
			}
		})
	}
}

func TestAdmitWindowBoundsInclusive(t *testing.T) {
	qz := twoChoiceQuiz()
	qz.StartAt = &testNow
	qz.EndAt = &testNow

	ctrl := NewAdmissionController(NewInMemoryStore())
	dec, err := ctrl.Admit(context.Background(), qz, "s1", testNow)
	if err != nil {
		t.Fatalf("now == startAt == endAt must admit: %v", err)
	}
	if dec.AttemptNumber != 1 {
		t.Fatalf("attemptNumber=%d, want 1", dec.AttemptNumber)
	}
}

func TestAdmitAttemptsExhausted(t *testing.T) {
	qz := twoChoiceQuiz()
	qz.MaxAttempts = 1

	store := NewInMemoryStore()
	seedCompleted(t, store, qz.ID, "s1", 1)

	ctrl := NewAdmissionController(store)
	_, err := ctrl.Admit(context.Background(), qz, "s1", testNow)
	ae, ok := AsAdmissionError(err)
	if !ok || ae.Code != CodeAttemptsExhausted {
		t.Fatalf("want attempts_exhausted, got %v", err)
	}

	// A different student is unaffected.
	if _, err := ctrl.Admit(context.Background(), qz, "s2", testNow); err != nil {
		t.Fatalf("other student refused: %v", err)
	}
}

func TestAdmitCreateNumbersAttempts(t *testing.T) {
	qz := twoChoiceQuiz()
	store := NewInMemoryStore()
	seedCompleted(t, store, qz.ID, "s1", 2)

	ctrl := NewAdmissionController(store)
	dec, err := ctrl.Admit(context.Background(), qz, "s1", testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if dec.Resume != nil {
		t.Fatal("expected create directive")
	}
	if dec.AttemptNumber != 3 {
		t.Fatalf("attemptNumber=%d, want 3", dec.AttemptNumber)
	}
}

func TestAdmitResumesLiveAttempt(t *testing.T) {
	qz := twoChoiceQuiz()
	store := NewInMemoryStore()
	live := Submission{
		ID: "live-1", QuizID: qz.ID, StudentID: "s1", AttemptNumber: 1,
		Status: StatusInProgress, StartedAt: testNow.Add(-5 * time.Minute),
		Answers: []Answer{},
	}
	if err := store.Create(context.Background(), live); err != nil {
		t.Fatalf("seed live: %v", err)
	}

	ctrl := NewAdmissionController(store)
	dec, err := ctrl.Admit(context.Background(), qz, "s1", testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if dec.Resume == nil || dec.Resume.ID != "live-1" {
		t.Fatalf("expected resume of live-1, got %+v", dec)
	}
}

func TestAdmitExpiresStaleAttempt(t *testing.T) {
	qz := twoChoiceQuiz() // 30 minutes
	store := NewInMemoryStore()
	stale := Submission{
		ID: "stale-1", QuizID: qz.ID, StudentID: "s1", AttemptNumber: 1,
		Status: StatusInProgress, StartedAt: testNow.Add(-45 * time.Minute),
		Answers: []Answer{},
	}
	if err := store.Create(context.Background(), stale); err != nil {
		t.Fatalf("seed stale: %v", err)
	}

	ctrl := NewAdmissionController(store)
	dec, err := ctrl.Admit(context.Background(), qz, "s1", testNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if dec.Resume != nil {
		t.Fatal("stale attempt must not be resumed")
	}
	if dec.AttemptNumber != 1 {
		t.Fatalf("expired attempt must not count: attemptNumber=%d", dec.AttemptNumber)
	}

	got, err := store.Get(context.Background(), "stale-1")
	if err != nil {
		t.Fatalf("get stale: %v", err)
	}
	if got.Status != StatusExpired {
		t.Fatalf("status=%s, want expired (write-through)", got.Status)
	}
}
