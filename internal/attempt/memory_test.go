package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func liveSub(id, quizID, studentID string) Submission {
	return Submission{
		ID: id, QuizID: quizID, StudentID: studentID, AttemptNumber: 1,
		Status: StatusInProgress, StartedAt: testNow, Answers: []Answer{},
	}
}

func TestMemoryStoreOneLiveAttempt(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	if err := store.Create(ctx, liveSub("a", "quiz-1", "s1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := store.Create(ctx, liveSub("b", "quiz-1", "s1")); err == nil {
		t.Fatal("second live attempt for same (quiz, student) must be rejected")
	}
	// Different student or quiz is fine.
	if err := store.Create(ctx, liveSub("c", "quiz-1", "s2")); err != nil {
		t.Fatalf("other student: %v", err)
	}
	if err := store.Create(ctx, liveSub("d", "quiz-2", "s1")); err != nil {
		t.Fatalf("other quiz: %v", err)
	}
}

func TestMemoryStoreRejectsIllegalTransition(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	sub := liveSub("a", "quiz-1", "s1")
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	sub.Status = StatusExpired
	if err := store.Update(ctx, sub); err != nil {
		t.Fatalf("expire: %v", err)
	}

	sub.Status = StatusSubmitted
	if err := store.Update(ctx, sub); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expired -> submitted must fail, got %v", err)
	}
}

func TestMemoryStoreCountCompleted(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	mk := func(id string, status Status) {
		s := liveSub(id, "quiz-1", "s1")
		s.Status = status
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("a", StatusSubmitted)
	mk("b", StatusGraded)
	mk("c", StatusExpired)
	mk("d", StatusInProgress)

	n, err := store.CountCompleted(ctx, "quiz-1", "s1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count=%d, want 2 (expired and live don't count)", n)
	}
}

func TestMemoryStoreMutateMergesConcurrentGraders(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	sub := liveSub("a", "quiz-1", "s1")
	sub.Status = StatusSubmitted
	sub.Answers = []Answer{
		{ID: "ans-1", QuestionID: "e1", TextAnswer: "one"},
		{ID: "ans-2", QuestionID: "e2", TextAnswer: "two"},
	}
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	grade := func(answerID string, points float64) func(*Submission) error {
		return func(s *Submission) error {
			idx := s.AnswerByID(answerID)
			if idx < 0 {
				return ErrAnswerNotFound
			}
			s.Answers[idx].PointsAwarded = &points
			return nil
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := store.Mutate(ctx, "a", grade("ans-1", 3)); err != nil {
			t.Errorf("grader 1: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := store.Mutate(ctx, "a", grade("ans-2", 4)); err != nil {
			t.Errorf("grader 2: %v", err)
		}
	}()
	wg.Wait()

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, a := range got.Answers {
		if a.PointsAwarded == nil {
			t.Fatalf("a grader's write was lost: %+v", got.Answers)
		}
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	sub := liveSub("a", "quiz-1", "s1")
	sub.Answers = []Answer{{ID: "ans-1", QuestionID: "q1"}}
	if err := store.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.Get(ctx, "a")
	got.Answers[0].TextAnswer = "tampered"
	got.Status = StatusGraded

	again, _ := store.Get(ctx, "a")
	if again.Answers[0].TextAnswer == "tampered" || again.Status == StatusGraded {
		t.Fatal("store leaked internal state to callers")
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for i, id := range []string{"a", "b", "c"} {
		s := liveSub(id, "quiz-1", "s1")
		s.Status = StatusGraded
		s.StartedAt = testNow.Add(time.Duration(i) * time.Minute)
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := store.List(ctx, ListOpts{QuizID: "quiz-1", StudentID: "s1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len=%d, want 3", len(list))
	}
	// Most recent first.
	if list[0].ID != "c" || list[2].ID != "a" {
		t.Fatalf("order: %s,%s,%s", list[0].ID, list[1].ID, list[2].ID)
	}

	page, err := store.List(ctx, ListOpts{QuizID: "quiz-1", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "b" {
		t.Fatalf("page: %+v", page)
	}
}
