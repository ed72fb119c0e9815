package attempt

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// memoryStore keeps submissions in a mutex-guarded map. It backs tests and
// dev mode; the SQL store is the production path.
type memoryStore struct {
	mu   sync.RWMutex
	subs map[string]Submission
}

func NewInMemoryStore() Store {
	return &memoryStore{subs: map[string]Submission{}}
}

func (m *memoryStore) Create(ctx context.Context, sub Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.ID]; ok {
		return errors.New("submission id already exists")
	}
	// One live attempt per (quiz, student): mirror the SQL partial unique
	// index so the race loser resumes the winner's row.
	for _, s := range m.subs {
		if s.QuizID == sub.QuizID && s.StudentID == sub.StudentID && s.Status == StatusInProgress {
			return errors.New("attempt already in progress")
		}
	}
	m.subs[sub.ID] = cloneSubmission(sub)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return cloneSubmission(s), nil
}

func (m *memoryStore) FindInProgress(ctx context.Context, quizID, studentID string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.QuizID == quizID && s.StudentID == studentID && s.Status == StatusInProgress {
			return cloneSubmission(s), nil
		}
	}
	return Submission{}, ErrNoActiveAttempt
}

func (m *memoryStore) CountCompleted(ctx context.Context, quizID, studentID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.subs {
		if s.QuizID == quizID && s.StudentID == studentID && s.Completed() {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) Update(ctx context.Context, sub Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.subs[sub.ID]
	if !ok {
		return ErrSubmissionNotFound
	}
	if !canPersist(cur.Status, sub.Status) {
		return ErrIllegalTransition
	}
	m.subs[sub.ID] = cloneSubmission(sub)
	return nil
}

func (m *memoryStore) Mutate(ctx context.Context, id string, fn func(*Submission) error) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.subs[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	next := cloneSubmission(cur)
	if err := fn(&next); err != nil {
		return Submission{}, err
	}
	if !canPersist(cur.Status, next.Status) {
		return Submission{}, ErrIllegalTransition
	}
	m.subs[id] = cloneSubmission(next)
	return next, nil
}

func (m *memoryStore) List(ctx context.Context, opts ListOpts) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Submission
	for _, s := range m.subs {
		if opts.QuizID != "" && s.QuizID != opts.QuizID {
			continue
		}
		if opts.StudentID != "" && s.StudentID != opts.StudentID {
			continue
		}
		if opts.Status != "" && s.Status != opts.Status {
			continue
		}
		out = append(out, cloneSubmission(s))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func cloneSubmission(s Submission) Submission {
	out := s
	out.Answers = make([]Answer, len(s.Answers))
	copy(out.Answers, s.Answers)
	for i := range out.Answers {
		if p := out.Answers[i].SelectedOption; p != nil {
			v := *p
			out.Answers[i].SelectedOption = &v
		}
		if xs := out.Answers[i].SelectedOptions; xs != nil {
			out.Answers[i].SelectedOptions = append([]int(nil), xs...)
		}
		if p := out.Answers[i].IsCorrect; p != nil {
			v := *p
			out.Answers[i].IsCorrect = &v
		}
		if p := out.Answers[i].PointsAwarded; p != nil {
			v := *p
			out.Answers[i].PointsAwarded = &v
		}
	}
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		out.SubmittedAt = &t
	}
	return out
}
