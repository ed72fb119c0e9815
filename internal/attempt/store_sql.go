package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore persists submissions via database/sql; works against sqlite
// (modernc) and postgres (pgx stdlib). Answers are stored as a JSON column,
// same shape the API serves.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const submissionCols = `id, quiz_id, student_id, attempt_number, status, started_at, submitted_at, time_spent_sec, answers_json, total_score, max_score, percentage, passed`

func (s *SQLStore) Create(ctx context.Context, sub Submission) error {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	var submittedAt *int64
	if sub.SubmittedAt != nil {
		v := sub.SubmittedAt.Unix()
		submittedAt = &v
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (`+submissionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		sub.ID, sub.QuizID, sub.StudentID, sub.AttemptNumber, string(sub.Status),
		sub.StartedAt.Unix(), submittedAt, sub.TimeSpentSec, string(aj),
		sub.TotalScore, sub.MaxScore, sub.Percentage, sub.Passed)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("attempt already in progress: %w", err)
	}
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionCols+` FROM submissions WHERE id=$1`, id)
	return scanSubmission(row)
}

func (s *SQLStore) FindInProgress(ctx context.Context, quizID, studentID string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionCols+` FROM submissions
		WHERE quiz_id=$1 AND student_id=$2 AND status=$3`,
		quizID, studentID, string(StatusInProgress))
	sub, err := scanSubmission(row)
	if errors.Is(err, ErrSubmissionNotFound) {
		return Submission{}, ErrNoActiveAttempt
	}
	return sub, err
}

func (s *SQLStore) CountCompleted(ctx context.Context, quizID, studentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions
		WHERE quiz_id=$1 AND student_id=$2 AND status IN ($3,$4)`,
		quizID, studentID, string(StatusSubmitted), string(StatusGraded)).Scan(&n)
	return n, err
}

func (s *SQLStore) Update(ctx context.Context, sub Submission) error {
	cur, err := s.Get(ctx, sub.ID)
	if err != nil {
		return err
	}
	if !canPersist(cur.Status, sub.Status) {
		return ErrIllegalTransition
	}
	return s.write(ctx, s.db, sub)
}

// Mutate loads, mutates, and writes back inside one transaction. On postgres
// the row is locked with FOR UPDATE so concurrent essay graders serialize on
// it instead of overwriting each other.
func (s *SQLStore) Mutate(ctx context.Context, id string, fn func(*Submission) error) (Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Submission{}, err
	}
	defer tx.Rollback()

	q := `SELECT ` + submissionCols + ` FROM submissions WHERE id=$1`
	if s.driver == "postgres" {
		q += ` FOR UPDATE`
	}
	cur, err := scanSubmission(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return Submission{}, err
	}

	next := cur
	next.Answers = append([]Answer(nil), cur.Answers...)
	if err := fn(&next); err != nil {
		return Submission{}, err
	}
	if !canPersist(cur.Status, next.Status) {
		return Submission{}, ErrIllegalTransition
	}
	if err := s.write(ctx, tx, next); err != nil {
		return Submission{}, err
	}
	if err := tx.Commit(); err != nil {
		return Submission{}, err
	}
	return next, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Submission, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.QuizID != "" {
		add("quiz_id=$%d", opts.QuizID)
	}
	if opts.StudentID != "" {
		add("student_id=$%d", opts.StudentID)
	}
	if opts.Status != "" {
		add("status=$%d", string(opts.Status))
	}
	q := `SELECT ` + submissionCols + ` FROM submissions`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY started_at DESC`
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(` LIMIT $%d`, len(args))
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		q += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *SQLStore) write(ctx context.Context, ex execer, sub Submission) error {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	var submittedAt *int64
	if sub.SubmittedAt != nil {
		v := sub.SubmittedAt.Unix()
		submittedAt = &v
	}
	res, err := ex.ExecContext(ctx, `UPDATE submissions
		SET status=$1, submitted_at=$2, time_spent_sec=$3, answers_json=$4,
		    total_score=$5, max_score=$6, percentage=$7, passed=$8
		WHERE id=$9`,
		string(sub.Status), submittedAt, sub.TimeSpentSec, string(aj),
		sub.TotalScore, sub.MaxScore, sub.Percentage, sub.Passed, sub.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var (
		sub         Submission
		status      string
		startedAt   int64
		submittedAt sql.NullInt64
		answersJSON string
	)
	err := row.Scan(&sub.ID, &sub.QuizID, &sub.StudentID, &sub.AttemptNumber,
		&status, &startedAt, &submittedAt, &sub.TimeSpentSec, &answersJSON,
		&sub.TotalScore, &sub.MaxScore, &sub.Percentage, &sub.Passed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	sub.Status = Status(status)
	sub.StartedAt = time.Unix(startedAt, 0).UTC()
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0).UTC()
		sub.SubmittedAt = &t
	}
	if err := json.Unmarshal([]byte(answersJSON), &sub.Answers); err != nil {
		return Submission{}, fmt.Errorf("decode answers: %w", err)
	}
	return sub, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres 23505
}
