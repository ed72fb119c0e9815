// Package quizsql is the SQL-backed quiz catalog: full definitions, answer
// keys included. Question sets are stored as a JSON column; the row carries
// the envelope fields used for listing and admission checks.
package quizsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edupress/quizcore/internal/quiz"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const quizCols = `id, title, instructions, board, level, topic, duration_min, max_attempts, start_at, end_at, shuffle_questions, show_results, show_correct_answers, passing_score, total_points, status, questions_json`

func (s *Store) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *Store) PutQuiz(ctx context.Context, q quiz.Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	var startAt, endAt *int64
	if q.StartAt != nil {
		v := q.StartAt.Unix()
		startAt = &v
	}
	if q.EndAt != nil {
		v := q.EndAt.Unix()
		endAt = &v
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (`+quizCols+`, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
		  title=EXCLUDED.title, instructions=EXCLUDED.instructions,
		  board=EXCLUDED.board, level=EXCLUDED.level, topic=EXCLUDED.topic,
		  duration_min=EXCLUDED.duration_min, max_attempts=EXCLUDED.max_attempts,
		  start_at=EXCLUDED.start_at, end_at=EXCLUDED.end_at,
		  shuffle_questions=EXCLUDED.shuffle_questions,
		  show_results=EXCLUDED.show_results,
		  show_correct_answers=EXCLUDED.show_correct_answers,
		  passing_score=EXCLUDED.passing_score,
		  total_points=EXCLUDED.total_points,
		  status=EXCLUDED.status,
		  questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.Instructions, q.Board, q.Level, q.Topic,
		q.DurationMinutes, q.MaxAttempts, startAt, endAt,
		q.ShuffleQuestions, q.ShowResults, q.ShowCorrectAnswers,
		q.PassingScore, q.TotalPoints, string(q.Status), string(qj),
		time.Now().Unix())
	return err
}

func (s *Store) ListQuizzes(ctx context.Context, opts quiz.ListOpts) ([]quiz.Summary, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if opts.Board != "" {
		add("board=$%d", opts.Board)
	}
	if opts.Level != "" {
		add("level=$%d", opts.Level)
	}
	if opts.Topic != "" {
		add("topic=$%d", opts.Topic)
	}
	if opts.Status != "" {
		add("status=$%d", string(opts.Status))
	}
	q := `SELECT id, title, board, level, topic, duration_min, total_points, status, questions_json FROM quizzes`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`
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

	var out []quiz.Summary
	for rows.Next() {
		var (
			sum    quiz.Summary
			status string
			qjson  string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Board, &sum.Level, &sum.Topic,
			&sum.DurationMinutes, &sum.TotalPoints, &status, &qjson); err != nil {
			return nil, err
		}
		sum.Status = quiz.Status(status)
		var questions []quiz.Question
		if err := json.Unmarshal([]byte(qjson), &questions); err == nil {
			sum.QuestionCount = len(questions)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func scanQuiz(row *sql.Row) (quiz.Quiz, error) {
	var (
		q              quiz.Quiz
		startAt, endAt sql.NullInt64
		status         string
		qjson          string
	)
	err := row.Scan(&q.ID, &q.Title, &q.Instructions, &q.Board, &q.Level, &q.Topic,
		&q.DurationMinutes, &q.MaxAttempts, &startAt, &endAt,
		&q.ShuffleQuestions, &q.ShowResults, &q.ShowCorrectAnswers,
		&q.PassingScore, &q.TotalPoints, &status, &qjson)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.Quiz{}, quiz.ErrNotFound
		}
		return quiz.Quiz{}, err
	}
	q.Status = quiz.Status(status)
	if startAt.Valid {
		t := time.Unix(startAt.Int64, 0).UTC()
		q.StartAt = &t
	}
	if endAt.Valid {
		t := time.Unix(endAt.Int64, 0).UTC()
		q.EndAt = &t
	}
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return quiz.Quiz{}, fmt.Errorf("decode questions: %w", err)
	}
	return q, nil
}
