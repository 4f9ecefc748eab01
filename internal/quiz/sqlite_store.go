package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateQuiz(ctx context.Context, q Quiz) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (quiz_id, course_id, title, total_questions, passing_score, time_limit_secs, created_at_unix, updated_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.CourseID, q.Title, q.TotalQuestions, q.PassingScore,
		q.TimeLimitSecs, q.CreatedAt.UnixNano(), q.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", err
	}
	return q.ID, nil
}

func scanQuiz(scanner interface{ Scan(...interface{}) error }) (Quiz, error) {
	var (
		q         Quiz
		createdAt int64
		updatedAt int64
	)
	err := scanner.Scan(&q.ID, &q.CourseID, &q.Title, &q.TotalQuestions,
		&q.PassingScore, &q.TimeLimitSecs, &createdAt, &updatedAt)
	if err != nil {
		return Quiz{}, err
	}
	q.CreatedAt = time.Unix(0, createdAt).UTC()
	q.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return q, nil
}

const quizColumns = `quiz_id, course_id, title, total_questions, passing_score, time_limit_secs, created_at_unix, updated_at_unix`

func (s *SQLiteStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE quiz_id = ?`, id)
	q, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLiteStore) ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE course_id = ? ORDER BY created_at_unix DESC`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// DeleteQuiz removes the quiz's answers, attempts, questions and the quiz
// row in one transaction.
func (s *SQLiteStore) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM quiz_answers WHERE attempt_id IN
			(SELECT attempt_id FROM quiz_attempts WHERE quiz_id = ?)`,
		`DELETE FROM quiz_attempts WHERE quiz_id = ?`,
		`DELETE FROM quiz_questions WHERE quiz_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM quizzes WHERE quiz_id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrQuizNotFound
	}

	return tx.Commit()
}

// AddQuestion inserts the question and refreshes the quiz's stored question
// count in the same transaction.
func (s *SQLiteStore) AddQuestion(ctx context.Context, q Question) (string, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quiz_questions (question_id, quiz_id, question_text, question_type, options_json, correct_answer, sequence_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.QuizID, q.Text, q.Type, string(optionsJSON), q.CorrectAnswer, q.SequenceNumber,
	)
	if err != nil {
		return "", err
	}

	if err := refreshQuestionCount(ctx, tx, q.QuizID); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return q.ID, nil
}

func refreshQuestionCount(ctx context.Context, tx *sql.Tx, quizID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE quizzes SET
			total_questions = (SELECT COUNT(*) FROM quiz_questions WHERE quiz_id = ?),
			updated_at_unix = ?
		 WHERE quiz_id = ?`,
		quizID, time.Now().UTC().UnixNano(), quizID,
	)
	return err
}

// ListQuestions returns a quiz's questions in display order.
func (s *SQLiteStore) ListQuestions(ctx context.Context, quizID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, quiz_id, question_text, question_type, options_json, correct_answer, sequence_number
		 FROM quiz_questions
		 WHERE quiz_id = ?
		 ORDER BY sequence_number ASC`,
		quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]Question, 0)
	for rows.Next() {
		var (
			q           Question
			optionsJSON string
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Type, &optionsJSON,
			&q.CorrectAnswer, &q.SequenceNumber); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// DeleteQuestion removes the answers referencing the question, the question
// itself, and refreshes the quiz's question count, all in one transaction.
func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var quizID string
	err = tx.QueryRowContext(ctx,
		`SELECT quiz_id FROM quiz_questions WHERE question_id = ?`, id,
	).Scan(&quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_answers WHERE question_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_questions WHERE question_id = ?`, id); err != nil {
		return err
	}
	if err := refreshQuestionCount(ctx, tx, quizID); err != nil {
		return err
	}

	return tx.Commit()
}

// RecordAttempt persists the graded attempt and its per-question answer rows
// in one transaction and returns the attempt id.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, attempt Attempt, answers []Answer) (string, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quiz_attempts (attempt_id, student_id, quiz_id, score, total_questions, correct_answers, attempted_at_unix, time_spent_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, attempt.StudentID, attempt.QuizID, attempt.Score,
		attempt.TotalQuestions, attempt.CorrectAnswers,
		attempt.AttemptedAt.UnixNano(), attempt.TimeSpentSecs,
	)
	if err != nil {
		return "", err
	}

	for _, answer := range answers {
		if answer.ID == "" {
			answer.ID = uuid.NewString()
		}
		isCorrect := 0
		if answer.IsCorrect {
			isCorrect = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quiz_answers (answer_id, attempt_id, question_id, student_answer, is_correct)
			 VALUES (?, ?, ?, ?, ?)`,
			answer.ID, attempt.ID, answer.QuestionID, answer.StudentAnswer, isCorrect,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return attempt.ID, nil
}

// ListStudentAttempts returns a student's attempts, most recent first.
func (s *SQLiteStore) ListStudentAttempts(ctx context.Context, studentID, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt_id, student_id, quiz_id, score, total_questions, correct_answers, attempted_at_unix, time_spent_secs
		 FROM quiz_attempts
		 WHERE student_id = ? AND quiz_id = ?
		 ORDER BY attempted_at_unix DESC`,
		studentID, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]Attempt, 0)
	for rows.Next() {
		var (
			a           Attempt
			attemptedAt int64
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.Score,
			&a.TotalQuestions, &a.CorrectAnswers, &attemptedAt, &a.TimeSpentSecs); err != nil {
			return nil, err
		}
		a.AttemptedAt = time.Unix(0, attemptedAt).UTC()
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (s *SQLiteStore) ListAnswers(ctx context.Context, attemptID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT answer_id, attempt_id, question_id, student_answer, is_correct
		 FROM quiz_answers
		 WHERE attempt_id = ?`,
		attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make([]Answer, 0)
	for rows.Next() {
		var (
			a         Answer
			isCorrect int
		)
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.StudentAnswer, &isCorrect); err != nil {
			return nil, err
		}
		a.IsCorrect = isCorrect != 0
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
