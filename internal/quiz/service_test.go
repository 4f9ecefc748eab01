package quiz

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-app/internal/logging"
	"lms-app/internal/storage"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.NewSchema(db, logging.Nop()).Initialize(context.Background()))

	store := NewSQLiteStore(db)
	return NewService(store, store, logging.Nop()), db
}

func buildQuiz(t *testing.T, svc *Service, correctAnswers ...string) (string, []string) {
	t.Helper()
	ctx := context.Background()

	quizID, err := svc.CreateQuiz(ctx, Quiz{CourseID: "c1", Title: "Quiz", PassingScore: 60})
	require.NoError(t, err)

	questionIDs := make([]string, 0, len(correctAnswers))
	for idx, answer := range correctAnswers {
		id, err := svc.AddQuestion(ctx, Question{
			QuizID:         quizID,
			Text:           "q",
			Type:           QuestionShortAnswer,
			CorrectAnswer:  answer,
			SequenceNumber: idx + 1,
		})
		require.NoError(t, err)
		questionIDs = append(questionIDs, id)
	}
	return quizID, questionIDs
}

func TestSubmitAttemptScoreFormula(t *testing.T) {
	tests := []struct {
		name      string
		submitted []string // aligned with correct answers "a","b","c","d"
		wantScore float64
		wantRight int
	}{
		{"all correct", []string{"a", "b", "c", "d"}, 100, 4},
		{"none correct", []string{"x", "x", "x", "x"}, 0, 0},
		{"half correct", []string{"a", "b", "x", "x"}, 50, 2},
		{"unanswered grade as wrong", []string{"a", "", "", ""}, 25, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()

			quizID, questionIDs := buildQuiz(t, svc, "a", "b", "c", "d")

			answers := make(map[string]string, len(questionIDs))
			for idx, id := range questionIDs {
				answers[id] = tc.submitted[idx]
			}

			result, err := svc.SubmitAttempt(ctx, "s1", quizID, answers, 120)
			require.NoError(t, err)
			assert.Equal(t, tc.wantScore, result.Score)
			assert.Equal(t, tc.wantRight, result.CorrectAnswers)
			assert.Equal(t, 4, result.TotalQuestions)
			assert.Len(t, result.Answers, 4)

			// One answer row per question was persisted.
			persisted := svc.ListAnswers(ctx, result.AttemptID)
			assert.Len(t, persisted, 4)
		})
	}
}

func TestSubmitAttemptTrimsStudentAnswers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quizID, questionIDs := buildQuiz(t, svc, "paris")
	result, err := svc.SubmitAttempt(ctx, "s1", quizID, map[string]string{questionIDs[0]: "  paris\n"}, 10)
	require.NoError(t, err)
	assert.Equal(t, float64(100), result.Score)
}

func TestSubmitAttemptPassFail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quizID, questionIDs := buildQuiz(t, svc, "a", "b")

	passed, err := svc.SubmitAttempt(ctx, "s1", quizID, map[string]string{
		questionIDs[0]: "a", questionIDs[1]: "b",
	}, 10)
	require.NoError(t, err)
	assert.True(t, passed.Passed)

	failed, err := svc.SubmitAttempt(ctx, "s1", quizID, map[string]string{
		questionIDs[0]: "a",
	}, 10)
	require.NoError(t, err)
	assert.False(t, failed.Passed, "half right must fail a 60 percent passing score")
}

func TestSubmitAttemptErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SubmitAttempt(ctx, "s1", "missing", nil, 0)
	assert.ErrorIs(t, err, ErrQuizNotFound)

	quizID, err := svc.CreateQuiz(ctx, Quiz{CourseID: "c1", Title: "Empty"})
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(ctx, "s1", quizID, nil, 0)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestListStudentAttemptsMostRecentFirst(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	quizID, _ := buildQuiz(t, svc, "a")

	// Timestamps controlled directly to pin the ordering.
	for _, row := range []struct {
		id string
		at int64
	}{{"at-old", 100}, {"at-new", 300}, {"at-mid", 200}} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO quiz_attempts (attempt_id, student_id, quiz_id, score, total_questions, correct_answers, attempted_at_unix, time_spent_secs)
			 VALUES (?, 's1', ?, 0, 1, 0, ?, 0)`,
			row.id, quizID, row.at)
		require.NoError(t, err)
	}

	attempts := svc.ListStudentAttempts(ctx, "s1", quizID)
	require.Len(t, attempts, 3)
	assert.Equal(t, "at-new", attempts[0].ID)
	assert.Equal(t, "at-mid", attempts[1].ID)
	assert.Equal(t, "at-old", attempts[2].ID)
}

func TestQuestionCountTracksAddAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	quizID, questionIDs := buildQuiz(t, svc, "a", "b", "c")

	quiz, err := svc.GetQuiz(ctx, quizID)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, 3, quiz.TotalQuestions)

	require.NoError(t, svc.DeleteQuestion(ctx, questionIDs[0]))
	quiz, err = svc.GetQuiz(ctx, quizID)
	require.NoError(t, err)
	assert.Equal(t, 2, quiz.TotalQuestions)
}

func TestDeleteQuizCascades(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	quizID, questionIDs := buildQuiz(t, svc, "a")
	result, err := svc.SubmitAttempt(ctx, "s1", quizID, map[string]string{questionIDs[0]: "a"}, 5)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteQuiz(ctx, quizID))

	for table, where := range map[string]string{
		"quizzes":        "quiz_id = '" + quizID + "'",
		"quiz_questions": "quiz_id = '" + quizID + "'",
		"quiz_attempts":  "quiz_id = '" + quizID + "'",
		"quiz_answers":   "attempt_id = '" + result.AttemptID + "'",
	} {
		var count int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE `+where).Scan(&count))
		assert.Zero(t, count, "rows left in %s", table)
	}
}

func TestDeleteQuestionCascadesAnswers(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	quizID, questionIDs := buildQuiz(t, svc, "a", "b")
	_, err := svc.SubmitAttempt(ctx, "s1", quizID, map[string]string{questionIDs[0]: "a", questionIDs[1]: "b"}, 5)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteQuestion(ctx, questionIDs[0]))

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quiz_answers WHERE question_id = ?`, questionIDs[0]).Scan(&count))
	assert.Zero(t, count)

	// The sibling question's answers survive.
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quiz_answers WHERE question_id = ?`, questionIDs[1]).Scan(&count))
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, svc.DeleteQuestion(ctx, questionIDs[0]), ErrQuestionNotFound)
}
