package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoQuestions      = errors.New("quiz has no questions")
)

const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
)

type Quiz struct {
	ID             string
	CourseID       string
	Title          string
	TotalQuestions int
	PassingScore   float64
	TimeLimitSecs  int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Question struct {
	ID             string
	QuizID         string
	Text           string
	Type           string
	Options        []string
	CorrectAnswer  string
	SequenceNumber int
}

type Attempt struct {
	ID             string
	StudentID      string
	QuizID         string
	Score          float64
	TotalQuestions int
	CorrectAnswers int
	AttemptedAt    time.Time
	TimeSpentSecs  int
}

type Answer struct {
	ID            string
	AttemptID     string
	QuestionID    string
	StudentAnswer string
	IsCorrect     bool
}

type QuizRepository interface {
	CreateQuiz(ctx context.Context, q Quiz) (string, error)
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	AddQuestion(ctx context.Context, q Question) (string, error)
	ListQuestions(ctx context.Context, quizID string) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

type AttemptRepository interface {
	RecordAttempt(ctx context.Context, attempt Attempt, answers []Answer) (string, error)
	ListStudentAttempts(ctx context.Context, studentID, quizID string) ([]Attempt, error)
	ListAnswers(ctx context.Context, attemptID string) ([]Answer, error)
}
