package quiz

import (
	"context"
	"errors"
	"strings"

	"lms-app/internal/logging"
)

// Service owns quiz CRUD and grading. Scoring lives here, not in the
// presentation layer: callers hand over the raw answers and get back a
// graded, persisted attempt.
type Service struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	log      *logging.Logger
}

func NewService(quizzes QuizRepository, attempts AttemptRepository, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{quizzes: quizzes, attempts: attempts, log: log}
}

// AttemptResult is what a results screen renders after submission.
type AttemptResult struct {
	AttemptID      string
	Score          float64
	TotalQuestions int
	CorrectAnswers int
	Passed         bool
	Answers        []Answer
}

func (s *Service) CreateQuiz(ctx context.Context, q Quiz) (string, error) {
	id, err := s.quizzes.CreateQuiz(ctx, q)
	if err != nil {
		s.log.Error("create quiz failed", "course_id", q.CourseID, "error", err)
		return "", err
	}
	return id, nil
}

func (s *Service) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	q, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return nil, nil
		}
		s.log.Error("get quiz failed", "quiz_id", id, "error", err)
		return nil, nil
	}
	return &q, nil
}

func (s *Service) ListQuizzes(ctx context.Context, courseID string) []Quiz {
	quizzes, err := s.quizzes.ListQuizzes(ctx, courseID)
	if err != nil {
		s.log.Error("list quizzes failed", "course_id", courseID, "error", err)
		return []Quiz{}
	}
	return quizzes
}

func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.quizzes.DeleteQuiz(ctx, id); err != nil {
		s.log.Error("delete quiz failed", "quiz_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) AddQuestion(ctx context.Context, q Question) (string, error) {
	id, err := s.quizzes.AddQuestion(ctx, q)
	if err != nil {
		s.log.Error("add question failed", "quiz_id", q.QuizID, "error", err)
		return "", err
	}
	return id, nil
}

func (s *Service) ListQuestions(ctx context.Context, quizID string) []Question {
	questions, err := s.quizzes.ListQuestions(ctx, quizID)
	if err != nil {
		s.log.Error("list questions failed", "quiz_id", quizID, "error", err)
		return []Question{}
	}
	return questions
}

func (s *Service) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.quizzes.DeleteQuestion(ctx, id); err != nil {
		s.log.Error("delete question failed", "question_id", id, "error", err)
		return err
	}
	return nil
}

// SubmitAttempt grades the submitted answers against the quiz's stored
// questions, computes score = 100 * correct / total, and persists the
// attempt together with one answer row per question.
func (s *Service) SubmitAttempt(ctx context.Context, studentID, quizID string, submitted map[string]string, timeSpentSecs int) (*AttemptResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, ErrQuizNotFound) {
			return nil, ErrQuizNotFound
		}
		s.log.Error("submit attempt quiz lookup failed", "quiz_id", quizID, "error", err)
		return nil, err
	}

	questions, err := s.quizzes.ListQuestions(ctx, quizID)
	if err != nil {
		s.log.Error("submit attempt question load failed", "quiz_id", quizID, "error", err)
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	correct := 0
	answers := make([]Answer, 0, len(questions))
	for _, question := range questions {
		studentAnswer := submitted[question.ID]
		isCorrect := gradeAnswer(question, studentAnswer)
		if isCorrect {
			correct++
		}
		answers = append(answers, Answer{
			QuestionID:    question.ID,
			StudentAnswer: studentAnswer,
			IsCorrect:     isCorrect,
		})
	}

	score := 100 * float64(correct) / float64(len(questions))
	attempt := Attempt{
		StudentID:      studentID,
		QuizID:         quizID,
		Score:          score,
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		TimeSpentSecs:  timeSpentSecs,
	}

	attemptID, err := s.attempts.RecordAttempt(ctx, attempt, answers)
	if err != nil {
		s.log.Error("record attempt failed", "quiz_id", quizID, "student_id", studentID, "error", err)
		return nil, err
	}

	for idx := range answers {
		answers[idx].AttemptID = attemptID
	}

	s.log.Info("attempt recorded", "quiz_id", quizID, "student_id", studentID, "score", score)
	return &AttemptResult{
		AttemptID:      attemptID,
		Score:          score,
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		Passed:         score >= quiz.PassingScore,
		Answers:        answers,
	}, nil
}

func (s *Service) ListStudentAttempts(ctx context.Context, studentID, quizID string) []Attempt {
	attempts, err := s.attempts.ListStudentAttempts(ctx, studentID, quizID)
	if err != nil {
		s.log.Error("list attempts failed", "quiz_id", quizID, "student_id", studentID, "error", err)
		return []Attempt{}
	}
	return attempts
}

func (s *Service) ListAnswers(ctx context.Context, attemptID string) []Answer {
	answers, err := s.attempts.ListAnswers(ctx, attemptID)
	if err != nil {
		s.log.Error("list answers failed", "attempt_id", attemptID, "error", err)
		return []Answer{}
	}
	return answers
}

// gradeAnswer compares the trimmed submitted answer to the stored correct
// answer. An unanswered question grades as incorrect.
func gradeAnswer(question Question, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}
	return submitted == question.CorrectAnswer
}
