package progress

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrNoProgress      = errors.New("no progress recorded")
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusDropped   = "dropped"
)

type Enrollment struct {
	ID            string
	StudentID     string
	CourseID      string
	EnrolledAt    time.Time
	CompletionPct float64
	Status        string
}

type LessonProgress struct {
	ID            string
	StudentID     string
	LessonID      string
	IsCompleted   bool
	CompletedAt   *time.Time
	TimeSpentSecs int
}

// StudentCourseSummary is one row of a student's own progress view.
type StudentCourseSummary struct {
	CourseID         string
	CourseTitle      string
	TotalLessons     int
	CompletedLessons int
	CompletionPct    float64
}

// CourseStudentSummary is one row of the teacher's course-wide view.
type CourseStudentSummary struct {
	StudentID        string
	StudentName      string
	TotalLessons     int
	CompletedLessons int
	CompletionPct    float64
	TimeSpentSecs    int
}

type EnrollmentRepository interface {
	Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error)
	Unenroll(ctx context.Context, studentID, courseID string) error
	GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error)
	UpdateEnrollmentProgress(ctx context.Context, studentID, courseID string, pct float64) error
}

type ProgressRepository interface {
	GetLessonProgress(ctx context.Context, studentID, lessonID string) (LessonProgress, error)
	SetLessonCompletion(ctx context.Context, studentID, lessonID string, completed bool) error
	AddLessonTime(ctx context.Context, studentID, lessonID string, seconds int) error
	CountCourseLessons(ctx context.Context, studentID, courseID string) (total, completed int, err error)
	StudentProgressSummaries(ctx context.Context, studentID string) ([]StudentCourseSummary, error)
	CourseProgressOverview(ctx context.Context, courseID string) ([]CourseStudentSummary, error)
}
