package course

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

type Course struct {
	ID          string
	TeacherID   string
	Title       string
	Description string
	Category    string
	CoverImage  string
	Duration    string
	Level       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Lesson struct {
	ID             string
	CourseID       string
	Title          string
	Content        string
	VideoURL       string
	FileURL        string
	SequenceNumber int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CourseUpdate carries a partial update: only populated fields are written.
// The updated timestamp is stamped regardless.
type CourseUpdate struct {
	Title       *string
	Description *string
	Category    *string
	CoverImage  *string
	Duration    *string
	Level       *string
}

type LessonUpdate struct {
	Title          *string
	Content        *string
	VideoURL       *string
	FileURL        *string
	SequenceNumber *int
}

type CourseRepository interface {
	CreateCourse(ctx context.Context, c Course) (string, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	ListTeacherCourses(ctx context.Context, teacherID string) ([]Course, error)
	ListEnrolledCourses(ctx context.Context, studentID string) ([]Course, error)
	UpdateCourse(ctx context.Context, id string, upd CourseUpdate) error
	DeleteCourse(ctx context.Context, id string) error
}

type LessonRepository interface {
	CreateLesson(ctx context.Context, l Lesson) (string, error)
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessons(ctx context.Context, courseID string) ([]Lesson, error)
	UpdateLesson(ctx context.Context, id string, upd LessonUpdate) error
	DeleteLesson(ctx context.Context, id string) error
}
