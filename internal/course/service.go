package course

import (
	"context"
	"errors"

	"lms-app/internal/logging"
)

// Service fronts the course and lesson stores with the app's error policy:
// read failures are logged and replaced with empty results, write failures
// propagate to the caller, lookups for missing rows return nil.
type Service struct {
	courses CourseRepository
	lessons LessonRepository
	log     *logging.Logger
}

func NewService(courses CourseRepository, lessons LessonRepository, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{courses: courses, lessons: lessons, log: log}
}

func (s *Service) CreateCourse(ctx context.Context, c Course) (string, error) {
	id, err := s.courses.CreateCourse(ctx, c)
	if err != nil {
		s.log.Error("create course failed", "teacher_id", c.TeacherID, "error", err)
		return "", err
	}
	return id, nil
}

func (s *Service) GetCourse(ctx context.Context, id string) (*Course, error) {
	c, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, nil
		}
		s.log.Error("get course failed", "course_id", id, "error", err)
		return nil, nil
	}
	return &c, nil
}

func (s *Service) ListCourses(ctx context.Context) []Course {
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		s.log.Error("list courses failed", "error", err)
		return []Course{}
	}
	return courses
}

func (s *Service) ListTeacherCourses(ctx context.Context, teacherID string) []Course {
	courses, err := s.courses.ListTeacherCourses(ctx, teacherID)
	if err != nil {
		s.log.Error("list teacher courses failed", "teacher_id", teacherID, "error", err)
		return []Course{}
	}
	return courses
}

func (s *Service) ListEnrolledCourses(ctx context.Context, studentID string) []Course {
	courses, err := s.courses.ListEnrolledCourses(ctx, studentID)
	if err != nil {
		s.log.Error("list enrolled courses failed", "student_id", studentID, "error", err)
		return []Course{}
	}
	return courses
}

func (s *Service) UpdateCourse(ctx context.Context, id string, upd CourseUpdate) error {
	if err := s.courses.UpdateCourse(ctx, id, upd); err != nil {
		s.log.Error("update course failed", "course_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	if err := s.courses.DeleteCourse(ctx, id); err != nil {
		s.log.Error("delete course failed", "course_id", id, "error", err)
		return err
	}
	s.log.Info("course deleted", "course_id", id)
	return nil
}

func (s *Service) CreateLesson(ctx context.Context, l Lesson) (string, error) {
	id, err := s.lessons.CreateLesson(ctx, l)
	if err != nil {
		s.log.Error("create lesson failed", "course_id", l.CourseID, "error", err)
		return "", err
	}
	return id, nil
}

func (s *Service) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	l, err := s.lessons.GetLesson(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return nil, nil
		}
		s.log.Error("get lesson failed", "lesson_id", id, "error", err)
		return nil, nil
	}
	return &l, nil
}

func (s *Service) ListLessons(ctx context.Context, courseID string) []Lesson {
	lessons, err := s.lessons.ListLessons(ctx, courseID)
	if err != nil {
		s.log.Error("list lessons failed", "course_id", courseID, "error", err)
		return []Lesson{}
	}
	return lessons
}

func (s *Service) UpdateLesson(ctx context.Context, id string, upd LessonUpdate) error {
	if err := s.lessons.UpdateLesson(ctx, id, upd); err != nil {
		s.log.Error("update lesson failed", "lesson_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) DeleteLesson(ctx context.Context, id string) error {
	if err := s.lessons.DeleteLesson(ctx, id); err != nil {
		s.log.Error("delete lesson failed", "lesson_id", id, "error", err)
		return err
	}
	return nil
}
