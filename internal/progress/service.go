package progress

import (
	"context"
	"errors"

	"lms-app/internal/logging"
)

// Service fronts enrollment and lesson-progress storage. The stored
// completion percentage is not recomputed on read; callers keep it in sync
// through SyncCourseProgress (or UpdateEnrollmentProgress directly) whenever
// lesson completion changes.
type Service struct {
	enrollments EnrollmentRepository
	progress    ProgressRepository
	log         *logging.Logger
}

func NewService(enrollments EnrollmentRepository, progress ProgressRepository, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{enrollments: enrollments, progress: progress, log: log}
}

func (s *Service) Enroll(ctx context.Context, studentID, courseID string) (*Enrollment, error) {
	e, err := s.enrollments.Enroll(ctx, studentID, courseID)
	if err != nil {
		if !errors.Is(err, ErrAlreadyEnrolled) {
			s.log.Error("enroll failed", "student_id", studentID, "course_id", courseID, "error", err)
		}
		return nil, err
	}
	s.log.Info("student enrolled", "student_id", studentID, "course_id", courseID)
	return &e, nil
}

func (s *Service) Unenroll(ctx context.Context, studentID, courseID string) error {
	if err := s.enrollments.Unenroll(ctx, studentID, courseID); err != nil {
		if !errors.Is(err, ErrNotEnrolled) {
			s.log.Error("unenroll failed", "student_id", studentID, "course_id", courseID, "error", err)
		}
		return err
	}
	return nil
}

// GetCourseProgress returns the enrollment with its stored percentage, or
// nil when the student is not enrolled.
func (s *Service) GetCourseProgress(ctx context.Context, studentID, courseID string) *Enrollment {
	e, err := s.enrollments.GetEnrollment(ctx, studentID, courseID)
	if err != nil {
		if !errors.Is(err, ErrNotEnrolled) {
			s.log.Error("get enrollment failed", "student_id", studentID, "course_id", courseID, "error", err)
		}
		return nil
	}
	return &e
}

func (s *Service) UpdateEnrollmentProgress(ctx context.Context, studentID, courseID string, pct float64) error {
	if err := s.enrollments.UpdateEnrollmentProgress(ctx, studentID, courseID, pct); err != nil {
		if !errors.Is(err, ErrNotEnrolled) {
			s.log.Error("update enrollment progress failed", "student_id", studentID, "course_id", courseID, "error", err)
		}
		return err
	}
	return nil
}

func (s *Service) MarkLessonComplete(ctx context.Context, studentID, lessonID string) error {
	if err := s.progress.SetLessonCompletion(ctx, studentID, lessonID, true); err != nil {
		s.log.Error("mark lesson complete failed", "student_id", studentID, "lesson_id", lessonID, "error", err)
		return err
	}
	return nil
}

func (s *Service) MarkLessonIncomplete(ctx context.Context, studentID, lessonID string) error {
	if err := s.progress.SetLessonCompletion(ctx, studentID, lessonID, false); err != nil {
		s.log.Error("mark lesson incomplete failed", "student_id", studentID, "lesson_id", lessonID, "error", err)
		return err
	}
	return nil
}

func (s *Service) AddLessonTime(ctx context.Context, studentID, lessonID string, seconds int) error {
	if err := s.progress.AddLessonTime(ctx, studentID, lessonID, seconds); err != nil {
		s.log.Error("add lesson time failed", "student_id", studentID, "lesson_id", lessonID, "error", err)
		return err
	}
	return nil
}

func (s *Service) GetLessonProgress(ctx context.Context, studentID, lessonID string) *LessonProgress {
	p, err := s.progress.GetLessonProgress(ctx, studentID, lessonID)
	if err != nil {
		if !errors.Is(err, ErrNoProgress) {
			s.log.Error("get lesson progress failed", "student_id", studentID, "lesson_id", lessonID, "error", err)
		}
		return nil
	}
	return &p
}

// CompletionForCourse computes 100 * completed / total lessons for the
// student, 0 when the course has no lessons.
func (s *Service) CompletionForCourse(ctx context.Context, studentID, courseID string) (float64, error) {
	total, completed, err := s.progress.CountCourseLessons(ctx, studentID, courseID)
	if err != nil {
		s.log.Error("count course lessons failed", "student_id", studentID, "course_id", courseID, "error", err)
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return 100 * float64(completed) / float64(total), nil
}

// SyncCourseProgress recomputes the student's completion percentage and
// writes it to the enrollment.
func (s *Service) SyncCourseProgress(ctx context.Context, studentID, courseID string) (float64, error) {
	pct, err := s.CompletionForCourse(ctx, studentID, courseID)
	if err != nil {
		return 0, err
	}
	if err := s.UpdateEnrollmentProgress(ctx, studentID, courseID, pct); err != nil {
		return 0, err
	}
	return pct, nil
}

func (s *Service) StudentProgressSummaries(ctx context.Context, studentID string) []StudentCourseSummary {
	summaries, err := s.progress.StudentProgressSummaries(ctx, studentID)
	if err != nil {
		s.log.Error("student progress summaries failed", "student_id", studentID, "error", err)
		return []StudentCourseSummary{}
	}
	return summaries
}

func (s *Service) CourseProgressOverview(ctx context.Context, courseID string) []CourseStudentSummary {
	summaries, err := s.progress.CourseProgressOverview(ctx, courseID)
	if err != nil {
		s.log.Error("course progress overview failed", "course_id", courseID, "error", err)
		return []CourseStudentSummary{}
	}
	return summaries
}
