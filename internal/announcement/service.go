package announcement

import (
	"context"
	"errors"

	"lms-app/internal/logging"
)

type Service struct {
	announcements Repository
	log           *logging.Logger
}

func NewService(announcements Repository, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{announcements: announcements, log: log}
}

// Create serializes the attachment list and inserts the announcement. A nil
// courseID publishes it school-wide.
func (s *Service) Create(ctx context.Context, courseID *string, teacherID, title, content string, attachments []Attachment) (string, error) {
	raw, err := EncodeAttachments(attachments)
	if err != nil {
		return "", err
	}

	id, err := s.announcements.Create(ctx, Announcement{
		CourseID:    courseID,
		TeacherID:   teacherID,
		Title:       title,
		Content:     content,
		Attachments: raw,
	})
	if err != nil {
		s.log.Error("create announcement failed", "teacher_id", teacherID, "error", err)
		return "", err
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Announcement, error) {
	a, err := s.announcements.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAnnouncementNotFound) {
			return nil, nil
		}
		s.log.Error("get announcement failed", "announcement_id", id, "error", err)
		return nil, nil
	}
	return &a, nil
}

func (s *Service) ListByCourse(ctx context.Context, courseID string) []Announcement {
	items, err := s.announcements.ListByCourse(ctx, courseID)
	if err != nil {
		s.log.Error("list course announcements failed", "course_id", courseID, "error", err)
		return []Announcement{}
	}
	return items
}

func (s *Service) ListSchoolWide(ctx context.Context) []Announcement {
	items, err := s.announcements.ListSchoolWide(ctx)
	if err != nil {
		s.log.Error("list school-wide announcements failed", "error", err)
		return []Announcement{}
	}
	return items
}

func (s *Service) ListCourseScoped(ctx context.Context) []Announcement {
	items, err := s.announcements.ListCourseScoped(ctx)
	if err != nil {
		s.log.Error("list course-scoped announcements failed", "error", err)
		return []Announcement{}
	}
	return items
}

func (s *Service) ListAll(ctx context.Context) []Announcement {
	items, err := s.announcements.ListAll(ctx)
	if err != nil {
		s.log.Error("list announcements failed", "error", err)
		return []Announcement{}
	}
	return items
}

func (s *Service) Update(ctx context.Context, id string, upd Update) error {
	if err := s.announcements.Update(ctx, id, upd); err != nil {
		s.log.Error("update announcement failed", "announcement_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		s.log.Error("delete announcement failed", "announcement_id", id, "error", err)
		return err
	}
	return nil
}
