package assignment

import (
	"context"
	"errors"

	"lms-app/internal/logging"
)

type Service struct {
	assignments Repository
	log         *logging.Logger
}

func NewService(assignments Repository, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{assignments: assignments, log: log}
}

func (s *Service) Create(ctx context.Context, a Assignment) (string, error) {
	id, err := s.assignments.Create(ctx, a)
	if err != nil {
		s.log.Error("create assignment failed", "course_id", a.CourseID, "error", err)
		return "", err
	}
	return id, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Assignment, error) {
	a, err := s.assignments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return nil, nil
		}
		s.log.Error("get assignment failed", "assignment_id", id, "error", err)
		return nil, nil
	}
	return &a, nil
}

func (s *Service) ListByCourse(ctx context.Context, courseID string) []Assignment {
	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		s.log.Error("list assignments failed", "course_id", courseID, "error", err)
		return []Assignment{}
	}
	return assignments
}

func (s *Service) Update(ctx context.Context, id string, upd Update) error {
	if err := s.assignments.Update(ctx, id, upd); err != nil {
		s.log.Error("update assignment failed", "assignment_id", id, "error", err)
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.assignments.Delete(ctx, id); err != nil {
		s.log.Error("delete assignment failed", "assignment_id", id, "error", err)
		return err
	}
	return nil
}
