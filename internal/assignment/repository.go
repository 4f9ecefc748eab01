package assignment

import (
	"context"
	"errors"
	"time"
)

var ErrAssignmentNotFound = errors.New("assignment not found")

type Assignment struct {
	ID          string
	CourseID    string
	Title       string
	Description string
	DueAt       time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Update struct {
	Title       *string
	Description *string
	DueAt       *time.Time
}

type Repository interface {
	Create(ctx context.Context, a Assignment) (string, error)
	Get(ctx context.Context, id string) (Assignment, error)
	ListByCourse(ctx context.Context, courseID string) ([]Assignment, error)
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
}
