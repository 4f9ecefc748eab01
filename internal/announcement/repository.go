package announcement

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

// Announcement is scoped to a course, or school-wide when CourseID is nil.
// Attachments stays in its serialized form on fetch; callers decode it with
// DecodeAttachments when they need the structure.
type Announcement struct {
	ID          string
	CourseID    *string
	TeacherID   string
	Title       string
	Content     string
	Attachments string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Update carries a partial update. CourseID distinguishes "leave scope
// alone" (nil) from "set school-wide" (pointer to nil) via SetCourseID.
type Update struct {
	Title       *string
	Content     *string
	Attachments *[]Attachment
	CourseID    **string
}

// SetCourseID scopes the announcement to a course, or school-wide when id is
// nil.
func (u *Update) SetCourseID(id *string) {
	u.CourseID = &id
}

func EncodeAttachments(attachments []Attachment) (string, error) {
	if attachments == nil {
		attachments = []Attachment{}
	}
	raw, err := json.Marshal(attachments)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func DecodeAttachments(raw string) ([]Attachment, error) {
	if raw == "" {
		return []Attachment{}, nil
	}
	var attachments []Attachment
	if err := json.Unmarshal([]byte(raw), &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}

type Repository interface {
	Create(ctx context.Context, a Announcement) (string, error)
	Get(ctx context.Context, id string) (Announcement, error)
	ListByCourse(ctx context.Context, courseID string) ([]Announcement, error)
	ListSchoolWide(ctx context.Context) ([]Announcement, error)
	ListCourseScoped(ctx context.Context) ([]Announcement, error)
	ListAll(ctx context.Context) ([]Announcement, error)
	Update(ctx context.Context, id string, upd Update) error
	Delete(ctx context.Context, id string) error
}
