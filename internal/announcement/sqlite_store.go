package announcement

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const announcementColumns = `announcement_id, course_id, teacher_id, title, content, attachments_json, created_at_unix, updated_at_unix`

func (s *SQLiteStore) Create(ctx context.Context, a Announcement) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Attachments == "" {
		a.Attachments = "[]"
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (`+announcementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CourseID, a.TeacherID, a.Title, a.Content, a.Attachments,
		a.CreatedAt.UnixNano(), a.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

func scanAnnouncement(scanner interface{ Scan(...interface{}) error }) (Announcement, error) {
	var (
		a         Announcement
		courseID  sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := scanner.Scan(&a.ID, &courseID, &a.TeacherID, &a.Title, &a.Content,
		&a.Attachments, &createdAt, &updatedAt)
	if err != nil {
		return Announcement{}, err
	}
	if courseID.Valid {
		a.CourseID = &courseID.String
	}
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return a, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Announcement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE announcement_id = ?`, id)
	a, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Announcement{}, ErrAnnouncementNotFound
		}
		return Announcement{}, err
	}
	return a, nil
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...interface{}) ([]Announcement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := make([]Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (s *SQLiteStore) ListByCourse(ctx context.Context, courseID string) ([]Announcement, error) {
	return s.list(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE course_id = ? ORDER BY created_at_unix DESC`,
		courseID)
}

func (s *SQLiteStore) ListSchoolWide(ctx context.Context) ([]Announcement, error) {
	return s.list(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE course_id IS NULL ORDER BY created_at_unix DESC`)
}

func (s *SQLiteStore) ListCourseScoped(ctx context.Context) ([]Announcement, error) {
	return s.list(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE course_id IS NOT NULL ORDER BY created_at_unix DESC`)
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]Announcement, error) {
	return s.list(ctx,
		`SELECT `+announcementColumns+` FROM announcements ORDER BY created_at_unix DESC`)
}

func (s *SQLiteStore) Update(ctx context.Context, id string, upd Update) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Attachments != nil {
		raw, err := EncodeAttachments(*upd.Attachments)
		if err != nil {
			return err
		}
		set = append(set, "attachments_json = ?")
		args = append(args, raw)
	}
	if upd.CourseID != nil {
		set = append(set, "course_id = ?")
		args = append(args, *upd.CourseID)
	}

	set = append(set, "updated_at_unix = ?")
	args = append(args, time.Now().UTC().UnixNano(), id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE announcements SET `+strings.Join(set, ", ")+` WHERE announcement_id = ?`, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM announcements WHERE announcement_id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}
