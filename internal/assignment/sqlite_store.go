package assignment

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

const assignmentColumns = `assignment_id, course_id, title, description, due_at_unix, created_at_unix, updated_at_unix`

func (s *SQLiteStore) Create(ctx context.Context, a Assignment) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	var dueAt int64
	if !a.DueAt.IsZero() {
		dueAt = a.DueAt.UnixNano()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assignments (`+assignmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CourseID, a.Title, a.Description, dueAt,
		a.CreatedAt.UnixNano(), a.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

func scanAssignment(scanner interface{ Scan(...interface{}) error }) (Assignment, error) {
	var (
		a         Assignment
		dueAt     int64
		createdAt int64
		updatedAt int64
	)
	err := scanner.Scan(&a.ID, &a.CourseID, &a.Title, &a.Description, &dueAt, &createdAt, &updatedAt)
	if err != nil {
		return Assignment{}, err
	}
	if dueAt != 0 {
		a.DueAt = time.Unix(0, dueAt).UTC()
	}
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	a.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return a, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE assignment_id = ?`, id)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assignment{}, ErrAssignmentNotFound
		}
		return Assignment{}, err
	}
	return a, nil
}

func (s *SQLiteStore) ListByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE course_id = ? ORDER BY due_at_unix ASC`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, id string, upd Update) error {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.DueAt != nil {
		set = append(set, "due_at_unix = ?")
		args = append(args, upd.DueAt.UnixNano())
	}

	set = append(set, "updated_at_unix = ?")
	args = append(args, time.Now().UTC().UnixNano(), id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE assignments SET `+strings.Join(set, ", ")+` WHERE assignment_id = ?`, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM assignments WHERE assignment_id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}
