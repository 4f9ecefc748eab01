package course

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

const courseColumns = `course_id, teacher_id, title, description, category, cover_image, duration, level, created_at_unix, updated_at_unix`

func (s *SQLiteStore) CreateCourse(ctx context.Context, c Course) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (`+courseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TeacherID, c.Title, c.Description, c.Category, c.CoverImage,
		c.Duration, c.Level, c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func scanCourse(scanner interface{ Scan(...interface{}) error }) (Course, error) {
	var (
		c         Course
		createdAt int64
		updatedAt int64
	)
	err := scanner.Scan(&c.ID, &c.TeacherID, &c.Title, &c.Description, &c.Category,
		&c.CoverImage, &c.Duration, &c.Level, &createdAt, &updatedAt)
	if err != nil {
		return Course{}, err
	}
	c.CreatedAt = time.Unix(0, createdAt).UTC()
	c.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return c, nil
}

func (s *SQLiteStore) GetCourse(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE course_id = ?`, id)
	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

func (s *SQLiteStore) listCourses(ctx context.Context, query string, args ...interface{}) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *SQLiteStore) ListCourses(ctx context.Context) ([]Course, error) {
	return s.listCourses(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at_unix DESC`)
}

func (s *SQLiteStore) ListTeacherCourses(ctx context.Context, teacherID string) ([]Course, error) {
	return s.listCourses(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE teacher_id = ? ORDER BY created_at_unix DESC`,
		teacherID)
}

func (s *SQLiteStore) ListEnrolledCourses(ctx context.Context, studentID string) ([]Course, error) {
	return s.listCourses(ctx,
		`SELECT c.course_id, c.teacher_id, c.title, c.description, c.category, c.cover_image,
		        c.duration, c.level, c.created_at_unix, c.updated_at_unix
		 FROM courses c
		 JOIN enrollments e ON e.course_id = c.course_id
		 WHERE e.student_id = ?
		 ORDER BY e.enrolled_at_unix DESC`,
		studentID)
}

func (s *SQLiteStore) UpdateCourse(ctx context.Context, id string, upd CourseUpdate) error {
	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.CoverImage != nil {
		set = append(set, "cover_image = ?")
		args = append(args, *upd.CoverImage)
	}
	if upd.Duration != nil {
		set = append(set, "duration = ?")
		args = append(args, *upd.Duration)
	}
	if upd.Level != nil {
		set = append(set, "level = ?")
		args = append(args, *upd.Level)
	}

	set = append(set, "updated_at_unix = ?")
	args = append(args, time.Now().UTC().UnixNano(), id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE courses SET `+strings.Join(set, ", ")+` WHERE course_id = ?`, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes the course and everything hanging off it in one
// transaction: lesson progress, lessons, quiz answers/attempts/questions/
// quizzes, enrollments, announcements, assignments, then the course row.
func (s *SQLiteStore) DeleteCourse(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM lesson_progress WHERE lesson_id IN
			(SELECT lesson_id FROM lessons WHERE course_id = ?)`,
		`DELETE FROM lessons WHERE course_id = ?`,
		`DELETE FROM quiz_answers WHERE attempt_id IN
			(SELECT attempt_id FROM quiz_attempts WHERE quiz_id IN
				(SELECT quiz_id FROM quizzes WHERE course_id = ?))`,
		`DELETE FROM quiz_attempts WHERE quiz_id IN
			(SELECT quiz_id FROM quizzes WHERE course_id = ?)`,
		`DELETE FROM quiz_questions WHERE quiz_id IN
			(SELECT quiz_id FROM quizzes WHERE course_id = ?)`,
		`DELETE FROM quizzes WHERE course_id = ?`,
		`DELETE FROM enrollments WHERE course_id = ?`,
		`DELETE FROM announcements WHERE course_id = ?`,
		`DELETE FROM assignments WHERE course_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE course_id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCourseNotFound
	}

	return tx.Commit()
}

const lessonColumns = `lesson_id, course_id, title, content, video_url, file_url, sequence_number, created_at_unix, updated_at_unix`

func (s *SQLiteStore) CreateLesson(ctx context.Context, l Lesson) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = l.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (`+lessonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.CourseID, l.Title, l.Content, l.VideoURL, l.FileURL,
		l.SequenceNumber, l.CreatedAt.UnixNano(), l.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return "", err
	}
	return l.ID, nil
}

func scanLesson(scanner interface{ Scan(...interface{}) error }) (Lesson, error) {
	var (
		l         Lesson
		createdAt int64
		updatedAt int64
	)
	err := scanner.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.VideoURL,
		&l.FileURL, &l.SequenceNumber, &createdAt, &updatedAt)
	if err != nil {
		return Lesson{}, err
	}
	l.CreatedAt = time.Unix(0, createdAt).UTC()
	l.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return l, nil
}

func (s *SQLiteStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE lesson_id = ?`, id)
	l, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, ErrLessonNotFound
		}
		return Lesson{}, err
	}
	return l, nil
}

// ListLessons returns a course's lessons in consumption order.
func (s *SQLiteStore) ListLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE course_id = ? ORDER BY sequence_number ASC`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (s *SQLiteStore) UpdateLesson(ctx context.Context, id string, upd LessonUpdate) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	if upd.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		set = append(set, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.VideoURL != nil {
		set = append(set, "video_url = ?")
		args = append(args, *upd.VideoURL)
	}
	if upd.FileURL != nil {
		set = append(set, "file_url = ?")
		args = append(args, *upd.FileURL)
	}
	if upd.SequenceNumber != nil {
		set = append(set, "sequence_number = ?")
		args = append(args, *upd.SequenceNumber)
	}

	set = append(set, "updated_at_unix = ?")
	args = append(args, time.Now().UTC().UnixNano(), id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET `+strings.Join(set, ", ")+` WHERE lesson_id = ?`, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// DeleteLesson removes the lesson's progress rows and the lesson in one
// transaction.
func (s *SQLiteStore) DeleteLesson(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lesson_progress WHERE lesson_id = ?`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE lesson_id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLessonNotFound
	}

	return tx.Commit()
}
