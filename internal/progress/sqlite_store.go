package progress

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanEnrollment(scanner interface{ Scan(...interface{}) error }) (Enrollment, error) {
	var (
		e          Enrollment
		enrolledAt int64
	)
	err := scanner.Scan(&e.ID, &e.StudentID, &e.CourseID, &enrolledAt, &e.CompletionPct, &e.Status)
	if err != nil {
		return Enrollment{}, err
	}
	e.EnrolledAt = time.Unix(0, enrolledAt).UTC()
	return e, nil
}

const enrollmentColumns = `enrollment_id, student_id, course_id, enrolled_at_unix, completion_pct, status`

func (s *SQLiteStore) GetEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID, courseID)
	e, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, ErrNotEnrolled
		}
		return Enrollment{}, err
	}
	return e, nil
}

// Enroll runs as one transaction so the duplicate check and the insert (or
// reactivation) see the same state.
//
// Invariants:
//   - (student_id, course_id) is unique in enrollments.
//   - An active or completed enrollment must not be duplicated.
//   - A dropped enrollment is reactivated with completion reset to 0 and a
//     fresh enrolled_at, never duplicated.
func (s *SQLiteStore) Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Enrollment{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID, courseID)
	existing, err := scanEnrollment(row)
	switch {
	case err == nil && existing.Status != StatusDropped:
		return Enrollment{}, ErrAlreadyEnrolled
	case err == nil:
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx,
			`UPDATE enrollments SET status = ?, completion_pct = 0, enrolled_at_unix = ?
			 WHERE enrollment_id = ?`,
			StatusActive, now.UnixNano(), existing.ID,
		)
		if err != nil {
			return Enrollment{}, err
		}
		existing.Status = StatusActive
		existing.CompletionPct = 0
		existing.EnrolledAt = now
		return existing, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return Enrollment{}, err
	}

	e := Enrollment{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
		Status:     StatusActive,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO enrollments (`+enrollmentColumns+`) VALUES (?, ?, ?, ?, 0, ?)`,
		e.ID, e.StudentID, e.CourseID, e.EnrolledAt.UnixNano(), e.Status,
	)
	if err != nil {
		return Enrollment{}, err
	}
	return e, tx.Commit()
}

// Unenroll hard-deletes the enrollment row.
func (s *SQLiteStore) Unenroll(ctx context.Context, studentID, courseID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE student_id = ? AND course_id = ?`,
		studentID, courseID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotEnrolled
	}
	return nil
}

// UpdateEnrollmentProgress writes the stored percentage and keeps status in
// step with it: completed at 100, active below.
func (s *SQLiteStore) UpdateEnrollmentProgress(ctx context.Context, studentID, courseID string, pct float64) error {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	status := StatusActive
	if pct >= 100 {
		status = StatusCompleted
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE enrollments SET completion_pct = ?, status = ?
		 WHERE student_id = ? AND course_id = ?`,
		pct, status, studentID, courseID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotEnrolled
	}
	return nil
}

func (s *SQLiteStore) GetLessonProgress(ctx context.Context, studentID, lessonID string) (LessonProgress, error) {
	var (
		p           LessonProgress
		isCompleted int
		completedAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT progress_id, student_id, lesson_id, is_completed, completed_at_unix, time_spent_secs
		 FROM lesson_progress WHERE student_id = ? AND lesson_id = ?`,
		studentID, lessonID,
	).Scan(&p.ID, &p.StudentID, &p.LessonID, &isCompleted, &completedAt, &p.TimeSpentSecs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LessonProgress{}, ErrNoProgress
		}
		return LessonProgress{}, err
	}

	p.IsCompleted = isCompleted != 0
	if completedAt.Valid {
		at := time.Unix(0, completedAt.Int64).UTC()
		p.CompletedAt = &at
	}
	return p, nil
}

// SetLessonCompletion upserts on (student_id, lesson_id). Completing stamps
// completed_at; un-completing clears it. Accumulated time is untouched.
func (s *SQLiteStore) SetLessonCompletion(ctx context.Context, studentID, lessonID string, completed bool) error {
	isCompleted := 0
	var completedAt interface{}
	if completed {
		isCompleted = 1
		completedAt = time.Now().UTC().UnixNano()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (progress_id, student_id, lesson_id, is_completed, completed_at_unix, time_spent_secs)
		 VALUES (?, ?, ?, ?, ?, 0)
		 ON CONFLICT(student_id, lesson_id) DO UPDATE SET
			is_completed = excluded.is_completed,
			completed_at_unix = excluded.completed_at_unix`,
		uuid.NewString(), studentID, lessonID, isCompleted, completedAt,
	)
	return err
}

// AddLessonTime accumulates seconds onto any previously recorded time,
// upserting when no row exists yet.
func (s *SQLiteStore) AddLessonTime(ctx context.Context, studentID, lessonID string, seconds int) error {
	if seconds < 0 {
		seconds = 0
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lesson_progress (progress_id, student_id, lesson_id, is_completed, completed_at_unix, time_spent_secs)
		 VALUES (?, ?, ?, 0, NULL, ?)
		 ON CONFLICT(student_id, lesson_id) DO UPDATE SET
			time_spent_secs = time_spent_secs + excluded.time_spent_secs`,
		uuid.NewString(), studentID, lessonID, seconds,
	)
	return err
}

// CountCourseLessons returns a course's lesson count and how many of them
// the student has completed.
func (s *SQLiteStore) CountCourseLessons(ctx context.Context, studentID, courseID string) (int, int, error) {
	var total, completed int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(l.lesson_id),
		        COUNT(CASE WHEN lp.is_completed = 1 THEN 1 END)
		 FROM lessons l
		 LEFT JOIN lesson_progress lp ON lp.lesson_id = l.lesson_id AND lp.student_id = ?
		 WHERE l.course_id = ?`,
		studentID, courseID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

// StudentProgressSummaries reports the student's enrolled courses with lesson
// totals and completion. Left joins keep courses with no lessons or no
// progress in the result with zero counts.
func (s *SQLiteStore) StudentProgressSummaries(ctx context.Context, studentID string) ([]StudentCourseSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.course_id, c.title, e.completion_pct,
		        COUNT(DISTINCT l.lesson_id),
		        COUNT(DISTINCT CASE WHEN lp.is_completed = 1 THEN l.lesson_id END)
		 FROM enrollments e
		 JOIN courses c ON c.course_id = e.course_id
		 LEFT JOIN lessons l ON l.course_id = c.course_id
		 LEFT JOIN lesson_progress lp ON lp.lesson_id = l.lesson_id AND lp.student_id = e.student_id
		 WHERE e.student_id = ?
		 GROUP BY c.course_id, c.title, e.completion_pct
		 ORDER BY c.title ASC`,
		studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]StudentCourseSummary, 0)
	for rows.Next() {
		var item StudentCourseSummary
		if err := rows.Scan(&item.CourseID, &item.CourseTitle, &item.CompletionPct,
			&item.TotalLessons, &item.CompletedLessons); err != nil {
			return nil, err
		}
		summaries = append(summaries, item)
	}
	return summaries, rows.Err()
}

// CourseProgressOverview reports every enrolled student of a course with
// lesson totals, completion and accumulated time. Students with no progress
// rows appear with zeros.
func (s *SQLiteStore) CourseProgressOverview(ctx context.Context, courseID string) ([]CourseStudentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.user_id, u.name, e.completion_pct,
		        COUNT(DISTINCT l.lesson_id),
		        COUNT(DISTINCT CASE WHEN lp.is_completed = 1 THEN l.lesson_id END),
		        COALESCE(SUM(lp.time_spent_secs), 0)
		 FROM enrollments e
		 JOIN users u ON u.user_id = e.student_id
		 LEFT JOIN lessons l ON l.course_id = e.course_id
		 LEFT JOIN lesson_progress lp ON lp.lesson_id = l.lesson_id AND lp.student_id = e.student_id
		 WHERE e.course_id = ?
		 GROUP BY u.user_id, u.name, e.completion_pct
		 ORDER BY u.name ASC`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]CourseStudentSummary, 0)
	for rows.Next() {
		var item CourseStudentSummary
		if err := rows.Scan(&item.StudentID, &item.StudentName, &item.CompletionPct,
			&item.TotalLessons, &item.CompletedLessons, &item.TimeSpentSecs); err != nil {
			return nil, err
		}
		summaries = append(summaries, item)
	}
	return summaries, rows.Err()
}
