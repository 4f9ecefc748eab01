package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lms-app/internal/logging"
)

// Schema owns table creation, the two startup migrations, demo seeding and
// the full reset used by tests and the admin tool.
type Schema struct {
	db  *sql.DB
	log *logging.Logger
}

func NewSchema(db *sql.DB, log *logging.Logger) *Schema {
	if log == nil {
		log = logging.Nop()
	}
	return &Schema{db: db, log: log}
}

// Initialize creates every table if absent, then applies migrations. Safe to
// call on every startup.
func (s *Schema) Initialize(ctx context.Context) error {
	// FK constraints intentionally omitted: cascade deletes are an explicit,
	// transactional statement sequence owned by each store.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			bio TEXT NOT NULL DEFAULT '',
			profile_image TEXT NOT NULL DEFAULT '',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS courses (
			course_id TEXT PRIMARY KEY,
			teacher_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			duration TEXT NOT NULL DEFAULT '',
			level TEXT NOT NULL DEFAULT '',
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lessons (
			lesson_id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			video_url TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			sequence_number INTEGER NOT NULL,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			enrollment_id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			course_id TEXT NOT NULL,
			enrolled_at_unix INTEGER NOT NULL,
			completion_pct REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			UNIQUE (student_id, course_id)
		);`,
		`CREATE TABLE IF NOT EXISTS lesson_progress (
			progress_id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			is_completed INTEGER NOT NULL DEFAULT 0,
			completed_at_unix INTEGER,
			time_spent_secs INTEGER NOT NULL DEFAULT 0,
			UNIQUE (student_id, lesson_id)
		);`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			quiz_id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			title TEXT NOT NULL,
			total_questions INTEGER NOT NULL DEFAULT 0,
			passing_score REAL NOT NULL DEFAULT 0,
			time_limit_secs INTEGER NOT NULL DEFAULT 0,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_questions (
			question_id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			question_text TEXT NOT NULL,
			question_type TEXT NOT NULL,
			options_json TEXT NOT NULL DEFAULT '[]',
			correct_answer TEXT NOT NULL,
			sequence_number INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_attempts (
			attempt_id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			quiz_id TEXT NOT NULL,
			score REAL NOT NULL,
			total_questions INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			attempted_at_unix INTEGER NOT NULL,
			time_spent_secs INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_answers (
			answer_id TEXT PRIMARY KEY,
			attempt_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			student_answer TEXT NOT NULL,
			is_correct INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS announcements (
			announcement_id TEXT PRIMARY KEY,
			course_id TEXT,
			teacher_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			attachments_json TEXT NOT NULL DEFAULT '[]',
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assignments (
			assignment_id TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			due_at_unix INTEGER NOT NULL DEFAULT 0,
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lessons_course_seq ON lessons(course_id, sequence_number ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id);`,
		`CREATE INDEX IF NOT EXISTS idx_lesson_progress_student ON lesson_progress(student_id);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_student_quiz ON quiz_attempts(student_id, quiz_id, attempted_at_unix DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_announcements_course ON announcements(course_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	s.Migrate(ctx)
	return nil
}

// Migrate applies the announcement-table fixups for databases written by
// older builds. Failures are logged and swallowed; startup never aborts on a
// migration error.
func (s *Schema) Migrate(ctx context.Context) {
	if err := s.relaxAnnouncementCourseColumn(ctx); err != nil {
		s.log.Warn("announcements course column migration failed", "error", err)
	}
	if err := s.addAttachmentsColumn(ctx); err != nil {
		s.log.Warn("announcements attachments column migration failed", "error", err)
	}
}

type columnInfo struct {
	name    string
	notNull bool
}

func (s *Schema) tableColumns(ctx context.Context, table string) ([]columnInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, "notnull" FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make([]columnInfo, 0)
	for rows.Next() {
		var (
			col     columnInfo
			notNull int
		)
		if err := rows.Scan(&col.name, &notNull); err != nil {
			return nil, err
		}
		col.notNull = notNull != 0
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// relaxAnnouncementCourseColumn rebuilds the announcements table when its
// course reference is still NOT NULL, so school-wide announcements (null
// course) become storable. SQLite cannot alter a column's nullability in
// place, hence create-copy-drop-rename. The legacy attachments column is not
// copied; rows are otherwise preserved.
func (s *Schema) relaxAnnouncementCourseColumn(ctx context.Context) error {
	columns, err := s.tableColumns(ctx, "announcements")
	if err != nil {
		return err
	}

	needsRebuild := false
	for _, col := range columns {
		if col.name == "course_id" && col.notNull {
			needsRebuild = true
		}
	}
	if !needsRebuild {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`CREATE TABLE announcements_migrated (
			announcement_id TEXT PRIMARY KEY,
			course_id TEXT,
			teacher_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			attachments_json TEXT NOT NULL DEFAULT '[]',
			created_at_unix INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`INSERT INTO announcements_migrated
			(announcement_id, course_id, teacher_id, title, content, created_at_unix, updated_at_unix)
		 SELECT announcement_id, course_id, teacher_id, title, content, created_at_unix, updated_at_unix
		 FROM announcements;`,
		`DROP TABLE announcements;`,
		`ALTER TABLE announcements_migrated RENAME TO announcements;`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("announcements table rebuilt with nullable course reference")
	return nil
}

func (s *Schema) addAttachmentsColumn(ctx context.Context) error {
	columns, err := s.tableColumns(ctx, "announcements")
	if err != nil {
		return err
	}
	for _, col := range columns {
		if col.name == "attachments_json" {
			return nil
		}
	}

	_, err = s.db.ExecContext(ctx, `ALTER TABLE announcements ADD COLUMN attachments_json TEXT NOT NULL DEFAULT '[]'`)
	if err != nil {
		return err
	}
	s.log.Info("announcements attachments column added")
	return nil
}

// Reset drops every table, children before parents. Intended for the admin
// tool and tests, never for normal startup.
func (s *Schema) Reset(ctx context.Context) error {
	tables := []string{
		"quiz_answers",
		"quiz_attempts",
		"quiz_questions",
		"quizzes",
		"lesson_progress",
		"lessons",
		"enrollments",
		"announcements",
		"assignments",
		"courses",
		"users",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
	}
	return nil
}

// SeedSentinelEmail marks a seeded database; Seed is a no-op once a user with
// this email exists.
const SeedSentinelEmail = "teacher@lms.local"

type seedUser struct {
	email    string
	password string
	name     string
	role     string
}

// Seed inserts the baseline demo accounts. Idempotent.
func (s *Schema) Seed(ctx context.Context) error {
	var found int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE email = ? LIMIT 1`, SeedSentinelEmail,
	).Scan(&found)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	demo := []seedUser{
		{email: SeedSentinelEmail, password: "teacher123", name: "Demo Teacher", role: "teacher"},
		{email: "student@lms.local", password: "student123", name: "Demo Student", role: "student"},
	}

	now := time.Now().UTC().UnixNano()
	for _, user := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO users (user_id, email, password_hash, name, role, created_at_unix)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), user.email, string(hash), user.name, user.role, now,
		)
		if err != nil {
			return err
		}
	}

	s.log.Info("seeded demo accounts", "count", len(demo))
	return nil
}
