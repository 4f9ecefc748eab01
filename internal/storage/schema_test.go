package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"lms-app/internal/logging"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	schema := NewSchema(db, logging.Nop())

	if err := schema.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := schema.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&count)
	if err != nil {
		t.Fatalf("table count query failed: %v", err)
	}
	if count != 11 {
		t.Fatalf("expected 11 tables, got %d", count)
	}
}

func TestMigrateRelaxesAnnouncementCourseColumn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Legacy shape: NOT NULL course reference, old attachments column.
	_, err := db.ExecContext(ctx, `CREATE TABLE announcements (
		announcement_id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		teacher_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		attachments TEXT,
		created_at_unix INTEGER NOT NULL,
		updated_at_unix INTEGER NOT NULL
	)`)
	if err != nil {
		t.Fatalf("legacy table create failed: %v", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO announcements (announcement_id, course_id, teacher_id, title, content, attachments, created_at_unix, updated_at_unix)
		 VALUES ('a1', 'c1', 't1', 'Old', 'body', 'legacy-blob', 100, 100)`)
	if err != nil {
		t.Fatalf("legacy insert failed: %v", err)
	}

	schema := NewSchema(db, logging.Nop())
	schema.Migrate(ctx)

	// Nullable course reference now accepted.
	_, err = db.ExecContext(ctx,
		`INSERT INTO announcements (announcement_id, course_id, teacher_id, title, content, created_at_unix, updated_at_unix)
		 VALUES ('a2', NULL, 't1', 'School-wide', 'body', 200, 200)`)
	if err != nil {
		t.Fatalf("school-wide insert after migration failed: %v", err)
	}

	// Legacy row survived, legacy attachments content did not.
	var title, attachments string
	err = db.QueryRowContext(ctx,
		`SELECT title, attachments_json FROM announcements WHERE announcement_id = 'a1'`,
	).Scan(&title, &attachments)
	if err != nil {
		t.Fatalf("migrated row read failed: %v", err)
	}
	if title != "Old" {
		t.Fatalf("expected migrated title 'Old', got %q", title)
	}
	if attachments != "[]" {
		t.Fatalf("expected reset attachments, got %q", attachments)
	}
}

func TestMigrateAddsAttachmentsColumn(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE announcements (
		announcement_id TEXT PRIMARY KEY,
		course_id TEXT,
		teacher_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at_unix INTEGER NOT NULL,
		updated_at_unix INTEGER NOT NULL
	)`)
	if err != nil {
		t.Fatalf("table create failed: %v", err)
	}

	NewSchema(db, logging.Nop()).Migrate(ctx)

	var defaulted string
	_, err = db.ExecContext(ctx,
		`INSERT INTO announcements (announcement_id, course_id, teacher_id, title, content, created_at_unix, updated_at_unix)
		 VALUES ('a1', NULL, 't1', 'T', 'b', 1, 1)`)
	if err != nil {
		t.Fatalf("insert after migration failed: %v", err)
	}
	err = db.QueryRowContext(ctx,
		`SELECT attachments_json FROM announcements WHERE announcement_id = 'a1'`).Scan(&defaulted)
	if err != nil {
		t.Fatalf("attachments_json read failed: %v", err)
	}
	if defaulted != "[]" {
		t.Fatalf("expected '[]' default, got %q", defaulted)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	schema := NewSchema(db, logging.Nop())

	if err := schema.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := schema.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := schema.Seed(ctx); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("user count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 seeded users, got %d", count)
	}
}

func TestResetDropsEverything(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	schema := NewSchema(db, logging.Nop())

	if err := schema.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := schema.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`).Scan(&count)
	if err != nil {
		t.Fatalf("table count query failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no tables after reset, got %d", count)
	}
}
