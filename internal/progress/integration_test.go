package progress_test

import (
	"context"
	"path/filepath"
	"testing"

	"lms-app/internal/course"
	"lms-app/internal/kvstore"
	"lms-app/internal/logging"
	"lms-app/internal/progress"
	"lms-app/internal/storage"
	"lms-app/internal/user"
)

// Walks the whole student lifecycle through the real services on one
// database: accounts, a course with out-of-order lessons, enrollment,
// lesson completion and time tracking, and the synced completion
// percentage a teacher would see.
func TestStudentCourseLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := storage.Open(filepath.Join(dir, "lms.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	kv, err := kvstore.Open(filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("kv Open failed: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	log := logging.Nop()
	if err := storage.NewSchema(db, log).Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	users := user.NewService(user.NewSQLiteStore(db), kv, log)
	courseStore := course.NewSQLiteStore(db)
	courses := course.NewService(courseStore, courseStore, log)
	progressStore := progress.NewSQLiteStore(db)
	tracker := progress.NewService(progressStore, progressStore, log)

	teacher, err := users.Signup(ctx, "ada@school.test", "chalkboard", "Ada Price", user.RoleTeacher)
	if err != nil {
		t.Fatalf("teacher signup failed: %v", err)
	}
	student, err := users.Signup(ctx, "sam@school.test", "notebook", "Sam Lee", user.RoleStudent)
	if err != nil {
		t.Fatalf("student signup failed: %v", err)
	}

	courseID, err := courses.CreateCourse(ctx, course.Course{
		TeacherID: teacher.ID,
		Title:     "Algebra I",
		Category:  "math",
	})
	if err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}

	// Created out of order; reads must come back by sequence number.
	equationsID, err := courses.CreateLesson(ctx, course.Lesson{
		CourseID: courseID, Title: "Equations", SequenceNumber: 2,
	})
	if err != nil {
		t.Fatalf("CreateLesson failed: %v", err)
	}
	variablesID, err := courses.CreateLesson(ctx, course.Lesson{
		CourseID: courseID, Title: "Variables", SequenceNumber: 1,
	})
	if err != nil {
		t.Fatalf("CreateLesson failed: %v", err)
	}

	lessons := courses.ListLessons(ctx, courseID)
	if len(lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(lessons))
	}
	if lessons[0].ID != variablesID || lessons[1].ID != equationsID {
		t.Fatalf("lessons out of sequence: %s, %s", lessons[0].Title, lessons[1].Title)
	}

	if _, err := tracker.Enroll(ctx, student.ID, courseID); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	enrolled := courses.ListEnrolledCourses(ctx, student.ID)
	if len(enrolled) != 1 || enrolled[0].ID != courseID {
		t.Fatalf("expected one enrolled course, got %+v", enrolled)
	}

	// Halfway through.
	if err := tracker.MarkLessonComplete(ctx, student.ID, variablesID); err != nil {
		t.Fatalf("MarkLessonComplete failed: %v", err)
	}
	if err := tracker.AddLessonTime(ctx, student.ID, variablesID, 120); err != nil {
		t.Fatalf("AddLessonTime failed: %v", err)
	}
	if err := tracker.AddLessonTime(ctx, student.ID, variablesID, 60); err != nil {
		t.Fatalf("AddLessonTime failed: %v", err)
	}

	pct, err := tracker.SyncCourseProgress(ctx, student.ID, courseID)
	if err != nil {
		t.Fatalf("SyncCourseProgress failed: %v", err)
	}
	if pct != 50 {
		t.Fatalf("expected 50 percent after one of two lessons, got %v", pct)
	}

	// Finish the course.
	if err := tracker.MarkLessonComplete(ctx, student.ID, equationsID); err != nil {
		t.Fatalf("MarkLessonComplete failed: %v", err)
	}
	if err := tracker.AddLessonTime(ctx, student.ID, equationsID, 90); err != nil {
		t.Fatalf("AddLessonTime failed: %v", err)
	}
	pct, err = tracker.SyncCourseProgress(ctx, student.ID, courseID)
	if err != nil {
		t.Fatalf("SyncCourseProgress failed: %v", err)
	}
	if pct != 100 {
		t.Fatalf("expected 100 percent, got %v", pct)
	}

	enrollment := tracker.GetCourseProgress(ctx, student.ID, courseID)
	if enrollment == nil {
		t.Fatal("expected an enrollment")
	}
	if enrollment.Status != progress.StatusCompleted {
		t.Fatalf("expected completed status, got %s", enrollment.Status)
	}

	overview := tracker.CourseProgressOverview(ctx, courseID)
	if len(overview) != 1 {
		t.Fatalf("expected one student in overview, got %d", len(overview))
	}
	row := overview[0]
	if row.StudentName != "Sam Lee" || row.CompletedLessons != 2 || row.TotalLessons != 2 {
		t.Fatalf("unexpected overview row: %+v", row)
	}
	if row.TimeSpentSecs != 270 {
		t.Fatalf("expected 270 seconds accumulated, got %d", row.TimeSpentSecs)
	}
}
