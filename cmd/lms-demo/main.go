// lms-demo wires every store together the way the mobile app does and walks
// through a teacher/student scenario end to end: accounts, a course with
// lessons and a quiz, enrollment, lesson completion, a graded attempt, and
// the progress views.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"lms-app/internal/announcement"
	"lms-app/internal/course"
	"lms-app/internal/kvstore"
	"lms-app/internal/logging"
	"lms-app/internal/progress"
	"lms-app/internal/quiz"
	"lms-app/internal/storage"
	"lms-app/internal/user"
)

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("LMS_DB_PATH", "lms.db"), "path to the database file")
	kvPath := flag.String("kv", envOr("LMS_KV_PATH", "lms-kv.db"), "path to the key-value file")
	logMode := flag.String("log", os.Getenv("LMS_LOG_MODE"), "log mode (dev or prod)")
	flag.Parse()

	log, err := logging.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), *dbPath, *kvPath, log); err != nil {
		log.Fatal("demo failed", "error", err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func run(ctx context.Context, dbPath, kvPath string, log *logging.Logger) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	kv, err := kvstore.Open(kvPath)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := storage.NewSchema(db, log).Initialize(ctx); err != nil {
		return err
	}

	users := user.NewService(user.NewSQLiteStore(db), kv, log)
	courseStore := course.NewSQLiteStore(db)
	courses := course.NewService(courseStore, courseStore, log)
	announcements := announcement.NewService(announcement.NewSQLiteStore(db), log)
	quizStore := quiz.NewSQLiteStore(db)
	quizzes := quiz.NewService(quizStore, quizStore, log)
	progressStore := progress.NewSQLiteStore(db)
	tracker := progress.NewService(progressStore, progressStore, log)

	teacher, err := users.Signup(ctx, "algebra.teacher@example.com", "chalkboard", "Ada Price", user.RoleTeacher)
	if err != nil {
		return err
	}
	student, err := users.Signup(ctx, "student.one@example.com", "notebook", "Sam Lee", user.RoleStudent)
	if err != nil {
		return err
	}
	if _, err := users.Login(ctx, teacher.Email, "chalkboard", user.RoleTeacher); err != nil {
		return err
	}

	courseID, err := courses.CreateCourse(ctx, course.Course{
		TeacherID:   teacher.ID,
		Title:       "Algebra I",
		Description: "Linear equations from scratch",
		Category:    "math",
		Level:       "beginner",
	})
	if err != nil {
		return err
	}

	for seq, title := range []string{"Variables", "Equations"} {
		if _, err := courses.CreateLesson(ctx, course.Lesson{
			CourseID:       courseID,
			Title:          title,
			SequenceNumber: seq + 1,
		}); err != nil {
			return err
		}
	}

	quizID, err := quizzes.CreateQuiz(ctx, quiz.Quiz{
		CourseID:     courseID,
		Title:        "Unit check",
		PassingScore: 50,
	})
	if err != nil {
		return err
	}
	questionID, err := quizzes.AddQuestion(ctx, quiz.Question{
		QuizID:         quizID,
		Text:           "What is 2x when x = 3?",
		Type:           quiz.QuestionMultipleChoice,
		Options:        []string{"5", "6", "9"},
		CorrectAnswer:  "6",
		SequenceNumber: 1,
	})
	if err != nil {
		return err
	}

	if _, err := announcements.Create(ctx, &courseID, teacher.ID, "Welcome", "First unit starts today.", nil); err != nil {
		return err
	}

	if _, err := tracker.Enroll(ctx, student.ID, courseID); err != nil {
		return err
	}
	for _, lesson := range courses.ListLessons(ctx, courseID) {
		if err := tracker.MarkLessonComplete(ctx, student.ID, lesson.ID); err != nil {
			return err
		}
		if err := tracker.AddLessonTime(ctx, student.ID, lesson.ID, 300); err != nil {
			return err
		}
	}
	pct, err := tracker.SyncCourseProgress(ctx, student.ID, courseID)
	if err != nil {
		return err
	}

	result, err := quizzes.SubmitAttempt(ctx, student.ID, quizID, map[string]string{questionID: "6"}, 45)
	if err != nil {
		return err
	}

	fmt.Printf("course %q completion: %.0f%%\n", "Algebra I", pct)
	fmt.Printf("quiz score: %.0f%% (passed=%v)\n", result.Score, result.Passed)
	for _, row := range tracker.CourseProgressOverview(ctx, courseID) {
		fmt.Printf("student %s: %d/%d lessons, %d seconds\n",
			row.StudentName, row.CompletedLessons, row.TotalLessons, row.TimeSpentSecs)
	}

	return users.Logout(ctx)
}
