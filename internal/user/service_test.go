package user

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-app/internal/kvstore"
	"lms-app/internal/logging"
	"lms-app/internal/storage"
)

func newTestService(t *testing.T) (*Service, *sql.DB, *kvstore.Store) {
	t.Helper()

	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.NewSchema(db, logging.Nop()).Initialize(context.Background()))

	kv, err := kvstore.Open(filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	return NewService(NewSQLiteStore(db), kv, logging.Nop()), db, kv
}

func TestSignupAndLoginRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, "Maria@Example.com", "secret", "Maria", RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", created.Email)
	assert.Nil(t, svc.CurrentUser(), "signup must not log the user in")

	logged, err := svc.Login(ctx, "maria@example.com", "secret", RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, created.ID, logged.ID)
	assert.Equal(t, RoleStudent, logged.Role)
	require.NotNil(t, svc.CurrentUser())
}

func TestLoginWrongRoleNamesStoredRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "t@example.com", "secret", "T", RoleTeacher)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "t@example.com", "secret", RoleStudent)
	var mismatch *RoleMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, RoleTeacher, mismatch.Role)
	assert.Contains(t, err.Error(), "teacher")
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "t@example.com", "secret", "T", RoleTeacher)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "t@example.com", "wrong", RoleTeacher)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "unknown@example.com", "secret", RoleTeacher)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "dup@example.com", "one", "First", RoleStudent)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "dup@example.com", "two", "Second", RoleStudent)
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = 'dup@example.com'`).Scan(&count))
	assert.Equal(t, 1, count, "duplicate signup must not insert a row")
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), "x@example.com", "pw", "X", "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestPasswordsAreNotStoredInPlaintext(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "h@example.com", "plaintext-pw", "H", RoleStudent)
	require.NoError(t, err)

	var stored string
	require.NoError(t, db.QueryRow(`SELECT password_hash FROM users WHERE email = 'h@example.com'`).Scan(&stored))
	assert.NotEqual(t, "plaintext-pw", stored)
	assert.NotEmpty(t, stored)
}

func TestLogoutAndRestoreSession(t *testing.T) {
	svc, _, kv := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, "s@example.com", "pw", "S", RoleStudent)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "s@example.com", "pw", RoleStudent)
	require.NoError(t, err)

	// A fresh service over the same kv store restores the session, the way
	// app start does.
	restoredSvc := NewService(nil, kv, logging.Nop())
	restored, err := restoredSvc.RestoreSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, created.ID, restored.ID)

	require.NoError(t, svc.Logout(ctx))
	assert.Nil(t, svc.CurrentUser())

	afterLogout, err := NewService(nil, kv, logging.Nop()).RestoreSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, afterLogout, "restore after logout must find nothing")
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	svc, _, kv := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "New Name", "bio")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.Signup(ctx, "p@example.com", "pw", "P", RoleTeacher)
	require.NoError(t, err)
	_, err = svc.Login(ctx, "p@example.com", "pw", RoleTeacher)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, "New Name", "hello")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "hello", updated.Bio)

	// Durable copy follows the update.
	restored, err := NewService(nil, kv, logging.Nop()).RestoreSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "New Name", restored.Name)
}
