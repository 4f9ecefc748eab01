package user

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Insert(ctx context.Context, u User, passwordHash string) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, email, password_hash, name, role, bio, profile_image, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, passwordHash, u.Name, u.Role, u.Bio, u.ProfileImage, u.CreatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (User, string, error) {
	var (
		u             User
		hash          string
		createdAtUnix int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, password_hash, name, role, bio, profile_image, created_at_unix
		 FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &hash, &u.Name, &u.Role, &u.Bio, &u.ProfileImage, &createdAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, "", ErrUserNotFound
		}
		return User{}, "", err
	}

	u.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	return u, hash, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (User, error) {
	var (
		u             User
		createdAtUnix int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, name, role, bio, profile_image, created_at_unix
		 FROM users WHERE user_id = ?`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Bio, &u.ProfileImage, &createdAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}

	u.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	return u, nil
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, id, name, bio string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, bio = ? WHERE user_id = ?`,
		name, bio, id,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
