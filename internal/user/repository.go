package user

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("role must be teacher or student")
	ErrNoSession          = errors.New("no active session")
)

// RoleMismatchError is returned when the credentials are correct but the
// login was attempted under the wrong role. The message names the role the
// account is actually registered with.
type RoleMismatchError struct {
	Role string
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("this account is registered as a %s; please log in as a %s", e.Role, e.Role)
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Repository interface {
	Insert(ctx context.Context, u User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (User, string, error)
	GetByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, id, name, bio string) error
}
