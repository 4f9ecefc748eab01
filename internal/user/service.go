package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lms-app/internal/kvstore"
	"lms-app/internal/logging"
)

// Service owns authentication and the durable session copy in the key-value
// store. The in-memory session mirrors what screens read between operations.
type Service struct {
	users   Repository
	kv      *kvstore.Store
	log     *logging.Logger
	current *User
}

func NewService(users Repository, kv *kvstore.Store, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{users: users, kv: kv, log: log}
}

// Signup registers a new account. It does not log the user in.
func (s *Service) Signup(ctx context.Context, email, password, name, role string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)

	if role != RoleTeacher && role != RoleStudent {
		return nil, ErrInvalidRole
	}

	_, _, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		s.log.Error("signup email lookup failed", "email", email, "error", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  role,
	}
	if err := s.users.Insert(ctx, u, string(hash)); err != nil {
		s.log.Error("signup insert failed", "email", email, "error", err)
		return nil, err
	}

	s.log.Info("user registered", "user_id", u.ID, "role", role)
	return &u, nil
}

// Login authenticates the (email, password, role) triple. Correct credentials
// under the wrong role fail with a RoleMismatchError naming the stored role;
// anything else fails with ErrInvalidCredentials. On success the user record
// is persisted under the session key and kept in memory.
func (s *Service) Login(ctx context.Context, email, password, role string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, hash, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log.Error("login lookup failed", "email", email, "error", err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if u.Role != role {
		return nil, &RoleMismatchError{Role: u.Role}
	}

	if err := s.persistSession(ctx, &u); err != nil {
		s.log.Error("session persist failed", "user_id", u.ID, "error", err)
		return nil, err
	}

	s.current = &u
	s.log.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return &u, nil
}

// Logout clears the in-memory session and the durable entry.
func (s *Service) Logout(ctx context.Context) error {
	s.current = nil
	if err := s.kv.Delete(ctx, kvstore.KeyCurrentUser); err != nil {
		s.log.Error("session delete failed", "error", err)
		return err
	}
	return nil
}

// RestoreSession reinstates the session persisted by a previous login. A
// missing or undecodable entry restores nothing and is not an error.
func (s *Service) RestoreSession(ctx context.Context) (*User, error) {
	raw, err := s.kv.Get(ctx, kvstore.KeyCurrentUser)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, nil
		}
		s.log.Error("session read failed", "error", err)
		return nil, nil
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("stored session did not decode, discarding", "error", err)
		_ = s.kv.Delete(ctx, kvstore.KeyCurrentUser)
		return nil, nil
	}

	s.current = &u
	return &u, nil
}

// UpdateProfile requires an active session and writes the change to the
// users table, the in-memory session, and the durable session copy.
func (s *Service) UpdateProfile(ctx context.Context, name, bio string) (*User, error) {
	if s.current == nil {
		return nil, ErrNoSession
	}

	name = strings.TrimSpace(name)
	if err := s.users.UpdateProfile(ctx, s.current.ID, name, bio); err != nil {
		s.log.Error("profile update failed", "user_id", s.current.ID, "error", err)
		return nil, err
	}

	updated := *s.current
	updated.Name = name
	updated.Bio = bio
	if err := s.persistSession(ctx, &updated); err != nil {
		s.log.Error("session persist failed", "user_id", updated.ID, "error", err)
		return nil, err
	}

	s.current = &updated
	return &updated, nil
}

// CurrentUser returns the in-memory session, or nil when logged out.
func (s *Service) CurrentUser() *User {
	return s.current
}

func (s *Service) persistSession(ctx context.Context, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, kvstore.KeyCurrentUser, string(raw))
}
