// Package auth implements the mock authentication boundary: a credential
// check against the seeded user accounts and a session persisted through
// the storage adapter. It is a stand-in boundary, not a security model.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/model"
	"github.com/Tanny2709/dental-clinic-dashboard-entnt/internal/storage"
)

// ErrNotLoggedIn reports that no session is stored.
var ErrNotLoggedIn = errors.New("auth: not logged in")

// ErrInvalidCredentials reports a failed credential check.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// Session is the persisted login state.
type Session struct {
	UserID    string     `json:"userId"`
	Role      model.Role `json:"role"`
	Email     string     `json:"email"`
	PatientID string     `json:"patientId,omitempty"`
}

// IsAdmin reports whether the session belongs to a practice admin.
func (s Session) IsAdmin() bool { return s.Role == model.RoleAdmin }

// Service checks credentials and manages the persisted session.
type Service struct {
	adapter storage.Adapter
}

// NewService returns a Service backed by the given adapter.
func NewService(adapter storage.Adapter) *Service {
	return &Service{adapter: adapter}
}

// Login checks email and password against the stored user accounts and
// persists the resulting session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	var users []model.User
	if err := s.adapter.Load(ctx, storage.CollectionUsers, &users); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	for _, u := range users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return Session{}, ErrInvalidCredentials
		}
		sess := Session{
			UserID:    u.ID,
			Role:      u.Role,
			Email:     u.Email,
			PatientID: u.PatientID,
		}
		if err := s.adapter.Save(ctx, storage.CollectionSession, sess); err != nil {
			return Session{}, err
		}
		return sess, nil
	}
	return Session{}, ErrInvalidCredentials
}

// Logout removes the stored session. Logging out while logged out is fine.
func (s *Service) Logout(ctx context.Context) error {
	return s.adapter.Delete(ctx, storage.CollectionSession)
}

// Current returns the stored session, or ErrNotLoggedIn when absent.
func (s *Service) Current(ctx context.Context) (Session, error) {
	var sess Session
	if err := s.adapter.Load(ctx, storage.CollectionSession, &sess); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, err
	}
	if sess.UserID == "" {
		return Session{}, ErrNotLoggedIn
	}
	return sess, nil
}
