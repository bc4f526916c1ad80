package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskdeck.org/internal/audit"
)

const defaultTokenTTL = 15 * time.Minute

// UserStore looks up stored accounts for credential verification.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// Recorder receives login and login-denial audit entries.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service is the credential verifier: it turns an email/password pair into
// a signed token carrying the (subject, role, org) triple.
type Service struct {
	users    UserStore
	recorder Recorder
	tokenTTL time.Duration
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL overrides the issued token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the verifier. The recorder is required: failed
// logins are denial events and must not be lost.
func NewService(users UserStore, recorder Recorder, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}
	svc := &Service{
		users:    users,
		recorder: recorder,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Login verifies credentials and issues a token. Invalid email and invalid
// password collapse into the same error so callers cannot probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (string, Principal, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", Principal{}, time.Time{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recordDeny(ctx, email, "unknown account")
			return "", Principal{}, time.Time{}, ErrInvalidCredentials
		}
		return "", Principal{}, time.Time{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		s.recordDeny(ctx, email, "password mismatch")
		return "", Principal{}, time.Time{}, ErrInvalidCredentials
	}

	principal := user.Principal()
	token, err := GenerateToken(principal, s.tokenTTL)
	if err != nil {
		return "", Principal{}, time.Time{}, err
	}
	expiresAt := s.now().UTC().Add(s.tokenTTL)

	_ = s.recorder.Record(ctx, audit.Entry{
		UserID:   user.ID,
		Action:   audit.ActionAuthLogin,
		Resource: "User",
		Allowed:  true,
		Details: map[string]any{
			"email":      user.Email,
			"role":       string(user.Role),
			"expires_at": expiresAt.Format(time.RFC3339),
		},
	})
	return token, principal, expiresAt, nil
}

func (s *Service) recordDeny(ctx context.Context, email, reason string) {
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:   audit.ActionAuthDeny,
		Resource: "User",
		Allowed:  false,
		Reason:   reason,
		Details:  map[string]any{"email": email},
	})
}
