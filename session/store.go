// Package session issues and checks the bearer tokens that gate the business
// endpoints.
//
// A token is live from Issue until Revoke or until the first Validate (or
// Sweep) that observes its expiry. Entries live in a sync.Map keyed by token;
// expiry removal uses CompareAndDelete, so concurrent validators of the same
// expired token all see it as invalid and none of them can remove a newer
// entry stored under the same key.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockroom/models"
	"stockroom/users"
)

// DefaultLifetime is how long a token stays valid after it is issued.
const DefaultLifetime = 24 * time.Hour

const maxTokenAttempts = 5

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenCollision     = errors.New("could not generate a unique session token")
)

// CredentialSource resolves a username to its stored credentials.
type CredentialSource interface {
	FindUser(ctx context.Context, username string) (models.User, error)
}

type entry struct {
	username  string
	expiresAt time.Time
}

// Store maps live tokens to usernames.
type Store struct {
	users    CredentialSource
	tokens   TokenSource
	lifetime time.Duration
	now      func() time.Time
	logger   *slog.Logger

	sessions sync.Map // token -> *entry
}

// Option configures a Store.
type Option func(*Store)

// WithLifetime overrides DefaultLifetime.
func WithLifetime(d time.Duration) Option {
	return func(s *Store) { s.lifetime = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTokenSource replaces the default OpaqueTokens.
func WithTokenSource(ts TokenSource) Option {
	return func(s *Store) { s.tokens = ts }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func New(source CredentialSource, opts ...Option) *Store {
	s := &Store{
		users:    source,
		tokens:   OpaqueTokens{},
		lifetime: DefaultLifetime,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue checks the password of username and returns a new token on success.
// On failure nothing is stored.
func (s *Store) Issue(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindUser(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user %q: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	e := &entry{username: user.Username, expiresAt: now.Add(s.lifetime)}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.tokens.NewToken(user.Username, now, e.expiresAt)
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		if _, taken := s.sessions.LoadOrStore(token, e); !taken {
			s.logger.Debug("session issued", "username", user.Username, "expires_at", e.expiresAt)
			return token, nil
		}
	}
	return "", ErrTokenCollision
}

// Validate returns the username bound to token. An expired token is removed
// and reported exactly like an unknown one.
func (s *Store) Validate(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	v, ok := s.sessions.Load(token)
	if !ok {
		return "", false
	}
	e := v.(*entry)
	if !s.now().Before(e.expiresAt) {
		if s.sessions.CompareAndDelete(token, v) {
			s.logger.Debug("session expired", "username", e.username)
		}
		return "", false
	}
	return e.username, true
}

// Revoke forgets token. Unknown tokens are ignored.
func (s *Store) Revoke(token string) {
	if _, ok := s.sessions.LoadAndDelete(token); ok {
		s.logger.Debug("session revoked")
	}
}

// Sweep removes every expired entry and returns how many it removed.
func (s *Store) Sweep() int {
	now := s.now()
	removed := 0
	s.sessions.Range(func(key, value any) bool {
		if !now.Before(value.(*entry).expiresAt) && s.sessions.CompareAndDelete(key, value) {
			removed++
		}
		return true
	})
	return removed
}

// Run calls Sweep every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired sessions swept", "count", n)
			}
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	n := 0
	s.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
