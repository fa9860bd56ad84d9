package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockroom/models"
	"stockroom/users"
	"stockroom/utils"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()

	dir := users.NewMemoryDirectory(users.WithCost(bcrypt.MinCost))
	if err := users.SeedDefaults(context.Background(), dir); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(dir, opts...), clock
}

func issue(t *testing.T, s *Store, username, password string) string {
	t.Helper()
	token, err := s.Issue(context.Background(), username, password)
	if err != nil {
		t.Fatalf("issue %s: %v", username, err)
	}
	return token
}

func TestIssueValidateRevoke(t *testing.T) {
	s, _ := newTestStore(t)

	token := issue(t, s, "admin", "admin123")
	if token == "" {
		t.Fatal("empty token")
	}

	username, ok := s.Validate(token)
	if !ok || username != "admin" {
		t.Fatalf("Validate = %q, %v; want admin, true", username, ok)
	}

	s.Revoke(token)
	if _, ok := s.Validate(token); ok {
		t.Fatal("token still valid after revoke")
	}
}

func TestIssueWrongPassword(t *testing.T) {
	s, _ := newTestStore(t)
	good := issue(t, s, "user", "user123")
	before := s.Len()

	token, err := s.Issue(context.Background(), "admin", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) || token != "" {
		t.Fatalf("Issue = %q, %v; want ErrInvalidCredentials", token, err)
	}
	if s.Len() != before {
		t.Fatalf("failed login changed the store: %d -> %d entries", before, s.Len())
	}

	// A guess shaped like a real token still fails.
	guess := good[:len(good)-1] + "0"
	if guess == good {
		guess = good[:len(good)-1] + "1"
	}
	if _, ok := s.Validate(guess); ok {
		t.Fatal("guessed token validated")
	}
}

func TestIssueUnknownUser(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Issue(context.Background(), "ghost", "admin123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store has %d entries, want 0", s.Len())
	}
}

type failingSource struct{ err error }

func (f failingSource) FindUser(context.Context, string) (models.User, error) {
	return models.User{}, f.err
}

func TestIssueDirectoryFailure(t *testing.T) {
	boom := errors.New("db down")
	s := New(failingSource{err: boom})

	_, err := s.Issue(context.Background(), "admin", "admin123")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped directory error, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("directory failure must not look like bad credentials")
	}
}

func TestValidateEmptyAndUnknown(t *testing.T) {
	s, _ := newTestStore(t)

	for _, token := range []string{"", "token_nope", "Bearer x"} {
		if u, ok := s.Validate(token); ok || u != "" {
			t.Fatalf("Validate(%q) = %q, %v", token, u, ok)
		}
	}
}

func TestRevokeUnknownIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	token := issue(t, s, "admin", "admin123")

	s.Revoke("does-not-exist")
	s.Revoke("")

	if _, ok := s.Validate(token); !ok {
		t.Fatal("revoking another token affected a live one")
	}
}

func TestExpiry(t *testing.T) {
	s, clock := newTestStore(t)
	token := issue(t, s, "admin", "admin123")

	clock.Advance(DefaultLifetime - time.Nanosecond)
	if _, ok := s.Validate(token); !ok {
		t.Fatal("token expired early")
	}

	// Expiry instant itself is already invalid.
	clock.Advance(time.Nanosecond)
	if _, ok := s.Validate(token); ok {
		t.Fatal("token valid at its expiry instant")
	}
	if s.Len() != 0 {
		t.Fatalf("expired token not removed, %d entries left", s.Len())
	}

	// Second attempt behaves like a token that never existed.
	if u, ok := s.Validate(token); ok || u != "" {
		t.Fatalf("second validate = %q, %v", u, ok)
	}
}

func TestLifetimeIsNotSliding(t *testing.T) {
	s, clock := newTestStore(t, WithLifetime(time.Hour))
	token := issue(t, s, "admin", "admin123")

	for i := 0; i < 3; i++ {
		clock.Advance(20 * time.Minute)
		s.Validate(token)
	}
	if _, ok := s.Validate(token); ok {
		t.Fatal("validation extended the session lifetime")
	}
}

func TestTokensAreUnique(t *testing.T) {
	s, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token := issue(t, s, "admin", "admin123")
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
	if s.Len() != 50 {
		t.Fatalf("Len = %d, want 50", s.Len())
	}
}

func TestOpaqueTokenDoesNotEmbedUsername(t *testing.T) {
	s, _ := newTestStore(t)
	token := issue(t, s, "admin", "admin123")

	if !strings.HasPrefix(token, tokenPrefix) {
		t.Fatalf("token %q lacks prefix", token)
	}
	if strings.Contains(token, "admin") {
		t.Fatalf("token %q embeds the username", token)
	}
}

type fixedTokens struct{ token string }

func (f fixedTokens) NewToken(string, time.Time, time.Time) (string, error) {
	return f.token, nil
}

func TestIssueCollision(t *testing.T) {
	s, _ := newTestStore(t, WithTokenSource(fixedTokens{token: "same"}))

	if token := issue(t, s, "admin", "admin123"); token != "same" {
		t.Fatalf("token = %q", token)
	}

	_, err := s.Issue(context.Background(), "user", "user123")
	if !errors.Is(err, ErrTokenCollision) {
		t.Fatalf("expected ErrTokenCollision, got %v", err)
	}
	if u, _ := s.Validate("same"); u != "admin" {
		t.Fatalf("collision overwrote the live session, owner = %q", u)
	}
}

func TestSignedTokens(t *testing.T) {
	secret := []byte("signing-secret")
	s := New(seededDirectory(t), WithTokenSource(SignedTokens{Secret: secret}))

	token := issue(t, s, "admin", "admin123")

	claims, err := utils.ParseSessionJWT(secret, token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != "admin" || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}
	if u, ok := s.Validate(token); !ok || u != "admin" {
		t.Fatalf("Validate = %q, %v", u, ok)
	}

	s.Revoke(token)
	if _, ok := s.Validate(token); ok {
		t.Fatal("a correctly signed token must still fail after revoke")
	}
}

func TestSignedTokensRequireSecret(t *testing.T) {
	s := New(seededDirectory(t), WithTokenSource(SignedTokens{}))

	if _, err := s.Issue(context.Background(), "admin", "admin123"); err == nil {
		t.Fatal("expected error without a secret")
	}
	if s.Len() != 0 {
		t.Fatal("failed issue stored an entry")
	}
}

func seededDirectory(t *testing.T) *users.MemoryDirectory {
	t.Helper()
	dir := users.NewMemoryDirectory(users.WithCost(bcrypt.MinCost))
	if err := users.SeedDefaults(context.Background(), dir); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return dir
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(t, WithLifetime(time.Hour))
	old := issue(t, s, "admin", "admin123")

	clock.Advance(30 * time.Minute)
	fresh := issue(t, s, "user", "user123")

	clock.Advance(30 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, ok := s.Validate(old); ok {
		t.Fatal("swept token still valid")
	}
	if u, ok := s.Validate(fresh); !ok || u != "user" {
		t.Fatalf("fresh token lost: %q, %v", u, ok)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	s, clock := newTestStore(t, WithLifetime(time.Minute))
	issue(t, s, "admin", "admin123")
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if s.Len() != 0 {
		t.Fatalf("sweeper left %d entries", s.Len())
	}
}
