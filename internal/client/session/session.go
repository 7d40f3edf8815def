// Package session tracks whether the client currently holds the admin
// privilege and which bearer token backs it.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/repositories/prefs"
	"github.com/dmitrijs2005/artwall/internal/common"
	"github.com/dmitrijs2005/artwall/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Authenticator exchanges the admin password for a bearer token.
type Authenticator interface {
	AdminLogin(ctx context.Context, password []byte) (string, error)
}

// Session holds the admin token. Privileged means a token is held; the
// server remains the authority on whether it is still valid.
type Session struct {
	repo prefs.Repository
	auth Authenticator
	log  logging.Logger

	mu    sync.RWMutex
	token string
}

func New(repo prefs.Repository, auth Authenticator, log logging.Logger) *Session {
	return &Session{repo: repo, auth: auth, log: log}
}

// Restore loads a token persisted by an earlier run.
func (s *Session) Restore(ctx context.Context) error {
	v, err := s.repo.Get(ctx, common.PrefAdminToken)
	if err != nil {
		return fmt.Errorf("load admin token: %w", err)
	}
	s.mu.Lock()
	s.token = strings.TrimSpace(string(v))
	s.mu.Unlock()
	return nil
}

// Login exchanges password for a token and persists it. On failure the
// session is left unprivileged in memory and in prefs and the error tells bad credentials
// (common.ErrBadCredentials) apart from an unreachable server
// (common.ErrNetwork) or a malformed answer (common.ErrServer).
func (s *Session) Login(ctx context.Context, password []byte) error {
	if len(strings.TrimSpace(string(password))) == 0 {
		return common.Invalid("password", "must not be empty")
	}

	token, err := s.auth.AdminLogin(ctx, password)
	if err != nil {
		if lerr := s.Logout(ctx); lerr != nil {
			s.log.Warn(ctx, "stale admin token not removed", "error", lerr)
		}
		return fmt.Errorf("admin login: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.repo.Set(ctx, common.PrefAdminToken, []byte(token)); err != nil {
		s.log.Warn(ctx, "admin token not persisted", "error", err)
	}
	s.log.Info(ctx, "admin session started")
	return nil
}

// Logout drops the privilege locally. The in-memory state is cleared even
// when removing the persisted token fails.
func (s *Session) Logout(ctx context.Context) error {
	s.clear()
	if err := s.repo.Delete(ctx, common.PrefAdminToken); err != nil {
		return fmt.Errorf("remove admin token: %w", err)
	}
	return nil
}

// Downgrade is Logout triggered by the server rejecting the token.
func (s *Session) Downgrade(ctx context.Context, reason error) {
	if !s.IsPrivileged() {
		return
	}
	s.log.Warn(ctx, "admin session revoked", "reason", reason)
	if err := s.Logout(ctx); err != nil {
		s.log.Error(ctx, "failed to clear admin token", "error", err)
	}
}

func (s *Session) IsPrivileged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Info describes the held token for display. Tokens that are not JWTs are
// reported as opaque.
type Info struct {
	Privileged bool
	Opaque     bool
	Subject    string
	ExpiresAt  time.Time
}

// Describe inspects the token without verifying it; the server does the
// verification.
func (s *Session) Describe() Info {
	tok := s.Token()
	if tok == "" {
		return Info{}
	}

	info := Info{Privileged: true}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		info.Opaque = true
		return info
	}
	info.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// Expired reports whether a JWT token carries an exp claim in the past.
// Opaque tokens never expire locally.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
