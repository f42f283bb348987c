// Package services contains the application services of the prodauth CLI:
// the session manager, the verification lifecycle and the administrative
// collection mirrors. Services depend on narrow API interfaces that
// client.HTTPClient satisfies, so tests can substitute fakes.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/client"
	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/client/repositories/token"
	"github.com/dmitrijs2005/prodauth/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// AuthAPI is the part of the backend the session manager talks to.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*models.User, error)
	Refresh(ctx context.Context, token string) (*models.RefreshResponse, error)
}

// State is the authentication state of a session.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// SessionManager owns the access token and the current user.
//
// Token and user always change together under one lock and the lock is never
// held across network calls. Every transition bumps a generation counter;
// Initialize and Refresh commit their result only when the generation they
// started from is still current.
type SessionManager struct {
	api   AuthAPI
	store token.Store
	log   logging.Logger
	now   func() time.Time

	mu    sync.RWMutex
	token string
	user  *models.User
	gen   uint64

	// persistMu orders writes to store.
	persistMu sync.Mutex
}

var _ client.Authenticator = (*SessionManager)(nil)

func NewSessionManager(api AuthAPI, store token.Store, log logging.Logger) *SessionManager {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionManager{api: api, store: store, log: log.With("component", "session"), now: time.Now}
}

// Login authenticates with the server. On failure the current session is
// left as it was. A failure to persist the token is logged, the login still
// succeeds.
func (m *SessionManager) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, client.NewValidationError("Username and password are required.")
	}

	resp, err := m.api.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	user := resp.User
	m.mu.Lock()
	m.token = resp.AccessToken
	m.user = &user
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	m.persist(ctx, gen, resp.AccessToken)
	m.log.Info(ctx, "logged in", "user", user.Username, "role", user.Role)
	return resp, nil
}

// Logout tells the server (best effort) and then drops the session locally
// and from storage. It never fails.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.RLock()
	tok := m.token
	m.mu.RUnlock()

	if tok != "" {
		if err := m.api.Logout(ctx, tok); err != nil {
			m.log.Warn(ctx, "logout notification failed", "err", err)
		}
	}

	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	m.wipe(ctx, gen)
}

// Initialize restores the session saved by a previous run. Failures leave the
// session anonymous and are only logged. A token the server rejects is also
// removed from storage; on network errors it is kept for the next start.
func (m *SessionManager) Initialize(ctx context.Context) {
	tok, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn(ctx, "cannot load saved token", "err", err)
		return
	}
	if tok == "" {
		return
	}

	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	user, err := m.api.Me(ctx, tok)
	if err != nil {
		m.log.Info(ctx, "saved session not restored", "err", err)
		if errors.Is(err, client.ErrUnauthorized) {
			m.wipe(ctx, gen)
		}
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.token = tok
	m.user = user
	m.gen++
}

// Refresh exchanges the current token for a new one. On failure the session
// is cleared and the error returned. ErrSuperseded means the session changed
// while the request was in flight and the result was dropped.
func (m *SessionManager) Refresh(ctx context.Context) error {
	m.mu.RLock()
	tok, gen := m.token, m.gen
	m.mu.RUnlock()

	if tok == "" {
		return &client.Error{Kind: client.KindUnauthorized, Message: "Not logged in."}
	}

	resp, err := m.api.Refresh(ctx, tok)
	if err != nil {
		m.mu.Lock()
		cleared := m.gen == gen
		if cleared {
			m.token = ""
			m.user = nil
			m.gen++
			gen = m.gen
		}
		m.mu.Unlock()

		if cleared {
			m.wipe(ctx, gen)
		}
		return fmt.Errorf("refresh: %w", err)
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return ErrSuperseded
	}
	m.token = resp.AccessToken
	m.gen++
	gen = m.gen
	m.mu.Unlock()

	m.persist(ctx, gen, resp.AccessToken)
	m.log.Debug(ctx, "token refreshed")
	return nil
}

// RefreshIfExpiring refreshes when the token expires within d. It reports
// whether a refresh was attempted.
func (m *SessionManager) RefreshIfExpiring(ctx context.Context, d time.Duration) (bool, error) {
	exp, ok := m.ExpiresAt()
	if !ok || exp.Sub(m.now()) > d {
		return false, nil
	}
	return true, m.Refresh(ctx)
}

// Expire drops the session if token is still the current one. The transport
// calls it on HTTP 401.
func (m *SessionManager) Expire(ctx context.Context, token string) {
	m.mu.Lock()
	if token == "" || m.token != token {
		m.mu.Unlock()
		return
	}
	m.token = ""
	m.user = nil
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	m.log.Info(ctx, "session expired")
	m.wipe(ctx, gen)
}

func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the current user, nil when anonymous.
func (m *SessionManager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *SessionManager) Snapshot() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := models.Session{Token: m.token}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

func (m *SessionManager) State() State {
	if m.IsAuthenticated() {
		return StateAuthenticated
	}
	return StateAnonymous
}

// ExpiresAt reads the exp claim of a JWT token without verifying it. Opaque
// tokens and tokens without exp report false.
func (m *SessionManager) ExpiresAt() (time.Time, bool) {
	tok := m.Token()
	if tok == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// persist saves tok unless another transition happened after gen.
func (m *SessionManager) persist(ctx context.Context, gen uint64, tok string) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if !m.isGeneration(gen) {
		return
	}
	if err := m.store.Save(ctx, tok); err != nil {
		m.log.Warn(ctx, "cannot persist token", "err", err)
	}
}

// wipe clears storage unless another transition happened after gen.
func (m *SessionManager) wipe(ctx context.Context, gen uint64) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if !m.isGeneration(gen) {
		return
	}
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn(ctx, "cannot clear saved token", "err", err)
	}
}

func (m *SessionManager) isGeneration(gen uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen == gen
}
