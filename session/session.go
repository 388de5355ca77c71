// Package session gates the admin dashboard. A session is valid only while
// both its age and its idle time stay under the configured ceilings; any
// tracked activity refreshes the idle clock, and hiding the tab starts a
// grace timer that logs out if the tab is still hidden when it fires.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mawlid1431/Arts/config"
	"github.com/mawlid1431/Arts/models"
	"github.com/mawlid1431/Arts/timers"

	"go.uber.org/zap"
)

type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// ErrLoginFailed is the generic fallback when the auth call itself fails; a
// rejected credential surfaces the server's message verbatim via AuthError.
var ErrLoginFailed = errors.New("login failed, please try again")

// AuthError carries the server-provided rejection message.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Record is the persisted session: flag plus login and last-activity times.
type Record struct {
	Authenticated bool      `json:"authenticated"`
	LoginAt       time.Time `json:"login_at"`
	LastActivity  time.Time `json:"last_activity"`
}

// Store persists the session record. Load returns (nil, nil) when no session
// exists.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// Authenticator verifies admin credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// Guard is the admin session state machine: loading -> authenticated or
// unauthenticated, with forced logout on expiry, inactivity, or tab-hide.
type Guard struct {
	store   Store
	auth    Authenticator
	profile config.SessionProfile
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	state  State
	user   models.User
	hidden bool

	idleTimer *timers.Resettable
	hideTimer *timers.Resettable
}

func NewGuard(store Store, auth Authenticator, profile config.SessionProfile, logger *zap.Logger) *Guard {
	g := &Guard{
		store:   store,
		auth:    auth,
		profile: profile,
		logger:  logger,
		now:     time.Now,
		state:   StateLoading,
	}
	g.idleTimer = timers.NewResettable(profile.MaxIdle, func() { g.forceLogout("inactivity") })
	g.hideTimer = timers.NewResettable(profile.HiddenGrace, func() { g.hiddenExpired() })
	return g
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) User() models.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Check resolves the initial loading state from the persisted record. A
// missing record, an expired session age, or an exceeded idle ceiling all
// resolve to unauthenticated; otherwise the session continues and the
// last-activity timestamp is refreshed.
func (g *Guard) Check(ctx context.Context) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := g.store.Load(ctx)
	if err != nil {
		g.logger.Warn("Failed to load session", zap.Error(err))
		g.state = StateUnauthenticated
		return g.state
	}
	if rec == nil || !rec.Authenticated {
		g.state = StateUnauthenticated
		return g.state
	}

	now := g.now()
	if now.Sub(rec.LoginAt) > g.profile.MaxAge {
		g.logger.Info("Session expired", zap.Duration("age", now.Sub(rec.LoginAt)))
		g.clearLocked(ctx)
		return g.state
	}
	if !rec.LastActivity.IsZero() && now.Sub(rec.LastActivity) > g.profile.MaxIdle {
		g.logger.Info("Session idle too long", zap.Duration("idle", now.Sub(rec.LastActivity)))
		g.clearLocked(ctx)
		return g.state
	}

	rec.LastActivity = now
	if err := g.store.Save(ctx, *rec); err != nil {
		g.logger.Warn("Failed to refresh session activity", zap.Error(err))
	}
	g.state = StateAuthenticated
	g.idleTimer.Reset()
	return g.state
}

// Login verifies credentials through the Authenticator. A credential
// rejection is surfaced verbatim as *AuthError; a transport failure maps to
// the generic ErrLoginFailed.
func (g *Guard) Login(ctx context.Context, email, password string) error {
	user, err := g.auth.Authenticate(ctx, email, password)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		g.logger.Error("Auth request failed", zap.Error(err))
		return ErrLoginFailed
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	rec := Record{Authenticated: true, LoginAt: now, LastActivity: now}
	if err := g.store.Save(ctx, rec); err != nil {
		g.logger.Warn("Failed to persist session", zap.Error(err))
	}
	g.state = StateAuthenticated
	g.user = user
	g.idleTimer.Reset()
	g.logger.Info("Admin logged in", zap.String("email", user.Email))
	return nil
}

// Touch records a tracked activity event: it resets the inactivity timer and
// refreshes the persisted last-activity timestamp.
func (g *Guard) Touch(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated {
		return
	}
	g.idleTimer.Reset()

	rec, err := g.store.Load(ctx)
	if err != nil || rec == nil || !rec.Authenticated {
		return
	}
	rec.LastActivity = g.now()
	if err := g.store.Save(ctx, *rec); err != nil {
		g.logger.Warn("Failed to persist activity", zap.Error(err))
	}
}

// Hidden starts the tab-hide grace timer. If the tab is still hidden when it
// fires, the session is cleared.
func (g *Guard) Hidden() {
	g.mu.Lock()
	g.hidden = true
	g.mu.Unlock()
	g.hideTimer.Reset()
}

// Visible cancels a pending tab-hide logout.
func (g *Guard) Visible() {
	g.mu.Lock()
	g.hidden = false
	g.mu.Unlock()
	g.hideTimer.Stop()
}

func (g *Guard) hiddenExpired() {
	g.mu.Lock()
	stillHidden := g.hidden
	g.mu.Unlock()
	if stillHidden {
		g.forceLogout("tab hidden")
	}
}

// Logout is the explicit logout action.
func (g *Guard) Logout(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked(ctx)
	g.logger.Info("Admin logged out")
}

func (g *Guard) forceLogout(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated {
		return
	}
	g.clearLocked(context.Background())
	g.logger.Info("Admin session force-cleared", zap.String("reason", reason))
}

// Close stops the guard's timers. Best-effort storage clear, mirroring the
// fire-and-forget clear on tab close.
func (g *Guard) Close(ctx context.Context) {
	g.idleTimer.Stop()
	g.hideTimer.Stop()
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Warn("Failed to clear session on close", zap.Error(err))
	}
}

func (g *Guard) clearLocked(ctx context.Context) {
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Warn("Failed to clear session", zap.Error(err))
	}
	g.state = StateUnauthenticated
	g.user = models.User{}
	g.idleTimer.Stop()
	g.hideTimer.Stop()
}
