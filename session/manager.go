package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-school-gateway/authapi"
	"github.com/jrsteele09/go-school-gateway/internal/config"
	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/token"
	"github.com/jrsteele09/go-school-gateway/users"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the part of the backend the session lifecycle depends on.
type AuthAPI interface {
	Refresh(ctx context.Context, refreshToken string) (*authapi.TokenPair, error)
	Verify(ctx context.Context, accessToken string) error
	Logout(ctx context.Context, refreshToken string) error
}

// Options holds cookie lifetimes.
type Options struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	UserCookieTTL   time.Duration
	SchoolCookieTTL time.Duration
}

func OptionsFromConfig(cfg config.SessionConfig) Options {
	return Options{
		AccessTokenTTL:  cfg.GetAccessTokenTTL(),
		RefreshTokenTTL: cfg.GetRefreshTokenTTL(),
		UserCookieTTL:   cfg.GetUserCookieTTL(),
		SchoolCookieTTL: cfg.GetSchoolCookieTTL(),
	}
}

func (o Options) normalize() Options {
	if o.AccessTokenTTL <= 0 {
		o.AccessTokenTTL = 15 * time.Minute
	}
	if o.RefreshTokenTTL <= 0 {
		o.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if o.UserCookieTTL <= 0 {
		o.UserCookieTTL = 24 * time.Hour
	}
	if o.SchoolCookieTTL <= 0 {
		o.SchoolCookieTTL = 7 * 24 * time.Hour
	}
	return o
}

// State is the position of a session in its lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	AccessExpiredPendingRefresh
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case AccessExpiredPendingRefresh:
		return "access_expired"
	default:
		return "unauthenticated"
	}
}

// Manager owns the access/refresh token lifecycle of one browser session. It is the
// only writer of the session cookies.
//
// Two requests from the same browser may refresh concurrently. If the backend
// invalidates a refresh token on rotation, the loser gets ErrRefreshFailed and its
// cookies are cleared. Nothing here serialises those requests.
type Manager struct {
	store Store
	api   AuthAPI
	opts  Options
}

func NewManager(store Store, api AuthAPI, opts Options) *Manager {
	return &Manager{
		store: store,
		api:   api,
		opts:  opts.normalize(),
	}
}

// Create persists a fresh login. The user, access token and refresh token cookies
// are written as a unit: when any write fails every session cookie is cleared and
// ErrSessionCreate is returned.
func (m *Manager) Create(ctx context.Context, login *authapi.LoginResponse) error {
	if login == nil {
		return fmt.Errorf("%w: empty login response", apperrors.ErrSessionCreate)
	}
	if err := login.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionCreate, err)
	}
	userPayload, err := encodePayload(login.User)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionCreate, err)
	}

	// A new login starts without a cached school.
	if err := m.store.Delete(ctx, CookieSchool); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionCreate, err)
	}

	if err := m.writeAll(ctx,
		cookieWrite{CookieUser, userPayload, m.opts.UserCookieTTL},
		cookieWrite{CookieAccessToken, login.AccessToken, m.opts.AccessTokenTTL},
		cookieWrite{CookieRefreshToken, login.RefreshToken, m.opts.RefreshTokenTTL},
	); err != nil {
		m.clear(ctx)
		return fmt.Errorf("%w: %w", apperrors.ErrSessionCreate, err)
	}

	log.Debug().Str("user_id", login.User.ID).Str("role", string(login.User.Role)).Msg("session created")
	return nil
}

// Refresh exchanges the refresh token for a new pair and rotates both cookies.
// Every failure leaves the store cleared, never holding a mix of old and new tokens.
func (m *Manager) Refresh(ctx context.Context) (*authapi.TokenPair, error) {
	refreshToken, ok := m.store.Get(ctx, CookieRefreshToken)
	if !ok {
		m.clear(ctx)
		return nil, apperrors.ErrNoRefreshToken
	}

	if token.IsExpired(refreshToken) {
		m.clear(ctx)
		return nil, apperrors.ErrRefreshTokenExpired
	}

	pair, err := m.api.Refresh(ctx, refreshToken)
	if err == nil && pair != nil {
		err = pair.Validate()
	} else if err == nil {
		err = fmt.Errorf("empty refresh response")
	}
	if err != nil {
		m.clear(ctx)
		log.Warn().Err(err).Msg("token refresh rejected")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}

	if err := m.writeAll(ctx,
		cookieWrite{CookieAccessToken, pair.AccessToken, m.opts.AccessTokenTTL},
		cookieWrite{CookieRefreshToken, pair.RefreshToken, m.opts.RefreshTokenTTL},
	); err != nil {
		m.clear(ctx)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}

	if userPayload, ok := m.store.Get(ctx, CookieUser); ok {
		if err := m.store.Set(ctx, CookieUser, userPayload, m.opts.UserCookieTTL); err != nil {
			log.Warn().Err(err).Msg("failed to extend user cookie after refresh")
		}
	}

	log.Debug().Msg("session tokens rotated")
	return pair, nil
}

// GetValidAccessToken returns an unexpired access token, refreshing when the stored
// one has expired. It is the only place that decides whether to refresh.
// false means there is no usable session.
func (m *Manager) GetValidAccessToken(ctx context.Context) (string, bool) {
	accessToken, ok := m.store.Get(ctx, CookieAccessToken)
	if !ok {
		return "", false
	}
	if !token.IsExpired(accessToken) {
		return accessToken, true
	}

	pair, err := m.Refresh(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("access token could not be renewed")
		return "", false
	}
	return pair.AccessToken, true
}

// GetCurrentUser returns the session's user once the access token is known to be
// usable. A user cookie that fails schema validation ends the session.
func (m *Manager) GetCurrentUser(ctx context.Context) (*users.User, bool) {
	if _, ok := m.store.Get(ctx, CookieUser); !ok {
		return nil, false
	}
	if _, ok := m.GetValidAccessToken(ctx); !ok {
		return nil, false
	}

	raw, ok := m.store.Get(ctx, CookieUser)
	if !ok {
		return nil, false
	}
	u, err := decodeUser(raw)
	if err != nil {
		log.Warn().Err(err).Msg("discarding corrupt user cookie")
		m.clear(ctx)
		return nil, false
	}
	return u, true
}

// ValidateSession is the strict check used at trust boundaries: it additionally asks
// the backend to verify the access token. Any failure clears the session.
func (m *Manager) ValidateSession(ctx context.Context) (*users.User, error) {
	u, ok := m.GetCurrentUser(ctx)
	if !ok {
		m.clear(ctx)
		return nil, fmt.Errorf("%w: no current user", apperrors.ErrSessionInvalid)
	}

	accessToken, ok := m.GetValidAccessToken(ctx)
	if !ok {
		m.clear(ctx)
		return nil, fmt.Errorf("%w: no valid access token", apperrors.ErrSessionInvalid)
	}

	if err := m.api.Verify(ctx, accessToken); err != nil {
		m.clear(ctx)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSessionInvalid, err)
	}
	return u, nil
}

// Destroy logs the session out. The backend is told first, but its failure never
// stops the local cookies from being removed.
func (m *Manager) Destroy(ctx context.Context) error {
	if refreshToken, ok := m.store.Get(ctx, CookieRefreshToken); ok {
		if err := m.api.Logout(ctx, refreshToken); err != nil {
			log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}
	return m.clear(ctx)
}

// State reports where the session currently sits without touching the network.
func (m *Manager) State(ctx context.Context) State {
	accessToken, ok := m.store.Get(ctx, CookieAccessToken)
	if !ok {
		return Unauthenticated
	}
	if token.IsExpired(accessToken) {
		return AccessExpiredPendingRefresh
	}
	return Authenticated
}

// PeekUser decodes the user cookie without checking tokens. It is meant for routing
// decisions, not authorisation.
func (m *Manager) PeekUser(ctx context.Context) (*users.User, bool) {
	raw, ok := m.store.Get(ctx, CookieUser)
	if !ok {
		return nil, false
	}
	u, err := decodeUser(raw)
	if err != nil {
		return nil, false
	}
	return u, true
}

// CachedSchool returns the school stored in the school cookie. A corrupt cookie is
// dropped.
func (m *Manager) CachedSchool(ctx context.Context) (*schools.School, bool) {
	raw, ok := m.store.Get(ctx, CookieSchool)
	if !ok {
		return nil, false
	}
	s, err := decodeSchool(raw)
	if err != nil {
		log.Warn().Err(err).Msg("discarding corrupt school cookie")
		if err := m.store.Delete(ctx, CookieSchool); err != nil {
			log.Err(err).Msg("failed to delete school cookie")
		}
		return nil, false
	}
	return s, true
}

// CacheSchool stores the resolved school so later navigation can skip a lookup.
func (m *Manager) CacheSchool(ctx context.Context, school *schools.School) error {
	if school == nil {
		return fmt.Errorf("[Manager CacheSchool] nil school")
	}
	if err := school.Validate(); err != nil {
		return fmt.Errorf("[Manager CacheSchool] %w", err)
	}
	payload, err := encodePayload(school)
	if err != nil {
		return fmt.Errorf("[Manager CacheSchool] %w", err)
	}
	return m.store.Set(ctx, CookieSchool, payload, m.opts.SchoolCookieTTL)
}

type cookieWrite struct {
	name  string
	value string
	ttl   time.Duration
}

func (m *Manager) writeAll(ctx context.Context, writes ...cookieWrite) error {
	for _, w := range writes {
		if err := m.store.Set(ctx, w.name, w.value, w.ttl); err != nil {
			return fmt.Errorf("write %s: %w", w.name, err)
		}
	}
	return nil
}

// clear removes every session cookie, attempting all deletes even if some fail.
func (m *Manager) clear(ctx context.Context) error {
	var errs []error
	for _, name := range AllCookies {
		if err := m.store.Delete(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", name, err))
		}
	}
	err := apperrors.Join(errs...)
	if err != nil {
		log.Err(err).Msg("failed to clear session cookies")
	}
	return err
}
