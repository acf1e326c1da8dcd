package session

import (
	"context"
	"time"
)

// Cookie names that make up a browser session.
const (
	CookieUser         = "user"
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	CookieSchool       = "school"
)

// AllCookies lists every cookie that is removed when a session ends.
var AllCookies = []string{CookieUser, CookieAccessToken, CookieRefreshToken, CookieSchool}

// Store is the per-browser key-value jar the session lives in.
// Reads must observe writes made earlier through the same Store.
type Store interface {
	Get(ctx context.Context, name string) (string, bool)
	Set(ctx context.Context, name, value string, ttl time.Duration) error
	Delete(ctx context.Context, name string) error
}
