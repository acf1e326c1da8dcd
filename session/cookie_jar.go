package session

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	Domain   string // set to share the session between the root domain and school subdomains
	Secure   bool
	SameSite http.SameSite
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteStrictMode
	}
	return o
}

// CookieJar is a Store backed by the cookies of one HTTP exchange. Values written
// during the request shadow the cookies the browser sent.
// A CookieJar belongs to a single request and is not safe for concurrent use.
type CookieJar struct {
	w       http.ResponseWriter
	r       *http.Request
	opts    CookieOptions
	pending map[string]*string // nil value marks a deleted cookie
}

var _ Store = (*CookieJar)(nil)

func NewCookieJar(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieJar {
	return &CookieJar{
		w:       w,
		r:       r,
		opts:    opts.normalize(),
		pending: make(map[string]*string),
	}
}

func (j *CookieJar) Get(_ context.Context, name string) (string, bool) {
	if v, ok := j.pending[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (j *CookieJar) Set(_ context.Context, name, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("[CookieJar Set] cookie %s: ttl must be positive", name)
	}
	cookie := j.cookie(name, value)
	cookie.MaxAge = int(ttl.Seconds())
	cookie.Expires = time.Now().Add(ttl)
	if err := cookie.Valid(); err != nil {
		return fmt.Errorf("[CookieJar Set] cookie %s: %w", name, err)
	}
	http.SetCookie(j.w, cookie)
	j.pending[name] = &value
	return nil
}

func (j *CookieJar) Delete(_ context.Context, name string) error {
	cookie := j.cookie(name, "")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(j.w, cookie)
	j.pending[name] = nil
	return nil
}

func (j *CookieJar) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.opts.Path,
		Domain:   j.opts.Domain,
		HttpOnly: true,
		Secure:   j.opts.Secure,
		SameSite: j.opts.SameSite,
	}
}
