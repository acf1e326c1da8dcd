package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	pathpkg "path"
	"strings"
	"time"

	"github.com/jrsteele09/go-school-gateway/authapi"
	"github.com/jrsteele09/go-school-gateway/internal/config"
	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/session"
	"github.com/rs/zerolog/log"
)

// Backend REST paths
const (
	PathLogin             = "/auth/login"
	PathRefresh           = "/auth/refresh"
	PathVerify            = "/auth/verify"
	PathLogout            = "/auth/logout"
	PathSchoolBySubdomain = "/schools/by-subdomain/"
	PathSchoolByID        = "/schools/"
)

const maxErrorBody = 4 << 10

var (
	_ session.AuthAPI = (*Client)(nil)
	_ schools.Repo    = (*Client)(nil)
)

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the remote school-management API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg config.BackendConfig) *Client {
	return NewWithHTTPClient(cfg.GetBackendURL(), &http.Client{Timeout: cfg.GetBackendTimeout()})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
	var resp authapi.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, PathLogin, "", authapi.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("[backend Login] %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("[backend Login] %w", err)
	}
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*authapi.TokenPair, error) {
	var pair authapi.TokenPair
	if err := c.doJSON(ctx, http.MethodPost, PathRefresh, "", authapi.RefreshRequest{RefreshToken: refreshToken}, &pair); err != nil {
		return nil, fmt.Errorf("[backend Refresh] %w", err)
	}
	return &pair, nil
}

func (c *Client) Verify(ctx context.Context, accessToken string) error {
	if err := c.doJSON(ctx, http.MethodGet, PathVerify, accessToken, nil, nil); err != nil {
		return fmt.Errorf("[backend Verify] %w", err)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if err := c.doJSON(ctx, http.MethodPost, PathLogout, "", authapi.RefreshRequest{RefreshToken: refreshToken}, nil); err != nil {
		return fmt.Errorf("[backend Logout] %w", err)
	}
	return nil
}

func (c *Client) GetBySubdomain(ctx context.Context, subdomain string) (*schools.School, error) {
	return c.getSchool(ctx, PathSchoolBySubdomain+url.PathEscape(subdomain))
}

func (c *Client) GetByID(ctx context.Context, schoolID string) (*schools.School, error) {
	return c.getSchool(ctx, PathSchoolByID+url.PathEscape(schoolID))
}

func (c *Client) getSchool(ctx context.Context, path string) (*schools.School, error) {
	var school schools.School
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &school); err != nil {
		var statusErr *StatusError
		if apperrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, schools.ErrNotFound
		}
		return nil, fmt.Errorf("[backend getSchool] %w", err)
	}
	if err := school.Validate(); err != nil {
		return nil, fmt.Errorf("[backend getSchool] %w", err)
	}
	return &school, nil
}

// ErrInvalidPath is returned by Forward for paths that would step outside the backend base URL.
var ErrInvalidPath = errors.New("invalid backend path")

// Forward replays an inbound request against the backend with the given bearer
// token. path is relative to the backend base URL and may not contain ".." segments.
// The caller owns the returned response body.
func (c *Client) Forward(ctx context.Context, accessToken string, r *http.Request, path string) (*http.Response, error) {
	rel, err := cleanRelativePath(path)
	if err != nil {
		return nil, fmt.Errorf("[backend Forward] %q: %w", path, err)
	}
	target, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("[backend Forward] base url: %w", err)
	}
	target.Path = strings.TrimRight(target.Path, "/") + rel
	target.RawPath = ""
	target.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), r.Body)
	if err != nil {
		return nil, fmt.Errorf("[backend Forward] new request: %w", err)
	}
	req.ContentLength = r.ContentLength
	for _, h := range []string{"Content-Type", "Accept", "Accept-Language"} {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[backend Forward] %s %s: %w", r.Method, rel, err)
	}
	return resp, nil
}

// cleanRelativePath returns p as a rooted, cleaned path that stays under the base URL.
func cleanRelativePath(p string) (string, error) {
	for _, segment := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if segment == ".." {
			return "", ErrInvalidPath
		}
	}
	return pathpkg.Clean("/" + p), nil
}

func (c *Client) doJSON(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func readStatusError(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body authapi.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		statusErr.Message = body.Message
		if statusErr.Message == "" {
			statusErr.Message = body.Error
		}
	} else {
		statusErr.Message = strings.TrimSpace(string(data))
	}
	return statusErr
}
