// Package devbackend is an in-memory implementation of the school-management REST API.
// It backs local development and the integration tests of the gateway; it is not a
// production backend.
package devbackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-school-gateway/authapi"
	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/jrsteele09/go-school-gateway/users"
	"github.com/rs/zerolog/log"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type claims struct {
	Type     string `json:"typ"`
	Role     string `json:"role,omitempty"`
	SchoolID string `json:"schoolId,omitempty"`
	jwtlib.RegisteredClaims
}

type account struct {
	user         users.User
	passwordHash string
}

// Server serves the backend REST contract from memory.
// Refresh tokens rotate strictly: a refresh token is dead once it has been used.
type Server struct {
	mux        *http.ServeMux
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	lock          sync.RWMutex
	accounts      map[string]*account        // by lower-case email
	schools       map[string]*schools.School // by id
	refreshTokens map[string]string          // live refresh token id -> user id
}

type Option func(*Server)

func WithTTLs(access, refresh time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = access
		s.refreshTTL = refresh
	}
}

// WithClock replaces the clock used to stamp and validate tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(secret string, opts ...Option) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		secret:        []byte(secret),
		accessTTL:     15 * time.Minute,
		refreshTTL:    30 * 24 * time.Hour,
		now:           time.Now,
		accounts:      make(map[string]*account),
		schools:       make(map[string]*schools.School),
		refreshTokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST /auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /auth/verify", s.handleVerify)
	s.mux.HandleFunc("POST /auth/logout", s.handleLogout)
	s.mux.HandleFunc("GET /schools", s.handleListSchools)
	s.mux.HandleFunc("GET /schools/by-subdomain/{subdomain}", s.handleSchoolBySubdomain)
	s.mux.HandleFunc("GET /schools/{id}", s.handleSchoolByID)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AddUser registers a user with a bcrypt-hashed password.
func (s *Server) AddUser(u users.User, password string) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := u.Validate(); err != nil {
		return fmt.Errorf("[devbackend AddUser] %w", err)
	}
	hash, err := users.HashPassword(password)
	if err != nil {
		return fmt.Errorf("[devbackend AddUser] hash password: %w", err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.accounts[strings.ToLower(u.Email)] = &account{user: u, passwordHash: hash}
	return nil
}

func (s *Server) AddSchool(school schools.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	if err := school.Validate(); err != nil {
		return fmt.Errorf("[devbackend AddSchool] %w", err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.schools[school.ID] = &school
	return nil
}

func (s *Server) SetSchoolActive(schoolID string, active bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if school, ok := s.schools[schoolID]; ok {
		school.IsActive = active
	}
}

// IssueTokens mints a fresh pair for a registered user.
func (s *Server) IssueTokens(email string) (*authapi.TokenPair, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	acc, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return s.issueLocked(acc.user)
}

// LiveRefreshTokens reports how many refresh tokens can still be exchanged.
func (s *Server) LiveRefreshTokens() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.refreshTokens)
}

func (s *Server) issueLocked(u users.User) (*authapi.TokenPair, error) {
	access, _, err := s.sign(u, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshID, err := s.sign(u, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	s.refreshTokens[refreshID] = u.ID
	return &authapi.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Server) sign(u users.User, tokenType string, ttl time.Duration) (string, string, error) {
	now := s.now()
	id := uuid.NewString()
	c := claims{
		Type:     tokenType,
		Role:     string(u.Role),
		SchoolID: u.SchoolID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   u.ID,
			ID:        id,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, id, nil
}

func (s *Server) parse(raw, tokenType string, opts ...jwtlib.ParserOption) (*claims, error) {
	opts = append(opts, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(s.now))
	var c claims
	if _, err := jwtlib.ParseWithClaims(raw, &c, func(*jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	if c.Type != tokenType {
		return nil, fmt.Errorf("expected %s token, got %q", tokenType, c.Type)
	}
	return &c, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || !users.CheckPasswordHash(req.Password, acc.passwordHash) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	pair, err := s.issueLocked(acc.user)
	if err != nil {
		log.Err(err).Msg("devbackend: failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, authapi.LoginResponse{
		User:         acc.user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authapi.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}
	c, err := s.parse(req.RefreshToken, tokenTypeRefresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	userID, live := s.refreshTokens[c.ID]
	if !live || userID != c.Subject {
		writeError(w, http.StatusUnauthorized, "refresh token already used or revoked")
		return
	}
	delete(s.refreshTokens, c.ID)

	acc := s.accountByIDLocked(userID)
	if acc == nil {
		writeError(w, http.StatusUnauthorized, "user no longer exists")
		return
	}
	pair, err := s.issueLocked(acc.user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	c, ok := s.bearerClaims(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid access token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "userId": c.Subject})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req authapi.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if c, err := s.parse(req.RefreshToken, tokenTypeRefresh, jwtlib.WithoutClaimsValidation()); err == nil {
			s.lock.Lock()
			delete(s.refreshTokens, c.ID)
			s.lock.Unlock()
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	c, ok := s.bearerClaims(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid access token")
		return
	}

	s.lock.RLock()
	list := make([]schools.School, 0, len(s.schools))
	for _, school := range s.schools {
		if c.Role == string(users.RoleSuperAdmin) || school.ID == c.SchoolID {
			list = append(list, *school)
		}
	}
	s.lock.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSchoolBySubdomain(w http.ResponseWriter, r *http.Request) {
	subdomain := r.PathValue("subdomain")
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, school := range s.schools {
		if strings.EqualFold(school.Subdomain, subdomain) {
			writeJSON(w, http.StatusOK, school)
			return
		}
	}
	writeError(w, http.StatusNotFound, "school not found")
}

func (s *Server) handleSchoolByID(w http.ResponseWriter, r *http.Request) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	school, ok := s.schools[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "school not found")
		return
	}
	writeJSON(w, http.StatusOK, school)
}

func (s *Server) bearerClaims(r *http.Request) (*claims, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, false
	}
	c, err := s.parse(parts[1], tokenTypeAccess)
	if err != nil {
		return nil, false
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	return c, s.accountByIDLocked(c.Subject) != nil
}

func (s *Server) accountByIDLocked(userID string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == userID {
			return acc
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("devbackend: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, authapi.ErrorResponse{Message: message})
}
