package server

import (
	"io"
	"net/http"

	"github.com/jrsteele09/go-school-gateway/backend"
	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/rs/zerolog"
)

// Response headers copied back from the backend
var proxiedResponseHeaders = []string{"Content-Type", "Cache-Control", "ETag", "Last-Modified", "Location"}

// BackendProxyHandler forwards /api/backend/{path...} to the backend with the
// session's access token, refreshing it first when needed.
func (s *Server) BackendProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		accessToken, ok := s.sessionFor(w, r).GetValidAccessToken(ctx)
		if !ok {
			writeJSONError(w, r, http.StatusUnauthorized, "not signed in")
			return
		}

		resp, err := s.backend.Forward(ctx, accessToken, r, r.PathValue("path"))
		if apperrors.Is(err, backend.ErrInvalidPath) {
			logger.Warn().Err(err).Msg("Rejected backend proxy path")
			writeJSONError(w, r, http.StatusBadRequest, "invalid path")
			return
		}
		if err != nil {
			logger.Err(err).Msg("Backend proxy request failed")
			writeJSONError(w, r, http.StatusBadGateway, "backend unavailable")
			return
		}
		defer resp.Body.Close()

		for _, h := range proxiedResponseHeaders {
			if v := resp.Header.Get(h); v != "" {
				w.Header().Set(h, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			logger.Warn().Err(err).Msg("Backend proxy response copy interrupted")
		}
	}
}
