package backend_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-school-gateway/backend"
	"github.com/jrsteele09/go-school-gateway/devbackend"
	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T) (*backend.Client, *devbackend.Server) {
	t.Helper()
	dev := devbackend.New("client-test-secret")
	require.NoError(t, devbackend.Seed(dev))
	srv := httptest.NewServer(dev)
	t.Cleanup(srv.Close)
	return backend.NewWithHTTPClient(srv.URL+"/", srv.Client()), dev
}

func TestClientAuth(t *testing.T) {
	ctx := context.Background()
	client, dev := setupTestFixture(t)

	login, err := client.Login(ctx, "head@greenwood.example.com", devbackend.DemoPassword)
	require.NoError(t, err)
	require.Equal(t, "usr-head", login.User.ID)

	require.NoError(t, client.Verify(ctx, login.AccessToken))

	pair, err := client.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	_, err = client.Refresh(ctx, login.RefreshToken)
	require.Error(t, err)
	var statusErr *backend.StatusError
	require.True(t, apperrors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Contains(t, statusErr.Error(), "already used")

	live := dev.LiveRefreshTokens()
	require.NoError(t, client.Logout(ctx, pair.RefreshToken))
	require.Equal(t, live-1, dev.LiveRefreshTokens())
}

func TestClientLoginRejected(t *testing.T) {
	client, _ := setupTestFixture(t)
	_, err := client.Login(context.Background(), "head@greenwood.example.com", "wrong")
	require.Error(t, err)

	var statusErr *backend.StatusError
	require.True(t, apperrors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Equal(t, "invalid email or password", statusErr.Message)
}

func TestClientSchools(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestFixture(t)

	school, err := client.GetBySubdomain(ctx, "greenwood")
	require.NoError(t, err)
	require.Equal(t, "sch-greenwood", school.ID)

	school, err = client.GetByID(ctx, "sch-oakridge")
	require.NoError(t, err)
	require.False(t, school.IsActive)

	_, err = client.GetBySubdomain(ctx, "missing")
	require.ErrorIs(t, err, schools.ErrNotFound)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := backend.NewWithHTTPClient(srv.URL, nil)

	_, err := client.GetBySubdomain(context.Background(), "greenwood")
	require.Error(t, err)
	require.NotErrorIs(t, err, schools.ErrNotFound)
}

func TestClientForward(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestFixture(t)
	login, err := client.Login(ctx, "admin@example.com", devbackend.DemoPassword)
	require.NoError(t, err)

	inbound := httptest.NewRequest(http.MethodGet, "/api/backend/schools?page=1", nil)
	resp, err := client.Forward(ctx, login.AccessToken, inbound, "schools")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Greenwood High")

	resp, err = client.Forward(ctx, "not-a-token", inbound, "/schools")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClientForwardStaysUnderBasePath(t *testing.T) {
	ctx := context.Background()
	var seenPaths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPaths = append(seenPaths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	client := backend.NewWithHTTPClient(srv.URL+"/v1", srv.Client())
	inbound := httptest.NewRequest(http.MethodGet, "/api/backend/ignored", nil)

	for _, escape := range []string{"../internal/admin", "schools/../../internal", "..", `..\internal`} {
		_, err := client.Forward(ctx, "token", inbound, escape)
		require.ErrorIs(t, err, backend.ErrInvalidPath, escape)
	}
	require.Empty(t, seenPaths)

	resp, err := client.Forward(ctx, "token", inbound, "schools//list/./recent")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Forward(ctx, "token", inbound, "reports?admin=true")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, []string{"/v1/schools/list/recent", "/v1/reports?admin=true"}, seenPaths)
}
