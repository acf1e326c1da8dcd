package tenants_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/schools"
	schoolrepofakes "github.com/jrsteele09/go-school-gateway/schools/repofakes"
	"github.com/jrsteele09/go-school-gateway/session"
	sessionstorefakes "github.com/jrsteele09/go-school-gateway/session/storefakes"
	"github.com/jrsteele09/go-school-gateway/tenants"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	repo     *schoolrepofakes.FakeSchoolRepo
	store    *sessionstorefakes.MemoryStore
	manager  *session.Manager
	resolver *tenants.Resolver
}

func setupResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	repo := schoolrepofakes.NewFakeSchoolRepo()
	repo.Upsert(&schools.School{ID: "s-1", Name: "Riverside High", Subdomain: "riverside", IsActive: true})
	repo.Upsert(&schools.School{ID: "s-2", Name: "Hillcrest Academy", Subdomain: "hillcrest", IsActive: true})
	repo.Upsert(&schools.School{ID: "s-3", Name: "Closed School", Subdomain: "closed", IsActive: false})

	store := sessionstorefakes.NewMemoryStore()
	manager := session.NewManager(store, nil, session.Options{})
	domains := tenants.Domains{Root: "example.com", Reserved: []string{"www", "app"}}

	return &resolverFixture{
		repo:     repo,
		store:    store,
		manager:  manager,
		resolver: tenants.NewResolver(domains, repo, manager),
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("root domain needs no lookup", func(t *testing.T) {
		f := setupResolverFixture(t)
		res, err := f.resolver.Resolve(ctx, "example.com")
		require.NoError(t, err)
		require.True(t, res.Root)
		require.Nil(t, res.School)
		require.Zero(t, f.repo.Lookups())
	})

	t.Run("active school is cached", func(t *testing.T) {
		f := setupResolverFixture(t)
		res, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)
		require.False(t, res.Root)
		require.Equal(t, "riverside", res.Subdomain)
		require.Equal(t, "s-1", res.School.ID)
		require.True(t, res.Stored)

		cached, ok := f.manager.CachedSchool(ctx)
		require.True(t, ok)
		require.Equal(t, "s-1", cached.ID)
	})

	t.Run("same school is not rewritten", func(t *testing.T) {
		f := setupResolverFixture(t)
		_, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)

		res, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)
		require.False(t, res.Stored)
		require.Len(t, f.store.Writes(), 1)
		require.Equal(t, 2, f.repo.Lookups())
	})

	t.Run("different school overwrites the cache", func(t *testing.T) {
		f := setupResolverFixture(t)
		_, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)

		res, err := f.resolver.Resolve(ctx, "hillcrest.example.com")
		require.NoError(t, err)
		require.True(t, res.Stored)

		cached, ok := f.manager.CachedSchool(ctx)
		require.True(t, ok)
		require.Equal(t, "s-2", cached.ID)
	})

	t.Run("inactive school fails without caching", func(t *testing.T) {
		f := setupResolverFixture(t)
		_, err := f.resolver.Resolve(ctx, "closed.example.com")
		require.ErrorIs(t, err, apperrors.ErrUnknownOrInactiveTenant)
		_, ok := f.store.Get(ctx, session.CookieSchool)
		require.False(t, ok)
	})

	t.Run("unknown school fails without caching", func(t *testing.T) {
		f := setupResolverFixture(t)
		_, err := f.resolver.Resolve(ctx, "nowhere.example.com")
		require.ErrorIs(t, err, apperrors.ErrUnknownOrInactiveTenant)
		require.ErrorIs(t, err, schools.ErrNotFound)
		require.Empty(t, f.store.Writes())
	})

	t.Run("cache write failure still resolves", func(t *testing.T) {
		f := setupResolverFixture(t)
		f.store.FailWrites(session.CookieSchool)
		res, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)
		require.False(t, res.Stored)
		require.Equal(t, "s-1", res.School.ID)
	})

	t.Run("expired cache entry is refreshed", func(t *testing.T) {
		f := setupResolverFixture(t)
		now := time.Now()
		f.store.Now = func() time.Time { return now }
		_, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)

		f.store.Now = func() time.Time { return now.Add(8 * 24 * time.Hour) }
		res, err := f.resolver.Resolve(ctx, "riverside.example.com")
		require.NoError(t, err)
		require.True(t, res.Stored)
	})
}
