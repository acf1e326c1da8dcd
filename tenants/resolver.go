package tenants

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
	"github.com/jrsteele09/go-school-gateway/schools"
	"github.com/rs/zerolog/log"
)

// SchoolCache persists the last resolved school for a browser.
type SchoolCache interface {
	CachedSchool(ctx context.Context) (*schools.School, bool)
	CacheSchool(ctx context.Context, school *schools.School) error
}

// Resolution is the outcome of mapping a host to a school.
type Resolution struct {
	Root      bool            // request targets the root domain
	Subdomain string          // set when Root is false
	School    *schools.School // active school behind Subdomain
	Stored    bool            // the school cookie was (re)written
}

// Resolver maps inbound hosts to schools.
type Resolver struct {
	domains Domains
	repo    schools.Repo
	cache   SchoolCache
}

func NewResolver(domains Domains, repo schools.Repo, cache SchoolCache) *Resolver {
	return &Resolver{
		domains: domains,
		repo:    repo,
		cache:   cache,
	}
}

// Resolve looks up the school a host points at. Unknown and inactive schools fail
// with ErrUnknownOrInactiveTenant and nothing is cached. Concurrent requests may
// both write the cache; the last one wins.
func (r *Resolver) Resolve(ctx context.Context, host string) (*Resolution, error) {
	subdomain := r.domains.ExtractSubdomain(host)
	if subdomain == "" {
		return &Resolution{Root: true}, nil
	}

	school, err := r.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, fmt.Errorf("%w: subdomain %q: %w", apperrors.ErrUnknownOrInactiveTenant, subdomain, err)
	}
	if school == nil || !school.IsActive {
		return nil, fmt.Errorf("%w: subdomain %q is not active", apperrors.ErrUnknownOrInactiveTenant, subdomain)
	}

	res := &Resolution{Subdomain: subdomain, School: school}
	if cached, ok := r.cache.CachedSchool(ctx); ok && cached.Same(school) {
		return res, nil
	}
	if err := r.cache.CacheSchool(ctx, school); err != nil {
		log.Warn().Err(err).Str("subdomain", subdomain).Msg("failed to cache resolved school")
		return res, nil
	}
	res.Stored = true
	return res, nil
}
