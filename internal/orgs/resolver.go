// internal/orgs/resolver.go
package orgs

import (
	"context"
	"errors"
	"time"

	"catshelter/internal/cache"
)

// DefaultSlugTTL is how long a resolved slug stays cached. Slugs change
// rarely, but an hour bounds the staleness window after a rename.
const DefaultSlugTTL = time.Hour

// SlugResolver resolves organization slugs to internal ids through the byte
// cache. An unknown slug resolves to the empty id without error, which is
// how the guard distinguishes "no such org" from a failed lookup.
type SlugResolver struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewSlugResolver creates a resolver over the repository. A ttl of 0 selects
// DefaultSlugTTL.
func NewSlugResolver(repo Repository, c cache.Cache, ttl time.Duration) *SlugResolver {
	if ttl <= 0 {
		ttl = DefaultSlugTTL
	}
	return &SlugResolver{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

// ResolveSlug returns the internal id for a slug, or "" when no organization
// matches.
func (s *SlugResolver) ResolveSlug(ctx context.Context, slug string) (string, error) {
	id, err := cache.Wrap(ctx, s.cache, "org:slug:"+slug, s.ttl, func(ctx context.Context) ([]byte, error) {
		org, err := s.repo.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return []byte(org.ID.Hex()), nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(id), nil
}
