// internal/cats/cached.go
package cats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catshelter/internal/cache"
)

// DefaultReadTTL is how long cached cat reads stay fresh.
const DefaultReadTTL = 5 * time.Minute

// CachedRepository serves reads through the byte cache and delegates writes
// to the underlying repository, invalidating the affected keys. Concurrent
// cache population for the same key is tolerated; reads are idempotent.
type CachedRepository struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedRepository creates a caching wrapper over repo. A ttl of 0
// selects DefaultReadTTL.
func NewCachedRepository(repo Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultReadTTL
	}
	return &CachedRepository{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

// FindByID returns the cat with the given id, from cache when possible.
func (r *CachedRepository) FindByID(ctx context.Context, id string) (*Cat, error) {
	data, err := cache.Wrap(ctx, r.cache, catKey(id), r.ttl, func(ctx context.Context) ([]byte, error) {
		cat, err := r.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cat)
	})
	if err != nil {
		return nil, err
	}

	var cat Cat
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode cached cat: %w", err)
	}
	return &cat, nil
}

// FindByOrg returns the cats of an organization, from cache when possible.
func (r *CachedRepository) FindByOrg(ctx context.Context, orgID string) ([]Cat, error) {
	data, err := cache.Wrap(ctx, r.cache, orgKey(orgID), r.ttl, func(ctx context.Context) ([]byte, error) {
		cats, err := r.repo.FindByOrg(ctx, orgID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cats)
	})
	if err != nil {
		return nil, err
	}

	var cats []Cat
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("decode cached cats: %w", err)
	}
	return cats, nil
}

// FindByAdopter returns the cats adopted by a user, from cache when
// possible.
func (r *CachedRepository) FindByAdopter(ctx context.Context, userID string) ([]Cat, error) {
	data, err := cache.Wrap(ctx, r.cache, adopterKey(userID), r.ttl, func(ctx context.Context) ([]byte, error) {
		cats, err := r.repo.FindByAdopter(ctx, userID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cats)
	})
	if err != nil {
		return nil, err
	}

	var cats []Cat
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("decode cached cats: %w", err)
	}
	return cats, nil
}

// Insert stores a new cat and invalidates the org listing.
func (r *CachedRepository) Insert(ctx context.Context, cat *Cat) error {
	if err := r.repo.Insert(ctx, cat); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, orgKey(cat.OrgID.Hex()))
	return nil
}

// Update applies an update and invalidates the cat and its org listing.
func (r *CachedRepository) Update(ctx context.Context, id string, update Update) (*Cat, error) {
	cat, err := r.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	_ = r.cache.Delete(ctx, catKey(id))
	_ = r.cache.Delete(ctx, orgKey(cat.OrgID.Hex()))
	return cat, nil
}

// Delete removes a cat and invalidates its cache entry. The org listing for
// the deleted cat ages out on its own TTL.
func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, catKey(id))
	return nil
}

func catKey(id string) string {
	return "cats:id:" + id
}

func orgKey(orgID string) string {
	return "cats:org:" + orgID
}

func adopterKey(userID string) string {
	return "cats:user:" + userID
}
