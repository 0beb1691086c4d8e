package orgs

import (
	"context"
	"errors"
	"testing"
	"time"

	"catshelter/internal/cache"
	"catshelter/internal/observability/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeOrgRepository struct {
	bySlug map[string]*Organization
	err    error
	calls  int
}

func (f *fakeOrgRepository) FindBySlug(_ context.Context, slug string) (*Organization, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	org, ok := f.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return org, nil
}

func newResolverFixture(t *testing.T) (*SlugResolver, *fakeOrgRepository, primitive.ObjectID) {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	c := cache.NewMemory(100, logger)
	t.Cleanup(func() { c.Close() })

	id := primitive.NewObjectID()
	repo := &fakeOrgRepository{
		bySlug: map[string]*Organization{
			"acme": {ID: id, Slug: "acme", Name: "Acme Shelter"},
		},
	}
	return NewSlugResolver(repo, c, time.Minute), repo, id
}

func TestResolveSlug(t *testing.T) {
	resolver, _, id := newResolverFixture(t)

	got, err := resolver.ResolveSlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), got)
}

func TestResolveSlugCaches(t *testing.T) {
	resolver, repo, _ := newResolverFixture(t)

	for i := 0; i < 3; i++ {
		_, err := resolver.ResolveSlug(context.Background(), "acme")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, repo.calls)
}

func TestResolveSlugUnknownIsNotAnError(t *testing.T) {
	resolver, _, _ := newResolverFixture(t)

	got, err := resolver.ResolveSlug(context.Background(), "nosuch")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveSlugLookupFailure(t *testing.T) {
	resolver, repo, _ := newResolverFixture(t)
	repo.err = errors.New("connection reset")

	_, err := resolver.ResolveSlug(context.Background(), "acme")
	assert.Error(t, err)
}
