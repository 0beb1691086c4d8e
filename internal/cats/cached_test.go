package cats

import (
	"context"
	"testing"
	"time"

	"catshelter/internal/cache"
	"catshelter/internal/observability/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRepository counts calls so cache hits are observable.
type fakeRepository struct {
	cats  map[string]*Cat
	calls map[string]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		cats:  make(map[string]*Cat),
		calls: make(map[string]int),
	}
}

func (f *fakeRepository) add(cat *Cat) {
	f.cats[cat.ID.Hex()] = cat
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Cat, error) {
	f.calls["FindByID"]++
	cat, ok := f.cats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cat, nil
}

func (f *fakeRepository) FindByOrg(_ context.Context, orgID string) ([]Cat, error) {
	f.calls["FindByOrg"]++
	var out []Cat
	for _, cat := range f.cats {
		if cat.OrgID.Hex() == orgID {
			out = append(out, *cat)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindByAdopter(_ context.Context, userID string) ([]Cat, error) {
	f.calls["FindByAdopter"]++
	var out []Cat
	for _, cat := range f.cats {
		if cat.AdoptedBy == userID {
			out = append(out, *cat)
		}
	}
	return out, nil
}

func (f *fakeRepository) Insert(_ context.Context, cat *Cat) error {
	f.calls["Insert"]++
	if cat.ID.IsZero() {
		cat.ID = primitive.NewObjectID()
	}
	f.cats[cat.ID.Hex()] = cat
	return nil
}

func (f *fakeRepository) Update(_ context.Context, id string, update Update) (*Cat, error) {
	f.calls["Update"]++
	cat, ok := f.cats[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Name != nil {
		cat.Name = *update.Name
	}
	if update.AdoptedBy != nil {
		cat.AdoptedBy = *update.AdoptedBy
	}
	return cat, nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	f.calls["Delete"]++
	if _, ok := f.cats[id]; !ok {
		return ErrNotFound
	}
	delete(f.cats, id)
	return nil
}

func newCachedFixture(t *testing.T) (*CachedRepository, *fakeRepository) {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)

	c := cache.NewMemory(100, logger)
	t.Cleanup(func() { c.Close() })

	repo := newFakeRepository()
	return NewCachedRepository(repo, c, time.Minute), repo
}

func testCat(org primitive.ObjectID) *Cat {
	return &Cat{
		ID:    primitive.NewObjectID(),
		OrgID: org,
		Name:  "Whiskers",
		Breed: "tabby",
		Age:   3,
	}
}

func TestCachedFindByIDServesFromCache(t *testing.T) {
	cached, repo := newCachedFixture(t)
	cat := testCat(primitive.NewObjectID())
	repo.add(cat)

	for i := 0; i < 3; i++ {
		got, err := cached.FindByID(context.Background(), cat.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, cat.Name, got.Name)
		assert.Equal(t, cat.ID, got.ID)
	}

	assert.Equal(t, 1, repo.calls["FindByID"])
}

func TestCachedFindByOrgServesFromCache(t *testing.T) {
	cached, repo := newCachedFixture(t)
	org := primitive.NewObjectID()
	repo.add(testCat(org))
	repo.add(testCat(org))

	for i := 0; i < 3; i++ {
		cats, err := cached.FindByOrg(context.Background(), org.Hex())
		require.NoError(t, err)
		assert.Len(t, cats, 2)
	}

	assert.Equal(t, 1, repo.calls["FindByOrg"])
}

func TestCachedFindByAdopterServesFromCache(t *testing.T) {
	cached, repo := newCachedFixture(t)
	cat := testCat(primitive.NewObjectID())
	cat.AdoptedBy = "u1"
	repo.add(cat)

	for i := 0; i < 2; i++ {
		cats, err := cached.FindByAdopter(context.Background(), "u1")
		require.NoError(t, err)
		assert.Len(t, cats, 1)
	}

	assert.Equal(t, 1, repo.calls["FindByAdopter"])
}

func TestCachedErrorsAreNotCached(t *testing.T) {
	cached, repo := newCachedFixture(t)
	id := primitive.NewObjectID()

	_, err := cached.FindByID(context.Background(), id.Hex())
	require.ErrorIs(t, err, ErrNotFound)

	// The cat appears later; the earlier miss must not stick
	repo.add(&Cat{ID: id, Name: "Latecomer"})
	got, err := cached.FindByID(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Latecomer", got.Name)
}

func TestCachedUpdateInvalidatesCatAndOrg(t *testing.T) {
	cached, repo := newCachedFixture(t)
	cat := testCat(primitive.NewObjectID())
	repo.add(cat)

	// Prime both caches
	_, err := cached.FindByID(context.Background(), cat.ID.Hex())
	require.NoError(t, err)
	_, err = cached.FindByOrg(context.Background(), cat.OrgID.Hex())
	require.NoError(t, err)

	name := "Mittens"
	_, err = cached.Update(context.Background(), cat.ID.Hex(), Update{Name: &name})
	require.NoError(t, err)

	got, err := cached.FindByID(context.Background(), cat.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Mittens", got.Name)
	assert.Equal(t, 2, repo.calls["FindByID"], "stale cache entry must be dropped on update")

	_, err = cached.FindByOrg(context.Background(), cat.OrgID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls["FindByOrg"])
}

func TestCachedInsertInvalidatesOrgListing(t *testing.T) {
	cached, repo := newCachedFixture(t)
	org := primitive.NewObjectID()
	repo.add(testCat(org))

	cats, err := cached.FindByOrg(context.Background(), org.Hex())
	require.NoError(t, err)
	require.Len(t, cats, 1)

	require.NoError(t, cached.Insert(context.Background(), testCat(org)))

	cats, err = cached.FindByOrg(context.Background(), org.Hex())
	require.NoError(t, err)
	assert.Len(t, cats, 2)
}

func TestCachedDeleteInvalidatesCat(t *testing.T) {
	cached, repo := newCachedFixture(t)
	cat := testCat(primitive.NewObjectID())
	repo.add(cat)

	_, err := cached.FindByID(context.Background(), cat.ID.Hex())
	require.NoError(t, err)

	require.NoError(t, cached.Delete(context.Background(), cat.ID.Hex()))

	_, err = cached.FindByID(context.Background(), cat.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}
