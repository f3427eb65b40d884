//go:build !integration

package recommend

import (
	"context"
	"testing"

	"artMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

type fakeCache struct {
	vectors map[uint][]float64
	hits    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{vectors: make(map[uint][]float64)}
}

func (f *fakeCache) GetVector(_ context.Context, userID uint) ([]float64, bool) {
	vec, ok := f.vectors[userID]
	if ok {
		f.hits++
	}
	return vec, ok
}

func (f *fakeCache) SetVector(_ context.Context, userID uint, vector []float64) {
	f.sets++
	f.vectors[userID] = vector
}

func newTestService(products *fakeProducts, prefs *fakePrefs, purchases *fakePurchases, cache PreferenceCache) (*RecommenderService, *RecommendationEngine) {
	builder := NewVectorBuilder()
	engine := NewRecommendationEngine(builder, DefaultConfig())
	svc := NewRecommenderService(products, prefs, purchases, cache, builder, engine)
	return svc, engine
}

func TestRecommendUnknownUserStillServed(t *testing.T) {
	products := newFakeProducts(
		testProduct(1, 100, []string{"Decorative"}, nil),
		testProduct(2, 1500, []string{"Realist"}, nil),
	)
	svc, _ := newTestService(products, newFakePrefs(), newFakePurchases(), nil)

	out, err := svc.Recommend(context.Background(), 999, 10)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestRecommendUsesStoredVector(t *testing.T) {
	products := newFakeProducts(
		testProduct(1, 450, []string{"Abstract"}, []string{"Acrylic"}),
		testProduct(2, 450, []string{"Religious"}, []string{"Fresco"}),
	)
	prefs := newFakePrefs()

	vec := warmUserVector(map[string]float64{"cat_Abstract": 0.9, "tech_Acrylic": 0.1})
	require.NoError(t, prefs.SaveState(context.Background(), &domain.UserPreferenceState{
		UserID:    7,
		Vector:    datatypes.JSONSlice[float64](vec),
		WeightSum: 1.0,
	}))

	svc, engine := newTestService(products, prefs, newFakePurchases(), nil)
	engine.ReplaceModel(trainedModel())

	out, err := svc.Recommend(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(1), out[0].ID)
}

func TestRecommendBackfillsCache(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, nil))
	prefs := newFakePrefs()
	cache := newFakeCache()

	vec := warmUserVector(map[string]float64{"cat_Abstract": 1.0})
	require.NoError(t, prefs.SaveState(context.Background(), &domain.UserPreferenceState{
		UserID:    7,
		Vector:    datatypes.JSONSlice[float64](vec),
		WeightSum: 1.0,
	}))

	svc, _ := newTestService(products, prefs, newFakePurchases(), cache)

	_, err := svc.Recommend(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.Recommend(context.Background(), 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestUserVectorPrefersStoredState(t *testing.T) {
	prefs := newFakePrefs()
	vec := make([]float64, Dim())
	vec[0] = 1.0
	require.NoError(t, prefs.SaveState(context.Background(), &domain.UserPreferenceState{
		UserID: 7,
		Vector: datatypes.JSONSlice[float64](vec),
	}))

	svc, _ := newTestService(newFakeProducts(), prefs, newFakePurchases(), nil)

	out, err := svc.UserVector(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out["cat_Realist"])
}

func TestUserVectorFallsBackToHistory(t *testing.T) {
	purchases := newFakePurchases()
	purchases.byUser[7] = []domain.PurchaseEvent{
		{
			UserID:     7,
			Quantity:   1,
			TotalPaid:  100,
			Categories: datatypes.JSONSlice[string]{"Realist"},
		},
	}

	svc, _ := newTestService(newFakeProducts(), newFakePrefs(), purchases, nil)

	out, err := svc.UserVector(context.Background(), 7)
	require.NoError(t, err)
	assert.Greater(t, out["cat_Realist"], 0.0)
}

func TestUserVectorUnknownUser(t *testing.T) {
	svc, _ := newTestService(newFakeProducts(), newFakePrefs(), newFakePurchases(), nil)

	_, err := svc.UserVector(context.Background(), 424242)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSimilarUsersThroughService(t *testing.T) {
	svc, engine := newTestService(newFakeProducts(), newFakePrefs(), newFakePurchases(), nil)

	out, err := svc.SimilarUsers(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Empty(t, out)

	engine.ReplaceModel(sampleModel())
	out, err = svc.SimilarUsers(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, out)
}
