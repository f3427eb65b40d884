//go:build !integration

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"artMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

// ---- in-memory fakes shared by the package tests ----

type fakeProducts struct {
	items map[uint64]domain.Product
}

func newFakeProducts(products ...domain.Product) *fakeProducts {
	f := &fakeProducts{items: make(map[uint64]domain.Product)}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return p, nil
}

func (f *fakeProducts) FindAvailable(_ context.Context) ([]domain.Product, error) {
	ids := make([]uint64, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p := f.items[id]; p.Available() {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePrefs struct {
	mu     sync.Mutex
	states map[uint]domain.UserPreferenceState
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{states: make(map[uint]domain.UserPreferenceState)}
}

func (f *fakePrefs) GetState(_ context.Context, userID uint) (*domain.UserPreferenceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, ok := f.states[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (f *fakePrefs) CreateState(_ context.Context, userID uint) (*domain.UserPreferenceState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := domain.UserPreferenceState{UserID: userID, LastUpdated: time.Now()}
	f.states[userID] = state
	return &state, nil
}

func (f *fakePrefs) SaveState(_ context.Context, state *domain.UserPreferenceState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.states[state.UserID] = *state
	return nil
}

func (f *fakePrefs) ListUserIDs(_ context.Context) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]uint, 0, len(f.states))
	for id := range f.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakePurchases struct {
	byUser map[uint][]domain.PurchaseEvent
}

func newFakePurchases() *fakePurchases {
	return &fakePurchases{byUser: make(map[uint][]domain.PurchaseEvent)}
}

func (f *fakePurchases) FindByUser(_ context.Context, userID uint) ([]domain.PurchaseEvent, error) {
	return append([]domain.PurchaseEvent(nil), f.byUser[userID]...), nil
}

func (f *fakePurchases) ListUserIDs(_ context.Context) ([]uint, error) {
	ids := make([]uint, 0, len(f.byUser))
	for id := range f.byUser {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func testProduct(id uint64, price float64, cats, techs []string) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       fmt.Sprintf("product-%d", id),
		Price:      price,
		Stock:      5,
		Status:     domain.ProductStatusAvailable,
		Categories: datatypes.JSONSlice[string](cats),
		Techniques: datatypes.JSONSlice[string](techs),
	}
}

// ---- updater tests ----

func floatPtr(x float64) *float64 { return &x }

func TestRecordViewCreatesState(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, []string{"Acrylic"}))
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	err := u.RecordView(context.Background(), 7, 1, floatPtr(150))
	require.NoError(t, err)

	state, err := prefs.GetState(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, state)

	// 150s against a 300s cap halves the view beta.
	assert.InDelta(t, 0.05*0.5, state.WeightSum, 1e-12)
	assert.Len(t, state.Accumulator, Dim())
	assert.Len(t, state.Vector, Dim())

	// Normalized vector must be unit length.
	normSq := 0.0
	for _, x := range state.Vector {
		normSq += x * x
	}
	assert.InDelta(t, 1.0, normSq, 1e-9)
}

func TestRecordViewNilDurationFullWeight(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, nil))
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	require.NoError(t, u.RecordView(context.Background(), 7, 1, nil))

	state, _ := prefs.GetState(context.Background(), 7)
	require.NotNil(t, state)
	assert.InDelta(t, 0.05, state.WeightSum, 1e-12)
}

func TestRecordViewUnknownProduct(t *testing.T) {
	u := NewPreferenceUpdater(newFakeProducts(), newFakePrefs(), nil, NewVectorBuilder(), DefaultConfig())

	err := u.RecordView(context.Background(), 7, 99, nil)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordPurchaseAccumulates(t *testing.T) {
	products := newFakeProducts(
		testProduct(1, 450, []string{"Abstract"}, []string{"Acrylic"}),
		testProduct(2, 900, []string{"Realist"}, []string{"Oil"}),
	)
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	ctx := context.Background()
	require.NoError(t, u.RecordView(ctx, 7, 1, floatPtr(300)))
	require.NoError(t, u.RecordPurchase(ctx, 7, []uint64{1, 2}, nil))

	state, _ := prefs.GetState(ctx, 7)
	require.NotNil(t, state)

	// weight_sum is the sum of the two betas: 0.05*1.0 + 0.5*1.0.
	assert.InDelta(t, 0.55, state.WeightSum, 1e-12)
}

func TestRecordPurchaseSkipsUnknownProducts(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, nil))
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	ctx := context.Background()
	require.NoError(t, u.RecordPurchase(ctx, 7, []uint64{1, 999}, nil))

	state, _ := prefs.GetState(ctx, 7)
	require.NotNil(t, state)
	assert.InDelta(t, 0.5, state.WeightSum, 1e-12)
}

func TestRecordPurchaseNoValidProducts(t *testing.T) {
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(newFakeProducts(), prefs, nil, NewVectorBuilder(), DefaultConfig())

	err := u.RecordPurchase(context.Background(), 7, []uint64{998, 999}, nil)
	require.ErrorIs(t, err, ErrNoValidProducts)

	// No state is created on a fully failed event.
	state, _ := prefs.GetState(context.Background(), 7)
	assert.Nil(t, state)
}

func TestApplyEventSeedsLegacyVector(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, nil))
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	// Legacy row: normalized vector only, no accumulator, no weight sum.
	legacy := make([]float64, Dim())
	legacy[1] = 1.0
	require.NoError(t, prefs.SaveState(context.Background(), &domain.UserPreferenceState{
		UserID: 7,
		Vector: legacy,
	}))

	require.NoError(t, u.RecordView(context.Background(), 7, 1, nil))

	state, _ := prefs.GetState(context.Background(), 7)
	require.NotNil(t, state)
	// Seeded unit weight plus the view beta.
	assert.InDelta(t, 1.05, state.WeightSum, 1e-12)
	assert.Greater(t, state.Accumulator[1], 1.0)
}

func TestApplyEventDimensionMismatch(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, nil))
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	require.NoError(t, prefs.SaveState(context.Background(), &domain.UserPreferenceState{
		UserID:      7,
		Accumulator: []float64{0.1, 0.2},
		WeightSum:   0.3,
	}))

	err := u.RecordView(context.Background(), 7, 1, nil)
	require.ErrorIs(t, err, ErrModelIncompatible)
}

func TestConcurrentUpdatesSameUser(t *testing.T) {
	products := newFakeProducts(testProduct(1, 450, []string{"Abstract"}, nil))
	prefs := newFakePrefs()
	u := NewPreferenceUpdater(products, prefs, nil, NewVectorBuilder(), DefaultConfig())

	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = u.RecordView(ctx, 7, 1, nil)
		}()
	}
	wg.Wait()

	state, _ := prefs.GetState(ctx, 7)
	require.NotNil(t, state)
	// No update may be lost.
	assert.InDelta(t, float64(n)*0.05, state.WeightSum, 1e-9)
}
