//go:build !integration

package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"artMarket/business/recommend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsCSV = `id,name,price,stock,status,categories,techniques
1,Sunset,450,3,AVAILABLE,"[""Impressionist""]","[""Oil""]"
2,Grid Study,120,0,AVAILABLE,"[""Abstract""]","[""Acrylic""]"
3,Harbor,800,5,SOLD_OUT,"[""Realist""]","[""Watercolor""]"
`

const purchasesCSV = `user_id,product_id,quantity,total_paid,categories,techniques,purchase_date
7,1,2,900,"[""Impressionist""]","[""Oil""]",2025-06-01T10:00:00Z
7,2,1,120,"[""Abstract""]","[""Acrylic""]",2025-07-15T18:30:00Z
9,1,1,450,"[""Impressionist""]","[""Oil""]",2025-08-02T09:00:00Z
`

func writeTestStore(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.csv"), []byte(productsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "purchases.csv"), []byte(purchasesCSV), 0o644))
	return dir
}

func TestOpenAndFindProducts(t *testing.T) {
	store, err := Open(writeTestStore(t))
	require.NoError(t, err)

	ctx := context.Background()

	p, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sunset", p.Name)
	assert.Equal(t, 450.0, p.Price)
	assert.Equal(t, []string{"Impressionist"}, []string(p.Categories))

	_, err = store.FindByID(ctx, 99)
	require.ErrorIs(t, err, recommend.ErrProductNotFound)
}

func TestFindAvailableFiltersStockAndStatus(t *testing.T) {
	store, err := Open(writeTestStore(t))
	require.NoError(t, err)

	available, err := store.FindAvailable(context.Background())
	require.NoError(t, err)

	// Product 2 has no stock, product 3 is not AVAILABLE.
	require.Len(t, available, 1)
	assert.Equal(t, uint64(1), available[0].ID)
}

func TestPurchaseView(t *testing.T) {
	store, err := Open(writeTestStore(t))
	require.NoError(t, err)

	ctx := context.Background()
	purchases := store.Purchases()

	events, err := purchases.FindByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	ids, err := purchases.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 9}, ids)
}

func TestPreferenceStatePersistence(t *testing.T) {
	dir := writeTestStore(t)
	store, err := Open(dir)
	require.NoError(t, err)

	ctx := context.Background()

	state, err := store.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, state)

	created, err := store.CreateState(ctx, 7)
	require.NoError(t, err)
	created.Accumulator = []float64{0.1, 0.2}
	created.WeightSum = 0.3
	created.Vector = []float64{0.4, 0.9}
	require.NoError(t, store.SaveState(ctx, created))

	// A fresh Open must see the persisted state.
	reopened, err := Open(dir)
	require.NoError(t, err)

	loaded, err := reopened.GetState(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.InDelta(t, 0.3, loaded.WeightSum, 1e-12)
	assert.Equal(t, created.Vector, loaded.Vector)

	ids, err := reopened.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)
}
