// Package csvstore backs the recommender repositories with plain CSV files
// so the service can run against exported data without a database. Products
// and purchases are loaded once at startup; preference states are kept in
// memory and rewritten to disk on every save.
package csvstore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"artMarket/business/recommend"
	"artMarket/domain"

	"gorm.io/datatypes"
)

const (
	productsFile    = "products.csv"
	purchasesFile   = "purchases.csv"
	preferencesFile = "user_preferences.csv"
)

type Store struct {
	dir string

	products  map[uint64]domain.Product
	purchases map[uint][]domain.PurchaseEvent

	mu     sync.RWMutex
	states map[uint]domain.UserPreferenceState
}

var (
	_ recommend.ProductRepository    = (*Store)(nil)
	_ recommend.PreferenceRepository = (*Store)(nil)
	_ recommend.PurchaseRepository   = (*PurchaseView)(nil)
)

// Open reads the three CSV files under dir. products.csv and purchases.csv
// are required; user_preferences.csv is created on first save.
func Open(dir string) (*Store, error) {
	s := &Store{
		dir:       dir,
		products:  make(map[uint64]domain.Product),
		purchases: make(map[uint][]domain.PurchaseEvent),
		states:    make(map[uint]domain.UserPreferenceState),
	}

	if err := s.loadProducts(); err != nil {
		return nil, err
	}
	if err := s.loadPurchases(); err != nil {
		return nil, err
	}
	if err := s.loadPreferences(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) loadProducts() error {
	rows, err := readCSV(filepath.Join(s.dir, productsFile))
	if err != nil {
		return fmt.Errorf("load %s: %w", productsFile, err)
	}

	for i, row := range rows {
		if len(row) < 7 {
			return fmt.Errorf("%s row %d: expected 7 columns, got %d", productsFile, i+2, len(row))
		}

		id, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad product id %q: %w", productsFile, i+2, row[0], err)
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad price %q: %w", productsFile, i+2, row[2], err)
		}
		stock, err := strconv.Atoi(row[3])
		if err != nil {
			return fmt.Errorf("%s row %d: bad stock %q: %w", productsFile, i+2, row[3], err)
		}
		categories, err := decodeList(row[5])
		if err != nil {
			return fmt.Errorf("%s row %d: bad categories: %w", productsFile, i+2, err)
		}
		techniques, err := decodeList(row[6])
		if err != nil {
			return fmt.Errorf("%s row %d: bad techniques: %w", productsFile, i+2, err)
		}

		s.products[id] = domain.Product{
			ID:         id,
			Name:       row[1],
			Price:      price,
			Stock:      stock,
			Status:     row[4],
			Categories: categories,
			Techniques: techniques,
		}
	}

	return nil
}

func (s *Store) loadPurchases() error {
	rows, err := readCSV(filepath.Join(s.dir, purchasesFile))
	if err != nil {
		return fmt.Errorf("load %s: %w", purchasesFile, err)
	}

	for i, row := range rows {
		if len(row) < 7 {
			return fmt.Errorf("%s row %d: expected 7 columns, got %d", purchasesFile, i+2, len(row))
		}

		userID, err := strconv.ParseUint(row[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%s row %d: bad user id %q: %w", purchasesFile, i+2, row[0], err)
		}
		productID, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad product id %q: %w", purchasesFile, i+2, row[1], err)
		}
		qty, err := strconv.Atoi(row[2])
		if err != nil {
			return fmt.Errorf("%s row %d: bad quantity %q: %w", purchasesFile, i+2, row[2], err)
		}
		total, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad total %q: %w", purchasesFile, i+2, row[3], err)
		}
		categories, err := decodeList(row[4])
		if err != nil {
			return fmt.Errorf("%s row %d: bad categories: %w", purchasesFile, i+2, err)
		}
		techniques, err := decodeList(row[5])
		if err != nil {
			return fmt.Errorf("%s row %d: bad techniques: %w", purchasesFile, i+2, err)
		}
		when, err := time.Parse(time.RFC3339, row[6])
		if err != nil {
			return fmt.Errorf("%s row %d: bad purchase date %q: %w", purchasesFile, i+2, row[6], err)
		}

		uid := uint(userID)
		s.purchases[uid] = append(s.purchases[uid], domain.PurchaseEvent{
			UserID:       uid,
			ProductID:    productID,
			Quantity:     qty,
			TotalPaid:    total,
			Categories:   categories,
			Techniques:   techniques,
			PurchaseDate: when,
		})
	}

	return nil
}

func (s *Store) loadPreferences() error {
	path := filepath.Join(s.dir, preferencesFile)
	rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load %s: %w", preferencesFile, err)
	}

	for i, row := range rows {
		if len(row) < 5 {
			return fmt.Errorf("%s row %d: expected 5 columns, got %d", preferencesFile, i+2, len(row))
		}

		userID, err := strconv.ParseUint(row[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%s row %d: bad user id %q: %w", preferencesFile, i+2, row[0], err)
		}
		accumulator, err := decodeFloats(row[1])
		if err != nil {
			return fmt.Errorf("%s row %d: bad accumulator: %w", preferencesFile, i+2, err)
		}
		weightSum, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("%s row %d: bad weight sum %q: %w", preferencesFile, i+2, row[2], err)
		}
		vector, err := decodeFloats(row[3])
		if err != nil {
			return fmt.Errorf("%s row %d: bad vector: %w", preferencesFile, i+2, err)
		}
		updated, err := time.Parse(time.RFC3339, row[4])
		if err != nil {
			return fmt.Errorf("%s row %d: bad timestamp %q: %w", preferencesFile, i+2, row[4], err)
		}

		s.states[uint(userID)] = domain.UserPreferenceState{
			UserID:      uint(userID),
			Accumulator: accumulator,
			WeightSum:   weightSum,
			Vector:      vector,
			LastUpdated: updated,
		}
	}

	return nil
}

func (s *Store) FindByID(ctx context.Context, id uint64) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	product, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, recommend.ErrProductNotFound)
	}
	return product, nil
}

func (s *Store) FindAvailable(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	ids := make([]uint64, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p := s.products[id]; p.Available() {
			out = append(out, p)
		}
	}
	return out, nil
}

// PurchaseView is the purchase-history face of the store. It is a separate
// type because the preference side already claims the ListUserIDs name.
type PurchaseView struct {
	s *Store
}

func (s *Store) Purchases() *PurchaseView {
	return &PurchaseView{s: s}
}

func (v *PurchaseView) FindByUser(ctx context.Context, userID uint) ([]domain.PurchaseEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return append([]domain.PurchaseEvent(nil), v.s.purchases[userID]...), nil
}

func (v *PurchaseView) ListUserIDs(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return sortedUserIDs(v.s.purchases), nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedUserIDs(s.states), nil
}

func (s *Store) GetState(ctx context.Context, userID uint) (*domain.UserPreferenceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *Store) CreateState(ctx context.Context, userID uint) (*domain.UserPreferenceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	state := &domain.UserPreferenceState{
		UserID:      userID,
		LastUpdated: time.Now(),
	}
	if err := s.SaveState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) SaveState(ctx context.Context, state *domain.UserPreferenceState) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.UserID] = *state
	return s.flushPreferences()
}

// flushPreferences rewrites the preference file atomically. Caller holds the
// write lock.
func (s *Store) flushPreferences() error {
	path := filepath.Join(s.dir, preferencesFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", preferencesFile, err)
	}

	w := csv.NewWriter(f)
	header := []string{"user_id", "accumulator", "weight_sum", "vector", "last_updated"}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s header: %w", preferencesFile, err)
	}

	for _, id := range sortedUserIDs(s.states) {
		state := s.states[id]
		row := []string{
			strconv.FormatUint(uint64(state.UserID), 10),
			encodeFloats(state.Accumulator),
			strconv.FormatFloat(state.WeightSum, 'g', -1, 64),
			encodeFloats(state.Vector),
			state.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write %s row: %w", preferencesFile, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", preferencesFile, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", preferencesFile, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", preferencesFile, err)
	}
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	// First row is a header.
	return rows[1:], nil
}

func decodeList(raw string) (datatypes.JSONSlice[string], error) {
	if raw == "" {
		return nil, nil
	}
	var out datatypes.JSONSlice[string]
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeFloats(raw string) (datatypes.JSONSlice[float64], error) {
	if raw == "" {
		return nil, nil
	}
	var out datatypes.JSONSlice[float64]
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func encodeFloats(values datatypes.JSONSlice[float64]) string {
	if len(values) == 0 {
		return "[]"
	}
	raw, _ := json.Marshal(values)
	return string(raw)
}

func sortedUserIDs[V any](m map[uint]V) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
