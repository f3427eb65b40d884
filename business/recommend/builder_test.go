//go:build !integration

package recommend

import (
	"testing"
	"time"

	"artMarket/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func TestBuildProductVectorDeterministic(t *testing.T) {
	b := NewVectorBuilder()
	product := domain.Product{
		ID:         1,
		Name:       "Sunset over the bay",
		Price:      450,
		Stock:      3,
		Status:     domain.ProductStatusAvailable,
		Categories: datatypes.JSONSlice[string]{"Impressionist"},
		Techniques: datatypes.JSONSlice[string]{"Oil"},
	}

	first := b.BuildProductVector(product)
	second := b.BuildProductVector(product)
	assert.Equal(t, first, second)

	assert.Equal(t, 1.0, first["cat_Impressionist"])
	assert.Equal(t, 1.0, first["tech_Oil"])
	assert.Equal(t, 0.5, first["price_sensitivity"])
	// Impressionist counts as traditional.
	assert.Equal(t, 0.0, first["modern_traditional"])
}

func TestBuildProductVectorIgnoresUnknownLabels(t *testing.T) {
	b := NewVectorBuilder()
	product := domain.Product{
		ID:         2,
		Price:      50,
		Categories: datatypes.JSONSlice[string]{"NotACategory", "Abstract"},
		Techniques: datatypes.JSONSlice[string]{"Crayon"},
	}

	v := b.BuildProductVector(product)
	assert.Equal(t, 1.0, v["cat_Abstract"])
	assert.Equal(t, 0.9, v["price_sensitivity"])

	for name, val := range v {
		if name == "cat_Abstract" || name == "price_sensitivity" || name == "modern_traditional" {
			continue
		}
		assert.Zero(t, val, "feature %s", name)
	}
}

func TestPriceToSensitivityTiers(t *testing.T) {
	cases := []struct {
		price float64
		want  float64
	}{
		{0, 0.5},
		{-5, 0.5},
		{99, 0.9},
		{100, 0.7},
		{299, 0.7},
		{300, 0.5},
		{599, 0.5},
		{600, 0.3},
		{999, 0.3},
		{1000, 0.1},
		{5000, 0.1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, priceToSensitivity(tc.price), "price %v", tc.price)
	}
}

func TestBuildUserVectorFromHistory(t *testing.T) {
	b := NewVectorBuilder()
	purchases := []domain.PurchaseEvent{
		{
			UserID:       7,
			Quantity:     2,
			TotalPaid:    300,
			Categories:   datatypes.JSONSlice[string]{"Abstract"},
			Techniques:   datatypes.JSONSlice[string]{"Acrylic"},
			PurchaseDate: time.Now(),
		},
		{
			UserID:       7,
			Quantity:     1,
			TotalPaid:    150,
			Categories:   datatypes.JSONSlice[string]{"Contemporary"},
			Techniques:   datatypes.JSONSlice[string]{"Digital"},
			PurchaseDate: time.Now(),
		},
	}

	v := b.BuildUserVectorFromHistory(purchases)

	// L1-normalized.
	assert.InDelta(t, 1.0, sum(v), 1e-9)

	// Abstract was bought twice the quantity of Contemporary.
	assert.Greater(t, v["cat_Abstract"], v["cat_Contemporary"])
	assert.Greater(t, v["tech_Acrylic"], 0.0)

	// Both categories are modern, so the style score saturates before
	// normalization.
	assert.Greater(t, v["modern_traditional"], v["cat_Contemporary"])
}

func TestBuildUserVectorFromHistoryEmpty(t *testing.T) {
	b := NewVectorBuilder()
	v := b.BuildUserVectorFromHistory(nil)
	assert.Equal(t, b.DefaultVector(), v)
}

func TestBuildUserVectorQuantityFloor(t *testing.T) {
	b := NewVectorBuilder()
	purchases := []domain.PurchaseEvent{
		{
			Quantity:   0,
			TotalPaid:  100,
			Categories: datatypes.JSONSlice[string]{"Realist"},
		},
	}

	v := b.BuildUserVectorFromHistory(purchases)
	assert.Greater(t, v["cat_Realist"], 0.0)
}

func TestDefaultVectorUniform(t *testing.T) {
	b := NewVectorBuilder()
	v := b.DefaultVector()

	require.InDelta(t, 1.0, sum(v), 1e-9)

	expected := 1.0 / float64(Dim())
	for name, val := range v {
		assert.InDelta(t, expected, val, 1e-9, "feature %s", name)
	}
}
