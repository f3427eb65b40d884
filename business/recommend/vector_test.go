//go:build !integration

package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureSpaceLayout(t *testing.T) {
	names := FeatureNames()
	require.Equal(t, Dim(), len(names))
	require.Equal(t, 29, Dim())

	// Categories first, then techniques, then derived features.
	assert.Equal(t, "cat_Realist", names[0])
	assert.Equal(t, "tech_Oil", names[len(Categories)])
	assert.Equal(t, "price_sensitivity", names[len(Categories)+len(Techniques)])
	assert.Equal(t, "complexity_preference", names[len(names)-1])
}

func TestVectorArrayRoundTrip(t *testing.T) {
	v := NewFeatureVector()
	v["cat_Abstract"] = 0.4
	v["tech_Oil"] = 0.25
	v["price_sensitivity"] = 0.9

	arr := v.ToArray()
	require.Len(t, arr, Dim())

	back := VectorFromArray(arr)
	assert.Equal(t, v, back)
}

func TestVectorFromArrayShort(t *testing.T) {
	v := VectorFromArray([]float64{1.0, 2.0})
	assert.Equal(t, 1.0, v["cat_Realist"])
	assert.Equal(t, 2.0, v["cat_Abstract"])
	assert.Equal(t, 0.0, v["tech_Oil"])
}

func TestL2NormalizeZeroVector(t *testing.T) {
	zero := make([]float64, Dim())
	out := L2Normalize(zero)
	assert.Equal(t, zero, out)
}

func TestL2NormalizeUnitNorm(t *testing.T) {
	arr := []float64{3, 4}
	out := L2Normalize(arr)

	norm := math.Hypot(out[0], out[1])
	assert.InDelta(t, 1.0, norm, 1e-12)
}

func TestCosineEdgeCases(t *testing.T) {
	a := []float64{1, 0, 0}
	zero := []float64{0, 0, 0}

	assert.Equal(t, 0.0, Cosine(a, zero))
	assert.Equal(t, 0.0, Cosine(a, []float64{1, 0}))
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-12)
	assert.InDelta(t, 0.0, Cosine(a, []float64{0, 1, 0}), 1e-12)
}

func TestHashVectorDeterministic(t *testing.T) {
	a := []float64{0.1, 0.2, 0.3}
	b := []float64{0.1, 0.2, 0.3}
	c := []float64{0.1, 0.2, 0.30000001}

	assert.Equal(t, hashVector(a), hashVector(b))
	assert.NotEqual(t, hashVector(a), hashVector(c))
}
