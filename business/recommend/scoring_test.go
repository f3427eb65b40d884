//go:build !integration

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warmUserVector(weights map[string]float64) []float64 {
	v := NewFeatureVector()
	for name, w := range weights {
		v[name] = w
	}
	return v.ToArray()
}

func TestScorePrefersMatchingProduct(t *testing.T) {
	scorer := NewSimilarityScorer(NewVectorBuilder(), DefaultConfig())

	user := warmUserVector(map[string]float64{
		"cat_Abstract": 0.7,
		"tech_Acrylic": 0.3,
	})

	matching := testProduct(1, 450, []string{"Abstract"}, []string{"Acrylic"})
	unrelated := testProduct(2, 450, []string{"Religious"}, []string{"Fresco"})

	scoreA := scorer.Score(user, matching)
	scoreB := scorer.Score(user, unrelated)

	assert.Greater(t, scoreA.Similarity, scoreB.Similarity)
	assert.Greater(t, scoreA.Score, 0.0)
}

func TestScoreBlendWeights(t *testing.T) {
	cfg := DefaultConfig()
	scorer := NewSimilarityScorer(NewVectorBuilder(), cfg)

	user := warmUserVector(map[string]float64{"cat_Abstract": 1.0})
	sc := scorer.Score(user, testProduct(1, 450, []string{"Abstract"}, nil))

	expected := cfg.SimilarityWeight*sc.Similarity + cfg.NoveltyWeight*sc.Novelty
	assert.InDelta(t, expected, sc.Score, 1e-12)
}

func TestNoveltyAgainstTopCategories(t *testing.T) {
	scorer := NewSimilarityScorer(NewVectorBuilder(), DefaultConfig())

	// Top 3 categories: Abstract, Realist, Conceptual.
	user := warmUserVector(map[string]float64{
		"cat_Abstract":   0.5,
		"cat_Realist":    0.3,
		"cat_Conceptual": 0.2,
	})

	familiar := testProduct(1, 100, []string{"Abstract"}, nil)
	novel := testProduct(2, 100, []string{"Religious"}, nil)
	half := testProduct(3, 100, []string{"Abstract", "Religious"}, nil)

	assert.Equal(t, 0.0, scorer.Score(user, familiar).Novelty)
	assert.Equal(t, 1.0, scorer.Score(user, novel).Novelty)
	assert.Equal(t, 0.5, scorer.Score(user, half).Novelty)
}

func TestNoveltyNeutralWithoutCategories(t *testing.T) {
	scorer := NewSimilarityScorer(NewVectorBuilder(), DefaultConfig())

	user := warmUserVector(map[string]float64{"cat_Abstract": 1.0})
	uncategorized := testProduct(1, 100, nil, []string{"Oil"})

	assert.Equal(t, 0.5, scorer.Score(user, uncategorized).Novelty)
}

func TestSimilarityClampedNonNegative(t *testing.T) {
	scorer := NewSimilarityScorer(NewVectorBuilder(), DefaultConfig())

	// Negative weights can produce negative cosine; the score clamps it.
	user := make([]float64, Dim())
	user[1] = -1.0 // cat_Abstract

	sc := scorer.Score(user, testProduct(1, 100, []string{"Abstract"}, nil))
	require.GreaterOrEqual(t, sc.Similarity, 0.0)
}
