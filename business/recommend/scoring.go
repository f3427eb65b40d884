package recommend

import (
	"sort"

	"artMarket/domain"
)

// SimilarityScorer blends cosine similarity against a candidate's feature
// vector with a novelty bonus for categories outside the user's comfort zone.
type SimilarityScorer struct {
	builder *VectorBuilder
	cfg     Config
}

func NewSimilarityScorer(builder *VectorBuilder, cfg Config) *SimilarityScorer {
	return &SimilarityScorer{builder: builder, cfg: cfg}
}

// Score computes the blended ranking score for one candidate. Never fails:
// malformed products score with neutral defaults.
func (s *SimilarityScorer) Score(userVector []float64, product domain.Product) domain.ScoredCandidate {
	productVector := s.builder.BuildProductVector(product).ToArray()

	similarity := clamp01(Cosine(userVector, productVector))
	novelty := s.noveltyScore(userVector, product)

	return domain.ScoredCandidate{
		Product:    product,
		Similarity: similarity,
		Novelty:    novelty,
		Score:      s.cfg.SimilarityWeight*similarity + s.cfg.NoveltyWeight*novelty,
	}
}

// noveltyScore measures how much of the candidate lies outside the user's
// top explored categories: |candidate.categories - topK| / |candidate.categories|.
// Neutral 0.5 when either side carries no category signal.
func (s *SimilarityScorer) noveltyScore(userVector []float64, product domain.Product) float64 {
	if len(product.Categories) == 0 {
		return 0.5
	}

	top := s.topUserCategories(userVector)
	if len(top) == 0 {
		return 0.5
	}

	novel := 0
	for _, cat := range product.Categories {
		if _, ok := top[cat]; !ok {
			novel++
		}
	}
	return float64(novel) / float64(len(product.Categories))
}

// topUserCategories returns the user's K highest-weighted categories. Ties
// resolve in vocabulary order so the result is deterministic.
func (s *SimilarityScorer) topUserCategories(userVector []float64) map[string]struct{} {
	type catWeight struct {
		name   string
		weight float64
	}

	weights := make([]catWeight, 0, len(Categories))
	for _, cat := range Categories {
		idx, ok := featureIndex["cat_"+cat]
		if !ok || idx >= len(userVector) {
			continue
		}
		weights = append(weights, catWeight{name: cat, weight: userVector[idx]})
	}
	if len(weights) == 0 {
		return nil
	}

	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].weight > weights[j].weight
	})

	k := s.cfg.TopCategories
	if k > len(weights) {
		k = len(weights)
	}

	top := make(map[string]struct{}, k)
	for _, cw := range weights[:k] {
		top[cw.name] = struct{}{}
	}
	return top
}
