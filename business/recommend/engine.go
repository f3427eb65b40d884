package recommend

import (
	"math/rand"
	"sort"
	"sync/atomic"

	"artMarket/domain"
	"artMarket/pkg/logger"
)

// RecommendationEngine routes a scoring request between the similarity path,
// the cold-start path and the fallback ranking. It starts untrained; a
// training run replaces the model wholesale and nothing else mutates it.
type RecommendationEngine struct {
	builder   *VectorBuilder
	scorer    *SimilarityScorer
	coldStart *ColdStartDetector
	cfg       Config

	model atomic.Pointer[Model]
}

func NewRecommendationEngine(builder *VectorBuilder, cfg Config) *RecommendationEngine {
	return &RecommendationEngine{
		builder:   builder,
		scorer:    NewSimilarityScorer(builder, cfg),
		coldStart: NewColdStartDetector(cfg),
		cfg:       cfg,
	}
}

// ReplaceModel swaps in a freshly trained or loaded model. In-flight requests
// keep scoring against the model they started with.
func (e *RecommendationEngine) ReplaceModel(m *Model) {
	e.model.Store(m)
}

// CurrentModel returns the active model, nil while untrained.
func (e *RecommendationEngine) CurrentModel() *Model {
	return e.model.Load()
}

func (e *RecommendationEngine) IsTrained() bool {
	return e.model.Load() != nil
}

// GetRecommendations ranks candidates for the given normalized user vector.
// Untrained engines and cold users are served by the fallback strategies; the
// scoring path itself never errors.
func (e *RecommendationEngine) GetRecommendations(userVector []float64, candidates []domain.Product, topN int) []domain.Product {
	if len(candidates) == 0 {
		return []domain.Product{}
	}
	if topN <= 0 {
		topN = 10
	}

	if !e.IsTrained() {
		RecommendationFallbacksTotal.WithLabelValues("untrained").Inc()
		return e.FallbackRecommend(candidates, topN)
	}

	if e.coldStart.IsCold(userVector) {
		RecommendationFallbacksTotal.WithLabelValues("cold_start").Inc()
		return e.coldStartRecommend(userVector, candidates, topN)
	}

	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, product := range candidates {
		scored = append(scored, e.scorer.Score(userVector, product))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN > len(scored) {
		topN = len(scored)
	}
	out := make([]domain.Product, 0, topN)
	for _, sc := range scored[:topN] {
		out = append(out, sc.Product)
	}
	return out
}

// coldStartRecommend builds an oversized fallback pool and samples topN of it
// with a seed derived from the user vector: reproducible per user, but two
// distinct cold users do not share an identical top-N.
func (e *RecommendationEngine) coldStartRecommend(userVector []float64, candidates []domain.Product, topN int) []domain.Product {
	poolSize := e.cfg.ColdStartPool
	if topN > poolSize {
		poolSize = topN
	}

	pool := e.FallbackRecommend(candidates, poolSize)
	if len(pool) <= topN {
		return pool
	}

	rnd := rand.New(rand.NewSource(hashVector(userVector)))
	picked := rnd.Perm(len(pool))[:topN]

	out := make([]domain.Product, 0, topN)
	for _, idx := range picked {
		out = append(out, pool[idx])
	}

	logger.Debug("cold_start_recommend",
		"pool", len(pool),
		"sampled", len(out),
	)

	return out
}

// FallbackRecommend ranks by affordability and availability when no
// similarity signal is usable. Out-of-stock or unpriced products score zero.
func (e *RecommendationEngine) FallbackRecommend(candidates []domain.Product, topN int) []domain.Product {
	type scored struct {
		product domain.Product
		score   float64
	}

	list := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		score := 0.0
		if p.Price > 0 && p.Stock > 0 {
			priceScore := 1.0 - p.Price/2000.0
			if priceScore < 0 {
				priceScore = 0
			}
			stockScore := minF(float64(p.Stock)/10.0, 1.0)
			score = e.cfg.PriceWeight*priceScore + e.cfg.StockWeight*stockScore
		}
		list = append(list, scored{product: p, score: score})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	if topN > len(list) {
		topN = len(list)
	}
	out := make([]domain.Product, 0, topN)
	for _, s := range list[:topN] {
		out = append(out, s.product)
	}
	return out
}

// FindSimilarUsers delegates to the active model; an untrained engine or an
// unknown user yields an empty list.
func (e *RecommendationEngine) FindSimilarUsers(userID uint, limit int) []uint {
	m := e.model.Load()
	if m == nil {
		return []uint{}
	}
	return m.SimilarUsers(userID, limit)
}
