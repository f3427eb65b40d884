package recommend

import (
	"context"
	"fmt"

	"artMarket/domain"
	"artMarket/pkg/logger"
)

// RecommenderService is the request-facing facade: it loads the user's
// preference vector and the candidate catalog, then hands both to the engine.
type RecommenderService struct {
	products  ProductRepository
	prefs     PreferenceRepository
	purchases PurchaseRepository
	cache     PreferenceCache // optional
	builder   *VectorBuilder
	engine    *RecommendationEngine
}

func NewRecommenderService(
	products ProductRepository,
	prefs PreferenceRepository,
	purchases PurchaseRepository,
	cache PreferenceCache,
	builder *VectorBuilder,
	engine *RecommendationEngine,
) *RecommenderService {
	return &RecommenderService{
		products:  products,
		prefs:     prefs,
		purchases: purchases,
		cache:     cache,
		builder:   builder,
		engine:    engine,
	}
}

// Recommend returns the top-N ranked products for a user. Users without any
// stored signal are served through the cold-start/fallback paths, so the only
// failure mode is the catalog being unreadable.
func (s *RecommenderService) Recommend(ctx context.Context, userID uint, topN int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	candidates, err := s.products.FindAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidate products: %w", err)
	}

	userVector := s.userVectorArray(ctx, userID)
	recs := s.engine.GetRecommendations(userVector, candidates, topN)

	logger.Debug("recommend",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"candidates", len(candidates),
		"returned", len(recs),
		"trained", s.engine.IsTrained(),
	)

	return recs, nil
}

// SimilarUsers returns the ids of the most similar trained users. Unknown
// users and untrained engines yield an empty list, not an error.
func (s *RecommenderService) SimilarUsers(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return s.engine.FindSimilarUsers(userID, limit), nil
}

// UserVector exposes a user's current preference vector. Unlike the scoring
// path it distinguishes "no signal at all" with ErrUserNotFound.
func (s *RecommenderService) UserVector(ctx context.Context, userID uint) (FeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	state, err := s.prefs.GetState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preference state: %w", err)
	}
	if state != nil && len(state.Vector) > 0 {
		return VectorFromArray(state.Vector), nil
	}

	history, err := s.purchases.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchase history: %w", err)
	}
	if len(history) == 0 {
		return nil, ErrUserNotFound
	}

	return s.builder.BuildUserVectorFromHistory(history), nil
}

// ModelSummary reports whether a trained model is active and how many users
// it covers. Serves the health endpoint.
func (s *RecommenderService) ModelSummary() (bool, int) {
	m := s.engine.CurrentModel()
	if m == nil {
		return false, 0
	}
	return true, m.UserCount()
}

// ListProducts exposes the recommendable catalog slice.
func (s *RecommenderService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return s.products.FindAvailable(ctx)
}

// userVectorArray resolves the dense normalized vector for scoring: cache
// first, then the stored projection, then a rebuild from purchase history.
// Lookup failures degrade to the default vector so the endpoint stays up.
func (s *RecommenderService) userVectorArray(ctx context.Context, userID uint) []float64 {
	if s.cache != nil {
		if vec, ok := s.cache.GetVector(ctx, userID); ok && len(vec) == Dim() {
			return vec
		}
	}

	state, err := s.prefs.GetState(ctx, userID)
	if err != nil {
		logger.Warn("preference state unreadable, scoring with default vector",
			"user_id", userID, "error", err)
		return s.builder.DefaultVector().ToArray()
	}
	if state != nil && len(state.Vector) == Dim() {
		if s.cache != nil {
			s.cache.SetVector(ctx, userID, state.Vector)
		}
		return state.Vector
	}

	history, err := s.purchases.FindByUser(ctx, userID)
	if err != nil {
		logger.Warn("purchase history unreadable, scoring with default vector",
			"user_id", userID, "error", err)
		return s.builder.DefaultVector().ToArray()
	}
	if len(history) > 0 {
		return s.builder.BuildUserVectorFromHistory(history).ToArray()
	}

	return s.builder.DefaultVector().ToArray()
}
