package recommend

import (
	"context"

	"artMarket/domain"
)

// ---- DataStore interfaces ----
//
// The recommender consumes persistence through these interfaces; concrete
// implementations live under internal/repository (postgres and csvstore).

type ProductRepository interface {
	// FindByID returns ErrProductNotFound (possibly wrapped) for unknown ids.
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindAvailable(ctx context.Context) ([]domain.Product, error)
}

type PreferenceRepository interface {
	// GetState returns (nil, nil) when no state exists for the user.
	GetState(ctx context.Context, userID uint) (*domain.UserPreferenceState, error)
	CreateState(ctx context.Context, userID uint) (*domain.UserPreferenceState, error)
	// SaveState must be atomic per user: concurrent readers never observe a
	// partial accumulator/weight-sum write.
	SaveState(ctx context.Context, state *domain.UserPreferenceState) error
	ListUserIDs(ctx context.Context) ([]uint, error)
}

type PurchaseRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]domain.PurchaseEvent, error)
	ListUserIDs(ctx context.Context) ([]uint, error)
}

// PreferenceCache is an optional read-through cache for normalized preference
// vectors. Implementations may serve slightly stale vectors; scoring
// tolerates eventual consistency. All service fields holding one are nil-safe.
type PreferenceCache interface {
	GetVector(ctx context.Context, userID uint) ([]float64, bool)
	SetVector(ctx context.Context, userID uint, vector []float64)
}
