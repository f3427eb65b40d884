package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"artMarket/pkg/logger"
)

const lockStripes = 64

// PreferenceUpdater applies view/purchase events to per-user preference
// accumulators. Updates for different users run concurrently; updates for the
// same user are serialized through a striped lock so the read-modify-write on
// (accumulator, weight_sum) never loses an update.
type PreferenceUpdater struct {
	products ProductRepository
	prefs    PreferenceRepository
	cache    PreferenceCache // optional
	builder  *VectorBuilder
	cfg      Config

	locks [lockStripes]sync.Mutex
}

func NewPreferenceUpdater(
	products ProductRepository,
	prefs PreferenceRepository,
	cache PreferenceCache,
	builder *VectorBuilder,
	cfg Config,
) *PreferenceUpdater {
	return &PreferenceUpdater{
		products: products,
		prefs:    prefs,
		cache:    cache,
		builder:  builder,
		cfg:      cfg,
	}
}

// RecordView applies a view event. The event weight is the viewing duration
// normalized against the duration cap; an unknown duration counts as a full
// view. Fails with ErrProductNotFound when the product is not in the catalog.
func (u *PreferenceUpdater) RecordView(ctx context.Context, userID uint, productID uint64, durationSeconds *float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	product, err := u.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("resolve viewed product %d: %w", productID, err)
	}

	eventWeight := 1.0
	if durationSeconds != nil {
		eventWeight = clamp01(*durationSeconds / u.cfg.ViewDurationCap)
	}

	beta := u.cfg.ViewBeta * eventWeight
	pvec := u.builder.BuildProductVector(product).ToArray()

	if err := u.applyEvent(ctx, userID, pvec, beta); err != nil {
		return err
	}

	PreferenceEventsTotal.WithLabelValues("view").Inc()

	logger.Debug("preference_view_applied",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"product_id", productID,
		"beta", beta,
	)

	return nil
}

// RecordPurchase applies a purchase event over a batch of product ids. The
// event vector is the elementwise mean of the resolved product vectors;
// products missing from the catalog are skipped, and the operation fails with
// ErrNoValidProducts only when none resolve.
func (u *PreferenceUpdater) RecordPurchase(ctx context.Context, userID uint, productIDs []uint64, eventWeight *float64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	combined := make([]float64, Dim())
	resolved := 0

	for _, pid := range productIDs {
		product, err := u.products.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				logger.Warn("purchase update skipping unknown product",
					"user_id", userID, "product_id", pid)
				continue
			}
			return fmt.Errorf("resolve purchased product %d: %w", pid, err)
		}

		pvec := u.builder.BuildProductVector(product).ToArray()
		for i, x := range pvec {
			combined[i] += x
		}
		resolved++
	}

	if resolved == 0 {
		return ErrNoValidProducts
	}
	for i := range combined {
		combined[i] /= float64(resolved)
	}

	ew := 1.0
	if eventWeight != nil {
		ew = clamp01(*eventWeight)
	}
	beta := u.cfg.PurchaseBeta * ew

	if err := u.applyEvent(ctx, userID, combined, beta); err != nil {
		return err
	}

	PreferenceEventsTotal.WithLabelValues("purchase").Inc()

	logger.Debug("preference_purchase_applied",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"products", resolved,
		"beta", beta,
	)

	return nil
}

// applyEvent performs the accumulate-and-renormalize update:
//
//	accumulator' = accumulator + beta * productVector
//	weight_sum'  = weight_sum + beta
//	normalized   = l2_normalize(accumulator' / weight_sum')
//
// Both the raw accumulator and the normalized projection are persisted in one
// atomic write.
func (u *PreferenceUpdater) applyEvent(ctx context.Context, userID uint, productVector []float64, beta float64) error {
	lock := &u.locks[userID%lockStripes]
	lock.Lock()
	defer lock.Unlock()

	state, err := u.prefs.GetState(ctx, userID)
	if err != nil {
		return fmt.Errorf("load preference state: %w", err)
	}
	if state == nil {
		state, err = u.prefs.CreateState(ctx, userID)
		if err != nil {
			return fmt.Errorf("create preference state: %w", err)
		}
	}

	accumulator := []float64(state.Accumulator)
	weightSum := state.WeightSum

	// Legacy rows carry only a normalized vector. Seed the accumulator from
	// it with a unit weight so the invariant on weight_sum holds.
	if len(accumulator) == 0 && len(state.Vector) > 0 && weightSum == 0 {
		accumulator = append([]float64(nil), state.Vector...)
		weightSum = 1.0
	}

	if len(accumulator) == 0 {
		accumulator = make([]float64, Dim())
	}
	if len(accumulator) != Dim() {
		return fmt.Errorf("stored accumulator has %d dims, feature space has %d: %w",
			len(accumulator), Dim(), ErrModelIncompatible)
	}

	for i, x := range productVector {
		accumulator[i] += beta * x
	}
	weightSum += beta

	raw := make([]float64, len(accumulator))
	if weightSum == 0 {
		copy(raw, accumulator)
	} else {
		for i, x := range accumulator {
			raw[i] = x / weightSum
		}
	}
	normalized := L2Normalize(raw)

	state.Accumulator = accumulator
	state.WeightSum = weightSum
	state.Vector = normalized
	state.LastUpdated = time.Now()

	if err := u.prefs.SaveState(ctx, state); err != nil {
		return fmt.Errorf("save preference state: %w", err)
	}

	if u.cache != nil {
		u.cache.SetVector(ctx, userID, normalized)
	}

	return nil
}
