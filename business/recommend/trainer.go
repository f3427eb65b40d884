package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"artMarket/domain"
	"artMarket/pkg/logger"

	"github.com/google/uuid"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Trainer runs the offline batch step: it gathers user vectors, clusters them
// and swaps the resulting model into the engine. At most one run may be
// active; concurrent requests are rejected, not queued.
type Trainer struct {
	prefs     PreferenceRepository
	purchases PurchaseRepository
	builder   *VectorBuilder
	engine    *RecommendationEngine
	cfg       Config

	modelPath  string
	pruneStale bool

	isTraining atomic.Bool

	mu               sync.Mutex
	lastTrainingTime *time.Time
	stats            domain.TrainingStats
}

func NewTrainer(
	prefs PreferenceRepository,
	purchases PurchaseRepository,
	builder *VectorBuilder,
	engine *RecommendationEngine,
	cfg Config,
	modelPath string,
	pruneStale bool,
) *Trainer {
	return &Trainer{
		prefs:      prefs,
		purchases:  purchases,
		builder:    builder,
		engine:     engine,
		cfg:        cfg,
		modelPath:  modelPath,
		pruneStale: pruneStale,
	}
}

type trainingRecord struct {
	userID    uint
	vector    []float64
	synthetic bool
}

// TrainAsync starts a training run in the background. Returns
// ErrTrainingInProgress when another run holds the flag.
func (t *Trainer) TrainAsync() error {
	if !t.isTraining.CompareAndSwap(false, true) {
		return ErrTrainingInProgress
	}

	go func() {
		defer t.isTraining.Store(false)

		runID := uuid.NewString()
		logger.Info("training run started", "run_id", runID)

		if err := t.train(context.Background(), runID); err != nil {
			TrainingRunsTotal.WithLabelValues("failure").Inc()
			logger.Error("training run failed", "run_id", runID, "error", err)
			return
		}

		TrainingRunsTotal.WithLabelValues("success").Inc()
		logger.Info("training run completed", "run_id", runID)
	}()

	return nil
}

// Train runs a training pass synchronously. Callers that need the concurrency
// guard should go through TrainAsync.
func (t *Trainer) Train(ctx context.Context) error {
	if !t.isTraining.CompareAndSwap(false, true) {
		return ErrTrainingInProgress
	}
	defer t.isTraining.Store(false)

	return t.train(ctx, uuid.NewString())
}

func (t *Trainer) train(ctx context.Context, runID string) error {
	start := time.Now()

	records, err := t.gatherTrainingRecords(ctx)
	if err != nil {
		return err
	}

	syntheticCount := 0
	if len(records) < t.cfg.MinUsersForTraining {
		if t.cfg.StrictTrainingData {
			return fmt.Errorf("%w: have %d users, need %d",
				ErrInsufficientTrainingData, len(records), t.cfg.MinUsersForTraining)
		}

		need := t.cfg.MinUsersForTraining - len(records)
		synthetic := t.generateSyntheticRecords(need)
		records = append(records, synthetic...)
		syntheticCount = len(synthetic)
		logger.Warn("training data below minimum, topped up with synthetic users",
			"run_id", runID, "real", len(records)-syntheticCount, "synthetic", syntheticCount)
	}

	if len(records) == 0 {
		return fmt.Errorf("%w: no usable training records", ErrInsufficientTrainingData)
	}

	model, err := t.buildModel(records)
	if err != nil {
		return err
	}

	t.engine.ReplaceModel(model)

	if err := model.Save(t.modelPath); err != nil {
		return fmt.Errorf("persist model snapshot: %w", err)
	}

	duration := time.Since(start)
	now := time.Now()

	t.mu.Lock()
	t.lastTrainingTime = &now
	t.stats = domain.TrainingStats{
		UsersTrained:      len(records),
		SyntheticUsers:    syntheticCount,
		NumClusters:       len(model.Centroids),
		FeatureDimensions: Dim(),
		DurationSeconds:   duration.Seconds(),
	}
	t.mu.Unlock()

	logger.Info("model trained",
		"run_id", runID,
		"users", len(records),
		"synthetic", syntheticCount,
		"clusters", len(model.Centroids),
		"duration", duration,
	)

	return nil
}

// gatherTrainingRecords builds one vector per known user, preferring the
// stored normalized preference vector and falling back to a rebuild from
// purchase history.
func (t *Trainer) gatherTrainingRecords(ctx context.Context) ([]trainingRecord, error) {
	prefIDs, err := t.prefs.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list preference users: %w", err)
	}
	purchaseIDs, err := t.purchases.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchasing users: %w", err)
	}

	seen := make(map[uint]struct{}, len(prefIDs)+len(purchaseIDs))
	ordered := make([]uint, 0, len(prefIDs)+len(purchaseIDs))
	for _, id := range append(append([]uint{}, prefIDs...), purchaseIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	records := make([]trainingRecord, 0, len(ordered))
	for _, id := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context error: %w", err)
		}

		state, err := t.prefs.GetState(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load preference state for user %d: %w", id, err)
		}
		if state != nil && len(state.Vector) == Dim() {
			records = append(records, trainingRecord{userID: id, vector: state.Vector})
			continue
		}

		history, err := t.purchases.FindByUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load purchase history for user %d: %w", id, err)
		}
		if len(history) == 0 {
			continue
		}
		vec := t.builder.BuildUserVectorFromHistory(history).ToArray()
		records = append(records, trainingRecord{userID: id, vector: vec})
	}

	return records, nil
}

// buildModel standardizes the user matrix and partitions it with the library
// k-means routine. Cluster count is capped by the number of users; with fewer
// than two effective clusters everyone lands in cluster 0.
func (t *Trainer) buildModel(records []trainingRecord) (*Model, error) {
	dim := Dim()

	means := make([]float64, dim)
	stds := make([]float64, dim)
	for _, r := range records {
		for i, x := range r.vector {
			means[i] += x
		}
	}
	n := float64(len(records))
	for i := range means {
		means[i] /= n
	}
	for _, r := range records {
		for i, x := range r.vector {
			d := x - means[i]
			stds[i] += d * d
		}
	}
	for i := range stds {
		stds[i] = math.Sqrt(stds[i] / n)
	}

	standardize := func(vec []float64) clusters.Coordinates {
		out := make(clusters.Coordinates, dim)
		for i, x := range vec {
			if stds[i] > 0 {
				out[i] = (x - means[i]) / stds[i]
			}
		}
		return out
	}

	model := &Model{
		FeatureSpace:       append([]string(nil), featureNames...),
		TrainedAt:          time.Now(),
		UserIDs:            make([]uint, 0, len(records)),
		UserVectors:        make(map[uint][]float64, len(records)),
		ClusterAssignments: make(map[uint]int, len(records)),
		FeatureMeans:       means,
		FeatureStds:        stds,
	}

	observations := make(clusters.Observations, 0, len(records))
	for _, r := range records {
		model.UserIDs = append(model.UserIDs, r.userID)
		model.UserVectors[r.userID] = r.vector
		observations = append(observations, standardize(r.vector))
	}

	k := t.cfg.NumClusters
	if k > len(records) {
		k = len(records)
	}
	if k < 2 {
		model.Centroids = [][]float64{means}
		for _, r := range records {
			model.ClusterAssignments[r.userID] = 0
		}
		return model, nil
	}

	km := kmeans.New()
	parts, err := km.Partition(observations, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans partition: %w", err)
	}

	model.Centroids = make([][]float64, 0, len(parts))
	for _, c := range parts {
		model.Centroids = append(model.Centroids, append([]float64(nil), c.Center...))
	}

	for i, r := range records {
		model.ClusterAssignments[r.userID] = parts.Nearest(observations[i])
	}

	return model, nil
}

// LoadFromDisk restores the last snapshot into the engine. A missing snapshot
// leaves the engine untrained; an incompatible one is a fatal error. When the
// prune policy is enabled, users absent from the store are dropped explicitly.
func (t *Trainer) LoadFromDisk(ctx context.Context) error {
	model, err := LoadModel(t.modelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no model snapshot found, starting untrained", "path", t.modelPath)
			return nil
		}
		return err
	}

	if t.pruneStale {
		known, err := t.knownUserSet(ctx)
		if err != nil {
			return fmt.Errorf("resolve known users for pruning: %w", err)
		}
		if pruned := model.PruneUsers(known); pruned > 0 {
			logger.Info("pruned stale users from loaded model", "pruned", pruned)
			if err := model.Save(t.modelPath); err != nil {
				return fmt.Errorf("save pruned model: %w", err)
			}
		}
	}

	t.engine.ReplaceModel(model)
	logger.Info("model snapshot loaded",
		"path", t.modelPath,
		"users", model.UserCount(),
		"trained_at", model.TrainedAt,
	)

	return nil
}

func (t *Trainer) knownUserSet(ctx context.Context) (map[uint]struct{}, error) {
	prefIDs, err := t.prefs.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	purchaseIDs, err := t.purchases.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[uint]struct{}, len(prefIDs)+len(purchaseIDs))
	for _, id := range prefIDs {
		known[id] = struct{}{}
	}
	for _, id := range purchaseIDs {
		known[id] = struct{}{}
	}
	return known, nil
}

// Status reports the current training flag and last-run stats.
func (t *Trainer) Status() domain.TrainingStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return domain.TrainingStatus{
		IsTraining:       t.isTraining.Load(),
		LastTrainingTime: t.lastTrainingTime,
		Stats:            t.stats,
	}
}
