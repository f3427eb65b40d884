package recommend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Model is the persisted artifact of a training run: the feature space it was
// built against, every trained user vector (in insertion order), cluster
// assignments and the opaque clustering parameters (centroids plus the
// standardization moments).
type Model struct {
	FeatureSpace       []string           `json:"feature_space"`
	TrainedAt          time.Time          `json:"trained_at"`
	UserIDs            []uint             `json:"user_ids"`
	UserVectors        map[uint][]float64 `json:"user_vectors"`
	ClusterAssignments map[uint]int       `json:"cluster_assignments"`
	Centroids          [][]float64        `json:"centroids"`
	FeatureMeans       []float64          `json:"feature_means"`
	FeatureStds        []float64          `json:"feature_stds"`
}

// Save writes the snapshot as JSON. The write goes through a temp file and
// rename so a crashed save never leaves a truncated snapshot behind.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write model snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace model snapshot: %w", err)
	}

	return nil
}

// LoadModel reads a snapshot and verifies it was built against the current
// feature space. A mismatch in length or order is ErrModelIncompatible:
// silently reinterpreting the vectors would corrupt every score.
func LoadModel(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model snapshot: %w", err)
	}

	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal model snapshot: %w", err)
	}

	if len(m.FeatureSpace) != len(featureNames) {
		return nil, fmt.Errorf("snapshot has %d features, current space has %d: %w",
			len(m.FeatureSpace), len(featureNames), ErrModelIncompatible)
	}
	for i, name := range featureNames {
		if m.FeatureSpace[i] != name {
			return nil, fmt.Errorf("snapshot feature %d is %q, expected %q: %w",
				i, m.FeatureSpace[i], name, ErrModelIncompatible)
		}
	}

	if m.UserVectors == nil {
		m.UserVectors = make(map[uint][]float64)
	}
	if m.ClusterAssignments == nil {
		m.ClusterAssignments = make(map[uint]int)
	}
	// Older snapshots may lack the explicit ordering; reconstruct a stable one.
	if len(m.UserIDs) == 0 && len(m.UserVectors) > 0 {
		for id := range m.UserVectors {
			m.UserIDs = append(m.UserIDs, id)
		}
		sort.Slice(m.UserIDs, func(i, j int) bool { return m.UserIDs[i] < m.UserIDs[j] })
	}

	return &m, nil
}

// HasUser reports whether the user was part of the training run.
func (m *Model) HasUser(userID uint) bool {
	_, ok := m.UserVectors[userID]
	return ok
}

// UserCount returns the number of trained users.
func (m *Model) UserCount() int {
	return len(m.UserVectors)
}

// SimilarUsers ranks all other trained users by cosine similarity to the
// given user, ties broken by insertion order. Unknown users yield an empty
// slice rather than an error.
func (m *Model) SimilarUsers(userID uint, limit int) []uint {
	target, ok := m.UserVectors[userID]
	if !ok || limit <= 0 {
		return []uint{}
	}

	type ranked struct {
		id  uint
		sim float64
	}

	candidates := make([]ranked, 0, len(m.UserIDs))
	for _, other := range m.UserIDs {
		if other == userID {
			continue
		}
		vec, ok := m.UserVectors[other]
		if !ok {
			continue
		}
		candidates = append(candidates, ranked{id: other, sim: Cosine(target, vec)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]uint, 0, limit)
	for _, c := range candidates[:limit] {
		out = append(out, c.id)
	}
	return out
}

// PruneUsers drops trained users absent from the given set and returns how
// many were removed. Membership repair is an explicit orchestrator decision;
// nothing in this package prunes implicitly.
func (m *Model) PruneUsers(known map[uint]struct{}) int {
	pruned := 0
	kept := m.UserIDs[:0]
	for _, id := range m.UserIDs {
		if _, ok := known[id]; ok {
			kept = append(kept, id)
			continue
		}
		delete(m.UserVectors, id)
		delete(m.ClusterAssignments, id)
		pruned++
	}
	m.UserIDs = kept
	return pruned
}
