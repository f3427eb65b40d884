package domain

import "time"

// TrainingStats summarizes the most recent completed training run.
type TrainingStats struct {
	UsersTrained      int     `json:"users_trained"`
	SyntheticUsers    int     `json:"synthetic_users"`
	NumClusters       int     `json:"num_clusters"`
	FeatureDimensions int     `json:"feature_dimensions"`
	DurationSeconds   float64 `json:"duration_seconds"`
}

// TrainingStatus is what the training-status endpoint reports.
type TrainingStatus struct {
	IsTraining       bool          `json:"is_training"`
	LastTrainingTime *time.Time    `json:"last_training_time"`
	Stats            TrainingStats `json:"stats"`
}
