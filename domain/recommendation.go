package domain

// ScoredCandidate is the transient per-request scoring record for one product.
type ScoredCandidate struct {
	Product    Product `json:"product"`
	Similarity float64 `json:"similarity"`
	Novelty    float64 `json:"novelty"`
	Score      float64 `json:"score"`
}
