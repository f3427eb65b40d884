package recommend

// ColdStartDetector decides whether a user vector carries any discriminative
// signal. A near-uniform or near-zero vector scores almost identically
// against every candidate under cosine similarity, so ranking degenerates to
// input order; such users get a diversified fallback instead.
type ColdStartDetector struct {
	maxValueThreshold float64
	rangeThreshold    float64
}

func NewColdStartDetector(cfg Config) *ColdStartDetector {
	return &ColdStartDetector{
		maxValueThreshold: cfg.ColdStartMaxValue,
		rangeThreshold:    cfg.ColdStartRange,
	}
}

// IsCold classifies a dense user vector. Cold when the strongest feature is
// tiny or when all features sit in a near-flat band.
func (d *ColdStartDetector) IsCold(vector []float64) bool {
	maxVal, valRange := maxAndRange(vector)
	return maxVal < d.maxValueThreshold || valRange < d.rangeThreshold
}
