package recommend

type Config struct {
	// Event betas: how strongly one event pulls the accumulator.
	ViewBeta     float64
	PurchaseBeta float64
	// Seconds of viewing that count as a full-weight view.
	ViewDurationCap float64

	// Blend weights for the final ranking score.
	SimilarityWeight float64
	NoveltyWeight    float64

	// Fallback ranking weights.
	PriceWeight float64
	StockWeight float64

	// Cold-start thresholds on the normalized user vector.
	ColdStartMaxValue float64
	ColdStartRange    float64
	// Minimum fallback pool to sample cold-start results from.
	ColdStartPool int

	// How many of the user's strongest categories count as "explored" for
	// the novelty score.
	TopCategories int

	// Training knobs.
	MinUsersForTraining int
	NumClusters         int
	// Abort on insufficient data instead of topping up with synthetic users.
	StrictTrainingData bool
}

const (
	defaultViewBeta         = 0.05
	defaultPurchaseBeta     = 0.5
	defaultViewDurationCap  = 300.0
	defaultSimilarityWeight = 0.7
	defaultNoveltyWeight    = 0.3
	defaultPriceWeight      = 0.6
	defaultStockWeight      = 0.4
	defaultColdStartMaxVal  = 0.05
	defaultColdStartRange   = 1e-3
	defaultColdStartPool    = 50
	defaultTopCategories    = 3
	defaultMinUsers         = 50
	defaultNumClusters      = 5
)

func DefaultConfig() Config {
	return Config{
		ViewBeta:            defaultViewBeta,
		PurchaseBeta:        defaultPurchaseBeta,
		ViewDurationCap:     defaultViewDurationCap,
		SimilarityWeight:    defaultSimilarityWeight,
		NoveltyWeight:       defaultNoveltyWeight,
		PriceWeight:         defaultPriceWeight,
		StockWeight:         defaultStockWeight,
		ColdStartMaxValue:   defaultColdStartMaxVal,
		ColdStartRange:      defaultColdStartRange,
		ColdStartPool:       defaultColdStartPool,
		TopCategories:       defaultTopCategories,
		MinUsersForTraining: defaultMinUsers,
		NumClusters:         defaultNumClusters,
	}
}
