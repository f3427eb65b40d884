package recommend

import (
	"artMarket/domain"
)

// VectorBuilder converts catalog products, purchase histories and free-form
// preference maps into feature vectors. It never fails: malformed or missing
// fields map to neutral defaults.
type VectorBuilder struct{}

func NewVectorBuilder() *VectorBuilder {
	return &VectorBuilder{}
}

// BuildProductVector builds the dense feature vector for a catalog product.
// Deterministic: the same product always yields the same vector.
func (b *VectorBuilder) BuildProductVector(product domain.Product) FeatureVector {
	v := NewFeatureVector()

	for _, cat := range product.Categories {
		if _, ok := categorySet[cat]; ok {
			v["cat_"+cat] = 1.0
		}
	}
	for _, tech := range product.Techniques {
		if _, ok := techniqueSet[tech]; ok {
			v["tech_"+tech] = 1.0
		}
	}

	v["price_sensitivity"] = priceToSensitivity(product.Price)
	v["modern_traditional"] = productStyleScore(product)

	return v
}

// BuildUserVectorFromHistory derives a user's taste vector from their
// purchase history. The result is L1-normalized; an empty history yields the
// small-uniform default vector.
func (b *VectorBuilder) BuildUserVectorFromHistory(purchases []domain.PurchaseEvent) FeatureVector {
	if len(purchases) == 0 {
		return b.DefaultVector()
	}

	v := NewFeatureVector()

	totalSpent := 0.0
	seenCategories := make(map[string]struct{})
	seenTechniques := make(map[string]struct{})

	for _, p := range purchases {
		totalSpent += p.TotalPaid

		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}

		for _, cat := range p.Categories {
			if _, ok := categorySet[cat]; ok {
				v["cat_"+cat] += float64(qty) * 0.1
				seenCategories[cat] = struct{}{}
			}
		}
		for _, tech := range p.Techniques {
			if _, ok := techniqueSet[tech]; ok {
				v["tech_"+tech] += float64(qty) * 0.1
				seenTechniques[tech] = struct{}{}
			}
		}
	}

	addBehavioralFeatures(v, len(purchases), totalSpent, seenCategories, seenTechniques)

	v = l1Normalize(v)
	if sum(v) == 0 {
		return b.DefaultVector()
	}
	return v
}

// DefaultVector is the small-uniform vector assigned to users with no signal.
func (b *VectorBuilder) DefaultVector() FeatureVector {
	v := NewFeatureVector()
	for name := range v {
		v[name] = 0.01
	}
	return l1Normalize(v)
}

func addBehavioralFeatures(
	v FeatureVector,
	purchaseCount int,
	totalSpent float64,
	seenCategories map[string]struct{},
	seenTechniques map[string]struct{},
) {
	if purchaseCount > 0 {
		avgSpend := totalSpent / float64(purchaseCount)
		v["purchase_frequency"] = minF(float64(purchaseCount)/20.0, 1.0)
		v["avg_purchase_value"] = minF(avgSpend/2000.0, 1.0)

		switch {
		case avgSpend < 200:
			v["price_sensitivity"] = 0.9
		case avgSpend < 500:
			v["price_sensitivity"] = 0.6
		case avgSpend < 1000:
			v["price_sensitivity"] = 0.3
		default:
			v["price_sensitivity"] = 0.1
		}
	}

	v["category_diversity"] = float64(len(seenCategories)) / float64(len(Categories))
	v["technique_exploration"] = float64(len(seenTechniques)) / float64(len(Techniques))

	modernCount := countIn(modernCategories, seenCategories)
	traditionalCount := countIn(traditionalCategories, seenCategories)
	if modernCount+traditionalCount > 0 {
		v["modern_traditional"] = float64(modernCount) / float64(modernCount+traditionalCount)
	} else {
		v["modern_traditional"] = 0.5
	}

	brightCount := countIn(brightTechniques, seenTechniques)
	mutedCount := countIn(mutedTechniques, seenTechniques)
	if brightCount+mutedCount > 0 {
		v["color_preference"] = float64(brightCount) / float64(brightCount+mutedCount)
	} else {
		v["color_preference"] = 0.5
	}
}

// priceToSensitivity maps a product price onto the sensitivity feature.
// Cheaper products appeal to more price-sensitive buyers.
func priceToSensitivity(price float64) float64 {
	if price <= 0 {
		return 0.5
	}
	switch {
	case price < 100:
		return 0.9
	case price < 300:
		return 0.7
	case price < 600:
		return 0.5
	case price < 1000:
		return 0.3
	default:
		return 0.1
	}
}

func productStyleScore(product domain.Product) float64 {
	cats := make(map[string]struct{}, len(product.Categories))
	for _, c := range product.Categories {
		cats[c] = struct{}{}
	}

	modernCount := countIn(modernCategories, cats)
	traditionalCount := countIn(traditionalCategories, cats)
	if modernCount+traditionalCount == 0 {
		return 0.5
	}
	return float64(modernCount) / float64(modernCount+traditionalCount)
}

func sum(v FeatureVector) float64 {
	total := 0.0
	for _, val := range v {
		total += val
	}
	return total
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
