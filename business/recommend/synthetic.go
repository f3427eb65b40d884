package recommend

import (
	"math/rand"
	"time"

	"artMarket/domain"

	"gorm.io/datatypes"
)

// syntheticBaseUserID keeps generated users clear of real account IDs.
const syntheticBaseUserID = 100000

// archetype describes a synthetic buyer profile used to top up sparse
// training sets: which part of the catalog they buy from and in what price
// range.
type archetype struct {
	name       string
	categories []string
	techniques []string
	priceMin   float64
	priceMax   float64
}

var archetypes = []archetype{
	{
		name:       "traditional_collector",
		categories: []string{"Realist", "Historical", "Religious"},
		techniques: []string{"Oil", "Tempera"},
		priceMin:   500, priceMax: 2000,
	},
	{
		name:       "modern_art_lover",
		categories: []string{"Abstract", "Contemporary", "Conceptual"},
		techniques: []string{"Acrylic", "Mixed", "Digital"},
		priceMin:   200, priceMax: 800,
	},
	{
		name:       "eclectic_buyer",
		categories: []string{"Impressionist", "Decorative", "Expressionist"},
		techniques: []string{"Watercolor", "Oil", "Acrylic"},
		priceMin:   100, priceMax: 600,
	},
	{
		name:       "budget_decorator",
		categories: []string{"Decorative", "Realist"},
		techniques: []string{"Watercolor", "Ink"},
		priceMin:   50, priceMax: 300,
	},
}

// generateSyntheticRecords fabricates n users by cycling through the
// archetypes and building each vector from a sampled purchase history, the
// same path real users take. Generation is seeded so repeated runs over the
// same sparse store produce the same model.
func (t *Trainer) generateSyntheticRecords(n int) []trainingRecord {
	rng := rand.New(rand.NewSource(int64(syntheticBaseUserID)))

	records := make([]trainingRecord, 0, n)
	for i := 0; i < n; i++ {
		arch := archetypes[i%len(archetypes)]
		userID := uint(syntheticBaseUserID + i)

		history := syntheticHistory(rng, userID, arch)
		vec := t.builder.BuildUserVectorFromHistory(history).ToArray()

		records = append(records, trainingRecord{
			userID:    userID,
			vector:    vec,
			synthetic: true,
		})
	}

	return records
}

// syntheticHistory samples a gaussian number of purchases (mean 5, sd 3,
// floor 1) matching the archetype's tastes.
func syntheticHistory(rng *rand.Rand, userID uint, arch archetype) []domain.PurchaseEvent {
	count := int(rng.NormFloat64()*3 + 5)
	if count < 1 {
		count = 1
	}

	events := make([]domain.PurchaseEvent, 0, count)
	for i := 0; i < count; i++ {
		price := arch.priceMin + rng.Float64()*(arch.priceMax-arch.priceMin)
		qty := 1 + rng.Intn(3)

		category := arch.categories[rng.Intn(len(arch.categories))]
		technique := arch.techniques[rng.Intn(len(arch.techniques))]

		events = append(events, domain.PurchaseEvent{
			UserID:       userID,
			Quantity:     qty,
			TotalPaid:    price * float64(qty),
			Categories:   datatypes.JSONSlice[string]{category},
			Techniques:   datatypes.JSONSlice[string]{technique},
			PurchaseDate: time.Now().AddDate(0, 0, -rng.Intn(365)),
		})
	}

	return events
}
