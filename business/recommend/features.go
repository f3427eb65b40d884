package recommend

// Fixed vocabularies for the art catalog. Feature-space order is derived from
// these lists, so changing them (or their order) invalidates every stored
// vector and persisted model snapshot.

var Categories = []string{
	"Realist", "Abstract", "Expressionist", "Impressionist", "Surrealist",
	"Conceptual", "Religious", "Historical", "Decorative", "Contemporary",
}

var Techniques = []string{
	"Oil", "Acrylic", "Watercolor", "Tempera", "Fresco",
	"Gouache", "Ink", "Mixed", "Spray", "Digital",
}

var derivedFeatures = []string{
	"price_sensitivity", "style_preference", "purchase_frequency",
	"avg_purchase_value", "category_diversity", "technique_exploration",
	"modern_traditional", "color_preference", "complexity_preference",
}

var (
	modernCategories      = toSet("Abstract", "Conceptual", "Contemporary", "Surrealist")
	traditionalCategories = toSet("Realist", "Religious", "Historical", "Impressionist")
	brightTechniques      = toSet("Acrylic", "Watercolor", "Spray", "Digital")
	mutedTechniques       = toSet("Oil", "Tempera", "Fresco")

	categorySet  = toSet(Categories...)
	techniqueSet = toSet(Techniques...)
)

var (
	featureNames []string
	featureIndex map[string]int
)

func init() {
	featureNames = make([]string, 0, len(Categories)+len(Techniques)+len(derivedFeatures))
	for _, cat := range Categories {
		featureNames = append(featureNames, "cat_"+cat)
	}
	for _, tech := range Techniques {
		featureNames = append(featureNames, "tech_"+tech)
	}
	featureNames = append(featureNames, derivedFeatures...)

	featureIndex = make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		featureIndex[name] = i
	}
}

// FeatureNames returns the ordered feature space. Callers must not mutate it.
func FeatureNames() []string {
	return featureNames
}

// Dim is the dimensionality of the feature space.
func Dim() int {
	return len(featureNames)
}

func toSet(items ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func countIn(set map[string]struct{}, items map[string]struct{}) int {
	n := 0
	for it := range items {
		if _, ok := set[it]; ok {
			n++
		}
	}
	return n
}
