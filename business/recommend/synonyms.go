package recommend

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Free-form preference keys ("watercolour", "portrait") are mapped onto the
// known vocabularies through, in priority order: direct normalized match,
// synonym lookup, substring containment. Unmatched keys are dropped.

var synonyms = map[string]string{
	"watercolour":  "Watercolor",
	"aquarelle":    "Watercolor",
	"oil_painting": "Oil",
	"acrylics":     "Acrylic",
	"digital_art":  "Digital",
	"ink_drawing":  "Ink",
	"mixed_media":  "Mixed",
	"abstract_art": "Abstract",
	"realism":      "Realist",
	"realistic":    "Realist",
	"classical":    "Historical",
	"landscape":    "Realist",
	"portrait":     "Realist",
	"sacred_art":   "Religious",
}

var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeKey case-folds, strips accents and replaces spaces with
// underscores so lookups tolerate common spelling variants.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	return strings.ReplaceAll(s, " ", "_")
}

var (
	normalizedCategories = normalizedLookup(Categories)
	normalizedTechniques = normalizedLookup(Techniques)
)

func normalizedLookup(names []string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[normalizeKey(n)] = n
	}
	return m
}

// BuildVectorFromPreferenceMap maps arbitrary preference keys onto the
// feature space and L1-normalizes by sum of absolute values. Total and
// deterministic: it never fails and identical input yields identical output.
func (b *VectorBuilder) BuildVectorFromPreferenceMap(prefs map[string]float64) FeatureVector {
	v := NewFeatureVector()

	for rawKey, val := range prefs {
		key := normalizeKey(rawKey)
		if feature, ok := resolvePreferenceKey(key); ok {
			v[feature] += val
		}
	}

	return l1NormalizeAbs(v)
}

func resolvePreferenceKey(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	if cat, ok := normalizedCategories[key]; ok {
		return "cat_" + cat, true
	}
	if tech, ok := normalizedTechniques[key]; ok {
		return "tech_" + tech, true
	}

	if canonical, ok := synonyms[key]; ok {
		cn := normalizeKey(canonical)
		if cat, ok := normalizedCategories[cn]; ok {
			return "cat_" + cat, true
		}
		if tech, ok := normalizedTechniques[cn]; ok {
			return "tech_" + tech, true
		}
	}

	// Substring fallback walks the vocabularies in declaration order so the
	// result does not depend on map iteration.
	for _, cat := range Categories {
		cn := normalizeKey(cat)
		if strings.Contains(key, cn) || strings.Contains(cn, key) {
			return "cat_" + cat, true
		}
	}
	for _, tech := range Techniques {
		tn := normalizeKey(tech)
		if strings.Contains(key, tn) || strings.Contains(tn, key) {
			return "tech_" + tech, true
		}
	}

	return "", false
}
