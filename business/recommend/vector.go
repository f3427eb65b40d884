package recommend

import (
	"hash/fnv"
	"math"
)

// FeatureVector maps every feature name to a weight. Instances built by this
// package are always dense: all feature-space keys present, defaulting to 0.
type FeatureVector map[string]float64

// NewFeatureVector returns a zero vector with every feature-space key present.
func NewFeatureVector() FeatureVector {
	v := make(FeatureVector, len(featureNames))
	for _, name := range featureNames {
		v[name] = 0.0
	}
	return v
}

// ToArray converts the vector to a dense array in feature-space order.
// Missing keys read as 0.
func (v FeatureVector) ToArray() []float64 {
	arr := make([]float64, len(featureNames))
	for i, name := range featureNames {
		arr[i] = v[name]
	}
	return arr
}

// VectorFromArray converts a dense array back into a keyed vector. The two
// representations round-trip losslessly for arrays of the right length.
func VectorFromArray(arr []float64) FeatureVector {
	v := NewFeatureVector()
	for i, name := range featureNames {
		if i >= len(arr) {
			break
		}
		v[name] = arr[i]
	}
	return v
}

// l1Normalize divides every entry by the sum of all entries. A vector with
// zero sum is returned unchanged.
func l1Normalize(v FeatureVector) FeatureVector {
	total := 0.0
	for _, val := range v {
		total += val
	}
	if total <= 0 {
		return v
	}
	for name, val := range v {
		v[name] = val / total
	}
	return v
}

// l1NormalizeAbs divides by the sum of absolute values.
func l1NormalizeAbs(v FeatureVector) FeatureVector {
	total := 0.0
	for _, val := range v {
		total += math.Abs(val)
	}
	if total <= 0 {
		return v
	}
	for name, val := range v {
		v[name] = val / total
	}
	return v
}

// L2Normalize divides by the Euclidean norm. The zero vector is returned
// unchanged rather than erroring.
func L2Normalize(arr []float64) []float64 {
	norm := 0.0
	for _, x := range arr {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float64, len(arr))
	if norm == 0 {
		copy(out, arr)
		return out
	}
	for i, x := range arr {
		out[i] = x / norm
	}
	return out
}

// Cosine computes cosine similarity between two dense arrays. Zero vectors
// (or mismatched lengths) yield 0, never NaN.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func maxAndRange(arr []float64) (maxVal, valRange float64) {
	if len(arr) == 0 {
		return 0, 0
	}
	minVal := arr[0]
	maxVal = arr[0]
	for _, x := range arr[1:] {
		if x > maxVal {
			maxVal = x
		}
		if x < minVal {
			minVal = x
		}
	}
	return maxVal, maxVal - minVal
}

// hashVector deterministically hashes a dense vector into a seed. Used to size
// the cold-start sampling per user without shared randomness.
func hashVector(arr []float64) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, x := range arr {
		bits := math.Float64bits(x)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	return int64(h.Sum64())
}
