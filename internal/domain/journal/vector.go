package journal

import "math"

// PlaceholderDims is the dimensionality of the hashed fallback embedding.
const PlaceholderDims = 128

// Cosine returns the cosine similarity of two vectors, or 0 when either is
// empty, zero-length, or the dimensions differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// PlaceholderVector is a deterministic hashed embedding used when no
// embedding backend is configured. Same text, same vector.
func PlaceholderVector(text string) []float64 {
	v := make([]float64, PlaceholderDims)
	for _, r := range text {
		code := int(r)
		idx := code % PlaceholderDims
		v[idx] = math.Mod(v[idx]+float64(code%31)+1, 97)
	}
	return v
}
