// Package vector provides the similarity index for call embeddings.
// The Index interface is the seam for swapping the exact brute-force
// baseline for an approximate-nearest-neighbor backend without touching
// callers.
package vector

import (
	"math"
)

// SimilarityResult is one neighbor of a similarity query, ordered
// descending by score with ties broken by ascending call id.
type SimilarityResult struct {
	CallID string
	// Score is the cosine similarity in [-1,1].
	Score float64
}

// Index maintains a mapping from call id to embedding and answers top-k
// cosine similarity queries.
type Index interface {
	// Upsert inserts or replaces the vector for a call id. A vector whose
	// length differs from the index dimension is rejected.
	Upsert(callID string, vec []float32) error

	// Remove deletes a vector. Removing an id that was never indexed is a
	// no-op.
	Remove(callID string)

	// Query returns the k most similar indexed vectors to the query
	// vector, descending by score, ties by ascending call id. Fewer than
	// k results is not an error.
	Query(vec []float32, k int) []SimilarityResult

	// QueryByID queries by an indexed call id. The second return is false
	// when the id is not indexed. With excludeSelf the id itself never
	// appears in its own result set.
	QueryByID(callID string, k int, excludeSelf bool) ([]SimilarityResult, bool)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimension returns the fixed vector dimension D.
	Dimension() int
}

// Cosine computes the cosine similarity between two equal-length vectors.
// A zero-norm operand has undefined cosine similarity (0/0); it is defined
// here as 0 so ordering and comparisons remain total.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
