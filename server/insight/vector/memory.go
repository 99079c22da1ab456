package vector

import (
	"sort"
	"sync"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

// MemoryIndex is the exact brute-force baseline Index: a read-mostly map
// behind a reader-writer lock. Upserts and removes are serialized;
// queries run concurrently with each other.
type MemoryIndex struct {
	mu      sync.RWMutex
	dim     int
	vectors map[string][]float32
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an index with the fixed dimension D.
func NewMemoryIndex(dim int) *MemoryIndex {
	return &MemoryIndex{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// Upsert inserts or replaces the vector for a call id in O(1) amortized.
// A dimension mismatch is a hard error for this single operation only.
func (m *MemoryIndex) Upsert(callID string, vec []float32) error {
	if callID == "" {
		return inserr.InvalidArgument("call id is empty")
	}
	if len(vec) != m.dim {
		return inserr.DimensionMismatch(m.dim, len(vec))
	}

	owned := make([]float32, len(vec))
	copy(owned, vec)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[callID] = owned
	return nil
}

// Remove deletes the vector for a call id; unknown ids are a no-op.
func (m *MemoryIndex) Remove(callID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, callID)
}

// Query scans every indexed vector and returns the k highest cosine
// scores, descending, ties by ascending call id.
func (m *MemoryIndex) Query(vec []float32, k int) []SimilarityResult {
	return m.query(vec, k, "")
}

// QueryByID queries with the indexed vector of the given call id.
func (m *MemoryIndex) QueryByID(callID string, k int, excludeSelf bool) ([]SimilarityResult, bool) {
	m.mu.RLock()
	vec, ok := m.vectors[callID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	exclude := ""
	if excludeSelf {
		exclude = callID
	}
	return m.query(vec, k, exclude), true
}

func (m *MemoryIndex) query(vec []float32, k int, exclude string) []SimilarityResult {
	if k <= 0 || len(vec) != m.dim {
		return nil
	}

	m.mu.RLock()
	results := make([]SimilarityResult, 0, len(m.vectors))
	for id, candidate := range m.vectors {
		if id == exclude {
			continue
		}
		results = append(results, SimilarityResult{
			CallID: id,
			Score:  Cosine(vec, candidate),
		})
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CallID < results[j].CallID
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Len returns the number of indexed vectors.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Dimension returns the fixed vector dimension D.
func (m *MemoryIndex) Dimension() int {
	return m.dim
}
