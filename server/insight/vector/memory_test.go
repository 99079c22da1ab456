package vector

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inserr "github.com/voxmetrics/callsight/internal/errors"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero left", []float32{0, 0}, []float32{1, 0}, 0.0},
		{"zero right", []float32{1, 0}, []float32{0, 0}, 0.0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine_Symmetry(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2}
	b := []float32{0.1, 0.5, -0.9}
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-9)
}

func TestMemoryIndex_Upsert(t *testing.T) {
	idx := NewMemoryIndex(2)

	require.NoError(t, idx.Upsert("c-1", []float32{1, 0}))
	assert.Equal(t, 1, idx.Len())

	// Upserting the same id replaces the vector, not adds a duplicate.
	require.NoError(t, idx.Upsert("c-1", []float32{0, 1}))
	assert.Equal(t, 1, idx.Len())

	results, ok := idx.QueryByID("c-1", 1, false)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMemoryIndex_UpsertErrors(t *testing.T) {
	idx := NewMemoryIndex(3)

	err := idx.Upsert("c-1", []float32{1, 0})
	require.Error(t, err)
	assert.True(t, inserr.IsCode(err, inserr.ErrCodeDimensionMismatch))

	err = idx.Upsert("", []float32{1, 0, 0})
	require.Error(t, err)
	assert.True(t, inserr.IsCode(err, inserr.ErrCodeInvalidArgument))

	assert.Equal(t, 0, idx.Len())
}

func TestMemoryIndex_UpsertCopiesVector(t *testing.T) {
	idx := NewMemoryIndex(2)
	vec := []float32{1, 0}
	require.NoError(t, idx.Upsert("c-1", vec))

	// Mutating the caller's slice must not corrupt the index.
	vec[0] = -1
	results := idx.Query([]float32{1, 0}, 1)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMemoryIndex_Query(t *testing.T) {
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert("a", []float32{1, 0}))
	require.NoError(t, idx.Upsert("b", []float32{0.9, 0.1}))
	require.NoError(t, idx.Upsert("c", []float32{-1, 0}))

	results, ok := idx.QueryByID("a", 2, true)
	require.True(t, ok)
	require.Len(t, results, 2)

	assert.Equal(t, "b", results[0].CallID)
	assert.InDelta(t, 0.9939, results[0].Score, 0.0001)
	assert.Equal(t, "c", results[1].CallID)
	assert.InDelta(t, -1.0, results[1].Score, 1e-6)
}

func TestMemoryIndex_QueryIncludesSelf(t *testing.T) {
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert("a", []float32{1, 0}))
	require.NoError(t, idx.Upsert("b", []float32{0, 1}))

	results, ok := idx.QueryByID("a", 2, false)
	require.True(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].CallID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestMemoryIndex_QueryTieBreak(t *testing.T) {
	idx := NewMemoryIndex(2)
	// Same direction, different magnitude: identical cosine scores.
	require.NoError(t, idx.Upsert("z", []float32{2, 0}))
	require.NoError(t, idx.Upsert("a", []float32{1, 0}))
	require.NoError(t, idx.Upsert("m", []float32{3, 0}))

	results := idx.Query([]float32{1, 0}, 3)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].CallID)
	assert.Equal(t, "m", results[1].CallID)
	assert.Equal(t, "z", results[2].CallID)
}

func TestMemoryIndex_QueryKBounds(t *testing.T) {
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert("a", []float32{1, 0}))
	require.NoError(t, idx.Upsert("b", []float32{0, 1}))

	// k larger than the population returns everything available.
	results, ok := idx.QueryByID("a", 10, true)
	require.True(t, ok)
	assert.Len(t, results, 1)

	// Non-positive k yields no results.
	assert.Nil(t, idx.Query([]float32{1, 0}, 0))
	assert.Nil(t, idx.Query([]float32{1, 0}, -1))

	// Wrong-dimension query vector yields no results, not a panic.
	assert.Nil(t, idx.Query([]float32{1, 0, 0}, 2))
}

func TestMemoryIndex_QueryByIDUnknown(t *testing.T) {
	idx := NewMemoryIndex(2)
	results, ok := idx.QueryByID("missing", 5, true)
	assert.False(t, ok)
	assert.Nil(t, results)
}

func TestMemoryIndex_ZeroVector(t *testing.T) {
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert("zero", []float32{0, 0}))
	require.NoError(t, idx.Upsert("unit", []float32{1, 0}))

	results := idx.Query([]float32{1, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "unit", results[0].CallID)
	assert.Equal(t, "zero", results[1].CallID)
	assert.InDelta(t, 0.0, results[1].Score, 1e-9)
}

func TestMemoryIndex_Remove(t *testing.T) {
	idx := NewMemoryIndex(2)
	require.NoError(t, idx.Upsert("a", []float32{1, 0}))

	idx.Remove("a")
	assert.Equal(t, 0, idx.Len())

	// Removing an unknown id is a no-op.
	idx.Remove("missing")
	assert.Equal(t, 0, idx.Len())
}

func TestMemoryIndex_ConcurrentAccess(t *testing.T) {
	idx := NewMemoryIndex(2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = idx.Upsert(fmt.Sprintf("c-%d-%d", n, j), []float32{1, float32(j)})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				idx.Query([]float32{1, 0}, 5)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, idx.Len())
}
