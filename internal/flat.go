package internal

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
)

var _ VectorIndex = (*FlatIndex)(nil)

// FlatIndex scores every chunk by cosine similarity. Exact, O(n) per query.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	chunks    []Chunk
	vectors   [][]float32
	built     bool
}

func NewFlatIndex(dimension int) *FlatIndex {
	return &FlatIndex{dimension: dimension}
}

func (f *FlatIndex) Add(ctx context.Context, chunk Chunk, vec []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.built {
		return ErrIndexSealed
	}
	if len(vec) != f.dimension {
		return fmt.Errorf("%w: dimension mismatch: expected %d, got %d", ErrMalformedResponse, f.dimension, len(vec))
	}

	f.chunks = append(f.chunks, chunk)
	f.vectors = append(f.vectors, slices.Clone(vec))
	return nil
}

func (f *FlatIndex) Build(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.built {
		return ErrIndexSealed
	}
	f.built = true
	return nil
}

func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.built {
		return nil, ErrIndexNotBuilt
	}
	if len(f.chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != f.dimension {
		return nil, fmt.Errorf("%w: query dimension mismatch: expected %d, got %d", ErrMalformedResponse, f.dimension, len(query))
	}

	results := make([]ScoredChunk, len(f.chunks))
	for i, vec := range f.vectors {
		results[i] = ScoredChunk{Chunk: f.chunks[i], Score: Cosine(query, vec)}
	}

	// Stable: equal scores keep indexing order.
	slices.SortStableFunc(results, func(a, b ScoredChunk) int {
		return cmp.Compare(b.Score, a.Score)
	})

	k = min(k, len(results))
	if k < 0 {
		k = 0
	}
	return results[:k], nil
}

func (f *FlatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.chunks)
}

func (f *FlatIndex) Dimension() int {
	return f.dimension
}

// Cosine returns 0 for mismatched or zero-length vectors.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
