package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/mariotoffia/goannoy/builder"
	"github.com/mariotoffia/goannoy/interfaces"
)

var _ VectorIndex = (*AnnoyIndex)(nil)

// AnnoyIndex is an approximate index over angular distance. Item ids are
// positions in chunks.
type AnnoyIndex struct {
	mu        sync.RWMutex
	idx       interfaces.AnnoyIndex[float32, uint32]
	dimension int
	numTrees  int
	chunks    []Chunk
	built     bool
}

func NewAnnoyIndex(dimension, numTrees int) (*AnnoyIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("annoy index: invalid dimension %d", dimension)
	}
	if numTrees <= 0 {
		numTrees = 10
	}

	idx := builder.Index[float32, uint32]().
		AngularDistance(dimension).
		UseMultiWorkerPolicy().
		Build()

	return &AnnoyIndex{
		idx:       idx,
		dimension: dimension,
		numTrees:  numTrees,
	}, nil
}

func (a *AnnoyIndex) Add(ctx context.Context, chunk Chunk, vec []float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.built {
		return ErrIndexSealed
	}
	if len(vec) != a.dimension {
		return fmt.Errorf("%w: dimension mismatch: expected %d, got %d", ErrMalformedResponse, a.dimension, len(vec))
	}

	id := uint32(len(a.chunks))
	a.idx.AddItem(id, vec)
	a.chunks = append(a.chunks, chunk)

	return nil
}

func (a *AnnoyIndex) Build(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.built {
		return ErrIndexSealed
	}
	if len(a.chunks) > 0 {
		a.idx.Build(a.numTrees, -1)
	}
	a.built = true
	return nil
}

func (a *AnnoyIndex) Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.built {
		return nil, ErrIndexNotBuilt
	}
	if len(a.chunks) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(query) != a.dimension {
		return nil, fmt.Errorf("%w: query dimension mismatch: expected %d, got %d", ErrMalformedResponse, a.dimension, len(query))
	}

	k = min(k, len(a.chunks))
	if k <= 0 {
		return nil, nil
	}

	searchCtx := a.idx.CreateContext()
	ids, distances := a.idx.GetNnsByVector(query, k, a.searchK(k), searchCtx)

	results := make([]ScoredChunk, 0, len(ids))
	for i, id := range ids {
		if int(id) >= len(a.chunks) {
			continue
		}

		// Angular distance is in [0, 2]; map it to a 0-1 score.
		var score float32
		if i < len(distances) {
			score = 1.0 - distances[i]/2.0
		}

		results = append(results, ScoredChunk{
			Chunk: a.chunks[id],
			Score: score,
		})
	}

	return results, nil
}

// searchK is the number of candidates inspected per query. It grows with the
// index so recall holds for book-sized corpora.
func (a *AnnoyIndex) searchK(k int) int {
	return max(k*a.numTrees, len(a.chunks))
}

func (a *AnnoyIndex) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.chunks)
}

func (a *AnnoyIndex) Dimension() int {
	return a.dimension
}
