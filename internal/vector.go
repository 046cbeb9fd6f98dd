package internal

import (
	"context"
	"fmt"
)

const (
	IndexAnnoy = "annoy"
	IndexFlat  = "flat"
)

// VectorIndex is filled with Add, sealed with Build, then only searched.
type VectorIndex interface {
	Add(ctx context.Context, chunk Chunk, vec []float32) error
	Build(ctx context.Context) error
	Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error)
	Len() int
	Dimension() int
}

// IndexFactory creates an empty index for vectors of the given dimension.
type IndexFactory func(dimension int) (VectorIndex, error)

func NewIndexFactory(cfg IndexConfig) (IndexFactory, error) {
	switch cfg.Backend {
	case IndexAnnoy:
		trees := cfg.Trees
		return func(dim int) (VectorIndex, error) {
			return NewAnnoyIndex(dim, trees)
		}, nil
	case IndexFlat:
		return func(dim int) (VectorIndex, error) {
			return NewFlatIndex(dim), nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
