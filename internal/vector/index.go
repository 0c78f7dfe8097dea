// Package vector provides a flat vector index with exact L2 nearest-neighbor search.
package vector

import (
	"context"
	"fmt"
	"sort"
)

// Result is a single nearest-neighbor hit. Ordinal is the position of the
// vector in the order it was added (the corpus ordinal for the global index).
type Result struct {
	Ordinal  int
	Distance float64 // squared Euclidean distance, ascending is better
}

// FlatIndex is a brute-force exact nearest-neighbor index over dense vectors.
// Build it fully before querying: it is not synchronized, on the contract that
// the index is immutable once construction finishes and therefore safe for
// unsynchronized concurrent reads.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
}

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// NewSubIndex builds an ephemeral index over a caller-supplied set of vectors,
// e.g. a user's eligible schemes. Result ordinals refer to positions within
// that subset.
func NewSubIndex(dimensions int, vectors [][]float32) (*FlatIndex, error) {
	idx, err := NewFlatIndex(dimensions)
	if err != nil {
		return nil, err
	}
	if err := idx.Add(context.Background(), vectors); err != nil {
		return nil, err
	}
	return idx, nil
}

// Add appends vectors to the index. Only valid during construction.
func (x *FlatIndex) Add(ctx context.Context, vectors [][]float32) error {
	for _, v := range vectors {
		if len(v) != x.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(v), x.dimensions)
		}
		vec := make([]float32, x.dimensions)
		copy(vec, v)
		x.vectors = append(x.vectors, vec)
	}
	return nil
}

// Search returns up to k entries ordered by ascending squared L2 distance
// from the query.
func (x *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), x.dimensions)
	}
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}
	results := make([]Result, len(x.vectors))
	for i, vec := range x.vectors {
		results[i] = Result{Ordinal: i, Distance: SquaredL2(query, vec)}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Size returns the number of vectors in the index.
func (x *FlatIndex) Size() int {
	return len(x.vectors)
}

// SquaredL2 returns the squared Euclidean distance between two vectors of
// equal length.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return sum
}
