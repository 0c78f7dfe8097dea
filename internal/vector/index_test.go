package vector

import (
	"context"
	"testing"
)

func TestFlatIndexSearchOrdersByDistance(t *testing.T) {
	idx, err := NewFlatIndex(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	vecs := [][]float32{
		{0, 1, 0},
		{1, 0, 0},
		{0.9, 0.1, 0},
	}
	if err := idx.Add(ctx, vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Ordinal != 1 {
		t.Errorf("nearest should be ordinal 1, got %d", results[0].Ordinal)
	}
	if results[1].Ordinal != 2 {
		t.Errorf("second should be ordinal 2, got %d", results[1].Ordinal)
	}
	if results[0].Distance > results[1].Distance {
		t.Error("distances not ascending")
	}
}

func TestFlatIndexKLargerThanSize(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	ctx := context.Background()
	_ = idx.Add(ctx, [][]float32{{1, 0}, {0, 1}})
	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 results, got %d", len(results))
	}
}

func TestFlatIndexEmpty(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestFlatIndexDimensionMismatch(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	ctx := context.Background()
	if err := idx.Add(ctx, [][]float32{{1, 0}}); err == nil {
		t.Error("expected add dimension error")
	}
	if _, err := idx.Search(ctx, []float32{1, 0}, 1); err == nil {
		t.Error("expected search dimension error")
	}
}

func TestNewSubIndex(t *testing.T) {
	sub, err := NewSubIndex(2, [][]float32{{0, 1}, {1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	results, err := sub.Search(context.Background(), []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Ordinal != 1 {
		t.Errorf("got %v", results)
	}
}

func TestSquaredL2(t *testing.T) {
	if d := SquaredL2([]float32{0, 0}, []float32{3, 4}); d != 25 {
		t.Errorf("got %v", d)
	}
	if d := SquaredL2([]float32{1, 2}, []float32{1, 2}); d != 0 {
		t.Errorf("got %v", d)
	}
}
