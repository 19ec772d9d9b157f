package featurize

import (
	"math"
	"sort"
)

// SparseVector holds non-zero entries ordered by ascending index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

func NewSparseVector(counts map[int]float64) SparseVector {
	indices := make([]int, 0, len(counts))
	for idx, v := range counts {
		if v != 0 {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx]
	}

	return SparseVector{Indices: indices, Values: values}
}

func (v SparseVector) Len() int {
	return len(v.Indices)
}

func (v SparseVector) Get(index int) float64 {
	i := sort.SearchInts(v.Indices, index)
	if i < len(v.Indices) && v.Indices[i] == index {
		return v.Values[i]
	}
	return 0
}

func (v SparseVector) Norm() float64 {
	sum := 0.0
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func (v SparseVector) Normalize() SparseVector {
	n := v.Norm()
	if n == 0 {
		return v
	}

	values := make([]float64, len(v.Values))
	for i, x := range v.Values {
		values[i] = x / n
	}
	return SparseVector{Indices: v.Indices, Values: values}
}
