package lexical

import (
	"math"
	"sort"
)

type sparseVector struct {
	Indices []int32
	Values  []float64
}

func (v sparseVector) empty() bool {
	return len(v.Indices) == 0
}

// dot assumes both index slices are sorted ascending.
func dot(a, b sparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// weigh turns raw counts into an L2-normalised tf-idf vector.
func weigh(counts map[int32]float64, idf []float64) sparseVector {
	if len(counts) == 0 {
		return sparseVector{}
	}
	indices := make([]int32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * idf[idx]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return sparseVector{}
	}
	for i := range values {
		values[i] /= norm
	}
	return sparseVector{Indices: indices, Values: values}
}
