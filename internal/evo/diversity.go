package evo

import "math"

// MeanPairwiseDistance computes the raw population diversity as the mean
// euclidean distance over all distinct pairs of vector genomes. Individuals
// without a vector genome are skipped. The second return is false when fewer
// than two vectors are present.
func MeanPairwiseDistance(pop []*Individual) (float64, bool) {
	vectors := make([][]float64, 0, len(pop))
	for _, ind := range pop {
		if ind.Vector != nil {
			vectors = append(vectors, ind.Vector.Values)
		}
	}
	if len(vectors) < 2 {
		return 0, false
	}

	var total float64
	pairs := 0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			total += euclidean(vectors[i], vectors[j])
			pairs++
		}
	}
	return total / float64(pairs), true
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
