package facematch

import "math"

// EuclideanDistance computes the Euclidean distance between two descriptors.
// Returns +Inf for vectors of different or zero length.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}

	return math.Sqrt(sum)
}

// Distances computes the distance from observed to every gallery embedding,
// in gallery order.
func Distances(embeddings [][]float32, observed []float32) []float64 {
	distances := make([]float64, len(embeddings))
	for i, e := range embeddings {
		distances[i] = EuclideanDistance(e, observed)
	}
	return distances
}
