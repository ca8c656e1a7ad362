package facematch

// Match identifies an observed descriptor against the gallery.
//
// The nearest gallery entry is accepted only when its distance is strictly
// below tolerance. Ties on the minimum distance go to the first entry in
// gallery order. An empty gallery always yields Unknown.
func Match(observed []float32, g *Gallery, tolerance float64) Result {
	if g.Len() == 0 {
		return unknownResult(-1, 0)
	}

	distances := Distances(g.Embeddings, observed)

	best := 0
	for i := 1; i < len(distances); i++ {
		if distances[i] < distances[best] {
			best = i
		}
	}

	if distances[best] < tolerance {
		return Result{
			Name:     g.Names[best],
			Index:    best,
			Distance: distances[best],
			Known:    true,
		}
	}
	return unknownResult(best, distances[best])
}
