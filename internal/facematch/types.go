// Package facematch provides the face matching rules shared between the
// capture loop, the gallery loader and the CLI.
package facematch

import "github.com/kozaktomas/face-attendance/internal/constants"

// Gallery holds the registered identities as parallel lists.
// Names[i] is the label of Embeddings[i].
type Gallery struct {
	Names      []string
	Embeddings [][]float32
}

// Add appends an identity to the gallery.
func (g *Gallery) Add(name string, embedding []float32) {
	g.Names = append(g.Names, name)
	g.Embeddings = append(g.Embeddings, embedding)
}

// Len returns the number of registered identities.
func (g *Gallery) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Names)
}

// Result is the outcome of matching one observed face against the gallery.
type Result struct {
	Name     string  `json:"name"`
	Index    int     `json:"index"`    // gallery index of the nearest entry, -1 for an empty gallery
	Distance float64 `json:"distance"` // distance to the nearest entry
	Known    bool    `json:"known"`    // nearest distance is under the tolerance
}

// unknownResult is returned when nothing in the gallery is close enough.
func unknownResult(index int, distance float64) Result {
	return Result{Name: constants.UnknownName, Index: index, Distance: distance}
}

// FaceState classifies a detected face for display purposes
type FaceState string

const (
	StateNew     FaceState = "new"     // identified, first sighting today
	StateMarked  FaceState = "marked"  // identified, already recorded earlier today
	StateUnknown FaceState = "unknown" // not identified
)
