package list

import (
	"math"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

// ComputeOverall returns the rounded arithmetic mean of whichever axis scores
// are non-nil, or nil when none are. Rounding is half away from zero
// (math.Round), so 7.5 becomes 8. Range validation happens at the API
// boundary, not here.
func ComputeOverall(story, art, sound, characters, enjoyment *int) *int {
	sum := 0
	n := 0
	for _, s := range []*int{story, art, sound, characters, enjoyment} {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	v := int(math.Round(float64(sum) / float64(n)))
	return &v
}

// recomputeOverall refreshes the derived score from the entry's current axis
// values. Called unconditionally after any mutation that could touch an axis.
func recomputeOverall(e *models.ListEntry) {
	e.ComputedOverall = ComputeOverall(
		e.ScoreStory, e.ScoreArt, e.ScoreSound, e.ScoreCharacters, e.ScoreEnjoyment,
	)
}
