package compose

import (
	"fmt"
	"math/rand/v2"

	"github.com/Malifforas/music/pkg/theory"
)

// baseSteps is the step pool available under every chord.
var baseSteps = []int{1, 2, 3, 4, 5, 6}

// strongSteps extends the pool under tonic, subdominant, dominant and
// leading-tone chords. The repeated 6 doubles its weight.
var strongSteps = []int{6, 7, 8}

// isStrong reports whether a chord root is one of the structurally strong
// degrees (I, IV, V, vii).
func isStrong(root theory.LetterIndex) bool {
	switch root {
	case 0, 3, 4, 6:
		return true
	}
	return false
}

// stepPool returns the candidate steps under a chord root.
func stepPool(root theory.LetterIndex) []int {
	pool := make([]int, 0, len(baseSteps)+len(strongSteps))
	pool = append(pool, baseSteps...)
	if isStrong(root) {
		pool = append(pool, strongSteps...)
	}
	return pool
}

// MelodyEngine produces a melodic contour by a random walk over a scale,
// taking larger leaps more often under strong chords.
type MelodyEngine struct {
	rng    *rand.Rand
	length int
}

// NewMelodyEngine returns an engine producing MelodyLength events.
func NewMelodyEngine(rng *rand.Rand) *MelodyEngine {
	return &MelodyEngine{rng: rng, length: MelodyLength}
}

// Generate returns the melody for progression in scale. The first event is
// bare (no duration); the rest carry a duration from Durations.
//
// The walk position starts as a raw degree value and is reduced modulo the
// scale length after every step, so from the second note on it doubles as
// an alphabet index.
func (m *MelodyEngine) Generate(progression theory.Progression, scale string) ([]Event, error) {
	if len(progression) == 0 {
		return nil, fmt.Errorf("compose: melody needs a non-empty progression")
	}
	degrees, err := theory.Lookup(scale)
	if err != nil {
		return nil, err
	}

	melody := make([]Event, 0, m.length)

	current := int(degrees[m.rng.IntN(len(degrees))])
	melody = append(melody, Event{Note: theory.ChromaticDegree(current).LetterIndex().Letter()})

	for i := 1; i < m.length; i++ {
		sym := progression[m.rng.IntN(len(progression))]
		root, err := theory.DegreeIndex(sym)
		if err != nil {
			return nil, err
		}

		pool := stepPool(root)
		step := pool[m.rng.IntN(len(pool))]
		current = (current + step) % len(degrees)

		duration := Durations[m.rng.IntN(len(Durations))]
		melody = append(melody, Event{Note: theory.LetterIndex(current).Letter(), Duration: duration})
	}
	return melody, nil
}
