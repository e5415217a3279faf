package compose

import (
	"fmt"

	"github.com/Malifforas/music/pkg/theory"
)

// harmonyOffsets are applied in order, one full pass over the melody each.
var harmonyOffsets = [2]int{2, 4}

// HarmonyEngine derives harmony notes from a melody by offsetting into the
// concatenated harmonic note sets of a progression.
type HarmonyEngine struct{}

// NewHarmonyEngine returns a HarmonyEngine.
func NewHarmonyEngine() *HarmonyEngine {
	return &HarmonyEngine{}
}

// Pool returns the harmonic notes of every chord in progression, in order.
func (HarmonyEngine) Pool(progression theory.Progression, scale string) ([]string, error) {
	pool := make([]string, 0, theory.AlphabetSize*len(progression))
	for _, sym := range progression {
		notes, err := theory.HarmonicNotes(sym, scale)
		if err != nil {
			return nil, err
		}
		pool = append(pool, notes...)
	}
	return pool, nil
}

// Generate returns 2×len(melody) events of HarmonyDuration each: a pass
// with offset 2 followed by a pass with offset 4. Bare melody entries are
// copied through unchanged.
func (h HarmonyEngine) Generate(melody []Event, progression theory.Progression, scale string) ([]Event, error) {
	pool, err := h.Pool(progression, scale)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("compose: empty harmonic pool")
	}

	harmony := make([]Event, 0, len(harmonyOffsets)*len(melody))
	for _, offset := range harmonyOffsets {
		for _, e := range melody {
			if e.Bare() {
				harmony = append(harmony, Event{Note: e.Note, Duration: HarmonyDuration})
				continue
			}
			idx, err := theory.IndexOf(e.Note)
			if err != nil {
				return nil, err
			}
			note := pool[(int(idx)+offset)%len(pool)]
			harmony = append(harmony, Event{Note: note, Duration: HarmonyDuration})
		}
	}
	return harmony, nil
}
