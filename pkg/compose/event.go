// Package compose generates retro-game style compositions: a melody
// produced by a biased random walk over a scale, and a harmony and bass
// line derived from it.
//
// All randomness comes from an injected *rand.Rand, so a seed fully
// determines the output:
//
//	c, err := compose.ComposeTrack(theory.Minor, compose.NewRand(42))
//
// The engines can also be driven individually; see [MelodyEngine],
// [HarmonyEngine] and [BassEngine].
package compose

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/Malifforas/music/pkg/theory"
)

// MelodyLength is the number of melody events in a composition.
const MelodyLength = 64

// HarmonyDuration is the duration of every harmony event, in beats.
const HarmonyDuration = 0.25

// SeedDuration is assigned to the bare seed note during normalization.
const SeedDuration = 0.25

// Durations is the set of melody note lengths, in beats.
var Durations = [6]float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0}

// seedStream is the PCG stream selector paired with user seeds.
const seedStream = 0x7265_7472_6f67_656e

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seedStream))
}

// Event is one note of a voice. Duration is in beats; a zero Duration
// marks a bare entry, which only the melody engine emits (for its seed
// note) before normalization.
type Event struct {
	Note     string  `json:"note" yaml:"note" msgpack:"n"`
	Duration float64 `json:"duration" yaml:"duration" msgpack:"d"`
}

// Bare reports whether e carries no duration.
func (e Event) Bare() bool {
	return e.Duration == 0
}

func (e Event) String() string {
	if e.Bare() {
		return e.Note
	}
	return fmt.Sprintf("%s/%g", e.Note, e.Duration)
}

// Normalize returns a copy of events with every bare entry given
// SeedDuration.
func Normalize(events []Event) []Event {
	out := slices.Clone(events)
	for i := range out {
		if out[i].Bare() {
			out[i].Duration = SeedDuration
		}
	}
	return out
}

// TotalBeats sums the durations of events.
func TotalBeats(events []Event) float64 {
	total := 0.0
	for _, e := range events {
		total += e.Duration
	}
	return total
}

// Composition is the result of one generation run.
type Composition struct {
	Scale       string             `json:"scale" yaml:"scale" msgpack:"scale"`
	Progression theory.Progression `json:"progression" yaml:"progression" msgpack:"progression"`
	Melody      []Event            `json:"melody" yaml:"melody" msgpack:"melody"`
	Harmony     []Event            `json:"harmony" yaml:"harmony" msgpack:"harmony"`
	Bass        []Event            `json:"bass" yaml:"bass" msgpack:"bass"`
}

// Validate checks the structural invariants of a finished composition.
func (c *Composition) Validate() error {
	if len(c.Progression) == 0 {
		return fmt.Errorf("compose: empty progression")
	}
	if !theory.IsCatalogProgression(c.Progression) {
		return fmt.Errorf("compose: progression %s is not in the catalog", c.Progression)
	}
	if len(c.Melody) != MelodyLength {
		return fmt.Errorf("compose: melody has %d events, want %d", len(c.Melody), MelodyLength)
	}
	if len(c.Harmony) != 2*len(c.Melody) {
		return fmt.Errorf("compose: harmony has %d events, want %d", len(c.Harmony), 2*len(c.Melody))
	}
	if len(c.Bass) != len(c.Melody) {
		return fmt.Errorf("compose: bass has %d events, want %d", len(c.Bass), len(c.Melody))
	}
	for i, e := range c.Melody {
		if !theory.IsLetter(e.Note) {
			return fmt.Errorf("compose: melody[%d] has note %q", i, e.Note)
		}
		if !IsDuration(e.Duration) {
			return fmt.Errorf("compose: melody[%d] has duration %g", i, e.Duration)
		}
	}
	for i, e := range c.Harmony {
		if !theory.IsLetter(e.Note) {
			return fmt.Errorf("compose: harmony[%d] has note %q", i, e.Note)
		}
		if e.Duration != HarmonyDuration {
			return fmt.Errorf("compose: harmony[%d] has duration %g", i, e.Duration)
		}
	}
	for i, e := range c.Bass {
		if !theory.IsLetter(e.Note) {
			return fmt.Errorf("compose: bass[%d] has note %q", i, e.Note)
		}
		if e.Duration != c.Melody[i].Duration {
			return fmt.Errorf("compose: bass[%d] duration %g differs from melody %g", i, e.Duration, c.Melody[i].Duration)
		}
	}
	return nil
}

// IsDuration reports whether d is one of Durations.
func IsDuration(d float64) bool {
	return slices.Contains(Durations[:], d)
}

// Notes joins the letters of events with spaces.
func Notes(events []Event) string {
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = e.Note
	}
	return strings.Join(parts, " ")
}
