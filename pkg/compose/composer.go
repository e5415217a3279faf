package compose

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/Malifforas/music/pkg/theory"
)

// Options configures a Composer.
type Options struct {
	// Rand is the random source. Required.
	Rand *rand.Rand

	// BassMode selects degree handling in the bass engine. Default BassWrap.
	BassMode BassMode

	// Progression forces a catalog progression instead of a random pick.
	Progression theory.Progression

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Composer runs the full pipeline: progression, melody, normalization,
// harmony, bass.
type Composer struct {
	rng         *rand.Rand
	progression theory.Progression
	melody      *MelodyEngine
	harmony     *HarmonyEngine
	bass        *BassEngine
	logger      *slog.Logger
}

// NewComposer returns a Composer for opts. A nil opts.Rand panics.
func NewComposer(opts Options) *Composer {
	if opts.Rand == nil {
		panic("compose: Options.Rand is required")
	}
	mode := opts.BassMode
	if mode == "" {
		mode = BassWrap
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		rng:         opts.Rand,
		progression: opts.Progression,
		melody:      NewMelodyEngine(opts.Rand),
		harmony:     NewHarmonyEngine(),
		bass:        NewBassEngine(mode),
		logger:      logger,
	}
}

// Compose generates a composition in scale. On failure it returns a
// *GenerationError and no composition.
func (c *Composer) Compose(scale string) (*Composition, error) {
	fail := func(stage string, err error) (*Composition, error) {
		c.logger.Error("composition failed", "stage", stage, "scale", scale, "error", err)
		return nil, &GenerationError{Stage: stage, Scale: scale, Err: err}
	}

	if _, err := theory.Lookup(scale); err != nil {
		return fail(StageProgression, err)
	}

	progression := c.progression
	if len(progression) == 0 {
		progression = theory.ChooseProgression(c.rng, scale)
	} else if !theory.IsCatalogProgression(progression) {
		return fail(StageProgression, fmt.Errorf("progression %s is not in the catalog", progression))
	}

	melody, err := c.melody.Generate(progression, scale)
	if err != nil {
		return fail(StageMelody, err)
	}
	melody = Normalize(melody)

	harmony, err := c.harmony.Generate(melody, progression, scale)
	if err != nil {
		return fail(StageHarmony, err)
	}

	bass, err := c.bass.Generate(melody, scale)
	if err != nil {
		return fail(StageBass, err)
	}

	comp := &Composition{
		Scale:       scale,
		Progression: progression,
		Melody:      melody,
		Harmony:     harmony,
		Bass:        bass,
	}
	if err := comp.Validate(); err != nil {
		return fail(StageValidate, err)
	}

	c.logger.Debug("composition generated",
		"scale", scale,
		"progression", progression.String(),
		"melody", len(melody),
		"harmony", len(harmony),
		"bass", len(bass))
	return comp, nil
}

// ComposeTrack generates a composition in scale using rng with default
// options.
func ComposeTrack(scale string, rng *rand.Rand) (*Composition, error) {
	return NewComposer(Options{Rand: rng}).Compose(scale)
}
