package compose

import (
	"fmt"

	"github.com/Malifforas/music/pkg/theory"
)

// BassMode selects how the bass engine handles scale degrees that do not
// address an alphabet letter directly (values 7–11).
type BassMode string

const (
	// BassWrap maps the degree onto the alphabet modulo 7.
	BassWrap BassMode = "wrap"

	// BassStrict indexes the alphabet with the raw degree and fails the
	// run with ErrIndexOutOfRange when it does not fit.
	BassStrict BassMode = "strict"
)

// ParseBassMode validates s. An empty string selects BassWrap.
func ParseBassMode(s string) (BassMode, error) {
	switch BassMode(s) {
	case "", BassWrap:
		return BassWrap, nil
	case BassStrict:
		return BassStrict, nil
	}
	return "", fmt.Errorf("compose: unknown bass mode %q (want wrap or strict)", s)
}

// bassShift is subtracted from the melody letter index before the scale
// lookup.
const bassShift = 9

// BassEngine derives one bass note per melody note by a fixed transposition
// through the scale.
type BassEngine struct {
	Mode BassMode
}

// NewBassEngine returns a BassEngine using mode.
func NewBassEngine(mode BassMode) *BassEngine {
	return &BassEngine{Mode: mode}
}

// Generate returns len(melody) bass events. Durations are copied from the
// melody; bare entries pass through unchanged.
func (b BassEngine) Generate(melody []Event, scale string) ([]Event, error) {
	degrees, err := theory.Lookup(scale)
	if err != nil {
		return nil, err
	}

	bass := make([]Event, 0, len(melody))
	for i, e := range melody {
		if e.Bare() {
			bass = append(bass, e)
			continue
		}
		idx, err := theory.IndexOf(e.Note)
		if err != nil {
			return nil, err
		}
		value := degrees[theory.Mod(int(idx)-bassShift, len(degrees))]
		note, err := b.letter(value)
		if err != nil {
			return nil, fmt.Errorf("bass[%d] from %s: %w", i, e.Note, err)
		}
		bass = append(bass, Event{Note: note, Duration: e.Duration})
	}
	return bass, nil
}

func (b BassEngine) letter(value theory.ChromaticDegree) (string, error) {
	if b.Mode == BassStrict {
		idx := theory.LetterIndex(value)
		if !idx.Valid() {
			return "", fmt.Errorf("%w: degree %d", ErrIndexOutOfRange, value)
		}
		return idx.Letter(), nil
	}
	return value.LetterIndex().Letter(), nil
}
