package midi

import (
	"fmt"
	"math/rand/v2"
)

// Voice identifies one of the three parts of a composition. Its value is
// also the track order and the MIDI channel.
type Voice uint8

const (
	VoiceMelody Voice = iota
	VoiceHarmony
	VoiceBass
)

// Voices lists all voices in track order.
var Voices = [3]Voice{VoiceMelody, VoiceHarmony, VoiceBass}

func (v Voice) String() string {
	switch v {
	case VoiceMelody:
		return "melody"
	case VoiceHarmony:
		return "harmony"
	case VoiceBass:
		return "bass"
	}
	return fmt.Sprintf("voice(%d)", uint8(v))
}

// Channel returns the MIDI channel used for v.
func (v Voice) Channel() uint8 {
	return uint8(v)
}

var fixedVelocity = map[Voice]uint8{
	VoiceMelody:  100,
	VoiceHarmony: 70,
	VoiceBass:    80,
}

var velocityLevels = map[Voice][]uint8{
	VoiceMelody:  {80, 100, 110},
	VoiceHarmony: {60, 70, 80},
	VoiceBass:    {70, 80, 90},
}

// InstrumentRange is an inclusive range of General MIDI programs.
type InstrumentRange struct {
	Low  uint8
	High uint8
}

var instrumentRanges = map[Voice]InstrumentRange{
	VoiceMelody:  {0, 31},
	VoiceHarmony: {32, 63},
	VoiceBass:    {64, 95},
}

// FixedVelocity returns the constant velocity of v.
func FixedVelocity(v Voice) uint8 {
	return fixedVelocity[v]
}

// VelocityLevels returns the velocities v may draw from in dynamic mode.
func VelocityLevels(v Voice) []uint8 {
	return append([]uint8(nil), velocityLevels[v]...)
}

// Instruments returns the program range of v.
func Instruments(v Voice) InstrumentRange {
	return instrumentRanges[v]
}

// VelocityMode selects how note velocities are chosen.
type VelocityMode string

const (
	VelocityFixed   VelocityMode = "fixed"
	VelocityDynamic VelocityMode = "dynamic"
)

// ParseVelocityMode validates s. An empty string selects VelocityFixed.
func ParseVelocityMode(s string) (VelocityMode, error) {
	switch VelocityMode(s) {
	case "", VelocityFixed:
		return VelocityFixed, nil
	case VelocityDynamic:
		return VelocityDynamic, nil
	}
	return "", fmt.Errorf("midi: unknown velocity mode %q (want fixed or dynamic)", s)
}

// InstrumentMode selects how each voice's program is chosen.
type InstrumentMode string

const (
	// InstrumentsDefault uses the lowest program of each range.
	InstrumentsDefault InstrumentMode = "default"
	// InstrumentsRandom draws one program per voice from its range.
	InstrumentsRandom InstrumentMode = "random"
)

// ParseInstrumentMode validates s. An empty string selects
// InstrumentsDefault.
func ParseInstrumentMode(s string) (InstrumentMode, error) {
	switch InstrumentMode(s) {
	case "", InstrumentsDefault:
		return InstrumentsDefault, nil
	case InstrumentsRandom:
		return InstrumentsRandom, nil
	}
	return "", fmt.Errorf("midi: unknown instrument mode %q (want default or random)", s)
}

// velocityFunc returns the velocity for the next note of a voice.
type velocityFunc func(Voice) uint8

func newVelocityFunc(mode VelocityMode, rng *rand.Rand) velocityFunc {
	if mode == VelocityDynamic {
		return func(v Voice) uint8 {
			levels := velocityLevels[v]
			return levels[rng.IntN(len(levels))]
		}
	}
	return FixedVelocity
}

func chooseProgram(mode InstrumentMode, v Voice, rng *rand.Rand) uint8 {
	r := instrumentRanges[v]
	if mode == InstrumentsRandom {
		return r.Low + uint8(rng.IntN(int(r.High-r.Low)+1))
	}
	return r.Low
}
