// Package midi renders compositions into multi-track timelines and encodes
// them as Standard MIDI Files.
//
// Letters are pinned to the fourth octave (C4 = 60). Durations stay in
// beats until encoding, where they become ticks at [TicksPerQuarter].
package midi

import (
	"math"
	"time"
)

// NoteToMIDI maps alphabet letters to MIDI key numbers.
var NoteToMIDI = map[string]uint8{
	"C": 60,
	"D": 62,
	"E": 64,
	"F": 65,
	"G": 67,
	"A": 69,
	"B": 71,
}

// Pitch returns the MIDI key for letter.
func Pitch(letter string) (uint8, bool) {
	k, ok := NoteToMIDI[letter]
	return k, ok
}

// TicksPerQuarter is the SMF time resolution.
const TicksPerQuarter = 960

// DefaultTempo is the tempo in BPM when none is configured.
const DefaultTempo = 120

// Ticks converts beats to ticks, rounding to the nearest tick.
func Ticks(beats float64) uint32 {
	return uint32(math.Round(beats * TicksPerQuarter))
}

// BeatDuration converts beats to wall time at bpm.
func BeatDuration(beats, bpm float64) time.Duration {
	return time.Duration(beats * 60 / bpm * float64(time.Second))
}
