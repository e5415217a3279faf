// Package analysis computes descriptive statistics over generated
// compositions. It does not judge musical quality.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/theory"
)

// VoiceSummary describes one voice.
type VoiceSummary struct {
	Voice        string         `json:"voice" yaml:"voice"`
	Events       int            `json:"events" yaml:"events"`
	Beats        float64        `json:"beats" yaml:"beats"`
	MeanDuration float64        `json:"mean_duration" yaml:"mean_duration"`
	StdDuration  float64        `json:"std_duration" yaml:"std_duration"`
	Letters      map[string]int `json:"letters" yaml:"letters"`
	Distinct     int            `json:"distinct" yaml:"distinct"`
	Entropy      float64        `json:"entropy_bits" yaml:"entropy_bits"`
	MeanStep     float64        `json:"mean_step" yaml:"mean_step"`
}

// Summary describes a composition.
type Summary struct {
	Scale       string         `json:"scale" yaml:"scale"`
	Progression string         `json:"progression" yaml:"progression"`
	Voices      []VoiceSummary `json:"voices" yaml:"voices"`
}

// Summarize computes per-voice statistics of c.
func Summarize(c *compose.Composition) Summary {
	return Summary{
		Scale:       c.Scale,
		Progression: c.Progression.String(),
		Voices: []VoiceSummary{
			SummarizeVoice("melody", c.Melody),
			SummarizeVoice("harmony", c.Harmony),
			SummarizeVoice("bass", c.Bass),
		},
	}
}

// SummarizeVoice computes statistics of a single event list.
func SummarizeVoice(name string, events []compose.Event) VoiceSummary {
	s := VoiceSummary{
		Voice:   name,
		Events:  len(events),
		Letters: make(map[string]int),
	}
	if len(events) == 0 {
		return s
	}

	durations := make([]float64, len(events))
	var counts [theory.AlphabetSize]float64
	var steps []float64
	prev := theory.LetterIndex(-1)
	for i, e := range events {
		durations[i] = e.Duration
		idx, err := theory.IndexOf(e.Note)
		if err != nil {
			prev = -1
			continue
		}
		counts[idx]++
		s.Letters[e.Note]++
		if prev >= 0 {
			steps = append(steps, float64(circularStep(prev, idx)))
		}
		prev = idx
	}

	s.Beats = floats.Sum(durations)
	s.MeanDuration = stat.Mean(durations, nil)
	if len(durations) > 1 {
		s.StdDuration = stat.StdDev(durations, nil)
	}
	if len(steps) > 0 {
		s.MeanStep = stat.Mean(steps, nil)
	}
	s.Distinct = len(s.Letters)
	s.Entropy = letterEntropy(counts[:])
	return s
}

// circularStep is the shortest distance between two letters on the
// seven-letter circle.
func circularStep(a, b theory.LetterIndex) int {
	d := theory.Mod(int(b)-int(a), theory.AlphabetSize)
	return min(d, theory.AlphabetSize-d)
}

// letterEntropy returns the Shannon entropy of the letter distribution in
// bits.
func letterEntropy(counts []float64) float64 {
	total := floats.Sum(counts)
	if total == 0 {
		return 0
	}
	p := make([]float64, len(counts))
	floats.ScaleTo(p, 1/total, counts)
	return stat.Entropy(p) / math.Ln2
}
