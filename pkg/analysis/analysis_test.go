package analysis

import (
	"math"
	"testing"

	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/theory"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarizeVoice(t *testing.T) {
	events := []compose.Event{
		{Note: "C", Duration: 1},
		{Note: "D", Duration: 1},
		{Note: "E", Duration: 1},
		{Note: "F", Duration: 1},
	}
	s := SummarizeVoice("melody", events)

	if s.Events != 4 || s.Beats != 4 || s.MeanDuration != 1 || s.StdDuration != 0 {
		t.Errorf("summary = %+v", s)
	}
	if s.Distinct != 4 {
		t.Errorf("Distinct = %d, want 4", s.Distinct)
	}
	// Four equally likely letters: 2 bits.
	if !almostEqual(s.Entropy, 2) {
		t.Errorf("Entropy = %g, want 2", s.Entropy)
	}
	if !almostEqual(s.MeanStep, 1) {
		t.Errorf("MeanStep = %g, want 1", s.MeanStep)
	}
}

func TestSummarizeVoiceSingleLetter(t *testing.T) {
	s := SummarizeVoice("bass", []compose.Event{{Note: "G", Duration: 0.5}, {Note: "G", Duration: 1.5}})
	if s.Entropy != 0 {
		t.Errorf("Entropy = %g, want 0", s.Entropy)
	}
	if s.Letters["G"] != 2 {
		t.Errorf("Letters = %v", s.Letters)
	}
	if s.MeanStep != 0 {
		t.Errorf("MeanStep = %g, want 0", s.MeanStep)
	}
	if !almostEqual(s.StdDuration, math.Sqrt(0.5)) {
		t.Errorf("StdDuration = %g, want %g", s.StdDuration, math.Sqrt(0.5))
	}
}

func TestCircularStep(t *testing.T) {
	tests := []struct {
		a, b theory.LetterIndex
		want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 6, 1}, // C to B wraps
		{1, 5, 3},
		{2, 6, 3},
	}
	for _, tt := range tests {
		if got := circularStep(tt.a, tt.b); got != tt.want {
			t.Errorf("circularStep(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	c, err := compose.ComposeTrack(theory.Major, compose.NewRand(3))
	if err != nil {
		t.Fatalf("ComposeTrack: %v", err)
	}
	s := Summarize(c)
	if s.Scale != theory.Major || s.Progression != c.Progression.String() {
		t.Errorf("header = %q %q", s.Scale, s.Progression)
	}
	if len(s.Voices) != 3 {
		t.Fatalf("voices = %d", len(s.Voices))
	}

	harmony := s.Voices[1]
	if harmony.Events != 2*compose.MelodyLength || harmony.Beats != 32 || harmony.StdDuration != 0 {
		t.Errorf("harmony = %+v", harmony)
	}
	for _, v := range s.Voices {
		if v.Entropy < 0 || v.Entropy > math.Log2(float64(theory.AlphabetSize)) {
			t.Errorf("%s entropy %g out of range", v.Voice, v.Entropy)
		}
		total := 0
		for _, n := range v.Letters {
			total += n
		}
		if total != v.Events {
			t.Errorf("%s letter counts sum to %d, want %d", v.Voice, total, v.Events)
		}
	}
	if s.Voices[0].Beats != compose.TotalBeats(c.Melody) {
		t.Errorf("melody beats = %g", s.Voices[0].Beats)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := SummarizeVoice("empty", nil)
	if s.Events != 0 || s.Beats != 0 || s.Entropy != 0 {
		t.Errorf("summary = %+v", s)
	}
}
