package midi

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Malifforas/music/pkg/compose"
)

// Note is a placed note. Start and Duration are in beats.
type Note struct {
	Key      uint8
	Velocity uint8
	Start    float64
	Duration float64
}

// End returns the beat at which the note is released.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// Track holds the placed notes of one voice.
type Track struct {
	Voice   Voice
	Program uint8
	Notes   []Note
}

// End returns the release time of the last note, in beats.
func (t *Track) End() float64 {
	end := 0.0
	for _, n := range t.Notes {
		end = max(end, n.End())
	}
	return end
}

// Layout decides where each voice starts on the timeline.
type Layout string

const (
	// LayoutSequential starts the melody at 0 and each following voice at
	// the duration total of the voice before it.
	LayoutSequential Layout = "sequential"

	// LayoutSimultaneous starts every voice at 0.
	LayoutSimultaneous Layout = "simultaneous"
)

// ParseLayout validates s. An empty string selects LayoutSequential.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutSequential:
		return LayoutSequential, nil
	case LayoutSimultaneous:
		return LayoutSimultaneous, nil
	}
	return "", fmt.Errorf("midi: unknown layout %q (want sequential or simultaneous)", s)
}

// Timeline is a rendered composition: one track per voice at a tempo.
type Timeline struct {
	Tempo  float64
	Layout Layout
	Tracks [len(Voices)]*Track
}

// NewTimeline returns an empty timeline at tempo BPM.
func NewTimeline(tempo float64) *Timeline {
	tl := &Timeline{Tempo: tempo, Layout: LayoutSequential}
	for _, v := range Voices {
		tl.Tracks[v] = &Track{Voice: v, Program: instrumentRanges[v].Low}
	}
	return tl
}

// Track returns the track of v.
func (tl *Timeline) Track(v Voice) *Track {
	return tl.Tracks[v]
}

// Beats returns the end of the latest note on any track.
func (tl *Timeline) Beats() float64 {
	end := 0.0
	for _, t := range tl.Tracks {
		end = max(end, t.End())
	}
	return end
}

// Duration returns the playing time of the timeline.
func (tl *Timeline) Duration() time.Duration {
	return BeatDuration(tl.Beats(), tl.Tempo)
}

// NoteCount returns the number of placed notes across all tracks.
func (tl *Timeline) NoteCount() int {
	n := 0
	for _, t := range tl.Tracks {
		n += len(t.Notes)
	}
	return n
}

// Writer places voice events onto a timeline one after another.
type Writer struct {
	timeline *Timeline
	velocity velocityFunc
	logger   *slog.Logger

	// Skipped counts events whose letter has no MIDI key.
	Skipped int
}

// NewWriter returns a Writer for tl using fixed velocities.
func NewWriter(tl *Timeline) *Writer {
	return &Writer{timeline: tl, velocity: FixedVelocity, logger: slog.Default()}
}

// Place writes events to the track of v starting at start beats and
// returns the time after the last placed note. Events whose letter is not
// in NoteToMIDI are skipped and do not advance time.
func (w *Writer) Place(events []compose.Event, start float64, v Voice) float64 {
	track := w.timeline.Tracks[v]
	t := start
	for _, e := range events {
		key, ok := Pitch(e.Note)
		if !ok {
			w.Skipped++
			w.logger.Debug("skipping unmapped note", "voice", v, "note", e.Note)
			continue
		}
		track.Notes = append(track.Notes, Note{
			Key:      key,
			Velocity: w.velocity(v),
			Start:    t,
			Duration: e.Duration,
		})
		t += e.Duration
	}
	return t
}

// RenderOptions configures Render.
type RenderOptions struct {
	// Layout defaults to LayoutSequential.
	Layout Layout

	// Tempo in BPM. Defaults to DefaultTempo.
	Tempo float64

	Velocity    VelocityMode
	Instruments InstrumentMode

	// Rand is required by VelocityDynamic and InstrumentsRandom.
	Rand *rand.Rand

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Render lays out the voices of c on a new timeline.
func Render(c *compose.Composition, opts RenderOptions) (*Timeline, error) {
	if c == nil {
		return nil, fmt.Errorf("midi: nil composition")
	}
	layout, err := ParseLayout(string(opts.Layout))
	if err != nil {
		return nil, err
	}
	vmode, err := ParseVelocityMode(string(opts.Velocity))
	if err != nil {
		return nil, err
	}
	imode, err := ParseInstrumentMode(string(opts.Instruments))
	if err != nil {
		return nil, err
	}
	if opts.Rand == nil && (vmode == VelocityDynamic || imode == InstrumentsRandom) {
		return nil, fmt.Errorf("midi: %s velocity or %s instruments need a random source", vmode, imode)
	}
	tempo := opts.Tempo
	if tempo == 0 {
		tempo = DefaultTempo
	}
	if tempo < 0 {
		return nil, fmt.Errorf("midi: invalid tempo %g", tempo)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tl := NewTimeline(tempo)
	tl.Layout = layout
	for _, v := range Voices {
		tl.Tracks[v].Program = chooseProgram(imode, v, opts.Rand)
	}

	w := &Writer{timeline: tl, velocity: newVelocityFunc(vmode, opts.Rand), logger: logger}
	voices := [len(Voices)][]compose.Event{c.Melody, c.Harmony, c.Bass}

	start := 0.0
	for i, v := range Voices {
		if layout == LayoutSequential && i > 0 {
			start = compose.TotalBeats(voices[i-1])
		}
		w.Place(voices[i], start, v)
	}

	logger.Debug("timeline rendered",
		"layout", layout,
		"tempo", tempo,
		"notes", tl.NoteCount(),
		"skipped", w.Skipped,
		"beats", tl.Beats())
	return tl, nil
}
