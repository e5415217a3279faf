package midi

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ConductorTrackName names the first track, which carries tempo and meter.
const ConductorTrackName = "retrogen"

type tickEvent struct {
	tick uint32
	on   bool
	msg  midi.Message
}

// SMF encodes the timeline as a format 1 Standard MIDI File: a conductor
// track followed by one track per voice on the voice's channel.
func (tl *Timeline) SMF() (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(ConductorTrackName))
	conductor.Add(0, smf.MetaTempo(tl.Tempo))
	conductor.Add(0, smf.MetaMeter(4, 4))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("midi: add conductor track: %w", err)
	}

	for _, t := range tl.Tracks {
		if err := s.Add(t.encode()); err != nil {
			return nil, fmt.Errorf("midi: add %s track: %w", t.Voice, err)
		}
	}
	return s, nil
}

// WriteTo writes the timeline as a Standard MIDI File to w.
func (tl *Timeline) WriteTo(w io.Writer) (int64, error) {
	s, err := tl.SMF()
	if err != nil {
		return 0, err
	}
	n, err := s.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("midi: write smf: %w", err)
	}
	return n, nil
}

func (t *Track) encode() smf.Track {
	ch := t.Voice.Channel()

	events := make([]tickEvent, 0, 2*len(t.Notes))
	for _, n := range t.Notes {
		events = append(events,
			tickEvent{tick: Ticks(n.Start), on: true, msg: midi.NoteOn(ch, n.Key, n.Velocity)},
			tickEvent{tick: Ticks(n.End()), msg: midi.NoteOff(ch, n.Key)},
		)
	}
	// Releases sort before attacks on the same tick so that a repeated key
	// is not cut short.
	slices.SortStableFunc(events, func(a, b tickEvent) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		switch {
		case a.on == b.on:
			return 0
		case a.on:
			return 1
		}
		return -1
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(t.Voice.String()))
	tr.Add(0, midi.ProgramChange(ch, t.Program))
	var last uint32
	for _, e := range events {
		tr.Add(e.tick-last, e.msg)
		last = e.tick
	}
	tr.Close(0)
	return tr
}
