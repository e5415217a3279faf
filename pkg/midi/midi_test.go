package midi

import (
	"bytes"
	"slices"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/theory"
)

func testComposition(t *testing.T, seed uint64) *compose.Composition {
	t.Helper()
	c, err := compose.ComposeTrack(theory.Minor, compose.NewRand(seed))
	if err != nil {
		t.Fatalf("ComposeTrack: %v", err)
	}
	return c
}

func TestPitch(t *testing.T) {
	tests := []struct {
		letter string
		want   uint8
		ok     bool
	}{
		{"C", 60, true},
		{"D", 62, true},
		{"E", 64, true},
		{"F", 65, true},
		{"G", 67, true},
		{"A", 69, true},
		{"B", 71, true},
		{"H", 0, false},
		{"c", 0, false},
	}
	for _, tt := range tests {
		got, ok := Pitch(tt.letter)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Pitch(%q) = %d, %v; want %d, %v", tt.letter, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTicks(t *testing.T) {
	for beats, want := range map[float64]uint32{0: 0, 0.25: 240, 0.75: 720, 1: 960, 1.5: 1440, 2: 1920} {
		if got := Ticks(beats); got != want {
			t.Errorf("Ticks(%g) = %d, want %d", beats, got, want)
		}
	}
	if got := BeatDuration(2, 120); got != time.Second {
		t.Errorf("BeatDuration(2, 120) = %v, want 1s", got)
	}
}

func TestWriterSkipsUnmappedNotes(t *testing.T) {
	tl := NewTimeline(DefaultTempo)
	w := NewWriter(tl)

	end := w.Place([]compose.Event{
		{Note: "C", Duration: 1},
		{Note: "X", Duration: 0.5},
		{Note: "E", Duration: 0.25},
	}, 2, VoiceMelody)

	if end != 3.25 {
		t.Errorf("end = %g, want 3.25", end)
	}
	if w.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", w.Skipped)
	}
	want := []Note{
		{Key: 60, Velocity: 100, Start: 2, Duration: 1},
		{Key: 64, Velocity: 100, Start: 3, Duration: 0.25},
	}
	if got := tl.Track(VoiceMelody).Notes; !slices.Equal(got, want) {
		t.Errorf("notes = %+v, want %+v", got, want)
	}
}

func TestRenderSequential(t *testing.T) {
	c := testComposition(t, 7)
	tl, err := Render(c, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if tl.Layout != LayoutSequential || tl.Tempo != DefaultTempo {
		t.Errorf("defaults = %s/%g", tl.Layout, tl.Tempo)
	}

	melody := tl.Track(VoiceMelody)
	harmony := tl.Track(VoiceHarmony)
	bass := tl.Track(VoiceBass)

	if len(melody.Notes) != len(c.Melody) || len(harmony.Notes) != len(c.Harmony) || len(bass.Notes) != len(c.Bass) {
		t.Fatalf("note counts = %d/%d/%d", len(melody.Notes), len(harmony.Notes), len(bass.Notes))
	}
	if got := melody.Notes[0].Start; got != 0 {
		t.Errorf("melody starts at %g", got)
	}
	if got, want := harmony.Notes[0].Start, compose.TotalBeats(c.Melody); got != want {
		t.Errorf("harmony starts at %g, want %g", got, want)
	}
	// Bass follows the harmony total, not melody + harmony.
	if got, want := bass.Notes[0].Start, compose.TotalBeats(c.Harmony); got != want {
		t.Errorf("bass starts at %g, want %g", got, want)
	}
	if got := compose.TotalBeats(c.Harmony); got != 32 {
		t.Errorf("harmony total = %g, want 32", got)
	}

	for i := 1; i < len(melody.Notes); i++ {
		if melody.Notes[i].Start != melody.Notes[i-1].End() {
			t.Fatalf("melody note %d starts at %g, previous ends at %g", i, melody.Notes[i].Start, melody.Notes[i-1].End())
		}
	}

	for _, v := range Voices {
		tr := tl.Track(v)
		if tr.Program != Instruments(v).Low {
			t.Errorf("%s program = %d, want %d", v, tr.Program, Instruments(v).Low)
		}
		for _, n := range tr.Notes {
			if n.Velocity != FixedVelocity(v) {
				t.Fatalf("%s velocity = %d, want %d", v, n.Velocity, FixedVelocity(v))
			}
		}
	}
}

func TestRenderSimultaneous(t *testing.T) {
	c := testComposition(t, 8)
	tl, err := Render(c, RenderOptions{Layout: LayoutSimultaneous, Tempo: 90})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, v := range Voices {
		if got := tl.Track(v).Notes[0].Start; got != 0 {
			t.Errorf("%s starts at %g, want 0", v, got)
		}
	}
	want := max(compose.TotalBeats(c.Melody), compose.TotalBeats(c.Harmony))
	if got := tl.Beats(); got != want {
		t.Errorf("Beats() = %g, want %g", got, want)
	}
	if got, want := tl.Duration(), BeatDuration(want, 90); got != want {
		t.Errorf("Duration() = %v, want %v", got, want)
	}
}

func TestRenderDynamic(t *testing.T) {
	c := testComposition(t, 9)
	tl, err := Render(c, RenderOptions{
		Velocity:    VelocityDynamic,
		Instruments: InstrumentsRandom,
		Rand:        compose.NewRand(1),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, v := range Voices {
		tr := tl.Track(v)
		r := Instruments(v)
		if tr.Program < r.Low || tr.Program > r.High {
			t.Errorf("%s program %d outside [%d, %d]", v, tr.Program, r.Low, r.High)
		}
		levels := VelocityLevels(v)
		for _, n := range tr.Notes {
			if !slices.Contains(levels, n.Velocity) {
				t.Fatalf("%s velocity %d not in %v", v, n.Velocity, levels)
			}
		}
	}
}

func TestRenderErrors(t *testing.T) {
	c := testComposition(t, 10)
	tests := []struct {
		name string
		opts RenderOptions
	}{
		{"layout", RenderOptions{Layout: "stacked"}},
		{"velocity", RenderOptions{Velocity: "loud"}},
		{"instruments", RenderOptions{Instruments: "piano"}},
		{"dynamic without rand", RenderOptions{Velocity: VelocityDynamic}},
		{"random without rand", RenderOptions{Instruments: InstrumentsRandom}},
		{"tempo", RenderOptions{Tempo: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Render(c, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Render(nil, RenderOptions{}); err == nil {
		t.Error("expected error for nil composition")
	}
}

func TestWriteTo(t *testing.T) {
	c := testComposition(t, 11)
	tl, err := Render(c, RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var buf bytes.Buffer
	n, err := tl.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) || n == 0 {
		t.Errorf("WriteTo returned %d, buffer has %d bytes", n, buf.Len())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("MThd")) {
		t.Fatalf("missing MThd header")
	}

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(s.Tracks) != 1+len(Voices) {
		t.Fatalf("tracks = %d, want %d", len(s.Tracks), 1+len(Voices))
	}
	if tf, ok := s.TimeFormat.(smf.MetricTicks); !ok || tf != TicksPerQuarter {
		t.Errorf("TimeFormat = %v", s.TimeFormat)
	}

	var bpm float64
	for _, ev := range s.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			break
		}
	}
	if bpm != DefaultTempo {
		t.Errorf("tempo = %g, want %d", bpm, DefaultTempo)
	}

	for i, v := range Voices {
		var (
			tick           uint32
			ons, offs      int
			firstOn        = -1
			ch, key, vel   uint8
			program, pgmCh uint8
			sawProgram     bool
		)
		for _, ev := range s.Tracks[i+1] {
			tick += ev.Delta
			msg := gomidi.Message(ev.Message)
			switch {
			case msg.GetProgramChange(&pgmCh, &program):
				sawProgram = true
				if pgmCh != v.Channel() || program != Instruments(v).Low {
					t.Errorf("%s program change ch=%d prog=%d", v, pgmCh, program)
				}
			case msg.GetNoteStart(&ch, &key, &vel):
				if ch != v.Channel() {
					t.Errorf("%s note on channel %d", v, ch)
				}
				if firstOn < 0 {
					firstOn = int(tick)
				}
				ons++
			case msg.GetNoteEnd(&ch, &key):
				offs++
			}
		}
		notes := tl.Track(v).Notes
		if !sawProgram {
			t.Errorf("%s: no program change", v)
		}
		if ons != len(notes) || offs != len(notes) {
			t.Errorf("%s: %d note-ons and %d note-offs, want %d", v, ons, offs, len(notes))
		}
		if want := int(Ticks(notes[0].Start)); firstOn != want {
			t.Errorf("%s: first note-on at tick %d, want %d", v, firstOn, want)
		}
		if want := Ticks(tl.Track(v).End()); tick != want {
			t.Errorf("%s: track ends at tick %d, want %d", v, tick, want)
		}
	}
}

func TestParseModes(t *testing.T) {
	if l, err := ParseLayout(""); err != nil || l != LayoutSequential {
		t.Errorf("ParseLayout(\"\") = %q, %v", l, err)
	}
	if l, err := ParseLayout("simultaneous"); err != nil || l != LayoutSimultaneous {
		t.Errorf("ParseLayout(simultaneous) = %q, %v", l, err)
	}
	if m, err := ParseVelocityMode(""); err != nil || m != VelocityFixed {
		t.Errorf("ParseVelocityMode(\"\") = %q, %v", m, err)
	}
	if m, err := ParseInstrumentMode("random"); err != nil || m != InstrumentsRandom {
		t.Errorf("ParseInstrumentMode(random) = %q, %v", m, err)
	}
	if got := VoiceBass.String(); got != "bass" {
		t.Errorf("VoiceBass.String() = %q", got)
	}
}
