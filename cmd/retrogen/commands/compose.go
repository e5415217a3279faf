package commands

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Malifforas/music/pkg/cli"
	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/library"
	"github.com/Malifforas/music/pkg/studio"
)

// DefaultOutputFile is where compose writes its MIDI file without -o.
const DefaultOutputFile = "generated_music.mid"

var (
	flagScale       string
	flagSeed        uint64
	flagProgression string
	flagLayout      string
	flagBassMode    string
	flagTempo       float64
	flagVelocity    string
	flagInstruments string
	flagRetries     int
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Generate a piece and save it as a MIDI file",
	Long: `Generate a three-voice piece and write it as a Standard MIDI File.

Values come from flags, then the request file (-f), then the current
context, then built-in defaults (scale minor, tempo 120, sequential layout,
wrapping bass).

Request file example (compose.yaml):

  scale: dorian
  seed: 42
  progression: vi-IV-I-V
  layout: simultaneous
  tempo: 140
  velocity: dynamic

Examples:
  retrogen compose
  retrogen compose --scale major --seed 7 -o level1.mid
  retrogen compose -f compose.yaml --format pretty`,
	Args: cobra.NoArgs,
	RunE: runCompose,
}

func init() {
	f := composeCmd.Flags()
	f.StringVar(&flagScale, "scale", "", "scale: major, minor, dorian or mixolydian (default minor)")
	f.Uint64Var(&flagSeed, "seed", 0, "random seed (default: a fresh one)")
	f.StringVar(&flagProgression, "progression", "", "force a catalog progression, e.g. I-IV-V")
	f.StringVar(&flagLayout, "layout", "", "voice placement: sequential or simultaneous")
	f.StringVar(&flagBassMode, "bass-mode", "", "bass degree handling: wrap or strict")
	f.Float64Var(&flagTempo, "tempo", 0, "tempo in BPM (default 120)")
	f.StringVar(&flagVelocity, "velocity", "", "velocity: fixed or dynamic")
	f.StringVar(&flagInstruments, "instruments", "", "instruments: default or random")
	f.IntVar(&flagRetries, "retries", 0, "re-roll with a fresh seed this many times when generation fails")

	rootCmd.AddCommand(composeCmd)
}

// composeResult is what compose prints.
type composeResult struct {
	ID          string  `json:"id" yaml:"id"`
	Seed        uint64  `json:"seed" yaml:"seed"`
	Scale       string  `json:"scale" yaml:"scale"`
	Progression string  `json:"progression" yaml:"progression"`
	Layout      string  `json:"layout" yaml:"layout"`
	Tempo       float64 `json:"tempo" yaml:"tempo"`
	Beats       float64 `json:"beats" yaml:"beats"`
	Duration    string  `json:"duration" yaml:"duration"`
	Output      string  `json:"output" yaml:"output"`
	Bytes       string  `json:"bytes" yaml:"bytes"`
	Stored      bool    `json:"stored" yaml:"stored"`
}

// buildRequest merges flags over the request file over the context.
func buildRequest(cmd *cobra.Command) (studio.Request, error) {
	var req studio.Request
	if inputFile != "" {
		if err := cli.LoadRequest(inputFile, &req); err != nil {
			return req, err
		}
	}

	flags := cmd.Flags()
	setString := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	setString("scale", &req.Scale, flagScale)
	setString("progression", &req.Progression, flagProgression)
	setString("layout", &req.Layout, flagLayout)
	setString("bass-mode", &req.BassMode, flagBassMode)
	setString("velocity", &req.Velocity, flagVelocity)
	setString("instruments", &req.Instruments, flagInstruments)
	if flags.Changed("tempo") {
		req.Tempo = flagTempo
	}
	if flags.Changed("seed") {
		seed := flagSeed
		req.Seed = &seed
	}

	ctx, err := getContext()
	if err != nil {
		return req, err
	}
	req.Scale = cmp.Or(req.Scale, ctx.Scale)
	req.Layout = cmp.Or(req.Layout, ctx.Layout)
	req.BassMode = cmp.Or(req.BassMode, ctx.BassMode)
	req.Velocity = cmp.Or(req.Velocity, ctx.Velocity)
	req.Instruments = cmp.Or(req.Instruments, ctx.Instruments)
	req.Tempo = cmp.Or(req.Tempo, ctx.Tempo)
	return req, nil
}

func runCompose(cmd *cobra.Command, _ []string) error {
	if flagRetries < 0 {
		return fmt.Errorf("--retries must not be negative")
	}
	format, err := getFormat()
	if err != nil {
		return err
	}
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, closeStudio, err := openStudio(ctx)
	if err != nil {
		return err
	}
	defer closeStudio()

	rec, err := s.Generate(ctx, req)
	for attempt := 1; attempt <= flagRetries && compose.IsGenerationError(err); attempt++ {
		slog.Warn("generation failed, retrying with a fresh seed", "attempt", attempt, "error", err)
		req.Seed = nil
		rec, err = s.Generate(ctx, req)
	}
	stored := true
	switch {
	case errors.Is(err, studio.ErrPersistence) && rec != nil:
		stored = false
		cli.Warning(cmd.ErrOrStderr(), "composition not stored: %v", err)
	case err != nil:
		return err
	}

	tl, err := s.Render(rec)
	if err != nil {
		return err
	}
	path := cmp.Or(outputFile, DefaultOutputFile)
	n, err := writeFile(ctx, path, tl)
	if err != nil {
		slog.Error("failed to save MIDI file", "path", path, "error", err)
		return err
	}
	cli.Success(cmd.ErrOrStderr(), "Music saved to %s", path)

	if format == cli.FormatPretty {
		st := cli.NewStyles(cli.DefaultTheme)
		fmt.Fprintln(cmd.OutOrStdout(), cli.ScoreSheet(st, rec.ID, &rec.Composition).Render(72))
		return nil
	}
	return cli.Output(cmd.OutOrStdout(), composeResult{
		ID:          rec.ID,
		Seed:        rec.Seed,
		Scale:       rec.Composition.Scale,
		Progression: rec.Composition.Progression.String(),
		Layout:      rec.Settings.Layout,
		Tempo:       rec.Settings.Tempo,
		Beats:       tl.Beats(),
		Duration:    cli.FormatDuration(tl.Duration()),
		Output:      path,
		Bytes:       cli.FormatBytes(n),
		Stored:      stored,
	}, format)
}

// recordSummary is one row of list output.
type recordSummary struct {
	ID          string `json:"id" yaml:"id"`
	Created     string `json:"created" yaml:"created"`
	Scale       string `json:"scale" yaml:"scale"`
	Progression string `json:"progression" yaml:"progression"`
	Seed        uint64 `json:"seed" yaml:"seed"`
	Layout      string `json:"layout" yaml:"layout"`
}

func summarize(rec *library.Record) recordSummary {
	return recordSummary{
		ID:          rec.ID,
		Created:     cli.FormatTime(rec.CreatedAt),
		Scale:       rec.Composition.Scale,
		Progression: rec.Composition.Progression.String(),
		Seed:        rec.Seed,
		Layout:      rec.Settings.Layout,
	}
}
