// Package studio ties generation, rendering and persistence together: it
// composes a piece, renders it to a Standard MIDI File, saves the file to a
// storage backend and records the composition in the library.
package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/Malifforas/music/pkg/compose"
	"github.com/Malifforas/music/pkg/library"
	"github.com/Malifforas/music/pkg/midi"
	"github.com/Malifforas/music/pkg/storage"
	"github.com/Malifforas/music/pkg/theory"
)

// Errors.
var (
	// ErrInvalidRequest is returned for requests with unknown modes or
	// malformed fields.
	ErrInvalidRequest = errors.New("studio: invalid request")

	// ErrPersistence wraps failures to save an artifact or record. The
	// generated record is still returned.
	ErrPersistence = errors.New("studio: persistence failed")

	// ErrNoArtifact is returned by MIDI when a record cannot be rendered.
	ErrNoArtifact = errors.New("studio: no artifact")
)

// renderStream selects the PCG stream used for rendering choices, so a
// stored composition re-renders identically from its seed.
const renderStream = 0x6d69_6469_7265_6e64

// Request describes one generation.
type Request struct {
	Scale       string  `json:"scale,omitempty" yaml:"scale,omitempty"`
	Seed        *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Progression string  `json:"progression,omitempty" yaml:"progression,omitempty"`
	Layout      string  `json:"layout,omitempty" yaml:"layout,omitempty"`
	BassMode    string  `json:"bass_mode,omitempty" yaml:"bass_mode,omitempty"`
	Tempo       float64 `json:"tempo,omitempty" yaml:"tempo,omitempty"`
	Velocity    string  `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Instruments string  `json:"instruments,omitempty" yaml:"instruments,omitempty"`
}

// plan is a validated Request.
type plan struct {
	scale       string
	seed        uint64
	progression theory.Progression
	bassMode    compose.BassMode
	layout      midi.Layout
	tempo       float64
	velocity    midi.VelocityMode
	instruments midi.InstrumentMode
}

func (s *Studio) plan(req Request) (*plan, error) {
	invalid := func(err error) (*plan, error) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	p := &plan{scale: req.Scale, tempo: req.Tempo}
	if p.scale == "" {
		p.scale = theory.DefaultScale
	}
	if !theory.HasScale(p.scale) {
		return invalid(fmt.Errorf("%w: %q", theory.ErrUnknownScale, p.scale))
	}
	if req.Seed != nil {
		p.seed = *req.Seed
	} else {
		p.seed = s.seeds()
	}
	if req.Progression != "" {
		prog, err := theory.ParseProgression(req.Progression)
		if err != nil {
			return invalid(err)
		}
		if !theory.IsCatalogProgression(prog) {
			return invalid(fmt.Errorf("progression %s is not in the catalog", prog))
		}
		p.progression = prog
	}
	if p.tempo == 0 {
		p.tempo = midi.DefaultTempo
	}
	if p.tempo < 0 {
		return invalid(fmt.Errorf("tempo %g", p.tempo))
	}

	var err error
	if p.bassMode, err = compose.ParseBassMode(req.BassMode); err != nil {
		return invalid(err)
	}
	if p.layout, err = midi.ParseLayout(req.Layout); err != nil {
		return invalid(err)
	}
	if p.velocity, err = midi.ParseVelocityMode(req.Velocity); err != nil {
		return invalid(err)
	}
	if p.instruments, err = midi.ParseInstrumentMode(req.Instruments); err != nil {
		return invalid(err)
	}
	return p, nil
}

func (p *plan) settings() library.Settings {
	return library.Settings{
		Layout:      string(p.layout),
		BassMode:    string(p.bassMode),
		Tempo:       p.tempo,
		Velocity:    string(p.velocity),
		Instruments: string(p.instruments),
	}
}

// Config configures a Studio.
type Config struct {
	// Library records every generated composition. Required.
	Library *library.Library

	// Store receives rendered MIDI files. If nil, no artifacts are saved
	// and MIDI renders on demand.
	Store storage.FileStore

	// Logger is optional. If nil, uses slog.Default().
	Logger *slog.Logger

	// Seeds supplies seeds for requests without one. Defaults to
	// math/rand/v2's global source.
	Seeds func() uint64
}

// Studio generates and catalogues compositions. It is safe for concurrent
// use; every request gets its own random source.
type Studio struct {
	lib    *library.Library
	store  storage.FileStore
	logger *slog.Logger
	seeds  func() uint64
}

// New returns a Studio. It panics if cfg.Library is nil.
func New(cfg Config) *Studio {
	if cfg.Library == nil {
		panic("studio: Config.Library is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	seeds := cfg.Seeds
	if seeds == nil {
		seeds = rand.Uint64
	}
	return &Studio{lib: cfg.Library, store: cfg.Store, logger: logger, seeds: seeds}
}

// Generate composes a piece for req, saves its MIDI rendering and records
// it. Generation failures are returned as *compose.GenerationError with no
// record. Persistence failures return the record together with an error
// wrapping ErrPersistence.
func (s *Studio) Generate(ctx context.Context, req Request) (*library.Record, error) {
	p, err := s.plan(req)
	if err != nil {
		return nil, err
	}

	composer := compose.NewComposer(compose.Options{
		Rand:        compose.NewRand(p.seed),
		BassMode:    p.bassMode,
		Progression: p.progression,
		Logger:      s.logger,
	})
	c, err := composer.Compose(p.scale)
	if err != nil {
		return nil, err
	}

	rec := &library.Record{
		ID:          uuid.NewString(),
		Seed:        p.seed,
		Settings:    p.settings(),
		Composition: *c,
	}

	if s.store != nil {
		tl, err := s.Render(rec)
		if err != nil {
			return nil, err
		}
		path := storage.ArtifactPath(rec.ID)
		if _, err := storage.Save(ctx, s.store, path, tl); err != nil {
			s.logger.Error("failed to save artifact", "id", rec.ID, "path", path, "error", err)
			return rec, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		rec.Artifact = path
	}

	if err := s.lib.Put(ctx, rec); err != nil {
		s.logger.Error("failed to store record", "id", rec.ID, "error", err)
		if rec.Artifact != "" {
			if derr := s.store.Delete(ctx, rec.Artifact); derr != nil {
				s.logger.Warn("failed to remove orphaned artifact", "path", rec.Artifact, "error", derr)
			}
			rec.Artifact = ""
		}
		return rec, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.logger.Info("composition stored",
		"id", rec.ID,
		"scale", c.Scale,
		"progression", c.Progression.String(),
		"seed", rec.Seed,
		"artifact", rec.Artifact)
	return rec, nil
}

// Render lays out the composition of rec with the settings it was made
// with.
func (s *Studio) Render(rec *library.Record) (*midi.Timeline, error) {
	return midi.Render(&rec.Composition, midi.RenderOptions{
		Layout:      midi.Layout(rec.Settings.Layout),
		Tempo:       rec.Settings.Tempo,
		Velocity:    midi.VelocityMode(rec.Settings.Velocity),
		Instruments: midi.InstrumentMode(rec.Settings.Instruments),
		Rand:        rand.New(rand.NewPCG(rec.Seed, renderStream)),
		Logger:      s.logger,
	})
}

// Get returns the record with id.
func (s *Studio) Get(ctx context.Context, id string) (*library.Record, error) {
	return s.lib.Get(ctx, id)
}

// List returns up to limit records, newest first.
func (s *Studio) List(ctx context.Context, limit int) ([]*library.Record, error) {
	return s.lib.List(ctx, limit)
}

// MIDI returns the Standard MIDI File of record id. Stored artifacts are
// read back; records without one are rendered on the fly.
func (s *Studio) MIDI(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.lib.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Artifact != "" && s.store != nil {
		data, err := storage.Load(ctx, s.store, rec.Artifact)
		if err == nil {
			return data, nil
		}
		s.logger.Warn("artifact unreadable, re-rendering", "id", id, "path", rec.Artifact, "error", err)
	}

	tl, err := s.Render(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoArtifact, err)
	}
	var buf bytes.Buffer
	if _, err := tl.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoArtifact, err)
	}
	return buf.Bytes(), nil
}

// Delete removes record id and its artifact.
func (s *Studio) Delete(ctx context.Context, id string) error {
	rec, err := s.lib.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.Artifact != "" && s.store != nil {
		if err := s.store.Delete(ctx, rec.Artifact); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
	}
	if err := s.lib.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("composition deleted", "id", id)
	return nil
}
