// Package library keeps a history of generated compositions.
//
// Records are msgpack-encoded and stored under two kinds of keys:
//
//	rec:{id}                  → Record
//	idx:{created_ms}:{id}     → id (creation-order index)
//
// The creation timestamp is zero-padded so lexicographic key order matches
// chronological order, and List walks the index backwards to return the
// newest records first.
package library

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Malifforas/music/pkg/compose"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("library: not found")

// Settings are the render and generation options a record was made with.
type Settings struct {
	Layout      string  `json:"layout,omitempty" yaml:"layout,omitempty" msgpack:"layout,omitempty"`
	BassMode    string  `json:"bass_mode,omitempty" yaml:"bass_mode,omitempty" msgpack:"bass_mode,omitempty"`
	Tempo       float64 `json:"tempo,omitempty" yaml:"tempo,omitempty" msgpack:"tempo,omitempty"`
	Velocity    string  `json:"velocity,omitempty" yaml:"velocity,omitempty" msgpack:"velocity,omitempty"`
	Instruments string  `json:"instruments,omitempty" yaml:"instruments,omitempty" msgpack:"instruments,omitempty"`
}

// Record is a stored composition.
type Record struct {
	ID          string              `json:"id" yaml:"id" msgpack:"id"`
	CreatedAt   int64               `json:"created_at" yaml:"created_at" msgpack:"created_at"` // unix milliseconds
	Seed        uint64              `json:"seed" yaml:"seed" msgpack:"seed"`
	Settings    Settings            `json:"settings" yaml:"settings" msgpack:"settings"`
	Composition compose.Composition `json:"composition" yaml:"composition" msgpack:"composition"`

	// Artifact is the storage path of the rendered MIDI file. Empty when
	// the record was stored without one.
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty" msgpack:"artifact,omitempty"`
}

// Created returns CreatedAt as a time.
func (r *Record) Created() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

type entry struct {
	key   []byte
	value []byte
}

// backend is the byte-level store behind a Library.
type backend interface {
	get(key []byte) ([]byte, error)
	// write applies sets and deletes in one transaction.
	write(set []entry, del [][]byte) error
	// scanDesc yields entries under prefix in descending key order.
	scanDesc(prefix []byte) iter.Seq2[entry, error]
	close() error
}

// Library stores and retrieves composition records. It is safe for
// concurrent use.
type Library struct {
	store  backend
	logger *slog.Logger
	now    func() time.Time
}

func newLibrary(store backend, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{store: store, logger: logger, now: time.Now}
}

const (
	recPrefix = "rec:"
	idxPrefix = "idx:"
)

func recordKey(id string) []byte {
	return []byte(recPrefix + id)
}

func indexKey(createdAt int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%013d:%s", idxPrefix, createdAt, id))
}

// parseIndexKey returns the timestamp and ID encoded in an index key.
func parseIndexKey(k []byte) (int64, string, error) {
	rest, ok := strings.CutPrefix(string(k), idxPrefix)
	if !ok {
		return 0, "", fmt.Errorf("library: malformed index key %q", k)
	}
	ts, id, ok := strings.Cut(rest, ":")
	if !ok || id == "" {
		return 0, "", fmt.Errorf("library: malformed index key %q", k)
	}
	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("library: malformed index key timestamp: %w", err)
	}
	return ms, id, nil
}

// Put stores r. An empty ID is replaced by a new UUID and a zero CreatedAt
// by the current time. Storing an existing ID replaces the old record.
func (l *Library) Put(_ context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if strings.Contains(r.ID, ":") {
		return fmt.Errorf("library: invalid record id %q", r.ID)
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = l.now().UnixMilli()
	}

	data, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("library: encode record: %w", err)
	}

	var del [][]byte
	if old, err := l.get(r.ID); err == nil && old.CreatedAt != r.CreatedAt {
		del = append(del, indexKey(old.CreatedAt, old.ID))
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	set := []entry{
		{key: recordKey(r.ID), value: data},
		{key: indexKey(r.CreatedAt, r.ID), value: []byte(r.ID)},
	}
	if err := l.store.write(set, del); err != nil {
		return fmt.Errorf("library: put %s: %w", r.ID, err)
	}
	l.logger.Debug("record stored", "id", r.ID, "scale", r.Composition.Scale)
	return nil
}

// Get returns the record with id, or ErrNotFound.
func (l *Library) Get(_ context.Context, id string) (*Record, error) {
	return l.get(id)
}

func (l *Library) get(id string) (*Record, error) {
	data, err := l.store.get(recordKey(id))
	if err != nil {
		return nil, err
	}
	var r Record
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("library: decode record %s: %w", id, err)
	}
	return &r, nil
}

// Delete removes the record with id. It returns ErrNotFound if there is
// none.
func (l *Library) Delete(_ context.Context, id string) error {
	r, err := l.get(id)
	if err != nil {
		return err
	}
	if err := l.store.write(nil, [][]byte{recordKey(id), indexKey(r.CreatedAt, id)}); err != nil {
		return fmt.Errorf("library: delete %s: %w", id, err)
	}
	l.logger.Debug("record deleted", "id", id)
	return nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns all records.
func (l *Library) List(ctx context.Context, limit int) ([]*Record, error) {
	var out []*Record
	for e, err := range l.store.scanDesc([]byte(idxPrefix)) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, id, err := parseIndexKey(e.key)
		if err != nil {
			return nil, err
		}
		r, err := l.get(id)
		if errors.Is(err, ErrNotFound) {
			l.logger.Warn("dangling index entry", "key", string(e.key))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close releases the underlying store.
func (l *Library) Close() error {
	return l.store.close()
}
