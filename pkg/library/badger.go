package library

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerOptions configures an on-disk library.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives library and badger messages. If nil, uses
	// slog.Default().
	Logger *slog.Logger
}

type badgerStore struct {
	db *badger.DB
}

// NewBadger opens a BadgerDB-backed Library.
func NewBadger(opts BadgerOptions) (*Library, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("library: BadgerOptions.Dir is required for on-disk mode")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{logger.With("component", "badger")})
	if opts.InMemory {
		dbOpts = dbOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("library: open badger: %w", err)
	}
	return newLibrary(&badgerStore{db: db}, logger), nil
}

func (b *badgerStore) get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *badgerStore) write(set []entry, del [][]byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, k := range del {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for _, e := range set {
			if err := txn.Set(e.key, e.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *badgerStore) scanDesc(prefix []byte) iter.Seq2[entry, error] {
	return func(yield func(entry, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Reverse = true
			iterOpts.Prefix = prefix
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			// In reverse mode Seek lands on the largest key <= the target,
			// so start just past every key under prefix.
			start := append(slices.Clone(prefix), 0xFF)
			for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					if !yield(entry{}, err) {
						return nil
					}
					continue
				}
				if !yield(entry{key: item.KeyCopy(nil), value: val}, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(entry{}, err)
		}
	}
}

func (b *badgerStore) close() error {
	return b.db.Close()
}

// badgerLogger routes badger's printf-style logging to slog. Info and
// debug chatter is demoted to Debug.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(f string, v ...any) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Warningf(f string, v ...any) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Infof(f string, v ...any) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Debugf(f string, v ...any) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(f, v...)))
}
