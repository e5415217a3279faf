package library

import (
	"bytes"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns a Library that keeps records in memory. logger may be
// nil.
func NewMemory(logger *slog.Logger) *Library {
	return newLibrary(&memoryStore{data: make(map[string][]byte)}, logger)
}

func (m *memoryStore) get(key []byte) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[string(key)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *memoryStore) write(set []entry, del [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range del {
		delete(m.data, string(k))
	}
	for _, e := range set {
		m.data[string(e.key)] = bytes.Clone(e.value)
	}
	return nil
}

func (m *memoryStore) scanDesc(prefix []byte) iter.Seq2[entry, error] {
	m.mu.RLock()
	var matches []entry
	for k, v := range m.data {
		if strings.HasPrefix(k, string(prefix)) {
			matches = append(matches, entry{key: []byte(k), value: bytes.Clone(v)})
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matches, func(a, b entry) int {
		return bytes.Compare(b.key, a.key)
	})

	return func(yield func(entry, error) bool) {
		for _, e := range matches {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *memoryStore) close() error {
	return nil
}
