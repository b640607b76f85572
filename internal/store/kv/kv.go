// Package kv is a typed key/value adapter over a durable byte store.
//
// Values are JSON-encoded. Reads go through an in-memory cache that every
// write updates synchronously, so a value read right after it was written is
// returned as-is without decoding storage again. Callers must treat values
// returned by Read as immutable snapshots: copy before changing them.
//
// The adapter never reports storage failures to its callers. When the
// backend cannot be read or written, the store switches to a volatile overlay
// for the rest of the process: reads and writes keep working, changes just
// stop being durable. A failed read therefore never leads to a default being
// written over the durable value.
package kv

import (
	"encoding/json"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const DefaultCacheSize = 256

type Store struct {
	backend Backend
	overlay *Memory
	cache   *lru.Cache[string, any]
	log     *zap.Logger
}

func New(b Backend, cacheSize int, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, any](cacheSize)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Store{backend: b, cache: cache, log: log}
}

// Volatile reports whether writes are currently kept in memory only.
func (s *Store) Volatile() bool {
	if s.overlay != nil {
		return true
	}
	_, mem := s.backend.(*Memory)
	return mem
}

// Read returns the value stored under key, or def when the key is missing or
// its stored value does not decode into T.
func Read[T any](s *Store, key string, def T) T {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	b, ok := s.raw(key)
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		s.log.Debug("stored value does not decode, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	s.cache.Add(key, v)
	return v
}

// Write stores v under key. It never fails from the caller's point of view.
func Write[T any](s *Store, key string, v T) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("value is not serialisable, keeping it in memory only", zap.String("key", key), zap.Error(err))
		s.cache.Add(key, v)
		return
	}
	s.cache.Add(key, v)
	s.put(key, b)
}

// Keys lists every stored key, sorted.
func (s *Store) Keys() []string {
	seen := make(map[string]bool)
	keys, err := s.backend.Keys()
	if err != nil {
		s.log.Warn("list storage keys", zap.Error(err))
	}
	for _, k := range keys {
		seen[k] = true
	}
	if s.overlay != nil {
		ov, _ := s.overlay.Keys()
		for _, k := range ov {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Raw returns the stored JSON for key as-is.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	b, ok := s.raw(key)
	if !ok {
		return nil, false
	}
	return json.RawMessage(b), true
}

func (s *Store) Close() error {
	s.cache.Purge()
	return s.backend.Close()
}

func (s *Store) raw(key string) ([]byte, bool) {
	if s.overlay != nil {
		if b, ok, _ := s.overlay.Get(key); ok {
			return b, true
		}
	}
	b, ok, err := s.backend.Get(key)
	if err != nil {
		s.degrade("storage read failed, changes are not durable for this session", key, err)
		return nil, false
	}
	return b, ok
}

func (s *Store) degrade(msg, key string, err error) {
	if s.overlay == nil {
		s.log.Warn(msg, zap.String("key", key), zap.Error(err))
		s.overlay = NewMemory()
	}
}

func (s *Store) put(key string, b []byte) {
	if s.overlay != nil {
		_ = s.overlay.Set(key, b)
		return
	}
	if err := s.backend.Set(key, b); err != nil {
		s.degrade("storage write failed, changes are not durable for this session", key, err)
		_ = s.overlay.Set(key, b)
	}
}
