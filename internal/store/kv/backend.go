package kv

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Backend is the durable byte-level storage behind a Store.
// Values are JSON documents; Get reports ok=false for a missing key.
type Backend interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Keys() ([]string, error)
	Close() error
}

const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// OpenBackend opens the backend of the given kind rooted at dir.
// When the durable backend cannot be opened, a memory backend is returned
// instead and the failure is logged; the caller keeps working, just without
// durability for this process.
func OpenBackend(kind, dir string, log *zap.Logger) Backend {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		b   Backend
		err error
	)
	switch kind {
	case KindMemory:
		return NewMemory()
	case KindSQLite:
		b, err = OpenSQLite(dir)
	case KindFile, "":
		b, err = OpenFile(dir)
	default:
		err = fmt.Errorf("unknown storage backend %q", kind)
	}
	if err != nil {
		log.Warn("storage unavailable, falling back to volatile memory",
			zap.String("backend", kind), zap.String("dir", dir), zap.Error(err))
		return NewMemory()
	}
	return b
}

// Memory is a volatile in-process backend.
type Memory struct {
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error { return nil }
