package kv

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenWrites accepts reads but rejects every write, like a full disk.
type brokenWrites struct {
	*Memory
}

func (b brokenWrites) Set(string, []byte) error { return errors.New("quota exceeded") }

// lockedOnce fails the first read, like a busy sqlite database.
type lockedOnce struct {
	*Memory
	failed bool
}

func (b *lockedOnce) Get(key string) ([]byte, bool, error) {
	if !b.failed {
		b.failed = true
		return nil, false, errors.New("database is locked")
	}
	return b.Memory.Get(key)
}

func TestReadFailureKeepsDurableValue(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.Set("checklist_g1", []byte(`{"e1":true}`)))
	s := New(&lockedOnce{Memory: mem}, 0, nil)

	assert.Nil(t, Read[map[string]bool](s, "checklist_g1", nil))
	assert.True(t, s.Volatile())

	Write(s, "checklist_g1", map[string]bool{"e1": false})
	assert.Equal(t, map[string]bool{"e1": false}, Read[map[string]bool](s, "checklist_g1", nil))

	durable, ok, err := mem.Get("checklist_g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"e1":true}`, string(durable))
}

func TestReadMissingReturnsDefault(t *testing.T) {
	s := New(NewMemory(), 0, nil)
	assert.Equal(t, true, Read(s, "showCompleted", true))
	assert.Equal(t, map[string]bool(nil), Read[map[string]bool](s, "checklist_g1", nil))
}

func TestWriteThenRead(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, s *Store)
	}{
		{"bool", func(t *testing.T, s *Store) {
			Write(s, "showDLC", true)
			assert.True(t, Read(s, "showDLC", false))
		}},
		{"map", func(t *testing.T, s *Store) {
			Write(s, "checklist_g1", map[string]bool{"e1": true, "e2": false})
			assert.Equal(t, map[string]bool{"e1": true, "e2": false}, Read[map[string]bool](s, "checklist_g1", nil))
		}},
		{"string", func(t *testing.T, s *Store) {
			Write(s, "theme", "neon")
			assert.Equal(t, "neon", Read(s, "theme", "classic"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, New(NewMemory(), 0, nil))
		})
	}
}

func TestReadMalformedReturnsDefault(t *testing.T) {
	mem := NewMemory()
	require.NoError(t, mem.Set("checklist_g1", []byte(`"not a map"`)))
	require.NoError(t, mem.Set("showDLC", []byte(`{`)))

	s := New(mem, 0, nil)
	assert.Nil(t, Read[map[string]bool](s, "checklist_g1", nil))
	assert.True(t, Read(s, "showDLC", true))
}

func TestWriteUpdatesCacheSynchronously(t *testing.T) {
	mem := NewMemory()
	s := New(mem, 0, nil)

	Write(s, "checklist_g1", map[string]bool{"e1": true})
	// Corrupt storage behind the store's back: the cached value still wins.
	require.NoError(t, mem.Set("checklist_g1", []byte(`garbage`)))

	assert.Equal(t, map[string]bool{"e1": true}, Read[map[string]bool](s, "checklist_g1", nil))
}

func TestReadDecodesWhenCachedTypeDiffers(t *testing.T) {
	s := New(NewMemory(), 0, nil)

	// Imports write raw JSON; typed reads must still see the value.
	Write(s, "showDLC", json.RawMessage(`true`))
	assert.True(t, Read(s, "showDLC", false))

	raw, ok := s.Raw("showDLC")
	require.True(t, ok)
	assert.JSONEq(t, `true`, string(raw))
}

func TestWriteFailureDegradesToVolatile(t *testing.T) {
	s := New(brokenWrites{NewMemory()}, 1, nil)
	assert.False(t, s.Volatile())

	Write(s, "checklist_g1", map[string]bool{"e1": true})
	assert.True(t, s.Volatile())

	// Evict g1 from the single-slot cache so the next read goes to storage.
	Write(s, "showDLC", true)
	assert.Equal(t, map[string]bool{"e1": true}, Read[map[string]bool](s, "checklist_g1", nil))
	assert.True(t, Read(s, "showDLC", false))
	assert.Equal(t, []string{"checklist_g1", "showDLC"}, s.Keys())
}

func TestFileBackendPersists(t *testing.T) {
	dir := t.TempDir()

	b, err := OpenFile(dir)
	require.NoError(t, err)
	s := New(b, 0, nil)
	Write(s, "checklist_g1", map[string]bool{"e1": true})
	Write(s, "showBaseGame", false)
	require.NoError(t, s.Close())

	_, err = os.Stat(filepath.Join(dir, dataFileName))
	require.NoError(t, err)

	b2, err := OpenFile(dir)
	require.NoError(t, err)
	s2 := New(b2, 0, nil)
	assert.Equal(t, map[string]bool{"e1": true}, Read[map[string]bool](s2, "checklist_g1", nil))
	assert.False(t, Read(s2, "showBaseGame", true))
	assert.Equal(t, []string{"checklist_g1", "showBaseGame"}, s2.Keys())
}

func TestFileBackendRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, dataFileName), []byte("{nope"), 0o644))

	_, err := OpenFile(dir)
	assert.Error(t, err)

	b := OpenBackend(KindFile, dir, nil)
	_, isMem := b.(*Memory)
	assert.True(t, isMem, "corrupt storage should fall back to memory")
}

func TestSQLiteBackendPersists(t *testing.T) {
	dir := t.TempDir()

	b, err := OpenSQLite(dir)
	require.NoError(t, err)
	s := New(b, 0, nil)
	Write(s, "checklist_g1", map[string]bool{"e1": false, "e2": true})
	Write(s, "checklist_g1", map[string]bool{"e1": true, "e2": true})
	require.NoError(t, s.Close())

	b2, err := OpenSQLite(dir)
	require.NoError(t, err)
	s2 := New(b2, 0, nil)
	defer s2.Close()
	assert.Equal(t, map[string]bool{"e1": true, "e2": true}, Read[map[string]bool](s2, "checklist_g1", nil))
	assert.Equal(t, []string{"checklist_g1"}, s2.Keys())
}

func TestOpenBackendUnavailableFallsBackToMemory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	dir := filepath.Join(blocker, "data")

	for _, kind := range []string{KindFile, KindSQLite, "bogus"} {
		t.Run(kind, func(t *testing.T) {
			b := OpenBackend(kind, dir, nil)
			_, isMem := b.(*Memory)
			assert.True(t, isMem)

			s := New(b, 0, nil)
			assert.True(t, s.Volatile())
			Write(s, "showDLC", true)
			assert.True(t, Read(s, "showDLC", false))
		})
	}
}
