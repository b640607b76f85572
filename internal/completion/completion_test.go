package completion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store/kv"
)

func testGroup() model.ListGroup {
	return model.ListGroup{
		ID:   "g1",
		Name: "Group one",
		Requirements: []model.Entry{
			{ID: "e1"},
			{ID: "e2", IsDLC: true},
			{ID: "e3"},
		},
	}
}

func newList(t *testing.T) (*List, *kv.Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	store := kv.New(mem, 0, nil)
	return For(store, testGroup(), nil), store, mem
}

func TestKey(t *testing.T) {
	assert.Equal(t, "checklist_g1", Key("g1"))
}

func TestHydrateDefaultsAndPersists(t *testing.T) {
	l, _, mem := newList(t)

	s := l.Hydrate()
	assert.Equal(t, State{"e1": false, "e2": false, "e3": false}, s)

	raw, ok, err := mem.Get("checklist_g1")
	require.NoError(t, err)
	require.True(t, ok, "default state must be persisted on first hydrate")
	assert.JSONEq(t, `{"e1":false,"e2":false,"e3":false}`, string(raw))
}

type lockedOnce struct {
	*kv.Memory
	failed bool
}

func (b *lockedOnce) Get(key string) ([]byte, bool, error) {
	if !b.failed {
		b.failed = true
		return nil, false, errors.New("database is locked")
	}
	return b.Memory.Get(key)
}

func TestHydrateReadFailureKeepsProgress(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(Key("g1"), []byte(`{"e1":true,"e2":true,"e3":false}`)))
	store := kv.New(&lockedOnce{Memory: mem}, 0, nil)

	s := For(store, testGroup(), nil).Hydrate()
	assert.Equal(t, 0, s.Completed())
	assert.True(t, store.Volatile())

	raw, ok, err := mem.Get(Key("g1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"e1":true,"e2":true,"e3":false}`, string(raw))

	// next process reads the untouched progress
	again := For(kv.New(mem, 0, nil), testGroup(), nil).Hydrate()
	assert.Equal(t, State{"e1": true, "e2": true, "e3": false}, again)
}

func TestHydrateEmptyGroup(t *testing.T) {
	store := kv.New(kv.NewMemory(), 0, nil)
	l := For(store, model.ListGroup{ID: "empty"}, nil)

	s := l.Hydrate()
	assert.Empty(t, s)
	assert.Equal(t, Metrics{Completed: 0, Total: 0, AllComplete: true}, s.Metrics())
}

func TestHydrateSelfHeals(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   State
	}{
		{"not a mapping", `["e1","e2"]`, State{"e1": false, "e2": false, "e3": false}},
		{"wrong value type", `{"e1":"yes"}`, State{"e1": false, "e2": false, "e3": false}},
		{"null", `null`, State{"e1": false, "e2": false, "e3": false}},
		{"missing key", `{"e1":true,"e2":true}`, State{"e1": true, "e2": true, "e3": false}},
		{"stale key", `{"e1":true,"e2":false,"e3":true,"old":true}`, State{"e1": true, "e2": false, "e3": true}},
		{"disjoint keys", `{"x":true,"y":true,"z":true}`, State{"e1": false, "e2": false, "e3": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := kv.NewMemory()
			require.NoError(t, mem.Set("checklist_g1", []byte(tt.stored)))
			l := For(kv.New(mem, 0, nil), testGroup(), nil)

			assert.Equal(t, tt.want, l.Hydrate())

			// A fresh store over the same backend sees the repaired value.
			again := For(kv.New(mem, 0, nil), testGroup(), nil)
			assert.Equal(t, tt.want, again.Hydrate())
		})
	}
}

func TestSetEntryIsIdempotent(t *testing.T) {
	l, _, _ := newList(t)

	once, err := l.SetEntry("e2", true)
	require.NoError(t, err)
	twice, err := l.SetEntry("e2", true)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, State{"e1": false, "e2": true, "e3": false}, l.Hydrate())
}

func TestSetEntryDoesNotTouchRetainedSnapshot(t *testing.T) {
	l, _, _ := newList(t)

	before := l.Hydrate()
	after, err := l.SetEntry("e1", true)
	require.NoError(t, err)

	assert.False(t, before["e1"], "previous snapshot must not change")
	assert.True(t, after["e1"])
	assert.Equal(t, 0, before.Completed())
	assert.Equal(t, 1, after.Completed())
}

func TestSetEntryUnknown(t *testing.T) {
	l, store, _ := newList(t)
	l.Hydrate()

	_, err := l.SetEntry("nope", true)
	assert.ErrorIs(t, err, ErrUnknownEntry)
	assert.Equal(t, map[string]bool{"e1": false, "e2": false, "e3": false},
		kv.Read[map[string]bool](store, "checklist_g1", nil))
}

func TestToggle(t *testing.T) {
	l, _, _ := newList(t)

	s, err := l.Toggle("e3")
	require.NoError(t, err)
	assert.True(t, s["e3"])

	s, err = l.Toggle("e3")
	require.NoError(t, err)
	assert.False(t, s["e3"])
}

func TestSetAllCounts(t *testing.T) {
	l, _, _ := newList(t)

	s := l.SetAll(true)
	assert.Equal(t, 3, s.Completed())
	assert.True(t, s.AllComplete())
	assert.Equal(t, 3, l.Hydrate().Completed())

	s = l.SetAll(false)
	assert.Equal(t, 0, s.Completed())
	assert.False(t, s.AllComplete())
}

func TestToggleAll(t *testing.T) {
	t.Run("uniform state is its own inverse", func(t *testing.T) {
		for _, start := range []bool{true, false} {
			l, _, _ := newList(t)
			initial := l.SetAll(start)

			l.ToggleAll()
			assert.Equal(t, initial, l.ToggleAll())
		}
	})

	t.Run("mixed state goes to all complete", func(t *testing.T) {
		l, _, _ := newList(t)
		_, err := l.SetEntry("e1", true)
		require.NoError(t, err)

		s := l.ToggleAll()
		assert.Equal(t, State{"e1": true, "e2": true, "e3": true}, s)

		s = l.ToggleAll()
		assert.Equal(t, State{"e1": false, "e2": false, "e3": false}, s)
	})
}

func TestMetrics(t *testing.T) {
	s := State{"e1": true, "e2": false}
	assert.Equal(t, Metrics{Completed: 1, Total: 2, AllComplete: false}, s.Metrics())
	assert.Equal(t, s, s.Clone())
}
