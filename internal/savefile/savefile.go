// Package savefile moves the checklist's key/value space to and from a
// single JSON document, so progress can be backed up or carried to another
// machine.
package savefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/idilsaglam/checklist/internal/completion"
	"github.com/idilsaglam/checklist/internal/filter"
	"github.com/idilsaglam/checklist/internal/store/kv"
)

var ErrInvalidSaveFile = errors.New("invalid save file")

// Result lists the keys an import wrote and the ones it ignored.
type Result struct {
	Imported []string
	Skipped  []string
}

// InSpace reports whether key belongs to the checklist's storage space.
func InSpace(key string) bool {
	if isFlag(key) {
		return true
	}
	return strings.HasPrefix(key, completion.KeyPrefix) && len(key) > len(completion.KeyPrefix)
}

// Groups is the set of list-group ids a save file may carry progress for.
// A nil Groups accepts any group.
type Groups map[string]bool

func NewGroups(ids []string) Groups {
	g := make(Groups, len(ids))
	for _, id := range ids {
		g[id] = true
	}
	return g
}

// accepts reports whether key is in the checklist space and, for completion
// keys, names a known group.
func (g Groups) accepts(key string) bool {
	if !InSpace(key) {
		return false
	}
	if g == nil || !strings.HasPrefix(key, completion.KeyPrefix) {
		return true
	}
	return g[strings.TrimPrefix(key, completion.KeyPrefix)]
}

func isFlag(key string) bool {
	return key == filter.KeyShowCompleted || key == filter.KeyShowBaseGame || key == filter.KeyShowDLC
}

// Export writes every stored key of the checklist space as one JSON object.
// Progress of groups outside groups is left out.
func Export(store *kv.Store, w io.Writer, groups Groups) error {
	doc := make(map[string]json.RawMessage)
	for _, k := range store.Keys() {
		if !groups.accepts(k) {
			continue
		}
		if raw, ok := store.Raw(k); ok {
			doc[k] = raw
		}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write save file: %w", err)
	}
	return nil
}

// Import writes each value of the document through the normal store path.
// Keys outside the checklist space, progress of unknown groups and flags
// that are not booleans are skipped. Completion values are not validated
// here; they are repaired when next hydrated.
func Import(store *kv.Store, r io.Reader, groups Groups, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read save file: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil || doc == nil {
		return Result{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidSaveFile)
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var res Result
	for _, k := range keys {
		if !groups.accepts(k) {
			log.Info("skipping foreign save file key", zap.String("key", k))
			res.Skipped = append(res.Skipped, k)
			continue
		}
		if isFlag(k) {
			var v bool
			if err := json.Unmarshal(doc[k], &v); err != nil {
				log.Info("skipping non-boolean filter flag", zap.String("key", k))
				res.Skipped = append(res.Skipped, k)
				continue
			}
			kv.Write(store, k, v)
			res.Imported = append(res.Imported, k)
			continue
		}
		kv.Write(store, k, doc[k])
		res.Imported = append(res.Imported, k)
	}
	return res, nil
}
