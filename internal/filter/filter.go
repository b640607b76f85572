// Package filter decides which list-groups and entries are shown.
package filter

import (
	"fmt"
	"strings"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store/kv"
)

const (
	KeyShowCompleted = "showCompleted"
	KeyShowBaseGame  = "showBaseGame"
	KeyShowDLC       = "showDLC"
)

type Flag int

const (
	Completed Flag = iota
	BaseGame
	DLC
)

func (f Flag) String() string {
	switch f {
	case Completed:
		return "completed"
	case BaseGame:
		return "base"
	case DLC:
		return "dlc"
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

// Key is the storage key the flag is persisted under.
func (f Flag) Key() string {
	switch f {
	case Completed:
		return KeyShowCompleted
	case BaseGame:
		return KeyShowBaseGame
	case DLC:
		return KeyShowDLC
	}
	return ""
}

// ParseFlag accepts the short names used on the command line as well as the
// storage keys.
func ParseFlag(name string) (Flag, error) {
	switch strings.ToLower(name) {
	case "completed", "done", strings.ToLower(KeyShowCompleted):
		return Completed, nil
	case "base", "basegame", "base-game", strings.ToLower(KeyShowBaseGame):
		return BaseGame, nil
	case "dlc", strings.ToLower(KeyShowDLC):
		return DLC, nil
	}
	return 0, fmt.Errorf("unknown filter %q (want completed, base or dlc)", name)
}

// Flags are the three visibility switches.
type Flags struct {
	ShowCompleted bool
	ShowBaseGame  bool
	ShowDLC       bool
}

func Default() Flags {
	return Flags{ShowCompleted: true, ShowBaseGame: true, ShowDLC: false}
}

// Load reads each flag from its own key, defaulting individually.
func Load(store *kv.Store) Flags {
	d := Default()
	return Flags{
		ShowCompleted: kv.Read(store, KeyShowCompleted, d.ShowCompleted),
		ShowBaseGame:  kv.Read(store, KeyShowBaseGame, d.ShowBaseGame),
		ShowDLC:       kv.Read(store, KeyShowDLC, d.ShowDLC),
	}
}

func (f Flags) Get(flag Flag) bool {
	switch flag {
	case Completed:
		return f.ShowCompleted
	case BaseGame:
		return f.ShowBaseGame
	case DLC:
		return f.ShowDLC
	}
	return false
}

func (f Flags) Set(flag Flag, v bool) Flags {
	switch flag {
	case Completed:
		f.ShowCompleted = v
	case BaseGame:
		f.ShowBaseGame = v
	case DLC:
		f.ShowDLC = v
	}
	return f
}

func (f Flags) Toggle(flag Flag) Flags { return f.Set(flag, !f.Get(flag)) }

// Persist writes a single flag.
func (f Flags) Persist(store *kv.Store, flag Flag) {
	kv.Write(store, flag.Key(), f.Get(flag))
}

// GroupVisible reports whether a list-group is shown.
//
// A base-game group that contains DLC entries stays visible with base game
// hidden, so its DLC entries remain reachable.
func GroupVisible(g model.ListGroup, allComplete bool, f Flags) bool {
	switch {
	case allComplete && !f.ShowCompleted:
		return false
	case g.IsDLC && !f.ShowDLC:
		return false
	case !g.IsDLC && !g.HasDLCRequirements() && !f.ShowBaseGame:
		return false
	}
	return true
}

// EntryVisible reports whether an entry inside a visible group is shown.
func EntryVisible(e model.Entry, completed bool, f Flags) bool {
	switch {
	case e.IsDLC && !f.ShowDLC:
		return false
	case !e.IsDLC && !f.ShowBaseGame:
		return false
	case completed && !f.ShowCompleted:
		return false
	}
	return true
}
