package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/checklist/internal/model"
)

// Catalogs are YAML documents; plain JSON is accepted too since yaml.v3 parses it.

//go:embed default.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Default returns the catalog bundled with the binary.
func Default() (*model.Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads and validates a catalog file.
func Load(path string) (*model.Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*model.Catalog, error) {
	var c model.Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks id uniqueness: group ids across the whole catalog,
// entry ids within their group.
func Validate(c *model.Catalog) error {
	if len(c.Views) == 0 {
		return fmt.Errorf("%w: no views", ErrInvalidCatalog)
	}
	views := make(map[string]bool, len(c.Views))
	groups := make(map[string]string)
	for vi, v := range c.Views {
		if v.Name == "" {
			return fmt.Errorf("%w: view %d has no name", ErrInvalidCatalog, vi)
		}
		if views[v.Name] {
			return fmt.Errorf("%w: duplicate view %q", ErrInvalidCatalog, v.Name)
		}
		views[v.Name] = true

		for _, g := range v.Lists {
			if g.ID == "" {
				return fmt.Errorf("%w: list in view %q has no id", ErrInvalidCatalog, v.Name)
			}
			if prev, dup := groups[g.ID]; dup {
				return fmt.Errorf("%w: list %q defined in %q and %q", ErrInvalidCatalog, g.ID, prev, v.Name)
			}
			groups[g.ID] = v.Name

			entries := make(map[string]bool, len(g.Requirements))
			for _, e := range g.Requirements {
				if e.ID == "" {
					return fmt.Errorf("%w: entry in list %q has no id", ErrInvalidCatalog, g.ID)
				}
				if entries[e.ID] {
					return fmt.Errorf("%w: duplicate entry %q in list %q", ErrInvalidCatalog, e.ID, g.ID)
				}
				entries[e.ID] = true
			}
		}
	}
	return nil
}
