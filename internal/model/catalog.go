package model

// Entry is one completable requirement inside a list-group.
// Description is markup supplied by the catalog; the engine never interprets it.
type Entry struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	IsDLC       bool   `yaml:"isDLC,omitempty" json:"isDLC,omitempty"`
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	ImageURL    string `yaml:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// ListGroup is a named, ordered collection of entries.
type ListGroup struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	URL          string  `yaml:"url,omitempty" json:"url,omitempty"`
	ImageURL     string  `yaml:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageAlt     string  `yaml:"imageAlt,omitempty" json:"imageAlt,omitempty"`
	IsDLC        bool    `yaml:"isDLC,omitempty" json:"isDLC,omitempty"`
	Requirements []Entry `yaml:"requirements" json:"requirements"`
}

// HasDLCRequirements reports whether any entry in the group is DLC content.
func (g ListGroup) HasDLCRequirements() bool {
	for _, e := range g.Requirements {
		if e.IsDLC {
			return true
		}
	}
	return false
}

// EntryIDs returns the entry ids in catalog order.
func (g ListGroup) EntryIDs() []string {
	ids := make([]string, 0, len(g.Requirements))
	for _, e := range g.Requirements {
		ids = append(ids, e.ID)
	}
	return ids
}

func (g ListGroup) Entry(id string) (Entry, bool) {
	for _, e := range g.Requirements {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// View is a named tab of the catalog, e.g. "Quests".
type View struct {
	Name  string      `yaml:"name" json:"name"`
	Lists []ListGroup `yaml:"lists" json:"lists"`
}

// GroupIDs returns the ids of the view's list-groups in order.
func (v View) GroupIDs() []string {
	ids := make([]string, 0, len(v.Lists))
	for _, g := range v.Lists {
		ids = append(ids, g.ID)
	}
	return ids
}

// Catalog is the static, read-only hierarchy the checklist is built from.
type Catalog struct {
	Views []View `yaml:"views" json:"views"`
}

func (c *Catalog) ViewNames() []string {
	names := make([]string, 0, len(c.Views))
	for _, v := range c.Views {
		names = append(names, v.Name)
	}
	return names
}

func (c *Catalog) View(name string) (View, bool) {
	for _, v := range c.Views {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// Group finds a list-group by id across all views.
func (c *Catalog) Group(id string) (ListGroup, bool) {
	for _, v := range c.Views {
		for _, g := range v.Lists {
			if g.ID == id {
				return g, true
			}
		}
	}
	return ListGroup{}, false
}
