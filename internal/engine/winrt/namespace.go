package winrt

// Namespace holds the types documented by one reference project. Its
// name is committed once, after the project pass that created it.
type Namespace struct {
	Name    string
	Project string
	Classes []*Class

	byID    map[string]*Class
	byName  map[string]*Class
	unowned *Class

	onAmbiguous func(AmbiguousMerge)
}

// ClassSpec describes what a topic knows about a type.
type ClassSpec struct {
	ID         string
	Name       string
	Kind       TopicKind
	Interfaces []string
	Path       string
	Provenance Provenance
}

// AmbiguousMerge is reported when a spec's id and name each match a
// different existing class. The id match wins.
type AmbiguousMerge struct {
	Namespace string
	Project   string
	ID        string
	Name      string
	ByID      *Class
	ByName    *Class
}

func newNamespace(project string, onAmbiguous func(AmbiguousMerge)) *Namespace {
	return &Namespace{
		Project:     project,
		byID:        make(map[string]*Class),
		byName:      make(map[string]*Class),
		onAmbiguous: onAmbiguous,
	}
}

// EnsureClass finds or creates the class for spec. An id match wins over a
// name match. Unset id, name and kind on an existing class are filled from
// spec; set fields are never overwritten. A non-nil interface list replaces
// the stored one.
func (n *Namespace) EnsureClass(spec ClassSpec) *Class {
	if spec.ID == "" && spec.Name == "" {
		return n.ensureUnowned(spec)
	}

	var byID, byName *Class
	if spec.ID != "" {
		byID = n.byID[spec.ID]
	}
	if spec.Name != "" {
		byName = n.byName[spec.Name]
	}
	if byID != nil && byName != nil && byID != byName && n.onAmbiguous != nil {
		n.onAmbiguous(AmbiguousMerge{
			Namespace: n.Name,
			Project:   n.Project,
			ID:        spec.ID,
			Name:      spec.Name,
			ByID:      byID,
			ByName:    byName,
		})
	}

	c := byID
	if c == nil {
		c = byName
	}
	if c == nil {
		c = &Class{
			ID:         spec.ID,
			Name:       spec.Name,
			Kind:       spec.Kind,
			Path:       spec.Path,
			Provenance: spec.Provenance,
		}
		n.Classes = append(n.Classes, c)
	} else {
		if c.ID == "" {
			c.ID = spec.ID
		}
		if c.Name == "" {
			c.Name = spec.Name
		}
		if c.Kind == KindNotYetKnown && spec.Kind != KindNotYetKnown {
			c.Kind = spec.Kind
			if spec.Path != "" {
				c.Path = spec.Path
			}
		}
	}
	if spec.Interfaces != nil {
		c.Interfaces = spec.Interfaces
	}
	n.index(c)
	return c
}

// ensureUnowned collects members whose owner could not be identified.
func (n *Namespace) ensureUnowned(spec ClassSpec) *Class {
	if n.unowned == nil {
		n.unowned = &Class{Path: spec.Path, Provenance: spec.Provenance}
		n.Classes = append(n.Classes, n.unowned)
	}
	return n.unowned
}

func (n *Namespace) index(c *Class) {
	if c.ID != "" {
		if _, ok := n.byID[c.ID]; !ok {
			n.byID[c.ID] = c
		}
	}
	if c.Name != "" {
		if _, ok := n.byName[c.Name]; !ok {
			n.byName[c.Name] = c
		}
	}
}

func (n *Namespace) ClassByID(id string) *Class { return n.byID[id] }

func (n *Namespace) ClassByName(name string) *Class { return n.byName[name] }

// commitName sets the namespace name unless it is already set or name is
// empty.
func (n *Namespace) commitName(name string) {
	if n.Name == "" && name != "" {
		n.Name = name
	}
}

func (n *Namespace) reindex() {
	n.byID = make(map[string]*Class, len(n.Classes))
	n.byName = make(map[string]*Class, len(n.Classes))
	n.unowned = nil
	for _, c := range n.Classes {
		n.index(c)
	}
}
