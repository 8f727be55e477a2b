// Package winrt builds the namespace → class → member model of WinRT
// reference topics.
package winrt

import "sort"

// Topic is the read side of a reference topic document.
type Topic interface {
	Path() string
	ID() string
	Type() string
	Title() string
	IntellisenseID() string
	TypeNameFromIntellisenseID() string
	AppliesRid() string
	MethodParameters() string
	InterfacesImplemented() []string
}

// Model is the namespace tree of one docset. There is one namespace per
// reference project.
type Model struct {
	Namespaces []*Namespace

	// OnAmbiguous is called when a type's id and name each match a different
	// existing class.
	OnAmbiguous func(AmbiguousMerge)

	byProject map[string]*Namespace
}

func NewModel() *Model {
	return &Model{byProject: make(map[string]*Namespace)}
}

// EnsureNamespace returns the namespace owned by project, creating it if
// needed.
func (m *Model) EnsureNamespace(project string) *Namespace {
	if ns, ok := m.byProject[project]; ok {
		return ns
	}
	ns := newNamespace(project, m.ambiguous)
	m.Namespaces = append(m.Namespaces, ns)
	m.byProject[project] = ns
	return ns
}

func (m *Model) ambiguous(a AmbiguousMerge) {
	if m.OnAmbiguous != nil {
		m.OnAmbiguous(a)
	}
}

// IngestProject merges the topics of one project into the model. The
// namespace name is taken from the last namespace topic of the project and
// committed after all topics are processed.
func (m *Model) IngestProject(project string, topics []Topic) {
	var pendingName string
	var ns *Namespace
	for _, t := range topics {
		kind := KindOf(t.Type())
		if kind == KindNamespace {
			pendingName = t.Title()
			continue
		}
		if ns == nil {
			ns = m.EnsureNamespace(project)
		}
		ingestTopic(ns, kind, t)
	}
	if ns != nil {
		ns.commitName(pendingName)
	}
}

func ingestTopic(ns *Namespace, kind TopicKind, t Topic) {
	switch {
	case kind.IsMember():
		owner := ns.EnsureClass(ClassSpec{ID: t.AppliesRid(), Path: t.Path()})
		name := t.Title()
		if kind == KindMethod {
			name += t.MethodParameters()
		}
		owner.AddMember(Member{
			ID:             t.ID(),
			Name:           name,
			IntellisenseID: t.IntellisenseID(),
			Kind:           kind,
			Path:           t.Path(),
		})
	case kind.IsType():
		ns.EnsureClass(ClassSpec{
			ID:         t.ID(),
			Name:       t.TypeNameFromIntellisenseID(),
			Kind:       kind,
			Interfaces: t.InterfacesImplemented(),
			Path:       t.Path(),
		})
	}
}

// AddInjected adds a type listed in a side file rather than documented by a
// topic. The type joins the namespace of that name when one exists;
// otherwise a namespace is created for it under a synthetic project.
func (m *Model) AddInjected(namespace, typeName string) *Class {
	ns := m.namespaceNamed(namespace)
	if ns == nil {
		ns = m.EnsureNamespace("injected:" + namespace)
		ns.commitName(namespace)
	}
	return ns.EnsureClass(ClassSpec{ID: namespace + "." + typeName, Name: typeName, Provenance: FromConfigFile})
}

func (m *Model) namespaceNamed(name string) *Namespace {
	for _, ns := range m.Namespaces {
		if ns.Name == name {
			return ns
		}
	}
	return nil
}

// ProjectForNamespace returns the project that documents the named
// namespace, or "".
func (m *Model) ProjectForNamespace(name string) string {
	if ns := m.namespaceNamed(name); ns != nil {
		return ns.Project
	}
	return ""
}

// HasType reports whether namespace ns contains a class called name, or a
// class that implements an interface called name.
func (m *Model) HasType(ns, name string) bool {
	for _, n := range m.Namespaces {
		if n.Name != ns {
			continue
		}
		for _, c := range n.Classes {
			if c.Name == name || c.implements(name) {
				return true
			}
		}
	}
	return false
}

func (m *Model) Class(ns, name string) *Class {
	for _, n := range m.Namespaces {
		if n.Name != ns {
			continue
		}
		if c := n.ClassByName(name); c != nil {
			return c
		}
	}
	return nil
}

// Prune removes classes with no id or no name and classes whose
// "Namespace.Class" name is excluded, then namespaces with no name or no
// remaining classes.
func (m *Model) Prune(excluded func(qualified string) bool) {
	kept := m.Namespaces[:0]
	for _, ns := range m.Namespaces {
		if ns.Name == "" || len(ns.Classes) == 0 {
			delete(m.byProject, ns.Project)
			continue
		}
		classes := ns.Classes[:0]
		for _, c := range ns.Classes {
			if c.ID == "" || c.Name == "" {
				continue
			}
			if excluded != nil && excluded(ns.Name+"."+c.Name) {
				continue
			}
			classes = append(classes, c)
		}
		ns.Classes = classes
		if len(classes) == 0 {
			delete(m.byProject, ns.Project)
			continue
		}
		ns.reindex()
		kept = append(kept, ns)
	}
	m.Namespaces = kept
}

// Sort orders namespaces, classes and members by name.
func (m *Model) Sort() {
	sort.SliceStable(m.Namespaces, func(i, j int) bool {
		return m.Namespaces[i].Name < m.Namespaces[j].Name
	})
	for _, ns := range m.Namespaces {
		sort.SliceStable(ns.Classes, func(i, j int) bool {
			return ns.Classes[i].Name < ns.Classes[j].Name
		})
		for _, c := range ns.Classes {
			sort.SliceStable(c.Members, func(i, j int) bool {
				return c.Members[i].Name < c.Members[j].Name
			})
		}
	}
}

// Counts returns the number of namespaces, classes and members.
func (m *Model) Counts() (namespaces, classes, members int) {
	namespaces = len(m.Namespaces)
	for _, ns := range m.Namespaces {
		classes += len(ns.Classes)
		for _, c := range ns.Classes {
			members += len(c.Members)
		}
	}
	return namespaces, classes, members
}
