// Package win32 builds the Win32 function map from reference topics and
// groups documented functions by module and by initial character.
package win32

import (
	"sort"
	"strings"
)

// Topic is the read side of a reference topic document.
type Topic interface {
	Path() string
	ID() string
	Type() string
	Title() string
}

// Function is a documented Win32 function. Name keeps the case of the
// topic title.
type Function struct {
	Project string
	ID      string
	Name    string
	Path    string
}

// Model maps function names, case-insensitively, to the first topic that
// documented them.
type Model struct {
	// OnDuplicate is called for every topic whose name is already registered.
	OnDuplicate func(dup, original *Function)

	accepted  map[string]bool
	functions map[string]*Function
}

// NewModel accepts topics whose metadata type is one of topicTypes.
func NewModel(topicTypes []string) *Model {
	accepted := make(map[string]bool, len(topicTypes))
	for _, t := range topicTypes {
		accepted[t] = true
	}
	return &Model{accepted: accepted, functions: make(map[string]*Function)}
}

func (m *Model) IngestProject(project string, topics []Topic) {
	for _, t := range topics {
		if !m.accepted[t.Type()] {
			continue
		}
		fn := &Function{Project: project, ID: t.ID(), Name: t.Title(), Path: t.Path()}
		if original, existed := m.Ensure(fn); existed && m.OnDuplicate != nil {
			m.OnDuplicate(fn, original)
		}
	}
}

// Ensure registers fn unless its name is already taken. It returns the
// registered function and whether it existed before.
func (m *Model) Ensure(fn *Function) (*Function, bool) {
	key := strings.ToLower(fn.Name)
	if existing, ok := m.functions[key]; ok {
		return existing, true
	}
	m.functions[key] = fn
	return fn, false
}

func (m *Model) Function(name string) (*Function, bool) {
	fn, ok := m.functions[strings.ToLower(name)]
	return fn, ok
}

func (m *Model) Len() int { return len(m.functions) }

// Functions returns every registered function ordered by name.
func (m *Model) Functions() []*Function {
	out := make([]*Function, 0, len(m.functions))
	for _, fn := range m.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
