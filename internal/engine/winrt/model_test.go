package winrt

import (
	"reflect"
	"testing"
)

type fakeTopic struct {
	path, id, typ, title, intellisense, applies, params string
	ifaces                                              []string
}

func (f fakeTopic) Path() string           { return f.path }
func (f fakeTopic) ID() string             { return f.id }
func (f fakeTopic) Type() string           { return f.typ }
func (f fakeTopic) Title() string          { return f.title }
func (f fakeTopic) IntellisenseID() string { return f.intellisense }
func (f fakeTopic) TypeNameFromIntellisenseID() string {
	for i := len(f.intellisense) - 1; i >= 0; i-- {
		if f.intellisense[i] == '.' {
			return f.intellisense[i+1:]
		}
	}
	return f.intellisense
}
func (f fakeTopic) AppliesRid() string              { return f.applies }
func (f fakeTopic) MethodParameters() string        { return f.params }
func (f fakeTopic) InterfacesImplemented() []string { return f.ifaces }

func topics(ts ...fakeTopic) []Topic {
	out := make([]Topic, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func TestNamespaceAndClassEndToEnd(t *testing.T) {
	m := NewModel()
	m.IngestProject("w_foo", topics(
		fakeTopic{path: "ns.xml", typ: "namespace", title: "Windows.Foo"},
		fakeTopic{path: "x1.xml", id: "X1", typ: "class_winrt"},
	))

	if len(m.Namespaces) != 1 {
		t.Fatalf("expected one namespace, got %d", len(m.Namespaces))
	}
	ns := m.Namespaces[0]
	if ns.Name != "Windows.Foo" || ns.Project != "w_foo" {
		t.Fatalf("unexpected namespace %q/%q", ns.Name, ns.Project)
	}
	if len(ns.Classes) != 1 || ns.Classes[0].ID != "X1" || len(ns.Classes[0].Members) != 0 {
		t.Fatalf("unexpected classes %+v", ns.Classes)
	}
	if ns.Classes[0].Kind != KindClass {
		t.Errorf("unexpected kind %v", ns.Classes[0].Kind)
	}
}

func TestMemberCreatesPlaceholderOnce(t *testing.T) {
	m := NewModel()
	m.IngestProject("w_foo", topics(
		fakeTopic{path: "p.xml", id: "p1", typ: "property_winrt", title: "Widget.Size", applies: "W1", intellisense: "Windows.Foo.Widget.Size"},
		fakeTopic{path: "e.xml", id: "e1", typ: "event_winrt", title: "Widget.Changed", applies: "W1"},
		fakeTopic{path: "r.xml", id: "r1", typ: "method_winrt", title: "Widget.Run", params: "(Int32)", applies: "W1"},
		fakeTopic{path: "w.xml", id: "W1", typ: "class_winrt", intellisense: "Windows.Foo.Widget", ifaces: []string{"IWidget"}},
	))

	ns := m.Namespaces[0]
	if len(ns.Classes) != 1 {
		t.Fatalf("expected exactly one class, got %d", len(ns.Classes))
	}
	c := ns.Classes[0]
	if c.ID != "W1" || c.Name != "Widget" || c.Kind != KindClass || c.Path != "w.xml" {
		t.Fatalf("placeholder not upgraded: %+v", c)
	}
	if len(c.Members) != 3 {
		t.Fatalf("expected three members, got %d", len(c.Members))
	}
	if _, ok := c.MemberByName("Widget.Run(Int32)"); !ok {
		t.Error("method name should carry its parameter list")
	}
	if mem, ok := c.MemberByIntellisenseID("Windows.Foo.Widget.Size"); !ok || mem.ID != "p1" {
		t.Error("expected lookup by intellisense id")
	}
	if !reflect.DeepEqual(c.Interfaces, []string{"IWidget"}) {
		t.Errorf("unexpected interfaces %v", c.Interfaces)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	input := topics(
		fakeTopic{typ: "namespace", title: "Windows.Foo"},
		fakeTopic{id: "W1", typ: "class_winrt", intellisense: "Windows.Foo.Widget"},
		fakeTopic{id: "m1", typ: "method_winrt", title: "Widget.Run", applies: "W1"},
		fakeTopic{typ: "property_winrt", title: "Widget.Size", intellisense: "Windows.Foo.Widget.Size", applies: "W1"},
		fakeTopic{typ: "ovw", title: "Overview"},
	)

	m := NewModel()
	m.IngestProject("w_foo", input)
	ns1, cl1, mem1 := m.Counts()
	m.IngestProject("w_foo", input)
	ns2, cl2, mem2 := m.Counts()

	if ns1 != ns2 || cl1 != cl2 || mem1 != mem2 {
		t.Fatalf("second ingest changed the tree: %d/%d/%d -> %d/%d/%d", ns1, cl1, mem1, ns2, cl2, mem2)
	}
	if cl2 != 1 || mem2 != 2 {
		t.Fatalf("unexpected counts %d classes %d members", cl2, mem2)
	}
}

func TestEnsureClassMergePolicy(t *testing.T) {
	var reports []AmbiguousMerge
	m := NewModel()
	m.OnAmbiguous = func(a AmbiguousMerge) { reports = append(reports, a) }
	ns := m.EnsureNamespace("w_foo")

	byID := ns.EnsureClass(ClassSpec{ID: "A1"})
	byName := ns.EnsureClass(ClassSpec{Name: "Beta", Kind: KindEnum})

	got := ns.EnsureClass(ClassSpec{ID: "A1", Name: "Beta", Kind: KindStruct})
	if got != byID {
		t.Fatal("id match must win")
	}
	if len(reports) != 1 || reports[0].ByID != byID || reports[0].ByName != byName {
		t.Fatalf("expected one ambiguity report, got %+v", reports)
	}
	if byID.Name != "Beta" || byID.Kind != KindStruct {
		t.Errorf("unset fields should be filled: %+v", byID)
	}
	if byName.Kind != KindEnum {
		t.Error("name-matched class must be untouched")
	}

	// Set fields are never overwritten.
	ns.EnsureClass(ClassSpec{ID: "A1", Kind: KindClass})
	if byID.Kind != KindStruct {
		t.Error("kind must not change once known")
	}

	// Name-only then id-only references merge into one record.
	c := ns.EnsureClass(ClassSpec{Name: "Gamma"})
	if ns.EnsureClass(ClassSpec{ID: "G1", Name: "Gamma"}) != c || c.ID != "G1" {
		t.Fatal("name match should merge and adopt the id")
	}
	if ns.EnsureClass(ClassSpec{ID: "G1"}) != c {
		t.Fatal("adopted id must be indexed")
	}

	// nil interfaces keep the stored list; non-nil replaces it.
	ns.EnsureClass(ClassSpec{ID: "G1", Interfaces: []string{"IA"}})
	ns.EnsureClass(ClassSpec{ID: "G1"})
	if len(c.Interfaces) != 1 {
		t.Error("nil interface list must not clear the stored one")
	}
}

func TestCommittedNameIsImmutable(t *testing.T) {
	m := NewModel()
	m.IngestProject("w_foo", topics(
		fakeTopic{typ: "namespace", title: "Windows.Foo"},
		fakeTopic{id: "A", typ: "enum_winrt", intellisense: "Windows.Foo.A"},
	))
	m.IngestProject("w_foo", topics(
		fakeTopic{typ: "namespace", title: "Windows.Other"},
		fakeTopic{id: "B", typ: "enum_winrt", intellisense: "Windows.Foo.B"},
	))
	if m.Namespaces[0].Name != "Windows.Foo" {
		t.Fatalf("committed name changed to %q", m.Namespaces[0].Name)
	}
	if m.ProjectForNamespace("Windows.Foo") != "w_foo" || m.ProjectForNamespace("Windows.Other") != "" {
		t.Error("unexpected project lookup")
	}
}

func TestPruneAndSort(t *testing.T) {
	m := NewModel()
	m.IngestProject("w_b", topics(
		fakeTopic{typ: "namespace", title: "Windows.B"},
		fakeTopic{id: "Z", typ: "class_winrt", intellisense: "Windows.B.Zeta"},
		fakeTopic{id: "A", typ: "interface_winrt", intellisense: "Windows.B.IAlpha"},
		fakeTopic{id: "X", typ: "class_winrt", intellisense: "Windows.B.Excluded"},
		fakeTopic{typ: "method_winrt", title: "Orphan.Run"},
		fakeTopic{id: "m2", typ: "method_winrt", title: "Zeta.B", applies: "Z"},
		fakeTopic{id: "m1", typ: "method_winrt", title: "Zeta.A", applies: "Z"},
	))
	m.IngestProject("w_a", topics(
		fakeTopic{typ: "namespace", title: "Windows.A"},
		fakeTopic{id: "S", typ: "struct_winrt", intellisense: "Windows.A.Point"},
	))
	m.IngestProject("w_nameless", topics(
		fakeTopic{id: "N", typ: "class_winrt", intellisense: "X.N"},
	))

	m.Prune(func(q string) bool { return q == "Windows.B.Excluded" })
	m.Sort()

	if len(m.Namespaces) != 2 || m.Namespaces[0].Name != "Windows.A" || m.Namespaces[1].Name != "Windows.B" {
		t.Fatalf("unexpected namespaces after prune/sort")
	}
	b := m.Namespaces[1]
	if len(b.Classes) != 2 || b.Classes[0].Name != "IAlpha" || b.Classes[1].Name != "Zeta" {
		t.Fatalf("unexpected classes %+v", b.Classes)
	}
	zeta := b.Classes[1]
	if zeta.Members[0].Name != "Zeta.A" {
		t.Error("members should be sorted by name")
	}
	if !m.Namespaces[0].Classes[0].HasMembers() {
		t.Error("structs always have members")
	}
	if b.ClassByID("X") != nil {
		t.Error("pruned class must leave the index")
	}
}

func TestHasTypeAndDisplayName(t *testing.T) {
	m := NewModel()
	m.IngestProject("w_c", topics(
		fakeTopic{typ: "namespace", title: "Windows.C"},
		fakeTopic{id: "L", typ: "class_winrt", intellisense: "Windows.C.List`1", ifaces: []string{"IVector"}},
	))
	if !m.HasType("Windows.C", "List`1") || !m.HasType("Windows.C", "IVector") || m.HasType("Windows.C", "Map") {
		t.Error("unexpected HasType results")
	}
	c := m.Class("Windows.C", "List`1")
	if c == nil || c.DisplayName() != "List" {
		t.Fatalf("unexpected class %+v", c)
	}
}

func TestAddInjected(t *testing.T) {
	m := NewModel()
	m.IngestProject("w_c", topics(
		fakeTopic{typ: "namespace", title: "Windows.C"},
		fakeTopic{id: "L", typ: "class_winrt", intellisense: "Windows.C.List"},
	))
	c := m.AddInjected("Windows.C", "Hidden")
	if c.Provenance != FromConfigFile || m.Class("Windows.C", "Hidden") != c {
		t.Fatal("injected class should join the existing namespace")
	}
	m.AddInjected("Windows.New", "Thing")
	if m.ProjectForNamespace("Windows.New") == "" {
		t.Fatal("injected class in an unknown namespace should create it")
	}
}

func TestKindOf(t *testing.T) {
	cases := map[string]TopicKind{
		"function":              KindMethod,
		"attribute":             KindAttribute,
		"method_overload_winrt": KindNotYetKnown,
		"nodepage":              KindNotYetKnown,
		"bogus":                 KindNotYetKnown,
	}
	for tag, want := range cases {
		if got := KindOf(tag); got != want {
			t.Errorf("%s: expected %v, got %v", tag, want, got)
		}
	}
}
