package browse

import (
	"strings"
	"testing"

	"topicsdk/internal/data/history"
	"topicsdk/internal/engine/winrt"

	tea "github.com/charmbracelet/bubbletea"
)

func testModel() *winrt.Model {
	m := winrt.NewModel()
	ns := m.EnsureNamespace("windows.foo")
	ns.Name = "Windows.Foo"
	w := ns.EnsureClass(winrt.ClassSpec{ID: "W:Windows.Foo.Widget", Name: "Widget", Kind: winrt.KindClass, Path: "w.xml"})
	w.AddMember(winrt.Member{ID: "M:Windows.Foo.Widget.Spin", Name: "Spin", Kind: winrt.KindMethod, Path: "spin.xml"})
	w.AddMember(winrt.Member{ID: "P:Windows.Foo.Widget.Speed", Name: "Speed", Kind: winrt.KindProperty})
	ns.EnsureClass(winrt.ClassSpec{ID: "W:Windows.Foo.Gadget", Name: "Gadget", Kind: winrt.KindEnum, Path: "g.xml"})

	bar := m.EnsureNamespace("windows.bar")
	bar.Name = "Windows.Bar"
	return m
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	updated, _ := m.Update(msg)
	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	return state
}

func TestModel_NamespaceDrillDown(t *testing.T) {
	state := initialModel(testModel(), nil)
	state = send(t, state, tea.WindowSizeMsg{Width: 120, Height: 60})

	if len(state.nsList.Items()) != 2 {
		t.Fatalf("expected 2 namespace items, got %d", len(state.nsList.Items()))
	}

	state = send(t, state, tea.KeyMsg{Type: tea.KeyTab})
	if state.mode != panelNamespaces {
		t.Fatalf("tab before any namespace is open should stay on namespaces, got %v", state.mode)
	}

	state = send(t, state, tea.KeyMsg{Type: tea.KeyEnter})
	if state.mode != panelTypes {
		t.Fatalf("expected types panel after enter, got %v", state.mode)
	}
	if len(state.typeList.Items()) != 2 {
		t.Fatalf("expected 2 type items, got %d", len(state.typeList.Items()))
	}
	if state.typeList.Title != "Windows.Foo" {
		t.Fatalf("unexpected type panel title %q", state.typeList.Title)
	}

	state = send(t, state, tea.KeyMsg{Type: tea.KeyTab})
	if state.mode != panelNamespaces {
		t.Fatalf("expected namespaces panel after tab, got %v", state.mode)
	}
	state = send(t, state, tea.KeyMsg{Type: tea.KeyTab})
	if state.mode != panelTypes {
		t.Fatalf("expected types panel after second tab, got %v", state.mode)
	}
}

func TestModel_MemberDetails(t *testing.T) {
	state := initialModel(testModel(), nil)
	state = send(t, state, tea.WindowSizeMsg{Width: 120, Height: 60})
	state = send(t, state, tea.KeyMsg{Type: tea.KeyEnter})
	state = send(t, state, tea.KeyMsg{Type: tea.KeyEnter})

	if !state.hasDetails {
		t.Fatal("expected member details after enter on a type")
	}
	if got := selectedPath(state); got != "spin.xml" {
		t.Fatalf("expected first member topic, got %q", got)
	}

	state = send(t, state, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if state.selectedMember != 1 {
		t.Fatalf("expected member cursor 1, got %d", state.selectedMember)
	}
	// The second member has no topic of its own.
	if got := selectedPath(state); got != "w.xml" {
		t.Fatalf("expected class topic fallback, got %q", got)
	}
	state = send(t, state, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if state.selectedMember != 1 {
		t.Fatalf("member cursor should stop at the last member, got %d", state.selectedMember)
	}

	if view := state.View(); !strings.Contains(view, "Members of Widget (2)") {
		t.Fatalf("details missing from view:\n%s", view)
	}

	state = send(t, state, tea.KeyMsg{Type: tea.KeyEsc})
	if state.hasDetails || state.mode != panelTypes {
		t.Fatalf("esc should close details first, got details=%v mode=%v", state.hasDetails, state.mode)
	}
	state = send(t, state, tea.KeyMsg{Type: tea.KeyEsc})
	if state.mode != panelNamespaces {
		t.Fatalf("second esc should return to namespaces, got %v", state.mode)
	}
}

func TestModel_DeltaToggleAndQuit(t *testing.T) {
	delta := history.Delta{Classes: 3, Members: -1}
	state := initialModel(testModel(), &delta)
	state = send(t, state, tea.WindowSizeMsg{Width: 120, Height: 60})

	state = send(t, state, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if !state.showDelta {
		t.Fatal("expected delta overlay after t")
	}
	view := state.View()
	if !strings.Contains(view, "Types: +3") || !strings.Contains(view, "Members: -1") {
		t.Fatalf("delta overlay missing from view:\n%s", view)
	}

	_, cmd := state.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestRenderDeltaOverlay(t *testing.T) {
	if got := renderDeltaOverlay(nil); !strings.Contains(got, "No previous run") {
		t.Fatalf("unexpected nil overlay %q", got)
	}
	if got := renderDeltaOverlay(&history.Delta{}); !strings.Contains(got, "No change") {
		t.Fatalf("unexpected zero overlay %q", got)
	}
}
