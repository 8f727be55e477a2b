// Package browse is an interactive terminal browser over a WinRT
// namespace model.
package browse

import (
	"fmt"

	"topicsdk/internal/data/history"
	"topicsdk/internal/engine/winrt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type panelMode int

const (
	panelNamespaces panelMode = iota
	panelTypes
)

type model struct {
	nsList   list.Model
	typeList list.Model
	mode     panelMode

	apiModel  *winrt.Model
	delta     *history.Delta
	showDelta bool

	// namespace whose types are in typeList, -1 before the first drill-down
	openNS         int
	hasDetails     bool
	selectedMember int
	status         string
}

type editorResultMsg struct {
	target string
	err    error
}

func initialModel(m *winrt.Model, delta *history.Delta) model {
	nsList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	nsList.Title = "Namespaces"
	nsList.SetShowStatusBar(false)
	nsList.SetFilteringEnabled(true)

	typeList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	typeList.Title = "Types"
	typeList.SetShowStatusBar(false)
	typeList.SetFilteringEnabled(true)

	state := model{
		nsList:   nsList,
		typeList: typeList,
		mode:     panelNamespaces,
		apiModel: m,
		delta:    delta,
		openNS:   -1,
	}
	items := make([]list.Item, 0, len(m.Namespaces))
	for _, ns := range m.Namespaces {
		items = append(items, item{
			title: ns.Name,
			desc:  fmt.Sprintf("project=%s types=%d", ns.Project, len(ns.Classes)),
		})
	}
	state.nsList.SetItems(items)
	return state
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.nsList.SetSize(width, height)
		m.typeList.SetSize(width, height)
	case editorResultMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Editor failed: %v", msg.err))
		} else {
			m.status = statusStyle.Render(fmt.Sprintf("Opened: %s", msg.target))
		}
	}

	var cmd tea.Cmd
	if m.mode == panelNamespaces {
		m.nsList, cmd = m.nsList.Update(msg)
	} else {
		m.typeList, cmd = m.typeList.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	namespaces, classes, members := m.apiModel.Counts()
	status := statusStyle.Render(fmt.Sprintf("%d namespaces | %d types | %d members", namespaces, classes, members))

	header := fmt.Sprintf("%s\n%s\n", titleStyle("API Reference Browser"), status)
	body := m.nsList.View()
	if m.mode == panelTypes {
		body = renderTypePanel(m)
	}
	if m.showDelta {
		body += "\n\n" + renderDeltaOverlay(m.delta)
	}
	if m.status != "" {
		body += "\n\n" + m.status
	}
	return docStyle.Render(header + "\n" + renderHelp(m) + "\n\n" + body)
}

// Run blocks until the user quits. delta, when non-nil, is the change
// since the previous recorded run.
func Run(m *winrt.Model, delta *history.Delta) error {
	p := tea.NewProgram(initialModel(m, delta), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
