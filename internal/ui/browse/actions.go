package browse

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"topicsdk/internal/engine/winrt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	filtering := m.nsList.FilterState() == list.Filtering || m.typeList.FilterState() == list.Filtering
	if !filtering {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			if m.mode == panelNamespaces && m.openNS >= 0 {
				m.mode = panelTypes
			} else {
				m.mode = panelNamespaces
			}
			return m, nil
		case "t":
			m.showDelta = !m.showDelta
			return m, nil
		}
	} else if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.mode == panelNamespaces {
		if msg.String() == "enter" && !filtering {
			return openNamespace(m), nil
		}
		var cmd tea.Cmd
		m.nsList, cmd = m.nsList.Update(msg)
		return m, cmd
	}

	if !filtering {
		switch msg.String() {
		case "enter":
			if selectedClass(m) != nil {
				m.hasDetails = true
				m.selectedMember = 0
			}
			return m, nil
		case "esc", "backspace":
			if m.hasDetails {
				m.hasDetails = false
				m.selectedMember = 0
			} else {
				m.mode = panelNamespaces
			}
			return m, nil
		case "j":
			if c := selectedClass(m); m.hasDetails && c != nil {
				if m.selectedMember < len(c.Members)-1 {
					m.selectedMember++
				}
				return m, nil
			}
		case "k":
			if m.hasDetails {
				if m.selectedMember > 0 {
					m.selectedMember--
				}
				return m, nil
			}
		case "o":
			path := selectedPath(m)
			if path == "" {
				m.status = statusStyle.Render("No topic file for the selection.")
				return m, nil
			}
			return m, openEditorCmd(path)
		}
	}

	var cmd tea.Cmd
	m.typeList, cmd = m.typeList.Update(msg)
	return m, cmd
}

// openNamespace loads the selected namespace's types into the type panel.
func openNamespace(m model) model {
	if len(m.apiModel.Namespaces) == 0 {
		return m
	}
	idx := namespaceIndex(m)
	if idx < 0 {
		return m
	}
	ns := m.apiModel.Namespaces[idx]
	items := make([]list.Item, 0, len(ns.Classes))
	for _, c := range ns.Classes {
		items = append(items, item{
			title: c.DisplayName(),
			desc:  fmt.Sprintf("%s id=%s members=%d", c.Kind, c.ID, len(c.Members)),
		})
	}
	m.typeList.Title = ns.Name
	m.typeList.ResetFilter()
	m.typeList.SetItems(items)
	m.typeList.Select(0)
	m.openNS = idx
	m.hasDetails = false
	m.selectedMember = 0
	m.mode = panelTypes
	return m
}

// namespaceIndex maps the highlighted list entry back to the model, which
// matters while a filter is applied.
func namespaceIndex(m model) int {
	sel, ok := m.nsList.SelectedItem().(item)
	if !ok {
		return -1
	}
	for i, ns := range m.apiModel.Namespaces {
		if ns.Name == sel.title {
			return i
		}
	}
	return -1
}

func selectedClass(m model) *winrt.Class {
	if m.openNS < 0 || m.openNS >= len(m.apiModel.Namespaces) {
		return nil
	}
	ns := m.apiModel.Namespaces[m.openNS]
	sel, ok := m.typeList.SelectedItem().(item)
	if !ok {
		return nil
	}
	for _, c := range ns.Classes {
		if c.DisplayName() == sel.title {
			return c
		}
	}
	return nil
}

func selectedPath(m model) string {
	c := selectedClass(m)
	if c == nil {
		return ""
	}
	if m.hasDetails && m.selectedMember < len(c.Members) {
		if p := c.Members[m.selectedMember].Path; p != "" {
			return p
		}
	}
	return c.Path
}

func openEditorCmd(path string) tea.Cmd {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, path)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorResultMsg{target: path, err: err}
	})
}
