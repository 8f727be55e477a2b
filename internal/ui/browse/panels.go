package browse

import (
	"fmt"
	"strings"

	"topicsdk/internal/data/history"
)

func renderHelp(m model) string {
	keys := "Keys: tab panel | / filter | enter types | t last-run delta | q quit"
	if m.mode == panelTypes {
		keys = "Keys: tab panel | / filter | enter members | esc back | j/k member cursor | o open topic | t last-run delta | q quit"
	}
	return statusStyle.Render(keys)
}

func renderTypePanel(m model) string {
	return m.typeList.View() + "\n\n" + renderDetails(m)
}

func renderDetails(m model) string {
	c := selectedClass(m)
	if c == nil {
		return statusStyle.Render("No type selected.")
	}
	if !m.hasDetails {
		return strings.Join([]string{
			"Selected Type",
			fmt.Sprintf("  Name: %s", c.Name),
			fmt.Sprintf("  Kind: %s", c.Kind),
			fmt.Sprintf("  ID: %s", c.ID),
			fmt.Sprintf("  Implements: %s", strings.Join(c.Interfaces, ", ")),
			fmt.Sprintf("  Topic: %s", c.Path),
			"  Press enter for members.",
		}, "\n")
	}

	lines := []string{fmt.Sprintf("Members of %s (%d):", c.DisplayName(), len(c.Members))}
	for i, mem := range c.Members {
		prefix := "   "
		if i == m.selectedMember {
			prefix = " ->"
		}
		lines = append(lines, fmt.Sprintf("%s %s [%s] %s", prefix, mem.Name, mem.Kind, mem.ID))
	}
	if len(c.Members) == 0 {
		lines = append(lines, "   none")
	}
	lines = append(lines, "  Press esc to close, o to open the highlighted topic.")
	return strings.Join(lines, "\n")
}

func renderDeltaOverlay(d *history.Delta) string {
	if d == nil {
		return statusStyle.Render("No previous run recorded (configure history_db to compare runs).")
	}
	if d.IsZero() {
		return successStyle.Render("No change since the previous run.")
	}
	return strings.Join([]string{
		"Since the previous run",
		fmt.Sprintf("  Namespaces: %+d", d.Namespaces),
		fmt.Sprintf("  Types: %+d", d.Classes),
		fmt.Sprintf("  Members: %+d", d.Members),
		fmt.Sprintf("  Win32 functions: %+d", d.Win32Functions),
	}, "\n")
}
