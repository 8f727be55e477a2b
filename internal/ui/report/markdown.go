package report

import (
	"fmt"
	"strings"
	"time"

	"topicsdk/internal/engine/win32"
	"topicsdk/internal/engine/winrt"
)

type MarkdownOptions struct {
	Title       string
	Version     string
	GeneratedAt time.Time
	// Owners maps project names to their owners. Projects without an
	// owner are shown without one.
	Owners map[string]string
}

func frontMatter(b *strings.Builder, opts MarkdownOptions) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	b.WriteString("---\n")
	b.WriteString("title: " + nonEmpty(opts.Title, "API reference report") + "\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")
}

// WinRTMarkdown renders a summary table followed by one section per
// namespace.
func WinRTMarkdown(m *winrt.Model, opts MarkdownOptions) string {
	var b strings.Builder
	frontMatter(&b, opts)

	namespaces, classes, members := m.Counts()
	b.WriteString("# " + nonEmpty(opts.Title, "API reference report") + "\n\n")
	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Namespaces | %d |\n", namespaces))
	b.WriteString(fmt.Sprintf("| Types | %d |\n", classes))
	b.WriteString(fmt.Sprintf("| Members | %d |\n\n", members))

	for _, ns := range m.Namespaces {
		b.WriteString("## " + ns.Name + "\n")
		b.WriteString("Project: `" + ns.Project + "`")
		if owner := opts.Owners[ns.Project]; owner != "" {
			b.WriteString(" (owner: " + owner + ")")
		}
		b.WriteString("\n\n")
		b.WriteString("| Type | Kind | Members | Implements |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, c := range ns.Classes {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
				escapeCell(c.DisplayName()), c.Kind, len(c.Members), escapeCell(strings.Join(c.Interfaces, ", "))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// InitialCharMarkdown renders the alphabetical API listing of u, one
// section per initial character.
func InitialCharMarkdown(u *win32.UmbrellaLib, opts MarkdownOptions) string {
	var b strings.Builder
	if opts.Title == "" {
		opts.Title = u.Name + " APIs"
	}
	frontMatter(&b, opts)
	b.WriteString("# " + opts.Title + "\n\n")

	groups := u.InitialCharGroups()
	if len(groups) == 0 {
		b.WriteString("No APIs.\n")
		return b.String()
	}
	for _, g := range groups {
		b.WriteString("## " + g.Key + "\n")
		b.WriteString("| API | Requirements |\n")
		b.WriteString("| --- | --- |\n")
		for _, api := range g.APIs {
			b.WriteString(fmt.Sprintf("| %s | %s |\n", escapeCell(api.Name), escapeCell(api.RequirementsByInitialChar())))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
