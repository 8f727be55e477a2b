// Package report renders the run's models as TSV and Markdown files.
package report

import (
	"fmt"
	"strings"

	"topicsdk/internal/data/history"
	"topicsdk/internal/engine/win32"
	"topicsdk/internal/engine/winrt"
)

// WinRTTSV lists every type and member of m. Type rows leave the member
// columns empty.
func WinRTTSV(m *winrt.Model) string {
	var buf strings.Builder
	buf.WriteString("Namespace\tProject\tType\tKind\tTypeID\tProvenance\tMember\tMemberKind\tMemberID\n")
	for _, ns := range m.Namespaces {
		for _, c := range ns.Classes {
			buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t\t\t\n",
				ns.Name, ns.Project, c.Name, c.Kind, c.ID, provenance(c.Provenance)))
			for _, mem := range c.Members {
				buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					ns.Name, ns.Project, c.Name, c.Kind, c.ID, provenance(c.Provenance),
					mem.Name, mem.Kind, mem.ID))
			}
		}
	}
	return buf.String()
}

func provenance(p winrt.Provenance) string {
	if p == winrt.FromConfigFile {
		return "config"
	}
	return "topic"
}

// ModulesTSV lists the APIs of each module of u with their requirements.
func ModulesTSV(u *win32.UmbrellaLib) string {
	var buf strings.Builder
	buf.WriteString("Umbrella\tModule\tAPISet\tAPI\tFunctionID\tSuppressed\tRequirements\n")
	for _, m := range u.Modules {
		for _, api := range m.APIs() {
			buf.WriteString(fmt.Sprintf("%s\t%s\t%t\t%s\t%s\t%t\t%s\n",
				u.Name, m.Name, m.IsAPISet, api.Name, api.FunctionID, api.Suppress, api.RequirementsByModule()))
		}
	}
	return buf.String()
}

// RunsTSV lists recorded runs oldest first, with the change in model sizes
// against the previous run.
func RunsTSV(runs []history.Run) string {
	var buf strings.Builder
	buf.WriteString("RunID\tStarted\tTasks\tDryRun\tNamespaces\tClasses\tMembers\tWin32Functions\tFilesSaved\tSaveErrors\tExitCode\tDeltaNamespaces\tDeltaClasses\tDeltaMembers\tDeltaWin32Functions\n")
	for i, run := range runs {
		var d history.Delta
		if i > 0 {
			d = history.Compare(runs[i-1], run)
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%t\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			run.RunID,
			run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			strings.Join(run.Tasks, ","),
			run.DryRun,
			run.Namespaces,
			run.Classes,
			run.Members,
			run.Win32Functions,
			run.FilesSaved,
			run.SaveErrors,
			run.ExitCode,
			d.Namespaces,
			d.Classes,
			d.Members,
			d.Win32Functions,
		))
	}
	return buf.String()
}
