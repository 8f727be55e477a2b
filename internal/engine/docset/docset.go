// Package docset resolves filtered sets of enlistment projects and gives
// access to their topics and the models built from them.
package docset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"topicsdk/internal/core/config"
	"topicsdk/internal/core/diag"
	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/data/mapping"
	"topicsdk/internal/engine/toc"
	"topicsdk/internal/engine/topic"
	"topicsdk/internal/engine/win32"
	"topicsdk/internal/engine/winrt"
	"topicsdk/internal/shared/observability"
	"topicsdk/internal/ui/console"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Platform int

const (
	// PlatformUWP is UWP, Windows 10 only.
	PlatformUWP Platform = iota
	// PlatformWinRT is WinRT on Windows 8.x, Windows Phone 8.x and Windows 10.
	PlatformWinRT
	PlatformWin32Desktop
	PlatformWin32Server
	PlatformWin32WDK
)

func (p Platform) String() string {
	switch p {
	case PlatformUWP:
		return "UWP"
	case PlatformWinRT:
		return "WinRT"
	case PlatformWin32Desktop:
		return "Win32 desktop"
	case PlatformWin32Server:
		return "Win32 server"
	case PlatformWin32WDK:
		return "Win32 WDK"
	default:
		return "unknown"
	}
}

// IsWin32 reports whether the platform's projects come from a Win32 list
// file rather than the configured WinRT project patterns.
func (p Platform) IsWin32() bool {
	return p == PlatformWin32Desktop || p == PlatformWin32Server || p == PlatformWin32WDK
}

func (p Platform) listFile() string {
	switch p {
	case PlatformWin32Server:
		return "wsua.txt"
	case PlatformWin32WDK:
		return "wdk.txt"
	default:
		return "desktop.txt"
	}
}

type ContentType int

const (
	ConceptualAndReference ContentType = iota
	ConceptualOnly
	ReferenceOnly
)

func (c ContentType) String() string {
	switch c {
	case ConceptualOnly:
		return "features"
	case ReferenceOnly:
		return "namespaces"
	default:
		return "features and namespaces"
	}
}

// Master project lists in the enlistment root. A WinRT-family project must
// appear in one of them to be processed.
var MasterLists = []string{"metro.txt", "windev.txt"}

// NewTopicCache is the size-bounded cache shared by docsets for topic-by-id
// lookups. Evicting an unsaved edit is logged.
func NewTopicCache(size int) (*lru.Cache[string, *topic.Doc], error) {
	if size <= 0 {
		size = 1
	}
	return lru.NewWithEvict[string, *topic.Doc](size, func(id string, d *topic.Doc) {
		if d.Dirty() {
			slog.Warn("evicted topic with unsaved edits", "id", id, "path", d.Path())
		}
	})
}

// DocSet is a named, filtered collection of projects.
type DocSet struct {
	Platform    Platform
	ContentType ContentType
	description string

	projects []Project
	cfg      *config.Config
	logs     *diag.Registry
	cache    *lru.Cache[string, *topic.Doc]

	apiRef *winrt.Model
	win32  *win32.Model
}

// Create resolves the projects of a docset. For WinRT-family platforms the
// configured project patterns are filtered by reference prefix according to
// ct and then by the master lists; Win32 platforms take the patterns listed
// in their list file.
func Create(cfg *config.Config, logs *diag.Registry, con *console.Console, ct ContentType, p Platform, description string) (*DocSet, error) {
	con.Printf(console.Success, "Creating docset: %q", description)

	cache, err := NewTopicCache(cfg.Cache.TopicCacheSize)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "create topic cache")
	}
	d := &DocSet{Platform: p, ContentType: ct, description: description, cfg: cfg, logs: logs, cache: cache}

	if p.IsWin32() {
		patterns, err := loadEnlistmentList(cfg.EnlistmentDir, p.listFile())
		if err != nil {
			return nil, err
		}
		if d.projects, err = matchDirs(cfg.EnlistmentDir, patterns); err != nil {
			return nil, err
		}
		con.Println(console.Highlight, fmt.Sprintf("These are the shipping projects that document Win32 functions (they're in %s).", p.listFile()))
		announceProjects(con, d.projects)
		return d, nil
	}

	master := make(map[string]bool)
	for _, name := range MasterLists {
		list, err := loadEnlistmentList(cfg.EnlistmentDir, name)
		if err != nil {
			return nil, err
		}
		for _, entry := range list {
			master[entry] = true
		}
	}

	patterns := cfg.WinRTProjects
	if p == PlatformUWP {
		patterns = cfg.UWPProjects
	}
	matched, err := matchDirs(cfg.EnlistmentDir, patterns)
	if err != nil {
		return nil, err
	}
	for _, proj := range matched {
		isRef := cfg.IsReferencePrefix(proj.Prefix())
		if (isRef && ct == ConceptualOnly) || (!isRef && ct == ReferenceOnly) {
			continue
		}
		if !master[proj.Name] {
			continue
		}
		d.projects = append(d.projects, proj)
	}

	intro := "These are the shipping projects that document UWP (Windows 10 only) " + ct.String() + " (they're in metro.txt or windev.txt)."
	if p == PlatformWinRT {
		intro = "These are the shipping projects that document WinRT (Windows 8.x, Windows Phone 8.x, and Windows 10) " + ct.String() + " (they're in metro.txt and windev.txt)."
	}
	con.Println(console.Highlight, intro)
	announceProjects(con, d.projects)
	return d, nil
}

func loadEnlistmentList(enlistment, name string) ([]string, error) {
	return mapping.LoadList(filepath.Join(enlistment, name),
		fmt.Sprintf("MISSING %s. This file could not be found in your enlistment folder %s.", name, enlistment))
}

func announceProjects(con *console.Console, projects []Project) {
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}
	con.Println(console.Default, strings.Join(names, ", ")+".\n")
}

// Description identifies the docset in messages.
func (d *DocSet) Description() string { return d.description }

func (d *DocSet) Projects() []Project {
	return append([]Project(nil), d.projects...)
}

// Project returns the project whose name is exactly name.
func (d *DocSet) Project(name string) (Project, bool) {
	for _, p := range d.projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectsWithPrefix returns the projects whose names start with prefix.
// prefix is literal text, not a pattern.
func (d *DocSet) ProjectsWithPrefix(prefix string) []Project {
	var out []Project
	for _, p := range d.projects {
		if strings.HasPrefix(p.Name, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// Filter selects projects and how their topics are enumerated. An empty
// Project selects every project.
type Filter struct {
	Project  string
	IsPrefix bool
	// IgnoreTOC lists every *.xml file in the content folder instead of
	// the published TOC entries.
	IgnoreTOC bool
}

func (f Filter) matches(p Project) bool {
	if f.Project == "" || p.Name == f.Project {
		return true
	}
	return f.IsPrefix && strings.HasPrefix(p.Name, f.Project)
}

// TopicPaths returns the topic files of the selected projects.
func (d *DocSet) TopicPaths(f Filter) ([]string, error) {
	var out []string
	for _, p := range d.projects {
		if !f.matches(p) {
			continue
		}
		paths, err := d.projectTopicPaths(p, f.IgnoreTOC)
		if err != nil {
			return nil, err
		}
		out = append(out, paths...)
	}
	return out, nil
}

func (d *DocSet) projectTopicPaths(p Project, ignoreTOC bool) ([]string, error) {
	if !ignoreTOC {
		t, err := toc.FindTOC(p.Dir)
		if err != nil {
			return nil, err
		}
		return t.TopicPaths()
	}
	dir, ok := contentDir(p)
	if !ok {
		d.logs.MalformedTopics.Addf("%s doesn't have a same-named subfolder.", p.Name)
		return nil, nil
	}
	return xmlFiles(dir, "*.xml")
}

// Topics opens the topic files of the selected projects.
func (d *DocSet) Topics(f Filter) ([]*topic.Doc, error) {
	paths, err := d.TopicPaths(f)
	if err != nil {
		return nil, err
	}
	docs := make([]*topic.Doc, 0, len(paths))
	for _, path := range paths {
		doc, err := d.open(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (d *DocSet) open(path string) (*topic.Doc, error) {
	return topic.Open(path, topic.WithProblemSink(func(msg string) {
		d.logs.MalformedTopics.Addf("%s", msg)
	}))
}

// PathForTopic resolves a "project.topic" id to its file. Ids whose project
// is not in the docset are looked up in modern_nodes. "" means no unique
// match.
func (d *DocSet) PathForTopic(id string) string {
	project, name, ok := splitID(id)
	if !ok {
		return ""
	}
	p, found := d.Project(project)
	if !found {
		if p, found = d.Project("modern_nodes"); !found {
			return ""
		}
	}
	dir, ok := contentDir(p)
	if !ok {
		d.logs.MalformedTopics.Addf("%s doesn't have a same-named subfolder.", p.Name)
		return ""
	}
	path := filepath.Join(dir, name+".xml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// TopicForID opens the topic with the given id, or returns nil when there
// is none. Repeated lookups return the same document.
func (d *DocSet) TopicForID(id string) (*topic.Doc, error) {
	if doc, ok := d.cache.Get(id); ok {
		observability.TopicCacheHitsTotal.Inc()
		return doc, nil
	}
	path := d.PathForTopic(id)
	if path == "" {
		return nil, nil
	}
	doc, err := d.open(path)
	if err != nil {
		return nil, err
	}
	d.cache.Add(id, doc)
	return doc, nil
}

// APIRefModel builds the WinRT namespace model from the docset's reference
// projects on first use, then prunes excluded and incomplete entries.
func (d *DocSet) APIRefModel() (*winrt.Model, error) {
	if d.apiRef != nil {
		return d.apiRef, nil
	}
	m := winrt.NewModel()
	m.OnAmbiguous = func(a winrt.AmbiguousMerge) {
		_ = d.logs.AmbiguousMerges.Add(a.Namespace, a.ID, a.Name, describeClass(a.ByID), describeClass(a.ByName))
	}
	for _, p := range d.projects {
		if !d.cfg.IsReferencePrefix(p.Prefix()) {
			continue
		}
		docs, err := d.Topics(Filter{Project: p.Name})
		if err != nil {
			return nil, err
		}
		topics := make([]winrt.Topic, len(docs))
		for i, doc := range docs {
			topics[i] = doc
		}
		m.IngestProject(p.Name, topics)
	}
	m.Prune(d.cfg.IsExcludedType)
	d.apiRef = m
	return m, nil
}

// Win32Model builds the documented Win32 function map on first use.
// Duplicate names are logged as "<new path> and <original path>".
func (d *DocSet) Win32Model() (*win32.Model, error) {
	if d.win32 != nil {
		return d.win32, nil
	}
	m := win32.NewModel(d.cfg.Win32.TopicTypes)
	m.OnDuplicate = func(dup, original *win32.Function) {
		d.logs.DupedWin32Names.Addf("%s and %s", dup.Path, original.Path)
	}
	for _, p := range d.projects {
		docs, err := d.Topics(Filter{Project: p.Name})
		if err != nil {
			return nil, err
		}
		topics := make([]win32.Topic, len(docs))
		for i, doc := range docs {
			topics[i] = doc
		}
		m.IngestProject(p.Name, topics)
	}
	d.win32 = m
	return m, nil
}

func describeClass(c *winrt.Class) string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
