package docset

import (
	"os"
	"path/filepath"

	"topicsdk/internal/core/diag"
	"topicsdk/internal/engine/topic"

	"github.com/gobwas/glob"
)

// StubStore reads API reference stubs laid out as <root>/<project>/<project>/*.xml.
type StubStore struct {
	root string
	logs *diag.Registry
}

func NewStubStore(root string, logs *diag.Registry) *StubStore {
	return &StubStore{root: root, logs: logs}
}

// PathsForFolderPattern returns the stub files of every project folder
// matching pattern, for example "*", "w_*" or "w_appmod*".
func (s *StubStore) PathsForFolderPattern(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	projects, err := matchDirs(s.root, []string{pattern})
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range projects {
		dir, ok := s.stubDir(p)
		if !ok {
			continue
		}
		files, err := xmlFiles(dir, "*.xml")
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

// StubsForFolderPattern opens the stubs PathsForFolderPattern finds.
func (s *StubStore) StubsForFolderPattern(pattern string) ([]*topic.Doc, error) {
	paths, err := s.PathsForFolderPattern(pattern)
	if err != nil {
		return nil, err
	}
	docs := make([]*topic.Doc, 0, len(paths))
	for _, path := range paths {
		doc, err := topic.Open(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// PathForStub resolves a "project.topic" id to the single stub whose file
// name starts with the topic segment. "" means zero or several matches.
func (s *StubStore) PathForStub(id string) (string, error) {
	project, name, ok := splitID(id)
	if !ok {
		return "", nil
	}
	projects, err := matchDirs(s.root, []string{glob.QuoteMeta(project)})
	if err != nil || len(projects) != 1 {
		return "", err
	}
	dir, ok := s.stubDir(projects[0])
	if !ok {
		return "", nil
	}
	files, err := xmlFiles(dir, glob.QuoteMeta(name)+"*.xml")
	if err != nil || len(files) != 1 {
		return "", err
	}
	return files[0], nil
}

// StubForID opens the stub PathForStub finds, or returns nil.
func (s *StubStore) StubForID(id string) (*topic.Doc, error) {
	path, err := s.PathForStub(id)
	if err != nil || path == "" {
		return nil, err
	}
	return topic.Open(path)
}

func (s *StubStore) stubDir(p Project) (string, bool) {
	dir := filepath.Join(p.Dir, p.Name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		s.logs.MalformedTopics.Addf("%s doesn't have a same-named subfolder.", p.Name)
		return "", false
	}
	return dir, true
}
