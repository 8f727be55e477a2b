// Package toc resolves the published topics of a project from its xtoc
// table of contents.
package toc

import (
	"os"
	"path/filepath"
	"strings"

	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/engine/topic"
	"topicsdk/internal/shared/util"

	"github.com/beevik/etree"
)

const (
	Ext           = ".xtoc"
	ExclusionAttr = "filter_msdn"

	topicURLAttr   = "topicURL"
	includeURLAttr = "url"
	nodeTextAttr   = "text"
	nodeElement    = "node"
	includeElement = "include"
)

// TOC is a project's root table of contents.
type TOC struct {
	*topic.Doc
	projectDir string
}

// FindTOC opens <dir>/<dirname>.xtoc. Zero or several matches are fatal.
func FindTOC(projectDir string) (*TOC, error) {
	name := filepath.Base(projectDir)
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "read project folder"), apperrors.CtxProject, name)
	}
	var matches []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name+Ext) {
			matches = append(matches, filepath.Join(projectDir, e.Name()))
		}
	}
	if len(matches) != 1 {
		return nil, apperrors.AddContext(
			apperrors.Newf(apperrors.CodeValidationError, "project folder %s does not contain exactly one %s", name, name+Ext),
			apperrors.CtxProject, name)
	}
	doc, err := topic.Open(matches[0])
	if err != nil {
		return nil, err
	}
	return &TOC{Doc: doc, projectDir: projectDir}, nil
}

// URLFor returns the topicURL form of a topic file inside the project, or
// "" when path is outside it.
func (t *TOC) URLFor(path string) string {
	rel, err := filepath.Rel(t.projectDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (t *TOC) node(url string) *etree.Element {
	want := util.NormalizeRelPath(url)
	for _, n := range t.Descendants(nodeElement, nil) {
		if util.NormalizeRelPath(n.SelectAttrValue(topicURLAttr, "")) == want {
			return n
		}
	}
	return nil
}

// IsPublished reports whether url is a node of this TOC without the
// exclusion marker. Separators are not significant.
func (t *TOC) IsPublished(url string) bool {
	n := t.node(url)
	return n != nil && published(n)
}

// SetNodeText sets the display text of the node for url.
func (t *TOC) SetNodeText(url, text string) bool {
	n := t.node(url)
	if n == nil {
		return false
	}
	t.SetAttr(n, nodeTextAttr, text)
	return true
}

// TopicPaths lists the published topic files of the project: this TOC's
// nodes first, then the topics of each published include, recursively.
func (t *TOC) TopicPaths() ([]string, error) {
	return topicPaths(t.projectDir, t.Doc, map[string]bool{t.Path(): true})
}

func topicPaths(projectDir string, doc *topic.Doc, visiting map[string]bool) ([]string, error) {
	var paths []string
	for _, n := range doc.Descendants(nodeElement, nil) {
		url := n.SelectAttrValue(topicURLAttr, "")
		if url == "" || !published(n) {
			continue
		}
		paths = append(paths, util.JoinRel(projectDir, url))
	}

	for _, inc := range doc.Descendants(includeElement, nil) {
		url := inc.SelectAttrValue(includeURLAttr, "")
		if url == "" || !published(inc) {
			continue
		}
		path := util.JoinRel(projectDir, url)
		if visiting[path] {
			return nil, apperrors.AddContext(
				apperrors.Newf(apperrors.CodeValidationError, "toc include cycle through %s", path),
				apperrors.CtxPath, doc.Path())
		}
		included, err := topic.Open(path)
		if err != nil {
			return nil, err
		}
		visiting[path] = true
		nested, err := topicPaths(projectDir, included, visiting)
		delete(visiting, path)
		if err != nil {
			return nil, err
		}
		paths = append(paths, nested...)
	}
	return paths, nil
}

func published(e *etree.Element) bool {
	return e.SelectAttr(ExclusionAttr) == nil
}
