// Package topic reads and edits a single XML topic or table-of-contents
// document. Element lookups match local names and ignore namespaces; missing
// content yields empty values instead of errors.
package topic

import (
	"fmt"
	"os"
	"strings"

	apperrors "topicsdk/internal/core/errors"
	"topicsdk/internal/shared/observability"

	"github.com/beevik/etree"
)

// Doc is one parsed XML document plus its dirty flag.
type Doc struct {
	path     string
	doc      *etree.Document
	original []byte
	dirty    bool

	problems  []string
	seen      map[string]bool
	onProblem func(string)
}

type Option func(*Doc)

// WithProblemSink forwards every structural problem found while reading the
// document, such as a repeated element that should be unique.
func WithProblemSink(fn func(string)) Option {
	return func(d *Doc) { d.onProblem = fn }
}

// Open parses the file at path. A file that cannot be read or parsed is fatal
// for the run.
func Open(path string, opts ...Option) (*Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeIO, "read topic"), apperrors.CtxPath, path)
	}
	return parse(path, data, opts...)
}

// Parse builds a Doc from in-memory content; path is used for saving and
// messages only.
func Parse(path string, data []byte, opts ...Option) (*Doc, error) {
	return parse(path, data, opts...)
}

func parse(path string, data []byte, opts ...Option) (*Doc, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, apperrors.AddContext(apperrors.Wrap(err, apperrors.CodeParse, path+" is invalid"), apperrors.CtxPath, path)
	}
	if doc.Root() == nil {
		return nil, apperrors.AddContext(apperrors.New(apperrors.CodeParse, path+" has no root element"), apperrors.CtxPath, path)
	}
	d := &Doc{path: path, doc: doc, original: data, seen: map[string]bool{}}
	for _, opt := range opts {
		opt(d)
	}
	observability.TopicsLoadedTotal.Inc()
	return d, nil
}

func (d *Doc) Path() string { return d.path }

func (d *Doc) Dirty() bool { return d.dirty }

func (d *Doc) MarkDirty() { d.dirty = true }

func (d *Doc) Root() *etree.Element { return d.doc.Root() }

func (d *Doc) Problems() []string {
	return append([]string(nil), d.problems...)
}

func (d *Doc) problem(format string, args ...any) {
	msg := d.path + ": " + fmt.Sprintf(format, args...)
	if d.seen[msg] {
		return
	}
	d.seen[msg] = true
	d.problems = append(d.problems, msg)
	if d.onProblem != nil {
		d.onProblem(msg)
	}
}

// Descendants returns every element below scope (the whole document when
// scope is nil) whose local name is name, in document order. An empty name
// matches every element.
func (d *Doc) Descendants(name string, scope *etree.Element) []*etree.Element {
	var out []*etree.Element
	if scope == nil {
		root := d.doc.Root()
		if name == "" || root.Tag == name {
			out = append(out, root)
		}
		scope = root
	}
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if name == "" || c.Tag == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(scope)
	return out
}

// Unique returns the only descendant named name. A name that occurs more than
// once is recorded as a problem and treated as missing.
func (d *Doc) Unique(name string, scope *etree.Element) *etree.Element {
	els := d.Descendants(name, scope)
	switch len(els) {
	case 0:
		return nil
	case 1:
		return els[0]
	default:
		d.problem("%q is not unique (%d occurrences)", name, len(els))
		return nil
	}
}

func (d *Doc) First(name string, scope *etree.Element) *etree.Element {
	els := d.Descendants(name, scope)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// InnerText concatenates all character data below e.
func InnerText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(e)
	return b.String()
}

func attr(e *etree.Element, key string) string {
	if e == nil {
		return ""
	}
	return e.SelectAttrValue(key, "")
}

func (d *Doc) contains(e *etree.Element) bool {
	for p := e; p != nil; p = p.Parent() {
		if p == d.doc.Root() {
			return true
		}
	}
	return false
}

// Render serializes the current document.
func (d *Doc) Render() (string, error) {
	return d.doc.WriteToString()
}
