package topic

import (
	"github.com/beevik/etree"
)

// SetAttr sets key on e and dirties the document when e belongs to it.
func (d *Doc) SetAttr(e *etree.Element, key, value string) {
	if e == nil {
		return
	}
	e.CreateAttr(key, value)
	if d.contains(e) {
		d.dirty = true
	}
}

// SetTitle replaces the content of metadata/title.
func (d *Doc) SetTitle(title string) {
	md := d.metadata()
	if md == nil {
		return
	}
	el := d.Unique("title", md)
	if el == nil {
		return
	}
	for _, c := range append([]etree.Token(nil), el.Child...) {
		el.RemoveChild(c)
	}
	el.SetText(title)
	d.dirty = true
}

func (d *Doc) SetBeta(value string) {
	md := d.metadata()
	if md == nil {
		return
	}
	md.CreateAttr("beta", value)
	d.dirty = true
}

// EnsureDeviceFamiliesAndAPIContracts adds empty device_families and
// api_contracts elements when missing. They go after max_os, else min_os,
// else info.
func (d *Doc) EnsureDeviceFamiliesAndAPIContracts() {
	anchor := d.Unique("max_os", nil)
	if anchor == nil {
		anchor = d.Unique("min_os", nil)
	}
	if anchor == nil {
		anchor = d.Unique("info", nil)
	}
	if anchor == nil {
		return
	}

	families := d.Unique("device_families", nil)
	if families == nil {
		families = d.insertAfter(anchor, "device_families")
	}
	if d.Unique("api_contracts", nil) == nil {
		d.insertAfter(families, "api_contracts")
	}
}

func (d *Doc) insertAfter(sibling *etree.Element, tag string) *etree.Element {
	el := etree.NewElement(tag)
	el.Space = sibling.Space
	parent := sibling.Parent()
	if parent == nil {
		return el
	}
	parent.InsertChildAt(sibling.Index()+1, el)
	d.dirty = true
	return el
}

func (d *Doc) DeleteAllSections() {
	for _, s := range d.Descendants("section", nil) {
		if p := s.Parent(); p != nil {
			p.RemoveChild(s)
			d.dirty = true
		}
	}
}
