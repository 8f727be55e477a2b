package topic

import (
	"strings"

	"github.com/beevik/etree"
)

func (d *Doc) metadata() *etree.Element {
	return d.Unique("metadata", nil)
}

func (d *Doc) ID() string { return attr(d.metadata(), "id") }

// Type returns metadata@type, the topic-type tag.
func (d *Doc) Type() string { return attr(d.metadata(), "type") }

func (d *Doc) MsdnID() string { return attr(d.metadata(), "msdnID") }

func (d *Doc) IntellisenseID() string { return attr(d.metadata(), "intellisense_id_string") }

// Beta returns metadata@beta, or "0" when absent.
func (d *Doc) Beta() string {
	md := d.metadata()
	if md == nil {
		return "0"
	}
	if a := md.SelectAttr("beta"); a != nil {
		return a.Value
	}
	return "0"
}

func (d *Doc) Title() string {
	md := d.metadata()
	if md == nil {
		return ""
	}
	return InnerText(d.Unique("title", md))
}

// TypeNameFromIntellisenseID returns the text after the last '.' of the
// intellisense id.
func (d *Doc) TypeNameFromIntellisenseID() string {
	id := d.IntellisenseID()
	return id[strings.LastIndex(id, ".")+1:]
}

func (d *Doc) SyntaxName() string {
	syntax := d.Unique("syntax", nil)
	if syntax == nil {
		return ""
	}
	return InnerText(d.First("name", syntax))
}

// AppliesRid returns the rid of the xref under applies/class, falling back to
// applies/iface.
func (d *Doc) AppliesRid() string {
	applies := d.Unique("applies", nil)
	if applies == nil {
		return ""
	}
	owner := d.Unique("class", applies)
	if owner == nil {
		owner = d.Unique("iface", applies)
	}
	if owner == nil {
		return ""
	}
	return attr(d.Unique("xref", owner), "rid")
}

// MethodParameters renders params/param/datatype/xref text as "(T1, T2)".
// A params element with no param children yields an empty string.
func (d *Doc) MethodParameters() string {
	params := d.Unique("params", nil)
	if params == nil {
		return ""
	}
	list := d.Descendants("param", params)
	if len(list) == 0 {
		return ""
	}
	types := make([]string, 0, len(list))
	for _, p := range list {
		datatype := d.Unique("datatype", p)
		if datatype == nil {
			continue
		}
		xref := d.Unique("xref", datatype)
		if xref == nil {
			continue
		}
		types = append(types, InnerText(xref))
	}
	return "(" + strings.Join(types, ", ") + ")"
}

func (d *Doc) applicationPlatform() *etree.Element {
	return d.Unique("ApplicationPlatform", nil)
}

func (d *Doc) PlatformName() string { return attr(d.applicationPlatform(), "name") }

func (d *Doc) PlatformFriendlyName() string { return attr(d.applicationPlatform(), "friendlyName") }

func (d *Doc) PlatformVersion() string { return attr(d.applicationPlatform(), "version") }

// InterfacesImplemented returns the privately inherited WinRT interfaces, or
// nil when the topic declares none.
func (d *Doc) InterfacesImplemented() []string {
	inheritance := d.Unique("inheritance", nil)
	if inheritance == nil {
		return nil
	}
	var out []string
	for _, ancestor := range d.Descendants("ancestor", inheritance) {
		if attr(ancestor, "access_level") != "private" {
			continue
		}
		xref := d.Unique("xref", ancestor)
		if xref == nil || attr(xref, "targtype") != "interface_winrt" {
			continue
		}
		out = append(out, InnerText(xref))
	}
	return out
}

// LibraryFilenames returns content/info/library/filename values.
func (d *Doc) LibraryFilenames() []string {
	content := d.Unique("content", nil)
	if content == nil {
		return nil
	}
	info := d.Unique("info", content)
	if info == nil {
		return nil
	}
	var out []string
	for _, lib := range d.Descendants("library", info) {
		if fn := d.Unique("filename", lib); fn != nil {
			out = append(out, InnerText(fn))
		}
	}
	return out
}

func (d *Doc) XrefsWithHlink(substring string, caseSensitive bool) []*etree.Element {
	if !caseSensitive {
		substring = strings.ToLower(substring)
	}
	var out []*etree.Element
	for _, x := range d.Descendants("xref", nil) {
		a := x.SelectAttr("hlink")
		if a == nil {
			continue
		}
		v := a.Value
		if !caseSensitive {
			v = strings.ToLower(v)
		}
		if strings.Contains(v, substring) {
			out = append(out, x)
		}
	}
	return out
}

func (d *Doc) XrefsForRid(rid string, caseSensitive bool) []*etree.Element {
	var out []*etree.Element
	for _, x := range d.Descendants("xref", nil) {
		a := x.SelectAttr("rid")
		if a == nil {
			continue
		}
		if a.Value == rid || (!caseSensitive && strings.EqualFold(a.Value, rid)) {
			out = append(out, x)
		}
	}
	return out
}

func (d *Doc) HasSection(id string) bool {
	for _, s := range d.Descendants("section", nil) {
		if attr(s, "id") == id {
			return true
		}
	}
	return false
}
