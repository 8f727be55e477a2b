package winrt

import "strings"

type Member struct {
	ID             string
	Name           string
	IntellisenseID string
	Kind           TopicKind
	Path           string
}

// Class is any WinRT type: class, struct, interface, enum, delegate or
// attribute.
type Class struct {
	ID         string
	Name       string
	Kind       TopicKind
	Path       string
	Provenance Provenance
	Interfaces []string
	Members    []*Member

	memberKeys map[string]*Member
}

// DisplayName strips a generic arity suffix such as "`1".
func (c *Class) DisplayName() string {
	if i := strings.IndexByte(c.Name, '`'); i >= 0 {
		return c.Name[:i]
	}
	return c.Name
}

// HasMembers is true for enums and structs, whose members are documented
// inline, and for any type with at least one member topic.
func (c *Class) HasMembers() bool {
	return c.Kind == KindEnum || c.Kind == KindStruct || len(c.Members) > 0
}

// AddMember appends m unless a member with the same identity is already
// present, in which case the existing member is returned. Identity is the id
// when set, otherwise the name and intellisense id together.
func (c *Class) AddMember(m Member) *Member {
	if c.memberKeys == nil {
		c.memberKeys = make(map[string]*Member)
	}
	key := memberKey(m)
	if existing, ok := c.memberKeys[key]; ok {
		return existing
	}
	added := &m
	c.Members = append(c.Members, added)
	c.memberKeys[key] = added
	return added
}

func memberKey(m Member) string {
	if m.ID != "" {
		return "id\x00" + m.ID
	}
	return "ni\x00" + m.Name + "\x00" + m.IntellisenseID
}

func (c *Class) MemberByName(name string) (*Member, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) MemberByIntellisenseID(id string) (*Member, bool) {
	for _, m := range c.Members {
		if m.IntellisenseID == id {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) implements(name string) bool {
	for _, iface := range c.Interfaces {
		if iface == name {
			return true
		}
	}
	return false
}
