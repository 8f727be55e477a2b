package winrt

// TopicKind classifies a reference topic by its metadata type tag.
type TopicKind int

const (
	KindNotYetKnown TopicKind = iota
	KindAttachedProperty
	KindAttribute
	KindClass
	KindDelegate
	KindEnum
	KindEvent
	KindInterface
	KindMethod
	KindNamespace
	KindProperty
	KindStruct
)

var kindByTag = map[string]TopicKind{
	"attachedmember_winrt": KindAttachedProperty,
	"attribute":            KindAttribute,
	"class_winrt":          KindClass,
	"delegate":             KindDelegate,
	"enum_winrt":           KindEnum,
	"event_winrt":          KindEvent,
	"function":             KindMethod,
	"interface_winrt":      KindInterface,
	"method_winrt":         KindMethod,
	"namespace":            KindNamespace,
	"property_winrt":       KindProperty,
	"struct_winrt":         KindStruct,
}

// KindOf maps a metadata type tag to a TopicKind. Overload pages, node pages,
// overviews, start pages and unknown tags are KindNotYetKnown.
func KindOf(tag string) TopicKind {
	return kindByTag[tag]
}

func (k TopicKind) String() string {
	switch k {
	case KindAttachedProperty:
		return "attached property"
	case KindAttribute:
		return "attribute"
	case KindClass:
		return "class"
	case KindDelegate:
		return "delegate"
	case KindEnum:
		return "enum"
	case KindEvent:
		return "event"
	case KindInterface:
		return "interface"
	case KindMethod:
		return "method"
	case KindNamespace:
		return "namespace"
	case KindProperty:
		return "property"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// IsMember reports whether topics of this kind describe a member of a type.
func (k TopicKind) IsMember() bool {
	switch k {
	case KindAttachedProperty, KindEvent, KindMethod, KindProperty:
		return true
	}
	return false
}

// IsType reports whether topics of this kind describe a type.
func (k TopicKind) IsType() bool {
	switch k {
	case KindAttribute, KindClass, KindDelegate, KindEnum, KindInterface, KindStruct:
		return true
	}
	return false
}

type Provenance int

const (
	FromTopic Provenance = iota
	FromConfigFile
)
