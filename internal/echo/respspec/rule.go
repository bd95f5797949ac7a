package respspec

import (
	"strconv"
	"strings"
)

// SelectorType identifies which attribute of the request a rule's pattern
// is matched against.
type SelectorType int

const (
	SelectorNone SelectorType = iota
	SelectorPath
	SelectorHeader
	SelectorParam
	SelectorJSON
	SelectorBody
)

func (t SelectorType) String() string {
	switch t {
	case SelectorPath:
		return "PATH"
	case SelectorHeader:
		return "HEADER"
	case SelectorParam:
		return "PARAM"
	case SelectorJSON:
		return "JSON"
	case SelectorBody:
		return "BODY"
	default:
		return ""
	}
}

// LocationKind distinguishes inline text content from a referenced file.
type LocationKind int

const (
	LocationText LocationKind = iota
	LocationFile
)

// Location is a single entry in a variant slot's content chain: either
// inline text or a path to a referenced file.
type Location struct {
	Kind    LocationKind
	Content string // text body, or file path when Kind == LocationFile
}

// VariantSlot is one entry in a rule's round-robin cycle.
type VariantSlot struct {
	Locations []Location
	Headers   map[string]string
}

// Rule is a parsed spec entry: an optional selector, status/delay/after
// metadata, and one or more variant slots of content.
type Rule struct {
	Source         string // "" for inline _echo_response text, else file path
	SelectorType   SelectorType
	SelectorTarget string
	Pattern        string // raw "[!]/re/[i]" spec string, "" for SelectorNone
	StatusCode     int
	Delay          int // milliseconds
	After          int // milliseconds
	Variants       []VariantSlot
}

// IdentityKey is the tuple used to key GlobalMatchCounter: two textually
// identical rules in different URLs or files maintain independent cycles
// because normalizedPath and Source both feed into this key.
func (r *Rule) IdentityKey(normalizedPath string) string {
	return strings.Join([]string{
		normalizedPath,
		r.Source,
		r.SelectorType.String(),
		r.SelectorTarget,
		r.Pattern,
		strconv.Itoa(r.After),
	}, "\x1f")
}
