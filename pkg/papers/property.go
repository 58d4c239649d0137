package papers

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/shelfmark/refsync/pkg/constants"
)

// Kind identifies the wire type of a target property value.
type Kind string

// Property kinds mirror the target store's schema types.
const (
	KindTitle       Kind = "title"
	KindRichText    Kind = "rich_text"
	KindURL         Kind = "url"
	KindDate        Kind = "date"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi_select"
)

// Property is one typed target property value.
type Property struct {
	Kind    Kind
	Text    string   // title, rich_text, select, date (start value)
	URL     string   // url
	Options []string // multi_select
}

// Title builds a title property.
func Title(text string) Property {
	return Property{Kind: KindTitle, Text: Truncate(text)}
}

// RichText builds a rich text property, truncated to the store's limit.
func RichText(text string) Property {
	return Property{Kind: KindRichText, Text: Truncate(text)}
}

// URL builds a url property.
func URL(u string) Property {
	return Property{Kind: KindURL, URL: u}
}

// Date builds a date property from a YYYY-MM-DD start value.
func Date(start string) Property {
	return Property{Kind: KindDate, Text: start}
}

// Select builds a select property.
func Select(option string) Property {
	return Property{Kind: KindSelect, Text: option}
}

// MultiSelect builds a multi select property.
func MultiSelect(options ...string) Property {
	return Property{Kind: KindMultiSelect, Options: options}
}

// String flattens a property to its plain text form regardless of kind.
func (p Property) String() string {
	switch p.Kind {
	case KindURL:
		return p.URL
	case KindMultiSelect:
		return strings.Join(p.Options, ", ")
	default:
		return p.Text
	}
}

// Equal compares two property values by flattened content, normalizing
// text to NFC first so source and target renderings of the same string
// compare equal.
func (p Property) Equal(other Property) bool {
	return norm.NFC.String(p.String()) == norm.NFC.String(other.String())
}

// Properties maps property names to typed values.
type Properties map[string]Property

// Keys returns the property names in sorted order.
func (ps Properties) Keys() []string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy safe for further insertion.
func (ps Properties) Clone() Properties {
	out := make(Properties, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// Merge returns the union of ps and other. Keys in other win on conflict.
func (ps Properties) Merge(other Properties) Properties {
	out := ps.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// EqualSubset reports whether every property in ps matches the value the
// other set holds under the same name. Names missing from other count as
// unequal.
func (ps Properties) EqualSubset(other Properties) bool {
	for name, want := range ps {
		got, ok := other[name]
		if !ok || !want.Equal(got) {
			return false
		}
	}
	return true
}

// Truncate caps text at the store's rich text limit, marking the cut with
// an ellipsis the way the web UI does.
func Truncate(text string) string {
	limit := constants.RichTextLimit
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
