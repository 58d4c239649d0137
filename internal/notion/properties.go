package notion

import (
	"strings"

	"github.com/shelfmark/refsync/pkg/papers"
)

// wirePage is one page object as the API returns it.
type wirePage struct {
	Object     string              `json:"object"`
	ID         string              `json:"id"`
	Properties map[string]wireProp `json:"properties"`
}

// wireProp is one property value in either direction. Only the field for
// the property's own type is populated.
type wireProp struct {
	Type        string         `json:"type,omitempty"`
	Title       []wireRichText `json:"title,omitempty"`
	RichText    []wireRichText `json:"rich_text,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Date        *wireDate      `json:"date,omitempty"`
	Select      *wireOption    `json:"select,omitempty"`
	MultiSelect []wireOption   `json:"multi_select,omitempty"`
}

type wireRichText struct {
	Type      string   `json:"type,omitempty"`
	Text      wireText `json:"text"`
	PlainText string   `json:"plain_text,omitempty"`
}

type wireText struct {
	Content string `json:"content"`
}

type wireDate struct {
	Start string `json:"start"`
}

type wireOption struct {
	Name string `json:"name"`
}

// richTextValue encodes a string as a single-span rich text array.
func richTextValue(text string) []wireRichText {
	return []wireRichText{{
		Type: "text",
		Text: wireText{Content: papers.Truncate(text)},
	}}
}

// marshalProperties converts domain properties into the write payload.
func marshalProperties(props papers.Properties) map[string]wireProp {
	out := make(map[string]wireProp, len(props))
	for name, prop := range props {
		switch prop.Kind {
		case papers.KindTitle:
			out[name] = wireProp{Title: richTextValue(prop.Text)}
		case papers.KindRichText:
			out[name] = wireProp{RichText: richTextValue(prop.Text)}
		case papers.KindURL:
			url := prop.URL
			out[name] = wireProp{URL: &url}
		case papers.KindDate:
			out[name] = wireProp{Date: &wireDate{Start: prop.Text}}
		case papers.KindSelect:
			out[name] = wireProp{Select: &wireOption{Name: prop.Text}}
		case papers.KindMultiSelect:
			options := make([]wireOption, len(prop.Options))
			for i, o := range prop.Options {
				options[i] = wireOption{Name: o}
			}
			out[name] = wireProp{MultiSelect: options}
		}
	}
	return out
}

// flattenRichText joins a rich text array into plain text.
func flattenRichText(spans []wireRichText) string {
	var b strings.Builder
	for _, span := range spans {
		if span.PlainText != "" {
			b.WriteString(span.PlainText)
			continue
		}
		b.WriteString(span.Text.Content)
	}
	return b.String()
}

// parseProperty converts one wire property into the domain model. The
// second return is false for property types the sync does not handle.
func parseProperty(wp wireProp) (papers.Property, bool) {
	switch wp.Type {
	case "title":
		return papers.Title(flattenRichText(wp.Title)), true
	case "rich_text":
		return papers.RichText(flattenRichText(wp.RichText)), true
	case "url":
		url := ""
		if wp.URL != nil {
			url = *wp.URL
		}
		return papers.URL(url), true
	case "date":
		start := ""
		if wp.Date != nil {
			start = wp.Date.Start
		}
		return papers.Date(start), true
	case "select":
		name := ""
		if wp.Select != nil {
			name = wp.Select.Name
		}
		return papers.Select(name), true
	case "multi_select":
		options := make([]string, len(wp.MultiSelect))
		for i, o := range wp.MultiSelect {
			options[i] = o.Name
		}
		return papers.MultiSelect(options...), true
	}
	return papers.Property{}, false
}

// toRecord converts a page into the domain model. Unhandled property
// types (people, relations, checkboxes humans added) are simply absent
// from the record's property set; they are target-owned by definition.
//
// The API reports page IDs as dashed UUIDs, while back-reference notes
// carry the dash-free form the web app uses in URLs. IDs are normalized
// to the dash-free form here so the two sides compare equal; the API
// accepts either form in page endpoints.
func (p wirePage) toRecord() papers.Record {
	props := make(papers.Properties, len(p.Properties))
	for name, wp := range p.Properties {
		if prop, ok := parseProperty(wp); ok {
			props[name] = prop
		}
	}
	return papers.Record{
		ID:         strings.ReplaceAll(p.ID, "-", ""),
		Ref:        props[papers.PropZoteroKey].String(),
		Properties: props,
	}
}
