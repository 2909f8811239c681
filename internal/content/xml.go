// Pyedx - EdX Learning Analytics Event Normalization and Geolocation
// Copyright 2026 EPFL Center for Digital Education (CEDE)
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/epfl-cede/pyedx

package content

import (
	"encoding/xml"
	"strings"
)

// xmlNode is a generic element tree. Course exports concatenate multiple
// top-level modules into one file, so parsing always goes through a
// synthetic <root> wrapper.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []xmlNode  `xml:",any"`
	Text     string     `xml:",chardata"`
}

// parseFragment wraps the export fragment in a root element and parses
// the whole tree.
func parseFragment(body string) (*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte("<root>"+body+"</root>"), &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// attr returns the named attribute's value, or nil when absent. The
// distinction matters: absent attributes serialize as null, present but
// empty ones as "".
func (n *xmlNode) attr(name string) any {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return nil
}

func (n *xmlNode) stringAttr(name string) (string, bool) {
	v := n.attr(name)
	s, ok := v.(string)
	return s, ok
}

// findAll collects every descendant element with the given name, in
// document order.
func (n *xmlNode) findAll(name string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		child := &n.Children[i]
		if child.XMLName.Local == name {
			out = append(out, child)
		}
		out = append(out, child.findAll(name)...)
	}
	return out
}

// fullText concatenates the text content of the element and all its
// descendants, in document order.
func (n *xmlNode) fullText() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *xmlNode) collectText(b *strings.Builder) {
	b.WriteString(n.Text)
	for i := range n.Children {
		n.Children[i].collectText(b)
	}
}

// toDocument converts the element subtree into a nested document:
// attributes become "@name" keys, child elements nest under their tag
// name (repeated tags collapse into an array), and bare text becomes
// either the value itself or a "#text" key alongside attributes.
func (n *xmlNode) toDocument() any {
	text := strings.TrimSpace(n.Text)
	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		if text == "" {
			return nil
		}
		return text
	}

	doc := make(map[string]any)
	for _, a := range n.Attrs {
		doc["@"+a.Name.Local] = a.Value
	}
	for i := range n.Children {
		child := &n.Children[i]
		name := child.XMLName.Local
		value := child.toDocument()
		switch existing := doc[name].(type) {
		case nil:
			doc[name] = value
		case []any:
			doc[name] = append(existing, value)
		default:
			doc[name] = []any{existing, value}
		}
	}
	if text != "" {
		doc["#text"] = text
	}
	return doc
}
