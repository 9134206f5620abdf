// Package xmltree parses XML documents into a namespace-stripped element tree.
//
// Element and attribute names are reduced to their local part, so a UBL document can be
// addressed as Invoice/AccountingSupplierParty/Party rather than through cac:/cbc: prefixes.
// Namespace declarations are kept separately on each node. Repeated siblings stay in document
// order. All lookups are nil-safe so that callers can chain them over optional content.
package xmltree

import (
	"strings"

	"github.com/beevik/etree"
)

// Node is a single XML element.
type Node struct {
	Name       string
	Attributes map[string]string
	Namespaces map[string]string // prefix ("" for the default namespace) to URI
	Children   []*Node
	Text       string // trimmed character data directly inside the element
}

// Parse reads an XML document and returns its root element, or nil when the input is empty,
// malformed or has no root element. A new etree document is used per call.
func Parse(xml string) *Node {
	if strings.TrimSpace(xml) == "" {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil
	}

	if !singleRoot(doc) {
		return nil
	}
	return fromElement(doc.Root())
}

// singleRoot reports whether the document level holds exactly one element and no character
// data other than whitespace.
func singleRoot(doc *etree.Document) bool {
	elements := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			elements++
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return false
			}
		}
	}
	return elements == 1
}

func fromElement(el *etree.Element) *Node {
	n := &Node{
		Name:       el.Tag,
		Attributes: make(map[string]string),
		Namespaces: make(map[string]string),
		Text:       strings.TrimSpace(el.Text()),
	}

	for _, attr := range el.Attr {
		switch {
		case attr.Space == "" && attr.Key == "xmlns":
			n.Namespaces[""] = attr.Value
		case attr.Space == "xmlns":
			n.Namespaces[attr.Key] = attr.Value
		default:
			n.Attributes[attr.Key] = attr.Value
		}
	}

	children := el.ChildElements()
	if len(children) > 0 {
		n.Children = make([]*Node, 0, len(children))
		for _, child := range children {
			n.Children = append(n.Children, fromElement(child))
		}
	}
	return n
}

// Child returns the first child element with the given local name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child element with the given local name, in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find follows a path of local names through first matching children.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// TextAt returns the text of the element at path, or "" when it does not exist.
func (n *Node) TextAt(path ...string) string {
	found := n.Find(path...)
	if found == nil {
		return ""
	}
	return found.Text
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attributes[name]
}

// DeclaresNamespace reports whether the element declares uri under any prefix.
func (n *Node) DeclaresNamespace(uri string) bool {
	if n == nil {
		return false
	}
	for _, v := range n.Namespaces {
		if v == uri {
			return true
		}
	}
	return false
}
