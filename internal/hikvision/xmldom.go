// internal/hikvision/xmldom.go
package hikvision

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// The ISAPI XML documents mix a default namespace with extension namespaces
// (urn:psialliance-org, urn:selfextension:...), and firmwares disagree on
// which one a given node lives in. Everything here therefore resolves
// elements by local name only.

type xmlElement struct {
	name     string
	text     string
	children []*xmlElement
}

func parseXML(s string) (*xmlElement, error) {
	dec := xml.NewDecoder(strings.NewReader(s))
	var root *xmlElement
	var stack []*xmlElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmlElement{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("document contains no elements")
	}
	return root, nil
}

// child returns the first direct child with the given local name, in any
// namespace, or nil.
func (e *xmlElement) child(name string) *xmlElement {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// firstChild returns the first present of the given local names.
func (e *xmlElement) firstChild(names ...string) *xmlElement {
	for _, n := range names {
		if c := e.child(n); c != nil {
			return c
		}
	}
	return nil
}

// Text returns the element's character data with surrounding whitespace
// stripped.
func (e *xmlElement) Text() string {
	return strings.TrimSpace(e.text)
}

// requiredText returns the text of a required child, or a FieldMissingError.
func (e *xmlElement) requiredText(name string) (string, error) {
	c := e.child(name)
	if c == nil {
		return "", &FieldMissingError{Field: name}
	}
	return c.Text(), nil
}
