// =============================================================================
// CFDI Extractor - Schema Adapters
// =============================================================================
//
// A CFDI document mixes several XML namespaces: the comprobante itself (one
// namespace per schema generation), the tax stamp, and one namespace per
// complement version. Each namespace is described by a Schema, and lookups go
// through a Chain: an ordered list of schemas tried newest first. The first
// schema that yields a non-empty result wins.
//
// The chain is consulted again at every nesting level, so a 4.0 root with a
// 3.3 Emisor (or 3.3 taxes under a 4.0 Concepto) still resolves.
//
// =============================================================================

package extractor

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/ginjaninja78/cfdi-extractor/internal/types"
)

// Schema describes one namespaced schema generation.
type Schema struct {
	// Name is the conventional prefix, used only in logs.
	Name string

	// Version is the schema version reported when the document does not
	// declare one explicitly.
	Version string

	// Namespace is the namespace URI elements must carry to match.
	Namespace string
}

// Known schemas.
var (
	CFDI40   = Schema{Name: "cfdi", Version: "4.0", Namespace: "http://www.sat.gob.mx/cfd/4"}
	CFDI33   = Schema{Name: "cfdi33", Version: "3.3", Namespace: "http://www.sat.gob.mx/cfd/3"}
	TFD      = Schema{Name: "tfd", Version: "1.1", Namespace: "http://www.sat.gob.mx/TimbreFiscalDigital"}
	Pagos20  = Schema{Name: "pago20", Version: "2.0", Namespace: "http://www.sat.gob.mx/Pagos20"}
	Pagos10  = Schema{Name: "pago10", Version: "1.0", Namespace: "http://www.sat.gob.mx/Pagos"}
	Nomina12 = Schema{Name: "nomina12", Version: "1.2", Namespace: "http://www.sat.gob.mx/nomina12"}
)

// Matches reports whether el is the element tag in this schema's namespace.
func (s Schema) Matches(el *etree.Element, tag string) bool {
	return el.Tag == tag && el.NamespaceURI() == s.Namespace
}

// Child returns the first direct child named tag, or nil.
func (s Schema) Child(parent *etree.Element, tag string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.ChildElements() {
		if s.Matches(child, tag) {
			return child
		}
	}
	return nil
}

// Children follows path one direct-child step at a time and returns every
// element matching the last step, in document order.
func (s Schema) Children(parent *etree.Element, path ...string) []*etree.Element {
	if parent == nil || len(path) == 0 {
		return nil
	}
	current := []*etree.Element{parent}
	for _, tag := range path {
		var next []*etree.Element
		for _, el := range current {
			for _, child := range el.ChildElements() {
				if s.Matches(child, tag) {
					next = append(next, child)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Descendants returns every element named tag anywhere below parent, in
// document order. Wrapper elements in between are ignored.
func (s Schema) Descendants(parent *etree.Element, tag string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var found []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if s.Matches(child, tag) {
				found = append(found, child)
			}
			walk(child)
		}
	}
	walk(parent)
	return found
}

// =============================================================================
// CHAIN
// =============================================================================

// Chain is a priority-ordered list of schemas.
type Chain []Schema

// Chains used by the extractor and the default complement decoders.
var (
	InvoiceChain  = Chain{CFDI40, CFDI33}
	StampChain    = Chain{TFD}
	PaymentsChain = Chain{Pagos20, Pagos10}
	PayrollChain  = Chain{Nomina12}
)

// Child returns the first direct child named tag from the first schema that has one.
func (c Chain) Child(parent *etree.Element, tag string) *etree.Element {
	for _, s := range c {
		if el := s.Child(parent, tag); el != nil {
			return el
		}
	}
	return nil
}

// Children follows path one direct-child step at a time. At every step, and
// for every parent reached so far, the children come from the first schema
// that has any, so each nesting level falls back on its own.
func (c Chain) Children(parent *etree.Element, path ...string) []*etree.Element {
	if parent == nil || len(path) == 0 {
		return nil
	}
	current := []*etree.Element{parent}
	for _, tag := range path {
		var next []*etree.Element
		for _, el := range current {
			for _, s := range c {
				if els := s.Children(el, tag); len(els) > 0 {
					next = append(next, els...)
					break
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// Descendants returns the recursive matches of the first schema with a non-empty result.
func (c Chain) Descendants(parent *etree.Element, tag string) []*etree.Element {
	for _, s := range c {
		if els := s.Descendants(parent, tag); len(els) > 0 {
			return els
		}
	}
	return nil
}

// FirstDescendant returns the first recursive match and the schema that matched it.
func (c Chain) FirstDescendant(parent *etree.Element, tag string) (*etree.Element, Schema, bool) {
	for _, s := range c {
		if els := s.Descendants(parent, tag); len(els) > 0 {
			return els[0], s, true
		}
	}
	return nil, Schema{}, false
}

// DetectVersion reads the Version (or legacy lowercase version) attribute of
// root. Without one, the root namespace decides; an unrecognised namespace
// gives types.VersionUnknown.
func (c Chain) DetectVersion(root *etree.Element) string {
	if v := attr(root, "Version"); v != "" {
		return v
	}
	if v := attr(root, "version"); v != "" {
		return v
	}
	uri := root.NamespaceURI()
	for _, s := range c {
		if uri == s.Namespace {
			return s.Version
		}
	}
	return types.VersionUnknown
}

// =============================================================================
// ATTRIBUTES
// =============================================================================

// attr returns the trimmed value of an unprefixed attribute, or "".
func attr(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	for _, a := range el.Attr {
		if a.Space == "" && a.Key == key {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// attrOr returns the attribute value, or fallback when it is missing or blank.
func attrOr(el *etree.Element, key, fallback string) string {
	if v := attr(el, key); v != "" {
		return v
	}
	return fallback
}
