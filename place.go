package gazetteer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
)

// AttributeKind tells which member of an Attribute is populated.
type AttributeKind uint8

const (
	// Scalar holds a single string value.
	Scalar AttributeKind = iota + 1
	// List holds an accumulating ordered set of strings.
	List
	// Reference points at a parent place by name and, when resolvable, id.
	Reference
	// Point holds coordinates.
	Point
)

func (k AttributeKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case List:
		return "list"
	case Reference:
		return "reference"
	case Point:
		return "point"
	}
	return fmt.Sprintf("AttributeKind(%d)", uint8(k))
}

// CrossRef is a reference to another place. ID is empty when the name could
// not be resolved at construction time.
type CrossRef struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Attribute is a free-form value stored on a Place.
type Attribute struct {
	Kind   AttributeKind
	Scalar string
	List   *OrderedSet
	Ref    CrossRef
	Point  Coordinates
}

// Equal reports whether two attributes hold the same value.
func (a Attribute) Equal(b Attribute) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Scalar:
		return a.Scalar == b.Scalar
	case List:
		return a.List.Equal(b.List)
	case Reference:
		return a.Ref == b.Ref
	case Point:
		return a.Point.Equal(b.Point)
	}
	return true
}

func (a Attribute) clone() Attribute {
	if a.Kind == List {
		a.List = a.List.Clone()
	}
	return a
}

// String renders the value for logs and conflict messages.
func (a Attribute) String() string {
	switch a.Kind {
	case Scalar:
		return a.Scalar
	case List:
		return "[" + a.List.String() + "]"
	case Reference:
		if a.Ref.ID == "" {
			return a.Ref.Name
		}
		return a.Ref.Name + " (" + a.Ref.ID + ")"
	case Point:
		return a.Point.String()
	}
	return ""
}

// MarshalJSON encodes the populated member only.
func (a Attribute) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case Scalar:
		return json.Marshal(a.Scalar)
	case List:
		return json.Marshal(a.List.Values())
	case Reference:
		return json.Marshal(a.Ref)
	case Point:
		return json.Marshal(a.Point)
	}
	return []byte("null"), nil
}

// Place is one gazetteer entry.
//
// ID is fixed at construction. Names, Types, ExternalIDs and list attributes
// only ever grow; replacing a record wholesale is Gazetteer.Register's job.
type Place struct {
	ID          string
	Names       *OrderedSet
	Types       *OrderedSet
	ExternalIDs map[string]*OrderedSet
	Attributes  map[string]Attribute
}

// Field is one named value handed to NewPlace. Value is a string, a []string
// or a Coordinates, depending on the field.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for building a Field.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Resolver looks a place up by id or name. Builders get this read-only view
// of a Gazetteer, never the Gazetteer itself.
type Resolver interface {
	Resolve(term string) (*Place, error)
}

func newPlace(id string) *Place {
	return &Place{
		ID:          id,
		Names:       NewOrderedSet(),
		Types:       NewFoldedSet(),
		ExternalIDs: make(map[string]*OrderedSet),
		Attributes:  make(map[string]Attribute),
	}
}

// fillZero gives nil collections on a hand-built Place their empty values.
func (p *Place) fillZero() {
	if p.Names == nil {
		p.Names = NewOrderedSet()
	}
	if p.Types == nil {
		p.Types = NewFoldedSet()
	}
	if p.ExternalIDs == nil {
		p.ExternalIDs = make(map[string]*OrderedSet)
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]Attribute)
	}
}

// NewPlace builds a place from fields applied in order. Cross-reference
// fields (country, province, ...) are resolved through r when r is non-nil;
// a failed resolution just leaves the reference without an id.
//
// An unrecognized field name fails with *UnknownFieldError. A place without
// any name-bearing field fails with ErrNoName.
func NewPlace(id string, fields []Field, r Resolver) (*Place, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidPlace)
	}
	p := newPlace(id)
	for _, f := range fields {
		if err := p.set(f, r); err != nil {
			return nil, fmt.Errorf("place %q: %w", id, err)
		}
	}
	if p.Names.Len() == 0 {
		return nil, fmt.Errorf("place %q: %w", id, ErrNoName)
	}
	return p, nil
}

// AddName appends a display name unless it is empty or already present.
func (p *Place) AddName(name string) bool {
	if name == "" {
		return false
	}
	return p.Names.Add(name)
}

// AddType appends a classification tag; tags differing only by case are the
// same tag.
func (p *Place) AddType(t string) bool {
	if t == "" {
		return false
	}
	return p.Types.Add(t)
}

// SetIdentifier stores value under the authority named by path, e.g.
// SetIdentifier("KH", "ISO 3166-1", "alpha-2") files "KH" under
// "ISO 3166-1 alpha-2".
func (p *Place) SetIdentifier(value string, path ...string) error {
	if len(path) == 0 {
		return ErrEmptyIdentifierPath
	}
	if value == "" {
		return nil
	}
	key := AuthorityKey(path...)
	ids, ok := p.ExternalIDs[key]
	if !ok {
		ids = NewOrderedSet()
		p.ExternalIDs[key] = ids
	}
	ids.Add(value)
	return nil
}

// AuthorityKey joins an identifier path into the ExternalIDs key.
func AuthorityKey(path ...string) string {
	return strings.Join(path, " ")
}

// ExternalID returns the identifiers stored under path.
func (p *Place) ExternalID(path ...string) []string {
	return p.ExternalIDs[AuthorityKey(path...)].Values()
}

// Attribute returns the attribute stored under key.
func (p *Place) Attribute(key string) (Attribute, bool) {
	a, ok := p.Attributes[key]
	return a, ok
}

// setScalar keeps the first non-empty value.
func (p *Place) setScalar(key, value string) {
	if value == "" {
		return
	}
	if a, ok := p.Attributes[key]; ok && a.Scalar != "" {
		return
	}
	p.Attributes[key] = Attribute{Kind: Scalar, Scalar: value}
}

func (p *Place) appendList(key string, values ...string) {
	a, ok := p.Attributes[key]
	if !ok {
		a = Attribute{Kind: List, List: NewOrderedSet()}
	}
	for _, v := range values {
		if v != "" {
			a.List.Add(v)
		}
	}
	if a.List.Len() > 0 {
		p.Attributes[key] = a
	}
}

func (p *Place) setReference(key, name string, r Resolver) {
	if name == "" {
		return
	}
	if _, ok := p.Attributes[key]; ok {
		return
	}
	ref := CrossRef{Name: name}
	if r != nil {
		if hit, err := r.Resolve(name); err == nil {
			ref.ID = hit.ID
		}
	}
	p.Attributes[key] = Attribute{Kind: Reference, Ref: ref}
}

// Clone returns a deep copy.
func (p *Place) Clone() *Place {
	c := &Place{
		ID:          p.ID,
		Names:       p.Names.Clone(),
		Types:       p.Types.Clone(),
		ExternalIDs: make(map[string]*OrderedSet, len(p.ExternalIDs)),
		Attributes:  make(map[string]Attribute, len(p.Attributes)),
	}
	for k, v := range p.ExternalIDs {
		c.ExternalIDs[k] = v.Clone()
	}
	for k, v := range p.Attributes {
		c.Attributes[k] = v.clone()
	}
	return c
}

// Equal reports whether p and o are field-for-field identical.
func (p *Place) Equal(o *Place) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.ID != o.ID || !p.Names.Equal(o.Names) || !p.Types.Equal(o.Types) {
		return false
	}
	if !maps.EqualFunc(p.ExternalIDs, o.ExternalIDs, (*OrderedSet).Equal) {
		return false
	}
	return maps.EqualFunc(p.Attributes, o.Attributes, Attribute.Equal)
}

func (p *Place) String() string {
	return fmt.Sprintf("%s: %s (%s)", p.ID, strings.Join(p.Names.Values(), ", "), strings.Join(p.Types.Values(), "/"))
}

type placeJSON struct {
	ID          string               `json:"id"`
	Names       []string             `json:"names"`
	Types       []string             `json:"types,omitempty"`
	ExternalIDs map[string][]string  `json:"external_ids,omitempty"`
	Attributes  map[string]Attribute `json:"attributes,omitempty"`
}

// MarshalJSON encodes the place as a plain document.
func (p *Place) MarshalJSON() ([]byte, error) {
	doc := placeJSON{
		ID:         p.ID,
		Names:      p.Names.Values(),
		Types:      p.Types.Values(),
		Attributes: p.Attributes,
	}
	if len(p.ExternalIDs) > 0 {
		doc.ExternalIDs = make(map[string][]string, len(p.ExternalIDs))
		for _, k := range slices.Sorted(maps.Keys(p.ExternalIDs)) {
			doc.ExternalIDs[k] = p.ExternalIDs[k].Values()
		}
	}
	return json.Marshal(doc)
}
