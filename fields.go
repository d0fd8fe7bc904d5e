package gazetteer

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// fieldClass is the accumulator behaviour a field name is routed to.
type fieldClass uint8

const (
	nameField fieldClass = iota + 1
	typeField
	identifierField
	scalarField
	listField
	referenceField
	pointField
)

type fieldSpec struct {
	class fieldClass
	// path is the authority path of an identifier field.
	path []string
	// accept filters identifier values; nil accepts everything.
	accept *regexp.Regexp
	// rewrite adjusts list values before they are stored.
	rewrite func(string) string
	// also runs after a scalar value is stored.
	also func(p *Place, value string)
}

var wikidataQID = regexp.MustCompile(`^Q\d+$`)

// fieldTable routes normalized field names to accumulators. Keys are
// produced by FieldKey.
var fieldTable = map[string]fieldSpec{
	// names
	"name":           {class: nameField},
	"alternate_name": {class: nameField},
	"common_name":    {class: nameField},
	"official_name":  {class: nameField},
	"label":          {class: nameField},
	"title":          {class: nameField},
	"project_name":   {class: nameField},
	"aliases":        {class: nameField},

	// classification
	"type":  {class: typeField},
	"ptype": {class: typeField},
	"types": {class: typeField},

	// authoritative identifiers
	"alpha_2":   {class: identifierField, path: []string{"ISO 3166-1", "alpha-2"}},
	"alpha_3":   {class: identifierField, path: []string{"ISO 3166-1", "alpha-3"}},
	"numeric":   {class: identifierField, path: []string{"ISO 3166-1", "numeric"}},
	"code":      {class: identifierField, path: []string{"ISO 3166-2"}},
	"id":        {class: identifierField, path: []string{"wikidata"}, accept: wikidataQID},
	"geonameid": {class: identifierField, path: []string{"geonames"}},

	// pass-through
	"description":      {class: scalarField, also: typeFromDescription},
	"country_code":     {class: scalarField},
	"parent_code":      {class: scalarField},
	"subdivision_type": {class: scalarField},
	"match":            {class: scalarField},
	"pageid":           {class: scalarField},
	"repository":       {class: scalarField},
	"coordinates":      {class: pointField},
	"cnumber":          {class: listField},
	"same_as":          {class: listField},
	"concepturi":       {class: listField, rewrite: absoluteURI},
	"url":              {class: listField, rewrite: absoluteURI},
	"uris":             {class: listField, rewrite: absoluteURI},

	// parent places
	"country":  {class: referenceField},
	"province": {class: referenceField},
	"district": {class: referenceField},
	"commune":  {class: referenceField},
	"village":  {class: referenceField},
	"position": {class: referenceField},
}

// listAttributeKeys maps list fields stored under another key: concept URIs
// go to "same_as" and page URLs to "uris".
var listAttributeKeys = map[string]string{
	"concepturi": "same_as",
	"url":        "uris",
}

// FieldKey normalizes a field name for routing: lower-cased, whitespace runs
// replaced by "_". "Alpha 2" and "alpha_2" route to the same accumulator.
func FieldKey(name string) string {
	return strings.Join(strings.Fields(toLower(name)), "_")
}

// KnownFields lists every field name NewPlace accepts, sorted.
func KnownFields() []string {
	keys := make([]string, 0, len(fieldTable))
	for k := range fieldTable {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// AdministrativeLevels is the fixed hierarchy of the inventory, outermost first.
var AdministrativeLevels = []string{"country", "province", "district", "commune", "village", "position"}

func (p *Place) set(f Field, r Resolver) error {
	key := FieldKey(f.Name)
	spec, ok := fieldTable[key]
	if !ok {
		return &UnknownFieldError{Field: f.Name}
	}

	if spec.class == pointField {
		switch v := f.Value.(type) {
		case Coordinates:
			p.setPoint(key, v)
		case *Coordinates:
			if v != nil {
				p.setPoint(key, *v)
			}
		case nil:
		default:
			return fmt.Errorf("%w: field %q takes coordinates, got %T", ErrInvalidPlace, f.Name, f.Value)
		}
		return nil
	}

	values, err := stringValues(f)
	if err != nil {
		return err
	}

	switch spec.class {
	case nameField:
		for _, v := range values {
			p.AddName(v)
		}
	case typeField:
		for _, v := range values {
			p.AddType(v)
		}
	case identifierField:
		for _, v := range values {
			if spec.accept != nil && !spec.accept.MatchString(v) {
				continue
			}
			if err := p.SetIdentifier(v, spec.path...); err != nil {
				return err
			}
		}
	case scalarField:
		for _, v := range values {
			p.setScalar(key, v)
			if spec.also != nil && v != "" {
				spec.also(p, v)
			}
		}
	case listField:
		if spec.rewrite != nil {
			for i, v := range values {
				values[i] = spec.rewrite(v)
			}
		}
		target := key
		if k, ok := listAttributeKeys[key]; ok {
			target = k
		}
		p.appendList(target, values...)
	case referenceField:
		for _, v := range values {
			p.setReference(key, v, r)
		}
	}
	return nil
}

func (p *Place) setPoint(key string, c Coordinates) {
	if _, ok := p.Attributes[key]; ok {
		return
	}
	p.Attributes[key] = Attribute{Kind: Point, Point: c}
}

func stringValues(f Field) ([]string, error) {
	switch v := f.Value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return slices.Clone(v), nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: field %q takes text, got %T", ErrInvalidPlace, f.Name, f.Value)
}

// typeFromDescription tags places the knowledge base describes as cities.
func typeFromDescription(p *Place, desc string) {
	if desc == "city" || strings.HasPrefix(desc, "capital of ") {
		p.AddType("city")
	}
}

// absoluteURI turns protocol-relative URIs into https URIs.
func absoluteURI(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
