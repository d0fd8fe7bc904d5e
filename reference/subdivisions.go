package reference

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Subdivision is an ISO 3166-2 first-level administrative division (province,
// municipality, ...).
type Subdivision struct {
	Code        string // ISO 3166-2 code, e.g. "KH-3"
	CountryCode string // ISO 3166-1 alpha-2, e.g. "KH"
	Type        string // e.g. "province"
	Name        string
	Alternates  []string
	ParentCode  string
}

// Subdivisions maps country code -> subdivision code -> Subdivision and
// indexes every name for lookup.
type Subdivisions struct {
	byCountry map[string]map[string]Subdivision
	byName    map[string][]string // name key -> codes
}

// LoadSubdivisions parses a tab-separated stream with columns code, country,
// type, name and an optional comma-separated list of alternate names.
// Comment lines start with '#'.
func LoadSubdivisions(r io.Reader) (*Subdivisions, error) {
	t := &Subdivisions{
		byCountry: make(map[string]map[string]Subdivision),
		byName:    make(map[string][]string),
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" || text[0] == '#' {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("subdivisions line %d: want at least 4 fields, got %d", line, len(fields))
		}

		code := strings.ToUpper(strings.TrimSpace(fields[0]))
		country, _, ok := strings.Cut(code, "-")
		if !ok || country != strings.ToUpper(fields[1]) {
			return nil, fmt.Errorf("subdivisions line %d: code %q does not belong to %q", line, fields[0], fields[1])
		}

		sd := Subdivision{
			Code:        code,
			CountryCode: country,
			Type:        fields[2],
			Name:        fields[3],
		}
		if len(fields) > 4 && fields[4] != "" {
			for _, alt := range strings.Split(fields[4], ",") {
				if alt = strings.TrimSpace(alt); alt != "" {
					sd.Alternates = append(sd.Alternates, alt)
				}
			}
		}
		if len(fields) > 5 {
			sd.ParentCode = fields[5]
		}
		t.add(sd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading subdivisions: %w", err)
	}
	return t, nil
}

func (t *Subdivisions) add(sd Subdivision) {
	if t.byCountry[sd.CountryCode] == nil {
		t.byCountry[sd.CountryCode] = make(map[string]Subdivision)
	}
	t.byCountry[sd.CountryCode][sd.Code] = sd

	names := append([]string{sd.Name}, sd.Alternates...)
	for _, n := range names {
		for _, k := range nameKeys(n) {
			if !slices.Contains(t.byName[k], sd.Code) {
				t.byName[k] = append(t.byName[k], sd.Code)
			}
		}
	}
}

func (t *Subdivisions) get(code string) (Subdivision, bool) {
	country, _, _ := strings.Cut(code, "-")
	sd, ok := t.byCountry[country][code]
	return sd, ok
}

// FindSubdivision looks a subdivision up by ISO 3166-2 code or by name,
// ignoring case and accents. A name shared by divisions of several codes
// fails with ErrAmbiguous.
func (t *Subdivisions) FindSubdivision(name string) (Subdivision, error) {
	if sd, ok := t.get(strings.ToUpper(strings.TrimSpace(name))); ok {
		return sd, nil
	}
	for _, k := range nameKeys(name) {
		codes := t.byName[k]
		switch len(codes) {
		case 0:
			continue
		case 1:
			sd, _ := t.get(codes[0])
			return sd, nil
		default:
			return Subdivision{}, fmt.Errorf("subdivision %q (%s): %w", name, strings.Join(codes, ", "), ErrAmbiguous)
		}
	}
	return Subdivision{}, fmt.Errorf("subdivision %q: %w", name, ErrNotFound)
}

// IsSubdivision reports whether code is a known subdivision of countryCode.
// Both "KH-3" and the bare "3" are accepted.
func (t *Subdivisions) IsSubdivision(countryCode, code string) bool {
	countryCode = strings.ToUpper(countryCode)
	code = strings.ToUpper(code)
	if !strings.Contains(code, "-") {
		code = countryCode + "-" + code
	}
	_, ok := t.byCountry[countryCode][code]
	return ok
}

// SubdivisionCountry returns the country a code belongs to, or "" when the
// code is unknown.
func (t *Subdivisions) SubdivisionCountry(code string) string {
	if sd, ok := t.get(strings.ToUpper(code)); ok {
		return sd.CountryCode
	}
	return ""
}

// Country returns the subdivisions of one country sorted by code.
func (t *Subdivisions) Country(countryCode string) []Subdivision {
	divisions := t.byCountry[strings.ToUpper(countryCode)]
	out := make([]Subdivision, 0, len(divisions))
	for _, sd := range divisions {
		out = append(out, sd)
	}
	slices.SortFunc(out, func(a, b Subdivision) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// Len returns the number of subdivisions.
func (t *Subdivisions) Len() int {
	n := 0
	for _, d := range t.byCountry {
		n += len(d)
	}
	return n
}
