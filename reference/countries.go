package reference

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Country is an ISO 3166-1 country with the GeoNames metadata that comes
// with it.
type Country struct {
	Alpha2       string
	Alpha3       string
	Numeric      string // zero-padded, e.g. "116"
	Name         string
	OfficialName string
	CommonName   string
	Fips         string
	Capital      string
	Continent    string
	GeonameID    int32
	// geonamesName is the GeoNames spelling when the names overlay differs.
	geonamesName string
}

// Names returns every name the country can be looked up by, Name first.
func (c Country) Names() []string {
	var out []string
	for _, n := range []string{c.Name, c.OfficialName, c.CommonName, c.geonamesName} {
		if n != "" && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Countries is a lookup table of countries by code or name.
type Countries struct {
	list    []Country
	byKey   map[string]int
	aliases map[string]string
}

// LoadCountries parses a GeoNames countryInfo.txt stream. Comment lines start
// with '#'; data lines have 19 tab-separated fields.
func LoadCountries(r io.Reader) (*Countries, error) {
	t := &Countries{byKey: make(map[string]int), aliases: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		fields := strings.SplitN(text, "\t", 19)
		if len(fields) != 19 || fields[0] == "" || fields[0] == "0" {
			continue
		}

		numeric := ""
		if n, err := strconv.Atoi(fields[2]); err == nil {
			numeric = fmt.Sprintf("%03d", n)
		}
		gid, _ := strconv.Atoi(fields[16])

		t.add(Country{
			Alpha2:    fields[0],
			Alpha3:    fields[1],
			Numeric:   numeric,
			Fips:      fields[3],
			Name:      fields[4],
			Capital:   fields[5],
			Continent: fields[8],
			GeonameID: int32(gid),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading country info line %d: %w", line, err)
	}
	return t, nil
}

func (t *Countries) add(c Country) {
	t.list = append(t.list, c)
	t.indexCountry(len(t.list) - 1)
}

func (t *Countries) indexCountry(i int) {
	c := t.list[i]
	for _, k := range []string{c.Alpha2, c.Alpha3, c.Numeric} {
		if k != "" {
			t.byKey[lookupKey(k)] = i
		}
	}
	for _, n := range c.Names() {
		for _, k := range nameKeys(n) {
			if _, taken := t.byKey[k]; !taken {
				t.byKey[k] = i
			}
		}
	}
}

// ApplyNames overlays official and common names from a TSV stream with
// columns alpha-2, name, official name, common name. Unknown codes are
// skipped.
func (t *Countries) ApplyNames(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" || text[0] == '#' {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 4 {
			continue
		}
		i, ok := t.byKey[lookupKey(fields[0])]
		if !ok {
			continue
		}
		c := &t.list[i]
		if fields[1] != "" && fields[1] != c.Name {
			c.geonamesName = c.Name
			c.Name = fields[1]
		}
		c.OfficialName = fields[2]
		c.CommonName = fields[3]
		t.indexCountry(i)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading country names: %w", err)
	}
	return nil
}

// AddAlias makes alias resolve like name, e.g. AddAlias("Cambodge", "Cambodia").
func (t *Countries) AddAlias(alias, name string) {
	t.aliases[lookupKey(alias)] = name
}

// Alias returns the configured lookup name for raw, or raw itself.
func (t *Countries) Alias(raw string) string {
	if name, ok := t.aliases[lookupKey(raw)]; ok {
		return name
	}
	return raw
}

// FindCountry looks a country up by alpha-2, alpha-3 or numeric code, or by
// any of its names, ignoring case and accents. Aliases are applied first.
func (t *Countries) FindCountry(name string) (Country, error) {
	term := t.Alias(name)
	if i, ok := t.byKey[lookupKey(term)]; ok {
		return t.list[i], nil
	}
	for _, k := range nameKeys(term) {
		if i, ok := t.byKey[k]; ok {
			return t.list[i], nil
		}
	}
	return Country{}, fmt.Errorf("country %q: %w", name, ErrNotFound)
}

// Len returns the number of countries.
func (t *Countries) Len() int {
	return len(t.list)
}

// All returns the countries in file order.
func (t *Countries) All() []Country {
	out := make([]Country, len(t.list))
	copy(out, t.list)
	return out
}
