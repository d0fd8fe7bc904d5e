// Package reference provides ISO 3166 country and subdivision lookups backed
// by GeoNames country info and an ISO 3166-2 table.
//
// Files in the configured data directory take precedence; the embedded
// excerpt covering mainland Southeast Asia is used when they are missing.
package reference

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/andreiashu/gazetteer"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed data
var embedded embed.FS

// File names inside a data directory.
const (
	CountryInfoFile  = "countryInfo.txt"
	CountryNamesFile = "country_names.tsv"
	SubdivisionsFile = "subdivisions.tsv"
)

// CountryInfoURL is the GeoNames country table.
const CountryInfoURL = "https://download.geonames.org/export/dump/countryInfo.txt"

var (
	// ErrNotFound is returned when a lookup has no match.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a name matches more than one entry.
	ErrAmbiguous = errors.New("ambiguous")
)

// Config controls where reference tables are read from.
type Config struct {
	DataDir string            // directory checked before the embedded data
	Aliases map[string]string // country alias -> lookup name
	Logger  *slog.Logger
}

// Option is a functional option for Open.
type Option func(*Config)

// WithDataDir sets the directory holding countryInfo.txt and subdivisions.tsv.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithAliases adds country aliases such as "Cambodge" -> "Cambodia".
func WithAliases(aliases map[string]string) Option {
	return func(c *Config) {
		for k, v := range aliases {
			c.Aliases[k] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func defaultConfig() *Config {
	return &Config{
		DataDir: "./reference-data",
		Aliases: make(map[string]string),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Tables bundles the country and subdivision lookups.
type Tables struct {
	Countries    *Countries
	Subdivisions *Subdivisions
}

// Open loads both tables.
func Open(opts ...Option) (*Tables, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.Logger.With("component", "reference")

	countries, err := loadFile(cfg.DataDir, CountryInfoFile, LoadCountries, log)
	if err != nil {
		return nil, err
	}
	fh, err := openOptionallyLocalFile(cfg.DataDir, CountryNamesFile)
	if err == nil {
		err = countries.ApplyNames(fh)
		fh.Close()
		if err != nil {
			return nil, err
		}
	}
	for alias, name := range cfg.Aliases {
		countries.AddAlias(alias, name)
	}

	subdivisions, err := loadFile(cfg.DataDir, SubdivisionsFile, LoadSubdivisions, log)
	if err != nil {
		return nil, err
	}

	log.Debug("reference tables loaded",
		"countries", countries.Len(),
		"subdivisions", subdivisions.Len())
	return &Tables{Countries: countries, Subdivisions: subdivisions}, nil
}

func loadFile[T any](dir, name string, parse func(io.Reader) (T, error), log *slog.Logger) (T, error) {
	var zero T
	fh, err := openOptionallyLocalFile(dir, name)
	if err != nil {
		return zero, err
	}
	defer fh.Close()
	log.Debug("reading reference file", "file", name)

	v, err := parse(fh)
	if err != nil {
		return zero, fmt.Errorf("loading %s: %w", name, err)
	}
	return v, nil
}

// openOptionallyLocalFile prefers dir/name on disk and falls back to the
// embedded copy.
func openOptionallyLocalFile(dir, name string) (fs.File, error) {
	if dir != "" {
		if fh, err := os.Open(filepath.Join(dir, name)); err == nil {
			return fh, nil
		}
	}
	fh, err := embedded.Open("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return fh, nil
}

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func lookupKey(s string) string {
	return gazetteer.NormalizeKey(s)
}

// nameKeys returns the lookup key of a name and, when different, the key of
// its accent-free spelling ("Quảng Nam" -> "quảng-nam", "quang-nam").
func nameKeys(s string) []string {
	k := lookupKey(s)
	folded, _, err := transform.String(stripMarks(), k)
	if err != nil {
		return []string{k}
	}
	// đ has no canonical decomposition.
	folded = strings.ReplaceAll(folded, "đ", "d")
	if folded == k {
		return []string{k}
	}
	return []string{k, folded}
}
