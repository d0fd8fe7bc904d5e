package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/andreiashu/gazetteer"
	"github.com/andreiashu/gazetteer/reference"
	"github.com/andreiashu/gazetteer/wikidata"
)

// CountryLookup finds ISO 3166-1 countries. Misses wrap reference.ErrNotFound.
type CountryLookup interface {
	FindCountry(name string) (reference.Country, error)
}

// SubdivisionLookup finds ISO 3166-2 subdivisions.
type SubdivisionLookup interface {
	FindSubdivision(name string) (reference.Subdivision, error)
}

// EntitySuggester proposes a Wikidata entity for a name. nil, nil means no
// suggestion.
type EntitySuggester interface {
	Suggest(ctx context.Context, name string) (*wikidata.Entity, error)
}

// EntityCache remembers accepted suggestions by name.
type EntityCache interface {
	Get(name string) (wikidata.Entity, bool)
	Put(name string, e wikidata.Entity) error
}

// levelTags are the classification tags added next to the level name.
var levelTags = map[string][]string{
	"country":  {"ADM1"},
	"province": {"tỉnh", "ADM2"},
	"district": {"ADM3"},
	"commune":  {"ADM4"},
	"village":  {"PPL"},
}

// placeholderTags replace levelTags for places built from the raw name only.
var placeholderTags = map[string]string{
	"country":  "ADM1",
	"province": "ADM2",
	"district": "ADM3",
	"commune":  "ADM4",
	"village":  "PPA",
}

// errNoSuggestion marks a level whose name neither the cache nor the
// suggester could place.
var errNoSuggestion = errors.New("no suggestion")

type options struct {
	logger    *slog.Logger
	caches    map[string]EntityCache
	suggester EntitySuggester
	limit     int
}

// Option configures a Builder or a Converter.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCache sets the suggestion cache of one level (district, commune or
// village).
func WithCache(level string, c EntityCache) Option {
	return func(o *options) {
		o.caches[level] = c
	}
}

// WithSuggester sets the source of suggestions for names missing from the
// caches. Without one, uncached names become placeholders.
func WithSuggester(s EntitySuggester) Option {
	return func(o *options) {
		o.suggester = s
	}
}

// WithLimit makes a Converter stop after n rows. Zero means no limit.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		caches: make(map[string]EntityCache),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Builder turns inventory rows into places.
type Builder struct {
	countries    CountryLookup
	subdivisions SubdivisionLookup
	resolver     gazetteer.Resolver
	caches       map[string]EntityCache
	suggester    EntitySuggester
	log          *slog.Logger
}

// NewBuilder returns a Builder. Cross-references are resolved against the
// places of the row itself and then through resolver, which may be nil.
func NewBuilder(countries CountryLookup, subdivisions SubdivisionLookup, resolver gazetteer.Resolver, opts ...Option) *Builder {
	o := buildOptions(opts)
	return &Builder{
		countries:    countries,
		subdivisions: subdivisions,
		resolver:     resolver,
		caches:       o.caches,
		suggester:    o.suggester,
		log:          o.logger.With("component", "builder"),
	}
}

// LevelError is a failure to build the place of one level of a row.
type LevelError struct {
	Level string
	Name  string
	Err   error
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Level, e.Name, e.Err)
}

func (e *LevelError) Unwrap() error {
	return e.Err
}

// ParseRow builds the places of row, outermost level first. Empty levels
// are skipped. A level that cannot be looked up still yields a placeholder
// place; only places that cannot be built at all are reported as errors.
func (b *Builder) ParseRow(ctx context.Context, row Row) ([]*gazetteer.Place, []error) {
	var (
		places []*gazetteer.Place
		errs   []error
	)
	local := &rowResolver{next: b.resolver}
	country := ""

	for _, level := range gazetteer.AdministrativeLevels {
		name := row[level]
		if name == "" {
			b.log.DebugContext(ctx, "ignored empty level", "level", level, "cnumber", row[CNumber])
			continue
		}

		var (
			p   *gazetteer.Place
			err error
		)
		switch level {
		case "country":
			p, err = b.parseCountry(name, row)
		case "province":
			p, err = b.parseProvince(name, country, row, local)
		case "position":
			err = errNoSuggestion
		default:
			p, err = b.parseEntity(ctx, level, name, row, local)
		}

		if err != nil && isLookupFailure(err) {
			b.logLookupFailure(ctx, level, name, row, err)
			p, err = b.placeholder(level, name, row, local)
		}
		if err != nil {
			errs = append(errs, &LevelError{Level: level, Name: name, Err: err})
			continue
		}
		if level == "country" {
			country = countryCode(p)
		}
		local.places = append(local.places, p)
		places = append(places, p)
	}
	return places, errs
}

func isLookupFailure(err error) bool {
	return errors.Is(err, reference.ErrNotFound) ||
		errors.Is(err, reference.ErrAmbiguous) ||
		errors.Is(err, errNoSuggestion)
}

func (b *Builder) logLookupFailure(ctx context.Context, level, name string, row Row, err error) {
	attrs := []any{"level", level, "name", name, "error", err}
	if level != "country" {
		attrs = append(attrs, "country", row["country"])
	}
	attrs = append(attrs, "cnumber", row[CNumber])
	b.log.WarnContext(ctx, "lookup failed", attrs...)
}

func countryCode(p *gazetteer.Place) string {
	if ids := p.ExternalID("ISO 3166-1", "alpha-2"); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func (b *Builder) parseCountry(name string, row Row) (*gazetteer.Place, error) {
	if b.countries == nil {
		return nil, fmt.Errorf("no country table: %w", reference.ErrNotFound)
	}
	c, err := b.countries.FindCountry(name)
	if err != nil {
		return nil, err
	}
	fields := []gazetteer.Field{
		gazetteer.F("types", []string{"country", "ADM1"}),
		gazetteer.F("project_name", name),
		gazetteer.F("alternate_name", c.Name),
		gazetteer.F("name", c.Names()),
		gazetteer.F("official_name", c.OfficialName),
		gazetteer.F("common_name", c.CommonName),
		gazetteer.F("alpha_2", c.Alpha2),
		gazetteer.F("alpha_3", c.Alpha3),
		gazetteer.F("numeric", c.Numeric),
	}
	if c.GeonameID != 0 {
		fields = append(fields, gazetteer.F("geonameid", strconv.Itoa(int(c.GeonameID))))
	}
	return gazetteer.NewPlace(c.Alpha2, fields, nil)
}

func (b *Builder) parseProvince(name, country string, row Row, r gazetteer.Resolver) (*gazetteer.Place, error) {
	if b.subdivisions == nil {
		return nil, fmt.Errorf("no subdivision table: %w", reference.ErrNotFound)
	}
	sd, err := b.subdivisions.FindSubdivision(name)
	if err != nil {
		return nil, err
	}
	if country != "" && sd.CountryCode != country {
		return nil, fmt.Errorf("%s belongs to %s, not %s: %w", sd.Code, sd.CountryCode, country, reference.ErrNotFound)
	}
	fields := []gazetteer.Field{
		gazetteer.F("types", []string{"province", "tỉnh", "ADM2"}),
		gazetteer.F("project_name", name),
		gazetteer.F("name", sd.Name),
		gazetteer.F("alternate_name", sd.Alternates),
		gazetteer.F("code", sd.Code),
		gazetteer.F("country_code", sd.CountryCode),
		gazetteer.F("subdivision_type", sd.Type),
		gazetteer.F("parent_code", sd.ParentCode),
	}
	fields = append(fields, parentFields("province", row)...)
	return gazetteer.NewPlace(sd.Code, fields, r)
}

// parseEntity builds a district, commune or village from the level's cache
// or, failing that, from the suggester. Accepted suggestions are cached.
func (b *Builder) parseEntity(ctx context.Context, level, name string, row Row, r gazetteer.Resolver) (*gazetteer.Place, error) {
	cache := b.caches[level]
	var entity *wikidata.Entity
	if cache != nil {
		if e, ok := cache.Get(name); ok {
			b.log.DebugContext(ctx, "using stored suggestion", "level", level, "name", name, "id", e.ID)
			entity = &e
		}
	}
	if entity == nil && b.suggester != nil {
		e, err := b.suggester.Suggest(ctx, name)
		if err != nil {
			b.log.WarnContext(ctx, "suggestion failed", "level", level, "name", name, "error", err)
		}
		if e != nil {
			entity = e
			if cache != nil {
				if err := cache.Put(name, *e); err != nil {
					b.log.ErrorContext(ctx, "saving suggestion", "level", level, "name", name, "error", err)
				}
			}
		}
	}
	if entity == nil {
		return nil, errNoSuggestion
	}

	id := gazetteer.Slug(name)
	if id == "" {
		return nil, fmt.Errorf("%w: name %q has no usable id", gazetteer.ErrInvalidPlace, name)
	}
	fields := []gazetteer.Field{
		gazetteer.F("types", append([]string{level}, levelTags[level]...)),
		gazetteer.F("project_name", name),
	}
	fields = append(fields, entity.Fields()...)
	fields = append(fields, parentFields(level, row)...)
	fields = append(fields, gazetteer.F(CNumber, row[CNumber]))
	return gazetteer.NewPlace(id, fields, r)
}

// placeholder builds a place from the raw name alone.
func (b *Builder) placeholder(level, name string, row Row, r gazetteer.Resolver) (*gazetteer.Place, error) {
	id := gazetteer.Slug(name)
	if id == "" {
		return nil, fmt.Errorf("%w: name %q has no usable id", gazetteer.ErrInvalidPlace, name)
	}
	fields := []gazetteer.Field{
		gazetteer.F("name", name),
		gazetteer.F("ptype", level),
		gazetteer.F("type", placeholderTags[level]),
	}
	if level != "country" {
		fields = append(fields, parentFields(level, row)...)
	}
	if level != "country" && level != "province" {
		fields = append(fields, gazetteer.F(CNumber, row[CNumber]))
	}
	return gazetteer.NewPlace(id, fields, r)
}

// parentFields returns cross-reference fields for the levels above level.
func parentFields(level string, row Row) []gazetteer.Field {
	var out []gazetteer.Field
	for _, parent := range gazetteer.AdministrativeLevels {
		if parent == level {
			break
		}
		if v := row[parent]; v != "" {
			out = append(out, gazetteer.F(parent, v))
		}
	}
	return out
}

// rowResolver resolves names against the places already built for the
// current row before asking next.
type rowResolver struct {
	places []*gazetteer.Place
	next   gazetteer.Resolver
}

func (r *rowResolver) Resolve(term string) (*gazetteer.Place, error) {
	key := gazetteer.NormalizeKey(term)
	for i := len(r.places) - 1; i >= 0; i-- {
		p := r.places[i]
		for _, n := range p.Names.Values() {
			if gazetteer.NormalizeKey(n) == key {
				return p, nil
			}
		}
	}
	if r.next == nil {
		return nil, &gazetteer.PlaceNotFound{Term: term}
	}
	return r.next.Resolve(term)
}
