// Package gazetteer keeps a registry of places built from inventory records:
// stable ids, merged repeat mentions, and name resolution through a
// normalized name index.
//
// A Gazetteer is not safe for concurrent use. Callers that parse rows
// concurrently must funnel Register calls through one goroutine.
package gazetteer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	json "github.com/goccy/go-json"
)

// Config holds Gazetteer construction options.
type Config struct {
	Logger *slog.Logger
}

// Option configures a Gazetteer.
type Option func(*Config)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func defaultConfig() *Config {
	return &Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Gazetteer owns the id → place map and the name index.
type Gazetteer struct {
	places map[string]*Place
	order  []string
	index  *NameIndex
	log    *slog.Logger
}

// New returns an empty Gazetteer.
func New(opts ...Option) *Gazetteer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Gazetteer{
		places: make(map[string]*Place),
		index:  NewNameIndex(),
		log:    cfg.Logger.With("component", "gazetteer"),
	}
}

// RegisterOption adjusts a single Register call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	overwrite bool
}

// WithOverwrite makes Register replace an existing record with the same id
// instead of merging.
func WithOverwrite() RegisterOption {
	return func(o *registerOptions) {
		o.overwrite = true
	}
}

// RegisterResult says what Register did with a candidate.
type RegisterResult uint8

const (
	// Added means the id was new.
	Added RegisterResult = iota + 1
	// Unchanged means the candidate carried nothing new.
	Unchanged
	// Merged means new names, types, identifiers or attributes were folded in.
	Merged
	// Replaced means an existing record was overwritten.
	Replaced
)

func (r RegisterResult) String() string {
	switch r {
	case Added:
		return "added"
	case Unchanged:
		return "unchanged"
	case Merged:
		return "merged"
	case Replaced:
		return "replaced"
	}
	return "none"
}

// Register adds candidate to the gazetteer. A candidate without an id fails
// with ErrInvalidPlace and one without names with ErrNoName.
//
// A new id is stored and every name indexed. For an id already present the
// candidate is merged: identical records are a no-op, additions are folded
// into the existing record, and any contradicting value fails with
// *PlaceConflict, leaving the gazetteer untouched. WithOverwrite replaces the
// record instead; index entries of the replaced record are kept.
//
// The gazetteer keeps candidate (new ids and overwrites); callers must not
// modify it afterwards.
func (g *Gazetteer) Register(candidate *Place, opts ...RegisterOption) (RegisterResult, error) {
	if candidate == nil || candidate.ID == "" {
		return 0, fmt.Errorf("%w: missing id", ErrInvalidPlace)
	}
	if candidate.Names.Len() == 0 {
		return 0, fmt.Errorf("place %q: %w", candidate.ID, ErrNoName)
	}
	candidate.fillZero()
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	prior, ok := g.places[candidate.ID]
	if !ok {
		g.places[candidate.ID] = candidate
		g.order = append(g.order, candidate.ID)
		g.indexNames(candidate.ID, candidate.Names.Values())
		g.log.Info("added place", "id", candidate.ID,
			"names", strings.Join(candidate.Names.Values(), ", "),
			"types", strings.Join(candidate.Types.Values(), "/"))
		return Added, nil
	}

	if o.overwrite {
		g.log.Warn("overwriting place", "id", candidate.ID)
		g.places[candidate.ID] = candidate
		g.indexNames(candidate.ID, candidate.Names.Values())
		return Replaced, nil
	}

	merged, newNames, changed, err := mergePlaces(prior, candidate)
	if err != nil {
		return 0, err
	}
	if !changed {
		g.log.Debug("place already registered", "id", candidate.ID)
		return Unchanged, nil
	}
	g.places[candidate.ID] = merged
	g.indexNames(candidate.ID, newNames)
	g.log.Info("merged place", "id", candidate.ID, "new_names", strings.Join(newNames, ", "))
	return Merged, nil
}

func (g *Gazetteer) indexNames(id string, names []string) {
	for _, name := range names {
		g.index.Add(name, id)
	}
}

// mergePlaces folds candidate into a copy of prior. It returns the copy, the
// names that are new to prior, and whether anything changed at all.
func mergePlaces(prior, candidate *Place) (*Place, []string, bool, error) {
	merged := prior.Clone()
	changed := false

	newNames := merged.Names.AddAll(candidate.Names.Values()...)
	if len(newNames) > 0 {
		changed = true
	}
	if len(merged.Types.AddAll(candidate.Types.Values()...)) > 0 {
		changed = true
	}

	for _, auth := range slices.Sorted(maps.Keys(candidate.ExternalIDs)) {
		ids := candidate.ExternalIDs[auth]
		have, ok := merged.ExternalIDs[auth]
		if !ok {
			merged.ExternalIDs[auth] = ids.Clone()
			changed = true
			continue
		}
		if extra := have.Missing(ids); len(extra) > 0 {
			return nil, nil, false, &PlaceConflict{
				ID:        prior.ID,
				Field:     "external_ids[" + auth + "]",
				Existing:  have.String(),
				Candidate: ids.String(),
			}
		}
	}

	for _, key := range slices.Sorted(maps.Keys(candidate.Attributes)) {
		ca := candidate.Attributes[key]
		pa, ok := merged.Attributes[key]
		if !ok {
			merged.Attributes[key] = ca.clone()
			changed = true
			continue
		}
		next, grew, err := mergeAttribute(pa, ca)
		if err != nil {
			return nil, nil, false, &PlaceConflict{
				ID:        prior.ID,
				Field:     key,
				Existing:  pa.String(),
				Candidate: ca.String(),
			}
		}
		if grew {
			merged.Attributes[key] = next
			changed = true
		}
	}
	return merged, newNames, changed, nil
}

var errContradiction = errors.New("contradicting values")

// mergeAttribute combines two values of one attribute. Lists accumulate, a
// reference may gain a missing id, everything else must match exactly.
func mergeAttribute(have, cand Attribute) (Attribute, bool, error) {
	if have.Kind != cand.Kind {
		return have, false, errContradiction
	}
	switch have.Kind {
	case List:
		if extra := have.List.Missing(cand.List); len(extra) > 0 {
			have.List.AddAll(extra...)
			return have, true, nil
		}
		return have, false, nil
	case Reference:
		if have.Ref.Name != cand.Ref.Name {
			return have, false, errContradiction
		}
		switch {
		case cand.Ref.ID == "" || cand.Ref.ID == have.Ref.ID:
			return have, false, nil
		case have.Ref.ID == "":
			have.Ref.ID = cand.Ref.ID
			return have, true, nil
		}
		return have, false, errContradiction
	}
	if !have.Equal(cand) {
		return have, false, errContradiction
	}
	return have, false, nil
}

// Resolve finds a place by exact id, then by normalized name. It fails with
// *PlaceNotFound when nothing matches and with *AmbiguousPlaceReference when
// the name belongs to several places. Resolve never modifies the gazetteer.
func (g *Gazetteer) Resolve(term string) (*Place, error) {
	if p, ok := g.places[term]; ok {
		return p, nil
	}
	ids := g.index.Lookup(term)
	switch len(ids) {
	case 0:
		return nil, &PlaceNotFound{Term: term}
	case 1:
		if p, ok := g.places[ids[0]]; ok {
			return p, nil
		}
		g.log.Error("name index points at unknown place", "term", term, "id", ids[0])
		return nil, &PlaceNotFound{Term: term}
	}
	return nil, &AmbiguousPlaceReference{Term: term, IDs: ids}
}

// maxSimilarDistance caps Similar to keep the scan over index keys cheap.
const maxSimilarDistance = 3

// Similar returns ids whose indexed names are within maxDist edits of term,
// closest first. It is a hint for callers handling a failed Resolve; the
// gazetteer itself never picks between candidates.
func (g *Gazetteer) Similar(term string, maxDist int) []string {
	maxDist = min(maxDist, maxSimilarDistance)
	if maxDist <= 0 {
		return nil
	}
	key := NormalizeKey(term)
	best := make(map[string]int)
	g.index.Keys(func(k string, ids []string) bool {
		d := levenshtein.ComputeDistance(key, k)
		if d > maxDist {
			return true
		}
		for _, id := range ids {
			if cur, ok := best[id]; !ok || d < cur {
				best[id] = d
			}
		}
		return true
	})
	out := slices.Collect(maps.Keys(best))
	slices.SortFunc(out, func(a, b string) int {
		if best[a] != best[b] {
			return best[a] - best[b]
		}
		return strings.Compare(a, b)
	})
	return out
}

// Get returns the place registered under id.
func (g *Gazetteer) Get(id string) (*Place, bool) {
	p, ok := g.places[id]
	return p, ok
}

// Len returns the number of places.
func (g *Gazetteer) Len() int {
	return len(g.places)
}

// Places returns all places in registration order.
func (g *Gazetteer) Places() []*Place {
	out := make([]*Place, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.places[id])
	}
	return out
}

// Index exposes the name index for inspection.
func (g *Gazetteer) Index() *NameIndex {
	return g.index
}

// WriteJSON dumps every place, in registration order, as a JSON array.
func (g *Gazetteer) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(g.Places()); err != nil {
		return fmt.Errorf("encoding gazetteer: %w", err)
	}
	return nil
}
