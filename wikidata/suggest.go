package wikidata

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/andreiashu/gazetteer"
)

// Source is what the suggesters need from a Client.
type Source interface {
	Search(ctx context.Context, name string) ([]Entity, error)
	Coordinates(ctx context.Context, id string) (*gazetteer.Coordinates, error)
}

// DefaultMaxDistance is the edit distance AutoSuggester accepts by default.
const DefaultMaxDistance = 2

// AutoSuggester accepts the first search hit whose label or alias is within
// MaxDistance edits of the queried name, comparing normalized keys.
type AutoSuggester struct {
	src         Source
	maxDistance int
	log         *slog.Logger
}

// NewAutoSuggester returns an AutoSuggester. A negative maxDistance selects
// DefaultMaxDistance.
func NewAutoSuggester(src Source, maxDistance int, logger *slog.Logger) *AutoSuggester {
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}
	return &AutoSuggester{
		src:         src,
		maxDistance: maxDistance,
		log:         logger.With("component", "wikidata-auto"),
	}
}

// Suggest returns the accepted entity, with coordinates when Wikidata has
// them, or nil when no hit is close enough.
func (s *AutoSuggester) Suggest(ctx context.Context, name string) (*Entity, error) {
	hits, err := s.src.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	key := gazetteer.NormalizeKey(name)
	for _, h := range hits {
		d, ok := closest(key, h.Names())
		if !ok || d > s.maxDistance {
			continue
		}
		s.log.DebugContext(ctx, "accepted suggestion", "name", name, "id", h.ID, "distance", d)
		return withCoordinates(ctx, s.src, h, s.log)
	}
	s.log.DebugContext(ctx, "no close suggestion", "name", name, "hits", len(hits))
	return nil, nil
}

func closest(key string, names []string) (int, bool) {
	best, found := 0, false
	for _, n := range names {
		d := levenshtein.ComputeDistance(key, gazetteer.NormalizeKey(n))
		if !found || d < best {
			best, found = d, true
		}
	}
	return best, found
}

// withCoordinates adds the coordinate location to e. A failed coordinate
// lookup keeps the entity without coordinates.
func withCoordinates(ctx context.Context, src Source, e Entity, log *slog.Logger) (*Entity, error) {
	coords, err := src.Coordinates(ctx, e.ID)
	if err != nil {
		log.WarnContext(ctx, "coordinates lookup failed", "id", e.ID, "error", err)
	}
	e.Coordinates = coords
	return &e, nil
}

// PromptSuggester lists the search hits and lets the operator choose one.
type PromptSuggester struct {
	src Source
	in  *bufio.Reader
	out io.Writer
	log *slog.Logger
}

// NewPromptSuggester reads choices from in and writes the menu to out.
func NewPromptSuggester(src Source, in io.Reader, out io.Writer, logger *slog.Logger) *PromptSuggester {
	return &PromptSuggester{
		src: src,
		in:  bufio.NewReader(in),
		out: out,
		log: logger.With("component", "wikidata-prompt"),
	}
}

// Suggest asks which hit matches name. A blank answer, or end of input,
// means none.
func (s *PromptSuggester) Suggest(ctx context.Context, name string) (*Entity, error) {
	hits, err := s.src.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		fmt.Fprintf(s.out, "No Wikidata match for %q\n", name)
		return nil, nil
	}

	fmt.Fprintf(s.out, "Wikidata candidates for %q:\n", name)
	for i, h := range hits {
		fmt.Fprintf(s.out, "  %d. %s (%s)", i+1, h.Label, h.ID)
		if h.Description != "" {
			fmt.Fprintf(s.out, ": %s", h.Description)
		}
		fmt.Fprintln(s.out)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(s.out, "Choose 1-%d, or press enter for none: ", len(hits))
		line, err := s.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("reading choice: %w", err)
			}
			return nil, nil
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(hits) {
			s.log.DebugContext(ctx, "operator chose suggestion", "name", name, "id", hits[n-1].ID)
			return withCoordinates(ctx, s.src, hits[n-1], s.log)
		}
		if err != nil {
			return nil, nil
		}
		fmt.Fprintf(s.out, "%q is not a choice\n", answer)
	}
}
