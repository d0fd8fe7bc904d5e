package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andreiashu/gazetteer"
	"github.com/andreiashu/gazetteer/internal/config"
	"github.com/andreiashu/gazetteer/inventory"
	"github.com/andreiashu/gazetteer/lookupcache"
	"github.com/andreiashu/gazetteer/reference"
	"github.com/andreiashu/gazetteer/wikidata"
)

// pipelineOptions are the per-command switches of a conversion.
type pipelineOptions struct {
	limit       int
	interactive bool
	noWikidata  bool
	in          io.Reader
	out         io.Writer
}

// convertFile reads infile and converts it into a new gazetteer.
func convertFile(ctx context.Context, c *config.Config, log *slog.Logger, infile string, po pipelineOptions) (*gazetteer.Gazetteer, inventory.Report, error) {
	var rep inventory.Report

	fh, err := os.Open(infile)
	if err != nil {
		return nil, rep, err
	}
	rows, err := inventory.ReadRows(fh, c.Columns.Columns())
	fh.Close()
	if err != nil {
		return nil, rep, fmt.Errorf("%s: %w", infile, err)
	}
	log.Info("read inventory", "file", infile, "rows", len(rows))

	tables, err := reference.Open(
		reference.WithDataDir(c.Reference.DataDir),
		reference.WithAliases(c.Reference.Aliases),
		reference.WithLogger(log))
	if err != nil {
		return nil, rep, err
	}

	caches, closeCaches, err := openCaches(c.Cache, log)
	if err != nil {
		return nil, rep, err
	}
	defer closeCaches()

	g := gazetteer.New(gazetteer.WithLogger(log))
	opts := []inventory.Option{inventory.WithLogger(log), inventory.WithLimit(po.limit)}
	for level, cache := range caches {
		opts = append(opts, inventory.WithCache(level, cache))
	}
	if s := newSuggester(c.Wikidata, log, po); s != nil {
		opts = append(opts, inventory.WithSuggester(s))
	}

	b := inventory.NewBuilder(tables.Countries, tables.Subdivisions, g, opts...)
	rep, err = inventory.NewConverter(g, b, opts...).Convert(ctx, rows)
	return g, rep, err
}

// cachedLevels are the levels whose suggestions are remembered.
var cachedLevels = []string{"district", "commune", "village"}

func openCaches(c config.CacheConfig, log *slog.Logger) (map[string]inventory.EntityCache, func(), error) {
	caches := make(map[string]inventory.EntityCache, len(cachedLevels))
	jsonPaths := map[string]string{
		"district": c.Districts,
		"commune":  c.Communes,
		"village":  c.Villages,
	}

	if c.Backend != config.BackendBolt {
		for _, level := range cachedLevels {
			f, err := lookupcache.OpenFile[wikidata.Entity](jsonPaths[level])
			if err != nil {
				return nil, nil, err
			}
			log.Info("suggestion cache", "level", level, "path", f.Path(), "entries", f.Len())
			caches[level] = f
		}
		return caches, func() {}, nil
	}

	db, err := lookupcache.OpenDB(c.BoltPath)
	if err != nil {
		return nil, nil, err
	}
	for _, level := range cachedLevels {
		b, err := lookupcache.NewBolt[wikidata.Entity](db, level)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if b.Len() == 0 {
			if err := seedBolt(b, jsonPaths[level], log); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		log.Info("suggestion cache", "level", level, "path", c.BoltPath, "entries", b.Len())
		caches[level] = b
	}
	return caches, func() {
		if err := db.Close(); err != nil {
			log.Error("closing cache", "error", err)
		}
	}, nil
}

// seedBolt imports an existing JSON cache into an empty bucket.
func seedBolt(b *lookupcache.Bolt[wikidata.Entity], path string, log *slog.Logger) error {
	if path == "" {
		return nil
	}
	entries, err := lookupcache.Load[wikidata.Entity](path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	log.Info("importing JSON cache", "path", path, "entries", len(entries))
	return b.Import(entries)
}

func newSuggester(c config.WikidataConfig, log *slog.Logger, po pipelineOptions) inventory.EntitySuggester {
	if po.noWikidata || !c.Enabled {
		return nil
	}
	client := wikidata.NewClient(log,
		wikidata.WithBaseURL(c.Endpoint),
		wikidata.WithLanguage(c.Language),
		wikidata.WithTimeout(c.Timeout),
		wikidata.WithUserAgent(c.UserAgent))
	if po.interactive {
		return wikidata.NewPromptSuggester(client, po.in, po.out, log)
	}
	return wikidata.NewAutoSuggester(client, c.MaxDistance, log)
}

func printReport(w io.Writer, rep inventory.Report, places int) {
	fmt.Fprintf(w, "rows: %d, places: %d (new %d, merged %d, unchanged %d), conflicts: %d, failures: %d\n",
		rep.Rows, places, rep.Registered, rep.Merged, rep.Unchanged, rep.Conflicts, len(rep.Failures))
	for _, f := range rep.Failures {
		var conflict *gazetteer.PlaceConflict
		if errors.As(f.Err, &conflict) {
			fmt.Fprintf(w, "  row %d (%s): %s: %q vs %q\n", f.Row, f.CNumber, conflict.ID, conflict.Existing, conflict.Candidate)
			continue
		}
		fmt.Fprintf(w, "  row %d (%s): %v\n", f.Row, f.CNumber, f.Err)
	}
}
