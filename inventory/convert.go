package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/andreiashu/gazetteer"
)

// RowFailure is one problem met while converting a row.
type RowFailure struct {
	Row     int // 1-based data row number
	CNumber string
	Err     error
}

// Report summarizes a conversion.
type Report struct {
	Rows       int // rows processed
	Places     int // places built, placeholders included
	Registered int // new ids
	Merged     int
	Unchanged  int
	Conflicts  int
	Failures   []RowFailure
}

// Converter feeds rows through a Builder into a Gazetteer.
type Converter struct {
	g     *gazetteer.Gazetteer
	b     *Builder
	limit int
	log   *slog.Logger
}

// NewConverter returns a Converter registering into g. Only WithLogger and
// WithLimit apply.
func NewConverter(g *gazetteer.Gazetteer, b *Builder, opts ...Option) *Converter {
	o := buildOptions(opts)
	return &Converter{
		g:     g,
		b:     b,
		limit: o.limit,
		log:   o.logger.With("component", "converter"),
	}
}

// Convert builds and registers the places of every row, in order, so that
// each row's places can refer to those registered before them. Row problems
// are logged and collected in the report; only cancellation of ctx stops the
// run early, in which case the partial report is returned with ctx's error.
func (c *Converter) Convert(ctx context.Context, rows []Row) (Report, error) {
	var rep Report
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if c.limit > 0 && i >= c.limit {
			c.log.InfoContext(ctx, "row limit reached", "limit", c.limit)
			break
		}
		n := i + 1
		rep.Rows++

		places, errs := c.b.ParseRow(ctx, row)
		for _, err := range errs {
			c.fail(ctx, &rep, n, row, err)
		}
		rep.Places += len(places)

		for _, p := range places {
			res, err := c.g.Register(p)
			if err != nil {
				if errors.Is(err, gazetteer.ErrPlaceConflict) {
					rep.Conflicts++
				}
				c.fail(ctx, &rep, n, row, err)
				continue
			}
			switch res {
			case gazetteer.Added:
				rep.Registered++
			case gazetteer.Merged:
				rep.Merged++
			case gazetteer.Unchanged:
				rep.Unchanged++
			}
		}
	}
	c.log.InfoContext(ctx, "conversion done",
		"rows", rep.Rows,
		"places", c.g.Len(),
		"conflicts", rep.Conflicts,
		"failures", len(rep.Failures))
	return rep, nil
}

func (c *Converter) fail(ctx context.Context, rep *Report, n int, row Row, err error) {
	rep.Failures = append(rep.Failures, RowFailure{Row: n, CNumber: row[CNumber], Err: err})
	c.log.ErrorContext(ctx, "row failed", "row", n, "cnumber", row[CNumber], "error", err)
}
