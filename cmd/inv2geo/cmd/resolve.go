package cmd

import (
	"errors"
	"fmt"

	"github.com/andreiashu/gazetteer"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	resolveLimit      int
	resolveNoWikidata bool
	resolveDistance   int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <infile> <term>...",
	Short: "Convert an inventory, then look names or ids up in the result",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().IntVar(&resolveLimit, "limit", 0, "stop after this many rows (0 = all)")
	resolveCmd.Flags().BoolVar(&resolveNoWikidata, "no-wikidata", false, "only use the caches, never query Wikidata")
	resolveCmd.Flags().IntVar(&resolveDistance, "similar", 2, "on a miss, list places within this many edits")
}

func runResolve(cmd *cobra.Command, args []string) error {
	g, _, err := convertFile(cmd.Context(), cfg, logger, args[0], pipelineOptions{
		limit:      resolveLimit,
		noWikidata: resolveNoWikidata,
		in:         cmd.InOrStdin(),
		out:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	misses := 0
	for _, term := range args[1:] {
		p, err := g.Resolve(term)
		if err == nil {
			data, err := json.MarshalIndent(p, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", data)
			continue
		}

		misses++
		fmt.Fprintf(out, "%v\n", err)
		var ambiguous *gazetteer.AmbiguousPlaceReference
		if errors.As(err, &ambiguous) {
			continue
		}
		if similar := g.Similar(term, resolveDistance); len(similar) > 0 {
			fmt.Fprintf(out, "  did you mean: %v\n", similar)
		}
	}
	if misses > 0 {
		return fmt.Errorf("%d of %d terms not resolved", misses, len(args)-1)
	}
	return nil
}
