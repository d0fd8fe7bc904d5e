package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	convertOut         string
	convertLimit       int
	convertInteractive bool
	convertNoWikidata  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <infile>",
	Short: "Convert an inventory CSV into gazetteer JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "write the gazetteer here instead of stdout")
	convertCmd.Flags().IntVar(&convertLimit, "limit", 0, "stop after this many rows (0 = all)")
	convertCmd.Flags().BoolVar(&convertInteractive, "interactive", false, "choose Wikidata suggestions by hand")
	convertCmd.Flags().BoolVar(&convertNoWikidata, "no-wikidata", false, "only use the caches, never query Wikidata")
}

func runConvert(cmd *cobra.Command, args []string) error {
	g, rep, err := convertFile(cmd.Context(), cfg, logger, args[0], pipelineOptions{
		limit:       convertLimit,
		interactive: convertInteractive,
		noWikidata:  convertNoWikidata,
		in:          cmd.InOrStdin(),
		out:         cmd.ErrOrStderr(),
	})
	if g == nil {
		return err
	}
	if err != nil {
		logger.Warn("conversion interrupted; writing partial gazetteer", "error", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if convertOut != "" {
		fh, ferr := os.Create(convertOut)
		if ferr != nil {
			return ferr
		}
		defer fh.Close()
		w = fh
	}
	if werr := g.WriteJSON(w); werr != nil {
		return werr
	}

	printReport(cmd.ErrOrStderr(), rep, g.Len())
	if convertOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", convertOut)
	}
	return err
}
