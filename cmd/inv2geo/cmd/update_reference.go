package cmd

import (
	"fmt"

	"github.com/andreiashu/gazetteer/reference"
	"github.com/spf13/cobra"
)

var updateReferenceCmd = &cobra.Command{
	Use:   "update-reference",
	Short: "Download the GeoNames country table into the reference data directory",
	Long: "Fetches countryInfo.txt from GeoNames and installs it in reference.data_dir, where it\n" +
		"takes precedence over the built-in copy. The previous file is kept if the download fails.",
	Args: cobra.NoArgs,
	RunE: runUpdateReference,
}

func runUpdateReference(cmd *cobra.Command, args []string) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Downloading %s...\n", cfg.Reference.CountryInfoURL)

	path, err := reference.Update(cmd.Context(), cfg.Reference.DataDir, cfg.Reference.CountryInfoURL)
	if err != nil {
		return err
	}

	tables, err := reference.Open(reference.WithDataDir(cfg.Reference.DataDir), reference.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d countries).\n", path, tables.Countries.Len())
	return nil
}
