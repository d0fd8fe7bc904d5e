package cmd

import (
	"context"
	"log/slog"

	"github.com/andreiashu/gazetteer/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	logLevel    string
	verbose     bool
	veryVerbose bool
	districts   string
	communes    string
	villages    string
)

// Set by PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inv2geo",
	Short: "Convert the inscription inventory to a gazetteer",
	Long: "Reads the inventory CSV, looks every country, province, district, commune and village\n" +
		"up in the ISO 3166 tables or on Wikidata, and writes the resulting places as JSON.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file (default $INV2GEO_CONFIG or ./inv2geo.yaml)")
	pf.StringVarP(&logLevel, "loglevel", "l", "", "logging level: debug, info, warning or error")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (logging level info)")
	pf.BoolVarP(&veryVerbose, "veryverbose", "w", false, "very verbose output (logging level debug)")
	pf.StringVarP(&districts, "districts", "d", "", "districts suggestion cache (JSON)")
	pf.StringVarP(&communes, "communes", "c", "", "communes suggestion cache (JSON)")
	pf.StringVarP(&villages, "villages", "t", "", "villages suggestion cache (JSON)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(updateReferenceCmd)
}

// setup loads the configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}

	switch {
	case veryVerbose:
		c.Log.Level = "debug"
	case verbose:
		c.Log.Level = "info"
	case logLevel != "":
		if _, err := config.ParseLevel(logLevel); err != nil {
			return err
		}
		c.Log.Level = logLevel
	}
	if districts != "" {
		c.Cache.Districts = districts
	}
	if communes != "" {
		c.Cache.Communes = communes
	}
	if villages != "" {
		c.Cache.Villages = villages
	}

	cfg = c
	logger = config.NewLogger(c.Log, cmd.ErrOrStderr())
	logger.Debug("configuration loaded",
		"reference_dir", c.Reference.DataDir,
		"cache_backend", c.Cache.Backend,
		"wikidata", c.Wikidata.Enabled)
	return nil
}
