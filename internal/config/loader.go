package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is read when neither --config nor INV2GEO_CONFIG is set.
const DefaultPath = "./inv2geo.yaml"

// DefaultMaxDistance is the edit distance allowed for automatic suggestions.
const DefaultMaxDistance = 2

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (env-default tags, plus defaults() for
// fields whose zero value is meaningful).
// The file is path, else INV2GEO_CONFIG, else DefaultPath. A missing file is
// an error only when it was named explicitly; otherwise configuration comes
// from ENV + defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv("INV2GEO_CONFIG")
		explicitPath = path != ""
	}
	if !explicitPath {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// defaults seeds fields whose zero value is a valid setting. cleanenv applies
// env-default to any zero field, so "enabled: false" or "max_distance: 0"
// would not survive a tag default.
func defaults() Config {
	return Config{
		Wikidata: WikidataConfig{
			Enabled:     true,
			MaxDistance: DefaultMaxDistance,
		},
	}
}
