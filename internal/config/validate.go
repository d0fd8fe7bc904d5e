package config

import (
	"fmt"
	"strings"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	if c.Columns.Country == "" {
		return fmt.Errorf("columns.country must be set")
	}

	if c.Wikidata.Enabled {
		if c.Wikidata.Endpoint == "" {
			return fmt.Errorf("wikidata.endpoint must be set when wikidata is enabled")
		}
		if c.Wikidata.Timeout <= 0 {
			return fmt.Errorf("wikidata.timeout must be > 0 (got %v)", c.Wikidata.Timeout)
		}
		if c.Wikidata.MaxDistance < 0 {
			return fmt.Errorf("wikidata.max_distance must be >= 0 (got %d)", c.Wikidata.MaxDistance)
		}
	}

	if err := c.Cache.validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func (c *CacheConfig) validate() error {
	switch c.Backend {
	case BackendJSON:
		if c.Districts == "" || c.Communes == "" || c.Villages == "" {
			return fmt.Errorf("districts, communes and villages paths must be set for the json backend")
		}
	case BackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("bolt_path must be set for the bolt backend")
		}
	default:
		return fmt.Errorf("backend must be %s or %s (got %q)", BackendJSON, BackendBolt, c.Backend)
	}
	return nil
}
