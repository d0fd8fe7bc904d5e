// Package config loads inv2geo settings from YAML and the environment.
package config

import (
	"time"

	"github.com/andreiashu/gazetteer/inventory"
)

// Config is the root configuration of inv2geo.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Columns   ColumnsConfig   `yaml:"columns"`
	Reference ReferenceConfig `yaml:"reference"`
	Wikidata  WikidataConfig  `yaml:"wikidata"`
	Cache     CacheConfig     `yaml:"cache"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"INV2GEO_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"INV2GEO_LOG_FORMAT" env-default:"text"`
}

// ColumnsConfig holds the CSV header label of each row key.
type ColumnsConfig struct {
	CNumber  string `yaml:"cnumber"  env:"INV2GEO_COLUMN_CNUMBER"  env-default:"N° C."`
	Country  string `yaml:"country"  env:"INV2GEO_COLUMN_COUNTRY"  env-default:"Pays"`
	Province string `yaml:"province" env:"INV2GEO_COLUMN_PROVINCE" env-default:"Province  (Tỉnh, Thành Phố)"`
	District string `yaml:"district" env:"INV2GEO_COLUMN_DISTRICT" env-default:"District (Huyện ou Thì xã)"`
	Commune  string `yaml:"commune"  env:"INV2GEO_COLUMN_COMMUNE"  env-default:"Commune  (Xã)"`
	Village  string `yaml:"village"  env:"INV2GEO_COLUMN_VILLAGE"  env-default:"Village  (Thôn)"`
	Position string `yaml:"position" env:"INV2GEO_COLUMN_POSITION" env-default:"Position"`
}

// Columns returns the labels in the form inventory.ReadRows takes.
func (c ColumnsConfig) Columns() inventory.Columns {
	return inventory.Columns{
		inventory.CNumber: c.CNumber,
		"country":         c.Country,
		"province":        c.Province,
		"district":        c.District,
		"commune":         c.Commune,
		"village":         c.Village,
		"position":        c.Position,
	}
}

// ReferenceConfig holds the country and subdivision tables settings.
type ReferenceConfig struct {
	DataDir        string            `yaml:"data_dir"         env:"INV2GEO_REFERENCE_DIR"         env-default:"./reference-data"`
	CountryInfoURL string            `yaml:"country_info_url" env:"INV2GEO_COUNTRY_INFO_URL"      env-default:"https://download.geonames.org/export/dump/countryInfo.txt"`
	Aliases        map[string]string `yaml:"aliases"          env:"INV2GEO_COUNTRY_ALIASES"       env-default:"Cambodge:Cambodia,Chine:China,Thaïlande:Thailand,Birmanie:Myanmar"`
}

// WikidataConfig holds suggestion lookup settings. Enabled and MaxDistance are
// defaulted in Load.
type WikidataConfig struct {
	Enabled     bool          `yaml:"enabled"      env:"INV2GEO_WIKIDATA_ENABLED"`
	Endpoint    string        `yaml:"endpoint"     env:"INV2GEO_WIKIDATA_ENDPOINT"     env-default:"https://www.wikidata.org/w/api.php"`
	Language    string        `yaml:"language"     env:"INV2GEO_WIKIDATA_LANGUAGE"     env-default:"en"`
	Timeout     time.Duration `yaml:"timeout"      env:"INV2GEO_WIKIDATA_TIMEOUT"      env-default:"10s"`
	MaxDistance int           `yaml:"max_distance" env:"INV2GEO_WIKIDATA_MAX_DISTANCE"`
	UserAgent   string        `yaml:"user_agent"   env:"INV2GEO_WIKIDATA_USER_AGENT"   env-default:"inv2geo/1.0 (https://github.com/andreiashu/gazetteer)"`
}

// CacheConfig holds where accepted suggestions are kept.
type CacheConfig struct {
	Backend   string `yaml:"backend"   env:"INV2GEO_CACHE_BACKEND"   env-default:"json"`
	Districts string `yaml:"districts" env:"INV2GEO_CACHE_DISTRICTS" env-default:"districts.json"`
	Communes  string `yaml:"communes"  env:"INV2GEO_CACHE_COMMUNES"  env-default:"communes.json"`
	Villages  string `yaml:"villages"  env:"INV2GEO_CACHE_VILLAGES"  env-default:"villages.json"`
	BoltPath  string `yaml:"bolt_path" env:"INV2GEO_CACHE_BOLT"      env-default:"inv2geo.db"`
}

// Cache backends.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)
