package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "inv2geo.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INV2GEO_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Columns.Province != "Province  (Tỉnh, Thành Phố)" {
		t.Errorf("Columns.Province = %q", cfg.Columns.Province)
	}
	if cfg.Columns.CNumber != "N° C." {
		t.Errorf("Columns.CNumber = %q", cfg.Columns.CNumber)
	}
	if got := cfg.Reference.Aliases["Cambodge"]; got != "Cambodia" {
		t.Errorf("Aliases[Cambodge] = %q, want Cambodia", got)
	}
	if !cfg.Wikidata.Enabled {
		t.Error("Wikidata.Enabled = false, want true")
	}
	if cfg.Wikidata.MaxDistance != DefaultMaxDistance {
		t.Errorf("Wikidata.MaxDistance = %d, want %d", cfg.Wikidata.MaxDistance, DefaultMaxDistance)
	}
	if cfg.Wikidata.Timeout != 10*time.Second {
		t.Errorf("Wikidata.Timeout = %v, want 10s", cfg.Wikidata.Timeout)
	}
	if cfg.Cache.Backend != BackendJSON {
		t.Errorf("Cache.Backend = %q, want json", cfg.Cache.Backend)
	}
	if cfg.Cache.Villages != "villages.json" {
		t.Errorf("Cache.Villages = %q", cfg.Cache.Villages)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
log:
  level: info
  format: json
columns:
  country: Country
reference:
  data_dir: /srv/reference
  aliases:
    Kampuchea: Cambodia
wikidata:
  enabled: false
cache:
  backend: bolt
  bolt_path: /var/lib/inv2geo/cache.db
`)
	t.Setenv("INV2GEO_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug (env wins over YAML)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Columns.Country != "Country" {
		t.Errorf("Columns.Country = %q, want Country", cfg.Columns.Country)
	}
	if cfg.Columns.Village != "Village  (Thôn)" {
		t.Errorf("Columns.Village = %q, want the default", cfg.Columns.Village)
	}
	if cfg.Reference.DataDir != "/srv/reference" {
		t.Errorf("Reference.DataDir = %q", cfg.Reference.DataDir)
	}
	if got := cfg.Reference.Aliases["Kampuchea"]; got != "Cambodia" {
		t.Errorf("Aliases[Kampuchea] = %q, want Cambodia", got)
	}
	if cfg.Wikidata.Enabled {
		t.Error("Wikidata.Enabled = true, want false")
	}
	if cfg.Cache.Backend != BackendBolt || cfg.Cache.BoltPath != "/var/lib/inv2geo/cache.db" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoad_ZeroValuesSurvive(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantEnabled bool
		wantDist    int
	}{
		{"defaults", "log:\n  level: info\n", nil, true, DefaultMaxDistance},
		{"yaml off", "wikidata:\n  enabled: false\n  max_distance: 0\n", nil, false, 0},
		{"yaml on", "wikidata:\n  enabled: true\n  max_distance: 1\n", nil, true, 1},
		{"env off", "wikidata:\n  enabled: true\n", map[string]string{
			"INV2GEO_WIKIDATA_ENABLED":      "false",
			"INV2GEO_WIKIDATA_MAX_DISTANCE": "0",
		}, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeYAML(t, t.TempDir(), tc.yaml))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Wikidata.Enabled != tc.wantEnabled {
				t.Errorf("Wikidata.Enabled = %v, want %v", cfg.Wikidata.Enabled, tc.wantEnabled)
			}
			if cfg.Wikidata.MaxDistance != tc.wantDist {
				t.Errorf("Wikidata.MaxDistance = %d, want %d", cfg.Wikidata.MaxDistance, tc.wantDist)
			}
		})
	}
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, "columns:\n  cnumber: Inscription\n")
	t.Setenv("INV2GEO_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Columns.CNumber != "Inscription" {
		t.Errorf("Columns.CNumber = %q, want Inscription", cfg.Columns.CNumber)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"backend", "cache:\n  backend: redis\n", "backend"},
		{"level", "log:\n  level: loud\n", "log.level"},
		{"format", "log:\n  format: xml\n", "log.format"},
		{"distance", "wikidata:\n  max_distance: -1\n", "max_distance"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeYAML(t, t.TempDir(), tc.yaml)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestColumns(t *testing.T) {
	c := ColumnsConfig{CNumber: "N° C.", Country: "Pays", Position: ""}
	cols := c.Columns()
	if cols["cnumber"] != "N° C." || cols["country"] != "Pays" {
		t.Errorf("Columns() = %v", cols)
	}
	if label, ok := cols["position"]; !ok || label != "" {
		t.Errorf("position = %q, %v; want empty label present", label, ok)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"NOTSET", slog.LevelWarn},
		{"", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose): expected error")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json"}, &buf)
	log.Debug("hidden")
	log.Info("shown", "place", "KH")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %s", out)
	}
	if !strings.Contains(out, `"place":"KH"`) {
		t.Errorf("missing JSON attribute: %s", out)
	}
}
