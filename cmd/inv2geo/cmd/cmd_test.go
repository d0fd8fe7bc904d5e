package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryCSV = `N° C.,Pays,"Province  (Tỉnh, Thành Phố)",District (Huyện ou Thì xã),Commune  (Xã),Village  (Thôn),Position
K. 1,Cambodge,Kampong Cham,Kampong Siem,Kampong Siem,Phum Thmei,
K. 2,Cambodge,Kampong Cham,Kampong Siem,,,
`

func resetFlags() {
	configPath, logLevel = "", ""
	verbose, veryVerbose = false, false
	districts, communes, villages = "", "", ""
	convertOut, convertLimit = "", 0
	convertInteractive, convertNoWikidata = false, false
	resolveLimit, resolveNoWikidata, resolveDistance = 0, false, 2
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("INV2GEO_REFERENCE_DIR", filepath.Join(t.TempDir(), "none"))
	t.Setenv("INV2GEO_WIKIDATA_ENABLED", "false")

	dir := t.TempDir()
	args = append(args,
		"--districts", filepath.Join(dir, "districts.json"),
		"--communes", filepath.Join(dir, "communes.json"),
		"--villages", filepath.Join(dir, "villages.json"))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeInventory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inventory.csv")
	require.NoError(t, os.WriteFile(path, []byte(inventoryCSV), 0644))
	return path
}

func TestConvertWritesGazetteer(t *testing.T) {
	in := writeInventory(t)
	out := filepath.Join(t.TempDir(), "gazetteer.json")

	_, stderr, err := run(t, "convert", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "rows: 2")
	assert.Contains(t, stderr, "wrote "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var places []struct {
		ID    string   `json:"id"`
		Names []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal(data, &places))

	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, "KH")
	assert.Contains(t, ids, "KH-3")
	assert.Contains(t, ids, "phum-thmei")
}

func TestConvertToStdout(t *testing.T) {
	stdout, _, err := run(t, "convert", writeInventory(t), "--limit", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(stdout), "["))
	assert.Contains(t, stdout, `"KH"`)
}

func TestConvertMissingFile(t *testing.T) {
	_, _, err := run(t, "convert", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	stdout, _, err := run(t, "resolve", writeInventory(t), "Cambodia", "kampong-cham")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"KH"`)
	assert.Contains(t, stdout, `"KH-3"`)
}

func TestResolveMissSuggestsSimilar(t *testing.T) {
	stdout, _, err := run(t, "resolve", writeInventory(t), "Cambodja")
	require.Error(t, err)
	assert.Contains(t, stdout, "did you mean")
	assert.Contains(t, stdout, "KH")
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := run(t, "--loglevel", "loud", "convert", writeInventory(t))
	assert.Error(t, err)
}
