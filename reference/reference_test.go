package reference

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openEmbedded(t *testing.T) *Tables {
	t.Helper()
	tables, err := Open(WithDataDir(""), WithAliases(map[string]string{"Cambodge": "Cambodia"}))
	require.NoError(t, err)
	return tables
}

func TestFindCountry(t *testing.T) {
	tables := openEmbedded(t)

	tests := []struct {
		name   string
		term   string
		alpha2 string
	}{
		{"alpha-2", "KH", "KH"},
		{"alpha-2 lower case", "kh", "KH"},
		{"alpha-3", "KHM", "KH"},
		{"numeric", "116", "KH"},
		{"name", "Cambodia", "KH"},
		{"official name", "Kingdom of Cambodia", "KH"},
		{"alias", "Cambodge", "KH"},
		{"alias with spacing", "  cambodge ", "KH"},
		{"overlay name", "Viet Nam", "VN"},
		{"geonames name", "Vietnam", "VN"},
		{"common name", "Laos", "LA"},
		{"long name", "Lao People's Democratic Republic", "LA"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := tables.Countries.FindCountry(tc.term)
			require.NoError(t, err)
			assert.Equal(t, tc.alpha2, c.Alpha2)
		})
	}
}

func TestFindCountryMetadata(t *testing.T) {
	tables := openEmbedded(t)

	c, err := tables.Countries.FindCountry("Cambodge")
	require.NoError(t, err)
	assert.Equal(t, "KHM", c.Alpha3)
	assert.Equal(t, "116", c.Numeric)
	assert.Equal(t, "Cambodia", c.Name)
	assert.Equal(t, "Kingdom of Cambodia", c.OfficialName)
	assert.Equal(t, int32(1831722), c.GeonameID)
	assert.Equal(t, []string{"Cambodia", "Kingdom of Cambodia"}, c.Names())
}

func TestFindCountryNotFound(t *testing.T) {
	tables := openEmbedded(t)

	_, err := tables.Countries.FindCountry("Atlantis")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestFindSubdivision(t *testing.T) {
	tables := openEmbedded(t)

	tests := []struct {
		name string
		term string
		code string
	}{
		{"code", "KH-3", "KH-3"},
		{"code lower case", "kh-3", "KH-3"},
		{"iso name", "Kampong Chaam", "KH-3"},
		{"common spelling", "Kampong Cham", "KH-3"},
		{"common spelling odd case", "KAMPONG  cham", "KH-3"},
		{"accented", "Quảng Nam", "VN-27"},
		{"accent free", "Quang Nam", "VN-27"},
		{"alternate", "Huế", "VN-26"},
		{"alternate accent free", "Sai Gon", "VN-SG"},
		{"stroke d", "Da Nang", "VN-DN"},
		{"stroke d upper case", "ĐÀ NẴNG", "VN-DN"},
		{"municipality", "Phnom Penh", "KH-12"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sd, err := tables.Subdivisions.FindSubdivision(tc.term)
			require.NoError(t, err)
			assert.Equal(t, tc.code, sd.Code)
		})
	}
}

func TestFindSubdivisionAmbiguous(t *testing.T) {
	tables := openEmbedded(t)

	_, err := tables.Subdivisions.FindSubdivision("Vientiane")
	require.ErrorIs(t, err, ErrAmbiguous)
	assert.Contains(t, err.Error(), "LA-VI")
	assert.Contains(t, err.Error(), "LA-VT")

	_, err = tables.Subdivisions.FindSubdivision("Narnia")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIsSubdivision(t *testing.T) {
	tables := openEmbedded(t)
	sd := tables.Subdivisions

	assert.True(t, sd.IsSubdivision("KH", "KH-3"))
	assert.True(t, sd.IsSubdivision("kh", "3"))
	assert.False(t, sd.IsSubdivision("VN", "KH-3"))
	assert.False(t, sd.IsSubdivision("KH", "99"))

	assert.Equal(t, "KH", sd.SubdivisionCountry("KH-3"))
	assert.Equal(t, "", sd.SubdivisionCountry("XX-1"))

	kh := sd.Country("KH")
	require.Len(t, kh, 25)
	assert.Equal(t, "KH-1", kh[0].Code)
}

func TestLoadSubdivisionsRejectsForeignCode(t *testing.T) {
	_, err := LoadSubdivisions(strings.NewReader("KH-3\tVN\tprovince\tKampong Chaam\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = LoadSubdivisions(strings.NewReader("KH-3\tKH\n"))
	require.Error(t, err)
}

func TestLoadCountriesSkipsComments(t *testing.T) {
	data := "#ISO\tISO3\n" +
		"KH\tKHM\t116\tCB\tCambodia\tPhnom Penh\t181040\t16249798\tAS\t.kh\tKHR\tRiels\t855\t#####\t^(\\d{5})$\tkm,fr,en\t1831722\tLA,TH,VN\t\n" +
		"short\tline\n"
	countries, err := LoadCountries(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, countries.Len())
	c := countries.All()[0]
	assert.Equal(t, "Phnom Penh", c.Capital)
	assert.Equal(t, "AS", c.Continent)
}

func TestOpenPrefersDataDir(t *testing.T) {
	dir := t.TempDir()
	sub := "KH-3\tKH\tprovince\tKampong Cham Override\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, SubdivisionsFile), []byte(sub), 0644))

	tables, err := Open(WithDataDir(dir))
	require.NoError(t, err)
	assert.Equal(t, 1, tables.Subdivisions.Len())
	sd, err := tables.Subdivisions.FindSubdivision("Kampong Cham Override")
	require.NoError(t, err)
	assert.Equal(t, "KH-3", sd.Code)

	// countryInfo.txt was not overridden.
	assert.Equal(t, 7, tables.Countries.Len())
}

func TestUpdate(t *testing.T) {
	body, err := embedded.ReadFile("data/" + CountryInfoFile)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "ref")
	path, err := Update(context.Background(), dir, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CountryInfoFile), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestUpdateKeepsPreviousOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, CountryInfoFile)
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))

	_, err := Update(context.Background(), dir, srv.URL)
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))
	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.txt")
	err := Download(context.Background(), srv.URL, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
