package reference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// httpClient is shared by downloads; requests also carry the caller's context.
var httpClient = &http.Client{
	Timeout: 60 * time.Second,
}

// Update downloads the GeoNames country table into dir, replacing any
// previous copy only once the new file is complete.
func Update(ctx context.Context, dir, url string) (string, error) {
	if url == "" {
		url = CountryInfoURL
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dir, CountryInfoFile)
	tmp := path + ".part"
	if err := Download(ctx, url, tmp); err != nil {
		return "", err
	}

	// A truncated file or an HTML error page must not replace a good table.
	fh, err := os.Open(tmp)
	if err != nil {
		return "", err
	}
	countries, err := LoadCountries(fh)
	fh.Close()
	if err == nil && countries.Len() == 0 {
		err = fmt.Errorf("no countries in %s", url)
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("validating download: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("installing %s: %w", path, err)
	}
	return path, nil
}

// Download fetches url into path. A partial file is removed on error.
func Download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(path)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	// Close explicitly so flush errors are not lost.
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	success = true
	return nil
}
