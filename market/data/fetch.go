// Package data downloads historical OHLC files for backtesting.
package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xyproto/unzip"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 45 * time.Second

// Fetch downloads url into outDir and returns the saved path. Zip archives
// are extracted into outDir; the archive itself is removed and the directory
// path is returned instead.
func Fetch(ctx context.Context, client *http.Client, url, outDir string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}

	name := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "download.csv"
	}
	dst := filepath.Join(outDir, name)

	if err := save(dst, resp.Body); err != nil {
		return "", err
	}

	if strings.HasSuffix(dst, ".zip") {
		if err := unzip.Extract(dst, outDir); err != nil {
			return "", fmt.Errorf("extract %s: %w", dst, err)
		}
		os.Remove(dst)
		return outDir, nil
	}

	return dst, nil
}

func save(dst string, r io.Reader) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	return f.Close()
}
