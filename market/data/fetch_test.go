package data

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("date,open,high,low,close\n2024-01-01,99,101,98,100\n"))
	}))
	defer srv.Close()

	out := t.TempDir()
	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/gm.csv", out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "gm.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "2024-01-01")
}

func TestFetchQueryURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	out := t.TempDir()
	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/daily.csv?s=gm.us&i=d", out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "daily.csv"), path, "query string is not part of the file name")
}

func TestFetchZip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("gm.csv")
	require.NoError(t, err)
	_, err = f.Write([]byte("date,open,high,low,close\n2024-01-01,99,101,98,100\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	out := t.TempDir()
	path, err := Fetch(context.Background(), srv.Client(), srv.URL+"/bundle.zip", out)
	require.NoError(t, err)
	assert.Equal(t, out, path, "zip fetch returns the extraction directory")

	assert.NoFileExists(t, filepath.Join(out, "bundle.zip"), "archive is removed after extraction")
	assert.FileExists(t, filepath.Join(out, "gm.csv"))
}

func TestFetchHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL+"/gm.csv", t.TempDir())
	assert.Error(t, err)
}
