package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8008/media/")
	require.NoError(t, err)

	res, err := store.Upload(context.Background(), "customers/abc.txt", strings.NewReader("hello"), 5, Options{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8008/media/customers/abc.txt", res.URL)
	assert.Equal(t, int64(5), res.Size)

	b, err := os.ReadFile(filepath.Join(dir, "customers", "abc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	entries, err := os.ReadDir(filepath.Join(dir, "customers"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "../outside.txt", strings.NewReader("x"), 1, Options{})
	assert.Error(t, err)
}

func TestLocalStoreShortWrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "customers/short.txt", strings.NewReader("abc"), 10, Options{})
	assert.ErrorContains(t, err, "short media write")
}

func TestLocalStoreHandler(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost/media")
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), "dishes/menu.txt", strings.NewReader("menu"), 4, Options{})
	require.NoError(t, err)

	srv := httptest.NewServer(http.StripPrefix("/media", store.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/media/dishes/menu.txt")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "menu", string(body))
}
