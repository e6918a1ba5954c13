package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// LocalStore keeps uploads on the local filesystem and serves them under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Upload(ctx context.Context, key string, body io.ReadSeeker, size int64,
	_ Options) (Result, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return Result{}, fmt.Errorf("invalid media key %q", key)
	}
	dest := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, contextReader{ctx: ctx, r: body})
	if err != nil {
		_ = tmp.Close()
		return Result{}, err
	}
	if err := tmp.Close(); err != nil {
		return Result{}, err
	}
	if size >= 0 && n != size {
		return Result{}, fmt.Errorf("short media write: %d of %d bytes", n, size)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return Result{}, err
	}

	return Result{Key: key, URL: joinURL(s.baseURL, key), Size: n}, nil
}

// Handler serves stored files; mount it under the path of baseURL.
func (s *LocalStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
