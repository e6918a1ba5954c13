// Package media stores uploaded files in an object store and reports their public URL.
package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/semaphore"
)

var ErrNotSeekable = errors.New("media body must be seekable")

type Options struct {
	ContentType string
}

type Result struct {
	Key  string
	URL  string
	Size int64
}

// Uploader writes body under key and returns where it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, size int64, opts Options) (Result, error)
}

// File is a spooled upload ready to be sent to an Uploader.
type File struct {
	Name string
	Body io.ReadSeeker
	Size int64
}

// Offloader bounds the number of uploads in flight. Callers beyond the limit wait for a free
// slot or for their context to end.
type Offloader struct {
	uploader Uploader
	sem      *semaphore.Weighted
}

func NewOffloader(uploader Uploader, workers int) *Offloader {
	if workers < 1 {
		workers = 1
	}
	return &Offloader{
		uploader: uploader,
		sem:      semaphore.NewWeighted(int64(workers)),
	}
}

// Upload stores f under folder with a content addressed key.
func (o *Offloader) Upload(ctx context.Context, folder string, f File) (Result, error) {
	key, contentType, err := ObjectKey(folder, f)
	if err != nil {
		return Result{}, err
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer o.sem.Release(1)

	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return Result{}, err
	}

	return o.uploader.Upload(ctx, key, f.Body, f.Size, Options{ContentType: contentType})
}

// ObjectKey hashes the content of f with BLAKE2b-256 and returns "<folder>/<hash><ext>" along with
// the sniffed content type. The body is rewound afterwards.
func ObjectKey(folder string, f File) (key, contentType string, err error) {
	if f.Body == nil {
		return "", "", ErrNotSeekable
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrNotSeekable, err)
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", "", err
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(f.Body, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", err
	}
	h.Write(sniff[:n])
	if _, err := io.Copy(h, f.Body); err != nil {
		return "", "", err
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	contentType = mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = http.DetectContentType(sniff[:n])
	}
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	return path.Join(folder, hex.EncodeToString(h.Sum(nil))+ext), contentType, nil
}

func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
