package gateway

import (
	"DiningApi/internal/async"
	"DiningApi/internal/events"
	"DiningApi/internal/media"
	"context"
	"fmt"
	"io"
	"os"
)

// Strategy orders the lookup of the target resource against the transfer of the upload body.
type Strategy int

const (
	// TransferWithLookup spools the body while the resource is looked up.
	TransferWithLookup Strategy = iota + 1
	// LookupThenTransfer reads the body only once the resource is known to exist.
	LookupThenTransfer
)

func (s Strategy) String() string {
	switch s {
	case TransferWithLookup:
		return "transfer-with-lookup"
	case LookupThenTransfer:
		return "lookup-then-transfer"
	default:
		return "unknown"
	}
}

type Upload struct {
	Filename string
	Body     io.Reader
}

// UploadAndUpdate stores the uploaded file and writes its URL back to resource id. Nothing is
// uploaded or written when id is absent. The spooled copy of the body is always removed.
func (g *Gateway[T]) UploadAndUpdate(ctx context.Context, id string, up Upload, strategy Strategy) (T, error) {
	var zero T
	if !g.AcceptsMedia() {
		return zero, ErrUploadUnsupported
	}

	var (
		existing T
		file     media.File
		tmp      *os.File
		err      error
	)

	switch strategy {
	case TransferWithLookup:
		tmp, err = g.createTemp()
		if err != nil {
			return zero, err
		}
		defer removeTemp(tmp)

		joined, err := async.Zip(ctx, g.spool(tmp, up), g.find(id))
		if err != nil {
			return zero, err
		}
		file, existing = joined.First, joined.Second

	case LookupThenTransfer:
		existing, err = g.store.FindByID(ctx, id)
		if err != nil {
			return zero, err
		}

		tmp, err = g.createTemp()
		if err != nil {
			return zero, err
		}
		defer removeTemp(tmp)

		file, err = g.spool(tmp, up)(ctx)
		if err != nil {
			return zero, err
		}

	default:
		return zero, fmt.Errorf("unknown upload strategy %d", strategy)
	}

	result, err := g.media.Upload(ctx, g.kind, file)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	updated, err := g.store.Update(ctx, g.setMedia(existing, result.URL))
	if err != nil {
		return zero, err
	}

	g.notify(ctx, events.ActionUpdated, id, updated)
	return updated, nil
}

func (g *Gateway[T]) createTemp() (*os.File, error) {
	return os.CreateTemp(g.tempDir, g.kind+"-upload-*")
}

func removeTemp(f *os.File) {
	_ = f.Close()
	_ = os.Remove(f.Name())
}

// spool copies the upload body into tmp, stopping early if ctx ends.
func (g *Gateway[T]) spool(tmp *os.File, up Upload) async.Task[media.File] {
	return func(ctx context.Context) (media.File, error) {
		n, err := io.Copy(tmp, contextReader{ctx: ctx, r: up.Body})
		if err != nil {
			return media.File{}, fmt.Errorf("spool upload: %w", err)
		}

		return media.File{Name: up.Filename, Body: tmp, Size: n}, nil
	}
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	if c.r == nil {
		return 0, io.EOF
	}
	return c.r.Read(p)
}
