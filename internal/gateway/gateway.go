// Package gateway composes store lookups, link resolution and media uploads into the single
// outcome of each resource operation: a value, absence (data.ErrRecordNotFound) or a failure.
package gateway

import (
	"DiningApi/internal/async"
	"DiningApi/internal/data"
	"DiningApi/internal/events"
	"DiningApi/internal/jsonlog"
	"DiningApi/internal/media"
	"context"
	"errors"
	"iter"
)

var (
	ErrUploadFailed      = errors.New("media upload failed")
	ErrUploadUnsupported = errors.New("resource does not accept media uploads")
)

type Config[T data.Resource[T]] struct {
	// Kind names the resource collection, e.g. "customers". It is the media folder and the
	// event kind.
	Kind  string
	Store data.Store[T]
	Links LinkResolver
	// Merge computes the full replacement applied by Update.
	Merge func(existing, incoming T) T

	// Media and SetMedia are both required for UploadAndUpdate.
	Media    *media.Offloader
	SetMedia func(existing T, url string) T
	TempDir  string

	Events events.Publisher
	Logger *jsonlog.Logger
}

type Gateway[T data.Resource[T]] struct {
	kind     string
	store    data.Store[T]
	links    LinkResolver
	merge    func(existing, incoming T) T
	media    *media.Offloader
	setMedia func(existing T, url string) T
	tempDir  string
	events   events.Publisher
	logger   *jsonlog.Logger
}

func New[T data.Resource[T]](cfg Config[T]) *Gateway[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = jsonlog.Discard()
	}

	return &Gateway[T]{
		kind:     cfg.Kind,
		store:    cfg.Store,
		links:    cfg.Links,
		merge:    cfg.Merge,
		media:    cfg.Media,
		setMedia: cfg.SetMedia,
		tempDir:  cfg.TempDir,
		events:   cfg.Events,
		logger:   logger,
	}
}

func (g *Gateway[T]) Kind() string {
	return g.kind
}

// AcceptsMedia reports whether UploadAndUpdate is available.
func (g *Gateway[T]) AcceptsMedia() bool {
	return g.media != nil && g.setMedia != nil
}

func (g *Gateway[T]) FindAll(ctx context.Context) iter.Seq2[T, error] {
	return g.store.FindAll(ctx)
}

func (g *Gateway[T]) FindByID(ctx context.Context, id string) (T, error) {
	return g.store.FindByID(ctx, id)
}

func (g *Gateway[T]) find(id string) async.Task[T] {
	return func(ctx context.Context) (T, error) {
		return g.store.FindByID(ctx, id)
	}
}

func (g *Gateway[T]) Save(ctx context.Context, partial T) (T, error) {
	saved, err := g.store.Save(ctx, partial)
	if err != nil {
		return saved, err
	}

	g.notify(ctx, events.ActionCreated, saved.ResourceID(), saved)
	return saved, nil
}

// Update joins the lookup of id with the incoming payload and writes the merged record once.
// The id of the result is always the path id, whatever incoming carries.
func (g *Gateway[T]) Update(ctx context.Context, id string, incoming T) (T, error) {
	merged, err := async.ZipWith(ctx, g.find(id), async.Just(incoming), g.merge)
	if err != nil {
		return merged, err
	}

	updated, err := g.store.Update(ctx, merged)
	if err != nil {
		return updated, err
	}

	g.notify(ctx, events.ActionUpdated, id, updated)
	return updated, nil
}

// Delete removes id only after it was found, issuing at most one delete to the store.
func (g *Gateway[T]) Delete(ctx context.Context, id string) error {
	existing, err := g.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := g.store.Delete(ctx, existing.ResourceID()); err != nil {
		return err
	}

	g.notify(ctx, events.ActionDeleted, id, nil)
	return nil
}

func (g *Gateway[T]) GetPage(ctx context.Context, filters data.Filters) (data.Page[T], error) {
	return g.store.GetPage(ctx, filters)
}

// GetHateoasByID resolves the self and collection links as one branch and joins them with the
// lookup of id. An absent resource yields data.ErrRecordNotFound.
func (g *Gateway[T]) GetHateoasByID(ctx context.Context, baseURL, id string) (LinkedResource[T], error) {
	links := async.Defer(g.links.Self(baseURL, id), g.links.Collection(baseURL),
		func(self, collection Link) []Link {
			return []Link{self, collection}
		})

	return async.ZipWith(ctx, links, g.find(id), func(links []Link, resource T) LinkedResource[T] {
		return LinkedResource[T]{Resource: resource, Links: links}
	})
}

// notify publishes a change event. Publishing never alters the outcome of the operation.
func (g *Gateway[T]) notify(ctx context.Context, action events.Action, id string, resource any) {
	if g.events == nil {
		return
	}

	err := g.events.Publish(context.WithoutCancel(ctx), events.New(g.kind, action, id, resource))
	if err != nil {
		g.logger.PrintError(err, map[string]string{
			"kind":   g.kind,
			"action": string(action),
			"id":     id,
		})
	}
}
