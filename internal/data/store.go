package data

import (
	"context"
	"iter"
)

// Resource is a record addressed by a store-assigned string id. Implementations are value types;
// WithID returns a copy carrying the given id.
type Resource[T any] interface {
	ResourceID() string
	WithID(id string) T
}

// Store is the persistence contract consumed by the gateway. Absence is reported as
// ErrRecordNotFound, every other error is a failure of the store itself.
type Store[T Resource[T]] interface {
	// FindAll returns a lazy sequence that re-queries the store on every range loop.
	// A failure is yielded once as the error element and ends the sequence.
	FindAll(ctx context.Context) iter.Seq2[T, error]
	FindByID(ctx context.Context, id string) (T, error)
	// Save assigns a new id and returns the stored record.
	Save(ctx context.Context, resource T) (T, error)
	// Update replaces the stored record that has the same id.
	Update(ctx context.Context, resource T) (T, error)
	Delete(ctx context.Context, id string) error
	// GetPage returns ErrRecordNotFound when the requested page holds no items.
	GetPage(ctx context.Context, filters Filters) (Page[T], error)
}
