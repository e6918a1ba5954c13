package data

import (
	"context"
	"iter"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a Store kept in process memory. Records are stored by value and iterate in
// insertion order.
type MemoryStore[T Resource[T]] struct {
	mu    sync.RWMutex
	order []string
	items map[string]T
	newID func() string
}

func NewMemoryStore[T Resource[T]]() *MemoryStore[T] {
	return &MemoryStore[T]{
		items: make(map[string]T),
		newID: uuid.NewString,
	}
}

func (s *MemoryStore[T]) snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *MemoryStore[T]) FindAll(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, r := range s.snapshot() {
			if err := ctx.Err(); err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (s *MemoryStore[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return zero, ErrRecordNotFound
	}
	return r, nil
}

func (s *MemoryStore[T]) Save(ctx context.Context, resource T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := resource.WithID(s.newID())
	s.items[stored.ResourceID()] = stored
	s.order = append(s.order, stored.ResourceID())
	return stored, nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, resource T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := resource.ResourceID()
	if _, ok := s.items[id]; !ok {
		return zero, ErrRecordNotFound
	}
	s.items[id] = resource
	return resource, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore[T]) GetPage(ctx context.Context, filters Filters) (Page[T], error) {
	if err := ctx.Err(); err != nil {
		return Page[T]{}, err
	}

	all := s.snapshot()

	if filters.PageSize <= 0 || filters.Page < 0 {
		return Page[T]{}, ErrRecordNotFound
	}

	start := filters.offset()
	if start >= len(all) {
		return Page[T]{}, ErrRecordNotFound
	}
	end := start + min(filters.limit(), len(all)-start)

	return newPage(all[start:end], len(all), filters), nil
}
