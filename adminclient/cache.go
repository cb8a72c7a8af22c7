package adminclient

import (
	"context"
	"sync"

	"portfolio-api/domain"
)

// ListCache is the optimistic snapshot cache: one list snapshot per scope key.
// Commits overwrite the snapshot before the network call goes out, so the UI
// renders the new order immediately.
type ListCache[T any] struct {
	mu        sync.Mutex
	snapshots map[string][]T
}

func NewListCache[T any]() *ListCache[T] {
	return &ListCache[T]{snapshots: make(map[string][]T)}
}

func (c *ListCache[T]) Get(scope string) ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.snapshots[scope]
	if !ok {
		return nil, false
	}
	out := make([]T, len(items))
	copy(out, items)
	return out, true
}

// GetOrFetch returns the cached snapshot, fetching and caching it on a miss.
func (c *ListCache[T]) GetOrFetch(ctx context.Context, scope string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if items, ok := c.Get(scope); ok {
		return items, nil
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.Put(scope, items)
	return items, nil
}

func (c *ListCache[T]) Put(scope string, items []T) {
	snapshot := make([]T, len(items))
	copy(snapshot, items)
	c.mu.Lock()
	c.snapshots[scope] = snapshot
	c.mu.Unlock()
}

func (c *ListCache[T]) Invalidate(scope string) {
	c.mu.Lock()
	delete(c.snapshots, scope)
	c.mu.Unlock()
}

// Reorderer commits permutations for one scope: optimistic cache overwrite,
// then the reorder call, then invalidate-and-refetch on success. On failure
// the cache keeps the dragged order; the caller surfaces the error and may
// retry the same payload, which converges the store to the cached order.
type Reorderer[T any] struct {
	Cache *ListCache[T]
	Scope string
	ID    func(T) string
	Push  func(ctx context.Context, updates []domain.OrderUpdate) error
	Fetch func(ctx context.Context) ([]T, error)
}

// Commit applies the new permutation. items is the full scope in its new
// display order.
func (r *Reorderer[T]) Commit(ctx context.Context, items []T) error {
	r.Cache.Put(r.Scope, items)

	updates := make([]domain.OrderUpdate, len(items))
	for i, item := range items {
		updates[i] = domain.OrderUpdate{ID: r.ID(item), Order: i}
	}
	if err := r.Push(ctx, updates); err != nil {
		return err
	}

	r.Cache.Invalidate(r.Scope)
	fresh, err := r.Fetch(ctx)
	if err != nil {
		// The write landed; the next natural read repopulates the cache.
		return nil
	}
	r.Cache.Put(r.Scope, fresh)
	return nil
}

// CommitVisible is Commit for a filtered view: visible is the filtered list in
// its new order, fullIDs the unfiltered scope in display order. Hidden
// siblings keep their slots, in the optimistic snapshot as well as in the
// submitted ranks.
func (r *Reorderer[T]) CommitVisible(ctx context.Context, visible []T, fullIDs []string) error {
	visibleIDs := make([]string, len(visible))
	for i, item := range visible {
		visibleIDs[i] = r.ID(item)
	}

	if full, okFull := r.Cache.Get(r.Scope); okFull {
		shown := make(map[string]bool, len(visibleIDs))
		for _, id := range visibleIDs {
			shown[id] = true
		}
		// Refill the visible slots of the full snapshot with the new visible
		// order; hidden items stay where they are.
		next := 0
		for i := range full {
			if shown[r.ID(full[i])] && next < len(visible) {
				full[i] = visible[next]
				next++
			}
		}
		r.Cache.Put(r.Scope, full)
	} else {
		r.Cache.Put(r.Scope, visible)
	}

	if err := r.Push(ctx, RanksInScope(fullIDs, visibleIDs)); err != nil {
		return err
	}

	r.Cache.Invalidate(r.Scope)
	if fresh, err := r.Fetch(ctx); err == nil {
		r.Cache.Put(r.Scope, fresh)
	}
	return nil
}
