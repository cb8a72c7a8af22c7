package adminclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/bytedance/sonic"

	"portfolio-api/domain"
)

// fakeServer is an in-memory projects endpoint applying reorder payloads the
// same way the real store does: per-id merge, unknown ids skipped.
type fakeServer struct {
	mu       sync.Mutex
	projects []domain.Project
	failNext bool
	payloads [][]domain.OrderUpdate
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		sorted := make([]domain.Project, len(f.projects))
		copy(sorted, f.projects)
		domain.SortByOrder(sorted, func(p domain.Project) (int, int64) {
			return p.Order, p.CreatedAt.UnixMilli()
		})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": sorted})
	})
	mux.HandleFunc("PUT /api/projects/reorder", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failNext {
			f.failNext = false
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "failed to update order"})
			return
		}
		var body struct {
			Projects []domain.OrderUpdate `json:"projects"`
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid body"})
			return
		}
		f.payloads = append(f.payloads, body.Projects)
		for _, u := range body.Projects {
			for i := range f.projects {
				if f.projects[i].ID == u.ID {
					f.projects[i].Order = u.Order
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order updated successfully"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, _ := sonic.Marshal(v)
	w.Write(payload)
}

func newFixture(t *testing.T) (*fakeServer, *Client, *Reorderer[domain.Project]) {
	t.Helper()
	srv := &fakeServer{projects: []domain.Project{
		{ID: "X", Name: "x", Order: 0},
		{ID: "Y", Name: "y", Order: 1},
		{ID: "Z", Name: "z", Order: 2},
	}}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	client := New(ts.URL, "token")
	reorderer := &Reorderer[domain.Project]{
		Cache: NewListCache[domain.Project](),
		Scope: "projects",
		ID:    func(p domain.Project) string { return p.ID },
		Push:  client.ReorderProjects,
		Fetch: client.ListProjects,
	}
	return srv, client, reorderer
}

func ids(projects []domain.Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

func TestDragToEndSubmitsFullScopeRenumbering(t *testing.T) {
	srv, client, reorderer := newFixture(t)
	ctx := context.Background()

	listed, err := reorderer.Cache.GetOrFetch(ctx, "projects", client.ListProjects)
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	// Drag X (index 0) to position 2.
	seq := NewSequencer(listed)
	if err := seq.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	permuted, moved := seq.Drop(2)
	if !moved {
		t.Fatal("expected a move")
	}

	if err := reorderer.Commit(ctx, permuted); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(srv.payloads) != 1 {
		t.Fatalf("expected 1 reorder payload, got %d", len(srv.payloads))
	}
	want := []domain.OrderUpdate{{ID: "Y", Order: 0}, {ID: "Z", Order: 1}, {ID: "X", Order: 2}}
	if !reflect.DeepEqual(srv.payloads[0], want) {
		t.Fatalf("unexpected payload: %#v", srv.payloads[0])
	}

	// The post-commit list reflects the new order.
	after, err := client.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list after reorder: %v", err)
	}
	if !reflect.DeepEqual(ids(after), []string{"Y", "Z", "X"}) {
		t.Fatalf("unexpected server order: %v", ids(after))
	}
	cached, okCache := reorderer.Cache.Get("projects")
	if !okCache || !reflect.DeepEqual(ids(cached), []string{"Y", "Z", "X"}) {
		t.Fatalf("unexpected cached order: %v", ids(cached))
	}
}

func TestFailedReorderKeepsCacheAndRetryConverges(t *testing.T) {
	srv, client, reorderer := newFixture(t)
	ctx := context.Background()

	listed, err := reorderer.Cache.GetOrFetch(ctx, "projects", client.ListProjects)
	if err != nil {
		t.Fatalf("initial fetch: %v", err)
	}

	seq := NewSequencer(listed)
	if err := seq.Start(0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	permuted, _ := seq.Drop(2)

	srv.failNext = true
	err = reorderer.Commit(ctx, permuted)
	if err == nil {
		t.Fatal("expected commit to fail")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected error: %v", err)
	}

	// The cache still shows the dragged order.
	cached, okCache := reorderer.Cache.Get("projects")
	if !okCache || !reflect.DeepEqual(ids(cached), []string{"Y", "Z", "X"}) {
		t.Fatalf("cache lost the dragged order: %v", ids(cached))
	}
	// The store was never touched.
	onServer, _ := client.ListProjects(ctx)
	if !reflect.DeepEqual(ids(onServer), []string{"X", "Y", "Z"}) {
		t.Fatalf("server order changed despite failure: %v", ids(onServer))
	}

	// Retrying the same payload converges the store to the cached order.
	if err := reorderer.Commit(ctx, permuted); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	onServer, _ = client.ListProjects(ctx)
	if !reflect.DeepEqual(ids(onServer), []string{"Y", "Z", "X"}) {
		t.Fatalf("store did not converge: %v", ids(onServer))
	}
}

func TestCommitIsIdempotent(t *testing.T) {
	srv, client, reorderer := newFixture(t)
	ctx := context.Background()

	permuted := []domain.Project{
		{ID: "Z", Order: 2}, {ID: "X", Order: 0}, {ID: "Y", Order: 1},
	}
	if err := reorderer.Commit(ctx, permuted); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	first, _ := client.ListProjects(ctx)
	if err := reorderer.Commit(ctx, permuted); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	second, _ := client.ListProjects(ctx)
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("repeated commit diverged: %v vs %v", ids(first), ids(second))
	}
	if len(srv.payloads) != 2 || !reflect.DeepEqual(srv.payloads[0], srv.payloads[1]) {
		t.Fatalf("expected identical payloads, got %#v", srv.payloads)
	}
}

func TestCommitVisibleSplicesHiddenSiblingsIntoCache(t *testing.T) {
	ctx := context.Background()
	var pushed []domain.OrderUpdate
	pushErr := errors.New("offline")
	r := &Reorderer[domain.Project]{
		Cache: NewListCache[domain.Project](),
		Scope: "projects",
		ID:    func(p domain.Project) string { return p.ID },
		Push: func(_ context.Context, updates []domain.OrderUpdate) error {
			pushed = updates
			return pushErr
		},
		Fetch: func(context.Context) ([]domain.Project, error) {
			t.Fatal("must not refetch after a failed push")
			return nil, nil
		},
	}
	r.Cache.Put("projects", []domain.Project{
		{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}, {ID: "E"},
	})

	// Filter shows only [B, D]; the user swaps them.
	fullIDs := []string{"A", "B", "C", "D", "E"}
	visible := []domain.Project{{ID: "D"}, {ID: "B"}}
	if err := r.CommitVisible(ctx, visible, fullIDs); err == nil {
		t.Fatal("expected the push failure to surface")
	}

	want := []domain.OrderUpdate{{ID: "D", Order: 1}, {ID: "B", Order: 3}}
	if !reflect.DeepEqual(pushed, want) {
		t.Fatalf("unexpected payload: %#v", pushed)
	}
	// The optimistic snapshot still carries the hidden siblings.
	cached, okCache := r.Cache.Get("projects")
	if !okCache || !reflect.DeepEqual(ids(cached), []string{"A", "D", "C", "B", "E"}) {
		t.Fatalf("hidden siblings lost from cache: %v", ids(cached))
	}

	// A successful retry invalidates and refetches.
	pushErr = nil
	r.Fetch = func(context.Context) ([]domain.Project, error) {
		return []domain.Project{{ID: "A"}, {ID: "D"}, {ID: "C"}, {ID: "B"}, {ID: "E"}}, nil
	}
	if err := r.CommitVisible(ctx, visible, fullIDs); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	cached, _ = r.Cache.Get("projects")
	if !reflect.DeepEqual(ids(cached), []string{"A", "D", "C", "B", "E"}) {
		t.Fatalf("unexpected cache after success: %v", ids(cached))
	}
}

func TestUnknownIDInPayloadIsSkipped(t *testing.T) {
	srv, client, _ := newFixture(t)
	ctx := context.Background()

	err := client.ReorderProjects(ctx, []domain.OrderUpdate{
		{ID: "missing-1", Order: 0},
		{ID: "Y", Order: 1},
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	_ = srv

	after, _ := client.ListProjects(ctx)
	for _, p := range after {
		switch p.ID {
		case "X":
			if p.Order != 0 {
				t.Fatalf("X disturbed: %d", p.Order)
			}
		case "Y":
			if p.Order != 1 {
				t.Fatalf("Y not updated: %d", p.Order)
			}
		case "Z":
			if p.Order != 2 {
				t.Fatalf("Z disturbed: %d", p.Order)
			}
		}
	}
}
