package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"download-request-service/cache"
	"download-request-service/config"
	"download-request-service/model"

	"github.com/alicebob/miniredis/v2"
)

func newTestCatalogStore(t *testing.T) (*CatalogStore, *miniredis.Miniredis, func()) {
	client, s := setupTestRedis(t)
	store := NewCatalogStore(client, nil)
	return store, s, func() {
		client.Close()
		s.Close()
	}
}

func TestCatalogStore_GetOrder(t *testing.T) {
	store, _, teardown := newTestCatalogStore(t)
	defer teardown()

	ctx := context.Background()

	order := model.Order{
		ID:            "TC-1001",
		CustomerEmail: "customer@example.com",
		CustomerName:  "Jordan Example",
		ProjectID:     "proj-1",
		ProjectTitle:  "E-Commerce Platform",
		CreatedAt:     time.Now(),
	}
	if err := store.AddOrder(ctx, order); err != nil {
		t.Fatalf("AddOrder() error = %v", err)
	}

	fetched, err := store.GetOrder(ctx, "TC-1001")
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if fetched.ProjectID != "proj-1" {
		t.Errorf("ProjectID = %s, want proj-1", fetched.ProjectID)
	}

	_, err = store.GetOrder(ctx, "TC-9999")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("GetOrder(missing) error = %v, want ErrOrderNotFound", err)
	}
}

func TestCatalogStore_GetProject(t *testing.T) {
	store, _, teardown := newTestCatalogStore(t)
	defer teardown()

	ctx := context.Background()

	project := model.Project{
		ID:        "proj-1",
		Title:     "E-Commerce Platform",
		Category:  "web",
		CreatedAt: time.Now(),
	}
	if err := store.AddProject(ctx, project); err != nil {
		t.Fatalf("AddProject() error = %v", err)
	}

	fetched, err := store.GetProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if fetched.Title != "E-Commerce Platform" {
		t.Errorf("Title = %s, want E-Commerce Platform", fetched.Title)
	}

	_, err = store.GetProject(ctx, "proj-missing")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("GetProject(missing) error = %v, want ErrProjectNotFound", err)
	}
}

func TestCatalogStore_LatestOrder(t *testing.T) {
	store, _, teardown := newTestCatalogStore(t)
	defer teardown()

	ctx := context.Background()
	base := time.Now().Add(-48 * time.Hour)

	orders := []model.Order{
		{ID: "TC-1", CustomerEmail: "customer@example.com", ProjectID: "proj-a", ProjectTitle: "Alpha", CreatedAt: base},
		{ID: "TC-2", CustomerEmail: "customer@example.com", ProjectID: "proj-b", ProjectTitle: "Beta", CreatedAt: base.Add(1 * time.Hour)},
		{ID: "TC-3", CustomerEmail: "customer@example.com", ProjectID: "proj-a", ProjectTitle: "Alpha", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "TC-4", CustomerEmail: "someone-else@example.com", ProjectID: "proj-a", ProjectTitle: "Alpha", CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, o := range orders {
		if err := store.AddOrder(ctx, o); err != nil {
			t.Fatalf("AddOrder(%s) error = %v", o.ID, err)
		}
	}

	t.Run("Newest order wins", func(t *testing.T) {
		order, err := store.LatestOrder(ctx, "customer@example.com", "")
		if err != nil {
			t.Fatalf("LatestOrder() error = %v", err)
		}
		if order.ID != "TC-3" {
			t.Errorf("LatestOrder() = %s, want TC-3", order.ID)
		}
	})

	t.Run("Project title restricts the match", func(t *testing.T) {
		order, err := store.LatestOrder(ctx, "customer@example.com", "Beta")
		if err != nil {
			t.Fatalf("LatestOrder() error = %v", err)
		}
		if order.ID != "TC-2" {
			t.Errorf("LatestOrder() = %s, want TC-2", order.ID)
		}
	})

	t.Run("Email lookup is case-insensitive", func(t *testing.T) {
		order, err := store.LatestOrder(ctx, "Customer@Example.com", "")
		if err != nil {
			t.Fatalf("LatestOrder() error = %v", err)
		}
		if order.ID != "TC-3" {
			t.Errorf("LatestOrder() = %s, want TC-3", order.ID)
		}
	})

	t.Run("Unknown customer", func(t *testing.T) {
		_, err := store.LatestOrder(ctx, "nobody@example.com", "")
		if !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("LatestOrder() error = %v, want ErrOrderNotFound", err)
		}
	})

	t.Run("No order for project title", func(t *testing.T) {
		_, err := store.LatestOrder(ctx, "customer@example.com", "Gamma")
		if !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("LatestOrder() error = %v, want ErrOrderNotFound", err)
		}
	})
}

func TestCatalogStore_ProjectDocuments(t *testing.T) {
	store, _, teardown := newTestCatalogStore(t)
	defer teardown()

	ctx := context.Background()

	docs := []model.Document{
		{ID: "doc-1", ProjectID: "proj-1", Name: "Final Report.pdf", Category: "report", ReviewStage: "review_2", Size: 2048},
		{ID: "doc-2", ProjectID: "proj-1", Name: "Source Code.zip", Category: "source", Size: 1 << 20},
		{ID: "doc-3", ProjectID: "proj-2", Name: "Other.pdf"},
	}
	for _, d := range docs {
		if err := store.AddDocument(ctx, d); err != nil {
			t.Fatalf("AddDocument(%s) error = %v", d.ID, err)
		}
	}

	got, err := store.ProjectDocuments(ctx, "proj-1")
	if err != nil {
		t.Fatalf("ProjectDocuments() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ProjectDocuments() returned %d documents, want 2", len(got))
	}
	if got[0].ID != "doc-1" || got[1].ID != "doc-2" {
		t.Error("ProjectDocuments() should preserve insertion order")
	}

	empty, err := store.ProjectDocuments(ctx, "proj-none")
	if err != nil {
		t.Fatalf("ProjectDocuments(empty) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ProjectDocuments(empty) returned %d documents, want 0", len(empty))
	}
}

func TestCatalogStore_ProjectDocuments_CacheInvalidation(t *testing.T) {
	client, s := setupTestRedis(t)
	defer s.Close()
	defer client.Close()

	cacheClient, err := cache.New(config.CacheConfig{
		Enabled:     true,
		MaxSizeMB:   8,
		TTLSeconds:  60,
		CounterSize: 1000,
	})
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	defer cacheClient.Close()

	store := NewCatalogStore(client, cacheClient)
	ctx := context.Background()

	if err := store.AddDocument(ctx, model.Document{ID: "doc-1", ProjectID: "proj-1", Name: "First.pdf"}); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	first, err := store.ProjectDocuments(ctx, "proj-1")
	if err != nil {
		t.Fatalf("ProjectDocuments() error = %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("ProjectDocuments() returned %d documents, want 1", len(first))
	}

	// Adding a document must drop the cached list
	if err := store.AddDocument(ctx, model.Document{ID: "doc-2", ProjectID: "proj-1", Name: "Second.pdf"}); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	second, err := store.ProjectDocuments(ctx, "proj-1")
	if err != nil {
		t.Fatalf("ProjectDocuments() error = %v", err)
	}
	if len(second) != 2 {
		t.Errorf("ProjectDocuments() after invalidation returned %d documents, want 2", len(second))
	}
}
