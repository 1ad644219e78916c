package gamecache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCatalogRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pairs := map[string]int64{"hades": 1145360, "celeste": 504230}
	if err := store.SaveCatalog(ctx, pairs); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}

	loaded, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(loaded) != 2 || loaded["hades"] != 1145360 || loaded["celeste"] != 504230 {
		t.Fatalf("loaded=%v want %v", loaded, pairs)
	}

	count, err := store.CatalogCount(ctx)
	if err != nil {
		t.Fatalf("CatalogCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("count=%d want 2", count)
	}
}

func TestSaveCatalogReplacesSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveCatalog(ctx, map[string]int64{"old": 1}); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	if err := store.SaveCatalog(ctx, map[string]int64{"new": 2}); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}

	loaded, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(loaded) != 1 || loaded["new"] != 2 {
		t.Fatalf("loaded=%v want only the new snapshot", loaded)
	}
}

func TestClearCatalog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveCatalog(ctx, map[string]int64{"hades": 1145360}); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	if err := store.ClearCatalog(ctx); err != nil {
		t.Fatalf("ClearCatalog: %v", err)
	}
	count, err := store.CatalogCount(ctx)
	if err != nil {
		t.Fatalf("CatalogCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("count=%d want 0", count)
	}
}

func TestEnrichmentRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	score := 0.93
	saved := &aggregate.Enrichment{
		SteamID:      1145360,
		HasPlatforms: true,
		Platforms:    aggregate.Platforms{Windows: true, SteamDeck: "platinum"},
		Stores:       []string{"Steam"},
		UserScore:    &score,
		TotalReviews: 250000,
		Price:        "$24.99",
	}
	if err := store.SaveEnrichment(ctx, "hades", saved); err != nil {
		t.Fatalf("SaveEnrichment: %v", err)
	}

	loaded, found, err := store.LoadEnrichment(ctx, "hades")
	if err != nil {
		t.Fatalf("LoadEnrichment: %v", err)
	}
	if !found {
		t.Fatalf("expected cached enrichment")
	}
	if loaded.SteamID != 1145360 || loaded.Platforms.SteamDeck != "platinum" || loaded.Price != "$24.99" {
		t.Fatalf("loaded=%+v", loaded)
	}
	if loaded.UserScore == nil || *loaded.UserScore != 0.93 {
		t.Fatalf("UserScore=%v want 0.93", loaded.UserScore)
	}
}

func TestLoadEnrichmentMiss(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.LoadEnrichment(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadEnrichment: %v", err)
	}
	if found {
		t.Fatalf("found=true want false")
	}
}

func TestOpenReusesExistingCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SaveCatalog(context.Background(), map[string]int64{"hades": 1}); err != nil {
		t.Fatalf("SaveCatalog: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.CatalogCount(context.Background())
	if err != nil {
		t.Fatalf("CatalogCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("count=%d want 1 after reopen", count)
	}
}

func TestAcquireLockExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	lock, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	if _, err := AcquireLock(path); err == nil {
		t.Fatalf("expected second AcquireLock to fail")
	}
}
