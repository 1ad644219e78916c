package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
	"github.com/gruberb/game-compatibility-tracker/internal/catalog"
	"github.com/gruberb/game-compatibility-tracker/internal/logging"
	"github.com/gruberb/game-compatibility-tracker/internal/rawg"
	"github.com/gruberb/game-compatibility-tracker/internal/steam"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

type fakeSteam struct {
	details     map[int64]*steam.AppDetails
	reviews     map[int64]*steam.ReviewSummary
	detailsErr  error
	reviewsErr  error
	detailCalls int
}

func (f *fakeSteam) AppDetails(_ context.Context, appID int64) (*steam.AppDetails, error) {
	f.detailCalls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	details, ok := f.details[appID]
	if !ok {
		return nil, steam.ErrAppUnavailable
	}
	return details, nil
}

func (f *fakeSteam) Reviews(_ context.Context, appID int64) (*steam.ReviewSummary, error) {
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	if summary, ok := f.reviews[appID]; ok {
		return summary, nil
	}
	return &steam.ReviewSummary{}, nil
}

type fakeRAWG struct {
	info *rawg.Info
	err  error
}

func (f *fakeRAWG) Search(context.Context, string) (*rawg.Info, error) {
	return f.info, f.err
}

type fakeProtonDB struct {
	tier string
	err  error
}

func (f *fakeProtonDB) Tier(context.Context, int64) (string, error) {
	if f.err != nil {
		return "unknown", f.err
	}
	return f.tier, nil
}

type memoryCache struct {
	entries map[string]*aggregate.Enrichment
	loads   int
	saves   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*aggregate.Enrichment)}
}

func (m *memoryCache) LoadEnrichment(_ context.Context, key string) (*aggregate.Enrichment, bool, error) {
	m.loads++
	enrichment, ok := m.entries[key]
	return enrichment, ok, nil
}

func (m *memoryCache) SaveEnrichment(_ context.Context, key string, enrichment *aggregate.Enrichment) error {
	m.saves++
	m.entries[key] = enrichment
	return nil
}

func testResolver(t *testing.T, entries []catalog.Entry) *catalog.Resolver {
	t.Helper()
	normalizer := title.NewNormalizer(nil)
	index := catalog.BuildIndex(entries, normalizer, logging.NewNop())
	return catalog.NewResolver(index, normalizer, catalog.DefaultFuzzyThreshold, logging.NewNop())
}

func TestLookupCombinesSteamAndRAWG(t *testing.T) {
	resolver := testResolver(t, []catalog.Entry{{Name: "Hades", ID: 1145360}})
	steamClient := &fakeSteam{
		details: map[int64]*steam.AppDetails{
			1145360: {Name: "Hades", Windows: true, MacOS: true, Price: "$24.99", HeaderImage: "https://img.example/hades.jpg"},
		},
		reviews: map[int64]*steam.ReviewSummary{
			1145360: {TotalReviews: 1000, TotalPositive: 980},
		},
	}
	metacritic := 93
	rawgClient := &fakeRAWG{info: &rawg.Info{
		Name:       "Hades",
		Platforms:  []string{"PC", "Nintendo Switch"},
		Stores:     []string{"Steam", "Nintendo Store"},
		Metacritic: &metacritic,
		Released:   "2020-09-17",
	}}

	provider := New(resolver, steamClient, rawgClient, &fakeProtonDB{tier: "platinum"}, nil, 0, logging.NewNop())
	enrichment, ok := provider.Lookup(context.Background(), "hades")
	if !ok {
		t.Fatal("Lookup returned unavailable for a resolvable title")
	}
	if enrichment.SteamID != 1145360 {
		t.Fatalf("SteamID=%d want 1145360", enrichment.SteamID)
	}
	if !enrichment.HasPlatforms {
		t.Fatal("HasPlatforms=false after a successful Steam lookup")
	}
	if !enrichment.Platforms.Windows || !enrichment.Platforms.MacOS || enrichment.Platforms.Linux {
		t.Fatalf("platforms=%+v want windows+macos only", enrichment.Platforms)
	}
	if enrichment.Platforms.SteamDeck != "platinum" {
		t.Fatalf("SteamDeck=%q want platinum", enrichment.Platforms.SteamDeck)
	}
	if !enrichment.Platforms.Switch {
		t.Fatal("Switch=false despite RAWG listing Nintendo Switch")
	}
	wantStores := []string{"Steam", "Nintendo Store"}
	if len(enrichment.Stores) != len(wantStores) {
		t.Fatalf("stores=%v want %v", enrichment.Stores, wantStores)
	}
	for i, store := range wantStores {
		if enrichment.Stores[i] != store {
			t.Fatalf("stores=%v want %v", enrichment.Stores, wantStores)
		}
	}
	if enrichment.UserScore == nil || *enrichment.UserScore != 0.98 {
		t.Fatalf("UserScore=%v want 0.98", enrichment.UserScore)
	}
	if enrichment.Metacritic == nil || *enrichment.Metacritic != 93 {
		t.Fatalf("Metacritic=%v want 93", enrichment.Metacritic)
	}
	if enrichment.ReleaseDate != "2020-09-17" {
		t.Fatalf("ReleaseDate=%q want 2020-09-17", enrichment.ReleaseDate)
	}
	if enrichment.HeaderImage != "https://img.example/hades.jpg" {
		t.Fatalf("HeaderImage=%q want the Steam image", enrichment.HeaderImage)
	}
}

func TestLookupRAWGOnlyStillVouchesForPlatforms(t *testing.T) {
	resolver := testResolver(t, nil)
	rawgClient := &fakeRAWG{info: &rawg.Info{
		Name:            "Hollow Knight Silksong",
		BackgroundImage: "https://img.example/silksong.jpg",
		Platforms:       []string{"Nintendo Switch"},
		Stores:          []string{"Nintendo Store"},
	}}

	provider := New(resolver, &fakeSteam{}, rawgClient, nil, nil, 0, logging.NewNop())
	enrichment, ok := provider.Lookup(context.Background(), "hollow knight silksong")
	if !ok {
		t.Fatal("Lookup returned unavailable despite RAWG data")
	}
	if enrichment.SteamID != 0 {
		t.Fatalf("SteamID=%d want 0 for an unresolved title", enrichment.SteamID)
	}
	if !enrichment.HasPlatforms || !enrichment.Platforms.Switch {
		t.Fatalf("platforms=%+v want an authoritative Switch flag", enrichment.Platforms)
	}
	if !enrichment.Platforms.Windows || enrichment.Platforms.SteamDeck != "unknown" {
		t.Fatalf("platforms=%+v want default windows/deck values", enrichment.Platforms)
	}
	if enrichment.HeaderImage != "https://img.example/silksong.jpg" {
		t.Fatalf("HeaderImage=%q want the RAWG fallback image", enrichment.HeaderImage)
	}
}

func TestLookupUnavailableWhenNothingResponds(t *testing.T) {
	resolver := testResolver(t, nil)
	provider := New(resolver, &fakeSteam{}, &fakeRAWG{}, nil, nil, 0, logging.NewNop())
	if _, ok := provider.Lookup(context.Background(), "Unknown Indie Darling"); ok {
		t.Fatal("Lookup reported availability with no Steam match and no RAWG data")
	}
	// The unmatched report keeps the title's casing even though dedup and
	// caching run on the lowercased form.
	unmatched := resolver.Unmatched()
	if len(unmatched) != 1 || unmatched[0] != "Unknown Indie Darling" {
		t.Fatalf("unmatched=%v want the case-preserved title", unmatched)
	}
}

func TestLookupSurvivesPartialFailures(t *testing.T) {
	resolver := testResolver(t, []catalog.Entry{{Name: "Celeste", ID: 504230}})
	steamClient := &fakeSteam{
		details: map[int64]*steam.AppDetails{
			504230: {Name: "Celeste", Windows: true, Linux: true, Price: "$19.99"},
		},
		reviewsErr: errors.New("storefront timeout"),
	}
	provider := New(resolver, steamClient, &fakeRAWG{err: errors.New("rate limited")}, &fakeProtonDB{err: errors.New("unreachable")}, nil, 0, logging.NewNop())

	enrichment, ok := provider.Lookup(context.Background(), "celeste")
	if !ok {
		t.Fatal("Lookup returned unavailable despite Steam details succeeding")
	}
	if enrichment.UserScore != nil || enrichment.TotalReviews != 0 {
		t.Fatalf("reviews=%v/%d want absent after a reviews failure", enrichment.UserScore, enrichment.TotalReviews)
	}
	if enrichment.Platforms.SteamDeck != "unknown" {
		t.Fatalf("SteamDeck=%q want unknown after a protondb failure", enrichment.Platforms.SteamDeck)
	}
	if enrichment.Price != "$19.99" {
		t.Fatalf("Price=%q want $19.99", enrichment.Price)
	}
}

func TestLookupUsesCache(t *testing.T) {
	resolver := testResolver(t, []catalog.Entry{{Name: "Hades", ID: 1145360}})
	steamClient := &fakeSteam{
		details: map[int64]*steam.AppDetails{
			1145360: {Name: "Hades", Windows: true, Price: "$24.99"},
		},
	}
	cache := newMemoryCache()
	provider := New(resolver, steamClient, nil, nil, cache, 0, logging.NewNop())

	if _, ok := provider.Lookup(context.Background(), "Hades"); !ok {
		t.Fatal("first lookup failed")
	}
	if cache.saves != 1 {
		t.Fatalf("saves=%d want 1", cache.saves)
	}
	if _, ok := cache.entries["hades"]; !ok {
		t.Fatalf("cache keys=%v want the lowercased title", cache.entries)
	}
	if _, ok := provider.Lookup(context.Background(), "Hades"); !ok {
		t.Fatal("cached lookup failed")
	}
	if steamClient.detailCalls != 1 {
		t.Fatalf("detailCalls=%d want 1, second lookup must hit the cache", steamClient.detailCalls)
	}
}

func TestEnricherAdaptsToAggregator(t *testing.T) {
	resolver := testResolver(t, []catalog.Entry{{Name: "Hades", ID: 1145360}})
	steamClient := &fakeSteam{
		details: map[int64]*steam.AppDetails{
			1145360: {Name: "Hades", Windows: true, Price: "$24.99"},
		},
	}
	provider := New(resolver, steamClient, nil, nil, nil, 0, logging.NewNop())

	aggregator := aggregate.New(title.NewNormalizer(nil), provider.Enricher(context.Background()), logging.NewNop())
	aggregator.Add(aggregate.RawEntry{Rank: 1, Title: "Hades", Source: "alpha"})
	records := aggregator.Records()
	if len(records) != 1 {
		t.Fatalf("records=%d want 1", len(records))
	}
	if records[0].SteamID == nil || *records[0].SteamID != 1145360 {
		t.Fatalf("SteamID=%v want 1145360", records[0].SteamID)
	}
}
