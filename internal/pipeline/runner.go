// Package pipeline orchestrates one full tracker run: scrape every
// configured ranking source, resolve titles against the Steam catalog,
// enrich, deduplicate, and write the output files into the data directory.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
	"github.com/gruberb/game-compatibility-tracker/internal/catalog"
	"github.com/gruberb/game-compatibility-tracker/internal/config"
	"github.com/gruberb/game-compatibility-tracker/internal/enrich"
	"github.com/gruberb/game-compatibility-tracker/internal/gamecache"
	"github.com/gruberb/game-compatibility-tracker/internal/logging"
	"github.com/gruberb/game-compatibility-tracker/internal/protondb"
	"github.com/gruberb/game-compatibility-tracker/internal/rawg"
	"github.com/gruberb/game-compatibility-tracker/internal/scrape"
	"github.com/gruberb/game-compatibility-tracker/internal/steam"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

// Output files written into the data directory.
const (
	RawGamesFile       = "raw_games.json"
	MergedGamesFile    = "merged_games.json"
	UnmatchedGamesFile = "unmatched_games.txt"
)

// Summary reports what one run did.
type Summary struct {
	RunID          string
	Sources        int
	FailedSources  int
	TotalEntries   int
	UniqueGames    int
	Unmatched      int
	CatalogEntries int
	CatalogFetched bool
}

// Runner executes the scrape-resolve-enrich-merge pipeline.
type Runner struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpClient *http.Client
	adapters   []scrape.Adapter
	steam      *steam.Client
	rawg       *rawg.Client
	protondb   *protondb.Client
	normalizer *title.Normalizer
}

// New builds a Runner from the configuration. RAWG enrichment is skipped
// when no api key is configured.
func New(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	adapters, err := scrape.Registry(cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("build scrape registry: %w", err)
	}

	specialCases, err := cfg.SpecialCases()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var rawgClient *rawg.Client
	if cfg.RAWG.APIKey != "" {
		rawgClient, err = rawg.New(cfg.RAWG.APIKey, cfg.RAWG.BaseURL, rawg.WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
	}

	return &Runner{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		httpClient: httpClient,
		adapters:   adapters,
		steam: steam.New(
			steam.WithHTTPClient(httpClient),
			steam.WithBaseURLs(cfg.Steam.APIBaseURL, cfg.Steam.StoreBaseURL),
		),
		rawg:       rawgClient,
		protondb:   protondb.New(cfg.ProtonDB.BaseURL, protondb.WithHTTPClient(httpClient)),
		normalizer: title.NewNormalizer(specialCases),
	}, nil
}

// Run executes the full pipeline. One source failing to scrape is logged
// and skipped; a run only fails outright before any work starts (directories,
// cache lock, catalog with an empty cache).
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString(), Sources: len(r.adapters)}
	logger := r.logger.With(logging.String("run_id", summary.RunID))
	logger.Info("starting run", logging.Int("sources", len(r.adapters)))

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock, err := gamecache.AcquireLock(r.cfg.CachePath())
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	store, err := gamecache.Open(r.cfg.CachePath())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	index, err := r.loadCatalog(ctx, store, summary, logger)
	if err != nil {
		return nil, err
	}

	entries := r.scrapeAll(ctx, summary, logger)
	summary.TotalEntries = len(entries)

	resolver := catalog.NewResolver(index, r.normalizer, r.cfg.Matching.FuzzyThreshold, logger)
	requestDelay := time.Duration(r.cfg.Workflow.RequestDelaySeconds) * time.Second
	provider := enrich.New(resolver, r.steam, r.rawgOrNil(), r.protondb, store, requestDelay, logger)

	records := aggregate.Aggregate(entries, r.normalizer, provider.Enricher(ctx), logger)
	summary.UniqueGames = len(records)
	summary.Unmatched = len(resolver.Unmatched())

	if err := r.writeOutputs(entries, records, resolver.Unmatched()); err != nil {
		return nil, err
	}

	logger.Info("run complete",
		logging.Int("total_entries", summary.TotalEntries),
		logging.Int("unique_games", summary.UniqueGames),
		logging.Int("unmatched", summary.Unmatched))
	return summary, nil
}

// rawgOrNil avoids handing the provider a typed nil pointer in an
// interface value.
func (r *Runner) rawgOrNil() enrich.RAWGClient {
	if r.rawg == nil {
		return nil
	}
	return r.rawg
}

// loadCatalog serves the index from the cache when a snapshot exists and
// downloads the full app list otherwise.
func (r *Runner) loadCatalog(ctx context.Context, store *gamecache.Store, summary *Summary, logger *slog.Logger) (*catalog.Index, error) {
	pairs, err := store.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(pairs) > 0 {
		summary.CatalogEntries = len(pairs)
		logger.Info("catalog served from cache", logging.Int("entries", len(pairs)))
		return catalog.IndexFromPairs(pairs), nil
	}

	logger.Info("downloading steam app list")
	entries, err := r.steam.AppList(ctx)
	if err != nil {
		return nil, fmt.Errorf("download app list: %w", err)
	}
	index := catalog.BuildIndex(entries, r.normalizer, logger)
	if err := store.SaveCatalog(ctx, index.Pairs()); err != nil {
		logger.Warn("catalog snapshot not cached", logging.Error(err))
	}
	summary.CatalogEntries = index.Len()
	summary.CatalogFetched = true
	logger.Info("catalog downloaded", logging.Int("entries", index.Len()))
	return index, nil
}

// scrapeAll runs every adapter in registry order with the configured delay
// between sources. A failing source contributes nothing.
func (r *Runner) scrapeAll(ctx context.Context, summary *Summary, logger *slog.Logger) []aggregate.RawEntry {
	sourceDelay := time.Duration(r.cfg.Workflow.SourceDelaySeconds) * time.Second
	var entries []aggregate.RawEntry
	for i, adapter := range r.adapters {
		if i > 0 {
			r.pause(ctx, sourceDelay)
		}
		scraped, err := adapter.Scrape(ctx, r.httpClient)
		if err != nil {
			summary.FailedSources++
			logger.Warn("source scrape failed",
				logging.String("source", adapter.Name()),
				logging.Error(err))
			continue
		}
		logger.Info("source scraped",
			logging.String("source", adapter.Name()),
			logging.Int("entries", len(scraped)))
		entries = append(entries, scraped...)
	}
	return entries
}

func (r *Runner) pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// writeOutputs writes the raw scrape dump, the merged records, and the
// unmatched title list. The unmatched file is only written when titles
// failed to resolve, and a stale one from a previous run is removed.
func (r *Runner) writeOutputs(entries []aggregate.RawEntry, records []aggregate.Record, unmatched []string) error {
	if entries == nil {
		entries = []aggregate.RawEntry{}
	}
	if records == nil {
		records = []aggregate.Record{}
	}
	if err := writeJSON(filepath.Join(r.cfg.Paths.DataDir, RawGamesFile), entries); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(r.cfg.Paths.DataDir, MergedGamesFile), records); err != nil {
		return err
	}

	unmatchedPath := filepath.Join(r.cfg.Paths.DataDir, UnmatchedGamesFile)
	if len(unmatched) == 0 {
		if err := os.Remove(unmatchedPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale unmatched list: %w", err)
		}
		return nil
	}
	content := strings.Join(unmatched, "\n") + "\n"
	if err := os.WriteFile(unmatchedPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write unmatched list: %w", err)
	}
	return nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
