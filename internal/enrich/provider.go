// Package enrich composes the Steam storefront, ProtonDB, and RAWG clients
// into the single enrichment lookup the aggregator consumes. Every partial
// failure degrades to "less metadata", never to an error.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
	"github.com/gruberb/game-compatibility-tracker/internal/catalog"
	"github.com/gruberb/game-compatibility-tracker/internal/logging"
	"github.com/gruberb/game-compatibility-tracker/internal/protondb"
	"github.com/gruberb/game-compatibility-tracker/internal/rawg"
	"github.com/gruberb/game-compatibility-tracker/internal/steam"
)

// steamStoreName is the store identifier contributed whenever a title
// resolves against the Steam catalog.
const steamStoreName = "Steam"

// switchPlatformName is the RAWG platform name that flips the Switch flag.
const switchPlatformName = "Nintendo Switch"

// SteamClient is the storefront surface the provider needs.
type SteamClient interface {
	AppDetails(ctx context.Context, appID int64) (*steam.AppDetails, error)
	Reviews(ctx context.Context, appID int64) (*steam.ReviewSummary, error)
}

// RAWGClient is the secondary metadata surface. A nil client disables the
// RAWG overlay.
type RAWGClient interface {
	Search(ctx context.Context, query string) (*rawg.Info, error)
}

// ProtonDBClient reports the Steam Deck compatibility tier.
type ProtonDBClient interface {
	Tier(ctx context.Context, appID int64) (string, error)
}

// Cache persists enrichment payloads across runs. A nil cache disables
// persistence.
type Cache interface {
	LoadEnrichment(ctx context.Context, key string) (*aggregate.Enrichment, bool, error)
	SaveEnrichment(ctx context.Context, key string, enrichment *aggregate.Enrichment) error
}

// Provider resolves a dedup key to its enrichment payload.
type Provider struct {
	resolver *catalog.Resolver
	steam    SteamClient
	rawg     RAWGClient
	protondb ProtonDBClient
	cache    Cache
	logger   *slog.Logger
	delay    time.Duration
}

// New creates a Provider. resolver and steamClient are required; rawg,
// protondb, and cache may be nil to disable those aspects.
func New(resolver *catalog.Resolver, steamClient SteamClient, rawgClient RAWGClient, protonClient ProtonDBClient, cache Cache, delay time.Duration, logger *slog.Logger) *Provider {
	return &Provider{
		resolver: resolver,
		steam:    steamClient,
		rawg:     rawgClient,
		protondb: protonClient,
		cache:    cache,
		logger:   logging.NewComponentLogger(logger, "enrich"),
		delay:    delay,
	}
}

// Enricher adapts the provider to the aggregator's callback contract.
func (p *Provider) Enricher(ctx context.Context) aggregate.Enricher {
	return func(normalizedTitle string) (*aggregate.Enrichment, bool) {
		return p.Lookup(ctx, normalizedTitle)
	}
}

// Lookup fetches the enrichment payload for a normalized title. Casing is
// preserved on the way through so the resolver's unmatched report keeps the
// title readable; the cache is keyed by the lowercased form. The second
// return is false when neither Steam nor RAWG produced anything; the record
// then keeps its defaults.
func (p *Provider) Lookup(ctx context.Context, normalizedTitle string) (*aggregate.Enrichment, bool) {
	cacheKey := strings.ToLower(normalizedTitle)
	if p.cache != nil {
		if cached, found, err := p.cache.LoadEnrichment(ctx, cacheKey); err != nil {
			p.logger.Warn("enrichment cache read failed",
				logging.String("title", normalizedTitle),
				logging.Error(err))
		} else if found {
			p.logger.Debug("enrichment served from cache", logging.String("title", normalizedTitle))
			return cached, true
		}
	}

	enrichment := &aggregate.Enrichment{}
	haveSteam := p.lookupSteam(ctx, normalizedTitle, enrichment)
	haveRAWG := p.lookupRAWG(ctx, normalizedTitle, enrichment)
	if !haveSteam && !haveRAWG {
		return nil, false
	}

	if p.cache != nil {
		if err := p.cache.SaveEnrichment(ctx, cacheKey, enrichment); err != nil {
			p.logger.Warn("enrichment cache write failed",
				logging.String("title", normalizedTitle),
				logging.Error(err))
		}
	}
	p.pause(ctx)
	return enrichment, true
}

func (p *Provider) lookupSteam(ctx context.Context, normalizedTitle string, enrichment *aggregate.Enrichment) bool {
	appID, ok := p.resolver.Resolve(normalizedTitle)
	if !ok {
		return false
	}

	details, err := p.steam.AppDetails(ctx, appID)
	if err != nil {
		p.logger.Warn("steam app details unavailable",
			logging.String("title", normalizedTitle),
			logging.Int64("app_id", appID),
			logging.Error(err))
		return false
	}

	enrichment.SteamID = appID
	enrichment.HasPlatforms = true
	enrichment.Platforms = aggregate.Platforms{
		Windows:   details.Windows,
		MacOS:     details.MacOS,
		Linux:     details.Linux,
		SteamDeck: protondb.TierUnknown,
	}
	enrichment.Price = details.Price
	enrichment.HeaderImage = details.HeaderImage
	enrichment.Stores = append(enrichment.Stores, steamStoreName)

	if summary, err := p.steam.Reviews(ctx, appID); err != nil {
		p.logger.Warn("steam reviews unavailable",
			logging.Int64("app_id", appID),
			logging.Error(err))
	} else {
		enrichment.UserScore = summary.Score()
		enrichment.TotalReviews = summary.TotalReviews
	}

	if p.protondb != nil {
		if tier, err := p.protondb.Tier(ctx, appID); err != nil {
			p.logger.Warn("protondb tier unavailable",
				logging.Int64("app_id", appID),
				logging.Error(err))
		} else {
			enrichment.Platforms.SteamDeck = tier
		}
	}
	return true
}

func (p *Provider) lookupRAWG(ctx context.Context, normalizedTitle string, enrichment *aggregate.Enrichment) bool {
	if p.rawg == nil {
		return false
	}
	info, err := p.rawg.Search(ctx, normalizedTitle)
	if err != nil {
		p.logger.Warn("rawg lookup failed",
			logging.String("title", normalizedTitle),
			logging.Error(err))
		return false
	}
	if info == nil {
		return false
	}

	if info.HasPlatform(switchPlatformName) {
		if !enrichment.HasPlatforms {
			enrichment.Platforms = aggregate.Platforms{
				Windows:   true,
				SteamDeck: protondb.TierUnknown,
			}
			enrichment.HasPlatforms = true
		}
		enrichment.Platforms.Switch = true
	}
	enrichment.Stores = unionStores(enrichment.Stores, info.Stores)
	if enrichment.HeaderImage == "" {
		enrichment.HeaderImage = info.BackgroundImage
	}
	if info.Metacritic != nil {
		enrichment.Metacritic = info.Metacritic
	}
	if info.Released != "" {
		enrichment.ReleaseDate = info.Released
	}
	return true
}

// pause applies the politeness delay between enrichment lookups without
// outliving the run context.
func (p *Provider) pause(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func unionStores(existing, incoming []string) []string {
	for _, store := range incoming {
		if store == "" {
			continue
		}
		present := false
		for _, have := range existing {
			if have == store {
				present = true
				break
			}
		}
		if !present {
			existing = append(existing, store)
		}
	}
	return existing
}
