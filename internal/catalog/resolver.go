package catalog

import (
	"log/slog"
	"strings"

	"github.com/gruberb/game-compatibility-tracker/internal/logging"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

// DefaultFuzzyThreshold is the minimum similarity a fuzzy candidate must
// reach before it is accepted as a match.
const DefaultFuzzyThreshold = 0.90

// MatchKind records which strategy produced a resolution.
type MatchKind string

const (
	MatchExactRaw        MatchKind = "exact_raw"
	MatchExactNormalized MatchKind = "exact_normalized"
	MatchFuzzy           MatchKind = "fuzzy"
	MatchNone            MatchKind = "none"
)

// Match describes one resolution outcome, mainly for troubleshooting output.
type Match struct {
	ID         int64
	Kind       MatchKind
	Normalized string
	Key        string
	Score      float64
}

// Resolver maps scraped titles to catalog ids: exact lookup first, then a
// linear fuzzy scan over the index. Results are memoized per dedup key so a
// title is resolved at most once per run no matter how many sources list
// it. Resolver is not safe for concurrent use; a run owns exactly one.
type Resolver struct {
	index      *Index
	normalizer *title.Normalizer
	threshold  float64
	logger     *slog.Logger

	memo          map[string]Match
	unmatched     []string
	unmatchedSeen map[string]struct{}
}

// NewResolver creates a Resolver. A non-positive threshold falls back to
// DefaultFuzzyThreshold.
func NewResolver(index *Index, normalizer *title.Normalizer, threshold float64, logger *slog.Logger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Resolver{
		index:         index,
		normalizer:    normalizer,
		threshold:     threshold,
		logger:        logging.NewComponentLogger(logger, "resolver"),
		memo:          make(map[string]Match),
		unmatchedSeen: make(map[string]struct{}),
	}
}

// Resolve maps a scraped title to a catalog id. A miss is not an error: the
// second return is false and the original title is recorded in the
// unmatched list, once per distinct normalized key.
func (r *Resolver) Resolve(scrapedTitle string) (int64, bool) {
	match := r.Match(scrapedTitle)
	return match.ID, match.Kind != MatchNone
}

// Match resolves like Resolve but returns the full outcome.
func (r *Resolver) Match(scrapedTitle string) Match {
	normalized := r.normalizer.Normalize(scrapedTitle)
	key := strings.ToLower(normalized)

	if cached, ok := r.memo[key]; ok {
		return cached
	}

	match := r.lookup(scrapedTitle, normalized, key)
	r.memo[key] = match

	if match.Kind == MatchNone {
		if _, seen := r.unmatchedSeen[key]; !seen {
			r.unmatchedSeen[key] = struct{}{}
			r.unmatched = append(r.unmatched, scrapedTitle)
		}
		r.logger.Debug("no catalog match",
			logging.String("title", scrapedTitle),
			logging.String("normalized", normalized),
			logging.Float64("best_score", match.Score))
	} else {
		r.logger.Debug("resolved title",
			logging.String("title", scrapedTitle),
			logging.String("key", match.Key),
			logging.String("kind", string(match.Kind)),
			logging.Int64("catalog_id", match.ID))
	}
	return match
}

func (r *Resolver) lookup(scrapedTitle, normalized, key string) Match {
	rawKey := strings.ToLower(scrapedTitle)
	if id, ok := r.index.Lookup(rawKey); ok {
		return Match{ID: id, Kind: MatchExactRaw, Normalized: normalized, Key: rawKey, Score: 1.0}
	}
	if id, ok := r.index.Lookup(key); ok {
		return Match{ID: id, Kind: MatchExactNormalized, Normalized: normalized, Key: key, Score: 1.0}
	}

	bestScore := 0.0
	bestKey := ""
	for _, candidate := range r.index.Keys() {
		score := title.Similarity(normalized, candidate)
		if score > bestScore {
			bestScore = score
			bestKey = candidate
		}
	}
	if bestScore >= r.threshold {
		id, _ := r.index.Lookup(bestKey)
		return Match{ID: id, Kind: MatchFuzzy, Normalized: normalized, Key: bestKey, Score: bestScore}
	}
	return Match{Kind: MatchNone, Normalized: normalized, Score: bestScore}
}

// Unmatched returns the original titles that resolved to nothing, in
// first-seen order.
func (r *Resolver) Unmatched() []string {
	return r.unmatched
}
