// Package aggregate folds per-source ranking entries and enrichment
// payloads into one unified record per real-world game, keyed by the
// lowercased normalized title.
package aggregate

import (
	"log/slog"

	"github.com/gruberb/game-compatibility-tracker/internal/logging"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

// Enricher fetches metadata for a game. It receives the normalized title
// with its casing intact so downstream reports can echo it back; providers
// derive their own lookup keys from it. The second return is false when the
// lookup is unavailable (unresolved title, collaborator failure); the record
// then keeps its defaults. The aggregator guarantees at most one call per
// distinct dedup key per run.
type Enricher func(normalizedTitle string) (*Enrichment, bool)

// Aggregator owns the key -> record mapping for one run. It is
// single-threaded; the enrichment-once guarantee is enforced through the
// enriched set, not a lock.
type Aggregator struct {
	normalizer *title.Normalizer
	enrich     Enricher
	logger     *slog.Logger

	records  map[string]*Record
	order    []string
	enriched map[string]struct{}
}

// New creates an Aggregator. A nil enricher means every record keeps its
// defaults.
func New(normalizer *title.Normalizer, enrich Enricher, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		normalizer: normalizer,
		enrich:     enrich,
		logger:     logging.NewComponentLogger(logger, "aggregate"),
		records:    make(map[string]*Record),
		enriched:   make(map[string]struct{}),
	}
}

// Add folds one ranking entry into the aggregate. The first entry for a key
// creates the record and triggers the single enrichment lookup; later
// entries only contribute their source ranking. A repeated (key, source)
// pair silently keeps the latest rank.
func (a *Aggregator) Add(entry RawEntry) {
	normalized := a.normalizer.Normalize(entry.Title)
	key := a.normalizer.Key(entry.Title)

	record, ok := a.records[key]
	if !ok {
		record = newRecord(normalized)
		a.records[key] = record
		a.order = append(a.order, key)

		if a.enrich != nil {
			if _, done := a.enriched[key]; !done {
				a.enriched[key] = struct{}{}
				if enrichment, found := a.enrich(normalized); found {
					record.apply(enrichment)
				} else {
					a.logger.Debug("enrichment unavailable, keeping defaults",
						logging.String("key", key))
				}
			}
		}
	}

	record.Rankings[entry.Source] = entry.Rank
}

// Records returns the unified records in first-seen key order.
func (a *Aggregator) Records() []Record {
	out := make([]Record, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.records[key])
	}
	return out
}

// Aggregate runs the whole fold in one call: every entry is added in input
// order and the resulting records are returned in first-seen order.
func Aggregate(entries []RawEntry, normalizer *title.Normalizer, enrich Enricher, logger *slog.Logger) []Record {
	a := New(normalizer, enrich, logger)
	for _, entry := range entries {
		a.Add(entry)
	}
	return a.Records()
}
