package catalog

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/gruberb/game-compatibility-tracker/internal/logging"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

// Entry is one raw reference-catalog row as delivered by the catalog
// provider, in practice the Steam app list.
type Entry struct {
	Name string `json:"name"`
	ID   int64  `json:"appid"`
}

// Index maps lowercased normalized catalog names to catalog ids. It is
// built once per run and read-only afterwards; the key slice is kept sorted
// so fuzzy scans are deterministic.
type Index struct {
	ids  map[string]int64
	keys []string
}

// BuildIndex normalizes and lowercases every catalog name and inserts it
// into the index. Later entries overwrite earlier ones on key collisions;
// distinct games normalizing to the same key are a known approximation.
// Entries with an empty name or non-positive id are skipped with a warning.
func BuildIndex(entries []Entry, normalizer *title.Normalizer, logger *slog.Logger) *Index {
	logger = logging.NewComponentLogger(logger, "catalog")
	ids := make(map[string]int64, len(entries))
	skipped := 0
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" || entry.ID <= 0 {
			skipped++
			continue
		}
		ids[normalizer.Key(entry.Name)] = entry.ID
	}
	if skipped > 0 {
		logger.Warn("skipped malformed catalog entries",
			logging.Int("skipped", skipped),
			logging.Int("indexed", len(ids)))
	}
	return newIndex(ids)
}

// IndexFromPairs restores an index from already-normalized key/id pairs,
// e.g. a cached catalog snapshot.
func IndexFromPairs(pairs map[string]int64) *Index {
	ids := make(map[string]int64, len(pairs))
	for key, id := range pairs {
		ids[key] = id
	}
	return newIndex(ids)
}

func newIndex(ids map[string]int64) *Index {
	keys := make([]string, 0, len(ids))
	for key := range ids {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &Index{ids: ids, keys: keys}
}

// Lookup returns the catalog id for an exact key.
func (ix *Index) Lookup(key string) (int64, bool) {
	id, ok := ix.ids[key]
	return id, ok
}

// Keys returns the sorted index keys. Callers must not modify the slice.
func (ix *Index) Keys() []string {
	return ix.keys
}

// Pairs returns a copy of the key/id mapping, e.g. for persisting a
// catalog snapshot.
func (ix *Index) Pairs() map[string]int64 {
	pairs := make(map[string]int64, len(ix.ids))
	for key, id := range ix.ids {
		pairs[key] = id
	}
	return pairs
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.ids)
}
