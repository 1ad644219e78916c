// Package scrape turns editorial "best games" pages into ranked raw
// entries. Adapters are plain values registered in a static list; there is
// no runtime discovery.
package scrape

import (
	"context"
	"net/http"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
	"github.com/gruberb/game-compatibility-tracker/internal/config"
)

// userAgent mimics a desktop browser; several ranking pages refuse
// obviously non-browser clients.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Adapter produces the ranked entries for one editorial source.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context, client *http.Client) ([]aggregate.RawEntry, error)
}

// Registry builds the static adapter list from configuration. Each
// configured source becomes one selector-driven generic adapter.
func Registry(sources []config.Source) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(sources))
	for _, source := range sources {
		adapter, err := NewGeneric(source)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}
