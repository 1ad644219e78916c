package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration values for consistency. Validation is
// intentionally light; a missing RAWG key only disables RAWG enrichment
// and is reported by the pipeline, not here.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return fmt.Errorf("paths.cache_dir must not be empty")
	}
	if c.Matching.FuzzyThreshold <= 0 || c.Matching.FuzzyThreshold > 1 {
		return fmt.Errorf("matching.fuzzy_threshold must be in (0, 1], got %v", c.Matching.FuzzyThreshold)
	}
	if c.Workflow.SourceDelaySeconds < 0 || c.Workflow.RequestDelaySeconds < 0 {
		return fmt.Errorf("workflow delays must not be negative")
	}

	seen := map[string]struct{}{}
	for i, source := range c.Sources {
		if source.Name == "" {
			return fmt.Errorf("sources[%d].name must not be empty", i)
		}
		if _, dup := seen[source.Name]; dup {
			return fmt.Errorf("sources[%d].name %q duplicates an earlier source", i, source.Name)
		}
		seen[source.Name] = struct{}{}
		if source.URL == "" {
			return fmt.Errorf("source %q: url must not be empty", source.Name)
		}
		if strings.TrimSpace(source.ItemSelector) == "" {
			return fmt.Errorf("source %q: item_selector must not be empty", source.Name)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
