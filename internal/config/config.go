// Package config loads and validates the gametracker configuration file.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Steam contains the Steam Web API and storefront endpoints. Empty values
// fall back to the public endpoints.
type Steam struct {
	APIBaseURL   string `toml:"api_base_url"`
	StoreBaseURL string `toml:"store_base_url"`
}

// RAWG contains configuration for the RAWG metadata API. The api key may
// also be supplied through the RAWG_API_KEY environment variable, which
// takes precedence over the file.
type RAWG struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// ProtonDB contains the ProtonDB endpoint configuration.
type ProtonDB struct {
	BaseURL string `toml:"base_url"`
}

// Matching contains identity-resolution tuning.
type Matching struct {
	FuzzyThreshold   float64 `toml:"fuzzy_threshold"`
	SpecialCasesPath string  `toml:"special_cases_path"`
}

// Source describes one editorial ranking page and how to pull ranked
// titles out of it.
type Source struct {
	Name          string `toml:"name"`
	URL           string `toml:"url"`
	ItemSelector  string `toml:"item_selector"`
	TitleSelector string `toml:"title_selector"`
	// Pattern optionally extracts rank and title from the item text, with
	// named groups `rank` and `title` (e.g. `^(?P<rank>\d+)\.\s*(?P<title>.+)$`).
	// Without a pattern the item position provides the rank.
	Pattern string `toml:"pattern"`
}

// Workflow contains politeness delays between network calls.
type Workflow struct {
	SourceDelaySeconds  int `toml:"source_delay_seconds"`
	RequestDelaySeconds int `toml:"request_delay_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gametracker.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Steam    Steam    `toml:"steam"`
	RAWG     RAWG     `toml:"rawg"`
	ProtonDB ProtonDB `toml:"protondb"`
	Matching Matching `toml:"matching"`
	Sources  []Source `toml:"sources"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gametracker/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gametracker.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return err
	}
	if c.Matching.SpecialCasesPath != "" {
		if c.Matching.SpecialCasesPath, err = expandPath(c.Matching.SpecialCasesPath); err != nil {
			return err
		}
	}

	if key := strings.TrimSpace(os.Getenv("RAWG_API_KEY")); key != "" {
		c.RAWG.APIKey = key
	}
	c.RAWG.APIKey = strings.TrimSpace(c.RAWG.APIKey)

	for i := range c.Sources {
		c.Sources[i].Name = strings.TrimSpace(c.Sources[i].Name)
		c.Sources[i].URL = strings.TrimSpace(c.Sources[i].URL)
	}
	return nil
}

// EnsureDirectories creates the data and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CachePath returns the location of the lookup cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.Paths.CacheDir, "gametracker.db")
}

// SpecialCases loads the alias table referenced by the config. A missing
// file yields an empty table; the alias table is optional.
func (c *Config) SpecialCases() (map[string]string, error) {
	path := strings.TrimSpace(c.Matching.SpecialCasesPath)
	if path == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read special cases: %w", err)
	}
	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse special cases: %w", err)
	}
	cases := make(map[string]string, len(raw))
	for alias, canonical := range raw {
		cases[strings.ToLower(alias)] = canonical
	}
	return cases, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
