package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("exists=true want false")
	}
	if cfg.Matching.FuzzyThreshold != 0.90 {
		t.Fatalf("FuzzyThreshold=%v want 0.90", cfg.Matching.FuzzyThreshold)
	}
	if cfg.Workflow.SourceDelaySeconds != 2 {
		t.Fatalf("SourceDelaySeconds=%d want 2", cfg.Workflow.SourceDelaySeconds)
	}
}

func TestLoadParsesSources(t *testing.T) {
	path := writeConfig(t, `
[matching]
fuzzy_threshold = 0.85

[[sources]]
name = "pcgamer"
url = "https://example.com/best"
item_selector = "h2"
pattern = '^(?P<rank>\d+)\.\s*(?P<title>.+)$'
`)
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatalf("exists=false want true")
	}
	if cfg.Matching.FuzzyThreshold != 0.85 {
		t.Fatalf("FuzzyThreshold=%v want 0.85", cfg.Matching.FuzzyThreshold)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "pcgamer" {
		t.Fatalf("Sources=%+v", cfg.Sources)
	}
}

func TestLoadRejectsInvalidThreshold(t *testing.T) {
	path := writeConfig(t, `
[matching]
fuzzy_threshold = 1.5
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for threshold 1.5")
	}
}

func TestLoadRejectsDuplicateSourceNames(t *testing.T) {
	path := writeConfig(t, `
[[sources]]
name = "a"
url = "https://example.com/1"
item_selector = "h2"

[[sources]]
name = "a"
url = "https://example.com/2"
item_selector = "h2"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for duplicate source names")
	}
}

func TestRAWGKeyEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[rawg]
api_key = "from-file"
`)
	t.Setenv("RAWG_API_KEY", "from-env")

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RAWG.APIKey != "from-env" {
		t.Fatalf("APIKey=%q want from-env", cfg.RAWG.APIKey)
	}
}

func TestSpecialCasesLowercasesKeys(t *testing.T) {
	dir := t.TempDir()
	aliasPath := filepath.Join(dir, "special_cases.json")
	if err := os.WriteFile(aliasPath, []byte(`{"GTA V": "Grand Theft Auto V"}`), 0o644); err != nil {
		t.Fatalf("write aliases: %v", err)
	}

	cfg := Default()
	cfg.Matching.SpecialCasesPath = aliasPath

	cases, err := cfg.SpecialCases()
	if err != nil {
		t.Fatalf("SpecialCases: %v", err)
	}
	if cases["gta v"] != "Grand Theft Auto V" {
		t.Fatalf("cases=%v want lowercased key", cases)
	}
}

func TestSpecialCasesMissingFileIsEmpty(t *testing.T) {
	cfg := Default()
	cfg.Matching.SpecialCasesPath = filepath.Join(t.TempDir(), "nope.json")

	cases, err := cfg.SpecialCases()
	if err != nil {
		t.Fatalf("SpecialCases: %v", err)
	}
	if len(cases) != 0 {
		t.Fatalf("cases=%v want empty", cases)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
}
