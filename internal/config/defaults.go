package config

// Default returns the built-in configuration values applied before the
// config file is decoded over them.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  "~/.local/share/gametracker/data",
			CacheDir: "~/.cache/gametracker",
		},
		Matching: Matching{
			FuzzyThreshold: 0.90,
		},
		Workflow: Workflow{
			SourceDelaySeconds:  2,
			RequestDelaySeconds: 1,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}
