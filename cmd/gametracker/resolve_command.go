package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gruberb/game-compatibility-tracker/internal/catalog"
	"github.com/gruberb/game-compatibility-tracker/internal/gamecache"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <title>",
		Short: "Show how a scraped title resolves against the Steam catalog",
		Long: `Resolve a single title without running the pipeline. Shows the
normalized form, which lookup strategy matched (exact, normalized, fuzzy),
the catalog app id, and the similarity score. Useful for troubleshooting
titles that end up in unmatched_games.txt.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			specialCases, err := cfg.SpecialCases()
			if err != nil {
				return err
			}
			normalizer := title.NewNormalizer(specialCases)

			store, err := gamecache.Open(cfg.CachePath())
			if err != nil {
				return err
			}
			defer store.Close()

			pairs, err := store.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return fmt.Errorf("catalog cache is empty; run `gametracker catalog refresh` first")
			}

			index := catalog.IndexFromPairs(pairs)
			resolver := catalog.NewResolver(index, normalizer, cfg.Matching.FuzzyThreshold, logger)

			raw := strings.Join(args, " ")
			match := resolver.Match(raw)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:      %s\n", raw)
			fmt.Fprintf(out, "Normalized: %s\n", match.Normalized)
			switch match.Kind {
			case catalog.MatchNone:
				fmt.Fprintf(out, "Match:      none (best score %.3f, threshold %.2f)\n",
					match.Score, cfg.Matching.FuzzyThreshold)
			case catalog.MatchFuzzy:
				fmt.Fprintf(out, "Match:      fuzzy against %q (score %.3f)\n", match.Key, match.Score)
				fmt.Fprintf(out, "App ID:     %d\n", match.ID)
			default:
				fmt.Fprintf(out, "Match:      %s\n", match.Kind)
				fmt.Fprintf(out, "App ID:     %d\n", match.ID)
			}
			return nil
		},
	}
}
