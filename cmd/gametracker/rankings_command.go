package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gruberb/game-compatibility-tracker/internal/aggregate"
	"github.com/gruberb/game-compatibility-tracker/internal/pipeline"
)

func newRankingsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rankings",
		Short: "Show the merged rankings from the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := filepath.Join(cfg.Paths.DataDir, pipeline.MergedGamesFile)
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no merged rankings at %s; run `gametracker run` first", path)
				}
				return fmt.Errorf("read merged rankings: %w", err)
			}

			var records []aggregate.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse merged rankings: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No games in the last run")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderRankings(records))
			return nil
		},
	}
}

func renderRankings(records []aggregate.Record) string {
	sources := sourceNames(records)

	titleCaser := cases.Title(language.English)
	headers := []string{"Title"}
	aligns := []columnAlignment{alignLeft}
	for _, source := range sources {
		headers = append(headers, titleCaser.String(source))
		aligns = append(aligns, alignRight)
	}
	headers = append(headers, "Deck", "Score", "Price")
	aligns = append(aligns, alignLeft, alignRight, alignRight)

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := []string{record.Title}
		for _, source := range sources {
			if rank, ok := record.Rankings[source]; ok {
				row = append(row, strconv.Itoa(rank))
			} else {
				row = append(row, "-")
			}
		}
		row = append(row, record.Platforms.SteamDeck, formatScore(record.UserScore), record.Price)
		rows = append(rows, row)
	}

	return renderTable(headers, rows, aligns)
}

func sourceNames(records []aggregate.Record) []string {
	seen := make(map[string]struct{})
	var sources []string
	for _, record := range records {
		for source := range record.Rankings {
			if _, ok := seen[source]; !ok {
				seen[source] = struct{}{}
				sources = append(sources, source)
			}
		}
	}
	sort.Strings(sources)
	return sources
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", *score*100)
}
