package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gruberb/game-compatibility-tracker/internal/catalog"
	"github.com/gruberb/game-compatibility-tracker/internal/gamecache"
	"github.com/gruberb/game-compatibility-tracker/internal/steam"
	"github.com/gruberb/game-compatibility-tracker/internal/title"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Steam catalog cache utilities",
	}

	catalogCmd.AddCommand(newCatalogStatusCommand(ctx))
	catalogCmd.AddCommand(newCatalogRefreshCommand(ctx))

	return catalogCmd
}

func newCatalogStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cached catalog size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := gamecache.Open(cfg.CachePath())
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.CatalogCount(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", store.Path())
			if count == 0 {
				fmt.Fprintln(out, "No catalog snapshot; the next run will download the app list")
				return nil
			}
			fmt.Fprintf(out, "Catalog entries: %d\n", count)
			return nil
		},
	}
}

func newCatalogRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-download the Steam app list into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			lock, err := gamecache.AcquireLock(cfg.CachePath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := gamecache.Open(cfg.CachePath())
			if err != nil {
				return err
			}
			defer store.Close()

			specialCases, err := cfg.SpecialCases()
			if err != nil {
				return err
			}

			client := steam.New(
				steam.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
				steam.WithBaseURLs(cfg.Steam.APIBaseURL, cfg.Steam.StoreBaseURL),
			)
			entries, err := client.AppList(cmd.Context())
			if err != nil {
				return fmt.Errorf("download app list: %w", err)
			}

			index := catalog.BuildIndex(entries, title.NewNormalizer(specialCases), logger)
			if err := store.ClearCatalog(cmd.Context()); err != nil {
				return err
			}
			if err := store.SaveCatalog(cmd.Context(), index.Pairs()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cached %d catalog entries\n", index.Len())
			return nil
		},
	}
}
