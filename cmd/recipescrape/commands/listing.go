package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"recipescrape/lib/recipecsv"
	"recipescrape/lib/recipedb"
	"recipescrape/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var listingOut *string
var listingDb *string
var listingWorkers *int

func init() {
	listingOut = listingCmd.Flags().String("out", "", "The csv file to write recipe urls to, overrides storage.listing_file.")
	listingDb = listingCmd.Flags().String("db", "", "A sqlite database to mirror the results into.")
	listingWorkers = listingCmd.Flags().Int("workers", 0, "The amount of pages fetched concurrently, overrides workers.")
	rootCmd.AddCommand(listingCmd)
}

var listingCmd = &cobra.Command{
	Use:   "listing [--out <path/to/recipes_url.csv>] [--db <path/to/recipes.db>] [--workers <n>]",
	Short: "Crawls every listing page and writes the recipe urls to a csv file.",
	Run: func(cmd *cobra.Command, args []string) {
		runCfg, err := withOverrides(cfg, cmd, *listingWorkers, *listingDb)
		if err != nil {
			serviceutil.Fatal("invalid flags", err)
		}
		if *listingOut != "" {
			runCfg.Storage.ListingFile = *listingOut
		}

		err = runListing(cmd.Context(), cmd.OutOrStdout(), runCfg)
		if err != nil {
			serviceutil.Fatal("failed to scrape listing", err)
		}
	},
}

func withOverrides(base Config, cmd *cobra.Command, workers int, db string) (Config, error) {
	if cmd.Flags().Changed("workers") {
		if workers < 1 {
			return base, fmt.Errorf("--workers must be at least 1, got %d", workers)
		}
		base.Workers = workers
	}
	if db != "" {
		base.Storage.Database = recipedb.Config{File: db}
	}
	return base, nil
}

func runListing(ctx context.Context, out io.Writer, cfg Config) error {
	client, err := cfg.newScraper()
	if err != nil {
		return err
	}

	result, err := client.ScrapeListing(ctx)
	if err != nil {
		return err
	}

	err = recipecsv.WriteListing(cfg.Storage.ListingFile, result.Records)
	if err != nil {
		return err
	}
	slog.Info("wrote listing", "path", cfg.Storage.ListingFile, "recipes", len(result.Records))

	if cfg.Storage.Database.Enabled() {
		store, err := recipedb.Open(ctx, cfg.Storage.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
		err = store.SaveListing(ctx, result.Records)
		if err != nil {
			return fmt.Errorf("save listing: %w", err)
		}
	}

	renderListingReport(out, cfg.Storage.ListingFile, result)
	return nil
}
