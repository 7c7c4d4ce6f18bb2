package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"recipescrape/lib/recipecsv"
	"recipescrape/lib/recipedb"
	"recipescrape/lib/scrapers/magimix"
	"recipescrape/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var detailsIn *string
var detailsOut *string
var detailsDb *string
var detailsWorkers *int

func init() {
	detailsIn = detailsCmd.Flags().String("in", "", "The listing csv to read recipe urls from, overrides storage.listing_file.")
	detailsOut = detailsCmd.Flags().String("out", "", "The csv file to write ingredients to, overrides storage.details_file.")
	detailsDb = detailsCmd.Flags().String("db", "", "A sqlite database to mirror the results into.")
	detailsWorkers = detailsCmd.Flags().Int("workers", 0, "The amount of recipes fetched concurrently, overrides workers.")
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details [--in <path/to/recipes_url.csv>] [--out <path/to/recipes_ingredients.csv>] [--db <path/to/recipes.db>] [--workers <n>]",
	Short: "Scrapes the ingredients and timings of every recipe in a listing csv.",
	Run: func(cmd *cobra.Command, args []string) {
		runCfg, err := withOverrides(cfg, cmd, *detailsWorkers, *detailsDb)
		if err != nil {
			serviceutil.Fatal("invalid flags", err)
		}
		if *detailsIn != "" {
			runCfg.Storage.ListingFile = *detailsIn
		}
		if *detailsOut != "" {
			runCfg.Storage.DetailsFile = *detailsOut
		}

		err = runDetails(cmd.Context(), cmd.OutOrStdout(), runCfg)
		if err != nil {
			serviceutil.Fatal("failed to scrape details", err)
		}
	},
}

func runDetails(ctx context.Context, out io.Writer, cfg Config) error {
	listing, err := recipecsv.ReadListing(cfg.Storage.ListingFile)
	if err != nil {
		return err
	}
	refs := make([]magimix.RecipeRef, len(listing))
	for i, r := range listing {
		refs[i] = r.Ref()
	}
	slog.Info("read listing", "path", cfg.Storage.ListingFile, "recipes", len(refs))

	client, err := cfg.newScraper()
	if err != nil {
		return err
	}
	result, err := client.ScrapeDetails(ctx, refs)
	if err != nil {
		return err
	}

	err = recipecsv.WriteDetails(cfg.Storage.DetailsFile, result.Records)
	if err != nil {
		return err
	}
	slog.Info("wrote details", "path", cfg.Storage.DetailsFile, "recipes", len(result.Records))

	if cfg.Storage.Database.Enabled() {
		store, err := recipedb.Open(ctx, cfg.Storage.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
		err = store.SaveDetails(ctx, result.Records)
		if err != nil {
			return fmt.Errorf("save details: %w", err)
		}
	}

	renderDetailsReport(out, cfg.Storage.DetailsFile, result)
	return nil
}
