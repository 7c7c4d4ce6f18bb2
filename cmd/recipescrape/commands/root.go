package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"recipescrape/lib/telemetry"
	"recipescrape/lib/util/serviceutil"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

const taskPrompt = "Choose a task to perform: \n 1 - Scrap recipes URL \n 2 - Scrap recipes ingredients"

var configPath *string
var verbose *bool

// loaded before any command runs
var cfg Config
var tel telemetry.Telemetry

func init() {
	configPath = rootCmd.PersistentFlags().String("config", defaultConfigName, "The configuration file to read.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enables debug logs.")
}

var rootCmd = &cobra.Command{
	Use:   "recipescrape",
	Short: "recipescrape scrapes recipe listings and ingredients from magimix.fr into csv files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "recipescrape")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}
		if tel.Enabled() {
			telemetry.InstrumentPerfStats(cmd.Context(), time.Second*15)
		}

		path := resolveConfigPath(*configPath, cmd.Flags().Changed("config"))
		cfg, err = LoadConfig(path)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		slog.Debug("loaded config", "path", path, "origin", cfg.Site.Origin, "workers", cfg.Workers)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ui := &input.UI{
			Reader: cmd.InOrStdin(),
			Writer: cmd.OutOrStdout(),
		}
		task, err := chooseTask(ui)
		if err != nil {
			serviceutil.Fatal("failed to read choice", err)
		}

		switch task {
		case taskListing:
			err = runListing(cmd.Context(), cmd.OutOrStdout(), cfg)
			if err != nil {
				serviceutil.Fatal("failed to scrape listing", err)
			}
		case taskDetails:
			err = runDetails(cmd.Context(), cmd.OutOrStdout(), cfg)
			if err != nil {
				serviceutil.Fatal("failed to scrape details", err)
			}
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Invalid input")
		}
	},
}

type task int

const (
	taskNone task = iota
	taskListing
	taskDetails
)

func parseTask(choice string) task {
	switch strings.TrimSpace(choice) {
	case "1":
		return taskListing
	case "2":
		return taskDetails
	}
	return taskNone
}

func chooseTask(ui *input.UI) (task, error) {
	choice, err := ui.Ask(taskPrompt, &input.Options{
		HideOrder: true,
	})
	if err != nil {
		return taskNone, err
	}
	return parseTask(choice), nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
