// File: cmd/scrape.go
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/icesdict/dictscraper/internal/browser"
	"github.com/icesdict/dictscraper/internal/config"
	"github.com/icesdict/dictscraper/internal/observability"
	"github.com/icesdict/dictscraper/internal/portal"
	"github.com/icesdict/dictscraper/internal/reporting"
	"github.com/icesdict/dictscraper/internal/scraper"
)

// newScrapeCmd creates and configures the `scrape` command.
func newScrapeCmd() *cobra.Command {
	scrapeCmd := &cobra.Command{
		Use:   "scrape <library_name> <dataset_name>",
		Short: "Scrapes the schema of one dataset and writes it as CSV",
		Long: `Scrapes the variable metadata (schema) of a single dataset from the
ICES Data Dictionary portal and writes one CSV row per variable.

The library name must be one of the portal's library categories (see
portal.libraries in the configuration). The dataset name must match the
dataset link's text in the library listing exactly.`,
		Example: `  dictscraper scrape DAD "a. DADyyyy: Discharge Abstract Database -DAD"
  dictscraper scrape DAD "a. DADyyyy: Discharge Abstract Database -DAD" --date 2025-01-15
  dictscraper scrape DAD "a. DADyyyy: Discharge Abstract Database -DAD" -o custom_output.csv
  dictscraper scrape DAD "a. DADyyyy: Discharge Abstract Database -DAD" --headed`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags so CLI values override config file and env vars.
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			date, _ := cmd.Flags().GetString("date")
			output, _ := cmd.Flags().GetString("output")
			headed, _ := cmd.Flags().GetBool("headed")

			// All input validation happens here, before any browser process
			// is started: unknown libraries and malformed dates fail fast.
			scrape, err := buildScrapeConfig(cfg, args[0], args[1], date, output, headed, time.Now())
			if err != nil {
				return err
			}
			cfg.Scrape = scrape
			if scrape.Headed {
				cfg.Browser.Headless = false
			}

			runID := uuid.New().String()
			logger.Info("Starting scrape",
				zap.String("run_id", runID),
				zap.String("library", scrape.Library),
				zap.String("dataset", scrape.Dataset),
				zap.String("date", scrape.Date),
				zap.String("output", scrape.Output),
				zap.Bool("headed", scrape.Headed),
			)

			sess, err := browser.NewSession(ctx, cfg.Browser, logger)
			if err != nil {
				return fmt.Errorf("failed to establish browser session: %w", err)
			}
			defer sess.Close()

			reporter, err := reporting.New("csv", scrape.Output)
			if err != nil {
				return fmt.Errorf("failed to initialize reporter: %w", err)
			}
			defer func() {
				if err := reporter.Close(); err != nil {
					logger.Error("Failed to close reporter", zap.Error(err))
				}
			}()

			client := portal.NewClient(sess, cfg.Portal, scrape.Library, scrape.Dataset, logger)

			opts := []scraper.Option{}
			if sp := newProgressSpinner(scrape); sp != nil {
				sp.Start()
				defer sp.Stop()
				opts = append(opts, scraper.WithProgress(func(done, total int, name string) {
					sp.Suffix = fmt.Sprintf(" scraping variables %d/%d (%s)", done, total, name)
				}))
			}

			count, err := scraper.New(client, reporter, logger, opts...).Run(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("\nScrape complete. %d variables written to %s\n", count, scrape.Output)
			return nil
		},
	}

	scrapeCmd.Flags().StringP("date", "d", "", "Date in ISO format (YYYY-MM-DD). Defaults to today.")
	scrapeCmd.Flags().StringP("output", "o", "", "Output CSV file path. Defaults to {library}__{dataset}__{date}.csv")
	scrapeCmd.Flags().Bool("headed", false, "Run the browser in headed mode (visible). Default is headless.")

	return scrapeCmd
}

// buildScrapeConfig validates the scrape inputs and resolves the defaults
// for date and output path. It never touches the network.
func buildScrapeConfig(cfg *config.Config, library, dataset, rawDate, output string, headed bool, now time.Time) (config.ScrapeConfig, error) {
	var none config.ScrapeConfig

	if !cfg.KnownLibrary(library) {
		return none, fmt.Errorf("unknown library %q (known libraries: %s)",
			library, strings.Join(cfg.Portal.Libraries, ", "))
	}

	date := now.Format(time.DateOnly)
	if rawDate != "" {
		parsed, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			return none, fmt.Errorf("invalid date %q: use YYYY-MM-DD format", rawDate)
		}
		date = parsed.Format(time.DateOnly)
	}

	if output == "" {
		output = defaultOutputPath(library, dataset, date)
	}

	return config.ScrapeConfig{
		Library: library,
		Dataset: dataset,
		Date:    date,
		Output:  output,
		Headed:  headed,
	}, nil
}

// defaultOutputPath derives the CSV filename from the scrape inputs.
func defaultOutputPath(library, dataset, date string) string {
	return fmt.Sprintf("%s__%s__%s.csv", library, sanitizeForFilename(dataset), date)
}

// filenameSanitizer rewrites characters dataset names commonly contain but
// filenames should not.
var filenameSanitizer = strings.NewReplacer(
	" ", "-",
	":", "-",
	"/", "-",
	`\`, "-",
)

func sanitizeForFilename(s string) string {
	return filenameSanitizer.Replace(s)
}

// newProgressSpinner returns a terminal spinner for the per-variable loop,
// or nil when the CSV itself goes to stdout and would collide with it.
func newProgressSpinner(scrape config.ScrapeConfig) *spinner.Spinner {
	if scrape.Output == "" || scrape.Output == "stdout" {
		return nil
	}
	sp := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	sp.Suffix = " scraping variables..."
	return sp
}
