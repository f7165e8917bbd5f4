package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/export"
	"github.com/octobees/leads-scraper/internal/scraper"
	"github.com/octobees/leads-scraper/internal/service"
)

type scrapeOptions struct {
	companyName string
}

type bulkOptions struct {
	outFile string
	csvFile string
}

type searchOptions struct {
	location string
	industry string
	limit    int
}

func newScrapeCmd() *cobra.Command {
	o := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape one company website and print its profile as JSON",
		Example: `  leadscrape scrape acme.com
  leadscrape scrape https://acme.com --name "Acme Inc"`,
		Args: cobra.ExactArgs(1),
		RunE: o.run,
	}
	cmd.Flags().StringVar(&o.companyName, "name", "", "company name override")
	return cmd
}

func newBulkCmd() *cobra.Command {
	o := &bulkOptions{}
	cmd := &cobra.Command{
		Use:   "bulk <file>",
		Short: "Scrape every website listed in a YAML or JSON file",
		Long: `bulk reads a list of targets and scrapes each of them. One failing
website never stops the batch; its error is reported in the results.

The file is either a list of {url, companyName} entries or an object
with a "websites" list of such entries.`,
		Example: `  leadscrape bulk targets.yaml --out results.json
  leadscrape bulk targets.json --concurrency 4 --csv leads.csv`,
		Args: cobra.ExactArgs(1),
		RunE: o.run,
	}
	cmd.Flags().StringVar(&o.outFile, "out", "", "write the JSON results to this file instead of stdout")
	cmd.Flags().StringVar(&o.csvFile, "csv", "", "also write successful records as a leads CSV")
	return cmd
}

func newSearchCmd() *cobra.Command {
	o := &searchOptions{}
	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Find companies through a search engine results page",
		Example: `  leadscrape search "dental clinics" --location Austin --limit 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    o.run,
	}
	cmd.Flags().StringVar(&o.location, "location", "", "location appended to the query")
	cmd.Flags().StringVar(&o.industry, "industry", "", "industry appended to the query")
	cmd.Flags().IntVar(&o.limit, "limit", scraper.DefaultSearchLimit, "maximum number of companies")
	return cmd
}

func (o *scrapeOptions) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := newFetcher()
	if err != nil {
		return err
	}
	record, err := scraper.NewScraper(fetcher, viper.GetDuration("timeout"), logger).Scrape(ctx, args[0], o.companyName)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), record)
}

func (o *bulkOptions) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := readTargetsFile(args[0])
	if err != nil {
		return err
	}
	fetcher, err := newFetcher()
	if err != nil {
		return err
	}

	runner := scraper.NewBulkRunner(
		scraper.NewScraper(fetcher, viper.GetDuration("timeout"), logger),
		scraper.WithConcurrency(viper.GetInt("concurrency")),
		scraper.WithLogger(logger),
	)
	result := runner.Run(ctx, targets)
	logger.Info("bulk finished", zap.Int("targets", len(targets)), zap.Int("succeeded", result.SuccessCount))

	if err := writeJSONTo(cmd.OutOrStdout(), o.outFile, result); err != nil {
		return err
	}
	if o.csvFile != "" {
		if err := writeLeadsCSV(ctx, o.csvFile, result.Records()); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d websites scraped\n", result.SuccessCount, len(targets))
	return nil
}

func (o *searchOptions) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := newFetcher()
	if err != nil {
		return err
	}
	searcher := scraper.NewSearcher(fetcher, scraper.DefaultSampleCompanies(), logger)
	result, err := searcher.Search(ctx, scraper.SearchQuery{
		Query:    joinArgs(args),
		Location: o.location,
		Industry: o.industry,
		Limit:    o.limit,
	})
	if err != nil {
		return err
	}
	if result.Fallback {
		fmt.Fprintln(cmd.ErrOrStderr(), "search page unavailable, showing sample companies")
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// writeLeadsCSV stores records the way the API would save them as leads.
func writeLeadsCSV(ctx context.Context, path string, records []scraper.CompanyRecord) (err error) {
	leadsSvc := service.NewLeadsService(nil, nil, service.NewLeadNormalizer(viper.GetString("phone_region")), logger)
	leads := make([]entity.Lead, 0, len(records))
	for _, rec := range records {
		lead, err := leadsSvc.LeadFromRecord(ctx, uuid.Nil, rec)
		if err != nil {
			logger.Warn("skip record in csv", zap.String("website", rec.Website), zap.Error(err))
			continue
		}
		leads = append(leads, lead)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close csv: %w", closeErr)
		}
	}()
	return export.WriteCSV(f, leads)
}

func writeJSONTo(stdout io.Writer, path string, v any) (err error) {
	if path == "" {
		return writeJSON(stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()
	return writeJSON(f, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
