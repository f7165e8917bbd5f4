// Package cli implements the leadscrape command line tool.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/logging"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()

	// newFetcher builds the page fetcher from the resolved settings. Tests replace it.
	newFetcher = func() (fetch.Fetcher, error) {
		return fetch.New(viper.GetString("backend"), fetch.Options{
			UserAgent:  viper.GetString("user_agent"),
			Timeout:    viper.GetDuration("timeout"),
			IdleWindow: viper.GetDuration("idle_window"),
			Headless:   true,
			BrowserBin: viper.GetString("browser_bin"),
			NoSandbox:  viper.GetBool("no_sandbox"),
		}, viper.GetString("worker_url"))
	}
)

var rootCmd = &cobra.Command{
	Use:   "leadscrape",
	Short: "Scrape B2B company profiles from their websites",
	Long: `leadscrape renders company websites in a headless browser and extracts
a best-effort company profile: name, description, industry, size, address,
contacts and social links.

Settings come from flags, LEADSCRAPE_* environment variables and an optional
YAML config file, in that order of priority.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if viper.GetBool("verbose") {
			level = "debug"
		}
		l, err := logging.New(level)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./leadscrape.yaml)")
	flags.String("backend", fetch.BackendRod, "fetch backend: rod, chromedp or remote")
	flags.Duration("timeout", fetch.DefaultTimeout, "navigation timeout per page")
	flags.Int("concurrency", 1, "pages scraped at once by bulk")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	for _, name := range []string{"backend", "timeout", "concurrency", "verbose"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.SetDefault("idle_window", 500*time.Millisecond)
	viper.SetDefault("no_sandbox", true)

	rootCmd.AddCommand(newScrapeCmd(), newBulkCmd(), newSearchCmd())
}

// initConfig reads the config file and LEADSCRAPE_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("leadscrape")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("LEADSCRAPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
