package cmd

import (
	"fmt"

	"github.com/rustyeddy/altchart/config"
	"github.com/rustyeddy/altchart/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "altchart",
	Short: "Transcode OHLC candles into Renko, Kagi, Point & Figure and range bar charts",
	Long: `Altchart converts a chronological series of OHLC candles into one of four
alternative chart representations:

  - renko: fixed-size bricks driven by closing prices
  - kagi:  trend lines that flip on a reversal amount
  - pnf:   Point & Figure X/O columns
  - range: bars that close once their high-low span reaches a size

Candles come from the analytics HTTP API, a CSV file or the local SQLite
archive. Results print as a table or export as JSON, CSV or Parquet.

Examples:
  altchart transcode --ticker BTC-USD --kind renko
  altchart transcode --csv candles.csv --all --format json
  altchart watch --ticker ETH-USD --kind kagi`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
	log *logger.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults plus ALTCHART_* env when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// loadConfig resolves the configuration and builds the logger every
// command shares. Validation is left to each command so that its flags
// can fill in what the file and environment leave out.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Resolve(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}

	l, err := logger.New(logger.Options{
		Level:    logger.ParseLevel(c.Log.Level),
		Encoding: c.Log.Encoding,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	cfg, log = c, l
	return nil
}

// skipConfig replaces the root pre-run for commands that must work without
// a valid configuration.
func skipConfig(cmd *cobra.Command, args []string) error { return nil }
