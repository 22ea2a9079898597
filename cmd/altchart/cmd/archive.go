package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/rustyeddy/altchart/archive"
	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/internal/logger"
	"github.com/rustyeddy/altchart/source"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the local SQLite candle archive",
	Long: `Store candles locally so charts can be rebuilt without the API.

Subcommands:
  import - Copy candles from a CSV file or the configured source
  list   - Show archived tickers, or the import history of one ticker

Examples:
  altchart archive import BTC-USD --csv btc.csv.gz
  altchart archive import AAPL --period 1y
  altchart archive list
  altchart archive list AAPL
  altchart transcode --source sqlite --ticker AAPL`,
}

var archiveImportCmd = &cobra.Command{
	Use:   "import <ticker>",
	Short: "Import candles for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveImport,
}

var archiveListCmd = &cobra.Command{
	Use:   "list [ticker]",
	Short: "List archived tickers or imports",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runArchiveList,
}

var (
	archiveDBPath string
	archiveCSV    string
	archivePeriod string
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveImportCmd)
	archiveCmd.AddCommand(archiveListCmd)

	archiveCmd.PersistentFlags().StringVarP(&archiveDBPath, "db", "d", "", "path to SQLite archive (default from config)")
	archiveImportCmd.Flags().StringVar(&archiveCSV, "csv", "", "CSV file to import instead of fetching from the configured source")
	archiveImportCmd.Flags().StringVarP(&archivePeriod, "period", "p", "", "period to fetch from the configured source")
}

func openArchive(cmd *cobra.Command) (*archive.SQLite, error) {
	path := cfg.Archive.DBPath
	if cmd.Flags().Changed("db") {
		path = archiveDBPath
	}
	a, err := archive.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return a, nil
}

func runArchiveImport(cmd *cobra.Command, args []string) error {
	ticker := args[0]
	ctx := cmd.Context()

	var src source.CandleSource
	origin := archiveCSV
	if archiveCSV != "" {
		src = &source.CSVSource{Path: archiveCSV}
	} else {
		if cfg.Source.Type == source.TypeSQLite {
			return fmt.Errorf("archive import needs --csv or an http source")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		s, closeSrc, err := openSource(cfg)
		if err != nil {
			return err
		}
		defer closeSrc()
		src = s
		origin = fmt.Sprintf("%s %s", cfg.Source.Type, cfg.Source.BaseURL)
	}

	period := cfg.Source.Period
	if cmd.Flags().Changed("period") {
		period = archivePeriod
	}
	candles, err := src.Candles(ctx, source.Query{Ticker: ticker, Period: period})
	if err != nil {
		return fmt.Errorf("load %s: %w", ticker, err)
	}
	if cfg.Source.DropInvalid {
		candles = chart.Clean(candles)
	}

	a, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	imp, err := a.Import(ctx, ticker, origin, candles)
	if err != nil {
		return fmt.Errorf("import %s: %w", ticker, err)
	}
	log.Info("archived candles",
		logger.F("import_id", imp.ImportID),
		logger.F("ticker", imp.Ticker),
		logger.F("rows", imp.Rows))

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d candles for %s (%s)\n", imp.Rows, imp.Ticker, imp.ImportID)
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	a, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if len(args) == 1 {
		imports, err := a.Imports(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("query imports: %w", err)
		}
		fmt.Fprintln(tw, "IMPORT\tROWS\tIMPORTED\tORIGIN")
		for _, imp := range imports {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", imp.ImportID, imp.Rows, imp.ImportedAt.Format("2006-01-02 15:04:05"), imp.Origin)
		}
		return nil
	}

	sums, err := a.Tickers(cmd.Context())
	if err != nil {
		return fmt.Errorf("query tickers: %w", err)
	}
	fmt.Fprintln(tw, "TICKER\tROWS\tFIRST\tLAST")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Ticker, s.Rows, chart.FormatDate(s.First), chart.FormatDate(s.Last))
	}
	return nil
}
