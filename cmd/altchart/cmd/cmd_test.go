package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rustyeddy/altchart/archive"
	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/config"
	"github.com/rustyeddy/altchart/export"
	"github.com/rustyeddy/altchart/feed"
	"github.com/rustyeddy/altchart/internal/logger"
	"github.com/rustyeddy/altchart/source"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const candlesCSV = `date,open,high,low,close,volume
2024-01-01,100,101,99,100,10
2024-01-02,100,103,100,102.5,11
2024-01-03,102.5,106,102,105,12
2024-01-04,105,105,99,100,13
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(candlesCSV), 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "btc.parquet", outputPath("btc.parquet", chart.KindRenko, false))
	assert.Equal(t, "out/btc.renko.parquet", outputPath("out/btc.parquet", chart.KindRenko, true))
	assert.Equal(t, "series.pnf", outputPath("series", chart.KindPointFigure, true))
}

func TestOpenSource(t *testing.T) {
	t.Parallel()

	c := config.Default()
	src, closer, err := openSource(c)
	require.NoError(t, err)
	require.NoError(t, closer())
	assert.IsType(t, &source.HTTPSource{}, src)

	c.Source.Type = source.TypeCSV
	_, _, err = openSource(c)
	assert.Error(t, err)

	c.Source.CSVFile = writeCSV(t)
	src, _, err = openSource(c)
	require.NoError(t, err)
	candles, err := src.Candles(context.Background(), source.Query{})
	require.NoError(t, err)
	assert.Len(t, candles, 4)

	c.Source.Type = source.TypeSQLite
	c.Archive.DBPath = filepath.Join(t.TempDir(), "a.sqlite")
	src, closer, err = openSource(c)
	require.NoError(t, err)
	assert.IsType(t, &archive.SQLite{}, src)
	require.NoError(t, closer())

	c.Source.Type = "ftp"
	_, _, err = openSource(c)
	assert.Error(t, err)
}

func TestJobRunAllKinds(t *testing.T) {
	t.Parallel()

	src := &source.CSVSource{Path: writeCSV(t)}
	w, err := export.New("csv")
	require.NoError(t, err)

	j := &job{
		src:     src,
		query:   source.Query{Ticker: "TEST"},
		kinds:   chart.Kinds,
		params:  chart.DefaultParams(),
		display: config.Default().Display,
		limit:   -1,
		writer:  w,
	}

	var buf bytes.Buffer
	require.NoError(t, j.run(context.Background(), &buf, logger.Nop()))

	out := buf.String()
	assert.Contains(t, out, "index,price,direction,low,high")
	assert.Contains(t, out, "index,price,trend")
	assert.Contains(t, out, "column,price,type,index")
	assert.Contains(t, out, "index,open,high,low,close,count")
}

func TestJobRunLimitAndFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := export.New("csv")
	require.NoError(t, err)

	j := &job{
		src:    &source.CSVSource{Path: writeCSV(t)},
		kinds:  []chart.Kind{chart.KindRenko, chart.KindKagi},
		params: chart.DefaultParams(),
		limit:  1,
		writer: w,
		output: filepath.Join(dir, "out.csv"),
	}
	require.NoError(t, j.run(context.Background(), &bytes.Buffer{}, logger.Nop()))

	data, err := os.ReadFile(filepath.Join(dir, "out.renko.csv"))
	require.NoError(t, err)
	recs, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	// header plus the newest brick only
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"3", "100", "down", "98", "100"}, recs[1])

	_, err = os.Stat(filepath.Join(dir, "out.kagi.csv"))
	assert.NoError(t, err)
}

func TestJobRunEmptySource(t *testing.T) {
	t.Parallel()

	empty := source.Func(func(context.Context, source.Query) ([]chart.Candle, error) {
		return nil, nil
	})
	w, err := export.New("table")
	require.NoError(t, err)

	j := &job{
		src:    empty,
		query:  source.Query{Ticker: "TEST"},
		kinds:  []chart.Kind{chart.KindRenko},
		params: chart.DefaultParams(),
		limit:  -1,
		writer: w,
	}

	var buf bytes.Buffer
	err = j.run(context.Background(), &buf, logger.Nop())
	assert.ErrorIs(t, err, chart.ErrEmptyInput)
	assert.Empty(t, buf.String())

	core, logs := observer.New(zapcore.DebugLevel)
	wt := &watcher{job: j, log: logger.FromZap(zap.New(core))}
	c := &cobra.Command{}
	c.SetOut(&buf)
	wt.render(context.Background(), c)

	warns := logs.FilterMessage("nothing to render").All()
	require.Len(t, warns, 1)
	assert.Equal(t, zapcore.WarnLevel, warns[0].Level)
	assert.Equal(t, "TEST", warns[0].ContextMap()["ticker"])
	assert.NotEmpty(t, warns[0].ContextMap()["run_id"])
	assert.Empty(t, buf.String())
}

func TestJobValidatesParams(t *testing.T) {
	t.Parallel()

	f := chartFlags{kind: "pnf", format: "table"}

	c := config.Default()
	c.Chart.BoxSize = 0
	_, err := f.job(transcodeCmd, c, nil)
	assert.ErrorIs(t, err, chart.ErrInvalidParameter)

	f = chartFlags{kind: "renko", format: "parquet"}
	_, err = f.job(transcodeCmd, config.Default(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")

	f = chartFlags{kind: "heikin", format: "table"}
	_, err = f.job(transcodeCmd, config.Default(), nil)
	assert.Error(t, err)
}

func TestTranscodeCommand(t *testing.T) {
	path := writeCSV(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"transcode", "--log-level", "error",
		"--csv", path, "--kind", "range", "--range-size", "2", "--flush", "--format", "json"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, Execute())
	assert.Contains(t, buf.String(), `"kind": "range"`)
	assert.Contains(t, buf.String(), `"count"`)
}

func TestTranscodeCSVFlagOverridesEnv(t *testing.T) {
	// the environment names a csv source without a file; --csv supplies it
	t.Setenv("ALTCHART_SOURCE_TYPE", "csv")
	path := writeCSV(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"transcode", "--log-level", "error",
		"--csv", path, "--kind", "renko", "--brick-size", "2", "--format", "csv", "--limit", "0"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, Execute())
	assert.Contains(t, buf.String(), "index,price,direction,low,high")
	assert.Equal(t, source.TypeCSV, cfg.Source.Type)
	assert.Equal(t, path, cfg.Source.CSVFile)
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "altchart.yaml")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", "init", "-o", path})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, Execute())
	assert.Contains(t, buf.String(), "Created default configuration")

	c, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.Display.Renko)
}

func TestWatcherRefreshesOnEvents(t *testing.T) {
	t.Parallel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, ev := range []string{
			`{"id":"1","ticker":"TEST","type":"price_change","positive":true}`,
			`{"id":"2","ticker":"OTHER","type":"price_change","positive":true}`,
			`{"id":"3","ticker":"TEST","type":"price_change","positive":false}`,
		} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(ev)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	csvSrc := &source.CSVSource{Path: writeCSV(t)}
	var loads atomic.Int32
	src := source.Func(func(_ context.Context, q source.Query) ([]chart.Candle, error) {
		if loads.Add(1) == 2 {
			cancel()
		}
		return csvSrc.Candles(context.Background(), q)
	})

	w, err := export.New("table")
	require.NoError(t, err)

	client := feed.NewClient("ws" + strings.TrimPrefix(srv.URL, "http"))
	client.Filter = feed.Filter{Ticker: "TEST"}

	wt := &watcher{
		job: &job{
			src:    src,
			query:  source.Query{Ticker: "TEST"},
			kinds:  []chart.Kind{chart.KindRenko},
			params: chart.DefaultParams(),
			writer: w,
		},
		client:   client,
		debounce: 20 * time.Millisecond,
		log:      logger.Nop(),
	}

	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	require.NoError(t, wt.watch(ctx, c))

	assert.GreaterOrEqual(t, loads.Load(), int32(2))
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "# TEST renko"), 2)
	assert.GreaterOrEqual(t, wt.stats.Total, 1)
}

func TestReplayCommand(t *testing.T) {
	path := writeCSV(t)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"replay", "--log-level", "error",
		"--csv", path, "--kind", "renko", "--brick-size", "2", "--quiet"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	require.NoError(t, Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "date index price direction low high", lines[0])
	assert.Equal(t, "2024-01-02 1 102 up 102 104", lines[1])
	assert.Equal(t, "2024-01-04 3 100 down 98 100", lines[4])
}
