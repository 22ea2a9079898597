package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rustyeddy/altchart/chart"
)

// DefaultPath is the asset endpoint of the analytics API. The legacy
// "/api/sp500/stock" path serves the same payload.
const DefaultPath = "/api/crypto/asset"

// HTTPSource fetches candles from the analytics API:
//
//	GET {BaseURL}{Path}/{ticker}?period={period}
//
// which answers {"ticker": ..., "data": [candle...], "period": ..., "total_records": n}.
type HTTPSource struct {
	BaseURL string
	Path    string // defaults to DefaultPath
	HTTP    *http.Client
}

type assetResp struct {
	Ticker       string         `json:"ticker"`
	Data         []chart.Candle `json:"data"`
	Period       string         `json:"period"`
	TotalRecords int            `json:"total_records"`
}

// Candles implements CandleSource.
func (s *HTTPSource) Candles(ctx context.Context, q Query) ([]chart.Candle, error) {
	if s.BaseURL == "" {
		return nil, fmt.Errorf("http source: missing base url")
	}
	ticker := strings.TrimSpace(q.Ticker)
	if ticker == "" {
		return nil, fmt.Errorf("http source: missing ticker")
	}
	if q.Period != "" {
		if err := ValidatePeriod(q.Period); err != nil {
			return nil, fmt.Errorf("http source: %w", err)
		}
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("http source: %w", err)
	}
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	u = u.JoinPath(path, ticker)

	if q.Period != "" {
		v := u.Query()
		v.Set("period", q.Period)
		u.RawQuery = v.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	httpClient := s.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http source %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("http source %s: %w", ticker, ErrTickerNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("http source %s: http %d: %s", ticker, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var ar assetResp
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("http source %s: decode: %w", ticker, err)
	}
	return ar.Data, nil
}
