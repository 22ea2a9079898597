// Package feed subscribes to the live market-feed WebSocket.
package feed

import (
	"fmt"
	"strings"
	"time"
)

// Event types published by the market feed.
const (
	BuyOrder    = "buy_order"
	SellOrder   = "sell_order"
	Execution   = "execution"
	MarketDepth = "market_depth"
	PriceChange = "price_change"
	VolumeSpike = "volume_spike"
)

// Event is one market-feed message.
type Event struct {
	ID        string  `json:"id"`
	Ticker    string  `json:"ticker"`
	Type      string  `json:"type"`
	Timestamp string  `json:"timestamp"`
	Message   string  `json:"message"`
	Details   string  `json:"details"`
	Variation float64 `json:"variation"`
	Positive  bool    `json:"positive"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time parses Timestamp. Timestamps without a zone are taken as UTC.
func (e Event) Time() (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, e.Timestamp); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("event %s: bad timestamp %q", e.ID, e.Timestamp)
}

// Filter selects events by ticker and type. Zero values match everything.
type Filter struct {
	Ticker string
	Types  []string
}

// Match reports whether e passes the filter. Tickers compare
// case-insensitively.
func (f Filter) Match(e Event) bool {
	if f.Ticker != "" && !strings.EqualFold(f.Ticker, e.Ticker) {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == e.Type {
			return true
		}
	}
	return false
}

// Stats counts events the way the feed panel summarises them.
type Stats struct {
	Total    int
	Positive int
	Negative int
}

func (s *Stats) Add(e Event) {
	s.Total++
	if e.Positive {
		s.Positive++
	} else {
		s.Negative++
	}
}
