package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rustyeddy/altchart/internal/logger"
)

// DefaultURL is where the analytics backend serves the feed.
const DefaultURL = "ws://localhost:8000/ws/market-feed"

// Client reads events from a market-feed WebSocket.
type Client struct {
	URL    string
	Dialer *websocket.Dialer
	Filter Filter
	Log    *logger.Logger

	// Buffer is the capacity of the event channel.
	Buffer int
}

// NewClient returns a client for url with a 30s handshake timeout.
func NewClient(url string) *Client {
	return &Client{
		URL:    url,
		Dialer: &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
		Buffer: 16,
	}
}

// Subscription delivers the events of one connection.
type Subscription struct {
	events chan Event
	done   chan struct{}
	err    error
}

// Events is closed when the connection ends.
func (s *Subscription) Events() <-chan Event { return s.events }

// Err returns why the subscription ended. It is nil after a context
// cancellation or a normal close from the server, and only meaningful once
// Events has been drained.
func (s *Subscription) Err() error {
	<-s.done
	return s.err
}

// Subscribe dials the feed and starts reading in a goroutine. Cancelling
// ctx closes the connection.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	log := c.Log
	if log == nil {
		log = logger.Nop()
	}

	conn, resp, err := dialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("feed dial %s: %w (status %d)", c.URL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("feed dial %s: %w", c.URL, err)
	}
	log.Info("feed connected", logger.F("url", c.URL))

	sub := &Subscription{
		events: make(chan Event, c.Buffer),
		done:   make(chan struct{}),
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	go func() {
		defer close(sub.done)
		defer close(sub.events)
		defer close(stop)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				switch {
				case ctx.Err() != nil:
				case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				default:
					sub.err = fmt.Errorf("feed read: %w", err)
				}
				log.Info("feed disconnected", logger.F("url", c.URL))
				return
			}

			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Warn("feed: skipping malformed event", logger.F("error", err.Error()))
				continue
			}
			if !c.Filter.Match(ev) {
				continue
			}

			select {
			case sub.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

// ErrClosed is returned by Run when the server ends the feed.
var ErrClosed = errors.New("feed closed")

// Run subscribes and calls fn for every matching event until ctx is done,
// fn fails, or the connection drops.
func (c *Client) Run(ctx context.Context, fn func(Event) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub, err := c.Subscribe(ctx)
	if err != nil {
		return err
	}
	for ev := range sub.Events() {
		if err := fn(ev); err != nil {
			cancel()
			for range sub.Events() {
			}
			return err
		}
	}
	if err := sub.Err(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrClosed
}
