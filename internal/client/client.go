// Package client talks to a running dataneko daemon over its local HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theirongolddev/dataneko/internal/daemon"
	"github.com/theirongolddev/dataneko/internal/model"
)

const (
	requestTimeout = 2 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnreachable indicates nothing answered at the daemon address.
	ErrUnreachable = errors.New("client: daemon unreachable")
	// ErrBadRequest indicates the daemon rejected the query parameters.
	ErrBadRequest = errors.New("client: bad request")
)

// Client queries one daemon.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for a daemon listening on addr ("host:port" or a URL).
// Returns nil if addr is empty.
func New(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{},
	}
}

// Health reports whether the daemon answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/healthz", nil)
	return err
}

// Status returns the daemon's status document.
func (c *Client) Status(ctx context.Context) (daemon.Status, error) {
	var st daemon.Status
	return st, c.getJSON(ctx, "/v1/status", nil, &st)
}

// Events returns the daemon's retained events, oldest first.
func (c *Client) Events(ctx context.Context) ([]daemon.Event, error) {
	var evs []daemon.Event
	return evs, c.getJSON(ctx, "/v1/events", nil, &evs)
}

// Hourly returns the hour-of-day buckets for date's calendar day.
func (c *Client) Hourly(ctx context.Context, date time.Time) ([]model.HourlyUsage, error) {
	var out []model.HourlyUsage
	return out, c.getJSON(ctx, "/v1/usage/hourly", dateQuery(date), &out)
}

// Monthly returns the per-day buckets for date's calendar month.
func (c *Client) Monthly(ctx context.Context, date time.Time) ([]model.DailyUsage, error) {
	var out []model.DailyUsage
	return out, c.getJSON(ctx, "/v1/usage/monthly", dateQuery(date), &out)
}

// Prediction returns the daemon's current end-of-month forecast.
func (c *Client) Prediction(ctx context.Context) (model.UsagePrediction, error) {
	var p model.UsagePrediction
	return p, c.getJSON(ctx, "/v1/prediction", nil, &p)
}

func dateQuery(date time.Time) url.Values {
	if date.IsZero() {
		return nil
	}
	return url.Values{"date": {date.Format("2006-01-02")}}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("client: parsing %s: %w", path, err)
	}
	return nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("client: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("client: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
