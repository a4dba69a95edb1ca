// Package backend is the client for the dogs REST API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rescuedogs/rescue-edge/internal/core/httpclient"
	"github.com/rescuedogs/rescue-edge/internal/core/observability"
	"github.com/rescuedogs/rescue-edge/internal/dogs"
)

const (
	DefaultPageSize = 100
	// upper bound for AllDogs so a misbehaving API cannot loop forever
	maxPages = 200
	upstream = "dogs_api"
)

type Client struct {
	logger   *slog.Logger
	http     *http.Client
	base     *url.URL
	pageSize int
	startNow func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func New(logger *slog.Logger, base string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url must be http(s): %q", base)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		logger:   logger,
		http:     httpclient.NewOutbound(),
		base:     u,
		pageSize: DefaultPageSize,
		startNow: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ListDogs returns one page (0-based) of available dogs.
func (c *Client) ListDogs(ctx context.Context, page int) ([]dogs.Dog, error) {
	if page < 0 {
		page = 0
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("offset", strconv.Itoa(page*c.pageSize))
	q.Set("status", "available")

	var raw []dogs.Animal
	if err := c.get(ctx, "/api/animals", q, &raw); err != nil {
		return nil, err
	}
	return dogs.ToDogs(raw), nil
}

func (c *Client) AllDogs(ctx context.Context) ([]dogs.Dog, error) {
	var out []dogs.Dog
	for page := range maxPages {
		batch, err := c.ListDogs(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("list dogs page %d: %w", page, err)
		}
		out = append(out, batch...)
		if len(batch) < c.pageSize {
			return out, nil
		}
	}
	c.logger.Warn("dog listing truncated", "pages", maxPages, "dogs", len(out))
	return out, nil
}

func (c *Client) GetDog(ctx context.Context, slug string) (dogs.Dog, error) {
	var raw dogs.Animal
	if err := c.get(ctx, "/api/animals/"+url.PathEscape(slug), nil, &raw); err != nil {
		return dogs.Dog{}, err
	}
	return dogs.ToDog(raw), nil
}

func (c *Client) ListOrganizations(ctx context.Context) ([]dogs.Org, error) {
	var raw []dogs.Organization
	if err := c.get(ctx, "/api/organizations", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]dogs.Org, 0, len(raw))
	for _, o := range raw {
		out = append(out, dogs.ToOrg(o))
	}
	return out, nil
}

func (c *Client) GetOrganization(ctx context.Context, slug string) (dogs.Org, error) {
	var raw dogs.Organization
	if err := c.get(ctx, "/api/organizations/"+url.PathEscape(slug), nil, &raw); err != nil {
		return dogs.Org{}, err
	}
	return dogs.ToOrg(raw), nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) (err error) {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawPath = ""
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.startNow()
	defer func() { observability.ObserveUpstream(upstream, err, time.Since(start).Seconds()) }()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		apiErr := dogs.ParseAPIError(resp.StatusCode, b)
		c.logger.DebugContext(ctx, "upstream error", "path", path, "status", resp.StatusCode, "err", apiErr.Message)
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *dogs.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
