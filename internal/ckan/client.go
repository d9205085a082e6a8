// Package ckan reads dataset records from a CKAN catalog's action API.
package ckan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/output"
)

const searchPath = "api/3/action/package_search"

// DefaultPageSize is the number of records requested per page.
const DefaultPageSize = 10

// Options configures a Client.
type Options struct {
	// PageSize is the rows parameter of each search request.
	PageSize int

	// HTTPClient is used for requests. Defaults to a client with a 30s timeout.
	HTTPClient *http.Client

	// RequestsPerSecond limits the page request rate. Zero means unlimited.
	RequestsPerSecond float64

	// UserAgent is sent with every request.
	UserAgent string
}

// Client pages through a catalog's datasets.
type Client struct {
	base    *url.URL
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Client for the catalog at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, oerrors.NewConfigError(fmt.Sprintf("invalid catalog URL %q", baseURL), "ckanURL", "Use an absolute http(s) URL.")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "ckan2csw"
	}
	c := &Client{base: u, opts: opts, http: opts.HTTPClient}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	c.limiter = rate.NewLimiter(limit, 1)
	return c, nil
}

// searchResponse is the envelope of every action API reply.
type searchResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"__type"`
	} `json:"error"`
}

// Count returns the number of records the catalog reports.
func (c *Client) Count(ctx context.Context) (int, error) {
	resp, err := c.search(ctx, 0, 0)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Datasets calls yield for every record of type "dataset", page by page.
// Iteration stops at the first error yield returns.
func (c *Client) Datasets(ctx context.Context, yield func(record map[string]any) error) error {
	total, err := c.Count(ctx)
	if err != nil {
		return err
	}
	output.Debug("catalog record count", "count", total, "pageSize", c.opts.PageSize)

	for start := 0; start < total; start += c.opts.PageSize {
		resp, err := c.search(ctx, start, c.opts.PageSize)
		if err != nil {
			return err
		}
		for _, rec := range resp.Result.Results {
			if t, _ := rec["type"].(string); t != "dataset" {
				continue
			}
			if err := yield(rec); err != nil {
				return err
			}
		}
		if len(resp.Result.Results) == 0 {
			break
		}
	}
	return nil
}

func (c *Client) search(ctx context.Context, start, rows int) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("rows", strconv.Itoa(rows))
	u := c.base.ResolveReference(&url.URL{Path: searchPath, RawQuery: q.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, connectivityError(u, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, connectivityError(u, err)
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, connectivityError(u, fmt.Errorf("HTTP %d", res.StatusCode))
		}
		return nil, fmt.Errorf("%w: package_search response: %v", oerrors.ErrParse, err)
	}
	if !out.Success {
		msg := fmt.Sprintf("HTTP %d", res.StatusCode)
		if out.Error != nil {
			msg = out.Error.Type + ": " + out.Error.Message
		}
		return nil, connectivityError(u, fmt.Errorf("package_search failed: %s", msg))
	}
	return &out, nil
}

func connectivityError(u *url.URL, err error) error {
	return &oerrors.DetailError{
		Type:     "catalog unreachable",
		Message:  err.Error(),
		Location: u.Redacted(),
		Hint:     "Check ckanURL and that the catalog is running.",
		Cause:    fmt.Errorf("%w: %w", oerrors.ErrConnectivity, err),
	}
}
