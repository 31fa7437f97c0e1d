// Package client talks to the DMP data catalogue API. It fetches the
// raw JSON:API documents for datasets, dataset collections and the
// availability feed; decoding into typed entities happens elsewhere.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/jsonapi"
)

// Middleware manipulates an outgoing *http.Request before it is
// executed. The context is provided for cancellation and to support
// auth implementations that may need to refresh credentials.
type Middleware func(context.Context, *http.Request) error

// Include lists requested alongside the primary records, matching
// what the normalizer resolves.
const (
	datasetsInclude = "wfsSource,wmsSource,wmtsSource,fileSources," +
		"category,tags,owners,thumbnail," +
		"fileSources.fileSourceType"
	collectionsInclude = "datasetCollectionItems,datasetCollectionItems.dataset"
)

// ClientOption configures a Client during construction.
type ClientOption func(*Client) error

// Client is a catalogue API client. All fetches go out with the
// configured locale and run through the registered middleware and the
// retry policy.
type Client struct {
	baseURL     *url.URL
	locale      string
	httpClient  *http.Client
	middleware  []Middleware
	retryPolicy RetryPolicy
	maxRetries  int
	log         zerolog.Logger
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpClient == nil {
			return ErrNilHTTPClient
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithTimeout sets a per-request timeout on the underlying http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
		return nil
	}
}

// WithLocale sets the locale query parameter sent with every request.
func WithLocale(locale string) ClientOption {
	return func(c *Client) error {
		if locale != "" {
			c.locale = locale
		}
		return nil
	}
}

// WithMiddleware registers one or more request-middleware functions.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) error {
		c.middleware = append(c.middleware, mw...)
		return nil
	}
}

// WithRetryPolicy configures the retry behavior. maxRetries bounds the
// number of additional attempts after the first.
func WithRetryPolicy(policy RetryPolicy, maxRetries int) ClientOption {
	return func(c *Client) error {
		c.retryPolicy = policy
		c.maxRetries = maxRetries
		return nil
	}
}

// WithLogger registers a logger used for request lifecycle events.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// New creates a catalogue client for the given API root.
func New(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL:     u,
		locale:      "da",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		retryPolicy: DefaultRetryPolicy,
		maxRetries:  2,
		log:         zerolog.Nop(),
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// FetchDatasets retrieves the datasets document with every relation
// the normalizer needs included.
func (c *Client) FetchDatasets(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "datasets", url.Values{"include": {datasetsInclude}})
}

// FetchCollections retrieves the dataset collections document.
func (c *Client) FetchCollections(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "datasetCollections", url.Values{"include": {collectionsInclude}})
}

// FetchAvailability retrieves the dataset availability feed.
func (c *Client) FetchAvailability(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "datasetAvailabilities", nil)
}

// get builds the endpoint URL, runs middleware and executes the
// request under the retry policy. Non-200 responses surface as
// *APIError with the body preserved.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + endpoint
	if query == nil {
		query = url.Values{}
	}
	query.Set("locale", c.locale)
	u.RawQuery = query.Encode()
	rawURL := u.String()

	resp, err := c.retry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("client: creating request for %s: %w", rawURL, err)
		}
		for _, mw := range c.middleware {
			if err := mw(ctx, req); err != nil {
				return nil, fmt.Errorf("client: applying middleware for %s: %w", rawURL, err)
			}
		}
		c.log.Debug().Str("url", rawURL).Msg("fetching")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: reading response from %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, URL: rawURL, Raw: body}
	}
	return body, nil
}

// Decode parses a raw catalogue response into a JSON:API document.
func Decode(data []byte) (*jsonapi.Document, error) {
	var doc jsonapi.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("client: decoding response: %w", err)
	}
	return &doc, nil
}
