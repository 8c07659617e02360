package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dolls-storefront/internal/model"
	"dolls-storefront/internal/transport"
)

// restAPIPath is the base path for WooCommerce REST API v3 endpoints.
// Must include /wp-json prefix for proper routing.
const restAPIPath = "/wp-json/wc/v3"

// userAgent identifies this client to upstream servers.
// Required: WooCommerce CDN/WAF rate-limits requests without User-Agent.
const userAgent = "DollsStorefront/1.0"

// Conflict codes WooCommerce returns when a customer email/username is
// already registered. The resolver maps these to its search-again fallback.
var customerExistsCodes = map[string]bool{
	"registration-error-email-exists":    true,
	"registration-error-username-exists": true,
}

// Config holds WooCommerce client configuration. ConsumerKey/ConsumerSecret
// are REST API credentials (Basic Auth over HTTPS).
type Config struct {
	StoreURL       string
	ConsumerKey    string
	ConsumerSecret string

	// HTTPClient overrides the default browser-fingerprint client in tests.
	HTTPClient *http.Client
}

// Client talks to the WooCommerce REST API v3.
// It is safe for concurrent use; all state is immutable after New.
type Client struct {
	httpClient     *http.Client
	storeURL       string
	consumerKey    string
	consumerSecret string
}

// New creates a WooCommerce client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.StoreURL == "" {
		return nil, fmt.Errorf("store URL is required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("API credentials are required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Browser TLS fingerprint avoids JA3-based rate limiting.
		// See internal/transport for rationale.
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport.NewBrowserTransport(30 * time.Second),
		}
	}

	return &Client{
		httpClient:     httpClient,
		storeURL:       strings.TrimSuffix(cfg.StoreURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
	}, nil
}

// === Catalog ===

// GetProduct fetches a product by id. Used for server-side price resolution;
// client-supplied prices are never accepted.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetVariation fetches a specific variation of a product. When a cart line
// carries a variation, price and stock come from here, not the parent.
func (c *Client) GetVariation(ctx context.Context, productID, variationID int64) (*Variation, error) {
	path := fmt.Sprintf("/products/%d/variations/%d", productID, variationID)
	var v Variation
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// === Customers ===

// SearchCustomersByEmail searches customers matching the given email.
// The search endpoint returns partial/fuzzy matches; callers MUST filter
// for exact (case-insensitive) email equality before accepting a result.
func (c *Client) SearchCustomersByEmail(ctx context.Context, email string) ([]Customer, error) {
	q := url.Values{}
	q.Set("search", email)
	q.Set("per_page", "20")

	var customers []Customer
	if err := c.do(ctx, http.MethodGet, "/customers", q, nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateCustomer registers a new customer. A duplicate email surfaces as a
// model.ErrConflict via the error taxonomy; callers fall back to a second
// exact-match search in that case.
func (c *Client) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	var created Customer
	if err := c.do(ctx, http.MethodPost, "/customers", nil, in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// === Orders ===

// CreateOrder creates an order. Line items carry ids and quantities only;
// WooCommerce prices them at creation time.
func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	var created Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetOrder fetches an order by id.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrdersByCustomer returns orders belonging to a commerce customer id,
// newest first.
func (c *Client) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	q := url.Values{}
	q.Set("customer", strconv.FormatInt(customerID, 10))
	q.Set("orderby", "date")
	q.Set("order", "desc")

	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SearchOrders runs the fuzzy order search (matches billing fields, order
// number, and more). Callers filter by exact billing email.
func (c *Client) SearchOrders(ctx context.Context, query string) ([]Order, error) {
	q := url.Values{}
	q.Set("search", query)

	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", q, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// === HTTP plumbing ===

// do executes one REST request. Path is relative to the v3 API root
// (e.g., "/orders"). A non-nil out receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	endpoint := c.storeURL + restAPIPath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("WooCommerce", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.parseErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// setHeaders sets the standard REST API headers. REST API v3 authenticates
// with Basic Auth (consumer key/secret) over HTTPS.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
}

// parseErrorResponse converts a WooCommerce error payload to an APIError.
func (c *Client) parseErrorResponse(statusCode int, body []byte) error {
	var wcErr errorResponse
	json.Unmarshal(body, &wcErr) // Best effort parse

	if customerExistsCodes[wcErr.Code] {
		return model.NewConflictError("customer", wcErr.Message)
	}

	switch statusCode {
	case 404:
		return model.NewNotFoundError("resource")
	case 401, 403:
		return model.NewUnauthorizedError("WooCommerce authentication failed")
	case 400:
		msg := wcErr.Message
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	case 429:
		return model.NewRateLimitError("WooCommerce")
	default:
		return model.NewUpstreamError("WooCommerce",
			fmt.Errorf("status %d: %s - %s", statusCode, wcErr.Code, wcErr.Message))
	}
}
