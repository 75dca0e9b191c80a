// Package catalog implements the HTTP client for the remote product catalog
// collaborator. The catalog is read-only: this service consumes it but does
// not own it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/xelaris/storefront/internal/domain/product"
)

// Compile-time check ensuring Client satisfies the catalog source interface.
var _ product.Source = (*Client)(nil)

// Config holds catalog client configuration.
type Config struct {
	// BaseURL is the catalog collaborator root, e.g. https://fakestoreapi.com.
	BaseURL string
	// Timeout bounds each catalog request. Zero means no client timeout.
	Timeout time.Duration
	// TracerProvider instruments outgoing requests. Optional.
	TracerProvider trace.TracerProvider
}

// Client fetches products from the catalog collaborator over HTTP.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a catalog client with an otel-instrumented transport.
func NewClient(cfg Config) *Client {
	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}

	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
		},
	}
}

// wireProduct is the catalog collaborator's JSON representation of a product.
type wireProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (w wireProduct) toDomain() product.Product {
	return product.Product{
		ID:          w.ID,
		Title:       w.Title,
		Price:       decimal.NewFromFloat(w.Price),
		Description: w.Description,
		Category:    w.Category,
		Image:       w.Image,
		Rating: product.Rating{
			Rate:  w.Rating.Rate,
			Count: w.Rating.Count,
		},
	}
}

// List returns the full product catalog.
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	var wire []wireProduct
	if err := c.getJSON(ctx, c.base+"/products", &wire); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	out := make([]product.Product, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

// Get returns a single product by its identifier, or product.ErrNotFound
// when the catalog has no such product.
func (c *Client) Get(ctx context.Context, id int64) (*product.Product, error) {
	var wire wireProduct
	err := c.getJSON(ctx, fmt.Sprintf("%s/products/%d", c.base, id), &wire)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	// Some catalogs answer a missing id with 200 and an empty body.
	if wire.ID == 0 {
		return nil, product.ErrNotFound
	}

	p := wire.toDomain()
	return &p, nil
}

// ListByCategory returns up to limit products from one category.
func (c *Client) ListByCategory(ctx context.Context, category string, limit int) ([]product.Product, error) {
	u := fmt.Sprintf("%s/products/category/%s?limit=%d",
		c.base, url.PathEscape(category), limit)

	var wire []wireProduct
	if err := c.getJSON(ctx, u, &wire); err != nil {
		return nil, errors.Wrapf(err, "list products in category %q", category)
	}

	out := make([]product.Product, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

// getJSON issues a GET request and decodes the JSON response into dst.
// A 404 maps to product.ErrNotFound; any other non-2xx status becomes an
// error carrying the status code.
func (c *Client) getJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "catalog request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return product.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return errors.Errorf("catalog responded with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
