// Package orders implements the HTTP gateway for the order collaborator:
// the write-side endpoint a completed checkout is posted to.
package orders

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/xelaris/storefront/internal/domain/cart"
	"github.com/xelaris/storefront/internal/domain/checkout"
)

// Compile-time check ensuring Gateway satisfies the checkout gateway interface.
var _ checkout.Gateway = (*Gateway)(nil)

// Config holds order gateway configuration.
type Config struct {
	// BaseURL is the order collaborator root.
	BaseURL string
	// Timeout bounds each submission request. Zero means no client timeout.
	Timeout time.Duration
	// TracerProvider instruments outgoing requests. Optional.
	TracerProvider trace.TracerProvider
}

// Gateway posts orders to the order collaborator over HTTP.
type Gateway struct {
	base string
	http *http.Client
}

// NewGateway creates an order gateway with an otel-instrumented transport.
func NewGateway(cfg Config) *Gateway {
	var opts []otelhttp.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}

	return &Gateway{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
		},
	}
}

// Wire types for the order collaborator. Prices are serialized as numbers
// rounded to two decimal places.

type wireShipping struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

type wirePayment struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	NameOnCard string `json:"nameOnCard"`
}

type wireSummary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type wireItem struct {
	ProductID int64   `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type wireOrder struct {
	ShippingInfo wireShipping `json:"shippingInfo"`
	PaymentInfo  wirePayment  `json:"paymentInfo"`
	OrderSummary wireSummary  `json:"orderSummary"`
	Items        []wireItem   `json:"items"`
	OrderDate    string       `json:"orderDate"`
}

// Submit posts the order and returns the collaborator-assigned identifier.
// When the response carries no identifier, a locally generated one is
// assigned so a successful submission always yields a non-empty id.
// Exactly one request is issued per call; there is no automatic retry.
func (g *Gateway) Submit(ctx context.Context, o *checkout.Order) (string, error) {
	body, err := json.Marshal(toWireOrder(o))
	if err != nil {
		return "", errors.Wrap(err, "encode order")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "submit order")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("order service responded with status %d", resp.StatusCode)
	}

	// The collaborator may return the id as a number or a string, or omit
	// it entirely.
	var result struct {
		ID any `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fallbackOrderID(), nil
	}

	switch id := result.ID.(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return strconv.FormatInt(int64(id), 10), nil
	}
	return fallbackOrderID(), nil
}

// fallbackOrderID generates a short uppercase order reference.
func fallbackOrderID() string {
	u := uuid.New()
	return strings.ToUpper(hex.EncodeToString(u[:])[:9])
}

func toWireOrder(o *checkout.Order) wireOrder {
	return wireOrder{
		ShippingInfo: wireShipping{
			FirstName: o.Shipping.FirstName,
			LastName:  o.Shipping.LastName,
			Email:     o.Shipping.Email,
			Phone:     o.Shipping.Phone,
			Address:   o.Shipping.Address,
			City:      o.Shipping.City,
			State:     o.Shipping.State,
			ZipCode:   o.Shipping.ZipCode,
			Country:   o.Shipping.Country,
		},
		PaymentInfo: wirePayment{
			CardNumber: o.Payment.CardNumber,
			ExpiryDate: o.Payment.ExpiryDate,
			CVV:        o.Payment.CVV,
			NameOnCard: o.Payment.NameOnCard,
		},
		OrderSummary: wireSummary{
			Subtotal: o.Summary.Subtotal.Round(2).InexactFloat64(),
			Shipping: o.Summary.Shipping.Round(2).InexactFloat64(),
			Tax:      o.Summary.Tax.Round(2).InexactFloat64(),
			Total:    o.Summary.Total.Round(2).InexactFloat64(),
		},
		Items:     toWireItems(o.Items),
		OrderDate: o.OrderDate.Format(time.RFC3339),
	}
}

func toWireItems(items []cart.LineItem) []wireItem {
	out := make([]wireItem, len(items))
	for i, item := range items {
		out[i] = wireItem{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price.Round(2).InexactFloat64(),
			Image:     item.Image,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.Round(2).InexactFloat64(),
		}
	}
	return out
}
