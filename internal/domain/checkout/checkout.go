// Package checkout implements the checkout engine: shipping and payment form
// state, the derived order summary, and the order submission state machine.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xelaris/storefront/internal/domain/cart"
)

// Status is the order submission state. Transitions:
// idle -> pending -> {succeeded, failed}; failed -> pending on retry;
// succeeded is terminal until the status is reset.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Sentinel errors for submission state machine violations.
var (
	ErrSubmitInFlight = errors.New("order submission already in progress")
	ErrOrderCompleted = errors.New("order already completed")
	ErrEmptyCart      = errors.New("cart is empty")
)

// DefaultCountry pre-fills the shipping form.
const DefaultCountry = "United States"

// ShippingInfo is the flat shipping address record. Absent values are the
// empty string, never a missing field.
type ShippingInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
}

// DefaultShippingInfo returns the initial shipping form state.
func DefaultShippingInfo() ShippingInfo {
	return ShippingInfo{Country: DefaultCountry}
}

// PaymentInfo holds the payment form. CardNumber is stored digits-only;
// display formatting belongs to the presentation layer.
type PaymentInfo struct {
	CardNumber string
	ExpiryDate string
	CVV        string
	NameOnCard string
}

// ShippingPatch is a merge-patch for ShippingInfo. Nil fields are left
// untouched.
type ShippingPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	ZipCode   *string
	Country   *string
}

// PaymentPatch is a merge-patch for PaymentInfo. Nil fields are left
// untouched.
type PaymentPatch struct {
	CardNumber *string
	ExpiryDate *string
	CVV        *string
	NameOnCard *string
}

// OrderSummary holds the price breakdown derived from the cart subtotal.
// It is always recomputed as a whole, never patched incrementally.
type OrderSummary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

var (
	freeShippingThreshold = decimal.NewFromInt(50)
	shippingFee           = decimal.RequireFromString("9.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// Summarize derives the order summary from a cart subtotal. Shipping is free
// only when the subtotal is strictly greater than the threshold: a subtotal
// of exactly 50 pays the flat fee.
func Summarize(subtotal decimal.Decimal) OrderSummary {
	shipping := shippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)

	return OrderSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Order is the payload handed to the order collaborator. Payment is already
// masked by the time an Order leaves the engine.
type Order struct {
	Shipping  ShippingInfo
	Payment   PaymentInfo
	Summary   OrderSummary
	Items     []cart.LineItem
	OrderDate time.Time
}

// Gateway submits a completed order to the order collaborator and returns
// the server-assigned order identifier. Exactly one attempt per call.
type Gateway interface {
	Submit(ctx context.Context, order *Order) (orderID string, err error)
}

// Checkout is the checkout engine for a single shopper session. It is not
// safe for concurrent use; the owning session serializes access.
type Checkout struct {
	shipping ShippingInfo
	payment  PaymentInfo
	summary  OrderSummary
	status   Status
	errMsg   string
	orderID  string

	gateway Gateway
	now     func() time.Time
}

// New returns a checkout engine in its initial state.
func New(gateway Gateway) *Checkout {
	return &Checkout{
		shipping: DefaultShippingInfo(),
		summary:  Summarize(decimal.Zero),
		status:   StatusIdle,
		gateway:  gateway,
		now:      time.Now,
	}
}

// Shipping returns the current shipping form state.
func (c *Checkout) Shipping() ShippingInfo { return c.shipping }

// Payment returns the current payment form state.
func (c *Checkout) Payment() PaymentInfo { return c.payment }

// Summary returns the last derived order summary.
func (c *Checkout) Summary() OrderSummary { return c.summary }

// Status returns the submission status.
func (c *Checkout) Status() Status { return c.status }

// Err returns the last submission error message, empty when none.
func (c *Checkout) Err() string { return c.errMsg }

// OrderID returns the assigned order identifier, empty before success.
func (c *Checkout) OrderID() string { return c.orderID }

// UpdateShipping merge-patches the shipping form. No validation happens
// here; validation is applied by the caller before advancing steps.
func (c *Checkout) UpdateShipping(p ShippingPatch) {
	apply(&c.shipping.FirstName, p.FirstName)
	apply(&c.shipping.LastName, p.LastName)
	apply(&c.shipping.Email, p.Email)
	apply(&c.shipping.Phone, p.Phone)
	apply(&c.shipping.Address, p.Address)
	apply(&c.shipping.City, p.City)
	apply(&c.shipping.State, p.State)
	apply(&c.shipping.ZipCode, p.ZipCode)
	apply(&c.shipping.Country, p.Country)
}

// UpdatePayment merge-patches the payment form. Card numbers are normalized
// to digits only before storage.
func (c *Checkout) UpdatePayment(p PaymentPatch) {
	if p.CardNumber != nil {
		c.payment.CardNumber = digitsOnly(*p.CardNumber)
	}
	apply(&c.payment.ExpiryDate, p.ExpiryDate)
	apply(&c.payment.CVV, p.CVV)
	apply(&c.payment.NameOnCard, p.NameOnCard)
}

// RecalculateSummary re-derives the order summary from the given cart
// subtotal. Called on entering checkout and whenever the cart changes.
func (c *Checkout) RecalculateSummary(subtotal decimal.Decimal) {
	c.summary = Summarize(subtotal)
}

// Submit runs one order submission attempt against the gateway.
//
// On success the engine transitions to succeeded, records the order
// identifier, and resets the shipping and payment forms; the summary is kept
// for receipt display. The cart is cleared by the caller after this
// transition, never by the engine. On failure the engine transitions to
// failed with a human-readable message and the forms are preserved so the
// shopper can retry without re-entering data.
func (c *Checkout) Submit(ctx context.Context, items []cart.LineItem) error {
	switch c.status {
	case StatusPending:
		return ErrSubmitInFlight
	case StatusSucceeded:
		return ErrOrderCompleted
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}

	c.status = StatusPending
	c.errMsg = ""

	order := &Order{
		Shipping: c.shipping,
		Payment: PaymentInfo{
			CardNumber: MaskCardNumber(c.payment.CardNumber),
			ExpiryDate: c.payment.ExpiryDate,
			CVV:        c.payment.CVV,
			NameOnCard: c.payment.NameOnCard,
		},
		Summary:   c.summary,
		Items:     items,
		OrderDate: c.now().UTC(),
	}

	orderID, err := c.gateway.Submit(ctx, order)
	if err != nil {
		c.status = StatusFailed
		c.errMsg = err.Error()
		return err
	}

	c.status = StatusSucceeded
	c.orderID = orderID
	c.shipping = DefaultShippingInfo()
	c.payment = PaymentInfo{}
	return nil
}

// ResetOrderStatus clears status, error and order identifier without
// touching the form fields. Used when re-entering checkout for a new order.
func (c *Checkout) ResetOrderStatus() {
	c.status = StatusIdle
	c.errMsg = ""
	c.orderID = ""
}

// Clear resets the whole engine to its initial state.
func (c *Checkout) Clear() {
	c.shipping = DefaultShippingInfo()
	c.payment = PaymentInfo{}
	c.summary = Summarize(decimal.Zero)
	c.ResetOrderStatus()
}

// MaskCardNumber replaces a card number with "****" plus its last four
// digits before it crosses the engine's trust boundary.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return "****" + number
	}
	return "****" + number[len(number)-4:]
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
