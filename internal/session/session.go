// Package session owns the per-shopper state container: the catalog view,
// the focused product view, the cart, and the checkout engine. All mutations
// go through Session methods; there is no ambient mutation from arbitrary
// call sites.
package session

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xelaris/storefront/internal/domain/cart"
	"github.com/xelaris/storefront/internal/domain/checkout"
	"github.com/xelaris/storefront/internal/domain/product"
)

// relatedLimit caps the derived related-products list.
const relatedLimit = 4

// Phase tracks an asynchronous fetch slice through its three-phase
// lifecycle. Each slice carries its own phase and error so one failed fetch
// never bleeds into another.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// CatalogState is the fetched product list slice.
type CatalogState struct {
	Products []product.Product
	Phase    Phase
	Err      string
}

// ProductState is the focused product slice: one product plus its derived
// related list (same category, focused product filtered out, capped count).
// The related fetch has independent status fields.
type ProductState struct {
	Product      *product.Product
	Related      []product.Product
	Phase        Phase
	Err          string
	RelatedPhase Phase
	RelatedErr   string
}

// CheckoutView is a read-only snapshot of the checkout engine.
type CheckoutView struct {
	Shipping checkout.ShippingInfo
	Payment  checkout.PaymentInfo
	Summary  checkout.OrderSummary
	Status   checkout.Status
	Err      string
	OrderID  string
}

// CartView is a read-only snapshot of the cart.
type CartView struct {
	Items         []cart.LineItem
	TotalQuantity int
	TotalAmount   decimal.Decimal
}

// Session is the state container for one shopper. A single mutex serializes
// every mutation: no two mutations interleave, and ordering between an
// in-flight fetch and new intents is last-write-wins.
type Session struct {
	ID string

	mu          sync.Mutex
	catalog     CatalogState
	productView ProductState
	cart        *cart.Cart
	checkout    *checkout.Checkout

	source product.Source
}

func newSession(id string, source product.Source, gateway checkout.Gateway) *Session {
	return &Session{
		ID:          id,
		catalog:     CatalogState{Phase: PhaseIdle},
		productView: ProductState{Phase: PhaseIdle, RelatedPhase: PhaseIdle},
		cart:        cart.New(),
		checkout:    checkout.New(gateway),
		source:      source,
	}
}

// --- Catalog slice ---

// LoadCatalog fetches the product list into the catalog slice and returns
// the resulting state.
func (s *Session) LoadCatalog(ctx context.Context) CatalogState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog.Phase = PhasePending
	s.catalog.Err = ""

	products, err := s.source.List(ctx)
	if err != nil {
		s.catalog.Phase = PhaseFailed
		s.catalog.Err = err.Error()
		return s.catalog
	}

	s.catalog.Phase = PhaseSucceeded
	s.catalog.Products = products
	return s.catalog
}

// Catalog returns the current catalog slice.
func (s *Session) Catalog() CatalogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// --- Product slice ---

// LoadProduct focuses a single product: it fetches the product, then its
// related list by category. A related-fetch failure is recorded on the
// related fields only and never affects the primary fetch's success.
func (s *Session) LoadProduct(ctx context.Context, id int64) (ProductState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.productView = ProductState{Phase: PhasePending, RelatedPhase: PhaseIdle}

	p, err := s.source.Get(ctx, id)
	if err != nil {
		s.productView.Phase = PhaseFailed
		s.productView.Err = err.Error()
		return s.productView, err
	}

	s.productView.Phase = PhaseSucceeded
	s.productView.Product = p

	s.productView.RelatedPhase = PhasePending
	related, err := s.source.ListByCategory(ctx, p.Category, relatedLimit)
	if err != nil {
		s.productView.RelatedPhase = PhaseFailed
		s.productView.RelatedErr = err.Error()
		return s.productView, nil
	}

	s.productView.RelatedPhase = PhaseSucceeded
	s.productView.Related = filterRelated(related, p.ID)
	return s.productView, nil
}

// ClearProduct discards the focused product slice, modeling navigation away
// from the product page.
func (s *Session) ClearProduct() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productView = ProductState{Phase: PhaseIdle, RelatedPhase: PhaseIdle}
}

// Product returns the current product slice.
func (s *Session) Product() ProductState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productView
}

// filterRelated drops the focused product from the related list and caps it.
func filterRelated(products []product.Product, focusedID int64) []product.Product {
	out := make([]product.Product, 0, relatedLimit)
	for _, p := range products {
		if p.ID == focusedID {
			continue
		}
		out = append(out, p)
		if len(out) == relatedLimit {
			break
		}
	}
	return out
}

// --- Cart ---

// AddToCart fetches the product and adds quantity units to the cart as
// independent single-unit adds. The checkout summary is re-derived from the
// new cart total.
func (s *Session) AddToCart(ctx context.Context, productID int64, quantity int) (CartView, error) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.source.Get(ctx, productID)
	if err != nil {
		return s.cartView(), err
	}

	for range quantity {
		s.cart.Add(*p)
	}
	s.checkout.RecalculateSummary(s.cart.TotalAmount())
	return s.cartView(), nil
}

// RemoveFromCart deletes a line item; absent items are a no-op.
func (s *Session) RemoveFromCart(productID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	s.checkout.RecalculateSummary(s.cart.TotalAmount())
	return s.cartView()
}

// IncreaseQuantity adds one unit to an existing line item.
func (s *Session) IncreaseQuantity(productID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.IncreaseQuantity(productID)
	s.checkout.RecalculateSummary(s.cart.TotalAmount())
	return s.cartView()
}

// DecreaseQuantity removes one unit; at quantity 1 the line item disappears.
func (s *Session) DecreaseQuantity(productID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.DecreaseQuantity(productID)
	s.checkout.RecalculateSummary(s.cart.TotalAmount())
	return s.cartView()
}

// ClearCart empties the cart.
func (s *Session) ClearCart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.checkout.RecalculateSummary(s.cart.TotalAmount())
	return s.cartView()
}

// Cart returns the current cart snapshot.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

func (s *Session) cartView() CartView {
	return CartView{
		Items:         s.cart.Items(),
		TotalQuantity: s.cart.TotalQuantity(),
		TotalAmount:   s.cart.TotalAmount(),
	}
}

// --- Checkout ---

// EnterCheckout re-derives the summary from the cart and returns the
// checkout snapshot. Called whenever the checkout view is (re-)entered.
func (s *Session) EnterCheckout() CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.RecalculateSummary(s.cart.TotalAmount())
	return s.checkoutView()
}

// UpdateShipping merge-patches the shipping form.
func (s *Session) UpdateShipping(p checkout.ShippingPatch) CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.UpdateShipping(p)
	return s.checkoutView()
}

// UpdatePayment merge-patches the payment form.
func (s *Session) UpdatePayment(p checkout.PaymentPatch) CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.UpdatePayment(p)
	return s.checkoutView()
}

// SubmitOrder validates both forms, re-derives the summary, and runs one
// submission attempt. On success the cart is cleared here, by the caller of
// the checkout engine, after the succeeded transition.
func (s *Session) SubmitOrder(ctx context.Context) (CheckoutView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkout.ValidateShipping(s.checkout.Shipping()); err != nil {
		return s.checkoutView(), err
	}
	if err := checkout.ValidatePayment(s.checkout.Payment()); err != nil {
		return s.checkoutView(), err
	}

	s.checkout.RecalculateSummary(s.cart.TotalAmount())

	if err := s.checkout.Submit(ctx, s.cart.Items()); err != nil {
		return s.checkoutView(), err
	}

	s.cart.Clear()
	return s.checkoutView(), nil
}

// ResetOrderStatus clears submission status without touching the forms.
func (s *Session) ResetOrderStatus() CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.ResetOrderStatus()
	return s.checkoutView()
}

// ClearCheckout fully resets the checkout engine.
func (s *Session) ClearCheckout() CheckoutView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkout.Clear()
	return s.checkoutView()
}

func (s *Session) checkoutView() CheckoutView {
	return CheckoutView{
		Shipping: s.checkout.Shipping(),
		Payment:  s.checkout.Payment(),
		Summary:  s.checkout.Summary(),
		Status:   s.checkout.Status(),
		Err:      s.checkout.Err(),
		OrderID:  s.checkout.OrderID(),
	}
}
