// Package cart implements the shopping cart: a keyed sequence of line items
// with totals derived by a full recomputation after every mutation.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xelaris/storefront/internal/domain/product"
)

// LineItem is one row in the cart. Title, price and image are denormalized
// from the product at the time of first add, so later catalog changes do not
// retroactively reprice items already in the cart.
type LineItem struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int
	LineTotal decimal.Decimal
}

// Cart holds the line items in first-added order together with totals that
// always equal the fold over the items. The zero value is an empty cart.
type Cart struct {
	items []LineItem

	totalQuantity int
	totalAmount   decimal.Decimal
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{totalAmount: decimal.Zero}
}

// Items returns a copy of the line items in first-added order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalQuantity returns the sum of all line item quantities.
func (c *Cart) TotalQuantity() int {
	return c.totalQuantity
}

// TotalAmount returns the sum of all line totals.
func (c *Cart) TotalAmount() decimal.Decimal {
	return c.totalAmount
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// Add puts one unit of p into the cart. If a line item for p already exists
// its quantity is incremented in place; the item keeps its original position
// and its originally captured price. Add never fails.
func (c *Cart) Add(p product.Product) {
	if item := c.find(p.ID); item != nil {
		item.Quantity++
		item.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		c.recompute()
		return
	}

	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
		LineTotal: p.Price,
	})
	c.recompute()
}

// Remove deletes the line item for productID. Removing an absent item is a
// no-op, not an error.
func (c *Cart) Remove(productID int64) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.recompute()
}

// IncreaseQuantity adds one unit to an existing line item. No-op if absent.
func (c *Cart) IncreaseQuantity(productID int64) {
	item := c.find(productID)
	if item == nil {
		return
	}
	item.Quantity++
	item.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	c.recompute()
}

// DecreaseQuantity removes one unit from an existing line item. A decrement
// that would leave the quantity below 1 removes the line item entirely; a
// zero-quantity row is never observable. No-op if absent.
func (c *Cart) DecreaseQuantity(productID int64) {
	item := c.find(productID)
	if item == nil {
		return
	}
	if item.Quantity <= 1 {
		c.Remove(productID)
		return
	}
	item.Quantity--
	item.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	c.recompute()
}

// Clear empties the cart and resets totals to zero.
func (c *Cart) Clear() {
	c.items = nil
	c.recompute()
}

func (c *Cart) find(productID int64) *LineItem {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return &c.items[i]
		}
	}
	return nil
}

// recompute rebuilds both totals from scratch. A full fold after every
// mutation keeps the totals from drifting out of sync with the items, which
// incremental accumulators are prone to.
func (c *Cart) recompute() {
	qty := 0
	amount := decimal.Zero
	for i := range c.items {
		qty += c.items[i].Quantity
		amount = amount.Add(c.items[i].LineTotal)
	}
	c.totalQuantity = qty
	c.totalAmount = amount
}
