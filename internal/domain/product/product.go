package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist in the
// remote catalog.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// read-only: they are fetched from the catalog collaborator and never
// mutated locally.
type Product struct {
	ID          int64
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Rating      Rating
}

// Rating holds the aggregate review score for a product.
type Rating struct {
	Rate  float64
	Count int
}

// Source defines read operations against the product catalog collaborator.
type Source interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]Product, error)
}
