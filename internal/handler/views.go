package handler

import (
	"github.com/xelaris/storefront/internal/domain/cart"
	"github.com/xelaris/storefront/internal/domain/product"
	"github.com/xelaris/storefront/internal/session"
)

// View DTOs for the JSON API. Prices are numbers rounded to two decimal
// places, matching what the storefront displays.

type productView struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	Rating      ratingView `json:"rating"`
}

type ratingView struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type catalogView struct {
	Products []productView `json:"products"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
}

type focusedProductView struct {
	Product       *productView  `json:"product"`
	Related       []productView `json:"relatedProducts"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	RelatedStatus string        `json:"relatedStatus"`
	RelatedError  string        `json:"relatedError,omitempty"`
}

type lineItemView struct {
	ProductID int64   `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type cartView struct {
	Items         []lineItemView `json:"items"`
	TotalQuantity int            `json:"totalQuantity"`
	TotalAmount   float64        `json:"totalAmount"`
}

type shippingView struct {
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

type paymentView struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	NameOnCard string `json:"nameOnCard"`
}

type summaryView struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type checkoutView struct {
	ShippingInfo shippingView `json:"shippingInfo"`
	PaymentInfo  paymentView  `json:"paymentInfo"`
	OrderSummary summaryView  `json:"orderSummary"`
	Status       string       `json:"status"`
	Error        string       `json:"error,omitempty"`
	OrderID      string       `json:"orderId,omitempty"`
}

func toProductView(p product.Product) productView {
	return productView{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.Round(2).InexactFloat64(),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating: ratingView{
			Rate:  p.Rating.Rate,
			Count: p.Rating.Count,
		},
	}
}

func toProductViews(products []product.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = toProductView(p)
	}
	return out
}

func toCatalogView(st session.CatalogState) catalogView {
	return catalogView{
		Products: toProductViews(st.Products),
		Status:   string(st.Phase),
		Error:    st.Err,
	}
}

func toFocusedProductView(st session.ProductState) focusedProductView {
	v := focusedProductView{
		Related:       toProductViews(st.Related),
		Status:        string(st.Phase),
		Error:         st.Err,
		RelatedStatus: string(st.RelatedPhase),
		RelatedError:  st.RelatedErr,
	}
	if st.Product != nil {
		pv := toProductView(*st.Product)
		v.Product = &pv
	}
	return v
}

func toLineItemViews(items []cart.LineItem) []lineItemView {
	out := make([]lineItemView, len(items))
	for i, item := range items {
		out[i] = lineItemView{
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

func toCartView(view session.CartView) cartView {
	return cartView{
		Items:         toLineItemViews(view.Items),
		TotalQuantity: view.TotalQuantity,
		TotalAmount:   view.TotalAmount.Round(2).InexactFloat64(),
	}
}

func toCheckoutView(v session.CheckoutView) checkoutView {
	return checkoutView{
		ShippingInfo: shippingView{
			FirstName: v.Shipping.FirstName,
			LastName:  v.Shipping.LastName,
			Email:     v.Shipping.Email,
			Phone:     v.Shipping.Phone,
			Address:   v.Shipping.Address,
			City:      v.Shipping.City,
			State:     v.Shipping.State,
			ZipCode:   v.Shipping.ZipCode,
			Country:   v.Shipping.Country,
		},
		PaymentInfo: paymentView{
			CardNumber: v.Payment.CardNumber,
			ExpiryDate: v.Payment.ExpiryDate,
			CVV:        v.Payment.CVV,
			NameOnCard: v.Payment.NameOnCard,
		},
		OrderSummary: summaryView{
			Subtotal: v.Summary.Subtotal.Round(2).InexactFloat64(),
			Shipping: v.Summary.Shipping.Round(2).InexactFloat64(),
			Tax:      v.Summary.Tax.Round(2).InexactFloat64(),
			Total:    v.Summary.Total.Round(2).InexactFloat64(),
		},
		Status:  string(v.Status),
		Error:   v.Err,
		OrderID: v.OrderID,
	}
}
