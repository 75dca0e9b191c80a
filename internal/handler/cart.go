package handler

import (
	"net/http"
)

// addItemRequest is the body for POST /api/cart/items. Quantity defaults
// to 1; a quantity of N is applied as N single-unit adds.
type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// GetCart returns the cart snapshot.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)
	writeJSON(w, r, http.StatusOK, toCartView(s.Cart()))
}

// AddCartItem adds units of a product to the cart.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProductID <= 0 {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}

	view, err := s.AddToCart(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(view))
}

// RemoveCartItem deletes a line item. Absent items are a no-op, not an
// error, so the response is always the resulting cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(s.RemoveFromCart(id)))
}

// IncreaseCartItem adds one unit to an existing line item.
func (h *Handler) IncreaseCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(s.IncreaseQuantity(id)))
}

// DecreaseCartItem removes one unit; the line item disappears at zero.
func (h *Handler) DecreaseCartItem(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, toCartView(s.DecreaseQuantity(id)))
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)
	writeJSON(w, r, http.StatusOK, toCartView(s.ClearCart()))
}
