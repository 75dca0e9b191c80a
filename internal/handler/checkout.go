package handler

import (
	"net/http"

	"github.com/xelaris/storefront/internal/domain/checkout"
)

// shippingPatchRequest mirrors checkout.ShippingPatch: absent JSON fields
// stay nil and leave the stored value untouched.
type shippingPatchRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
	Country   *string `json:"country"`
}

type paymentPatchRequest struct {
	CardNumber *string `json:"cardNumber"`
	ExpiryDate *string `json:"expiryDate"`
	CVV        *string `json:"cvv"`
	NameOnCard *string `json:"nameOnCard"`
}

// GetCheckout returns the checkout state with the summary re-derived from
// the cart's current total, the "entering checkout" semantics.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)
	writeJSON(w, r, http.StatusOK, toCheckoutView(s.EnterCheckout()))
}

// UpdateShipping merge-patches the shipping form.
func (h *Handler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	var req shippingPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view := s.UpdateShipping(checkout.ShippingPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
	})
	writeJSON(w, r, http.StatusOK, toCheckoutView(view))
}

// UpdatePayment merge-patches the payment form.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	var req paymentPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view := s.UpdatePayment(checkout.PaymentPatch{
		CardNumber: req.CardNumber,
		ExpiryDate: req.ExpiryDate,
		CVV:        req.CVV,
		NameOnCard: req.NameOnCard,
	})
	writeJSON(w, r, http.StatusOK, toCheckoutView(view))
}

// SubmitOrder validates the forms and runs one submission attempt. A failed
// attempt is reported with a 502 and the failed state; the shopper may
// retry by calling this endpoint again.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	view, err := s.SubmitOrder(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCheckoutView(view))
}

// ResetOrderStatus clears status, error, and order id, keeping the forms.
func (h *Handler) ResetOrderStatus(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)
	writeJSON(w, r, http.StatusOK, toCheckoutView(s.ResetOrderStatus()))
}

// ClearCheckout resets the whole checkout engine.
func (h *Handler) ClearCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)
	writeJSON(w, r, http.StatusOK, toCheckoutView(s.ClearCheckout()))
}
