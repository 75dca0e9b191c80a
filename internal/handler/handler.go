// Package handler exposes the storefront HTTP API: the boundary the browser
// presentation layer dispatches its intents through.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xelaris/storefront/internal/domain/checkout"
	"github.com/xelaris/storefront/internal/domain/product"
	"github.com/xelaris/storefront/internal/session"
)

// SessionHeader carries the shopper's session identifier. A missing or
// unknown value transparently starts a fresh session; the response always
// echoes the effective id.
const SessionHeader = "X-Session-ID"

// Handler serves the storefront API backed by the session manager.
type Handler struct {
	sessions *session.Manager
}

// NewHandler constructs a Handler.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("DELETE /api/products/current", h.ClearProduct)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.RemoveCartItem)
	mux.HandleFunc("POST /api/cart/items/{id}/increase", h.IncreaseCartItem)
	mux.HandleFunc("POST /api/cart/items/{id}/decrease", h.DecreaseCartItem)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)

	mux.HandleFunc("GET /api/checkout", h.GetCheckout)
	mux.HandleFunc("PATCH /api/checkout/shipping", h.UpdateShipping)
	mux.HandleFunc("PATCH /api/checkout/payment", h.UpdatePayment)
	mux.HandleFunc("POST /api/checkout/submit", h.SubmitOrder)
	mux.HandleFunc("POST /api/checkout/reset", h.ResetOrderStatus)
	mux.HandleFunc("DELETE /api/checkout", h.ClearCheckout)
}

// sess resolves the request's session and stamps its id on the response.
func (h *Handler) sess(w http.ResponseWriter, r *http.Request) *session.Session {
	s, _ := h.sessions.GetOrCreate(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID)
	return s
}

// pathID parses the {id} path segment as a product identifier.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.New("product id must be an integer")
	}
	return id, nil
}

// errorResponse is the JSON error body: {code, message}.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: message})
}

// writeDomainError maps domain errors onto HTTP statuses:
// missing products are 404, validation failures 422, state machine
// violations 409, an empty cart 400, and collaborator failures 502.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError

	switch {
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "product not found")
	case errors.As(err, &verr):
		writeError(w, r, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, checkout.ErrSubmitInFlight),
		errors.Is(err, checkout.ErrOrderCompleted):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		zctx.From(r.Context()).Warn("collaborator failure", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, err.Error())
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
