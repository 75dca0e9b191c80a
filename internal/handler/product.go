package handler

import (
	"net/http"
)

// ListProducts fetches the catalog into the session's catalog slice and
// returns it. A fetch failure is reported both in the slice and as a 502.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	st := s.LoadCatalog(r.Context())
	if st.Err != "" {
		writeJSON(w, r, http.StatusBadGateway, toCatalogView(st))
		return
	}
	writeJSON(w, r, http.StatusOK, toCatalogView(st))
}

// GetProduct focuses one product and its related list. The related fetch is
// best-effort: its failure shows up in relatedStatus/relatedError while the
// response stays 200.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	st, err := s.LoadProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toFocusedProductView(st))
}

// ClearProduct discards the focused product slice, the server-side
// counterpart of navigating away from the product page.
func (h *Handler) ClearProduct(w http.ResponseWriter, r *http.Request) {
	s := h.sess(w, r)

	s.ClearProduct()
	writeJSON(w, r, http.StatusOK, toFocusedProductView(s.Product()))
}
