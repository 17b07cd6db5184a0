// AngelaMos | 2026
// handler.go

// Package library covers the buyer side: purchasing, the purchased-products
// view, and entitlement-gated downloads.
package library

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/errtext"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
	"github.com/caffeinepub/engineer-notes-shop/internal/storefront"
)

type Handler struct {
	store *query.Store
}

func NewHandler(store *query.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/library", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListPurchased)
		r.Get("/ids", h.ListPurchasedIDs)
		r.Post("/purchases/{productID}", h.Purchase)
		r.Get("/downloads/{productID}", h.Download)
	})
}

func (h *Handler) ListPurchased(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.PurchasedProducts(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, storefront.ToProductResponseList(products))
}

func (h *Handler) ListPurchasedIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.PurchasedProductIDs(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, PurchasedIDsResponse{ProductIDs: ids})
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if err := h.store.PurchaseProduct(r.Context(), productID); err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, PurchaseResponse{ProductID: productID, Purchased: true})
}

// Download streams the purchased file. When the backend hands back a direct
// URL the client is redirected there instead of proxying the bytes.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	blob, err := h.store.DownloadProductFile(r.Context(), productID)
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	if url := blob.DirectURL(); url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	data, err := blob.Bytes(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.pdf"`, productID),
	)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	//nolint:errcheck // best-effort body write
	_, _ = w.Write(data)
}

type PurchasedIDsResponse struct {
	ProductIDs []string `json:"product_ids"`
}

type PurchaseResponse struct {
	ProductID string `json:"product_id"`
	Purchased bool   `json:"purchased"`
}
