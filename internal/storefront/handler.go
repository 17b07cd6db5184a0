// AngelaMos | 2026
// handler.go

// Package storefront serves the public catalog. Every route works for
// anonymous callers; only published products are ever returned.
package storefront

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/errtext"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
)

type Handler struct {
	store *query.Store
}

func NewHandler(store *query.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/storefront", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{categoryID}", h.GetCategory)
		r.Get("/categories/{categoryID}/products", h.ListProductsByCategory)
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.StorefrontProducts(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToProductResponseList(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.store.Product(r.Context(), productID)
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToProductResponse(product))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.Categories(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToCategoryResponseList(categories))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	category, err := h.store.Category(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "category")
			return
		}
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToCategoryResponse(category))
}

func (h *Handler) ListProductsByCategory(
	w http.ResponseWriter,
	r *http.Request,
) {
	categoryID := chi.URLParam(r, "categoryID")

	products, err := h.store.StorefrontProductsByCategory(
		r.Context(),
		categoryID,
	)
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToProductResponseList(products))
}
