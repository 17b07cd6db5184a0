// AngelaMos | 2026
// handler.go

// Package admin exposes store management: the ownership bootstrap flow,
// product and category CRUD, file uploads and role assignment. Authorization
// is enforced by the backend actor on every call; the session role claim is
// advisory only, since a caller can become the owner mid-session.
package admin

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/adminflow"
	"github.com/caffeinepub/engineer-notes-shop/internal/config"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/errtext"
	"github.com/caffeinepub/engineer-notes-shop/internal/middleware"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
)

// maxMachines bounds the per-principal bootstrap machines. Machines live for
// the session; the bound keeps abandoned sessions from accumulating for the
// life of the process.
const maxMachines = 1024

type machineEntry struct {
	machine  *adminflow.Machine
	lastSeen time.Time
}

type Handler struct {
	store     *query.Store
	upload    config.UploadConfig
	logger    *slog.Logger
	validator *validator.Validate

	// One bootstrap machine per principal, living for the session.
	mu       sync.Mutex
	machines map[string]*machineEntry
	now      func() time.Time
}

func NewHandler(
	store *query.Store,
	upload config.UploadConfig,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:     store,
		upload:    upload,
		logger:    logger,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		machines:  make(map[string]*machineEntry),
		now:       time.Now,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)

		r.Route("/bootstrap", func(r chi.Router) {
			r.Get("/", h.BootstrapStatus)
			r.Post("/initialize", h.BootstrapInitialize)
			r.Post("/claim", h.BootstrapClaim)
			r.Post("/retry", h.BootstrapRetry)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Put("/{productID}", h.UpdateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
			r.Post("/{productID}/publish", h.SetPublished)
			r.Post("/{productID}/file", h.UploadFile)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.CreateCategory)
			r.Delete("/{categoryID}", h.DeleteCategory)
		})

		r.Put("/roles/{principal}", h.AssignRole)
	})
}

func (h *Handler) machine(principal string) *adminflow.Machine {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.machines[principal]; ok {
		entry.lastSeen = h.now()
		return entry.machine
	}

	if len(h.machines) >= maxMachines {
		h.evictOldestLocked()
	}

	entry := &machineEntry{
		machine:  adminflow.NewMachine(h.store),
		lastSeen: h.now(),
	}
	h.machines[principal] = entry
	return entry.machine
}

func (h *Handler) evictOldestLocked() {
	var oldestKey string
	var oldestSeen time.Time

	for principal, entry := range h.machines {
		if oldestKey == "" || entry.lastSeen.Before(oldestSeen) {
			oldestKey = principal
			oldestSeen = entry.lastSeen
		}
	}

	if oldestKey != "" {
		delete(h.machines, oldestKey)
	}
}

// --- Bootstrap flow ---

func (h *Handler) BootstrapStatus(w http.ResponseWriter, r *http.Request) {
	m := h.machine(middleware.GetPrincipal(r.Context()))
	state := m.Advance(r.Context())
	core.OK(w, ToBootstrapResponse(state))
}

func (h *Handler) BootstrapInitialize(w http.ResponseWriter, r *http.Request) {
	m := h.machine(middleware.GetPrincipal(r.Context()))

	// Catch up first so an initialize posted against a stale view of the
	// flow still lands on the right state check.
	m.Advance(r.Context())

	state, err := m.Initialize(r.Context())
	if err != nil {
		h.logger.Warn("store initialize failed",
			"state", state.Kind.String(),
			"error", err,
		)
	}

	core.OK(w, ToBootstrapResponse(state))
}

func (h *Handler) BootstrapClaim(w http.ResponseWriter, r *http.Request) {
	m := h.machine(middleware.GetPrincipal(r.Context()))
	m.Advance(r.Context())

	state, err := m.Claim(r.Context())
	if err != nil {
		h.logger.Warn("store claim failed",
			"state", state.Kind.String(),
			"error", err,
		)
	}

	core.OK(w, ToBootstrapResponse(state))
}

func (h *Handler) BootstrapRetry(w http.ResponseWriter, r *http.Request) {
	m := h.machine(middleware.GetPrincipal(r.Context()))

	state, err := m.Retry(r.Context())
	if err != nil {
		// Retry from a non-error state is a no-op, not a failure.
		state = m.Advance(r.Context())
	}

	core.OK(w, ToBootstrapResponse(state))
}

// --- Products ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.AdminProducts(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToProductResponseList(products))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.store.CreateProduct(r.Context(), req.ToParams()); err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.Created(w, map[string]string{"id": req.ID})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.ID = productID
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.store.UpdateProduct(r.Context(), req.ToParams()); err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, map[string]string{"id": productID})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if err := h.store.DeleteProduct(r.Context(), productID); err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) SetPublished(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	err := h.store.SetProductPublished(r.Context(), productID, req.Published)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, map[string]any{
		"id":        productID,
		"published": req.Published,
	})
}

// UploadFile accepts a multipart PDF and forwards it to the backend with
// progress reporting. Only .pdf files are accepted and the configured size
// cap applies to the whole request body.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxFileBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			core.BadRequest(w, errtext.MsgFileUploadFailed)
			return
		}
		core.BadRequest(w, errtext.MsgNoFileSelected)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		core.BadRequest(w, errtext.MsgPDFOnly)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		core.BadRequest(w, errtext.MsgFileUploadFailed)
		return
	}

	blob := actor.BlobFromBytes(data).WithUploadProgress(func(percent int) {
		h.logger.Debug("upload progress",
			"product_id", productID,
			"percent", percent,
		)
	})

	if err := h.store.UploadProductFile(r.Context(), productID, blob); err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, UploadResponse{
		ProductID: productID,
		SizeBytes: int64(len(data)),
		Uploaded:  true,
	})
}

// --- Categories ---

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.store.CreateCategory(r.Context(), req.ID, req.Name, req.Icon)
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.Created(w, map[string]string{"id": req.ID})
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	if err := h.store.DeleteCategory(r.Context(), categoryID); err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.NoContent(w)
}

// --- Roles ---

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")

	var req AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.store.AssignCallerUserRole(
		r.Context(),
		principal,
		actor.UserRole(req.Role),
	)
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, map[string]string{
		"principal": principal,
		"role":      req.Role,
	})
}
