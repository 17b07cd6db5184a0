// AngelaMos | 2026
// handler.go

package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/errtext"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.SaveMe)
		r.Get("/role", h.GetRole)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/profiles", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListProfiles)
		r.Get("/{principal}", h.GetProfile)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.service.Me(r.Context())
	if err != nil {
		if errors.Is(err, query.ErrNotEligible) {
			core.Unavailable(w, "session not bound yet")
			return
		}
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToMeResponse(me))
}

func (h *Handler) SaveMe(w http.ResponseWriter, r *http.Request) {
	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	saved, err := h.service.Save(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(saved))
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.Role(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, RoleResponse{Role: string(role)})
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.AllProfiles(r.Context())
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	core.OK(w, ToPrincipalProfileList(profiles))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")

	profile, err := h.service.Profile(r.Context(), principal)
	if err != nil {
		errtext.WriteError(w, err)
		return
	}

	if profile == nil {
		core.NotFound(w, "profile")
		return
	}

	core.OK(w, ToProfileResponse(profile))
}
