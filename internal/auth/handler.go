// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/caffeinepub/engineer-notes-shop/internal/core"
)

// Handler mints session tokens for local development. It is only mounted
// outside production; deployed environments verify tokens from the external
// identity provider and never expose a minting surface.
type Handler struct {
	jwt       *JWTManager
	validator *validator.Validate
}

func NewHandler(jwt *JWTManager) *Handler {
	return &Handler{
		jwt:       jwt,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/dev-token", h.DevToken)
	})
}

type DevTokenRequest struct {
	Principal string `json:"principal" validate:"required,min=1,max=128"`
	Role      string `json:"role"      validate:"omitempty,oneof=admin user guest"`
}

type DevTokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

func (h *Handler) DevToken(w http.ResponseWriter, r *http.Request) {
	var req DevTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if req.Role == "" {
		req.Role = "user"
	}

	token, err := h.jwt.CreateSessionToken(SessionTokenParams{
		Principal: req.Principal,
		Role:      req.Role,
	})
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DevTokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.jwt.config.AccessTokenExpire.Seconds()),
	})
}
