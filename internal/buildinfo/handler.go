// AngelaMos | 2026
// handler.go

package buildinfo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/engineer-notes-shop/internal/core"
)

type Handler struct {
	resolver *Resolver
	appName  string
	version  string
}

func NewHandler(resolver *Resolver, appName, version string) *Handler {
	return &Handler{
		resolver: resolver,
		appName:  appName,
		version:  version,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/buildinfo", h.BuildInfo)
}

type BuildInfoResponse struct {
	App          string `json:"app"`
	Version      string `json:"version"`
	BuildVersion string `json:"build_version"`
	Mismatch     bool   `json:"mismatch"`
	Reload       bool   `json:"reload"`
}

func (h *Handler) BuildInfo(w http.ResponseWriter, r *http.Request) {
	result := h.resolver.Check(w, r)

	core.OK(w, BuildInfoResponse{
		App:          h.appName,
		Version:      h.version,
		BuildVersion: result.Version,
		Mismatch:     result.Mismatch,
		Reload:       result.Reload,
	})
}
