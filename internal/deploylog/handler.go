// AngelaMos | 2026
// handler.go

package deploylog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/engineer-notes-shop/internal/core"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/devtools", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/deploy-report", h.Analyze)
		r.Get("/deploy-commands", h.Commands)
	})
}

type AnalyzeRequest struct {
	Output string `json:"output"`
}

type AnalyzeResponse struct {
	FailingStep string   `json:"failing_step"`
	ErrorText   string   `json:"error_text"`
	Suggestion  string   `json:"suggestion"`
	Rationale   string   `json:"rationale"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
	Report      string   `json:"report"`
	Retry       string   `json:"retry_command"`
	Diagnostics []string `json:"diagnostic_commands"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	parsed := Parse(req.Output)
	fix := SuggestFix(parsed)

	core.OK(w, AnalyzeResponse{
		FailingStep: string(parsed.FailingStep),
		ErrorText:   parsed.ErrorText,
		Suggestion:  fix.Suggestion,
		Rationale:   fix.Rationale,
		CodeSnippet: fix.CodeSnippet,
		Report:      FormatReport(parsed, fix),
		Retry:       RetryCommand(),
		Diagnostics: DiagnosticCommands(),
	})
}

func (h *Handler) Commands(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]any{
		"retry_command":       RetryCommand(),
		"diagnostic_commands": DiagnosticCommands(),
	})
}
