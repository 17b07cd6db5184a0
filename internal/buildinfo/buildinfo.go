// AngelaMos | 2026
// buildinfo.go

// Package buildinfo resolves the active build version for cache busting. A
// `?v=` override wins over the configured default, and a version mismatch
// against the client's last-seen version yields a one-shot reload signal so
// stale assets stabilize on the latest build without a reload loop.
package buildinfo

import "net/http"

const (
	versionParam  = "v"
	versionCookie = "app_build_version"
	reloadCookie  = "app_build_reload_attempted"
)

type Resolver struct {
	current string
}

func NewResolver(currentVersion string) *Resolver {
	return &Resolver{current: currentVersion}
}

// Resolve returns the active build version for a request.
func (r *Resolver) Resolve(req *http.Request) string {
	if v := req.URL.Query().Get(versionParam); v != "" {
		return v
	}
	return r.current
}

type CheckResult struct {
	Version  string `json:"version"`
	Mismatch bool   `json:"mismatch"`
	Reload   bool   `json:"reload"`
}

// Check compares the request's resolved version against the last version the
// client saw and decides whether the client should reload. At most one
// reload is signaled per session; a persisting mismatch after that is
// reported without another reload.
func (r *Resolver) Check(w http.ResponseWriter, req *http.Request) CheckResult {
	version := r.Resolve(req)
	stored := cookieValue(req, versionCookie)
	attempted := cookieValue(req, reloadCookie) == "true"

	result := CheckResult{Version: version}

	if stored != "" && stored != version {
		result.Mismatch = true
		if !attempted {
			result.Reload = true
			setCookie(w, reloadCookie, "true", true)
		}
	}

	if stored != version {
		setCookie(w, versionCookie, version, false)
	}

	return result
}

func cookieValue(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func setCookie(w http.ResponseWriter, name, value string, session bool) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
	if !session {
		c.MaxAge = 60 * 60 * 24 * 365
	}
	http.SetCookie(w, c)
}
