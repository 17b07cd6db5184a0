// AngelaMos | 2026
// buildinfo_test.go

package buildinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrefersURLOverride(t *testing.T) {
	r := NewResolver("27")

	req := httptest.NewRequest(http.MethodGet, "/buildinfo", nil)
	assert.Equal(t, "27", r.Resolve(req))

	req = httptest.NewRequest(http.MethodGet, "/buildinfo?v=30", nil)
	assert.Equal(t, "30", r.Resolve(req))
}

func TestCheckFirstVisitStoresVersion(t *testing.T) {
	r := NewResolver("27")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/buildinfo", nil)

	result := r.Check(rec, req)

	assert.Equal(t, "27", result.Version)
	assert.False(t, result.Mismatch)
	assert.False(t, result.Reload)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, versionCookie, cookies[0].Name)
	assert.Equal(t, "27", cookies[0].Value)
}

func TestCheckMismatchSignalsOneReload(t *testing.T) {
	r := NewResolver("28")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/buildinfo", nil)
	req.AddCookie(&http.Cookie{Name: versionCookie, Value: "27"})

	result := r.Check(rec, req)
	assert.True(t, result.Mismatch)
	assert.True(t, result.Reload)

	// A client that already attempted the reload keeps the mismatch flag but
	// is never told to reload again.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/buildinfo", nil)
	req.AddCookie(&http.Cookie{Name: versionCookie, Value: "27"})
	req.AddCookie(&http.Cookie{Name: reloadCookie, Value: "true"})

	result = r.Check(rec, req)
	assert.True(t, result.Mismatch)
	assert.False(t, result.Reload)
}

func TestCheckStableVersionIsQuiet(t *testing.T) {
	r := NewResolver("27")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/buildinfo", nil)
	req.AddCookie(&http.Cookie{Name: versionCookie, Value: "27"})

	result := r.Check(rec, req)
	assert.False(t, result.Mismatch)
	assert.False(t, result.Reload)
	assert.Empty(t, rec.Result().Cookies())
}
