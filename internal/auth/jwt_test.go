// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/engineer-notes-shop/internal/config"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/middleware"
)

func newTestManager(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "jwt_private.pem")
	publicPath := filepath.Join(dir, "jwt_public.pem")
	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privatePath,
		PublicKeyPath:     publicPath,
		AccessTokenExpire: expire,
		Issuer:            "engineer-notes-shop",
		Audience:          "engineer-notes-shop-api",
	})
	require.NoError(t, err)
	return manager
}

func TestSessionTokenRoundTrip(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	token, err := manager.CreateSessionToken(SessionTokenParams{
		Principal: "alice",
		Role:      "user",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifySessionToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal)
	assert.Equal(t, "user", claims.Role)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager := newTestManager(t, -time.Minute)

	token, err := manager.CreateSessionToken(SessionTokenParams{
		Principal: "alice",
		Role:      "user",
	})
	require.NoError(t, err)

	_, err = manager.VerifySessionToken(context.Background(), token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	token, err := manager.CreateSessionToken(SessionTokenParams{
		Principal: "alice",
		Role:      "user",
	})
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = manager.VerifySessionToken(context.Background(), tampered)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	minter := newTestManager(t, time.Minute)
	verifier := newTestManager(t, time.Minute)

	token, err := minter.CreateSessionToken(SessionTokenParams{
		Principal: "alice",
		Role:      "user",
	})
	require.NoError(t, err)

	_, err = verifier.VerifySessionToken(context.Background(), token)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyRejectsNonSessionType(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	now := time.Now()
	built, err := jwt.NewBuilder().
		Issuer("engineer-notes-shop").
		Audience([]string{"engineer-notes-shop-api"}).
		Subject("alice").
		IssuedAt(now).
		Expiration(now.Add(time.Minute)).
		Claim("role", "user").
		Claim("type", "refresh").
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(built, jwt.WithKey(jwa.ES256(), manager.privateKey))
	require.NoError(t, err)

	_, err = manager.VerifySessionToken(context.Background(), string(signed))
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestPublicKeyVerifiesSignature(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	token, err := manager.CreateSessionToken(SessionTokenParams{
		Principal: "alice",
		Role:      "user",
	})
	require.NoError(t, err)

	parsed, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.ES256(), manager.GetPublicKey()),
		jwt.WithValidate(true),
	)
	require.NoError(t, err)

	subject, ok := parsed.Subject()
	require.True(t, ok)
	assert.Equal(t, "alice", subject)
	assert.Len(t, manager.GetKeyID(), 8)
}

// The minted token must pass the real session middleware, not just direct
// verification.
func TestMintedTokenPassesAuthenticator(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	token, err := manager.CreateSessionToken(SessionTokenParams{
		Principal: "alice",
		Role:      "admin",
	})
	require.NoError(t, err)

	var gotPrincipal, gotRole string
	handler := middleware.Authenticator(manager)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPrincipal = middleware.GetPrincipal(r.Context())
			gotRole = middleware.GetUserRole(r.Context())
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", gotPrincipal)
	assert.Equal(t, "admin", gotRole)
}

func TestDevTokenEndpoint(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	r := chi.NewRouter()
	NewHandler(manager).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(
		http.MethodPost,
		"/auth/dev-token",
		strings.NewReader(`{"principal":"alice"}`),
	)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data DevTokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.Equal(t, int64(60), env.Data.ExpiresIn)

	claims, err := manager.VerifySessionToken(
		context.Background(), env.Data.Token,
	)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal)
	assert.Equal(t, "user", claims.Role)
}

func TestDevTokenEndpointValidation(t *testing.T) {
	manager := newTestManager(t, time.Minute)

	r := chi.NewRouter()
	NewHandler(manager).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(
		http.MethodPost,
		"/auth/dev-token",
		strings.NewReader(`{"principal":"alice","role":"root"}`),
	)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
