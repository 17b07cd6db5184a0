// AngelaMos | 2026
// httpclient.go

package actor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/caffeinepub/engineer-notes-shop/internal/config"
)

// HTTPClient talks to the storefront backend over its JSON interface. The
// caller's session token is forwarded verbatim; the backend resolves it to a
// principal and enforces authorization itself.
type HTTPClient struct {
	baseURL       string
	http          *http.Client
	uploadTimeout time.Duration
	tracer        trace.Tracer
}

func NewHTTPClient(cfg config.ActorConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		uploadTimeout: cfg.UploadTimeout,
		tracer:        otel.Tracer("actor"),
	}
}

var _ Client = (*HTTPClient)(nil)

type sessionTokenKey struct{}

// WithSessionToken carries the caller's bearer token so actor calls can be
// made on their behalf.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

func SessionTokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(sessionTokenKey{}).(string); ok {
		return t
	}
	return ""
}

func (c *HTTPClient) GetProduct(
	ctx context.Context,
	id string,
) (*Product, error) {
	var p Product
	err := c.call(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := c.call(ctx, http.MethodGet, "/admin/products", nil, &products)
	return products, err
}

func (c *HTTPClient) ListStorefrontProducts(
	ctx context.Context,
) ([]Product, error) {
	var products []Product
	err := c.call(ctx, http.MethodGet, "/storefront/products", nil, &products)
	return products, err
}

func (c *HTTPClient) ListStorefrontProductsByCategory(
	ctx context.Context,
	categoryID string,
) ([]Product, error) {
	var products []Product
	path := "/storefront/categories/" + url.PathEscape(categoryID) + "/products"
	err := c.call(ctx, http.MethodGet, path, nil, &products)
	return products, err
}

func (c *HTTPClient) GetCategory(
	ctx context.Context,
	id string,
) (*Category, error) {
	var cat Category
	err := c.call(
		ctx,
		http.MethodGet,
		"/categories/"+url.PathEscape(id),
		nil,
		&cat,
	)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *HTTPClient) GetCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	err := c.call(ctx, http.MethodGet, "/categories", nil, &cats)
	return cats, err
}

func (c *HTTPClient) GetCallerUserProfile(
	ctx context.Context,
) (*UserProfile, error) {
	var profile *UserProfile
	err := c.call(ctx, http.MethodGet, "/profile", nil, &profile)
	return profile, err
}

func (c *HTTPClient) GetCallerUserRole(
	ctx context.Context,
) (UserRole, error) {
	var role UserRole
	err := c.call(ctx, http.MethodGet, "/role", nil, &role)
	return role, err
}

func (c *HTTPClient) IsCallerAdmin(ctx context.Context) (bool, error) {
	var isAdmin bool
	err := c.call(ctx, http.MethodGet, "/role/is-admin", nil, &isAdmin)
	return isAdmin, err
}

func (c *HTTPClient) IsAdminSystemInitialized(
	ctx context.Context,
) (bool, error) {
	var initialized bool
	err := c.call(ctx, http.MethodGet, "/admin/initialized", nil, &initialized)
	return initialized, err
}

func (c *HTTPClient) IsStoreClaimable(ctx context.Context) (bool, error) {
	var claimable bool
	err := c.call(ctx, http.MethodGet, "/admin/claimable", nil, &claimable)
	return claimable, err
}

func (c *HTTPClient) GetPurchasedProductIDs(
	ctx context.Context,
) ([]string, error) {
	var ids []string
	err := c.call(ctx, http.MethodGet, "/purchases", nil, &ids)
	return ids, err
}

func (c *HTTPClient) GetUserProfile(
	ctx context.Context,
	principal string,
) (*UserProfile, error) {
	var profile *UserProfile
	path := "/profiles/" + url.PathEscape(principal)
	err := c.call(ctx, http.MethodGet, path, nil, &profile)
	return profile, err
}

func (c *HTTPClient) GetAllUserProfiles(
	ctx context.Context,
) ([]PrincipalProfile, error) {
	var profiles []PrincipalProfile
	err := c.call(ctx, http.MethodGet, "/profiles", nil, &profiles)
	return profiles, err
}

func (c *HTTPClient) CreateProduct(
	ctx context.Context,
	p ProductParams,
) error {
	return c.call(ctx, http.MethodPost, "/products", productBody(p), nil)
}

func (c *HTTPClient) UpdateProduct(
	ctx context.Context,
	p ProductParams,
) error {
	path := "/products/" + url.PathEscape(p.ID)
	return c.call(ctx, http.MethodPut, path, productBody(p), nil)
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) error {
	path := "/products/" + url.PathEscape(id)
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) SetProductPublished(
	ctx context.Context,
	id string,
	published bool,
) error {
	path := "/products/" + url.PathEscape(id) + "/published"
	body := map[string]any{"is_published": published}
	return c.call(ctx, http.MethodPut, path, body, nil)
}

func (c *HTTPClient) UploadProductFile(
	ctx context.Context,
	id string,
	blob *Blob,
) error {
	ctx, span := c.tracer.Start(ctx, "actor.UploadProductFile",
		trace.WithAttributes(attribute.String("product.id", id)),
	)
	defer span.End()

	data, err := blob.Bytes(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	reader := newProgressReader(
		bytes.NewReader(data),
		int64(len(data)),
		blob.reportProgress,
	)

	endpoint := c.baseURL + "/products/" + url.PathEscape(id) + "/file"
	req, err := http.NewRequestWithContext(
		uploadCtx,
		http.MethodPut,
		endpoint,
		reader,
	)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", "application/pdf")
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return NewError(CodeUnavailable, "file upload failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // drained below

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	blob.reportProgress(100)
	return nil
}

func (c *HTTPClient) CreateCategory(
	ctx context.Context,
	id, name, icon string,
) error {
	body := map[string]any{"id": id, "name": name, "icon": icon}
	return c.call(ctx, http.MethodPost, "/categories", body, nil)
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id string) error {
	path := "/categories/" + url.PathEscape(id)
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) SaveCallerUserProfile(
	ctx context.Context,
	profile UserProfile,
) (*UserProfile, error) {
	var saved UserProfile
	err := c.call(ctx, http.MethodPut, "/profile", profile, &saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *HTTPClient) AssignCallerUserRole(
	ctx context.Context,
	principal string,
	role UserRole,
) error {
	body := map[string]any{"principal": principal, "role": role}
	return c.call(ctx, http.MethodPut, "/roles", body, nil)
}

func (c *HTTPClient) PurchaseProduct(
	ctx context.Context,
	productID string,
) error {
	path := "/products/" + url.PathEscape(productID) + "/purchase"
	return c.call(ctx, http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) ClaimStoreOwnership(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/admin/claim", nil, nil)
}

func (c *HTTPClient) InitializeStore(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/admin/initialize", nil, nil)
}

func (c *HTTPClient) SetAdminInitialized(ctx context.Context) error {
	return c.call(ctx, http.MethodPut, "/admin/initialized", nil, nil)
}

func (c *HTTPClient) DownloadProductFile(
	ctx context.Context,
	productID string,
) (*Blob, error) {
	var out struct {
		URL string `json:"url"`
	}

	path := "/products/" + url.PathEscape(productID) + "/file"
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	if out.URL == "" {
		return nil, NewError(CodeUnavailable, "file not available")
	}

	return BlobFromURL(out.URL), nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/healthz", nil, nil)
}

func productBody(p ProductParams) map[string]any {
	return map[string]any{
		"id":             p.ID,
		"title":          p.Title,
		"author":         p.Author,
		"price_in_cents": p.PriceInCents,
		"category_id":    p.CategoryID,
	}
}

func (c *HTTPClient) call(
	ctx context.Context,
	method, path string,
	body any,
	out any,
) error {
	ctx, span := c.tracer.Start(ctx, "actor"+path,
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("actor.path", path),
		),
	)
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		method,
		c.baseURL+path,
		reqBody,
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return NewError(CodeUnavailable, "network error: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read fully below

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *HTTPClient) authorize(ctx context.Context, req *http.Request) {
	if token := SessionTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if principal := PrincipalFromContext(ctx); principal != "" {
		req.Header.Set("X-Caller-Principal", principal)
	}
}

// decodeError maps a backend failure to an *Error. Newer backend builds
// return a structured code; older ones only a message, which downstream
// translation matches by substring.
func decodeError(resp *http.Response) *Error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if readErr == nil && json.Unmarshal(raw, &body) == nil &&
		body.Error.Message != "" {
		code := body.Error.Code
		if code == "" {
			code = codeForStatus(resp.StatusCode)
		}
		return &Error{Code: code, Message: body.Error.Message}
	}

	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = resp.Status
	}

	return &Error{Code: codeForStatus(resp.StatusCode), Message: message}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		return CodeUnauthorized
	case status == http.StatusConflict:
		return CodeConflict
	case status >= 500:
		return CodeUnavailable
	default:
		return CodeInvalid
	}
}
