// AngelaMos | 2026
// actor.go

package actor

import (
	"context"
	"fmt"
)

// The storefront backend is an actor-style service: it owns authentication
// truth, storage and purchase bookkeeping. The gateway only ever talks to it
// through this interface.

type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	PriceInCents int64    `json:"price_in_cents"`
	CategoryID   string   `json:"category_id"`
	IsPublished  bool     `json:"is_published"`
	File         *FileRef `json:"file,omitempty"`
}

// FileRef marks an uploaded product file. A published product may still have
// no file attached.
type FileRef struct {
	URL       string `json:"url,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

func (p *Product) HasFile() bool {
	return p.File != nil
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type UserProfile struct {
	Name string `json:"name"`
}

type PrincipalProfile struct {
	Principal string      `json:"principal"`
	Profile   UserProfile `json:"profile"`
}

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// Client is the remote actor contract. Every call suspends until the backend
// answers; the caller's identity travels in the context (see WithPrincipal).
type Client interface {
	// Reads.
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)
	ListStorefrontProducts(ctx context.Context) ([]Product, error)
	ListStorefrontProductsByCategory(
		ctx context.Context,
		categoryID string,
	) ([]Product, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetCallerUserProfile(ctx context.Context) (*UserProfile, error)
	GetCallerUserRole(ctx context.Context) (UserRole, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
	IsAdminSystemInitialized(ctx context.Context) (bool, error)
	IsStoreClaimable(ctx context.Context) (bool, error)
	GetPurchasedProductIDs(ctx context.Context) ([]string, error)
	GetUserProfile(
		ctx context.Context,
		principal string,
	) (*UserProfile, error)
	GetAllUserProfiles(ctx context.Context) ([]PrincipalProfile, error)

	// Writes.
	CreateProduct(ctx context.Context, p ProductParams) error
	UpdateProduct(ctx context.Context, p ProductParams) error
	DeleteProduct(ctx context.Context, id string) error
	SetProductPublished(ctx context.Context, id string, published bool) error
	UploadProductFile(ctx context.Context, id string, blob *Blob) error
	CreateCategory(ctx context.Context, id, name, icon string) error
	DeleteCategory(ctx context.Context, id string) error
	SaveCallerUserProfile(
		ctx context.Context,
		profile UserProfile,
	) (*UserProfile, error)
	AssignCallerUserRole(
		ctx context.Context,
		principal string,
		role UserRole,
	) error
	PurchaseProduct(ctx context.Context, productID string) error
	ClaimStoreOwnership(ctx context.Context) error
	InitializeStore(ctx context.Context) error
	SetAdminInitialized(ctx context.Context) error
	DownloadProductFile(ctx context.Context, productID string) (*Blob, error)

	// Ping reports backend reachability for health checks.
	Ping(ctx context.Context) error
}

type ProductParams struct {
	ID           string
	Title        string
	Author       string
	PriceInCents int64
	CategoryID   string
}

// Error codes reported by the backend. Older backend builds only return
// free-form messages, so the message text is kept verbatim for the
// substring-based translation fallback.
const (
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInvalid      = "invalid"
	CodeUnavailable  = "unavailable"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

type principalKey struct{}

// WithPrincipal binds the caller's principal to the context. An absent or
// empty principal means the call is anonymous.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey{}).(string); ok {
		return p
	}
	return ""
}

func IsAnonymous(ctx context.Context) bool {
	return PrincipalFromContext(ctx) == ""
}
