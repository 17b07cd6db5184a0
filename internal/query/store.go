// AngelaMos | 2026
// store.go

package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/config"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
)

// Operation names double as cache key prefixes. Caller-scoped reads fold the
// caller principal into the key so one session's answer never leaks into
// another's.
const (
	OpAdminSystemInitialized = "adminSystemInitialized"
	OpIsCallerAdmin          = "isCallerAdmin"
	OpStoreClaimable         = "storeClaimable"
	OpCallerProfile          = "currentUserProfile"
	OpCallerRole             = "callerUserRole"
	OpCategories             = "categories"
	OpCategory               = "category"
	OpStorefrontProducts     = "storefrontProducts"
	OpProduct                = "product"
	OpAdminProducts          = "adminProducts"
	OpPurchasedIDs           = "purchasedProductIds"
	OpBuyerLibrary           = "buyerLibrary"
	OpUserProfile            = "userProfile"
	OpAllUserProfiles        = "allUserProfiles"
)

// Policies resolves each operation's staleness and retry options. Admin and
// permission reads retry a small bounded number of times with a fixed delay
// because the backend provisions the admin role lazily; profile reads never
// retry, since a missing profile is a valid state rather than a transient
// failure.
type Policies struct {
	StaleTime  time.Duration
	AdminRetry RetryPolicy
}

func PoliciesFromConfig(cfg config.CacheConfig) Policies {
	return Policies{
		StaleTime: cfg.StaleTime,
		AdminRetry: RetryPolicy{
			MaxRetries: cfg.AdminRetryAttempts,
			Delay:      cfg.AdminRetryDelay,
		},
	}
}

func (p Policies) options(op string) Options {
	switch op {
	case OpIsCallerAdmin:
		// Always refetched so a just-granted role is visible immediately.
		return Options{StaleTime: 0, Retry: p.AdminRetry}
	case OpAdminSystemInitialized, OpAdminProducts, OpStoreClaimable:
		return Options{StaleTime: p.StaleTime, Retry: p.AdminRetry}
	case OpCallerProfile, OpUserProfile:
		return Options{StaleTime: p.StaleTime}
	default:
		return Options{StaleTime: p.StaleTime}
	}
}

// Store binds every actor operation to its cache key, staleness policy and,
// for writes, the fixed set of reads it invalidates on success. A failed
// write leaves the cache untouched and propagates the error.
type Store struct {
	mu       sync.RWMutex
	client   actor.Client
	cache    *Cache
	policies Policies
}

// NewStore returns a store already bound to a backend client.
func NewStore(client actor.Client, cache *Cache, policies Policies) *Store {
	return &Store{client: client, cache: cache, policies: policies}
}

// NewUnboundStore returns a store with no backend binding: every read
// reports ErrNotEligible until Bind is called.
func NewUnboundStore(cache *Cache, policies Policies) *Store {
	return &Store{cache: cache, policies: policies}
}

func (s *Store) Bind(client actor.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
}

func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

func (s *Store) Cache() *Cache {
	return s.cache
}

func (s *Store) eligible() (actor.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, ErrNotEligible
	}
	return s.client, nil
}

func read[T any](
	ctx context.Context,
	s *Store,
	key Key,
	fn func(ctx context.Context, client actor.Client) (T, error),
) (T, error) {
	var zero T

	client, err := s.eligible()
	if err != nil {
		return zero, err
	}

	return Fetch(ctx, s.cache, key, s.policies.options(key.Op),
		func(ctx context.Context) (T, error) {
			return fn(ctx, client)
		},
	)
}

func (s *Store) write(
	ctx context.Context,
	fn func(ctx context.Context, client actor.Client) error,
	invalidates ...string,
) error {
	client, err := s.eligible()
	if err != nil {
		return err
	}

	// The write is awaited to completion before its invalidations apply, so
	// a dependent refetch can never race ahead of the write's effect.
	if err := fn(ctx, client); err != nil {
		return err
	}

	for _, op := range invalidates {
		s.cache.Invalidate(op)
	}
	return nil
}

func (s *Store) principal(ctx context.Context) string {
	return actor.PrincipalFromContext(ctx)
}

// --- Admin system ---

func (s *Store) AdminSystemInitialized(ctx context.Context) (bool, error) {
	return read(ctx, s, NewKey(OpAdminSystemInitialized),
		func(ctx context.Context, c actor.Client) (bool, error) {
			return c.IsAdminSystemInitialized(ctx)
		},
	)
}

func (s *Store) CallerIsAdmin(ctx context.Context) (bool, error) {
	return read(ctx, s, NewKey(OpIsCallerAdmin, s.principal(ctx)),
		func(ctx context.Context, c actor.Client) (bool, error) {
			return c.IsCallerAdmin(ctx)
		},
	)
}

func (s *Store) StoreClaimable(ctx context.Context) (bool, error) {
	return read(ctx, s, NewKey(OpStoreClaimable),
		func(ctx context.Context, c actor.Client) (bool, error) {
			return c.IsStoreClaimable(ctx)
		},
	)
}

func (s *Store) InitializeStore(ctx context.Context) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.InitializeStore(ctx)
		},
		OpAdminSystemInitialized,
		OpIsCallerAdmin,
		OpAdminProducts,
		OpCategories,
		OpCallerProfile,
	)
}

func (s *Store) ClaimStoreOwnership(ctx context.Context) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.ClaimStoreOwnership(ctx)
		},
		OpAdminSystemInitialized,
		OpIsCallerAdmin,
		OpStoreClaimable,
		OpAdminProducts,
	)
}

func (s *Store) SetAdminInitialized(ctx context.Context) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.SetAdminInitialized(ctx)
		},
		OpAdminSystemInitialized,
		OpIsCallerAdmin,
	)
}

// --- Profiles and roles ---

func (s *Store) CallerProfile(
	ctx context.Context,
) (*actor.UserProfile, error) {
	return read(ctx, s, NewKey(OpCallerProfile, s.principal(ctx)),
		func(ctx context.Context, c actor.Client) (*actor.UserProfile, error) {
			return c.GetCallerUserProfile(ctx)
		},
	)
}

func (s *Store) CallerRole(ctx context.Context) (actor.UserRole, error) {
	return read(ctx, s, NewKey(OpCallerRole, s.principal(ctx)),
		func(ctx context.Context, c actor.Client) (actor.UserRole, error) {
			return c.GetCallerUserRole(ctx)
		},
	)
}

func (s *Store) SaveCallerProfile(
	ctx context.Context,
	profile actor.UserProfile,
) (*actor.UserProfile, error) {
	client, err := s.eligible()
	if err != nil {
		return nil, err
	}

	saved, err := client.SaveCallerUserProfile(ctx, profile)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(OpCallerProfile)
	s.cache.Invalidate(OpIsCallerAdmin)
	s.cache.Invalidate(OpAdminSystemInitialized)
	return saved, nil
}

func (s *Store) UserProfile(
	ctx context.Context,
	principal string,
) (*actor.UserProfile, error) {
	return read(ctx, s, NewKey(OpUserProfile, principal),
		func(ctx context.Context, c actor.Client) (*actor.UserProfile, error) {
			return c.GetUserProfile(ctx, principal)
		},
	)
}

func (s *Store) AllUserProfiles(
	ctx context.Context,
) ([]actor.PrincipalProfile, error) {
	return read(ctx, s, NewKey(OpAllUserProfiles),
		func(
			ctx context.Context,
			c actor.Client,
		) ([]actor.PrincipalProfile, error) {
			return c.GetAllUserProfiles(ctx)
		},
	)
}

func (s *Store) AssignCallerUserRole(
	ctx context.Context,
	principal string,
	role actor.UserRole,
) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.AssignCallerUserRole(ctx, principal, role)
		},
		OpIsCallerAdmin,
		OpCallerRole,
	)
}

// --- Categories ---

func (s *Store) Categories(ctx context.Context) ([]actor.Category, error) {
	return read(ctx, s, NewKey(OpCategories),
		func(ctx context.Context, c actor.Client) ([]actor.Category, error) {
			return c.GetCategories(ctx)
		},
	)
}

func (s *Store) Category(
	ctx context.Context,
	id string,
) (*actor.Category, error) {
	return read(ctx, s, NewKey(OpCategory, id),
		func(ctx context.Context, c actor.Client) (*actor.Category, error) {
			return c.GetCategory(ctx, id)
		},
	)
}

func (s *Store) CreateCategory(
	ctx context.Context,
	id, name, icon string,
) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.CreateCategory(ctx, id, name, icon)
		},
		OpCategories,
	)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.DeleteCategory(ctx, id)
		},
		OpCategories,
		OpCategory,
		OpStorefrontProducts,
	)
}

// --- Products ---

func (s *Store) StorefrontProducts(
	ctx context.Context,
) ([]actor.Product, error) {
	return read(ctx, s, NewKey(OpStorefrontProducts),
		func(ctx context.Context, c actor.Client) ([]actor.Product, error) {
			return c.ListStorefrontProducts(ctx)
		},
	)
}

func (s *Store) StorefrontProductsByCategory(
	ctx context.Context,
	categoryID string,
) ([]actor.Product, error) {
	// Shares the storefrontProducts operation so a product write staling
	// the overall list stales every category-scoped list with it.
	return read(ctx, s, NewKey(OpStorefrontProducts, "category", categoryID),
		func(ctx context.Context, c actor.Client) ([]actor.Product, error) {
			return c.ListStorefrontProductsByCategory(ctx, categoryID)
		},
	)
}

func (s *Store) Product(
	ctx context.Context,
	id string,
) (*actor.Product, error) {
	return read(ctx, s, NewKey(OpProduct, id),
		func(ctx context.Context, c actor.Client) (*actor.Product, error) {
			return c.GetProduct(ctx, id)
		},
	)
}

func (s *Store) AdminProducts(ctx context.Context) ([]actor.Product, error) {
	return read(ctx, s, NewKey(OpAdminProducts, s.principal(ctx)),
		func(ctx context.Context, c actor.Client) ([]actor.Product, error) {
			return c.GetProducts(ctx)
		},
	)
}

func (s *Store) CreateProduct(
	ctx context.Context,
	params actor.ProductParams,
) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.CreateProduct(ctx, params)
		},
		OpAdminProducts,
		OpStorefrontProducts,
		OpIsCallerAdmin,
		OpAdminSystemInitialized,
	)
}

func (s *Store) UpdateProduct(
	ctx context.Context,
	params actor.ProductParams,
) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.UpdateProduct(ctx, params)
		},
		OpAdminProducts,
		OpStorefrontProducts,
		OpProduct,
	)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.DeleteProduct(ctx, id)
		},
		OpAdminProducts,
		OpStorefrontProducts,
	)
}

// SetProductPublished gates publishing on a positive price before the
// backend is ever asked.
func (s *Store) SetProductPublished(
	ctx context.Context,
	id string,
	published bool,
) error {
	if published {
		product, err := s.Product(ctx, id)
		if err != nil {
			return err
		}
		if product.PriceInCents <= 0 {
			return fmt.Errorf(
				"publish %s: price must be greater than zero: %w",
				id,
				core.ErrInvalidInput,
			)
		}
	}

	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.SetProductPublished(ctx, id, published)
		},
		OpAdminProducts,
		OpStorefrontProducts,
		OpProduct,
	)
}

func (s *Store) UploadProductFile(
	ctx context.Context,
	id string,
	blob *actor.Blob,
) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.UploadProductFile(ctx, id, blob)
		},
		OpAdminProducts,
		OpStorefrontProducts,
		OpProduct,
	)
}

// --- Purchases ---

func (s *Store) PurchaseProduct(ctx context.Context, id string) error {
	return s.write(ctx,
		func(ctx context.Context, c actor.Client) error {
			return c.PurchaseProduct(ctx, id)
		},
		OpPurchasedIDs,
		OpBuyerLibrary,
	)
}

func (s *Store) PurchasedProductIDs(ctx context.Context) ([]string, error) {
	return read(ctx, s, NewKey(OpPurchasedIDs, s.principal(ctx)),
		func(ctx context.Context, c actor.Client) ([]string, error) {
			return c.GetPurchasedProductIDs(ctx)
		},
	)
}

// PurchasedProducts resolves the caller's library: every purchased id must
// resolve to a product the caller may download.
func (s *Store) PurchasedProducts(
	ctx context.Context,
) ([]actor.Product, error) {
	return read(ctx, s, NewKey(OpBuyerLibrary, s.principal(ctx)),
		func(ctx context.Context, c actor.Client) ([]actor.Product, error) {
			ids, err := c.GetPurchasedProductIDs(ctx)
			if err != nil {
				return nil, err
			}

			products := make([]actor.Product, 0, len(ids))
			for _, id := range ids {
				p, err := c.GetProduct(ctx, id)
				if err != nil {
					return nil, fmt.Errorf("resolve library entry %s: %w", id, err)
				}
				products = append(products, *p)
			}
			return products, nil
		},
	)
}

// DownloadProductFile is a pass-through: downloads are never cached.
func (s *Store) DownloadProductFile(
	ctx context.Context,
	id string,
) (*actor.Blob, error) {
	client, err := s.eligible()
	if err != nil {
		return nil, err
	}
	return client.DownloadProductFile(ctx, id)
}
