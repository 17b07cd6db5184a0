// AngelaMos | 2026
// store_test.go

package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
)

func testPolicies() Policies {
	return Policies{
		StaleTime:  time.Minute,
		AdminRetry: RetryPolicy{MaxRetries: 2, Delay: time.Millisecond},
	}
}

func newTestStore(t *testing.T) (*Store, *actor.Fake) {
	t.Helper()
	fake := actor.NewFake()
	store := NewStore(fake, NewCache(nil), testPolicies())
	return store, fake
}

func asPrincipal(principal string) context.Context {
	return actor.WithPrincipal(context.Background(), principal)
}

func TestUnboundStoreReportsNotEligible(t *testing.T) {
	store := NewUnboundStore(NewCache(nil), testPolicies())

	_, err := store.AdminSystemInitialized(context.Background())
	require.ErrorIs(t, err, ErrNotEligible)

	_, err = store.CallerProfile(asPrincipal("p1"))
	require.ErrorIs(t, err, ErrNotEligible)

	err = store.PurchaseProduct(asPrincipal("p1"), "n1")
	require.ErrorIs(t, err, ErrNotEligible)
}

func TestBindMakesStoreReady(t *testing.T) {
	store := NewUnboundStore(NewCache(nil), testPolicies())
	require.False(t, store.Ready())

	store.Bind(actor.NewFake())
	assert.True(t, store.Ready())

	_, err := store.AdminSystemInitialized(asPrincipal("p1"))
	require.NoError(t, err)
}

func TestCreateAndPublishInvalidatesStorefront(t *testing.T) {
	store, fake := newTestStore(t)
	fake.SeedAdmin("owner")
	fake.SeedCategory("cs", "Computer Science", "cpu")
	ctx := asPrincipal("owner")

	products, err := store.StorefrontProducts(ctx)
	require.NoError(t, err)
	require.Empty(t, products)

	err = store.CreateProduct(ctx, actor.ProductParams{
		ID:           "n1",
		Title:        "Distributed Systems Notes",
		Author:       "Pat",
		PriceInCents: 1500,
		CategoryID:   "cs",
	})
	require.NoError(t, err)

	err = store.SetProductPublished(ctx, "n1", true)
	require.NoError(t, err)

	products, err = store.StorefrontProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "n1", products[0].ID)
}

func TestPublishGateRejectsNonPositivePrice(t *testing.T) {
	store, fake := newTestStore(t)
	fake.SeedAdmin("owner")
	fake.SeedCategory("cs", "Computer Science", "cpu")
	ctx := asPrincipal("owner")

	err := store.CreateProduct(ctx, actor.ProductParams{
		ID:         "free1",
		Title:      "Zero Priced Notes",
		Author:     "Pat",
		CategoryID: "cs",
	})
	require.NoError(t, err)

	err = store.SetProductPublished(ctx, "free1", true)
	require.ErrorIs(t, err, core.ErrInvalidInput)

	// The backend was never asked to publish.
	assert.Equal(t, 0, fake.Calls("SetProductPublished"))

	// Unpublishing is always allowed.
	err = store.SetProductPublished(ctx, "free1", false)
	require.NoError(t, err)
}

func TestCallerScopedProfileKeys(t *testing.T) {
	store, _ := newTestStore(t)
	alice := asPrincipal("alice")
	bob := asPrincipal("bob")

	saved, err := store.SaveCallerProfile(alice, actor.UserProfile{Name: "Alice"})
	require.NoError(t, err)
	require.Equal(t, "Alice", saved.Name)

	got, err := store.CallerProfile(alice)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	// A missing profile is a valid cached answer, not an error.
	bobProfile, err := store.CallerProfile(bob)
	require.NoError(t, err)
	assert.Nil(t, bobProfile)
}

func TestPurchaseInvalidatesLibrary(t *testing.T) {
	store, fake := newTestStore(t)
	fake.SeedAdmin("owner")
	fake.SeedCategory("cs", "Computer Science", "cpu")
	owner := asPrincipal("owner")
	buyer := asPrincipal("buyer")

	require.NoError(t, store.CreateProduct(owner, actor.ProductParams{
		ID:           "n1",
		Title:        "Thermo Notes",
		Author:       "Sam",
		PriceInCents: 900,
		CategoryID:   "cs",
	}))
	require.NoError(t, store.SetProductPublished(owner, "n1", true))

	library, err := store.PurchasedProducts(buyer)
	require.NoError(t, err)
	require.Empty(t, library)

	require.NoError(t, store.PurchaseProduct(buyer, "n1"))

	library, err = store.PurchasedProducts(buyer)
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, "n1", library[0].ID)

	ids, err := store.PurchasedProductIDs(buyer)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, ids)
}

func TestFailedWriteLeavesCacheUntouched(t *testing.T) {
	store, fake := newTestStore(t)
	fake.SeedAdmin("owner")
	fake.SeedCategory("cs", "Computer Science", "cpu")
	ctx := asPrincipal("owner")

	_, err := store.StorefrontProducts(ctx)
	require.NoError(t, err)
	listCalls := fake.Calls("ListStorefrontProducts")

	fake.FailNext("CreateProduct", actor.NewError(
		actor.CodeUnavailable,
		"actor not available",
	))
	err = store.CreateProduct(ctx, actor.ProductParams{
		ID:           "n2",
		Title:        "Lost Notes",
		Author:       "Pat",
		PriceInCents: 100,
		CategoryID:   "cs",
	})
	require.Error(t, err)

	// The list is still fresh in cache; no refetch happens.
	_, err = store.StorefrontProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, listCalls, fake.Calls("ListStorefrontProducts"))
}

func TestAdminReadRetriesBoundedly(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := asPrincipal("p1")

	fake.FailNext("IsAdminSystemInitialized", actor.NewError(
		actor.CodeUnavailable,
		"actor not available",
	))

	initialized, err := store.AdminSystemInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)
	assert.Equal(t, 2, fake.Calls("IsAdminSystemInitialized"))
}

func TestProfileReadNeverRetries(t *testing.T) {
	store, fake := newTestStore(t)
	ctx := asPrincipal("p1")

	failure := actor.NewError(actor.CodeUnavailable, "actor not available")
	fake.FailNext("GetCallerUserProfile", failure)

	_, err := store.CallerProfile(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, fake.Calls("GetCallerUserProfile"))
}

func TestIsCallerAdminAlwaysRefetches(t *testing.T) {
	store, fake := newTestStore(t)
	fake.MarkClaimable()
	ctx := asPrincipal("p1")

	isAdmin, err := store.CallerIsAdmin(ctx)
	require.NoError(t, err)
	require.False(t, isAdmin)

	require.NoError(t, store.ClaimStoreOwnership(ctx))

	// The fresh answer is visible immediately, no staleness window.
	isAdmin, err = store.CallerIsAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func TestCategoryScopedListInvalidatedByProductWrite(t *testing.T) {
	store, fake := newTestStore(t)
	fake.SeedAdmin("owner")
	fake.SeedCategory("cs", "Computer Science", "cpu")
	ctx := asPrincipal("owner")

	byCategory, err := store.StorefrontProductsByCategory(ctx, "cs")
	require.NoError(t, err)
	require.Empty(t, byCategory)

	require.NoError(t, store.CreateProduct(ctx, actor.ProductParams{
		ID:           "n3",
		Title:        "Algorithms Notes",
		Author:       "Kim",
		PriceInCents: 700,
		CategoryID:   "cs",
	}))
	require.NoError(t, store.SetProductPublished(ctx, "n3", true))

	byCategory, err = store.StorefrontProductsByCategory(ctx, "cs")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
}
