// AngelaMos | 2026
// service_test.go

package profile

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
)

func newService(fake *actor.Fake) *Service {
	store := query.NewStore(fake, query.NewCache(nil), query.Policies{
		StaleTime: time.Minute,
	})
	return NewService(store)
}

func signedIn(principal string) context.Context {
	return actor.WithPrincipal(context.Background(), principal)
}

func TestSaveTrimsName(t *testing.T) {
	svc := newService(actor.NewFake())

	saved, err := svc.Save(signedIn("alice"), "  Alice Liddell  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", saved.Name)

	me, err := svc.Me(signedIn("alice"))
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "Alice Liddell", me.Name)
}

func TestSaveRejectsBlankName(t *testing.T) {
	svc := newService(actor.NewFake())

	_, err := svc.Save(signedIn("alice"), "   ")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSaveRejectsOverlongName(t *testing.T) {
	svc := newService(actor.NewFake())

	_, err := svc.Save(signedIn("alice"), strings.Repeat("a", 101))
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestMeWithoutProfileIsNil(t *testing.T) {
	svc := newService(actor.NewFake())

	me, err := svc.Me(signedIn("nobody"))
	require.NoError(t, err)
	assert.Nil(t, me)

	resp := ToMeResponse(me)
	assert.False(t, resp.Exists)
	assert.Nil(t, resp.Profile)
}

func TestRoleDefaultsToUser(t *testing.T) {
	fake := actor.NewFake()
	svc := newService(fake)

	role, err := svc.Role(signedIn("alice"))
	require.NoError(t, err)
	assert.Equal(t, actor.RoleUser, role)
}

func TestAllProfilesRequiresAdmin(t *testing.T) {
	fake := actor.NewFake()
	fake.SeedAdmin("owner")
	svc := newService(fake)

	_, err := svc.Save(signedIn("alice"), "Alice")
	require.NoError(t, err)

	_, err = svc.AllProfiles(signedIn("alice"))
	require.Error(t, err)

	all, err := svc.AllProfiles(signedIn("owner"))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].Principal)
}
