package werewolf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoi-online/server/consts"
)

func TestRegistryRegisterAndNew(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubCtor(RoleSeer, FactionVillage, OrderSight)))
	assert.True(t, reg.Has(RoleSeer))

	r, err := reg.New(RoleSeer)
	require.NoError(t, err)
	assert.Equal(t, RoleSeer, r.Meta().Name)

	other, err := reg.New(RoleSeer)
	require.NoError(t, err)
	assert.NotSame(t, r, other)
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubCtor(RoleSeer, FactionVillage, OrderSight)))
	assert.Equal(t, consts.ErrorsRoleDuplicated, reg.Register(stubCtor(RoleSeer, FactionVillage, OrderSight)))
}

func TestRegistryUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.New("Nobody")
	assert.Equal(t, consts.ErrorsRoleUnknown, err)
	assert.False(t, reg.Has("Nobody"))
}

func TestRegistryNamesFilters(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubCtor(RoleWerewolf, FactionWerewolf, OrderWolves)))
	require.NoError(t, reg.Register(stubCtor(RoleVillager, FactionVillage, 0)))
	require.NoError(t, reg.Register(func() Role {
		return &stubRole{meta: Meta{Name: RoleKnight, Faction: FactionVillage, Expansion: consts.ExpansionNewMoon}}
	}))

	all := reg.Names(nil, nil)
	assert.Equal(t, []string{RoleWerewolf, RoleVillager, RoleKnight}, all)

	wolf := FactionWerewolf
	assert.Equal(t, []string{RoleWerewolf}, reg.Names(&wolf, nil))

	basicOnly := map[string]bool{consts.ExpansionBasic: true}
	assert.Equal(t, []string{RoleWerewolf, RoleVillager}, reg.Names(nil, basicOnly))
}
