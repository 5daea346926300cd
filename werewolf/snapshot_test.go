package werewolf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	c := newFakeCourier()
	g := newTestGame(c, map[int64]Role{
		1: stub(RoleWerewolf, FactionWerewolf, OrderWolves),
		2: stub(RoleSeer, FactionVillage, OrderSight),
		3: stub(RoleElder, FactionVillage, OrderProtect),
		4: stub(RoleVillager, FactionVillage, 0),
	})
	g.phase = PhaseDay
	g.nightNumber = 3
	g.dayNumber = 3
	g.Pair(2, 4)
	g.Charm(4)
	g.BindModel(3, 1)
	g.MarkForTheft(2, 1)
	g.wolfDied = true
	g.Player(3).elderWounded = true
	g.Player(4).Alive = false
	g.Player(4).VoteDisabled = true
	g.Player(2).VoteWeight = 2

	data, err := g.Snapshot()
	require.NoError(t, err)

	c2 := newFakeCourier()
	r, err := Restore(data, c2, fakeDir{}, stubRegistry(), Config{})
	require.NoError(t, err)

	assert.Equal(t, g.ID, r.ID)
	assert.Equal(t, g.Host, r.Host)
	assert.Equal(t, PhaseDay, r.Phase())
	assert.Equal(t, 3, r.NightNumber())
	assert.Equal(t, 3, r.DayNumber())
	assert.Equal(t, g.Order(), r.Order())

	assert.Equal(t, int64(4), r.LoverOf(2))
	assert.Equal(t, int64(2), r.LoverOf(4))
	assert.True(t, r.Charmed(4))
	assert.Equal(t, map[int64]int64{3: 1}, r.modelsSnapshot())
	assert.Equal(t, map[int64]int64{2: 1}, r.marksSnapshot())
	assert.True(t, r.WolfEverDied())

	p := r.Player(3)
	require.NotNil(t, p)
	assert.True(t, p.elderWounded)
	assert.True(t, p.HasRole(RoleElder))

	dead := r.Player(4)
	assert.False(t, dead.Alive)
	assert.True(t, dead.VoteDisabled)
	assert.Equal(t, 2, r.Player(2).VoteWeight)
	assert.True(t, r.Player(1).HasRole(RoleWerewolf))
	assert.Equal(t, FactionWerewolf, r.Player(1).Alignment())
}

func TestSnapshotKeepsExpansions(t *testing.T) {
	c := newFakeCourier()
	g := NewGame(1, c, fakeDir{}, stubRegistry(), Config{
		Expansions: map[string]bool{"new-moon": true},
	})
	require.NoError(t, g.Join(1))

	data, err := g.Snapshot()
	require.NoError(t, err)

	r, err := Restore(data, c, fakeDir{}, stubRegistry(), Config{})
	require.NoError(t, err)
	assert.True(t, r.Expansion("new-moon"))
	assert.True(t, r.Expansion("basic"))
}

func TestRestoreUnknownRole(t *testing.T) {
	c := newFakeCourier()
	g := newTestGame(c, map[int64]Role{
		1: stub("Stranger", FactionVillage, 0),
	})
	data, err := g.Snapshot()
	require.NoError(t, err)

	_, err = Restore(data, c, fakeDir{}, stubRegistry(), Config{})
	assert.Error(t, err)
}

func TestRestoredMatchReentersSavedNight(t *testing.T) {
	c := newFakeCourier()
	g := newTestGame(c, map[int64]Role{
		1: stub(RoleWerewolf, FactionWerewolf, OrderWolves),
		2: stub(RoleVillager, FactionVillage, 0),
		3: stub(RoleVillager, FactionVillage, 0),
	})
	g.nightNumber = 2
	g.dayNumber = 1
	data, err := g.Snapshot()
	require.NoError(t, err)

	r, err := Restore(data, newFakeCourier(), fakeDir{}, stubRegistry(), Config{})
	require.NoError(t, err)
	require.Equal(t, 2, r.NightNumber())

	// The saved night is replayed, not skipped.
	r.nightPhase(context.Background())
	assert.Equal(t, 2, r.NightNumber())

	// The following night advances as usual.
	r.nightPhase(context.Background())
	assert.Equal(t, 3, r.NightNumber())
}

func TestRestoredMatchReentersSavedDay(t *testing.T) {
	c := newFakeCourier()
	g := newTestGame(c, map[int64]Role{
		1: stub(RoleWerewolf, FactionWerewolf, OrderWolves),
		2: stub(RoleVillager, FactionVillage, 0),
		3: stub(RoleVillager, FactionVillage, 0),
	})
	g.phase = PhaseDay
	g.nightNumber = 2
	g.dayNumber = 2
	data, err := g.Snapshot()
	require.NoError(t, err)

	r, err := Restore(data, newFakeCourier(), fakeDir{}, stubRegistry(), Config{VoteTimeout: 200 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, 2, r.DayNumber())

	r.dayPhase(context.Background(), nil)
	assert.Equal(t, 2, r.DayNumber())
}

func TestRestoredMatchKeepsRunning(t *testing.T) {
	c := newFakeCourier()
	g := newTestGame(c, map[int64]Role{
		1: stub(RoleWerewolf, FactionWerewolf, OrderWolves),
		2: stub(RoleVillager, FactionVillage, 0),
		3: stub(RoleVillager, FactionVillage, 0),
	})
	data, err := g.Snapshot()
	require.NoError(t, err)

	r, err := Restore(data, c, fakeDir{}, stubRegistry(), Config{})
	require.NoError(t, err)

	// The restored match still accepts mutations and win evaluation.
	r.QueueDeath(1, CauseLynch)
	r.resolveDeaths(nil)
	assert.True(t, r.finishIfWon())
	require.NotNil(t, r.Winner())
	assert.Equal(t, FactionVillage, r.Winner().Faction)
}
