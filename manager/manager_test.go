package manager_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/manager"
	"github.com/masoi-online/server/storage"
	"github.com/masoi-online/server/werewolf"
	"github.com/masoi-online/server/werewolf/role"
)

type silentCourier struct{}

func (silentCourier) Broadcast(msg string)               {}
func (silentCourier) Private(playerID int64, msg string) {}
func (silentCourier) Choose(ctx context.Context, playerID int64, ask werewolf.Ask) werewolf.Pick {
	return werewolf.Pick{Skipped: true}
}
func (silentCourier) OpenChannel(name string, members []int64) (werewolf.Channel, error) {
	return silentChannel{}, nil
}

type silentChannel struct{}

func (silentChannel) Send(msg string)       {}
func (silentChannel) Invite(playerID int64) {}
func (silentChannel) Close()                {}

type silentDir struct{}

func (silentDir) Name(playerID int64) string { return fmt.Sprintf("P%d", playerID) }

func newLobby(t *testing.T, players int) *werewolf.Game {
	t.Helper()
	g := werewolf.NewGame(1, silentCourier{}, silentDir{}, role.DefaultRegistry(), werewolf.Config{Seed: 1})
	for id := int64(1); id <= int64(players); id++ {
		require.NoError(t, g.Join(id))
	}
	return g
}

func TestCreateRefusesSecondMatch(t *testing.T) {
	m := manager.New(storage.NewMemory())
	key := manager.Key{Guild: "g", Channel: "c"}

	require.NoError(t, m.Create(key, newLobby(t, 6)))
	assert.Equal(t, consts.ErrorsMatchExist, m.Create(key, newLobby(t, 6)))

	other := manager.Key{Guild: "g", Channel: "other"}
	assert.NoError(t, m.Create(other, newLobby(t, 6)))
}

func TestGetReturnsTheLiveMatch(t *testing.T) {
	m := manager.New(storage.NewMemory())
	key := manager.Key{Guild: "g", Channel: "c"}
	g := newLobby(t, 6)

	assert.Nil(t, m.Get(key))
	require.NoError(t, m.Create(key, g))
	assert.Same(t, g, m.Get(key))
}

func TestStartUnknownKey(t *testing.T) {
	m := manager.New(storage.NewMemory())
	err := m.Start(manager.Key{Guild: "g", Channel: "c"}, nil)
	assert.Equal(t, consts.ErrorsMatchNotFound, err)
}

func TestStartRefusesTinyLobby(t *testing.T) {
	m := manager.New(storage.NewMemory())
	key := manager.Key{Guild: "g", Channel: "c"}
	require.NoError(t, m.Create(key, newLobby(t, 2)))
	assert.Equal(t, consts.ErrorsGamePlayersInvalid, m.Start(key, nil))
}

func TestSaveAndRestoreRoundTrip(t *testing.T) {
	store := storage.NewMemory()
	m := manager.New(store)
	key := manager.Key{Guild: "g", Channel: "c"}
	g := newLobby(t, 6)
	require.NoError(t, m.Create(key, g))
	require.NoError(t, m.Save(key))

	// A fresh manager over the same store, as after a process restart.
	m2 := manager.New(store)
	restored, err := m2.Restore(key, silentCourier{}, silentDir{}, role.DefaultRegistry(), werewolf.Config{})
	require.NoError(t, err)
	assert.Equal(t, g.ID, restored.ID)
	assert.Equal(t, g.Order(), restored.Order())
	assert.Same(t, restored, m2.Get(key))
}

func TestSaveWithoutMatch(t *testing.T) {
	m := manager.New(storage.NewMemory())
	err := m.Save(manager.Key{Guild: "g", Channel: "c"})
	assert.Equal(t, consts.ErrorsSnapshotNotFound, err)
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	m := manager.New(storage.NewMemory())
	_, err := m.Restore(manager.Key{Guild: "g", Channel: "c"}, silentCourier{}, silentDir{}, role.DefaultRegistry(), werewolf.Config{})
	assert.Equal(t, consts.ErrorsSnapshotNotFound, err)
}

func TestRemoveDropsMatchAndSnapshot(t *testing.T) {
	store := storage.NewMemory()
	m := manager.New(store)
	key := manager.Key{Guild: "g", Channel: "c"}
	require.NoError(t, m.Create(key, newLobby(t, 6)))
	require.NoError(t, m.Save(key))

	m.Remove(key)
	assert.Nil(t, m.Get(key))
	_, err := store.Get(key.Guild, key.Channel)
	assert.Equal(t, consts.ErrorsSnapshotNotFound, err)
}

func TestEachWalksLiveMatches(t *testing.T) {
	m := manager.New(storage.NewMemory())
	a := manager.Key{Guild: "g", Channel: "a"}
	b := manager.Key{Guild: "g", Channel: "b"}
	require.NoError(t, m.Create(a, newLobby(t, 6)))
	require.NoError(t, m.Create(b, newLobby(t, 6)))

	seen := map[manager.Key]bool{}
	m.Each(func(k manager.Key, g *werewolf.Game) {
		seen[k] = true
	})
	assert.Len(t, seen, 2)
	assert.True(t, seen[a])
	assert.True(t, seen[b])
}
