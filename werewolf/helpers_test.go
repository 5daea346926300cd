package werewolf

import (
	"context"
	"fmt"
	"sync"

	"github.com/masoi-online/server/consts"
)

// fakeCourier records everything the engine says and answers prompts
// through a pluggable chooser.
type fakeCourier struct {
	mu         sync.Mutex
	broadcasts []string
	privates   map[int64][]string
	chooser    func(playerID int64, ask Ask) Pick
	channel    *fakeChannel
}

func newFakeCourier() *fakeCourier {
	return &fakeCourier{privates: map[int64][]string{}}
}

func (f *fakeCourier) Broadcast(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, msg)
}

func (f *fakeCourier) Private(playerID int64, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.privates[playerID] = append(f.privates[playerID], msg)
}

func (f *fakeCourier) Choose(ctx context.Context, playerID int64, ask Ask) Pick {
	f.mu.Lock()
	chooser := f.chooser
	f.mu.Unlock()
	if chooser == nil {
		return Pick{Skipped: true}
	}
	return chooser(playerID, ask)
}

func (f *fakeCourier) OpenChannel(name string, members []int64) (Channel, error) {
	ch := &fakeChannel{members: map[int64]bool{}}
	for _, id := range members {
		ch.members[id] = true
	}
	f.mu.Lock()
	f.channel = ch
	f.mu.Unlock()
	return ch, nil
}

type fakeChannel struct {
	mu      sync.Mutex
	members map[int64]bool
	sent    []string
	closed  bool
}

func (ch *fakeChannel) Send(msg string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.sent = append(ch.sent, msg)
}

func (ch *fakeChannel) Invite(playerID int64) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.members[playerID] = true
}

func (ch *fakeChannel) Close() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.closed = true
}

type fakeDir struct{}

func (fakeDir) Name(playerID int64) string {
	return fmt.Sprintf("P%d", playerID)
}

// stubRole is a scriptable role instance for engine tests.
type stubRole struct {
	Base
	meta    Meta
	onNight func(ctx context.Context, g *Game, p *Player, night int)
	onDeath func(ctx context.Context, g *Game, p *Player, cause DeathCause)
}

func (s *stubRole) Meta() Meta { return s.meta }

func (s *stubRole) OnNight(ctx context.Context, g *Game, p *Player, night int) {
	if s.onNight != nil {
		s.onNight(ctx, g, p, night)
	}
}

func (s *stubRole) OnDeath(ctx context.Context, g *Game, p *Player, cause DeathCause) {
	if s.onDeath != nil {
		s.onDeath(ctx, g, p, cause)
	}
}

func stub(name string, faction Faction, order int) *stubRole {
	return &stubRole{meta: Meta{Name: name, Faction: faction, Expansion: consts.ExpansionBasic, NightOrder: order}}
}

func stubCtor(name string, faction Faction, order int) Constructor {
	return func() Role { return stub(name, faction, order) }
}

// stubRegistry covers the roster names the engine itself keys logic off.
func stubRegistry() *Registry {
	reg := NewRegistry()
	ctors := []Constructor{
		stubCtor(RoleWerewolf, FactionWerewolf, OrderWolves),
		stubCtor(RoleVillager, FactionVillage, 0),
		stubCtor(RoleSeer, FactionVillage, OrderSight),
		stubCtor(RoleWitch, FactionVillage, OrderPotion),
		stubCtor(RoleHunter, FactionVillage, OrderSight),
		stubCtor(RoleCupid, FactionVillage, OrderCupid),
		stubCtor(RoleElder, FactionVillage, OrderProtect),
		stubCtor(RoleCursed, FactionVillage, 0),
		stubCtor(RoleScapegoat, FactionVillage, 0),
		stubCtor(RoleIdiot, FactionVillage, 0),
		stubCtor(RolePiper, FactionNeutral, OrderCurse),
		stubCtor(RoleWhiteWolf, FactionWerewolf, OrderWolves),
		stubCtor(RoleMayor, FactionVillage, 0),
		stubCtor(RoleThief, FactionVillage, OrderSwap),
	}
	for _, ctor := range ctors {
		if err := reg.Register(ctor); err != nil {
			panic(err)
		}
	}
	return reg
}

// newTestGame wires a game with the given role per player, bypassing the
// lobby and the dealer.
func newTestGame(c *fakeCourier, roles map[int64]Role) *Game {
	g := NewGame(1, c, fakeDir{}, stubRegistry(), Config{Seed: 7})
	ids := make([]int64, 0, len(roles))
	for id := range roles {
		ids = append(ids, id)
	}
	sortInt64s(ids)
	for _, id := range ids {
		g.players[id] = &Player{ID: id, Alive: true, VoteWeight: 1, Roles: []Role{roles[id]}}
		g.order = append(g.order, id)
	}
	g.phase = PhaseNight
	return g
}

func sortInt64s(ids []int64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
