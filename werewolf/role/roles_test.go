package role_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoi-online/server/werewolf"
	"github.com/masoi-online/server/werewolf/role"
)

// scriptCourier answers prompts through a pluggable script and records
// everything else.
type scriptCourier struct {
	mu         sync.Mutex
	asks       []werewolf.Ask
	broadcasts []string
	privates   map[int64][]string
	answer     func(playerID int64, ask werewolf.Ask) werewolf.Pick
}

func newScriptCourier() *scriptCourier {
	return &scriptCourier{privates: map[int64][]string{}}
}

func (s *scriptCourier) Broadcast(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, msg)
}

func (s *scriptCourier) Private(playerID int64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privates[playerID] = append(s.privates[playerID], msg)
}

func (s *scriptCourier) Choose(ctx context.Context, playerID int64, ask werewolf.Ask) werewolf.Pick {
	s.mu.Lock()
	s.asks = append(s.asks, ask)
	answer := s.answer
	s.mu.Unlock()
	if answer == nil {
		return werewolf.Pick{Skipped: true}
	}
	return answer(playerID, ask)
}

func (s *scriptCourier) OpenChannel(name string, members []int64) (werewolf.Channel, error) {
	return nopChannel{}, nil
}

func (s *scriptCourier) askCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.asks)
}

func (s *scriptCourier) privateText(playerID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.privates[playerID], "\n")
}

func (s *scriptCourier) broadcastText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.broadcasts, "\n")
}

func (s *scriptCourier) sawAsk(substr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ask := range s.asks {
		if strings.Contains(ask.Title, substr) {
			return true
		}
	}
	return false
}

type nopChannel struct{}

func (nopChannel) Send(msg string)       {}
func (nopChannel) Invite(playerID int64) {}
func (nopChannel) Close()                {}

type testDir struct{}

func (testDir) Name(playerID int64) string { return fmt.Sprintf("P%d", playerID) }

// pickFirst answers every prompt with its first offered option.
func pickFirst(playerID int64, ask werewolf.Ask) werewolf.Pick {
	return werewolf.Pick{TargetID: ask.Options[0].ID}
}

// pickID answers every prompt with the given target when offered, skipping
// otherwise.
func pickID(id int64) func(int64, werewolf.Ask) werewolf.Pick {
	return func(_ int64, ask werewolf.Ask) werewolf.Pick {
		for _, opt := range ask.Options {
			if opt.ID == id {
				return werewolf.Pick{TargetID: id}
			}
		}
		return werewolf.Pick{Skipped: true}
	}
}

// tableGame joins n players and hands each the role built for it, bypassing
// the random deal.
func tableGame(c *scriptCourier, roles ...werewolf.Role) *werewolf.Game {
	g := werewolf.NewGame(1, c, testDir{}, role.DefaultRegistry(), werewolf.Config{Seed: 13})
	for i, r := range roles {
		id := int64(i + 1)
		if err := g.Join(id); err != nil {
			panic(err)
		}
		g.Player(id).Roles = []werewolf.Role{r}
	}
	return g
}

// runMatch drives the full match loop until cond holds, then stops it and
// waits for the loop to wind down.
func runMatch(t *testing.T, g *werewolf.Game, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("match never reached the expected point")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestDefaultRegistryRoster(t *testing.T) {
	reg := role.DefaultRegistry()
	names := reg.Names(nil, nil)
	assert.Len(t, names, 30)
	for _, name := range []string{
		werewolf.RoleVillager, werewolf.RoleWerewolf, werewolf.RoleSeer,
		werewolf.RoleWitch, werewolf.RoleHunter, werewolf.RoleCupid,
		werewolf.RoleThief, werewolf.RolePiper, werewolf.RoleAngelOfDeath,
	} {
		assert.True(t, reg.Has(name), name)
	}

	a, err := reg.New(werewolf.RoleWitch)
	require.NoError(t, err)
	b, err := reg.New(werewolf.RoleWitch)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestWitchPoisonWorksOnce(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickID(2)
	witch := role.NewWitch()
	g := tableGame(c, witch, role.NewVillager(), role.NewVillager())

	witch.OnNight(context.Background(), g, g.Player(1), 1)
	assert.Equal(t, 1, c.askCount())
	assert.Contains(t, c.privateText(1), "vial")

	// The vial is empty; the second night asks nothing.
	witch.OnNight(context.Background(), g, g.Player(1), 2)
	assert.Equal(t, 1, c.askCount())
}

func TestWitchSelfSaveSpendsTheSelfTarget(t *testing.T) {
	c := newScriptCourier()
	witch := role.NewWitch().(*role.Witch)
	c.answer = func(_ int64, ask werewolf.Ask) werewolf.Pick {
		switch {
		case strings.Contains(ask.Title, "devour"):
			return werewolf.Pick{TargetID: 2}
		case strings.Contains(ask.Title, "healing potion"):
			return werewolf.Pick{TargetID: 1}
		default:
			return werewolf.Pick{Skipped: true}
		}
	}
	g := tableGame(c, role.NewWerewolf(), witch, role.NewVillager(), role.NewVillager())

	runMatch(t, g, func() bool {
		return strings.Contains(c.privateText(2), "potion is gone")
	})
	assert.True(t, witch.SelfTargetUsed())
	assert.True(t, g.Player(2).Alive)
}

func TestWitchHealOnAnotherKeepsTheSelfTarget(t *testing.T) {
	c := newScriptCourier()
	witch := role.NewWitch().(*role.Witch)
	c.answer = func(_ int64, ask werewolf.Ask) werewolf.Pick {
		switch {
		case strings.Contains(ask.Title, "devour"):
			return werewolf.Pick{TargetID: 3}
		case strings.Contains(ask.Title, "healing potion"):
			return werewolf.Pick{TargetID: 1}
		default:
			return werewolf.Pick{Skipped: true}
		}
	}
	g := tableGame(c, role.NewWerewolf(), witch, role.NewVillager(), role.NewVillager())

	runMatch(t, g, func() bool {
		return strings.Contains(c.privateText(2), "potion is gone")
	})
	assert.False(t, witch.SelfTargetUsed())
	assert.True(t, g.Player(3).Alive)
}

func TestWitchSelfSaveNotOfferedOnceSelfTargetSpent(t *testing.T) {
	c := newScriptCourier()
	witch := role.NewWitch().(*role.Witch)
	witch.UseSelfTarget()
	c.answer = func(_ int64, ask werewolf.Ask) werewolf.Pick {
		if strings.Contains(ask.Title, "devour") {
			return werewolf.Pick{TargetID: 2}
		}
		return werewolf.Pick{Skipped: true}
	}
	g := tableGame(c, role.NewWerewolf(), witch, role.NewVillager(), role.NewVillager())

	runMatch(t, g, func() bool {
		return strings.Contains(c.broadcastText(), "Day 1 breaks")
	})
	assert.False(t, c.sawAsk("healing potion"))
	assert.False(t, g.Player(2).Alive)
}

func TestGuardNeverGuardsTwiceInARow(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickID(2)
	guard := role.NewGuard()
	g := tableGame(c, guard, role.NewVillager(), role.NewVillager())

	guard.OnNight(context.Background(), g, g.Player(1), 1)
	require.Equal(t, 1, c.askCount())

	guard.OnNight(context.Background(), g, g.Player(1), 2)
	require.Equal(t, 2, c.askCount())
	for _, opt := range c.asks[1].Options {
		assert.NotEqual(t, int64(2), opt.ID)
	}
}

func TestCupidPairsTwoLovers(t *testing.T) {
	c := newScriptCourier()
	picks := []int64{2, 3}
	c.answer = func(_ int64, ask werewolf.Ask) werewolf.Pick {
		pick := picks[0]
		picks = picks[1:]
		return werewolf.Pick{TargetID: pick}
	}
	cupid := role.NewCupid()
	g := tableGame(c, cupid, role.NewVillager(), role.NewVillager())

	cupid.OnFirstNight(context.Background(), g, g.Player(1))
	assert.Equal(t, int64(3), g.LoverOf(2))
	assert.Equal(t, int64(2), g.LoverOf(3))
	assert.Contains(t, c.privateText(2), "in love with P3")
	assert.Contains(t, c.privateText(3), "in love with P2")
}

func TestPharmacistHasTwoDraughts(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickID(2)
	ph := role.NewPharmacist()
	g := tableGame(c, ph, role.NewVillager(), role.NewVillager())

	ph.OnNight(context.Background(), g, g.Player(1), 1)
	assert.True(t, g.Player(2).SkillsDisabled)

	g.Player(2).SkillsDisabled = false
	ph.OnNight(context.Background(), g, g.Player(1), 2)
	assert.True(t, g.Player(2).SkillsDisabled)

	ph.OnNight(context.Background(), g, g.Player(1), 3)
	assert.Equal(t, 2, c.askCount())
}

func TestWolfHoundPicksTheWolves(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickID(2)
	hound := role.NewWolfHound()
	g := tableGame(c, hound, role.NewVillager(), role.NewVillager())

	hound.OnFirstNight(context.Background(), g, g.Player(1))
	p := g.Player(1)
	assert.Equal(t, werewolf.FactionWerewolf, p.Alignment())
	assert.True(t, p.HasRole(werewolf.RoleWerewolf))
}

func TestWolfHoundPicksTheVillage(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickFirst
	hound := role.NewWolfHound()
	g := tableGame(c, hound, role.NewVillager(), role.NewVillager())

	hound.OnFirstNight(context.Background(), g, g.Player(1))
	assert.Equal(t, werewolf.FactionVillage, g.Player(1).Alignment())
}

func TestJudgeOrdersOneSecondVote(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickFirst
	judge := role.NewJudge()
	g := tableGame(c, judge, role.NewVillager(), role.NewVillager())

	judge.OnDay(context.Background(), g, g.Player(1), 1)
	assert.Equal(t, 1, c.askCount())
	assert.Contains(t, c.privateText(1), "So ordered")

	judge.OnDay(context.Background(), g, g.Player(1), 2)
	assert.Equal(t, 1, c.askCount())
}

func TestHunterFiresOnDeath(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickID(2)
	hunter := role.NewHunter()
	g := tableGame(c, hunter, role.NewVillager(), role.NewVillager())

	hunter.OnDeath(context.Background(), g, g.Player(1), werewolf.CauseWolves)
	require.NotEmpty(t, c.broadcasts)
	assert.Contains(t, c.broadcasts[0], "shoots P2")
}

func TestPiperCharmsTwoANight(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickFirst
	piper := role.NewPiper()
	g := tableGame(c, piper, role.NewVillager(), role.NewVillager(), role.NewVillager())

	piper.OnNight(context.Background(), g, g.Player(1), 1)
	assert.Equal(t, 2, c.askCount())
	assert.True(t, g.Charmed(2))
	assert.True(t, g.Charmed(3))
	assert.False(t, g.Charmed(4))
	assert.Contains(t, c.privateText(2), "charmed")
}

func TestAngelSleepsUntilDayTwo(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickFirst
	angel := role.NewAngelOfDeath()
	g := tableGame(c, angel, role.NewVillager(), role.NewVillager())

	angel.OnNight(context.Background(), g, g.Player(1), 1)
	assert.Zero(t, c.askCount())
}

func TestSeerReadsARole(t *testing.T) {
	c := newScriptCourier()
	c.answer = pickID(2)
	seer := role.NewSeer()
	g := tableGame(c, seer, role.NewWerewolf(), role.NewVillager())

	seer.OnNight(context.Background(), g, g.Player(1), 1)
	assert.Contains(t, c.privateText(1), "P2 is the Werewolf")
}

func TestTwoSistersKnowEachOther(t *testing.T) {
	c := newScriptCourier()
	g := tableGame(c, role.NewTwoSisters(), role.NewTwoSisters(), role.NewVillager())

	g.Player(1).Roles[0].OnAssign(g, g.Player(1))
	assert.Contains(t, c.privateText(1), "P2")

	g.Player(3).Roles[0].OnAssign(g, g.Player(3))
	assert.Empty(t, c.privateText(3))
}
