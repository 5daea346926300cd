package werewolf

import (
	"context"

	"github.com/masoi-online/server/werewolf/vote"
)

type Faction int

const (
	FactionVillage Faction = iota
	FactionWerewolf
	FactionNeutral
)

func (f Faction) String() string {
	switch f {
	case FactionVillage:
		return "Village"
	case FactionWerewolf:
		return "Werewolf"
	case FactionNeutral:
		return "Neutral"
	}
	return "Unknown"
}

type DeathCause int

const (
	CauseWolves DeathCause = iota
	CauseLynch
	CausePoison
	CauseShot
	CauseGrief
	CauseWhiteWolf
	CauseRustySword
	CauseSacrifice
	CauseHungryWolf
)

func (c DeathCause) String() string {
	switch c {
	case CauseWolves:
		return "devoured by the wolves"
	case CauseLynch:
		return "lynched by the village"
	case CausePoison:
		return "poisoned"
	case CauseShot:
		return "shot"
	case CauseGrief:
		return "died of grief"
	case CauseWhiteWolf:
		return "torn apart in the dark"
	case CauseRustySword:
		return "cut down by a rusty sword"
	case CauseSacrifice:
		return "sacrificed on a tied vote"
	case CauseHungryWolf:
		return "devoured a second time that night"
	}
	return "dead"
}

// KillAttempt reports whether the cause is a night kill that a guard's
// protection can cancel.
func (c DeathCause) KillAttempt() bool {
	switch c {
	case CauseWolves, CauseWhiteWolf, CauseHungryWolf:
		return true
	}
	return false
}

// Role names. The orchestrator keys a handful of passive interactions
// (elder wound, cursed bite, scapegoat tie, idiot reveal) off these.
const (
	RoleVillager      = "Villager"
	RoleWerewolf      = "Werewolf"
	RoleAlphaWerewolf = "Alpha Werewolf"
	RoleBigBadWolf    = "Big Bad Wolf"
	RoleWolfShaman    = "Wolf Shaman"
	RoleSeer          = "Seer"
	RoleAuraSeer      = "Aura Seer"
	RoleFox           = "Fox"
	RoleGuard         = "Guard"
	RoleElder         = "Elder"
	RoleWitch         = "Witch"
	RolePharmacist    = "Pharmacist"
	RoleHunter        = "Hunter"
	RoleKnight        = "Knight"
	RoleScapegoat     = "Scapegoat"
	RoleCupid         = "Cupid"
	RoleLittleGirl    = "Little Girl"
	RoleIdiot         = "Idiot"
	RoleMayor         = "Mayor"
	RoleJudge         = "Judge"
	RoleRaven         = "Raven"
	RoleTwoSisters    = "Two Sisters"
	RoleThreeBrothers = "Three Brothers"
	RoleCursed        = "Cursed"
	RoleThief         = "Thief"
	RoleWhiteWolf     = "White Wolf"
	RolePiper         = "Piper"
	RoleWildChild     = "Wild Child"
	RoleWolfHound     = "Wolf Hound"
	RoleAngelOfDeath  = "Angel of Death"
)

// Night ordering groups. Hooks inside one group run concurrently; groups run
// strictly in ascending order.
const (
	OrderSwap    = 0
	OrderSide    = 5
	OrderCupid   = 10
	OrderProtect = 20
	OrderWolves  = 30
	OrderSight   = 40
	OrderPotion  = 50
	OrderCurse   = 60
)

// Meta is the fixed metadata record of a role class.
type Meta struct {
	Name        string
	Faction     Faction
	Expansion   string
	NightOrder  int
	SelfTarget  bool
	Description string
}

// Role is one assigned role instance. Instances are never shared between
// players or matches; mutable charge/flag state lives on the instance.
// All hooks are optional, Base provides the no-ops.
type Role interface {
	Meta() Meta
	OnAssign(g *Game, p *Player)
	OnFirstNight(ctx context.Context, g *Game, p *Player)
	OnNight(ctx context.Context, g *Game, p *Player, night int)
	OnDay(ctx context.Context, g *Game, p *Player, day int)
	OnVoteResult(ctx context.Context, g *Game, p *Player, res vote.Result)
	OnDeath(ctx context.Context, g *Game, p *Player, cause DeathCause)

	SelfTargetUsed() bool
	UseSelfTarget()
}

// Base carries the self-target once-per-match flag and the no-op hooks.
// Every concrete role embeds it.
type Base struct {
	selfUsed bool
}

func (b *Base) OnAssign(g *Game, p *Player)                                       {}
func (b *Base) OnFirstNight(ctx context.Context, g *Game, p *Player)              {}
func (b *Base) OnNight(ctx context.Context, g *Game, p *Player, night int)        {}
func (b *Base) OnDay(ctx context.Context, g *Game, p *Player, day int)            {}
func (b *Base) OnVoteResult(ctx context.Context, g *Game, p *Player, r vote.Result) {}
func (b *Base) OnDeath(ctx context.Context, g *Game, p *Player, cause DeathCause) {}

func (b *Base) SelfTargetUsed() bool { return b.selfUsed }
func (b *Base) UseSelfTarget()       { b.selfUsed = true }
