package role

import (
	"context"
	"fmt"
	"strings"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

type Villager struct {
	werewolf.Base
}

func NewVillager() werewolf.Role { return &Villager{} }

func (v *Villager) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleVillager,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		Description: "No powers, only a vote and a pair of eyes.",
	}
}

// LittleGirl peeks while the wolves feed. The peeking itself happens at the
// table; the engine only reminds her what she may do.
type LittleGirl struct {
	werewolf.Base
}

func NewLittleGirl() werewolf.Role { return &LittleGirl{} }

func (l *LittleGirl) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleLittleGirl,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		Description: "May peek while the wolves are awake, at her own risk.",
	}
}

func (l *LittleGirl) OnAssign(g *werewolf.Game, p *werewolf.Player) {
	g.Private(p.ID, "You may crack an eye open while the wolves feed. If they catch you peeking, no power will save you.")
}

// TwoSisters know each other from the start.
type TwoSisters struct {
	werewolf.Base
}

func NewTwoSisters() werewolf.Role { return &TwoSisters{} }

func (t *TwoSisters) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleTwoSisters,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		Description: "The sisters know and trust each other from the first night.",
	}
}

func (t *TwoSisters) OnAssign(g *werewolf.Game, p *werewolf.Player) {
	revealKin(g, p, werewolf.RoleTwoSisters, "Your sister is %s.")
}

// ThreeBrothers know each other from the start.
type ThreeBrothers struct {
	werewolf.Base
}

func NewThreeBrothers() werewolf.Role { return &ThreeBrothers{} }

func (t *ThreeBrothers) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleThreeBrothers,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		Description: "The brothers know and trust each other from the first night.",
	}
}

func (t *ThreeBrothers) OnAssign(g *werewolf.Game, p *werewolf.Player) {
	revealKin(g, p, werewolf.RoleThreeBrothers, "Your brothers are %s.")
}

func revealKin(g *werewolf.Game, p *werewolf.Player, name, format string) {
	names := make([]string, 0)
	for _, id := range g.PlayersWithRole(name) {
		if id != p.ID {
			names = append(names, g.Name(id))
		}
	}
	if len(names) > 0 {
		g.Private(p.ID, fmt.Sprintf(format, strings.Join(names, ", ")))
	}
}

// Mayor's vote counts double. Dying, he hands the sash to a successor.
type Mayor struct {
	werewolf.Base
}

func NewMayor() werewolf.Role { return &Mayor{} }

func (m *Mayor) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleMayor,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		Description: "His vote counts double. On his death he appoints a successor.",
	}
}

func (m *Mayor) OnDeath(ctx context.Context, g *werewolf.Game, p *werewolf.Player, cause werewolf.DeathCause) {
	heir, ok := g.ChooseTarget(ctx, m, p, "Who inherits the mayor's sash?", g.Alive(), true)
	if !ok {
		return
	}
	g.Player(heir).VoteWeight = 2
	g.Broadcast(fmt.Sprintf("With a last gesture, %s passes the mayor's sash to %s.", g.Name(p.ID), g.Name(heir)))
}

// Judge can demand a second lynch right after the first, once per match.
type Judge struct {
	werewolf.Base
	used bool
}

func NewJudge() werewolf.Role { return &Judge{} }

func (j *Judge) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleJudge,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionNewMoon,
		Description: "Once per match, orders a second vote straight after the first.",
	}
}

func (j *Judge) OnDay(ctx context.Context, g *werewolf.Game, p *werewolf.Player, day int) {
	if j.used {
		return
	}
	if g.Confirm(ctx, p, "Bang your gavel for a second vote after today's?") {
		j.used = true
		g.RequestSecondVote()
		g.Private(p.ID, "So ordered. The village will vote twice today.")
	}
}

// Idiot survives his own lynch but loses his vote forever. The reveal is
// handled where the lynch resolves.
type Idiot struct {
	werewolf.Base
}

func NewIdiot() werewolf.Role { return &Idiot{} }

func (i *Idiot) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleIdiot,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		Description: "If lynched, he is revealed and spared, but never votes again.",
	}
}

// Raven pins two extra votes on someone's door overnight.
type Raven struct {
	werewolf.Base
}

func NewRaven() werewolf.Role { return &Raven{} }

func (r *Raven) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleRaven,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionNewMoon,
		NightOrder:  werewolf.OrderSight,
		Description: "Each night, pins a mark worth two extra lynch votes on a door.",
	}
}

func (r *Raven) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, r, p, "On whose door do you nail your mark?", g.Alive(), true)
	if !ok {
		return
	}
	g.MarkRaven(target)
	g.Private(p.ID, fmt.Sprintf("Come morning, two extra votes will weigh on %s.", g.Name(target)))
}

// Cursed looks like a villager until the wolves bite him. The bite turns
// him instead of killing him; the conversion lives in the night resolution.
type Cursed struct {
	werewolf.Base
}

func NewCursed() werewolf.Role { return &Cursed{} }

func (c *Cursed) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleCursed,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		Description: "A wolf bite does not kill him. It turns him.",
	}
}
