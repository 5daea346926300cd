package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// prey is the pack's candidate set: everyone alive who does not run with
// the wolves.
func prey(g *werewolf.Game) []int64 {
	out := make([]int64, 0)
	for _, id := range g.Alive() {
		if g.Player(id).Alignment() != werewolf.FactionWerewolf {
			out = append(out, id)
		}
	}
	return out
}

type Werewolf struct {
	werewolf.Base
}

func NewWerewolf() werewolf.Role { return &Werewolf{} }

func (w *Werewolf) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleWerewolf,
		Faction:     werewolf.FactionWerewolf,
		Expansion:   consts.ExpansionBasic,
		NightOrder:  werewolf.OrderWolves,
		Description: "Each night the pack devours one villager. Blend in by day.",
	}
}

func (w *Werewolf) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, w, p, "Who does the pack devour tonight?", prey(g), true)
	if ok {
		g.CastWolfVote(p.ID, target)
		g.WolfSend(fmt.Sprintf("%s wants to devour %s.", g.Name(p.ID), g.Name(target)))
	}
}

// AlphaWerewolf votes with the pack and once per match may turn the pack's
// victim instead of killing them.
type AlphaWerewolf struct {
	werewolf.Base
	infected bool
}

func NewAlphaWerewolf() werewolf.Role { return &AlphaWerewolf{} }

func (a *AlphaWerewolf) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleAlphaWerewolf,
		Faction:     werewolf.FactionWerewolf,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderWolves,
		Description: "Leads the pack. Once per match, the victim is turned instead of eaten.",
	}
}

func (a *AlphaWerewolf) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, a, p, "Who does the pack devour tonight?", prey(g), true)
	if ok {
		g.CastWolfVote(p.ID, target)
	}
	if !a.infected && g.Confirm(ctx, p, "Spend your one infection on tonight's victim?") {
		a.infected = true
		g.Infect()
		g.WolfSend("The alpha bares its fangs: tonight's victim joins the pack.")
	}
}

// BigBadWolf hunts a second victim on its own for as long as no werewolf
// has died.
type BigBadWolf struct {
	werewolf.Base
}

func NewBigBadWolf() werewolf.Role { return &BigBadWolf{} }

func (b *BigBadWolf) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleBigBadWolf,
		Faction:     werewolf.FactionWerewolf,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderWolves,
		Description: "Hunts an extra victim each night until a werewolf dies.",
	}
}

func (b *BigBadWolf) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, b, p, "Who does the pack devour tonight?", prey(g), true)
	if ok {
		g.CastWolfVote(p.ID, target)
	}
	if g.WolfEverDied() {
		return
	}
	extra, ok := g.ChooseTarget(ctx, b, p, "You are still hungry. A second victim?", prey(g), true)
	if ok {
		g.QueueDeath(extra, werewolf.CauseHungryWolf)
	}
}

// WolfShaman votes with the pack and learns one player's exact role each
// night.
type WolfShaman struct {
	werewolf.Base
}

func NewWolfShaman() werewolf.Role { return &WolfShaman{} }

func (s *WolfShaman) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleWolfShaman,
		Faction:     werewolf.FactionWerewolf,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderWolves,
		Description: "Runs with the pack and divines one villager's role each night.",
	}
}

func (s *WolfShaman) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, s, p, "Who does the pack devour tonight?", prey(g), true)
	if ok {
		g.CastWolfVote(p.ID, target)
	}
	mark, ok := g.ChooseTarget(ctx, s, p, "Whose spirit do you read?", prey(g), true)
	if ok {
		t := g.Player(mark)
		if len(t.Roles) > 0 {
			g.Private(p.ID, fmt.Sprintf("The spirits whisper: %s is the %s.", g.Name(mark), t.Roles[0].Meta().Name))
		}
	}
}

// WhiteWolf runs with the pack but wins alone: every second night it may
// thin the pack itself.
type WhiteWolf struct {
	werewolf.Base
}

func NewWhiteWolf() werewolf.Role { return &WhiteWolf{} }

func (w *WhiteWolf) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleWhiteWolf,
		Faction:     werewolf.FactionWerewolf,
		Expansion:   consts.ExpansionNewMoon,
		NightOrder:  werewolf.OrderWolves,
		Description: "Hunts with the pack, wins alone. Every second night it may devour a wolf.",
	}
}

func (w *WhiteWolf) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, w, p, "Who does the pack devour tonight?", prey(g), true)
	if ok {
		g.CastWolfVote(p.ID, target)
	}
	if night%2 != 0 {
		return
	}
	pack := make([]int64, 0)
	for _, id := range g.AliveWolves() {
		if id != p.ID {
			pack = append(pack, id)
		}
	}
	kill, ok := g.ChooseTarget(ctx, w, p, "The moon is white. Devour one of your own?", pack, true)
	if ok {
		g.QueueDeath(kill, werewolf.CauseWhiteWolf)
	}
}
