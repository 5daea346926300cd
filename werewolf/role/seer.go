package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

type Seer struct {
	werewolf.Base
}

func NewSeer() werewolf.Role { return &Seer{} }

func (s *Seer) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleSeer,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		NightOrder:  werewolf.OrderSight,
		Description: "Each night, learns one player's exact role.",
	}
}

func (s *Seer) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, s, p, "Whose soul do you look into tonight?", g.Alive(), true)
	if !ok {
		return
	}
	t := g.Player(target)
	if len(t.Roles) == 0 {
		return
	}
	g.Private(p.ID, fmt.Sprintf("Your crystal clears: %s is the %s.", g.Name(target), t.Roles[len(t.Roles)-1].Meta().Name))
}

// AuraSeer only senses which side a player stands on.
type AuraSeer struct {
	werewolf.Base
}

func NewAuraSeer() werewolf.Role { return &AuraSeer{} }

func (s *AuraSeer) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleAuraSeer,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderSight,
		Description: "Each night, senses whether a player walks with the village, the wolves or alone.",
	}
}

func (s *AuraSeer) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	target, ok := g.ChooseTarget(ctx, s, p, "Whose aura do you read tonight?", g.Alive(), true)
	if !ok {
		return
	}
	g.Private(p.ID, fmt.Sprintf("The aura around %s glows %s.", g.Name(target), g.Player(target).Alignment()))
}

// Fox sniffs a player and their roster neighbors; a clean sniff burns the
// power for the rest of the match.
type Fox struct {
	werewolf.Base
}

func NewFox() werewolf.Role { return &Fox{} }

func (f *Fox) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleFox,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderSight,
		Description: "Sniffs a group of three neighbors for wolves. A clean sniff ends the gift.",
	}
}

func (f *Fox) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	if g.FoxFailed() {
		return
	}
	target, ok := g.ChooseTarget(ctx, f, p, "Whose den do you sniff around tonight?", g.Alive(), true)
	if !ok {
		return
	}
	alive := g.Alive()
	idx := 0
	for i, id := range alive {
		if id == target {
			idx = i
			break
		}
	}
	group := []int64{target}
	if len(alive) > 1 {
		group = append(group, alive[(idx+1)%len(alive)], alive[(idx+len(alive)-1)%len(alive)])
	}
	for _, id := range group {
		if g.Player(id).Alignment() == werewolf.FactionWerewolf {
			g.Private(p.ID, "The scent of wolf hangs over that den.")
			return
		}
	}
	g.FoxFail()
	g.Private(p.ID, "Nothing but sheep. Your nose will never work again.")
}
