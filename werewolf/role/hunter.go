package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Hunter takes one last shot when he dies, whatever killed him.
type Hunter struct {
	werewolf.Base
}

func NewHunter() werewolf.Role { return &Hunter{} }

func (h *Hunter) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleHunter,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		NightOrder:  werewolf.OrderSight,
		Description: "Dying, he fires one last shot at a player of his choosing.",
	}
}

func (h *Hunter) OnDeath(ctx context.Context, g *werewolf.Game, p *werewolf.Player, cause werewolf.DeathCause) {
	target, ok := g.ChooseTarget(ctx, h, p, "Your finger is still on the trigger. One last shot?", g.Alive(), true)
	if ok {
		g.Broadcast(fmt.Sprintf("With a dying breath, %s shoots %s!", g.Name(p.ID), g.Name(target)))
		g.QueueDeath(target, werewolf.CauseShot)
	}
}

// Knight dies with his sword out: a wolf kill costs the pack a random wolf.
type Knight struct {
	werewolf.Base
}

func NewKnight() werewolf.Role { return &Knight{} }

func (k *Knight) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleKnight,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionNewMoon,
		NightOrder:  werewolf.OrderProtect,
		Description: "His rusty sword takes a werewolf with him when the pack brings him down.",
	}
}

func (k *Knight) OnDeath(ctx context.Context, g *werewolf.Game, p *werewolf.Player, cause werewolf.DeathCause) {
	if cause != werewolf.CauseWolves {
		return
	}
	wolves := g.AliveWolves()
	if len(wolves) == 0 {
		return
	}
	victim := wolves[g.Rand().Intn(len(wolves))]
	g.Broadcast(fmt.Sprintf("%s's rusty sword finds a wolf in the dark: %s is cut down.", g.Name(p.ID), g.Name(victim)))
	g.QueueDeath(victim, werewolf.CauseRustySword)
}

// Scapegoat hangs whenever the village cannot make up its mind. The tie
// handling itself lives in the day resolution.
type Scapegoat struct {
	werewolf.Base
}

func NewScapegoat() werewolf.Role { return &Scapegoat{} }

func (s *Scapegoat) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleScapegoat,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderSight,
		Description: "Pays with his life whenever the lynch vote ends in a tie.",
	}
}
