package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Thief opens the match by looking at the two undealt cards. If both are
// wolves he must take one; otherwise he may keep his own card.
type Thief struct {
	werewolf.Base
}

func NewThief() werewolf.Role { return &Thief{} }

func (t *Thief) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleThief,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionNewMoon,
		NightOrder:  werewolf.OrderSwap,
		Description: "Picks between two spare cards on the first night. Two wolf cards force his hand.",
	}
}

func (t *Thief) OnFirstNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player) {
	spares := g.Spares()
	if len(spares) == 0 {
		return
	}
	labels := make([]string, len(spares))
	allWolves := true
	for i, r := range spares {
		labels[i] = r.Meta().Name
		if r.Meta().Faction != werewolf.FactionWerewolf {
			allWolves = false
		}
	}
	pick, ok := g.ChooseOption(ctx, p, "Two cards lie face down. Swap for one?", labels, !allWolves)
	if !ok {
		if !allWolves {
			g.Private(p.ID, "You keep the card you were dealt.")
			return
		}
		pick = g.Rand().Intn(len(spares))
		g.Private(p.ID, "Both cards smell of wolf. One of them is yours now.")
	}
	taken := g.TakeSpare(pick)
	g.SwapRole(p, taken)
	g.Private(p.ID, fmt.Sprintf("You slip the old card under the table. You are now the %s.", taken.Meta().Name))
}
