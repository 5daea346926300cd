package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Guard shields one player per night, never the same player twice in a row.
// Guarding himself is allowed once per match.
type Guard struct {
	werewolf.Base
	lastTarget int64
}

func NewGuard() werewolf.Role { return &Guard{} }

func (gd *Guard) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleGuard,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		NightOrder:  werewolf.OrderProtect,
		SelfTarget:  true,
		Description: "Protects one player from the wolves each night, never the same twice in a row.",
	}
}

func (gd *Guard) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	pool := make([]int64, 0)
	for _, id := range g.Alive() {
		if id != gd.lastTarget {
			pool = append(pool, id)
		}
	}
	target, ok := g.ChooseTarget(ctx, gd, p, "Whose door do you guard tonight?", pool, true)
	if !ok {
		gd.lastTarget = 0
		return
	}
	gd.lastTarget = target
	g.Protect(target)
	g.Private(p.ID, fmt.Sprintf("You stand watch at %s's door until dawn.", g.Name(target)))
}

// Elder takes two wolf bites to bring down; the first only wounds.
type Elder struct {
	werewolf.Base
}

func NewElder() werewolf.Role { return &Elder{} }

func (e *Elder) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleElder,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderProtect,
		Description: "Has lived through worse. Survives the first wolf attack.",
	}
}
