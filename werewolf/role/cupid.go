package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Cupid fires two arrows on the first night. The lovers share one fate.
type Cupid struct {
	werewolf.Base
}

func NewCupid() werewolf.Role { return &Cupid{} }

func (c *Cupid) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleCupid,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		NightOrder:  werewolf.OrderCupid,
		SelfTarget:  true,
		Description: "On the first night, binds two players as lovers. If one dies, so does the other.",
	}
}

func (c *Cupid) OnFirstNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player) {
	first, ok := g.ChooseTarget(ctx, c, p, "Your first arrow flies at...", g.Alive(), true)
	if !ok {
		return
	}
	second, ok := g.ChooseTarget(ctx, c, p, "And the second arrow at...", g.AliveExcept(first), true)
	if !ok {
		return
	}
	g.Pair(first, second)
	g.Private(first, fmt.Sprintf("An arrow finds your heart. You are in love with %s. You live and die together.", g.Name(second)))
	g.Private(second, fmt.Sprintf("An arrow finds your heart. You are in love with %s. You live and die together.", g.Name(first)))
	g.Private(p.ID, "Both arrows found their mark.")
}
