package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Piper charms two players a night and wins alone once every other
// survivor dances to his tune.
type Piper struct {
	werewolf.Base
}

func NewPiper() werewolf.Role { return &Piper{} }

func (pp *Piper) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RolePiper,
		Faction:     werewolf.FactionNeutral,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderCurse,
		Description: "Charms two players each night. Wins alone when every survivor is charmed.",
	}
}

func (pp *Piper) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	pool := make([]int64, 0)
	for _, id := range g.AliveExcept(p.ID) {
		if !g.Charmed(id) {
			pool = append(pool, id)
		}
	}
	picked := make([]int64, 0, 2)
	for i := 0; i < 2 && len(pool) > 0; i++ {
		target, ok := g.ChooseTarget(ctx, pp, p, "Your flute calls to...", pool, true)
		if !ok {
			break
		}
		picked = append(picked, target)
		next := pool[:0]
		for _, id := range pool {
			if id != target {
				next = append(next, id)
			}
		}
		pool = next
	}
	if len(picked) == 0 {
		return
	}
	g.Charm(picked...)
	for _, id := range picked {
		g.Private(id, "A faint melody winds through your dreams. You are charmed.")
	}
}

// WildChild idolizes a model on the first night and turns wolf if the
// model dies. The conversion lives in the death resolution.
type WildChild struct {
	werewolf.Base
}

func NewWildChild() werewolf.Role { return &WildChild{} }

func (w *WildChild) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleWildChild,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderSide,
		Description: "Picks a model on the first night. If the model dies, the child joins the wolves.",
	}
}

func (w *WildChild) OnFirstNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player) {
	model, ok := g.ChooseTarget(ctx, w, p, "Whom do you look up to?", g.AliveExcept(p.ID), false)
	if !ok {
		alive := g.AliveExcept(p.ID)
		if len(alive) == 0 {
			return
		}
		model = alive[g.Rand().Intn(len(alive))]
	}
	g.BindModel(p.ID, model)
	g.Private(p.ID, fmt.Sprintf("%s is your whole world. Pray nothing happens to them.", g.Name(model)))
}

// WolfHound picks a side on the first night and stays there.
type WolfHound struct {
	werewolf.Base
}

func NewWolfHound() werewolf.Role { return &WolfHound{} }

func (w *WolfHound) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleWolfHound,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionCharacters,
		NightOrder:  werewolf.OrderSide,
		Description: "On the first night, chooses once and forever between village and pack.",
	}
}

func (w *WolfHound) OnFirstNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player) {
	pick, ok := g.ChooseOption(ctx, p, "Two bloods run in you. Which do you follow?", []string{"The village", "The wolves"}, false)
	if !ok || pick == 0 {
		g.Private(p.ID, "You curl up by the hearth. The village it is.")
		return
	}
	g.ConvertToWolf(p)
}

// AngelOfDeath wins alone by getting lynched in the first two days.
// Failing that, he marks souls at night and inherits the gift of any
// marked player who dies.
type AngelOfDeath struct {
	werewolf.Base
}

func NewAngelOfDeath() werewolf.Role { return &AngelOfDeath{} }

func (a *AngelOfDeath) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleAngelOfDeath,
		Faction:     werewolf.FactionNeutral,
		Expansion:   consts.ExpansionNewMoon,
		NightOrder:  werewolf.OrderCurse,
		Description: "Wins alone if lynched within two days. Failing that, marks souls and inherits the role of a marked player who dies.",
	}
}

func (a *AngelOfDeath) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	if g.DayNumber() < 2 {
		return
	}
	target, ok := g.ChooseTarget(ctx, a, p, "Whose soul do you mark tonight?", g.AliveExcept(p.ID), true)
	if !ok {
		return
	}
	g.MarkForTheft(p.ID, target)
	g.Private(p.ID, fmt.Sprintf("Should %s fall, their gift passes to you.", g.Name(target)))
}

func (a *AngelOfDeath) OnDeath(ctx context.Context, g *werewolf.Game, p *werewolf.Player, cause werewolf.DeathCause) {
	if cause == werewolf.CauseLynch && g.DayNumber() <= 2 {
		g.MarkAngelWin()
	}
}
