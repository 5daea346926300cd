package role

import (
	"context"
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Witch holds one healing potion and one poison, each spent forever once
// used. She wakes after the wolves so she can react to their victim.
type Witch struct {
	werewolf.Base
	healUsed   bool
	poisonUsed bool
}

func NewWitch() werewolf.Role { return &Witch{} }

func (w *Witch) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RoleWitch,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionBasic,
		NightOrder:  werewolf.OrderPotion,
		SelfTarget:  true,
		Description: "Owns one healing potion and one poison. Each works exactly once.",
	}
}

func (w *Witch) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	// Saving herself spends the one self-target every self-capable role gets.
	if victim := g.WolfVictim(); victim != 0 && !w.healUsed && (victim != p.ID || !w.SelfTargetUsed()) {
		if g.Confirm(ctx, p, fmt.Sprintf("The wolves chose %s. Spend your healing potion?", g.Name(victim))) {
			w.healUsed = true
			if victim == p.ID {
				w.UseSelfTarget()
			}
			g.Heal(victim)
			g.Private(p.ID, "The potion is gone. The victim will wake at dawn.")
		}
	}
	if w.poisonUsed {
		return
	}
	target, ok := g.ChooseTarget(ctx, w, p, "A drop of poison for someone?", g.Alive(), true)
	if ok {
		w.poisonUsed = true
		g.QueueDeath(target, werewolf.CausePoison)
		g.Private(p.ID, fmt.Sprintf("The vial empties into %s's cup.", g.Name(target)))
	}
}

// Pharmacist carries two sleeping draughts that shut down a player's
// abilities for the following night.
type Pharmacist struct {
	werewolf.Base
	draughts int
}

func NewPharmacist() werewolf.Role { return &Pharmacist{draughts: 2} }

func (ph *Pharmacist) Meta() werewolf.Meta {
	return werewolf.Meta{
		Name:        werewolf.RolePharmacist,
		Faction:     werewolf.FactionVillage,
		Expansion:   consts.ExpansionNewMoon,
		NightOrder:  werewolf.OrderPotion,
		Description: "Two sleeping draughts. A dosed player sleeps through the next night.",
	}
}

func (ph *Pharmacist) OnNight(ctx context.Context, g *werewolf.Game, p *werewolf.Player, night int) {
	if ph.draughts <= 0 {
		return
	}
	target, ok := g.ChooseTarget(ctx, ph, p, "Slip someone a sleeping draught?", g.Alive(), true)
	if !ok {
		return
	}
	ph.draughts--
	g.DisableSkills(target)
	g.Private(p.ID, fmt.Sprintf("%s will sleep like the dead tomorrow night. %d draughts left.", g.Name(target), ph.draughts))
}
