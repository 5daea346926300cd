package werewolf

import "fmt"

// Ending names the winning side of a finished match.
type Ending struct {
	Winner  string
	Faction Faction
	Detail  string
}

// checkWin evaluates every win predicate. Neutral conditions are the more
// specific endgames and take precedence when they coincide with a plain
// faction elimination.
func (g *Game) checkWin() *Ending {
	alive := g.Alive()
	if len(alive) == 0 {
		return &Ending{Winner: "Nobody", Faction: FactionNeutral, Detail: "The village is a graveyard. Nobody wins."}
	}

	villagers, wolves := 0, 0
	for _, id := range alive {
		switch g.Player(id).Alignment() {
		case FactionVillage:
			villagers++
		case FactionWerewolf:
			wolves++
		}
	}

	// Neutral predicates first.
	g.mu.RLock()
	angelWin := g.angelWin
	g.mu.RUnlock()
	if angelWin {
		return &Ending{Winner: "Angel of Death", Faction: FactionNeutral,
			Detail: "The Angel of Death tricked the village into an early grave. The Angel wins."}
	}
	if len(alive) == 2 {
		a, b := alive[0], alive[1]
		if g.LoverOf(a) == b {
			return &Ending{Winner: "Lovers", Faction: FactionNeutral,
				Detail: fmt.Sprintf("Only %s and %s remain, and they only ever needed each other. The lovers win.", g.Name(a), g.Name(b))}
		}
	}
	for _, id := range g.PlayersWithRole(RolePiper) {
		charmedAll := true
		for _, other := range alive {
			if other != id && !g.Charmed(other) {
				charmedAll = false
				break
			}
		}
		if charmedAll && len(alive) > 1 {
			return &Ending{Winner: "Piper", Faction: FactionNeutral,
				Detail: fmt.Sprintf("Every living soul dances to %s's tune. The Piper wins.", g.Name(id))}
		}
	}
	if len(alive) == 1 {
		if last := g.Player(alive[0]); last.HasRole(RoleWhiteWolf) {
			return &Ending{Winner: "White Wolf", Faction: FactionNeutral,
				Detail: fmt.Sprintf("%s stands alone over every grave. The White Wolf wins.", g.Name(alive[0]))}
		}
	}

	// Faction eliminations.
	if wolves == 0 && villagers > 0 {
		return &Ending{Winner: "Village", Faction: FactionVillage,
			Detail: "The last werewolf is dead. The village wins."}
	}
	if villagers == 0 && wolves > 0 {
		return &Ending{Winner: "Werewolves", Faction: FactionWerewolf,
			Detail: "No villager is left to resist. The werewolves win."}
	}
	return nil
}
