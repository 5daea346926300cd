package werewolf

import (
	"fmt"

	"github.com/ratel-online/core/log"
)

// Werewolf count policy: the linear distribution, one wolf per four players
// with a floor of one.
func wolfCount(players int) int {
	n := players / 4
	if n < 1 {
		n = 1
	}
	return n
}

// essential roles dealt into every match, in priority order.
var essentialRoles = []string{RoleSeer, RoleWitch, RoleHunter, RoleCupid}

// assignRoles builds the role list for the joined player count, shuffles
// both sides and zips them one to one.
func (g *Game) assignRoles() error {
	players := g.Order()
	n := len(players)

	list := make([]string, 0, n)
	used := map[string]bool{}
	for i := 0; i < wolfCount(n); i++ {
		list = append(list, RoleWerewolf)
	}
	for _, name := range essentialRoles {
		if len(list) < n {
			list = append(list, name)
			used[name] = true
		}
	}

	// One flex role, then expansion roles up to capacity, villagers after.
	pool := make([]string, 0)
	for _, name := range g.registry.Names(nil, g.config.Expansions) {
		if name == RoleVillager || name == RoleWerewolf || used[name] {
			continue
		}
		pool = append(pool, name)
	}
	g.shuffleNames(pool)
	for len(list) < n && len(pool) > 0 {
		list = append(list, pool[0])
		used[pool[0]] = true
		pool = pool[1:]
	}
	for len(list) < n {
		list = append(list, RoleVillager)
	}

	// The thief gets two face-down spares to swap into on the first night.
	if used[RoleThief] {
		spareNames := []string{RoleVillager, RoleVillager}
		for i := 0; i < 2 && i < len(pool); i++ {
			spareNames[i] = pool[i]
		}
		for _, name := range spareNames {
			r, err := g.registry.New(name)
			if err != nil {
				return err
			}
			g.spares = append(g.spares, r)
		}
	}

	g.shuffle(players)
	g.shuffleNames(list)
	for i, id := range players {
		r, err := g.registry.New(list[i])
		if err != nil {
			log.Errorf("match %s: assign %s: %v\n", g.ID, list[i], err)
			return err
		}
		p := g.Player(id)
		p.Roles = []Role{r}
		if r.Meta().Name == RoleMayor {
			p.VoteWeight = 2
		}
		g.Private(id, fmt.Sprintf("Your role: %s. %s", r.Meta().Name, r.Meta().Description))
	}
	return nil
}

func (g *Game) shuffleNames(names []string) {
	for i := len(names) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		names[i], names[j] = names[j], names[i]
	}
}
