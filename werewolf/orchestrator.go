package werewolf

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"
	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf/vote"
)

// Begin locks the lobby, deals roles and opens the faction channel. The
// caller then drives the match with Run, usually on its own goroutine.
func (g *Game) Begin(ctx context.Context) error {
	g.mu.Lock()
	if g.phase != PhaseLobby {
		g.mu.Unlock()
		return consts.ErrorsMatchExist
	}
	if len(g.order) < consts.MinPlayers {
		g.mu.Unlock()
		return consts.ErrorsGamePlayersInvalid
	}
	g.mu.Unlock()

	if err := g.assignRoles(); err != nil {
		return err
	}
	wolves := g.AliveWolves()
	if len(wolves) > 0 {
		ch, err := g.courier.OpenChannel(fmt.Sprintf("werewolves-%.8s", g.ID), wolves)
		if err != nil {
			log.Errorf("match %s: open faction channel: %v\n", g.ID, err)
		} else {
			g.wolfChannel = ch
			ch.Send("This den is yours until dawn breaks for the last time.")
		}
	}
	for _, id := range g.Order() {
		p := g.Player(id)
		for _, r := range p.Roles {
			g.safeHook(p, r, "assign", func() { r.OnAssign(g, p) })
		}
	}
	g.Broadcast(fmt.Sprintf("The village sleeps. %d players, the hunt begins.", len(g.Order())))
	return nil
}

// Run drives the match until a faction wins or the context is cancelled.
func (g *Game) Run(ctx context.Context) *Ending {
	next := PhaseNight
	if g.Phase() == PhaseDay {
		next = PhaseDay
	}
	var overnight []Death
	for ctx.Err() == nil {
		if next == PhaseNight {
			overnight = g.nightPhase(ctx)
			if g.Phase() == PhaseEnded || ctx.Err() != nil {
				break
			}
			next = PhaseDay
			continue
		}
		g.dayPhase(ctx, overnight)
		overnight = nil
		if g.Phase() == PhaseEnded {
			break
		}
		next = PhaseNight
	}
	return g.Winner()
}

// Shutdown releases match-owned resources. Safe to call twice.
func (g *Game) Shutdown() {
	if g.wolfChannel != nil {
		g.wolfChannel.Close()
		g.wolfChannel = nil
	}
}

type hookTask struct {
	p *Player
	r Role
}

func (g *Game) safeHook(p *Player, r Role, phase string, fn func()) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("match %s: hook panic, player %d, role %s, phase %s: %v\n",
				g.ID, p.ID, r.Meta().Name, phase, err)
			async.PrintStackTrace(err)
		}
	}()
	fn()
}

// runParallel fans tasks out and waits for all of them. One player's slow or
// broken hook never stalls or kills another's.
func (g *Game) runParallel(tasks []hookTask, phase string, fn func(p *Player, r Role)) {
	wg := sync.WaitGroup{}
	for _, t := range tasks {
		wg.Add(1)
		t := t
		go func() {
			defer wg.Done()
			g.safeHook(t.p, t.r, phase, func() { fn(t.p, t.r) })
		}()
	}
	wg.Wait()
}

func (g *Game) nightPhase(ctx context.Context) []Death {
	g.mu.Lock()
	// A restored match re-enters its saved night instead of skipping it.
	if g.resumed {
		g.resumed = false
	} else {
		g.nightNumber++
	}
	night := g.nightNumber
	g.phase = PhaseNight
	g.mu.Unlock()

	g.actMu.Lock()
	g.ledger = newLedger()
	g.actMu.Unlock()

	g.Broadcast(fmt.Sprintf("Night %d falls. The village closes its eyes.", night))

	// Skill disables decided on an earlier night take effect now and wear
	// off at dawn. Ones landing tonight bite tomorrow.
	disabled := map[int64]bool{}
	for _, id := range g.Alive() {
		if g.Player(id).SkillsDisabled {
			disabled[id] = true
		}
	}

	groups, orders := g.nightGroups(disabled)
	for _, order := range orders {
		tasks := groups[order]
		if night == 1 {
			g.runParallel(tasks, "first-night", func(p *Player, r Role) {
				r.OnFirstNight(ctx, g, p)
			})
		}
		g.runParallel(tasks, "night", func(p *Player, r Role) {
			if !p.Alive {
				return
			}
			r.OnNight(ctx, g, p, night)
		})
		if order == OrderWolves {
			g.resolvePackVote()
		}
	}

	deaths := g.resolveDeaths(ctx)
	for id := range disabled {
		if p := g.Player(id); p != nil {
			p.SkillsDisabled = false
		}
	}
	g.finishIfWon()
	return deaths
}

// nightGroups buckets alive players' roles by night order.
func (g *Game) nightGroups(disabled map[int64]bool) (map[int][]hookTask, []int) {
	groups := map[int][]hookTask{}
	for _, id := range g.Alive() {
		if disabled[id] {
			continue
		}
		p := g.Player(id)
		for _, r := range p.Roles {
			order := r.Meta().NightOrder
			groups[order] = append(groups[order], hookTask{p: p, r: r})
		}
	}
	orders := make([]int, 0, len(groups))
	for order := range groups {
		orders = append(orders, order)
	}
	sort.Ints(orders)
	return groups, orders
}

// resolvePackVote turns the wolves' individual picks into the single pack
// victim: plurality, random among tied targets.
func (g *Game) resolvePackVote() {
	g.actMu.Lock()
	counts := map[int64]int{}
	for _, target := range g.ledger.wolfVotes {
		if target != 0 {
			counts[target]++
		}
	}
	max := 0
	tied := make([]int64, 0)
	for target, n := range counts {
		if n > max {
			max = n
			tied = tied[:0]
		}
		if n == max {
			tied = append(tied, target)
		}
	}
	var victim int64
	if len(tied) > 0 {
		sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })
		victim = tied[g.rnd.Intn(len(tied))]
	}
	g.ledger.wolfTarget = victim
	g.actMu.Unlock()

	if victim != 0 {
		g.QueueDeath(victim, CauseWolves)
		g.WolfSend(fmt.Sprintf("The pack closes in on %s.", g.Name(victim)))
	}
}

// resolveDeaths applies this phase's pending deaths: cancellations first
// (heal, protection, elder, cursed bite, infection), then the final alive
// transitions. OnDeath hooks may queue more deaths, handled in further
// passes, bounded by the roster size.
func (g *Game) resolveDeaths(ctx context.Context) []Death {
	var finalized []Death
	protectionSpent := false
	for pass := 0; pass <= len(g.Order()); pass++ {
		g.actMu.Lock()
		batch := g.pending
		g.pending = nil
		protected := g.ledger.protected
		saved := map[int64]bool{}
		for id := range g.ledger.saved {
			saved[id] = true
		}
		infect := g.ledger.infect
		g.actMu.Unlock()
		if len(batch) == 0 {
			break
		}

		final := make([]Death, 0, len(batch))
		doomed := map[int64]bool{}
		for _, d := range batch {
			p := g.Player(d.PlayerID)
			if p == nil || !p.Alive || doomed[d.PlayerID] {
				continue
			}
			if saved[d.PlayerID] {
				p.deathPending = false
				continue
			}
			if d.Cause.KillAttempt() && d.PlayerID == protected && !protectionSpent {
				protectionSpent = true
				p.deathPending = false
				continue
			}
			if d.Cause == CauseWolves && p.HasRole(RoleElder) && !p.elderWounded {
				p.elderWounded = true
				p.deathPending = false
				continue
			}
			if d.Cause == CauseWolves && p.HasRole(RoleCursed) && p.Alignment() != FactionWerewolf {
				p.deathPending = false
				g.ConvertToWolf(p)
				continue
			}
			if d.Cause == CauseWolves && infect && p.Alignment() != FactionWerewolf {
				infect = false
				g.consumeInfect()
				p.deathPending = false
				g.ConvertToWolf(p)
				continue
			}
			doomed[d.PlayerID] = true
			final = append(final, d)
		}

		for _, d := range final {
			p := g.Player(d.PlayerID)
			if p == nil || !p.Alive {
				continue
			}
			g.mu.Lock()
			p.Alive = false
			p.deathPending = false
			g.mu.Unlock()
			if p.Alignment() == FactionWerewolf {
				g.wolfDied = true
			}
			finalized = append(finalized, d)
			g.cascade(ctx, p, d.Cause)
		}
	}
	return finalized
}

func (g *Game) consumeInfect() {
	g.actMu.Lock()
	g.ledger.infect = false
	g.actMu.Unlock()
}

// cascade runs everything one finalized death drags along: lover grief,
// wild child conversion, angel theft, and the player's own OnDeath hooks.
func (g *Game) cascade(ctx context.Context, p *Player, cause DeathCause) {
	if lover := g.LoverOf(p.ID); lover != 0 {
		if lp := g.Player(lover); lp != nil && lp.Alive && !lp.deathPending {
			g.Broadcast(fmt.Sprintf("%s cannot live without %s.", g.Name(lover), g.Name(p.ID)))
			g.QueueDeath(lover, CauseGrief)
		}
	}
	for child, model := range g.modelsSnapshot() {
		if model != p.ID {
			continue
		}
		cp := g.Player(child)
		if cp != nil && cp.Alive && cp.Alignment() != FactionWerewolf {
			g.ConvertToWolf(cp)
		}
	}
	for angel, mark := range g.marksSnapshot() {
		if mark != p.ID {
			continue
		}
		ap := g.Player(angel)
		if ap == nil || !ap.Alive || len(p.Roles) == 0 {
			continue
		}
		stolen, err := g.registry.New(p.Roles[0].Meta().Name)
		if err != nil {
			continue
		}
		g.AppendRole(ap, stolen)
		g.Private(angel, fmt.Sprintf("You claim what %s left behind: %s.", g.Name(p.ID), stolen.Meta().Name))
	}
	for _, r := range p.Roles {
		r := r
		g.safeHook(p, r, "death", func() { r.OnDeath(ctx, g, p, cause) })
	}
}

func (g *Game) modelsSnapshot() map[int64]int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[int64]int64, len(g.models))
	for k, v := range g.models {
		out[k] = v
	}
	return out
}

func (g *Game) marksSnapshot() map[int64]int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[int64]int64, len(g.marks))
	for k, v := range g.marks {
		out[k] = v
	}
	return out
}

func (g *Game) dayPhase(ctx context.Context, overnight []Death) {
	g.mu.Lock()
	if g.resumed {
		g.resumed = false
	} else {
		g.dayNumber++
	}
	day := g.dayNumber
	g.phase = PhaseDay
	g.mu.Unlock()

	// Night protections and heals do not carry into the day's lynch.
	g.actMu.Lock()
	g.ledger.protected = 0
	g.ledger.saved = map[int64]bool{}
	g.ledger.infect = false
	g.actMu.Unlock()

	g.announceDawn(day, overnight)
	if g.finishIfWon() {
		return
	}

	for _, id := range g.Alive() {
		p := g.Player(id)
		for _, r := range p.Roles {
			r := r
			g.safeHook(p, r, "day", func() { r.OnDay(ctx, g, p, day) })
		}
	}

	g.runLynch(ctx, day)
	if g.Phase() == PhaseEnded || ctx.Err() != nil {
		return
	}

	g.actMu.Lock()
	second := g.ledger.secondVote
	g.ledger.secondVote = false
	g.actMu.Unlock()
	if second {
		g.Broadcast("The judge throws down his gavel: the village votes again!")
		g.runLynch(ctx, day)
	}
}

func (g *Game) announceDawn(day int, overnight []Death) {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("Day %d breaks. ", day))
	if len(overnight) == 0 {
		buf.WriteString("It was a peaceful night, nobody died.\n")
	} else {
		for _, d := range overnight {
			buf.WriteString(fmt.Sprintf("%s was %s.\n", g.Name(d.PlayerID), d.Cause))
		}
	}
	g.Broadcast(buf.String())
}

func (g *Game) runLynch(ctx context.Context, day int) {
	alive := g.Alive()
	voters := make([]int64, 0, len(alive))
	weights := map[int64]int{}
	options := make([]vote.Option, 0, len(alive))
	for _, id := range alive {
		p := g.Player(id)
		options = append(options, vote.Option{ID: id, Label: g.Name(id)})
		if !p.VoteDisabled {
			voters = append(voters, id)
			weights[id] = p.VoteWeight
		}
	}
	bonus := map[int64]int{}
	g.actMu.Lock()
	if g.ledger.ravenTarget != 0 {
		bonus[g.ledger.ravenTarget] = 2
		g.ledger.ravenTarget = 0
	}
	g.actMu.Unlock()

	session := vote.New(vote.Config{
		Title:           fmt.Sprintf("Day %d lynch vote", day),
		Description:     "Who hangs at sundown?",
		Options:         options,
		Voters:          voters,
		Weights:         weights,
		Bonus:           bonus,
		Duration:        g.config.VoteTimeout,
		Tick:            g.config.VoteTick,
		AllowSkip:       true,
		EndWhenAllVoted: true,
		Observer:        g.Broadcast,
	})
	g.setVote(session)
	res := session.Run(ctx)
	g.setVote(nil)

	if res.Tie {
		if goats := g.PlayersWithRole(RoleScapegoat); len(goats) > 0 {
			g.Broadcast(fmt.Sprintf("The vote is tied. %s pays for the village's indecision.", g.Name(goats[0])))
			g.QueueDeath(goats[0], CauseSacrifice)
		} else {
			g.Broadcast("The vote is tied. Nobody hangs today.")
		}
	} else {
		target := g.Player(res.WinnerID)
		if target != nil && target.HasRole(RoleIdiot) && !target.VoteDisabled {
			g.Broadcast(fmt.Sprintf("%s giggles on the gallows: the village cannot hang its own idiot. They lose their vote instead.", g.Name(res.WinnerID)))
			target.VoteDisabled = true
		} else {
			g.Broadcast(fmt.Sprintf("The village has decided: %s will hang.", g.Name(res.WinnerID)))
			g.QueueDeath(res.WinnerID, CauseLynch)
		}
	}

	deaths := g.resolveDeaths(ctx)
	for _, d := range deaths {
		if d.Cause != CauseLynch {
			g.Broadcast(fmt.Sprintf("%s was %s.", g.Name(d.PlayerID), d.Cause))
		}
	}
	for _, id := range g.Alive() {
		p := g.Player(id)
		for _, r := range p.Roles {
			r := r
			g.safeHook(p, r, "vote-result", func() { r.OnVoteResult(ctx, g, p, res) })
		}
	}
	g.finishIfWon()
}

// finishIfWon evaluates win conditions and seals the match when one holds.
func (g *Game) finishIfWon() bool {
	if g.Phase() == PhaseEnded {
		return true
	}
	ending := g.checkWin()
	if ending == nil {
		return false
	}
	g.mu.Lock()
	g.winner = ending
	g.phase = PhaseEnded
	g.mu.Unlock()
	g.Broadcast(fmt.Sprintf("The match is over. %s", ending.Detail))
	g.Shutdown()
	return true
}
