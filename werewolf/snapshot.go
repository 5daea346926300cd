package werewolf

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type playerSnap struct {
	ID             int64    `json:"id"`
	Roles          []string `json:"roles"`
	Alive          bool     `json:"alive"`
	VoteDisabled   bool     `json:"voteDisabled"`
	SkillsDisabled bool     `json:"skillsDisabled"`
	VoteWeight     int      `json:"voteWeight"`
	ElderWounded   bool     `json:"elderWounded"`
}

type snapshot struct {
	ID          string          `json:"id"`
	Host        int64           `json:"host"`
	Phase       Phase           `json:"phase"`
	NightNumber int             `json:"nightNumber"`
	DayNumber   int             `json:"dayNumber"`
	Order       []int64         `json:"order"`
	Players     []playerSnap    `json:"players"`
	Lovers      map[int64]int64 `json:"lovers"`
	Charmed     []int64         `json:"charmed"`
	Models      map[int64]int64 `json:"models"`
	Marks       map[int64]int64 `json:"marks"`
	Expansions  []string        `json:"expansions"`
	WolfDied    bool            `json:"wolfDied"`
	AngelWin    bool            `json:"angelWin"`
}

// Snapshot serializes enough match state to resume after a restart. Role
// instance scratch state (charges, once-flags) is deliberately not carried;
// restore rebuilds fresh instances by name.
func (g *Game) Snapshot() ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snap := snapshot{
		ID:          g.ID,
		Host:        g.Host,
		Phase:       g.phase,
		NightNumber: g.nightNumber,
		DayNumber:   g.dayNumber,
		Order:       append([]int64{}, g.order...),
		Lovers:      g.lovers,
		Models:      g.models,
		Marks:       g.marks,
		WolfDied:    g.wolfDied,
		AngelWin:    g.angelWin,
	}
	for id := range g.charmed {
		snap.Charmed = append(snap.Charmed, id)
	}
	for tag, on := range g.config.Expansions {
		if on {
			snap.Expansions = append(snap.Expansions, tag)
		}
	}
	for _, id := range g.order {
		p := g.players[id]
		ps := playerSnap{
			ID:             p.ID,
			Alive:          p.Alive,
			VoteDisabled:   p.VoteDisabled,
			SkillsDisabled: p.SkillsDisabled,
			VoteWeight:     p.VoteWeight,
			ElderWounded:   p.elderWounded,
		}
		for _, r := range p.Roles {
			ps.Roles = append(ps.Roles, r.Meta().Name)
		}
		snap.Players = append(snap.Players, ps)
	}
	return json.Marshal(snap)
}

// Restore rebuilds a match from a snapshot. The orchestrator re-enters the
// recorded phase from its start when Run is called.
func Restore(data []byte, courier Courier, dir Directory, registry *Registry, config Config) (*Game, error) {
	snap := snapshot{}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	expansions := map[string]bool{}
	for _, tag := range snap.Expansions {
		expansions[tag] = true
	}
	config.Expansions = expansions
	g := NewGame(snap.Host, courier, dir, registry, config)
	g.ID = snap.ID
	g.phase = snap.Phase
	g.nightNumber = snap.NightNumber
	g.dayNumber = snap.DayNumber
	g.order = append([]int64{}, snap.Order...)
	g.wolfDied = snap.WolfDied
	g.angelWin = snap.AngelWin
	g.resumed = snap.Phase == PhaseNight || snap.Phase == PhaseDay
	if snap.Lovers != nil {
		g.lovers = snap.Lovers
	}
	if snap.Models != nil {
		g.models = snap.Models
	}
	if snap.Marks != nil {
		g.marks = snap.Marks
	}
	for _, id := range snap.Charmed {
		g.charmed[id] = true
	}
	for _, ps := range snap.Players {
		p := &Player{
			ID:             ps.ID,
			Alive:          ps.Alive,
			VoteDisabled:   ps.VoteDisabled,
			SkillsDisabled: ps.SkillsDisabled,
			VoteWeight:     ps.VoteWeight,
			elderWounded:   ps.ElderWounded,
		}
		for _, name := range ps.Roles {
			r, err := registry.New(name)
			if err != nil {
				return nil, err
			}
			p.Roles = append(p.Roles, r)
		}
		g.players[ps.ID] = p
	}
	return g, nil
}
