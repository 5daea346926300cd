package werewolf

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf/vote"
)

type Phase int

const (
	PhaseLobby Phase = iota
	PhaseNight
	PhaseDay
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "Lobby"
	case PhaseNight:
		return "Night"
	case PhaseDay:
		return "Day"
	case PhaseEnded:
		return "Ended"
	}
	return "Unknown"
}

// Player is the per-match state of one participant. The identity is a lookup
// key into the external directory, never owned here.
type Player struct {
	ID             int64
	Roles          []Role
	Alive          bool
	VoteDisabled   bool
	SkillsDisabled bool
	VoteWeight     int

	deathPending bool
	elderWounded bool
}

func (p *Player) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r.Meta().Name == name {
			return true
		}
	}
	return false
}

// Alignment is the faction the player counts for in win evaluation. Any
// werewolf-faction role drags the whole player to the werewolf side.
func (p *Player) Alignment() Faction {
	for _, r := range p.Roles {
		if r.Meta().Faction == FactionWerewolf {
			return FactionWerewolf
		}
	}
	if len(p.Roles) == 0 {
		return FactionVillage
	}
	return p.Roles[0].Meta().Faction
}

// Death is one queued, not yet finalized, death.
type Death struct {
	PlayerID int64
	Cause    DeathCause
}

// Config fixes the ruleset of one match. Immutable once the match starts.
type Config struct {
	Expansions   map[string]bool
	NightTimeout time.Duration
	DayTimeout   time.Duration
	VoteTimeout  time.Duration
	VoteTick     time.Duration
	Seed         int64
}

func (c Config) withDefaults() Config {
	if c.Expansions == nil {
		c.Expansions = map[string]bool{consts.ExpansionBasic: true}
	}
	c.Expansions[consts.ExpansionBasic] = true
	if c.NightTimeout <= 0 {
		c.NightTimeout = consts.NightActionTimeout
	}
	if c.DayTimeout <= 0 {
		c.DayTimeout = consts.DayActionTimeout
	}
	if c.VoteTimeout <= 0 {
		c.VoteTimeout = consts.DayVoteTimeout
	}
	if c.VoteTick <= 0 {
		c.VoteTick = consts.VoteTickInterval
	}
	return c
}

// nightLedger is the per-night scratch state. Reset when a night begins.
type nightLedger struct {
	protected  int64
	wolfVotes  map[int64]int64
	wolfTarget int64
	infect     bool
	saved      map[int64]bool
	ravenTarget int64
	secondVote bool
}

func newLedger() nightLedger {
	return nightLedger{wolfVotes: map[int64]int64{}, saved: map[int64]bool{}}
}

// Game is one match. All phase-driving mutation happens on the single
// orchestrator goroutine; hooks it spawns coordinate through the ledger
// mutex, and the outside world only comes in through Join/CastVote and the
// read accessors.
type Game struct {
	ID   string
	Host int64

	mu          sync.RWMutex
	phase       Phase
	nightNumber int
	dayNumber   int
	players     map[int64]*Player
	order       []int64
	lovers      map[int64]int64
	charmed     map[int64]bool
	models      map[int64]int64
	marks       map[int64]int64
	winner      *Ending

	actMu   sync.Mutex
	pending []Death
	ledger  nightLedger

	voteMu      sync.Mutex
	currentVote *vote.Session

	config      Config
	courier     Courier
	dir         Directory
	registry    *Registry
	rnd         *rand.Rand
	spares      []Role
	wolfChannel Channel
	wolfDied    bool
	angelWin    bool
	foxFailed   bool
	resumed     bool
}

func NewGame(host int64, courier Courier, dir Directory, registry *Registry, config Config) *Game {
	config = config.withDefaults()
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Game{
		ID:       uuid.NewString(),
		Host:     host,
		phase:    PhaseLobby,
		players:  map[int64]*Player{},
		lovers:   map[int64]int64{},
		charmed:  map[int64]bool{},
		models:   map[int64]int64{},
		marks:    map[int64]int64{},
		ledger:   newLedger(),
		config:   config,
		courier:  courier,
		dir:      dir,
		registry: registry,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

func (g *Game) Phase() Phase {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.phase
}

func (g *Game) NightNumber() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nightNumber
}

func (g *Game) DayNumber() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dayNumber
}

func (g *Game) Winner() *Ending {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.winner
}

func (g *Game) setPhase(p Phase) {
	g.mu.Lock()
	g.phase = p
	g.mu.Unlock()
}

// Join adds a player to the lobby. Membership is only mutable before start.
func (g *Game) Join(playerID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseLobby {
		return consts.ErrorsJoinFailForLobbyRunning
	}
	if _, ok := g.players[playerID]; ok {
		return consts.ErrorsExist
	}
	if len(g.order) >= consts.MaxPlayers {
		return consts.ErrorsLobbyPlayersIsFull
	}
	g.players[playerID] = &Player{ID: playerID, Alive: true, VoteWeight: 1}
	g.order = append(g.order, playerID)
	return nil
}

// Leave removes a player from the lobby.
func (g *Game) Leave(playerID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhaseLobby {
		return consts.ErrorsJoinFailForLobbyRunning
	}
	if _, ok := g.players[playerID]; !ok {
		return consts.ErrorsNotInLobby
	}
	delete(g.players, playerID)
	for i, id := range g.order {
		if id == playerID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

func (g *Game) Player(id int64) *Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[id]
}

// Order returns player identities in join order.
func (g *Game) Order() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]int64, len(g.order))
	copy(out, g.order)
	return out
}

// Alive returns living players in join order.
func (g *Game) Alive() []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]int64, 0, len(g.order))
	for _, id := range g.order {
		if p := g.players[id]; p != nil && p.Alive {
			out = append(out, id)
		}
	}
	return out
}

// AliveExcept returns living players minus the given identities.
func (g *Game) AliveExcept(except ...int64) []int64 {
	skip := map[int64]bool{}
	for _, id := range except {
		skip[id] = true
	}
	out := make([]int64, 0)
	for _, id := range g.Alive() {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}

// AliveWolves returns living werewolf-aligned players.
func (g *Game) AliveWolves() []int64 {
	out := make([]int64, 0)
	for _, id := range g.Alive() {
		if g.Player(id).Alignment() == FactionWerewolf {
			out = append(out, id)
		}
	}
	return out
}

// PlayersWithRole returns living holders of the named role.
func (g *Game) PlayersWithRole(name string) []int64 {
	out := make([]int64, 0)
	for _, id := range g.Alive() {
		if g.Player(id).HasRole(name) {
			out = append(out, id)
		}
	}
	return out
}

func (g *Game) Name(id int64) string {
	return g.dir.Name(id)
}

func (g *Game) Broadcast(msg string) {
	g.courier.Broadcast(msg)
}

func (g *Game) Private(id int64, msg string) {
	g.courier.Private(id, msg)
}

// WolfSend posts to the faction channel when one exists.
func (g *Game) WolfSend(msg string) {
	if g.wolfChannel != nil {
		g.wolfChannel.Send(msg)
	}
}

func (g *Game) Registry() *Registry {
	return g.registry
}

func (g *Game) Rand() *rand.Rand {
	return g.rnd
}

func (g *Game) Expansion(tag string) bool {
	return g.config.Expansions[tag]
}

// ChooseTarget prompts the player to pick one identity out of pool. The
// acting player is excluded from its own candidate set unless the role is
// self-target capable and has not burned its one self-target yet.
func (g *Game) ChooseTarget(ctx context.Context, r Role, p *Player, title string, pool []int64, allowSkip bool) (int64, bool) {
	allowSelf := r.Meta().SelfTarget && !r.SelfTargetUsed()
	options := make([]Option, 0, len(pool))
	valid := map[int64]bool{}
	for _, id := range pool {
		if id == p.ID && !allowSelf {
			continue
		}
		options = append(options, Option{ID: id, Label: g.Name(id)})
		valid[id] = true
	}
	if len(options) == 0 {
		return 0, false
	}
	pick := g.courier.Choose(ctx, p.ID, Ask{
		Title:     title,
		Options:   options,
		AllowSkip: allowSkip,
		Timeout:   g.config.NightTimeout,
	})
	if pick.Skipped || !valid[pick.TargetID] {
		return 0, false
	}
	if pick.TargetID == p.ID {
		r.UseSelfTarget()
	}
	return pick.TargetID, true
}

// ChooseOption prompts for one of a list of arbitrary labels and returns the
// picked index.
func (g *Game) ChooseOption(ctx context.Context, p *Player, title string, labels []string, allowSkip bool) (int, bool) {
	options := make([]Option, len(labels))
	for i, label := range labels {
		options[i] = Option{ID: int64(i + 1), Label: label}
	}
	pick := g.courier.Choose(ctx, p.ID, Ask{
		Title:     title,
		Options:   options,
		AllowSkip: allowSkip,
		Timeout:   g.config.NightTimeout,
	})
	if pick.Skipped || pick.TargetID < 1 || pick.TargetID > int64(len(labels)) {
		return 0, false
	}
	return int(pick.TargetID - 1), true
}

// Confirm asks a yes/no question; timeout and skip both mean no.
func (g *Game) Confirm(ctx context.Context, p *Player, title string) bool {
	pick := g.courier.Choose(ctx, p.ID, Ask{
		Title:     title,
		Options:   []Option{{ID: 1, Label: "Yes"}},
		AllowSkip: true,
		Timeout:   g.config.NightTimeout,
	})
	return !pick.Skipped && pick.TargetID == 1
}

// QueueDeath records an intended death for this phase. Nothing dies until
// the resolution pass runs.
func (g *Game) QueueDeath(playerID int64, cause DeathCause) {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	p := g.Player(playerID)
	if p == nil || !p.Alive {
		return
	}
	p.deathPending = true
	g.pending = append(g.pending, Death{PlayerID: playerID, Cause: cause})
}

// Protect marks target as protected for the current night.
func (g *Game) Protect(targetID int64) {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	g.ledger.protected = targetID
}

// Heal cancels every pending death of target queued this night.
func (g *Game) Heal(targetID int64) {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	g.ledger.saved[targetID] = true
}

// CastWolfVote records one werewolf's intended victim.
func (g *Game) CastWolfVote(wolfID, targetID int64) {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	g.ledger.wolfVotes[wolfID] = targetID
}

// WolfVictim is the pack's resolved victim, known after the wolf group ran.
func (g *Game) WolfVictim() int64 {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	return g.ledger.wolfTarget
}

// Infect arms the alpha's conversion for tonight's pack victim.
func (g *Game) Infect() {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	g.ledger.infect = true
}

// MarkRaven adds the curse bonus against target for the next day vote.
func (g *Game) MarkRaven(targetID int64) {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	g.ledger.ravenTarget = targetID
}

// RequestSecondVote queues one extra lynch vote for the current day.
func (g *Game) RequestSecondVote() {
	g.actMu.Lock()
	defer g.actMu.Unlock()
	g.ledger.secondVote = true
}

// Pair links two players as lovers.
func (g *Game) Pair(a, b int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lovers[a] = b
	g.lovers[b] = a
}

// LoverOf returns the paired lover, zero if none.
func (g *Game) LoverOf(id int64) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lovers[id]
}

// Charm marks players as charmed by the piper.
func (g *Game) Charm(ids ...int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.charmed[id] = true
	}
}

func (g *Game) Charmed(id int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.charmed[id]
}

// DisableSkills puts a player to sleep for the following night.
func (g *Game) DisableSkills(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.players[id]; p != nil {
		p.SkillsDisabled = true
	}
}

// BindModel registers the wild child's chosen model; the model's death
// converts the child.
func (g *Game) BindModel(childID, modelID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.models[childID] = modelID
}

// MarkForTheft registers the angel's target; the target's death hands its
// role to the angel.
func (g *Game) MarkForTheft(angelID, targetID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.marks[angelID] = targetID
}

// MarkAngelWin records the angel's early-lynch win condition.
func (g *Game) MarkAngelWin() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.angelWin = true
}

// FoxFail burns the fox's power after a clean sniff.
func (g *Game) FoxFail() {
	g.foxFailed = true
}

func (g *Game) FoxFailed() bool {
	return g.foxFailed
}

// WolfEverDied reports whether any werewolf-aligned player has died, which
// switches off the big bad wolf's extra hunt.
func (g *Game) WolfEverDied() bool {
	return g.wolfDied
}

// AppendRole hands an extra role instance to a player, switching their
// alignment when it is werewolf-aligned and opening the faction channel to
// them.
func (g *Game) AppendRole(p *Player, r Role) {
	p.Roles = append(p.Roles, r)
	if r.Meta().Name == RoleMayor {
		p.VoteWeight = 2
	}
	if r.Meta().Faction == FactionWerewolf && g.wolfChannel != nil {
		g.wolfChannel.Invite(p.ID)
		g.wolfChannel.Send(fmt.Sprintf("%s joined the pack.", g.Name(p.ID)))
	}
}

// SwapRole replaces the player's primary role, the thief's first-night
// exchange.
func (g *Game) SwapRole(p *Player, r Role) {
	if len(p.Roles) == 0 {
		p.Roles = []Role{r}
	} else {
		p.Roles[0] = r
	}
	if r.Meta().Name == RoleMayor {
		p.VoteWeight = 2
	}
	if r.Meta().Faction == FactionWerewolf && g.wolfChannel != nil {
		g.wolfChannel.Invite(p.ID)
	}
}

// ConvertToWolf appends a plain werewolf role, the shared bite/trigger
// conversion path.
func (g *Game) ConvertToWolf(p *Player) {
	r, err := g.registry.New(RoleWerewolf)
	if err != nil {
		return
	}
	g.AppendRole(p, r)
	g.Private(p.ID, "The curse takes hold. You are a werewolf now.")
}

// Spares are the thief's face-down extra roles.
func (g *Game) Spares() []Role {
	return g.spares
}

// TakeSpare swaps the spare at index into the thief's hand and returns it.
func (g *Game) TakeSpare(i int) Role {
	if i < 0 || i >= len(g.spares) {
		return nil
	}
	r := g.spares[i]
	g.spares = append(g.spares[:i], g.spares[i+1:]...)
	return r
}

// CastVote forwards a ballot into the live day vote.
func (g *Game) CastVote(voterID, targetID int64) error {
	g.voteMu.Lock()
	s := g.currentVote
	g.voteMu.Unlock()
	if s == nil {
		return consts.ErrorsNoActiveVote
	}
	return s.Cast(voterID, targetID)
}

// CastVoteSkip forwards an abstention into the live day vote.
func (g *Game) CastVoteSkip(voterID int64) error {
	g.voteMu.Lock()
	s := g.currentVote
	g.voteMu.Unlock()
	if s == nil {
		return consts.ErrorsNoActiveVote
	}
	return s.CastSkip(voterID)
}

// ActiveVote reports whether a day vote is collecting ballots.
func (g *Game) ActiveVote() bool {
	g.voteMu.Lock()
	defer g.voteMu.Unlock()
	return g.currentVote != nil
}

func (g *Game) setVote(s *vote.Session) {
	g.voteMu.Lock()
	g.currentVote = s
	g.voteMu.Unlock()
}

// shuffle is an in-place Fisher-Yates on the match's own source.
func (g *Game) shuffle(ids []int64) {
	for i := len(ids) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
