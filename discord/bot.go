package discord

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/ratel-online/core/log"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/manager"
	"github.com/masoi-online/server/werewolf"
)

const commandPrefix = "!masoi"

// Bot wires Discord messages to the match manager. One bot serves any
// number of guilds; each guild channel holds at most one match.
type Bot struct {
	session  *discordgo.Session
	manager  *manager.Manager
	registry *werewolf.Registry

	mu       sync.Mutex
	couriers map[manager.Key]*Courier
}

func NewBot(token string, mgr *manager.Manager, registry *werewolf.Registry) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		session:  session,
		manager:  mgr,
		registry: registry,
		couriers: map[manager.Key]*Courier{},
	}
	session.AddHandler(bot.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	return bot, nil
}

func (b *Bot) Open() error { return b.session.Open() }

func (b *Bot) Close() error {
	b.manager.Each(func(key manager.Key, game *werewolf.Game) {
		game.Shutdown()
	})
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		b.onDirectMessage(m)
		return
	}
	content := strings.TrimSpace(m.Content)
	if strings.HasPrefix(content, "!vote") {
		b.handleVote(m, strings.TrimSpace(strings.TrimPrefix(content, "!vote")))
		return
	}
	if !strings.HasPrefix(content, commandPrefix) {
		return
	}
	args := strings.Fields(strings.TrimPrefix(content, commandPrefix))
	cmd := ""
	if len(args) > 0 {
		cmd = strings.ToLower(args[0])
	}
	switch cmd {
	case "create":
		b.handleCreate(m, args[1:])
	case "join":
		b.handleJoin(m)
	case "leave":
		b.handleLeave(m)
	case "start":
		b.handleStart(m)
	case "end":
		b.handleEnd(m)
	case "save":
		b.handleSave(m)
	case "restore":
		b.handleRestore(m)
	case "guide", "help", "":
		b.reply(m, guideText(b.registry))
	default:
		b.reply(m, "Unknown command. Try `!masoi guide`.")
	}
}

// DM replies carry no guild, so every live courier gets a chance to claim
// the answer.
func (b *Bot) onDirectMessage(m *discordgo.MessageCreate) {
	playerID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}
	b.mu.Lock()
	couriers := make([]*Courier, 0, len(b.couriers))
	for _, c := range b.couriers {
		couriers = append(couriers, c)
	}
	b.mu.Unlock()
	for _, c := range couriers {
		if c.Answer(playerID, m.Content) {
			return
		}
	}
}

func (b *Bot) handleCreate(m *discordgo.MessageCreate, args []string) {
	key := manager.Key{Guild: m.GuildID, Channel: m.ChannelID}
	host, ok := b.playerID(m)
	if !ok {
		return
	}
	expansions := map[string]bool{consts.ExpansionBasic: true}
	for _, tag := range args {
		expansions[strings.ToLower(tag)] = true
	}
	courier := NewCourier(b.session, m.GuildID, m.ChannelID)
	game := werewolf.NewGame(host, courier, courier, b.registry, werewolf.Config{Expansions: expansions})
	if err := b.manager.Create(key, game); err != nil {
		b.reply(m, err.Error())
		return
	}
	if err := game.Join(host); err != nil {
		b.reply(m, err.Error())
		return
	}
	b.mu.Lock()
	b.couriers[key] = courier
	b.mu.Unlock()
	b.reply(m, fmt.Sprintf("A village gathers. `!masoi join` to sit down, `!masoi start` when %d-%d players are in.", consts.MinPlayers, consts.MaxPlayers))
}

func (b *Bot) handleJoin(m *discordgo.MessageCreate) {
	game := b.game(m)
	if game == nil {
		b.reply(m, consts.ErrorsMatchNotFound.Error())
		return
	}
	id, ok := b.playerID(m)
	if !ok {
		return
	}
	if err := game.Join(id); err != nil {
		b.reply(m, err.Error())
		return
	}
	b.reply(m, fmt.Sprintf("%s takes a seat. %d villagers so far.", m.Author.Mention(), len(game.Order())))
}

func (b *Bot) handleLeave(m *discordgo.MessageCreate) {
	game := b.game(m)
	if game == nil {
		b.reply(m, consts.ErrorsMatchNotFound.Error())
		return
	}
	id, ok := b.playerID(m)
	if !ok {
		return
	}
	if err := game.Leave(id); err != nil {
		b.reply(m, err.Error())
		return
	}
	b.reply(m, fmt.Sprintf("%s slips away before nightfall.", m.Author.Mention()))
}

func (b *Bot) handleStart(m *discordgo.MessageCreate) {
	key := manager.Key{Guild: m.GuildID, Channel: m.ChannelID}
	game := b.game(m)
	if game == nil {
		b.reply(m, consts.ErrorsMatchNotFound.Error())
		return
	}
	id, ok := b.playerID(m)
	if !ok {
		return
	}
	if err := requireHost(game, id); err != nil {
		b.reply(m, err.Error())
		return
	}
	err := b.manager.Start(key, func(ending *werewolf.Ending) {
		b.dropCourier(key)
	})
	if err != nil {
		b.reply(m, err.Error())
	}
}

func (b *Bot) handleEnd(m *discordgo.MessageCreate) {
	key := manager.Key{Guild: m.GuildID, Channel: m.ChannelID}
	game := b.game(m)
	if game == nil {
		b.reply(m, consts.ErrorsMatchNotFound.Error())
		return
	}
	id, ok := b.playerID(m)
	if !ok {
		return
	}
	if err := requireHost(game, id); err != nil {
		b.reply(m, err.Error())
		return
	}
	b.manager.Remove(key)
	b.dropCourier(key)
	b.reply(m, "The match is called off. The village goes back to sleep.")
}

// requireHost gates the lifecycle commands to whoever opened the lobby.
func requireHost(game *werewolf.Game, playerID int64) error {
	if game.Host != playerID {
		return consts.ErrorsNotHost
	}
	return nil
}

func (b *Bot) handleSave(m *discordgo.MessageCreate) {
	key := manager.Key{Guild: m.GuildID, Channel: m.ChannelID}
	if err := b.manager.Save(key); err != nil {
		b.reply(m, err.Error())
		return
	}
	b.reply(m, "Match saved.")
}

func (b *Bot) handleRestore(m *discordgo.MessageCreate) {
	key := manager.Key{Guild: m.GuildID, Channel: m.ChannelID}
	courier := NewCourier(b.session, m.GuildID, m.ChannelID)
	_, err := b.manager.Restore(key, courier, courier, b.registry, werewolf.Config{})
	if err != nil {
		b.reply(m, err.Error())
		return
	}
	b.mu.Lock()
	b.couriers[key] = courier
	b.mu.Unlock()
	b.manager.Resume(key, func(ending *werewolf.Ending) {
		b.dropCourier(key)
	})
	b.reply(m, "The saved match picks up where it left off.")
}

// handleVote accepts `!vote @someone` and `!vote skip` during a day vote.
func (b *Bot) handleVote(m *discordgo.MessageCreate, arg string) {
	game := b.game(m)
	if game == nil {
		return
	}
	voter, ok := b.playerID(m)
	if !ok {
		return
	}
	if strings.EqualFold(arg, "skip") || strings.EqualFold(arg, "pass") {
		if err := game.CastVoteSkip(voter); err != nil {
			b.reply(m, err.Error())
		}
		return
	}
	if len(m.Mentions) == 0 {
		b.reply(m, "Point a finger: `!vote @someone` or `!vote skip`.")
		return
	}
	target, err := strconv.ParseInt(m.Mentions[0].ID, 10, 64)
	if err != nil {
		return
	}
	if err := game.CastVote(voter, target); err != nil {
		b.reply(m, err.Error())
	}
}

func (b *Bot) game(m *discordgo.MessageCreate) *werewolf.Game {
	return b.manager.Get(manager.Key{Guild: m.GuildID, Channel: m.ChannelID})
}

func (b *Bot) playerID(m *discordgo.MessageCreate) (int64, bool) {
	id, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		log.Errorf("bad author id %s", m.Author.ID)
		return 0, false
	}
	return id, true
}

func (b *Bot) dropCourier(key manager.Key) {
	b.mu.Lock()
	delete(b.couriers, key)
	b.mu.Unlock()
}

func (b *Bot) reply(m *discordgo.MessageCreate, msg string) {
	if _, err := b.session.ChannelMessageSend(m.ChannelID, msg); err != nil {
		log.Error(err)
	}
}

func guideText(registry *werewolf.Registry) string {
	var sb strings.Builder
	sb.WriteString("**Ma Sói** — werewolf over Discord.\n")
	sb.WriteString("`!masoi create [new-moon] [characters]` open a lobby in this channel\n")
	sb.WriteString("`!masoi join` / `!masoi leave` sit down or slip away\n")
	sb.WriteString("`!masoi start` deal the cards once enough players joined\n")
	sb.WriteString("`!vote @someone` / `!vote skip` during the day vote\n")
	sb.WriteString("`!masoi save` / `!masoi restore` stash and revive a match\n")
	sb.WriteString("`!masoi end` call the whole thing off\n")
	sb.WriteString("Night actions arrive by DM; answer with the number of your choice.\n")
	sb.WriteString("Roles in the deck: ")
	sb.WriteString(strings.Join(registry.Names(nil, nil), ", "))
	return sb.String()
}
