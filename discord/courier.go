package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/ratel-online/core/log"

	"github.com/masoi-online/server/werewolf"
)

// prompt is one outstanding private question. The DM handler feeds the
// answer channel; Choose drains it.
type prompt struct {
	ask    werewolf.Ask
	answer chan werewolf.Pick
}

// Courier carries engine traffic over one guild channel plus DMs. It also
// doubles as the name directory for that guild.
type Courier struct {
	session   *discordgo.Session
	guildID   string
	channelID string

	mu      sync.Mutex
	prompts map[int64]*prompt
	names   map[int64]string
	dms     map[int64]string
}

func NewCourier(session *discordgo.Session, guildID, channelID string) *Courier {
	return &Courier{
		session:   session,
		guildID:   guildID,
		channelID: channelID,
		prompts:   map[int64]*prompt{},
		names:     map[int64]string{},
		dms:       map[int64]string{},
	}
}

func (c *Courier) Broadcast(msg string) {
	if _, err := c.session.ChannelMessageSend(c.channelID, msg); err != nil {
		log.Error(err)
	}
}

func (c *Courier) Private(playerID int64, msg string) {
	dm, err := c.dmChannel(playerID)
	if err != nil {
		log.Error(err)
		return
	}
	if _, err := c.session.ChannelMessageSend(dm, msg); err != nil {
		log.Error(err)
	}
}

// Choose DMs a numbered prompt and blocks until the player answers in DM,
// the prompt times out or the match is cancelled.
func (c *Courier) Choose(ctx context.Context, playerID int64, ask werewolf.Ask) werewolf.Pick {
	pr := &prompt{ask: ask, answer: make(chan werewolf.Pick, 1)}
	c.mu.Lock()
	c.prompts[playerID] = pr
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.prompts, playerID)
		c.mu.Unlock()
	}()

	var sb strings.Builder
	sb.WriteString(ask.Title)
	for i, opt := range ask.Options {
		sb.WriteString(fmt.Sprintf("\n`%d` %s", i+1, opt.Label))
	}
	if ask.AllowSkip {
		sb.WriteString("\n`0` pass")
	}
	c.Private(playerID, sb.String())

	timeout := ask.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	select {
	case pick := <-pr.answer:
		return pick
	case <-time.After(timeout):
		c.Private(playerID, "Too slow. The night moves on without you.")
		return werewolf.Pick{Skipped: true}
	case <-ctx.Done():
		return werewolf.Pick{Skipped: true}
	}
}

// Answer routes a DM reply into the player's outstanding prompt. It
// reports whether the message was consumed.
func (c *Courier) Answer(playerID int64, content string) bool {
	c.mu.Lock()
	pr, ok := c.prompts[playerID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return false
	}
	var pick werewolf.Pick
	switch {
	case n == 0 && pr.ask.AllowSkip:
		pick = werewolf.Pick{Skipped: true}
	case n >= 1 && n <= len(pr.ask.Options):
		pick = werewolf.Pick{TargetID: pr.ask.Options[n-1].ID}
	default:
		c.Private(playerID, "That is not one of the numbers on offer.")
		return true
	}
	select {
	case pr.answer <- pick:
	default:
	}
	return true
}

// OpenChannel creates a guild channel visible only to the given members,
// the wolves' den.
func (c *Courier) OpenChannel(name string, members []int64) (werewolf.Channel, error) {
	overwrites := []*discordgo.PermissionOverwrite{{
		ID:   c.guildID,
		Type: discordgo.PermissionOverwriteTypeRole,
		Deny: discordgo.PermissionViewChannel,
	}}
	for _, id := range members {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    strconv.FormatInt(id, 10),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
		})
	}
	ch, err := c.session.GuildChannelCreateComplex(c.guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, err
	}
	return &guildChannel{session: c.session, id: ch.ID}, nil
}

// Name resolves a player to their guild nick, caching lookups.
func (c *Courier) Name(playerID int64) string {
	c.mu.Lock()
	if name, ok := c.names[playerID]; ok {
		c.mu.Unlock()
		return name
	}
	c.mu.Unlock()

	name := strconv.FormatInt(playerID, 10)
	member, err := c.session.GuildMember(c.guildID, name)
	if err == nil {
		if member.Nick != "" {
			name = member.Nick
		} else {
			name = member.User.Username
		}
	}
	c.mu.Lock()
	c.names[playerID] = name
	c.mu.Unlock()
	return name
}

func (c *Courier) dmChannel(playerID int64) (string, error) {
	c.mu.Lock()
	if id, ok := c.dms[playerID]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	ch, err := c.session.UserChannelCreate(strconv.FormatInt(playerID, 10))
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.dms[playerID] = ch.ID
	c.mu.Unlock()
	return ch.ID, nil
}

type guildChannel struct {
	session *discordgo.Session
	id      string
}

func (gc *guildChannel) Send(msg string) {
	if _, err := gc.session.ChannelMessageSend(gc.id, msg); err != nil {
		log.Error(err)
	}
}

func (gc *guildChannel) Invite(playerID int64) {
	err := gc.session.ChannelPermissionSet(gc.id, strconv.FormatInt(playerID, 10),
		discordgo.PermissionOverwriteTypeMember,
		discordgo.PermissionViewChannel|discordgo.PermissionSendMessages, 0)
	if err != nil {
		log.Error(err)
	}
}

func (gc *guildChannel) Close() {
	if _, err := gc.session.ChannelDelete(gc.id); err != nil {
		log.Error(err)
	}
}
