package database

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/masoi-online/server/werewolf"
)

// Courier drives one lobby's match over the console connections. It also
// serves as the name directory.
type Courier struct {
	lobbyID int64
}

func NewCourier(lobbyID int64) *Courier {
	return &Courier{lobbyID: lobbyID}
}

func (c *Courier) Broadcast(msg string) {
	Broadcast(c.lobbyID, msg+"\n")
}

func (c *Courier) Private(playerID int64, msg string) {
	if player := getPlayer(playerID); player != nil {
		_ = player.WriteString(msg + "\n")
	}
}

// Choose parks the prompt on the player; the playing loop feeds the typed
// answer back in.
func (c *Courier) Choose(ctx context.Context, playerID int64, ask werewolf.Ask) werewolf.Pick {
	player := getPlayer(playerID)
	if player == nil {
		return werewolf.Pick{Skipped: true}
	}
	pr := player.setPrompt(ask)
	defer player.clearPrompt(pr)

	buf := bytes.Buffer{}
	buf.WriteString(ask.Title + "\n")
	for i, opt := range ask.Options {
		buf.WriteString(fmt.Sprintf("%d.%s\n", i+1, opt.Label))
	}
	if ask.AllowSkip {
		buf.WriteString("0.pass\n")
	}
	_ = player.WriteString(buf.String())

	timeout := ask.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	select {
	case pick := <-pr.answer:
		return pick
	case <-time.After(timeout):
		_ = player.WriteString("Too slow. The night moves on without you. \n")
		return werewolf.Pick{Skipped: true}
	case <-ctx.Done():
		return werewolf.Pick{Skipped: true}
	}
}

// OpenChannel is an in-process whisper group; console lobbies have no real
// sub-channels, so messages fan out as prefixed privates.
func (c *Courier) OpenChannel(name string, members []int64) (werewolf.Channel, error) {
	ch := &consoleChannel{courier: c, name: name, members: map[int64]bool{}}
	for _, id := range members {
		ch.members[id] = true
	}
	return ch, nil
}

func (c *Courier) Name(playerID int64) string {
	if player := getPlayer(playerID); player != nil {
		return player.Name
	}
	return fmt.Sprintf("player %d", playerID)
}

type consoleChannel struct {
	courier *Courier
	name    string

	mu      sync.Mutex
	members map[int64]bool
	closed  bool
}

func (ch *consoleChannel) Send(msg string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return
	}
	for id := range ch.members {
		ch.courier.Private(id, fmt.Sprintf("[%s] %s", ch.name, msg))
	}
}

func (ch *consoleChannel) Invite(playerID int64) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.members[playerID] = true
}

func (ch *consoleChannel) Close() {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.closed = true
}
