package werewolf

import (
	"context"
	"time"
)

// Option is one pickable entry of a private prompt.
type Option struct {
	ID    int64
	Label string
}

// Ask is a single-choice private prompt delivered to one player.
type Ask struct {
	Title     string
	Options   []Option
	AllowSkip bool
	Timeout   time.Duration
}

// Pick is the player's answer. A timeout, a delivery failure or an explicit
// pass all come back as Skipped.
type Pick struct {
	TargetID int64
	Skipped  bool
}

// Channel is a restricted sub-channel owned by one match, typically the
// werewolf faction chat. Close releases the underlying resource.
type Channel interface {
	Send(msg string)
	Invite(playerID int64)
	Close()
}

// Courier delivers everything the engine says. Implementations exist for
// Discord and for the packet console; the engine never talks to a transport
// directly.
type Courier interface {
	Broadcast(msg string)
	Private(playerID int64, msg string)
	Choose(ctx context.Context, playerID int64, ask Ask) Pick
	OpenChannel(name string, members []int64) (Channel, error)
}

// Directory resolves a player identity to a display name.
type Directory interface {
	Name(playerID int64) string
}
