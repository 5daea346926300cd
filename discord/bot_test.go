package discord

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

type muteCourier struct{}

func (muteCourier) Broadcast(msg string)               {}
func (muteCourier) Private(playerID int64, msg string) {}

func (muteCourier) Choose(ctx context.Context, playerID int64, ask werewolf.Ask) werewolf.Pick {
	return werewolf.Pick{Skipped: true}
}

func (muteCourier) OpenChannel(name string, members []int64) (werewolf.Channel, error) {
	return nil, nil
}

type muteDir struct{}

func (muteDir) Name(playerID int64) string { return strconv.FormatInt(playerID, 10) }

func TestRequireHost(t *testing.T) {
	game := werewolf.NewGame(42, muteCourier{}, muteDir{}, werewolf.NewRegistry(), werewolf.Config{})
	assert.NoError(t, requireHost(game, 42))
	assert.Equal(t, consts.ErrorsNotHost, requireHost(game, 7))
}
