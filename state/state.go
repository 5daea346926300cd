package state

import (
	"github.com/ratel-online/core/log"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
)

var states = map[consts.StateID]State{}

func init() {
	register(consts.StateWelcome, &welcome{})
	register(consts.StateHome, &home{})
	register(consts.StateJoin, &join{})
	register(consts.StateNew, &create{})
	register(consts.StateWaiting, &waiting{})
	register(consts.StatePlaying, &playing{})
}

func register(id consts.StateID, state State) {
	states[id] = state
}

type State interface {
	Next(player *database.Player) (consts.StateID, error)
	Exit(player *database.Player) consts.StateID
}

// Run walks the player through the state machine until the connection
// drops or the player exits.
func Run(player *database.Player) {
	player.State(consts.StateWelcome)
	for {
		state := states[player.GetState()]
		stateID, err := state.Next(player)
		if err != nil {
			log.Error(err)
			break
		}
		if stateID > 0 {
			player.State(stateID)
		}
	}
}

func isExit(signal string) bool {
	return signal == "exit" || signal == "e"
}

func isLs(signal string) bool {
	return signal == "ls" || signal == "v"
}
