package state

import (
	"fmt"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
)

type create struct{}

func (*create) Next(player *database.Player) (consts.StateID, error) {
	lobby := database.CreateLobby(player.ID)
	err := database.JoinLobby(lobby.ID, player.ID)
	if err != nil {
		return 0, player.WriteError(err)
	}
	err = player.WriteString(fmt.Sprintf("Lobby %d created. Waiting for %d-%d players.\n", lobby.ID, consts.MinPlayers, consts.MaxPlayers))
	if err != nil {
		return 0, player.WriteError(err)
	}
	return consts.StateWaiting, nil
}

func (*create) Exit(player *database.Player) consts.StateID {
	return consts.StateHome
}
