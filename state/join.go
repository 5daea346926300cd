package state

import (
	"fmt"
	"strconv"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
	"github.com/masoi-online/server/render"
)

type join struct{}

func (s *join) Next(player *database.Player) (consts.StateID, error) {
	err := render.LobbyList(player)
	if err != nil {
		return 0, player.WriteError(err)
	}
	signal, err := player.AskForString()
	if err != nil {
		return 0, player.WriteError(err)
	}
	if isExit(signal) {
		return s.Exit(player), nil
	}
	if isLs(signal) {
		return consts.StateJoin, nil
	}
	lobbyID, err := strconv.ParseInt(signal, 10, 64)
	if err != nil {
		return 0, player.WriteError(consts.ErrorsLobbyInvalid)
	}
	lobby := database.GetLobby(lobbyID)
	if lobby == nil {
		return 0, player.WriteError(consts.ErrorsLobbyInvalid)
	}
	if lobby.Password != "" {
		err = verifyPassword(player, lobby.Password)
		if err != nil {
			return 0, player.WriteError(err)
		}
	}
	err = database.JoinLobby(lobbyID, player.ID)
	if err != nil {
		return 0, player.WriteError(err)
	}
	database.Broadcast(lobbyID, fmt.Sprintf("%s joined lobby! lobby current has %d players\n", player.Name, lobby.Players))
	return consts.StateWaiting, nil
}

func (*join) Exit(player *database.Player) consts.StateID {
	return consts.StateHome
}

func verifyPassword(player *database.Player, pwd string) error {
	err := player.WriteString("Please input lobby password: \n")
	if err != nil {
		return err
	}
	password, err := player.AskForString()
	if err != nil {
		return err
	}
	if password != pwd {
		return consts.ErrorsLobbyPassword
	}
	return nil
}
