package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ratel-online/core/util/async"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
	"github.com/masoi-online/server/render"
	"github.com/masoi-online/server/werewolf"
	"github.com/masoi-online/server/werewolf/role"
)

type waiting struct{}

func (s *waiting) Next(player *database.Player) (consts.StateID, error) {
	lobby := database.GetLobby(player.LobbyID)
	if lobby == nil {
		return 0, consts.ErrorsExist
	}
	access, err := waitingForStart(player, lobby)
	if err != nil {
		return 0, err
	}
	if access {
		return consts.StatePlaying, nil
	}
	return s.Exit(player), nil
}

func (*waiting) Exit(player *database.Player) consts.StateID {
	lobby := database.GetLobby(player.LobbyID)
	if lobby != nil {
		isOwner := lobby.Creator == player.ID
		database.LeaveLobby(lobby.ID, player.ID)
		database.Broadcast(lobby.ID, fmt.Sprintf("%s exited lobby! lobby current has %d players\n", player.Name, lobby.Players))
		if isOwner {
			if newOwner := database.GetPlayer(lobby.Creator); newOwner != nil {
				database.Broadcast(lobby.ID, fmt.Sprintf("%s become new owner\n", newOwner.Name))
			}
		}
	}
	return consts.StateHome
}

func waitingForStart(player *database.Player, lobby *database.Lobby) (bool, error) {
	access := false
	player.StartTransaction()
	defer player.StopTransaction()
	for {
		signal, err := player.AskForStringWithoutTransaction(time.Second)
		if err != nil && err != consts.ErrorsTimeout {
			return access, err
		}
		if lobby.State == consts.LobbyStateRunning {
			access = true
			break
		}
		signal = strings.ToLower(strings.TrimSpace(signal))
		if isLs(signal) {
			render.LobbyPlayers(lobby, player)
		} else if isExit(signal) {
			break
		} else if (signal == "start" || signal == "s") && lobby.Creator == player.ID {
			err = startMatch(lobby)
			if err != nil {
				_ = player.WriteError(err)
				continue
			}
			access = true
			break
		} else if strings.HasPrefix(signal, "set ") && lobby.Creator == player.ID {
			tags := strings.Split(signal, " ")
			if len(tags) == 3 {
				database.SetLobbyProps(lobby, tags[1], tags[2])
				continue
			}
			player.BroadcastChat(fmt.Sprintf("%s say: %s\n", player.Name, signal))
		} else if len(signal) > 0 {
			player.BroadcastChat(fmt.Sprintf("%s say: %s\n", player.Name, signal))
		}
	}
	return access, nil
}

func startMatch(lobby *database.Lobby) error {
	lobby.Lock()
	defer lobby.Unlock()
	if lobby.State == consts.LobbyStateRunning {
		return nil
	}
	if lobby.Players < consts.MinPlayers {
		return consts.ErrorsGamePlayersInvalid
	}
	courier := database.NewCourier(lobby.ID)
	game := werewolf.NewGame(lobby.Creator, courier, courier, role.DefaultRegistry(), werewolf.Config{
		Expansions: lobby.Expansions,
	})
	for id := range database.GetLobbyPlayers(lobby.ID) {
		if err := game.Join(id); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := game.Begin(ctx); err != nil {
		cancel()
		return err
	}
	lobby.Arm(game, cancel)
	lobby.State = consts.LobbyStateRunning
	async.Async(func() {
		game.Run(ctx)
		lobby.Lock()
		lobby.Disarm()
		lobby.Unlock()
	})
	return nil
}
