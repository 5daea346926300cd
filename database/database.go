package database

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/awesome-cap/hashmap"
	"github.com/ratel-online/core/model"
	"github.com/ratel-online/core/network"
	"github.com/ratel-online/core/util/async"

	"github.com/masoi-online/server/consts"
)

var lobbyIds int64 = 0
var players = hashmap.New()
var lobbies = hashmap.New()
var lobbyPlayers = hashmap.New()

func init() {
	async.Async(func() {
		for {
			time.Sleep(1 * time.Minute)
			lobbies.Foreach(func(e *hashmap.Entry) {
				e.Value().(*Lobby).Cancel()
			})
		}
	})
}

func Connected(conn *network.Conn, info *model.AuthInfo) *Player {
	player := &Player{
		ID:   info.ID,
		Name: info.Name,
	}
	player.Conn(conn)
	players.Set(info.ID, player)
	return player
}

func CreateLobby(creator int64) *Lobby {
	lobby := &Lobby{
		ID:         atomic.AddInt64(&lobbyIds, 1),
		State:      consts.LobbyStateWaiting,
		Creator:    creator,
		MaxPlayers: consts.MaxPlayers,
		Expansions: map[string]bool{consts.ExpansionBasic: true},
	}
	lobbies.Set(lobby.ID, lobby)
	lobbyPlayers.Set(lobby.ID, map[int64]bool{})
	return lobby
}

func deleteLobby(lobby *Lobby) {
	if lobby != nil {
		lobbies.Del(lobby.ID)
		lobbyPlayers.Del(lobby.ID)
	}
}

func GetLobbies() []*Lobby {
	list := make([]*Lobby, 0)
	lobbies.Foreach(func(e *hashmap.Entry) {
		list = append(list, e.Value().(*Lobby))
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func GetLobby(lobbyID int64) *Lobby {
	return getLobby(lobbyID)
}

func getLobby(lobbyID int64) *Lobby {
	if v, ok := lobbies.Get(lobbyID); ok {
		return v.(*Lobby)
	}
	return nil
}

func getPlayer(playerID int64) *Player {
	if v, ok := players.Get(playerID); ok {
		return v.(*Player)
	}
	return nil
}

func GetPlayer(playerID int64) *Player {
	return getPlayer(playerID)
}

func getLobbyPlayers(lobbyID int64) map[int64]bool {
	if v, ok := lobbyPlayers.Get(lobbyID); ok {
		return v.(map[int64]bool)
	}
	return nil
}

func GetLobbyPlayers(lobbyID int64) map[int64]bool {
	return getLobbyPlayers(lobbyID)
}

func JoinLobby(lobbyID, playerID int64) error {
	player := getPlayer(playerID)
	if player == nil {
		return consts.ErrorsExist
	}
	lobby := getLobby(lobbyID)
	if lobby == nil {
		return consts.ErrorsLobbyInvalid
	}
	lobby.Lock()
	defer lobby.Unlock()
	if lobby.State == consts.LobbyStateRunning {
		return consts.ErrorsJoinFailForLobbyRunning
	}
	if lobby.Players >= lobby.MaxPlayers {
		return consts.ErrorsLobbyPlayersIsFull
	}
	playerIDs := getLobbyPlayers(lobbyID)
	if playerIDs != nil {
		playerIDs[playerID] = true
		lobby.Players++
		player.LobbyID = lobbyID
	}
	return nil
}

func LeaveLobby(lobbyID, playerID int64) {
	lobby := getLobby(lobbyID)
	if lobby != nil {
		lobby.Lock()
		defer lobby.Unlock()
		if player := getPlayer(playerID); player != nil {
			lobby.removePlayer(player)
		}
	}
}

func Broadcast(lobbyID int64, msg string, exclude ...int64) {
	lobby := getLobby(lobbyID)
	if lobby == nil {
		return
	}
	lobby.broadcast(msg, exclude...)
}

// SetLobbyProps applies a "set k v" command from the lobby owner.
func SetLobbyProps(lobby *Lobby, key, value string) {
	on := value == "on"
	switch key {
	case consts.LobbyPropsNewMoon:
		lobby.Expansions[consts.ExpansionNewMoon] = on
	case consts.LobbyPropsCharacters:
		lobby.Expansions[consts.ExpansionCharacters] = on
	case consts.LobbyPropsPassword:
		if value == "off" {
			lobby.Password = ""
		} else {
			lobby.Password = value
		}
	}
}
