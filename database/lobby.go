package database

import (
	"context"
	"sync"

	"github.com/ratel-online/core/log"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Lobby is one console room, at most one match at a time.
type Lobby struct {
	sync.Mutex
	ID         int64
	State      int
	Creator    int64
	Players    int
	MaxPlayers int
	Password   string
	Expansions map[string]bool

	Game   *werewolf.Game
	cancel context.CancelFunc
	done   chan struct{}
}

// Arm installs the running match and its stop handle.
func (l *Lobby) Arm(game *werewolf.Game, cancel context.CancelFunc) {
	l.Game = game
	l.cancel = cancel
	l.done = make(chan struct{})
}

// Disarm marks the match over and wakes everyone parked in the playing
// state.
func (l *Lobby) Disarm() {
	l.State = consts.LobbyStateWaiting
	l.Game = nil
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
}

func (l *Lobby) Done() <-chan struct{} {
	return l.done
}

// Cancel removes the lobby once nobody in it is still online.
func (l *Lobby) Cancel() {
	living := false
	for id := range getLobbyPlayers(l.ID) {
		if player := getPlayer(id); player != nil && player.online {
			living = true
			break
		}
	}
	if !living {
		log.Infof("lobby %d is not living, removed.\n", l.ID)
		if l.Game != nil {
			l.Game.Shutdown()
		}
		l.Disarm()
		deleteLobby(l)
	}
}

func (l *Lobby) broadcast(msg string, exclude ...int64) {
	excludeSet := map[int64]bool{}
	for _, exc := range exclude {
		excludeSet[exc] = true
	}
	for playerID := range getLobbyPlayers(l.ID) {
		if player := getPlayer(playerID); player != nil && !excludeSet[playerID] {
			_ = player.WriteString(msg)
		}
	}
}

func (l *Lobby) removePlayer(p *Player) {
	playerIDs := getLobbyPlayers(l.ID)
	if _, ok := playerIDs[p.ID]; ok {
		l.Players--
		p.LobbyID = 0
		delete(playerIDs, p.ID)
		if len(playerIDs) > 0 && l.Creator == p.ID {
			for k := range playerIDs {
				l.Creator = k
				break
			}
		}
	}
	if len(playerIDs) == 0 {
		deleteLobby(l)
	}
}
