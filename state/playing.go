package state

import (
	"fmt"
	"strings"
	"time"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
)

type playing struct{}

// Next pumps the player's typed lines for the whole match. Engine prompts
// parked on the player get first claim on a line; the rest are day votes
// and table chat.
func (s *playing) Next(player *database.Player) (consts.StateID, error) {
	lobby := database.GetLobby(player.LobbyID)
	if lobby == nil {
		return 0, consts.ErrorsExist
	}
	player.StartTransaction()
	defer player.StopTransaction()
	for {
		line, err := player.AskForStringWithoutTransaction(time.Second)
		if err != nil && err != consts.ErrorsTimeout {
			return 0, err
		}
		if lobby.State != consts.LobbyStateRunning {
			_ = player.WriteString("The match is over. Back to the lobby. \n")
			return consts.StateWaiting, nil
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if player.AnswerPrompt(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "vote") {
			s.castVote(player, lobby, strings.TrimSpace(line[4:]))
			continue
		}
		player.BroadcastChat(fmt.Sprintf("%s say: %s\n", player.Name, line))
	}
}

func (*playing) Exit(player *database.Player) consts.StateID {
	return consts.StateWaiting
}

func (*playing) castVote(player *database.Player, lobby *database.Lobby, arg string) {
	game := lobby.Game
	if game == nil {
		return
	}
	if arg == "" {
		_ = player.WriteString("vote <name>, or vote pass\n")
		return
	}
	if strings.EqualFold(arg, "pass") || strings.EqualFold(arg, "skip") {
		if err := game.CastVoteSkip(player.ID); err != nil {
			_ = player.WriteError(err)
		}
		return
	}
	var targetID int64
	for id := range database.GetLobbyPlayers(lobby.ID) {
		if target := database.GetPlayer(id); target != nil && strings.EqualFold(target.Name, arg) {
			targetID = id
			break
		}
	}
	if targetID == 0 {
		_ = player.WriteError(consts.ErrorsInputInvalid)
		return
	}
	if err := game.CastVote(player.ID, targetID); err != nil {
		_ = player.WriteError(err)
	}
}
