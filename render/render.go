package render

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
)

var (
	headline = color.New(color.FgHiRed).SprintfFunc()
	accent   = color.New(color.FgHiYellow).SprintfFunc()
)

var lobbyStates = map[int]string{
	consts.LobbyStateWaiting: "Waiting",
	consts.LobbyStateRunning: "Running",
}

func Welcome(player *database.Player) error {
	return player.WriteString(headline("Hi %s, welcome to Ma Soi online! \n", player.Name))
}

func LobbyList(player *database.Player) error {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("%-10s%-10s%-10s\n", "ID", "Players", "State"))
	for _, lobby := range database.GetLobbies() {
		pwdFlag := ""
		if lobby.Password != "" {
			pwdFlag = "*"
		}
		buf.WriteString(fmt.Sprintf("%-10s%-10d%-10s\n", fmt.Sprintf("%s%d", pwdFlag, lobby.ID), lobby.Players, lobbyStates[lobby.State]))
	}
	return player.WriteString(buf.String())
}

func LobbyPlayers(lobby *database.Lobby, currPlayer *database.Player) {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("Lobby ID: %d\n", lobby.ID))
	buf.WriteString(fmt.Sprintf("%-20s%-10s\n", "Name", "Title"))
	for playerID := range database.GetLobbyPlayers(lobby.ID) {
		title := "player"
		if playerID == lobby.Creator {
			title = "owner"
		}
		player := database.GetPlayer(playerID)
		if player == nil {
			continue
		}
		buf.WriteString(fmt.Sprintf("%-20s%-10s\n", player.Name, title))
	}
	buf.WriteString("\nSettings:\n")
	buf.WriteString(fmt.Sprintf("%-5s%-5v%-5s%-5v\n", "nm:", sprintPropsState(lobby.Expansions[consts.ExpansionNewMoon])+",", "ch:", sprintPropsState(lobby.Expansions[consts.ExpansionCharacters])))
	pwd := lobby.Password
	if pwd != "" {
		if lobby.Creator != currPlayer.ID {
			pwd = "********"
		}
	} else {
		pwd = "off"
	}
	buf.WriteString(fmt.Sprintf("%-5s%-20v\n", "pwd", pwd))
	buf.WriteString(accent("Type 'start' when %d players are in. \n", consts.MinPlayers))
	_ = currPlayer.WriteString(buf.String())
}

func sprintPropsState(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
