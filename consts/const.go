package consts

import (
	"time"

	"github.com/ratel-online/core/consts"
)

type StateID int

const (
	_ StateID = iota
	StateWelcome
	StateHome
	StateJoin
	StateNew
	StateWaiting
	StatePlaying
)

const (
	IsStart = consts.IsStart
	IsStop  = consts.IsStop

	MinPlayers = 6
	MaxPlayers = 20

	LobbyStateWaiting = 1
	LobbyStateRunning = 2

	NightActionTimeout = 60 * time.Second
	DayActionTimeout   = 45 * time.Second
	DayVoteTimeout     = 90 * time.Second
	DefaultVoteTimeout = 60 * time.Second
	VoteTickInterval   = 5 * time.Second
	DeathActionTimeout = 45 * time.Second
)

// Expansion tags. Basic is always active; the rest are lobby options.
const (
	ExpansionBasic      = "basic"
	ExpansionNewMoon    = "new-moon"
	ExpansionCharacters = "characters"
)

var Expansions = []string{ExpansionBasic, ExpansionNewMoon, ExpansionCharacters}

// Lobby properties.
const (
	LobbyPropsNewMoon    = "nm"
	LobbyPropsCharacters = "ch"
	LobbyPropsPassword   = "pwd"
	LobbyPropsPlayerNum  = "pn"
)

type Error struct {
	Code int
	Msg  string
	Exit bool
}

func (e Error) Error() string {
	return e.Msg
}

func NewErr(code int, exit bool, msg string) Error {
	return Error{Code: code, Msg: msg, Exit: exit}
}

var (
	ErrorsExist                   = NewErr(1, true, "Exist. ")
	ErrorsChanClosed              = NewErr(1, true, "Chan closed. ")
	ErrorsTimeout                 = NewErr(1, false, "Timeout. ")
	ErrorsInputInvalid            = NewErr(1, false, "Input invalid. ")
	ErrorsAuthFail                = NewErr(1, true, "Auth fail. ")
	ErrorsLobbyInvalid            = NewErr(1, true, "Lobby invalid. ")
	ErrorsLobbyPlayersIsFull      = NewErr(1, false, "Lobby players is full. ")
	ErrorsLobbyPassword           = NewErr(1, false, "Sorry! Password incorrect! ")
	ErrorsJoinFailForLobbyRunning = NewErr(1, false, "Join fail, match is running. ")
	ErrorsGamePlayersInvalid      = NewErr(1, false, "A match needs at least 6 players. ")
	ErrorsMatchExist              = NewErr(2, false, "A match is already running here. ")
	ErrorsMatchNotFound           = NewErr(2, false, "No match is running here. ")
	ErrorsMatchEnded              = NewErr(2, false, "Match already ended. ")
	ErrorsNotHost                 = NewErr(2, false, "Only the host can do that. ")
	ErrorsNotInLobby              = NewErr(2, false, "You did not join this match. ")
	ErrorsRoleUnknown             = NewErr(3, true, "Unknown role name. ")
	ErrorsRoleDuplicated          = NewErr(3, true, "Role registered twice. ")
	ErrorsVoteClosed              = NewErr(4, false, "Vote already closed. ")
	ErrorsNoActiveVote            = NewErr(4, false, "No vote is running. ")
	ErrorsSnapshotNotFound        = NewErr(5, false, "No saved match. ")
)
