package database

import (
	"fmt"
	"strconv"
	stringx "strings"
	"sync"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/network"
	"github.com/ratel-online/core/protocol"
	"github.com/ratel-online/core/util/json"
	"github.com/ratel-online/core/util/strings"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/werewolf"
)

// Player is one console connection. During a match the engine's private
// prompts are parked on the player and resolved by whatever the player
// types next.
type Player struct {
	ID      int64  `json:"id"`
	IP      string `json:"ip"`
	Name    string `json:"name"`
	LobbyID int64  `json:"lobbyId"`

	conn   *network.Conn
	data   chan *protocol.Packet
	read   bool
	state  consts.StateID
	online bool

	promptMu sync.Mutex
	prompt   *pendingPrompt
}

type pendingPrompt struct {
	ask    werewolf.Ask
	answer chan werewolf.Pick
}

func (p *Player) Offline() {
	p.online = false
	_ = p.conn.Close()
	close(p.data)
	lobby := getLobby(p.LobbyID)
	if lobby != nil {
		lobby.Lock()
		defer lobby.Unlock()
		lobby.broadcast(fmt.Sprintf("%s lost connection! \n", p.Name))
		if lobby.State == consts.LobbyStateWaiting {
			lobby.removePlayer(p)
		}
		lobby.Cancel()
	}
}

func (p *Player) Listening() error {
	for {
		pack, err := p.conn.Read()
		if err != nil {
			log.Error(err)
			return err
		}
		if p.read {
			p.data <- pack
		}
	}
}

func (p *Player) WriteString(data string) error {
	time.Sleep(30 * time.Millisecond)
	return p.conn.Write(protocol.Packet{
		Body: []byte(data),
	})
}

func (p *Player) WriteObject(data interface{}) error {
	return p.conn.Write(protocol.Packet{
		Body: json.Marshal(data),
	})
}

func (p *Player) WriteError(err error) error {
	if err == consts.ErrorsExist {
		return err
	}
	return p.conn.Write(protocol.Packet{
		Body: []byte(err.Error() + "\n"),
	})
}

func (p *Player) AskForPacket(timeout ...time.Duration) (*protocol.Packet, error) {
	p.StartTransaction()
	defer p.StopTransaction()
	return p.askForPacket(timeout...)
}

func (p *Player) askForPacket(timeout ...time.Duration) (*protocol.Packet, error) {
	var packet *protocol.Packet
	if len(timeout) > 0 {
		select {
		case packet = <-p.data:
		case <-time.After(timeout[0]):
			return nil, consts.ErrorsTimeout
		}
	} else {
		packet = <-p.data
	}
	if packet == nil {
		return nil, consts.ErrorsChanClosed
	}
	single := stringx.ToLower(packet.String())
	if single == "exit" {
		return nil, consts.ErrorsExist
	}
	return packet, nil
}

func (p *Player) AskForInt(timeout ...time.Duration) (int, error) {
	packet, err := p.AskForPacket(timeout...)
	if err != nil {
		return 0, err
	}
	return packet.Int()
}

func (p *Player) AskForString(timeout ...time.Duration) (string, error) {
	packet, err := p.AskForPacket(timeout...)
	if err != nil {
		return "", err
	}
	return packet.String(), nil
}

func (p *Player) AskForStringWithoutTransaction(timeout ...time.Duration) (string, error) {
	packet, err := p.askForPacket(timeout...)
	if err != nil {
		return "", err
	}
	return packet.String(), nil
}

func (p *Player) StartTransaction() {
	p.read = true
	_ = p.WriteString(consts.IsStart)
}

func (p *Player) StopTransaction() {
	p.read = false
	_ = p.WriteString(consts.IsStop)
}

func (p *Player) State(s consts.StateID) {
	p.state = s
}

func (p *Player) GetState() consts.StateID {
	return p.state
}

func (p *Player) Conn(conn *network.Conn) {
	p.conn = conn
	p.data = make(chan *protocol.Packet, 8)
	p.online = true
}

// setPrompt parks an engine question on the player and returns its answer
// channel. A newer prompt displaces an older unanswered one.
func (p *Player) setPrompt(ask werewolf.Ask) *pendingPrompt {
	pr := &pendingPrompt{ask: ask, answer: make(chan werewolf.Pick, 1)}
	p.promptMu.Lock()
	p.prompt = pr
	p.promptMu.Unlock()
	return pr
}

func (p *Player) clearPrompt(pr *pendingPrompt) {
	p.promptMu.Lock()
	if p.prompt == pr {
		p.prompt = nil
	}
	p.promptMu.Unlock()
}

// AnswerPrompt feeds a typed line into the parked prompt, reporting
// whether the line was consumed.
func (p *Player) AnswerPrompt(line string) bool {
	p.promptMu.Lock()
	pr := p.prompt
	p.promptMu.Unlock()
	if pr == nil {
		return false
	}
	n, err := strconv.Atoi(stringx.TrimSpace(line))
	if err != nil {
		return false
	}
	var pick werewolf.Pick
	switch {
	case n == 0 && pr.ask.AllowSkip:
		pick = werewolf.Pick{Skipped: true}
	case n >= 1 && n <= len(pr.ask.Options):
		pick = werewolf.Pick{TargetID: pr.ask.Options[n-1].ID}
	default:
		_ = p.WriteString("That is not one of the numbers on offer. \n")
		return true
	}
	select {
	case pr.answer <- pick:
	default:
	}
	return true
}

func (p *Player) String() string {
	return fmt.Sprintf("%s[%d]", p.Name, p.ID)
}

func (p *Player) BroadcastChat(msg string, exclude ...int64) {
	log.Infof("chat msg, player %s[%d] %s say: %s\n", p.Name, p.ID, p.IP, stringx.TrimSpace(msg))
	Broadcast(p.LobbyID, strings.Desensitize(msg), exclude...)
}
