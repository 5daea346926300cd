package state

import (
	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/database"
	"github.com/masoi-online/server/render"
)

type welcome struct{}

func (*welcome) Next(player *database.Player) (consts.StateID, error) {
	err := render.Welcome(player)
	if err != nil {
		return 0, err
	}
	return consts.StateHome, nil
}

func (*welcome) Exit(player *database.Player) consts.StateID {
	return 0
}
