package role

import (
	"github.com/masoi-online/server/werewolf"
)

// DefaultRegistry builds a registry holding the full roster. Duplicate
// registration only happens through a programming error, so it panics.
func DefaultRegistry() *werewolf.Registry {
	reg := werewolf.NewRegistry()
	ctors := []werewolf.Constructor{
		NewVillager,
		NewWerewolf,
		NewAlphaWerewolf,
		NewBigBadWolf,
		NewWolfShaman,
		NewSeer,
		NewAuraSeer,
		NewFox,
		NewGuard,
		NewElder,
		NewWitch,
		NewPharmacist,
		NewHunter,
		NewKnight,
		NewScapegoat,
		NewCupid,
		NewLittleGirl,
		NewIdiot,
		NewMayor,
		NewJudge,
		NewRaven,
		NewTwoSisters,
		NewThreeBrothers,
		NewCursed,
		NewThief,
		NewWhiteWolf,
		NewPiper,
		NewWildChild,
		NewWolfHound,
		NewAngelOfDeath,
	}
	for _, ctor := range ctors {
		if err := reg.Register(ctor); err != nil {
			panic(err)
		}
	}
	return reg
}
