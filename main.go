package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"

	"github.com/masoi-online/server/discord"
	"github.com/masoi-online/server/manager"
	"github.com/masoi-online/server/network"
	"github.com/masoi-online/server/storage"
	"github.com/masoi-online/server/werewolf/role"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Println("main", err)
			async.PrintStackTrace(err)
		}
	}()
	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file, using process env\n")
	}

	store, err := openStore()
	if err != nil {
		log.Error(err)
		return
	}
	defer store.Close()

	registry := role.DefaultRegistry()
	mgr := manager.New(store)

	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		bot, err := discord.NewBot(token, mgr, registry)
		if err != nil {
			log.Error(err)
			return
		}
		if err := bot.Open(); err != nil {
			log.Error(err)
			return
		}
		defer bot.Close()
		log.Infof("Discord bot connected\n")
	}

	if wsAddr := os.Getenv("MASOI_WS_ADDR"); wsAddr != "" {
		async.Async(func() {
			log.Error(network.NewWebsocketServer(wsAddr).Serve())
		})
	}

	tcpAddr := os.Getenv("MASOI_TCP_ADDR")
	if tcpAddr == "" {
		tcpAddr = ":9999"
	}
	async.Async(func() {
		log.Error(network.NewTcpServer(tcpAddr).Serve())
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Infof("shutting down\n")
}

func openStore() (storage.Store, error) {
	path := os.Getenv("MASOI_DB")
	if path == "" {
		return storage.NewMemory(), nil
	}
	return storage.NewSqlite(path)
}
