package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Nightwood/internal/boot"
	"github.com/Garsondee/Nightwood/internal/game"
	"github.com/Garsondee/Nightwood/internal/session"
)

func main() {
	var configPath string
	var seed int64
	var autopilot bool

	flag.StringVar(&configPath, "config", boot.DefaultConfigPath, "settings file")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "world seed")
	flag.BoolVar(&autopilot, "autopilot", false, "let the scripted pilot play")
	flag.Parse()

	cfg, err := boot.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	svc, err := boot.Start(cfg, true)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	run, err := session.New(svc.SessionOptions(cfg, seed))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("session %s started (seed %d)", run.SessionID(), run.Seed())

	g, err := game.New(cfg, run, autopilot)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetTPS(cfg.Window.TPS)
	if err := ebiten.RunGame(g); err != nil {
		log.Print(err)
	}
}
