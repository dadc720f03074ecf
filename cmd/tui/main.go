package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/Nightwood/internal/boot"
	"github.com/Garsondee/Nightwood/internal/session"
	"github.com/Garsondee/Nightwood/internal/tui"
)

func main() {
	var configPath string
	var seed int64
	var autopilot bool
	var logPath string

	flag.StringVar(&configPath, "config", boot.DefaultConfigPath, "settings file")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "world seed")
	flag.BoolVar(&autopilot, "autopilot", false, "let the scripted pilot play")
	flag.StringVar(&logPath, "log", "", "write log output to this file (the terminal is busy)")
	flag.Parse()

	// The screen owns the terminal; log lines would tear it.
	log.SetOutput(io.Discard)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := run(configPath, seed, autopilot); err != nil {
		fmt.Fprintf(os.Stderr, "nightwood: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, seed int64, autopilot bool) error {
	cfg, err := boot.LoadConfig(configPath)
	if err != nil {
		return err
	}
	svc, err := boot.Start(cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	r, err := session.New(svc.SessionOptions(cfg, seed))
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := tui.New(screen, cfg, r, autopilot).Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Printf("session %s: %s", r.SessionID(), r.Report())
	return nil
}
