// Package boot loads the settings file and starts the optional services
// every binary shares: sound, the spectator server and the history database.
package boot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Garsondee/Nightwood/internal/audio"
	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/session"
	"github.com/Garsondee/Nightwood/internal/spectate"
	"github.com/Garsondee/Nightwood/internal/store"
)

// DefaultConfigPath is read when no -config flag is given. It may be absent.
const DefaultConfigPath = "nightwood.yaml"

// LoadConfig reads path over the defaults. A missing file at the default
// path is not an error; a missing file the user named is.
func LoadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) && path == DefaultConfigPath {
		return config.Default(), nil
	}
	return config.Config{}, fmt.Errorf("load config %s: %w", path, err)
}

// Services holds whatever the settings switched on. Nil fields are off.
type Services struct {
	Sound    *audio.SoundManager
	Spectate *spectate.Server
	History  *store.DB
}

// Start brings up the services. Sound failing to open is logged and skipped;
// the history database or spectator port failing is an error.
func Start(cfg config.Config, withSound bool) (*Services, error) {
	s := &Services{}
	if withSound && cfg.Audio.Enabled {
		sm := audio.NewSoundManager(cfg.Audio)
		if err := sm.Initialize(); err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			s.Sound = sm
		}
	}
	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		s.History = db
	}
	if cfg.Spectate.Enabled {
		srv := spectate.NewServer(cfg.Spectate)
		if err := srv.Start(); err != nil {
			s.Close()
			return nil, fmt.Errorf("start spectator server: %w", err)
		}
		s.Spectate = srv
	}
	return s, nil
}

// SessionOptions wires the running services into a session runner.
func (s *Services) SessionOptions(cfg config.Config, seed int64) session.Options {
	opts := session.Options{Tuning: cfg.Sim, Seed: seed}
	if s.Sound != nil {
		opts.Sound = s.Sound
	}
	if s.Spectate != nil {
		opts.Publisher = s.Spectate.Hub
	}
	if s.History != nil {
		opts.History = s.History
	}
	return opts
}

// Close stops everything that was started.
func (s *Services) Close() {
	if s.Sound != nil {
		s.Sound.Cleanup()
	}
	if s.Spectate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Spectate.Shutdown(ctx); err != nil {
			log.Printf("spectate: shutdown: %v", err)
		}
	}
	if s.History != nil {
		if err := s.History.Close(); err != nil {
			log.Printf("history: close: %v", err)
		}
	}
}
