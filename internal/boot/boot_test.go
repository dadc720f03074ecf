package boot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Nightwood/internal/config"
	"github.com/Garsondee/Nightwood/internal/session"
)

func TestLoadConfig_DefaultPathMayBeMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig(DefaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = LoadConfig("elsewhere.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig_ReadsTheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  title: Test Night\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Night", cfg.Window.Title)
}

func TestStart_WiresEnabledServices(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.Spectate.Enabled = true
	cfg.Spectate.Addr = "127.0.0.1:0"

	svc, err := Start(cfg, false)
	require.NoError(t, err)
	defer svc.Close()

	assert.Nil(t, svc.Sound)
	require.NotNil(t, svc.History)
	require.NotNil(t, svc.Spectate)

	opts := svc.SessionOptions(cfg, 9)
	assert.Nil(t, opts.Sound)
	assert.NotNil(t, opts.Publisher)
	assert.NotNil(t, opts.History)

	tun := cfg.Sim
	tun.BatteryLifetime = 1
	opts.Tuning = tun
	run, err := session.New(opts)
	require.NoError(t, err)
	run.RunAutopilot(0.1, 50)
	require.True(t, run.Finished())

	rows, err := svc.History.Recent(5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, run.SessionID(), rows[0].ID)
}

func TestStart_AllOff(t *testing.T) {
	cfg := config.Default()
	cfg.Spectate.Enabled = false
	svc, err := Start(cfg, false)
	require.NoError(t, err)
	opts := svc.SessionOptions(cfg, 1)
	assert.Nil(t, opts.Publisher)
	assert.Nil(t, opts.History)
	svc.Close()
}

func TestStart_BadHistoryPath(t *testing.T) {
	cfg := config.Default()
	cfg.Spectate.Enabled = false
	cfg.Store.Path = filepath.Join(t.TempDir(), "missing", "dir", "history.db")
	_, err := Start(cfg, false)
	require.Error(t, err)
}
