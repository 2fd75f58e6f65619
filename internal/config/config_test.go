package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MINISTRY_ADMIN_PASSWORD", "pw")

	cfg, err := Load(New(""))
	require.NoError(t, err)
	require.Equal(t, ":8180", cfg.HTTP.Addr)
	require.Equal(t, "./data", cfg.Data.Dir)
	require.Equal(t, "admin", cfg.Admin.Username)
	require.Equal(t, 24*time.Hour, cfg.Admin.SessionTTL)
	require.Equal(t, time.Second, cfg.Player.EndedCloseDelay)
	require.Equal(t, 2*time.Second, cfg.Player.ErrorCloseDelay)
	require.Equal(t, 16*time.Millisecond, cfg.Player.FrameInterval)
	require.Equal(t, int64(50<<20), cfg.Upload.MaxBytes)
	require.Len(t, cfg.Admin.Secret, 64, "A random secret is generated when none is configured")
}

func TestLoad_MissingPassword(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(New(""))
	require.True(t, errors.Is(err, ErrConfig), "expected ErrConfig, got %v", err)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
http:
  addr: ":9000"
public:
  base_url: "https://ministry.example.org/"
admin:
  password: from-file
  secret: fixed
player:
  ended_close_delay: 1500ms
log:
  format: json
`), 0o600))
	t.Setenv("MINISTRY_HTTP_ADDR", ":9100")

	cfg, err := Load(New(file))
	require.NoError(t, err)
	require.Equal(t, ":9100", cfg.HTTP.Addr, "Environment overrides the file")
	require.Equal(t, "https://ministry.example.org", cfg.Public.BaseURL)
	require.Equal(t, "from-file", cfg.Admin.Password)
	require.Equal(t, "fixed", cfg.Admin.Secret)
	require.Equal(t, 1500*time.Millisecond, cfg.Player.EndedCloseDelay)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			HTTP:   HTTPConfig{Addr: ":8180"},
			Data:   DataConfig{Dir: "data"},
			Admin:  AdminConfig{Username: "admin", Password: "pw", SessionTTL: time.Hour},
			Log:    LogConfig{Format: "text"},
			Player: PlayerConfig{FrameInterval: time.Millisecond},
		}
	}
	require.NoError(t, base().Validate())

	for name, mutate := range map[string]func(*Config){
		"negative delay": func(c *Config) { c.Player.ErrorCloseDelay = -time.Second },
		"zero frame":     func(c *Config) { c.Player.FrameInterval = 0 },
		"bad log format": func(c *Config) { c.Log.Format = "xml" },
		"no ttl":         func(c *Config) { c.Admin.SessionTTL = 0 },
	} {
		c := base()
		mutate(&c)
		require.ErrorIs(t, c.Validate(), ErrConfig, name)
	}
}
