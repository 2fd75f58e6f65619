// Package config loads settings from defaults, an optional config.yml and
// MINISTRY_* environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfig marks an invalid configuration.
var ErrConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override, e.g. MINISTRY_HTTP_ADDR.
const EnvPrefix = "MINISTRY"

type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	Data   DataConfig   `mapstructure:"data"`
	Public PublicConfig `mapstructure:"public"`
	Admin  AdminConfig  `mapstructure:"admin"`
	Log    LogConfig    `mapstructure:"log"`
	Player PlayerConfig `mapstructure:"player"`
	Upload UploadConfig `mapstructure:"upload"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type PublicConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type AdminConfig struct {
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// Secret signs admin tokens. When empty a random one is generated, so
	// tokens do not survive a restart.
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PlayerConfig struct {
	EndedCloseDelay time.Duration `mapstructure:"ended_close_delay"`
	ErrorCloseDelay time.Duration `mapstructure:"error_close_delay"`
	FrameInterval   time.Duration `mapstructure:"frame_interval"`
	ViewportWidth   float64       `mapstructure:"viewport_width"`
	ViewportHeight  float64       `mapstructure:"viewport_height"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8180")
	v.SetDefault("data.dir", "./data")
	v.SetDefault("public.base_url", "http://localhost:8180")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_ttl", 24*time.Hour)
	v.SetDefault("admin.secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("player.ended_close_delay", time.Second)
	v.SetDefault("player.error_close_delay", 2*time.Second)
	v.SetDefault("player.frame_interval", 16*time.Millisecond)
	v.SetDefault("player.viewport_width", 1280)
	v.SetDefault("player.viewport_height", 800)
	v.SetDefault("upload.max_bytes", 50<<20)
}

// New returns a viper instance with defaults, config search paths and env
// overrides wired. file, when set, replaces the search.
func New(file string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "ministry-site"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file if present and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.Admin.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return cfg, err
		}
		cfg.Admin.Secret = secret
	}
	cfg.Public.BaseURL = strings.TrimRight(cfg.Public.BaseURL, "/")
	return cfg, nil
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	switch {
	case c.Admin.Username == "":
		return fmt.Errorf("%w: admin.username is required", ErrConfig)
	case c.Admin.Password == "":
		return fmt.Errorf("%w: admin.password is required (set %s_ADMIN_PASSWORD)", ErrConfig, EnvPrefix)
	case c.Admin.SessionTTL <= 0:
		return fmt.Errorf("%w: admin.session_ttl must be positive", ErrConfig)
	case c.HTTP.Addr == "":
		return fmt.Errorf("%w: http.addr is required", ErrConfig)
	case c.Data.Dir == "":
		return fmt.Errorf("%w: data.dir is required", ErrConfig)
	case c.Player.EndedCloseDelay < 0 || c.Player.ErrorCloseDelay < 0:
		return fmt.Errorf("%w: player close delays cannot be negative", ErrConfig)
	case c.Player.FrameInterval <= 0:
		return fmt.Errorf("%w: player.frame_interval must be positive", ErrConfig)
	case c.Upload.MaxBytes < 0:
		return fmt.Errorf("%w: upload.max_bytes cannot be negative", ErrConfig)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json", ErrConfig)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
