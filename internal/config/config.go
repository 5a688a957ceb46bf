package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type Signaling struct {
	HandshakeTTL  time.Duration `mapstructure:"handshake_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type Activity struct {
	DSN    string `mapstructure:"dsn"`
	Buffer int    `mapstructure:"buffer"`
}

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	EventQueue     int           `mapstructure:"event_queue"`
	Secret         string        `mapstructure:"secret"`
	LogLevel       string        `mapstructure:"log_level"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Backpressure   string        `mapstructure:"backpressure"`
	ICEServers     []string      `mapstructure:"ice_servers"`
	RateLimit      RateLimit     `mapstructure:"rate_limit"`
	Signaling      Signaling     `mapstructure:"signaling"`
	Activity       Activity      `mapstructure:"activity"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("event_queue", 1024)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("backpressure", "drop")
	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("rate_limit.events", 200)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("signaling.handshake_ttl", "30s")
	v.SetDefault("signaling.sweep_interval", "10s")
	v.SetDefault("activity.dsn", "")
	v.SetDefault("activity.buffer", 256)
}

// Load reads config/config.<CONFIG_ENV>.yaml over the defaults.
// CODEROOM_* environment variables override both.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("CODEROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Str("backpressure", cfg.Backpressure).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period (%s) must be shorter than pong_wait (%s)", c.PingPeriod, c.PongWait)
	}
	switch c.Backpressure {
	case "drop", "kick":
	default:
		return fmt.Errorf("unknown backpressure policy %q", c.Backpressure)
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.EventQueue <= 0 {
		c.EventQueue = 1024
	}
	return nil
}
