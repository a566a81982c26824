// Package config provides Viper-based configuration loading for the MUD server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// WebConfig holds HTTP and WebSocket listener settings.
type WebConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// Path is the URL path that upgrades to a WebSocket game session.
	Path string `mapstructure:"path"`
	// StaticDir holds the client asset bundle served at "/". Empty disables it.
	StaticDir string `mapstructure:"static_dir"`
	// ReadLimit caps the size of a single inbound frame in bytes.
	ReadLimit int64 `mapstructure:"read_limit"`
	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PingInterval is how often a keepalive frame is sent to each client.
	PingInterval time.Duration `mapstructure:"ping_interval"`
	// SendBuffer is the number of outbound messages queued per connection.
	SendBuffer int `mapstructure:"send_buffer"`
}

// Addr returns the "host:port" listen address.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Enabled starts the Telnet listener alongside the web listener.
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// KeepaliveInterval is how often an IAC NOP is sent to each client.
	KeepaliveInterval time.Duration `mapstructure:"keepalive_interval"`
	// SendBuffer is the number of outbound messages queued per connection.
	SendBuffer int `mapstructure:"send_buffer"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// WorldConfig selects the world players connect into.
type WorldConfig struct {
	// File is a YAML world file. Empty uses the built-in world.
	File string `mapstructure:"file"`
	// GuestPrefix is prepended to the counter in generated player names.
	GuestPrefix string `mapstructure:"guest_prefix"`
}

// EngineConfig holds settings for the serialized game loop.
type EngineConfig struct {
	// QueueSize is the capacity of the inbound event queue.
	QueueSize int `mapstructure:"queue_size"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Addr returns the "host:port" listen address.
func (m MetricsConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Config is the top-level application configuration.
type Config struct {
	Web     WebConfig     `mapstructure:"web"`
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	World   WorldConfig   `mapstructure:"world"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateWeb(c.Web),
		validateTelnet(c.Telnet),
		validateWorld(c.World),
		validateEngine(c.Engine),
		validateLogging(c.Logging),
		validateMetrics(c.Metrics),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePort(section string, port int) string {
	if port < 0 || port > 65535 {
		return fmt.Sprintf("%s.port must be 0-65535, got %d", section, port)
	}
	return ""
}

func joinErrs(errs []string) error {
	var out []string
	for _, e := range errs {
		if e != "" {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(out, "; "))
}

func validateWeb(w WebConfig) error {
	errs := []string{validatePort("web", w.Port)}
	if !strings.HasPrefix(w.Path, "/") {
		errs = append(errs, fmt.Sprintf("web.path must start with '/', got %q", w.Path))
	}
	if w.Path == "/" && w.StaticDir != "" {
		errs = append(errs, "web.path must not be '/' while web.static_dir is set")
	}
	if w.ReadLimit < 1 {
		errs = append(errs, fmt.Sprintf("web.read_limit must be >= 1, got %d", w.ReadLimit))
	}
	if w.WriteTimeout < 0 {
		errs = append(errs, "web.write_timeout must not be negative")
	}
	if w.PingInterval <= 0 {
		errs = append(errs, "web.ping_interval must be positive")
	}
	if w.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("web.send_buffer must be >= 1, got %d", w.SendBuffer))
	}
	return joinErrs(errs)
}

func validateTelnet(t TelnetConfig) error {
	if !t.Enabled {
		return nil
	}
	errs := []string{validatePort("telnet", t.Port)}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.KeepaliveInterval <= 0 {
		errs = append(errs, "telnet.keepalive_interval must be positive")
	}
	if t.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("telnet.send_buffer must be >= 1, got %d", t.SendBuffer))
	}
	return joinErrs(errs)
}

func validateWorld(w WorldConfig) error {
	if w.GuestPrefix == "" || strings.ContainsAny(w.GuestPrefix, " \t") {
		return fmt.Errorf("world.guest_prefix must be a non-empty single word, got %q", w.GuestPrefix)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	if e.QueueSize < 1 {
		return fmt.Errorf("engine.queue_size must be >= 1, got %d", e.QueueSize)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateMetrics(m MetricsConfig) error {
	if !m.Enabled {
		return nil
	}
	errs := []string{validatePort("metrics", m.Port)}
	if !strings.HasPrefix(m.Path, "/") {
		errs = append(errs, fmt.Sprintf("metrics.path must start with '/', got %q", m.Path))
	}
	return joinErrs(errs)
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path uses defaults
// and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newViper returns a Viper instance with defaults and environment bindings.
// Variables use the MUD_ prefix with "." replaced by "_"; the conventional
// PORT variable also sets web.port.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("web.port", "MUD_WEB_PORT", "PORT")

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8080)
	v.SetDefault("web.path", "/game")
	v.SetDefault("web.static_dir", "static")
	v.SetDefault("web.read_limit", 4096)
	v.SetDefault("web.write_timeout", "10s")
	v.SetDefault("web.ping_interval", "5s")
	v.SetDefault("web.send_buffer", 64)

	v.SetDefault("telnet.enabled", false)
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "0s")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.keepalive_interval", "30s")
	v.SetDefault("telnet.send_buffer", 64)

	v.SetDefault("world.file", "")
	v.SetDefault("world.guest_prefix", "Guest")

	v.SetDefault("engine.queue_size", 256)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.host", "127.0.0.1")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
