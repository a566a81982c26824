package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Path:         "/game",
			StaticDir:    "static",
			ReadLimit:    4096,
			WriteTimeout: 10 * time.Second,
			PingInterval: 5 * time.Second,
			SendBuffer:   64,
		},
		Telnet: TelnetConfig{
			Enabled:           true,
			Host:              "0.0.0.0",
			Port:              4000,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      30 * time.Second,
			KeepaliveInterval: 30 * time.Second,
			SendBuffer:        64,
		},
		World: WorldConfig{
			GuestPrefix: "Guest",
		},
		Engine: EngineConfig{
			QueueSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestAddrs(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:8080", cfg.Web.Addr())
	assert.Equal(t, "0.0.0.0:4000", cfg.Telnet.Addr())
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, "/game", cfg.Web.Path)
	assert.Equal(t, 5*time.Second, cfg.Web.PingInterval)
	assert.False(t, cfg.Telnet.Enabled)
	assert.Equal(t, "Guest", cfg.World.GuestPrefix)
	assert.Empty(t, cfg.World.File)
	assert.Equal(t, 256, cfg.Engine.QueueSize)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
web:
  host: 127.0.0.1
  port: 9000
  path: /ws
  ping_interval: 2s
telnet:
  enabled: true
  port: 4001
  read_timeout: 1m
world:
  file: content/world.yaml
  guest_prefix: Visitor
engine:
  queue_size: 32
logging:
  level: debug
  format: console
metrics:
  enabled: true
  port: 9100
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, "/ws", cfg.Web.Path)
	assert.Equal(t, 2*time.Second, cfg.Web.PingInterval)
	assert.Equal(t, int64(4096), cfg.Web.ReadLimit, "unset keys keep defaults")
	assert.True(t, cfg.Telnet.Enabled)
	assert.Equal(t, 4001, cfg.Telnet.Port)
	assert.Equal(t, time.Minute, cfg.Telnet.ReadTimeout)
	assert.Equal(t, "content/world.yaml", cfg.World.File)
	assert.Equal(t, "Visitor", cfg.World.GuestPrefix)
	assert.Equal(t, 32, cfg.Engine.QueueSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MUD_WEB_PATH", "/play")
	t.Setenv("MUD_WORLD_GUEST_PREFIX", "Wanderer")
	t.Setenv("MUD_ENGINE_QUEUE_SIZE", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/play", cfg.Web.Path)
	assert.Equal(t, "Wanderer", cfg.World.GuestPrefix)
	assert.Equal(t, 8, cfg.Engine.QueueSize)
}

func TestLoadPortEnv(t *testing.T) {
	t.Setenv("PORT", "5005")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5005, cfg.Web.Port)
}

func TestLoadPrefixedPortWinsOverPORT(t *testing.T) {
	t.Setenv("PORT", "5005")
	t.Setenv("MUD_WEB_PORT", "6006")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6006, cfg.Web.Port)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  queue_size: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.queue_size")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateViolations(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"web port too large": {
			mutate: func(c *Config) { c.Web.Port = 65536 },
			expErr: "web.port",
		},
		"web path without slash": {
			mutate: func(c *Config) { c.Web.Path = "game" },
			expErr: "web.path",
		},
		"web path shadows static root": {
			mutate: func(c *Config) { c.Web.Path = "/" },
			expErr: "web.static_dir",
		},
		"zero read limit": {
			mutate: func(c *Config) { c.Web.ReadLimit = 0 },
			expErr: "web.read_limit",
		},
		"zero ping interval": {
			mutate: func(c *Config) { c.Web.PingInterval = 0 },
			expErr: "web.ping_interval",
		},
		"zero send buffer": {
			mutate: func(c *Config) { c.Web.SendBuffer = 0 },
			expErr: "web.send_buffer",
		},
		"telnet port negative": {
			mutate: func(c *Config) { c.Telnet.Port = -1 },
			expErr: "telnet.port",
		},
		"telnet keepalive zero": {
			mutate: func(c *Config) { c.Telnet.KeepaliveInterval = 0 },
			expErr: "telnet.keepalive_interval",
		},
		"empty guest prefix": {
			mutate: func(c *Config) { c.World.GuestPrefix = "" },
			expErr: "world.guest_prefix",
		},
		"guest prefix with space": {
			mutate: func(c *Config) { c.World.GuestPrefix = "Lost Soul" },
			expErr: "world.guest_prefix",
		},
		"zero queue": {
			mutate: func(c *Config) { c.Engine.QueueSize = 0 },
			expErr: "engine.queue_size",
		},
		"metrics path": {
			mutate: func(c *Config) { c.Metrics.Path = "metrics" },
			expErr: "metrics.path",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expErr)
		})
	}
}

func TestValidateSkipsDisabledSections(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.Enabled = false
	cfg.Telnet.Port = -1
	cfg.Metrics.Enabled = false
	cfg.Metrics.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Web.Port = 70000
	cfg.Engine.QueueSize = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web.port")
	assert.Contains(t, err.Error(), "engine.queue_size")
	assert.Contains(t, err.Error(), "logging.level")
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(0, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Web.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, -1),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Web.Port = port
		if err := cfg.Validate(); err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyQueueSizePositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(-100, 10000).Draw(t, "queue_size")
		cfg := validConfig()
		cfg.Engine.QueueSize = size
		err := cfg.Validate()
		if size >= 1 && err != nil {
			t.Fatalf("queue size %d rejected: %v", size, err)
		}
		if size < 1 && err == nil {
			t.Fatalf("queue size %d accepted", size)
		}
	})
}
