package sysprops

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Endpoints of a stock Android system. Every path is configuration, not
// a compiled-in constant, so tests and ported environments can point
// the client elsewhere.
const (
	DefaultSocketPath    = "/dev/socket/property_service"
	DefaultBuildPropPath = "/system/build.prop"
	DefaultCmdlinePath   = "/proc/cmdline"
)

// Config locates the property service and its static fallback sources.
type Config struct {
	SocketPath    string `toml:"socket_path" env:"SYSPROPS_SOCKET"`
	BuildPropPath string `toml:"build_prop_path" env:"SYSPROPS_BUILD_PROP"`
	CmdlinePath   string `toml:"cmdline_path" env:"SYSPROPS_CMDLINE"`

	// DialTimeout bounds the connect to the service socket. Zero keeps
	// the protocol's own behavior: block until the transport gives up.
	DialTimeout time.Duration `toml:"-" env:"SYSPROPS_DIAL_TIMEOUT"`
}

func DefaultConfig() Config {
	return Config{
		SocketPath:    DefaultSocketPath,
		BuildPropPath: DefaultBuildPropPath,
		CmdlinePath:   DefaultCmdlinePath,
	}
}

func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.SocketPath) == "" {
		c.SocketPath = DefaultSocketPath
	}
	if strings.TrimSpace(c.BuildPropPath) == "" {
		c.BuildPropPath = DefaultBuildPropPath
	}
	if strings.TrimSpace(c.CmdlinePath) == "" {
		c.CmdlinePath = DefaultCmdlinePath
	}
	return c
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SocketPath) == "" {
		return fmt.Errorf("sysprops: config missing socket_path")
	}
	return nil
}

type fileConfig struct {
	SocketPath    string `toml:"socket_path"`
	BuildPropPath string `toml:"build_prop_path"`
	CmdlinePath   string `toml:"cmdline_path"`
	DialTimeout   string `toml:"dial_timeout"`
}

// LoadConfig reads a TOML config file; keys absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("sysprops: load config: %w", err)
	}

	if meta.IsDefined("socket_path") {
		cfg.SocketPath = strings.TrimSpace(raw.SocketPath)
	}
	if meta.IsDefined("build_prop_path") {
		cfg.BuildPropPath = strings.TrimSpace(raw.BuildPropPath)
	}
	if meta.IsDefined("cmdline_path") {
		cfg.CmdlinePath = strings.TrimSpace(raw.CmdlinePath)
	}
	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("sysprops: parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromEnv overlays SYSPROPS_* environment variables on base.
func ConfigFromEnv(base Config) (Config, error) {
	cfg := base
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("sysprops: env config: %w", err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
