// Package config manages failoverd daemon settings using koanf/v2.
//
// Supports YAML files and environment variable overrides. The BFD
// instance configuration itself (the keepalived-style block syntax)
// is parsed separately by internal/bfdcfg; this package only locates
// it and configures the daemon around it.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete failoverd daemon settings.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	BFD     BFDConfig     `koanf:"bfd"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9101").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// BFDConfig locates the BFD instance configuration and selects the
// roles the daemon parses it for.
type BFDConfig struct {
	// Config is the path to the keepalived-style bfd_instance file.
	Config string `koanf:"config"`

	// Roles lists the roles to parse for: "bfd", "vrrp", "checker".
	// Each role runs its own independent parse of the same file.
	Roles []string `koanf:"roles"`

	// Watch enables reloading when the instance file changes on disk,
	// in addition to the SIGHUP trigger.
	Watch bool `koanf:"watch"`
}

// ParseRoles maps the configured role names to bfdcfg roles, in the
// configured order. Call Validate first; unknown names map to
// bfdcfg.RoleNone here.
func (bc BFDConfig) ParseRoles() []bfdcfg.Role {
	roles := make([]bfdcfg.Role, 0, len(bc.Roles))
	for _, name := range bc.Roles {
		roles = append(roles, roleByName(name))
	}
	return roles
}

func roleByName(name string) bfdcfg.Role {
	switch name {
	case "bfd":
		return bfdcfg.RoleBFD
	case "vrrp":
		return bfdcfg.RoleVRRP
	case "checker":
		return bfdcfg.RoleChecker
	default:
		return bfdcfg.RoleNone
	}
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults.
// All three roles are parsed by default, mirroring a full keepalived
// deployment where every compiled-in process reads the configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9101",
			Path: "/metrics",
		},
		BFD: BFDConfig{
			Config: "/etc/failoverd/bfd.conf",
			Roles:  []string{"bfd", "vrrp", "checker"},
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for failoverd settings.
// Variables are named FAILOVERD_<section>_<key>, e.g., FAILOVERD_LOG_LEVEL.
const envPrefix = "FAILOVERD_"

// Load reads daemon settings from a YAML file at path, overlays
// environment variable overrides (FAILOVERD_ prefix), and merges on top
// of DefaultConfig(). Missing fields inherit defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	// FAILOVERD_METRICS_ADDR -> metrics.addr (strip prefix, lowercase, _ -> .).
	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms FAILOVERD_METRICS_ADDR -> metrics.addr.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"log.level":    defaults.Log.Level,
		"log.format":   defaults.Log.Format,
		"metrics.addr": defaults.Metrics.Addr,
		"metrics.path": defaults.Metrics.Path,
		"bfd.config":   defaults.BFD.Config,
		"bfd.roles":    defaults.BFD.Roles,
		"bfd.watch":    defaults.BFD.Watch,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyMetricsAddr indicates the metrics listen address is empty.
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")

	// ErrEmptyBFDConfig indicates no BFD instance file is configured.
	ErrEmptyBFDConfig = errors.New("bfd.config must not be empty")

	// ErrNoRoles indicates the roles list is empty.
	ErrNoRoles = errors.New("bfd.roles must list at least one role")

	// ErrUnknownRole indicates a role name is not bfd, vrrp, or checker.
	ErrUnknownRole = errors.New("unknown role")

	// ErrDuplicateRole indicates a role is listed more than once.
	ErrDuplicateRole = errors.New("duplicate role")
)

// validRoles lists the recognized role name strings.
var validRoles = map[string]bool{
	"bfd":     true,
	"vrrp":    true,
	"checker": true,
}

// Validate checks the settings for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}

	if cfg.BFD.Config == "" {
		return ErrEmptyBFDConfig
	}

	if len(cfg.BFD.Roles) == 0 {
		return ErrNoRoles
	}

	seen := make(map[string]struct{}, len(cfg.BFD.Roles))
	for _, role := range cfg.BFD.Roles {
		if !validRoles[role] {
			return fmt.Errorf("bfd.roles %q: %w", role, ErrUnknownRole)
		}
		if _, dup := seen[role]; dup {
			return fmt.Errorf("bfd.roles %q: %w", role, ErrDuplicateRole)
		}
		seen[role] = struct{}{}
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the
// corresponding slog.Level. Unknown values default to slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
