// Package config provides Viper-based configuration loading for hexcrawl.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ContentConfig locates the reference tables and scripts. Each table path
// may name a CSV or YAML file; a path that does not exist selects the
// built-in fallback catalog.
type ContentConfig struct {
	Biomes string `mapstructure:"biomes"`
	Trails string `mapstructure:"trails"`
	Modes  string `mapstructure:"modes"`
	Party  string `mapstructure:"party"`
	// ScriptDir holds Lua cost rules. Empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
}

// Map shapes.
const (
	ShapeRectangle = "rectangle"
	ShapeRadius    = "radius"
)

// MapConfig controls the map generated at startup.
type MapConfig struct {
	Shape        string `mapstructure:"shape"`
	Width        int    `mapstructure:"width"`
	Height       int    `mapstructure:"height"`
	Radius       int    `mapstructure:"radius"`
	DefaultBiome string `mapstructure:"default_biome"`
	Seed         int64  `mapstructure:"seed"`
	// Elevation enables cosmetic noise-based elevation.
	Elevation bool `mapstructure:"elevation"`
}

// Leader rules.
const (
	LeaderRuleNone   = "none"
	LeaderRulePace   = "pace"
	LeaderRuleScript = "script"
)

// TravelConfig holds movement settings.
type TravelConfig struct {
	DefaultMode string `mapstructure:"default_mode"`
	// StealthOnMove rolls a stealth check against the destination after every move.
	StealthOnMove bool `mapstructure:"stealth_on_move"`
	// LeaderRule selects how the leader's stats affect cost: none, pace or script.
	LeaderRule   string `mapstructure:"leader_rule"`
	PaceBaseline int    `mapstructure:"pace_baseline"`
}

// ConsoleConfig controls where the command console is served.
type ConsoleConfig struct {
	// Listen is a host:port for the telnet console. Empty reads stdin.
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// Color highlights prompts and errors with ANSI escapes on telnet.
	Color bool `mapstructure:"color"`
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects and configures the campaign store.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the campaign directory for the file driver or the database
	// file for sqlite.
	Path string `mapstructure:"path"`
	// Compress writes zstd-compressed documents with the file driver.
	Compress bool           `mapstructure:"compress"`
	Database DatabaseConfig `mapstructure:"database"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// AutoMigrate applies pending schema migrations when the store opens.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Content ContentConfig `mapstructure:"content"`
	Map     MapConfig     `mapstructure:"map"`
	Travel  TravelConfig  `mapstructure:"travel"`
	Storage StorageConfig `mapstructure:"storage"`
	Console ConsoleConfig `mapstructure:"console"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateMap(c.Map),
		validateTravel(c.Travel),
		validateStorage(c.Storage),
		validateConsole(c.Console),
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

func validateMap(m MapConfig) error {
	var errs []string
	switch m.Shape {
	case ShapeRectangle:
		if m.Width < 1 || m.Height < 1 {
			errs = append(errs, fmt.Sprintf("map.width and map.height must be >= 1, got %dx%d", m.Width, m.Height))
		}
	case ShapeRadius:
		if m.Radius < 0 {
			errs = append(errs, fmt.Sprintf("map.radius must be >= 0, got %d", m.Radius))
		}
	default:
		errs = append(errs, fmt.Sprintf("map.shape must be one of [rectangle, radius], got %q", m.Shape))
	}
	if m.DefaultBiome == "" {
		errs = append(errs, "map.default_biome must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateTravel(t TravelConfig) error {
	var errs []string
	if t.DefaultMode == "" {
		errs = append(errs, "travel.default_mode must not be empty")
	}
	validRules := map[string]bool{LeaderRuleNone: true, LeaderRulePace: true, LeaderRuleScript: true}
	if !validRules[t.LeaderRule] {
		errs = append(errs, fmt.Sprintf("travel.leader_rule must be one of [none, pace, script], got %q", t.LeaderRule))
	}
	if t.LeaderRule == LeaderRulePace && t.PaceBaseline < 1 {
		errs = append(errs, fmt.Sprintf("travel.pace_baseline must be >= 1, got %d", t.PaceBaseline))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverFile, DriverSQLite:
		if s.Path == "" {
			return fmt.Errorf("storage.path must not be empty for driver %q", s.Driver)
		}
		return nil
	case DriverPostgres:
		return validateDatabase(s.Database)
	default:
		return fmt.Errorf("storage.driver must be one of [file, sqlite, postgres], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "storage.database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("storage.database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "storage.database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "storage.database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("storage.database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("storage.database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("storage.database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "storage.database.min_conns must not exceed storage.database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateConsole(c ConsoleConfig) error {
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("console timeouts must be >= 0, got read=%s write=%s", c.ReadTimeout, c.WriteTimeout)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides (prefix HEXCRAWL_), and validates the result.
//
// Precondition: path must name a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the built-in configuration with environment overrides
// applied and no file read.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Default() (Config, error) {
	return LoadFromViper(newViper())
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

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HEXCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("content.biomes", "content/biomes.csv")
	v.SetDefault("content.trails", "content/trails.csv")
	v.SetDefault("content.modes", "content/modes.csv")
	v.SetDefault("content.party", "content/party.csv")
	v.SetDefault("content.script_dir", "")

	v.SetDefault("map.shape", ShapeRectangle)
	v.SetDefault("map.width", 12)
	v.SetDefault("map.height", 10)
	v.SetDefault("map.radius", 6)
	v.SetDefault("map.default_biome", "plains")
	v.SetDefault("map.seed", 1)
	v.SetDefault("map.elevation", false)

	v.SetDefault("travel.default_mode", "normal")
	v.SetDefault("travel.stealth_on_move", false)
	v.SetDefault("travel.leader_rule", LeaderRuleNone)
	v.SetDefault("travel.pace_baseline", 30)

	v.SetDefault("console.listen", "")
	v.SetDefault("console.read_timeout", "0s")
	v.SetDefault("console.write_timeout", "10s")
	v.SetDefault("console.color", true)

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "campaigns")
	v.SetDefault("storage.compress", false)
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "hexcrawl")
	v.SetDefault("storage.database.password", "hexcrawl")
	v.SetDefault("storage.database.name", "hexcrawl")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.max_conns", 10)
	v.SetDefault("storage.database.min_conns", 2)
	v.SetDefault("storage.database.max_conn_lifetime", "1h")
	v.SetDefault("storage.database.auto_migrate", false)
}
