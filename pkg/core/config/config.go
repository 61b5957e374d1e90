package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TERMCORE_"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig         `toml:"general" yaml:"general"`
	Executor ExecutorConfig        `toml:"executor" yaml:"executor" envPrefix:"EXECUTOR_"`
	Audit    AuditConfig           `toml:"audit" yaml:"audit" envPrefix:"AUDIT_"`
	Server   ServerConfig          `toml:"server" yaml:"server" envPrefix:"SERVER_"`
	Modes    map[string]ModeConfig `toml:"modes" yaml:"modes"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name" env:"NAME"`
	Environment string `toml:"environment" yaml:"environment" env:"ENVIRONMENT"`
	LogLevel    string `toml:"log_level" yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `toml:"log_format" yaml:"log_format" env:"LOG_FORMAT"`
	LogFile     string `toml:"log_file" yaml:"log_file" env:"LOG_FILE"`
	DefaultMode string `toml:"default_mode" yaml:"default_mode" env:"DEFAULT_MODE"`
}

// ExecutorConfig holds dispatcher limits. Negative values disable a limit.
type ExecutorConfig struct {
	HandlerTimeout Duration `toml:"handler_timeout" yaml:"handler_timeout" env:"HANDLER_TIMEOUT"`
	MaxInputLength int      `toml:"max_input_length" yaml:"max_input_length" env:"MAX_INPUT_LENGTH"`
}

// AuditConfig holds audit emitter and sink settings
type AuditConfig struct {
	Sinks           []string `toml:"sinks" yaml:"sinks" env:"SINKS"`
	Endpoint        string   `toml:"endpoint" yaml:"endpoint" env:"ENDPOINT"`
	SQLitePath      string   `toml:"sqlite_path" yaml:"sqlite_path" env:"SQLITE_PATH"`
	QueueSize       int      `toml:"queue_size" yaml:"queue_size" env:"QUEUE_SIZE"`
	Workers         int      `toml:"workers" yaml:"workers" env:"WORKERS"`
	RateLimit       float64  `toml:"rate_limit" yaml:"rate_limit" env:"RATE_LIMIT"`
	Burst           int      `toml:"burst" yaml:"burst" env:"BURST"`
	MaxOutputLength int      `toml:"max_output_length" yaml:"max_output_length" env:"MAX_OUTPUT_LENGTH"`
	Timeout         Duration `toml:"timeout" yaml:"timeout" env:"TIMEOUT"`
}

// ServerConfig holds HTTP/WebSocket front end settings
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host" env:"HOST"`
	Port            int      `toml:"port" yaml:"port" env:"PORT"`
	GRPCPort        int      `toml:"grpc_port" yaml:"grpc_port" env:"GRPC_PORT"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string `toml:"allowed_origins" yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// ModeConfig holds per-mode overrides; the "base" key applies to base commands
type ModeConfig struct {
	Disabled []string `toml:"disabled" yaml:"disabled"`
}

// Duration wraps time.Duration for TOML, YAML and environment parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML or YAML file (chosen by extension), applies defaults
// and then TERMCORE_* environment overrides
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindFile returns the config path named by TERMCORE_CONFIG or the first
// existing default location, or "" when there is none
func FindFile() string {
	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		return path
	}

	candidates := []string{
		"./configs/termcore.toml",
		"./configs/termcore.yaml",
		"./termcore.toml",
		"./termcore.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "termcore", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFromEnv loads the file found by FindFile. Without a file the
// defaults are used, still subject to environment overrides.
func LoadFromEnv() (*Config, error) {
	if path := FindFile(); path != "" {
		return Load(path)
	}

	cfg := &Config{}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	c.applyDefaults()
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.expandEnvVars()
	return c.Validate()
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "termcore"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "console"
	}
	if c.General.DefaultMode == "" {
		c.General.DefaultMode = "general-purpose"
	}

	// Executor
	if c.Executor.HandlerTimeout.Duration == 0 {
		c.Executor.HandlerTimeout.Duration = 30 * time.Second
	}
	if c.Executor.MaxInputLength == 0 {
		c.Executor.MaxInputLength = 4096
	}

	// Audit
	if c.Audit.Sinks == nil {
		c.Audit.Sinks = []string{"log"}
	}
	if c.Audit.SQLitePath == "" {
		c.Audit.SQLitePath = "./data/audit.db"
	}
	if c.Audit.QueueSize == 0 {
		c.Audit.QueueSize = 256
	}
	if c.Audit.Workers == 0 {
		c.Audit.Workers = 2
	}
	if c.Audit.MaxOutputLength == 0 {
		c.Audit.MaxOutputLength = 500
	}
	if c.Audit.Timeout.Duration == 0 {
		c.Audit.Timeout.Duration = 5 * time.Second
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 60 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}
}

// expandEnvVars expands environment variables in path-like values
func (c *Config) expandEnvVars() {
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Audit.SQLitePath = os.ExpandEnv(c.Audit.SQLitePath)
	c.Audit.Endpoint = os.ExpandEnv(c.Audit.Endpoint)
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("server.grpc_port out of range: %d", c.Server.GRPCPort))
	}
	if c.Audit.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("audit.queue_size must not be negative"))
	}
	if c.Audit.Workers < 0 {
		errs = append(errs, fmt.Errorf("audit.workers must not be negative"))
	}
	if c.Audit.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("audit.rate_limit must not be negative"))
	}
	for _, sink := range c.Audit.Sinks {
		if sink == "http" && c.Audit.Endpoint == "" {
			errs = append(errs, fmt.Errorf("audit.endpoint required for the http sink"))
		}
	}
	return errors.Join(errs...)
}

// Address returns the HTTP listen address
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// GRPCAddress returns the gRPC health listen address, or "" when disabled
func (s ServerConfig) GRPCAddress() string {
	if s.GRPCPort == 0 {
		return ""
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(s.GRPCPort))
}

// DisabledCommands returns the per-mode disabled command names
func (c *Config) DisabledCommands() map[string][]string {
	out := make(map[string][]string, len(c.Modes))
	for mode, mc := range c.Modes {
		key := strings.ToLower(strings.TrimSpace(mode))
		out[key] = append(out[key], mc.Disabled...)
	}
	return out
}
