// Package config provides configuration for the gateway.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (SSHMCP_*)
// 3. Project config (.ssh-mcp/config.yaml in cwd)
// 4. Home config (~/.ssh-mcp/config.yaml)
// 5. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all gateway configuration.
type Config struct {
	// Inventory is the path to the machines JSON file.
	Inventory string `yaml:"inventory"`

	// Log settings.
	Log LogConfig `yaml:"log"`

	// Policy settings for restricted execution.
	Policy PolicyConfig `yaml:"policy"`

	// Exec settings for command execution.
	Exec ExecConfig `yaml:"exec"`

	// Connect settings for session establishment.
	Connect ConnectConfig `yaml:"connect"`

	// Audit settings for the restricted-execution trail.
	Audit AuditConfig `yaml:"audit"`

	// Metrics settings for the optional debug listener.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig controls logging. Logs always go somewhere other than stdout,
// which is owned by the MCP protocol.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// File receives logs when set; empty means stderr.
	File string `yaml:"file"`
}

// PolicyConfig controls the classifier.
type PolicyConfig struct {
	// FailClosed denies restricted-mode commands that match neither
	// the allow nor the deny table. Default false: unmatched commands
	// are permitted.
	FailClosed bool `yaml:"fail_closed"`
}

// ExecConfig controls command execution.
type ExecConfig struct {
	// Timeout bounds each remote command, as a duration string.
	// "0" disables the bound. Default: 5m.
	Timeout string `yaml:"timeout"`
}

// ConnectConfig controls session establishment.
type ConnectConfig struct {
	// Timeout bounds dial-and-handshake, as a duration string.
	// Default: 15s.
	Timeout string `yaml:"timeout"`

	// KnownHosts enables host key verification against the given file.
	// Empty accepts any host key.
	KnownHosts string `yaml:"known_hosts"`
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	// Dir is the audit database directory; empty disables auditing.
	Dir string `yaml:"dir"`
}

// MetricsConfig controls the debug HTTP listener.
type MetricsConfig struct {
	// ListenAddr serves /metrics and /healthz when set; empty disables
	// the listener.
	ListenAddr string `yaml:"listen_addr"`
}

// Default config values.
const (
	defaultInventory      = "machines.json"
	defaultLogLevel       = "info"
	defaultExecTimeout    = "5m"
	defaultConnectTimeout = "15s"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Inventory: defaultInventory,
		Log:       LogConfig{Level: defaultLogLevel},
		Exec:      ExecConfig{Timeout: defaultExecTimeout},
		Connect:   ConnectConfig{Timeout: defaultConnectTimeout},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults. Pass explicit flag
// values in flagOverrides; zero fields there are ignored.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		merge(cfg, projectConfig)
	}

	applyEnv(cfg)

	if flagOverrides != nil {
		merge(cfg, flagOverrides)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh-mcp", "config.yaml")
}

// projectConfigPath returns the project config path, honoring the
// SSHMCP_CONFIG override.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("SSHMCP_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".ssh-mcp", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays non-zero fields of src onto dst.
func merge(dst, src *Config) {
	if src.Inventory != "" {
		dst.Inventory = src.Inventory
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.File != "" {
		dst.Log.File = src.Log.File
	}
	if src.Policy.FailClosed {
		dst.Policy.FailClosed = true
	}
	if src.Exec.Timeout != "" {
		dst.Exec.Timeout = src.Exec.Timeout
	}
	if src.Connect.Timeout != "" {
		dst.Connect.Timeout = src.Connect.Timeout
	}
	if src.Connect.KnownHosts != "" {
		dst.Connect.KnownHosts = src.Connect.KnownHosts
	}
	if src.Audit.Dir != "" {
		dst.Audit.Dir = src.Audit.Dir
	}
	if src.Metrics.ListenAddr != "" {
		dst.Metrics.ListenAddr = src.Metrics.ListenAddr
	}
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SSHMCP_INVENTORY"); v != "" {
		cfg.Inventory = v
	}
	if v := os.Getenv("SSHMCP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SSHMCP_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("SSHMCP_POLICY_FAIL_CLOSED"); v == "true" || v == "1" {
		cfg.Policy.FailClosed = true
	}
	if v := os.Getenv("SSHMCP_EXEC_TIMEOUT"); v != "" {
		cfg.Exec.Timeout = v
	}
	if v := os.Getenv("SSHMCP_CONNECT_TIMEOUT"); v != "" {
		cfg.Connect.Timeout = v
	}
	if v := os.Getenv("SSHMCP_KNOWN_HOSTS"); v != "" {
		cfg.Connect.KnownHosts = v
	}
	if v := os.Getenv("SSHMCP_AUDIT_DIR"); v != "" {
		cfg.Audit.Dir = v
	}
	if v := os.Getenv("SSHMCP_METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
}

// Validate checks field domains, naming the offending field.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: invalid level %q (valid: debug|info|warn|error)", c.Log.Level)
	}
	if _, err := time.ParseDuration(c.Exec.Timeout); err != nil {
		return fmt.Errorf("exec.timeout: %v", err)
	}
	if _, err := time.ParseDuration(c.Connect.Timeout); err != nil {
		return fmt.Errorf("connect.timeout: %v", err)
	}
	return nil
}

// ExecTimeout returns the parsed execution timeout. Call after Validate.
func (c *Config) ExecTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Exec.Timeout)
	return d
}

// ConnectTimeout returns the parsed connect timeout. Call after Validate.
func (c *Config) ConnectTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Connect.Timeout)
	return d
}
