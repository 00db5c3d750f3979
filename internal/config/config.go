package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for llmgate. It is built once at
// startup and passed by reference into every component; nothing reads
// configuration from the environment after Load returns.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Security SecurityConfig `json:"security" yaml:"security"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	General  GeneralConfig  `json:"general" yaml:"general"`
}

type ServerConfig struct {
	Host   string `json:"host" yaml:"host"`
	Port   int    `json:"port" yaml:"port"`
	APIKey string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
}

type SecurityConfig struct {
	// Level is one of "low", "medium", "high".
	Level string `json:"level" yaml:"level"`
	// AllowedPaths are absolute path prefixes; file access is permitted
	// iff the requested path starts with one of them.
	AllowedPaths []string `json:"allowedPaths" yaml:"allowedPaths"`
}

type StoreConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DBPath  string `json:"dbPath" yaml:"dbPath"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	LogFile  string `json:"logFile,omitempty" yaml:"logFile,omitempty"`
}

// DefaultConfigDir returns the default config directory (~/.llmgate).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".llmgate"
	}
	return filepath.Join(home, ".llmgate")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads the config file at path, expands ${VAR} references,
// applies environment overrides, and validates the result. A missing
// file is not an error: the caller gets defaults plus environment
// overrides, which keeps env-only deployments working without a file.
func Load(path string) (*Config, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	default:
		data = []byte(ExpandEnvVars(string(data)))
		if err := unmarshalByExt(path, data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	cfg.Store.DBPath = expandPath(cfg.Store.DBPath)
	cfg.General.LogFile = expandPath(cfg.General.LogFile)

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func unmarshalByExt(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// applyEnv overlays the environment variables that predate the config
// file format. They always win over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("SECURITY_LEVEL"); v != "" {
		cfg.Security.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("ALLOWED_PATHS"); v != "" {
		var paths []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) > 0 {
			cfg.Security.AllowedPaths = paths
		}
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is
// unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.Security.Level {
	case "low", "medium", "high":
		// valid
	default:
		errs = append(errs, "security.level must be one of: low, medium, high")
	}
	if len(cfg.Security.AllowedPaths) == 0 {
		errs = append(errs, "security.allowedPaths must contain at least one path prefix")
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 0 and 65535")
	}
	if cfg.Server.APIKey == "" {
		errs = append(errs, "server.apiKey must not be empty")
	}

	if cfg.Store.Enabled && cfg.Store.DBPath == "" {
		errs = append(errs, "store.dbPath is required when the store is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
