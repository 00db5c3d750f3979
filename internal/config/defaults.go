package config

import "os"

// DefaultAPIKey is the placeholder key used until `llmgate init`
// generates a real one. Comparisons are still exact; this is not a
// bypass value.
const DefaultAPIKey = "default_middleware_key"

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:   "127.0.0.1",
			Port:   8000,
			APIKey: DefaultAPIKey,
		},
		Security: SecurityConfig{
			Level:        "medium",
			AllowedPaths: defaultAllowedPaths(),
		},
		Store: StoreConfig{
			Enabled: true,
			DBPath:  "~/.llmgate/llmgate.db",
		},
		General: GeneralConfig{
			LogLevel: "info",
		},
	}
}

// defaultAllowedPaths restricts file access to the working directory at
// startup when nothing else is configured.
func defaultAllowedPaths() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return []string{"/"}
	}
	return []string{cwd}
}
