package config

import (
	"os"
	"path/filepath"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range []string{"tasklist.toml", ".tasklist.toml"} {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

// findDotEnvFile returns ".env" when it exists in the current directory.
func findDotEnvFile() string {
	if info, err := os.Stat(".env"); err == nil && !info.IsDir() {
		return ".env"
	}
	return ""
}

// findUserConfigFile returns ~/.tasklist/tasklist.toml, or tasklist/tasklist.toml
// under the OS config directory, whichever exists first.
func findUserConfigFile() string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".tasklist", "tasklist.toml"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "tasklist", "tasklist.toml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.APIURL = DefaultAPIURL
	cfg.ListenAddr = DefaultListenAddr
	cfg.RequestTimeoutSeconds = 0
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
