package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by environment variables or CLI flags

# Base URL of the task API (API_URL overrides, also read from .env)
api_url = "http://localhost:8000"

# Per-request timeout in seconds (0 waits indefinitely)
request_timeout_seconds = 0

# Listen address for "tasklist serve"
listen_addr = "localhost:4173"

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.tasklist"

# Logging: debug, info, warn, error / text, json, logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
