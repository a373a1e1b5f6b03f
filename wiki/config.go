package wiki

import (
	"os"
	"strings"
	"time"
)

// Config holds wiki connection settings
type Config struct {
	// Server is the wiki origin (e.g., https://dev.fandom.com)
	Server string

	// ScriptPath is the path prefix under which api.php lives (e.g., "/w").
	// Empty for Fandom wikis, which serve api.php at the root.
	ScriptPath string

	// Username for bot password authentication (optional, for editing)
	Username string

	// Password for bot password authentication (optional, for editing)
	Password string

	// Timeout for API requests
	Timeout time.Duration

	// UserAgent identifies the client to the wiki
	UserAgent string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	server := os.Getenv("FANDOM_SERVER")
	if server == "" {
		return nil, &ConfigError{
			Setting: "FANDOM_SERVER",
			Reason:  "environment variable is required (e.g., https://dev.fandom.com)",
		}
	}
	server = strings.TrimRight(server, "/")

	timeout := 30 * time.Second
	if t := os.Getenv("FANDOM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	userAgent := os.Getenv("FANDOM_USER_AGENT")
	if userAgent == "" {
		userAgent = "FandomBotMCPServer/1.0 (https://github.com/olgasafonova/fandom-bot-mcp-server)"
	}

	return &Config{
		Server:     server,
		ScriptPath: os.Getenv("FANDOM_SCRIPT_PATH"),
		Username:   os.Getenv("FANDOM_USERNAME"),
		Password:   os.Getenv("FANDOM_PASSWORD"),
		Timeout:    timeout,
		UserAgent:  userAgent,
	}, nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
