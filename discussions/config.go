package discussions

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultServicesURL is the shared Fandom services origin that hosts
// both the auth endpoint and the discussion service.
const DefaultServicesURL = "https://services.fandom.com"

// Config holds discussion-service connection settings. The discussion
// service is a separate authentication domain from the wiki: it has its
// own endpoint, its own credential exchange, and its own cookies.
type Config struct {
	// ServicesURL is the services origin (auth + discussion backends)
	ServicesURL string

	// SiteID identifies the wiki whose discussion board to target
	SiteID string

	// Username and Password authenticate against /auth/token
	Username string
	Password string

	// Timeout for service requests
	Timeout time.Duration

	// UserAgent identifies the client to the service
	UserAgent string
}

// LoadConfig loads discussion-service configuration from environment variables
func LoadConfig() (*Config, error) {
	siteID := os.Getenv("FANDOM_SITE_ID")
	if siteID == "" {
		return nil, fmt.Errorf("FANDOM_SITE_ID environment variable is required for discussion operations")
	}

	servicesURL := os.Getenv("FANDOM_SERVICES_URL")
	if servicesURL == "" {
		servicesURL = DefaultServicesURL
	}
	servicesURL = strings.TrimRight(servicesURL, "/")

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
		ServicesURL: servicesURL,
		SiteID:      siteID,
		Username:    os.Getenv("FANDOM_USERNAME"),
		Password:    os.Getenv("FANDOM_PASSWORD"),
		Timeout:     timeout,
		UserAgent:   userAgent,
	}, nil
}

// DiscussionBase returns the thread API base URL for the configured wiki
func (c *Config) DiscussionBase() string {
	return c.ServicesURL + "/discussion/" + c.SiteID
}
