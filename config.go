package logware

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-logr/logr"
)

const (
	// DefaultURL is the main Logware API endpoint.
	DefaultURL = "https://api.logware.io/api"

	// DefaultChainDataURL is the read-only chain-data service.
	DefaultChainDataURL = "https://chaindata.logware.io"

	// DefaultEnvironment is the environment tag used when none is configured.
	DefaultEnvironment = "test"

	// DefaultTokenTTL is how long a token obtained by login stays cached.
	// The service issues long-lived tokens, so this is most likely a
	// misconfiguration upstream; it is kept until the intended value is known.
	DefaultTokenTTL = 36 * time.Second

	// DefaultHTTPTimeout applies to the default HTTPClient only.
	DefaultHTTPTimeout = 10 * time.Second
)

// HTTPDoer is the transport used for every request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config for logware-client
type Config struct {
	// URL is the base URL of the main API (default: DefaultURL)
	URL string

	// AuthToken is an optional pre-supplied bearer token.
	// It is used until InvalidateToken is called and never expires on its own.
	AuthToken string

	// Username and Password are sent to /users/authenticate.
	// If empty, read from LOGWARE_USERNAME and LOGWARE_PASSWORD.
	Username string
	Password string

	// Environment partitions data and hash records (default: "test")
	Environment string

	// ChainDataURL is the base URL of the chain-data lookup service (default: DefaultChainDataURL)
	ChainDataURL string

	// TokenTTL is how long a token from login is cached (default: DefaultTokenTTL)
	TokenTTL time.Duration

	// HTTPClient performs the requests (default: *http.Client with DefaultHTTPTimeout)
	HTTPClient HTTPDoer

	// Clock schedules token clearing (default: wall clock)
	Clock clock.Clock

	// Logger receives debug and error output (default: discard)
	Logger logr.Logger
}

// Validate checks that configured values are usable.
// Every field is optional; only malformed values are rejected.
func (c *Config) Validate() error {
	if err := validateBaseURL("URL", c.GetURL()); err != nil {
		return err
	}
	if err := validateBaseURL("ChainDataURL", c.GetChainDataURL()); err != nil {
		return err
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("logware-client: TokenTTL must not be negative")
	}
	return nil
}

func validateBaseURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("logware-client: invalid %s: %w", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("logware-client: %s must be an absolute URL, got %q", field, raw)
	}
	return nil
}

// GetURL returns the API base URL (with default)
func (c *Config) GetURL() string {
	if c.URL == "" {
		return DefaultURL
	}
	return c.URL
}

// GetChainDataURL returns the chain-data base URL (with default)
func (c *Config) GetChainDataURL() string {
	if c.ChainDataURL == "" {
		return DefaultChainDataURL
	}
	return c.ChainDataURL
}

// GetEnvironment returns the environment tag (with default)
func (c *Config) GetEnvironment() string {
	if c.Environment == "" {
		return DefaultEnvironment
	}
	return c.Environment
}

// GetUsername returns the login name (from config or LOGWARE_USERNAME env var)
func (c *Config) GetUsername() string {
	if c.Username != "" {
		return c.Username
	}
	return os.Getenv("LOGWARE_USERNAME")
}

// GetPassword returns the password (from config or LOGWARE_PASSWORD env var)
func (c *Config) GetPassword() string {
	if c.Password != "" {
		return c.Password
	}
	return os.Getenv("LOGWARE_PASSWORD")
}

// GetTokenTTL returns the token cache lifetime (with default)
func (c *Config) GetTokenTTL() time.Duration {
	if c.TokenTTL == 0 {
		return DefaultTokenTTL
	}
	return c.TokenTTL
}

// GetHTTPClient returns the transport (with default)
func (c *Config) GetHTTPClient() HTTPDoer {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return c.HTTPClient
}

// GetClock returns the clock (with default)
func (c *Config) GetClock() clock.Clock {
	if c.Clock == nil {
		return clock.New()
	}
	return c.Clock
}

// GetLogger returns the logger (zero value discards)
func (c *Config) GetLogger() logr.Logger {
	return c.Logger
}
