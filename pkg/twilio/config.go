package twilio

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.twilio.com"
	// DefaultAPIVersion is the REST API version every path is rooted at.
	DefaultAPIVersion = "2010-04-01"
	// DefaultTimeout bounds a single request when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second
)

// Config holds the credentials and endpoint a Client talks to. A Config is
// read-only once handed to NewClient.
type Config struct {
	AccountSID string        `yaml:"account_sid" json:"account_sid" mapstructure:"account_sid"`
	AuthToken  string        `yaml:"auth_token" json:"auth_token" mapstructure:"auth_token"`
	BaseURL    string        `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	APIVersion string        `yaml:"api_version,omitempty" json:"api_version,omitempty" mapstructure:"api_version"`
	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout"`

	// JSONBodies sends POST and PUT parameters as a JSON document instead
	// of the form encoding the public API expects.
	JSONBodies bool `yaml:"json_bodies,omitempty" json:"json_bodies,omitempty" mapstructure:"json_bodies"`
}

// Validate checks that credentials are present.
func (c Config) Validate() error {
	var errs []error
	if c.AccountSID == "" {
		errs = append(errs, errors.New("account_sid is required"))
	}
	if c.AuthToken == "" {
		errs = append(errs, errors.New("auth_token is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// Setup builds the process-wide default client used by the Kind shortcuts
// (IncomingPhoneNumber.Find and friends). It may be called once; later calls
// return ErrAlreadyConfigured and leave the default untouched.
func Setup(cfg Config, opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		return ErrAlreadyConfigured
	}
	c, err := NewClient(cfg, opts...)
	if err != nil {
		return err
	}
	defaultClient = c
	return nil
}

// Default returns the client built by Setup.
func Default() (*Client, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultClient == nil {
		return nil, ErrNotConfigured
	}
	return defaultClient, nil
}
