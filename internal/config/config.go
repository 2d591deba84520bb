// Package config loads and manages the twilioctl configuration file stored
// at ~/.twilio/config.yaml. The file holds named credential profiles.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wondertwin-ai/twilio/pkg/twilio"
)

// DefaultConfigDir is the directory under the user's home for CLI state.
const DefaultConfigDir = ".twilio"

// DefaultConfigFile is the config file name within the config directory.
const DefaultConfigFile = "config.yaml"

// DefaultProfile is used when no profile is named or active.
const DefaultProfile = "default"

// Profile is one set of credentials.
type Profile struct {
	AccountSID string `yaml:"account_sid" json:"account_sid"`
	AuthToken  string `yaml:"auth_token" json:"auth_token"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
}

// Config represents the contents of ~/.twilio/config.yaml.
type Config struct {
	ActiveProfile string             `yaml:"active_profile,omitempty" json:"active_profile,omitempty"`
	Profiles      map[string]Profile `yaml:"profiles" json:"profiles"`
}

// Path returns the full path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the config from ~/.twilio/config.yaml.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, decoding JSON for .json files and YAML
// otherwise. A missing file yields an empty config.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// Save writes the config to ~/.twilio/config.yaml.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path. The file holds credentials, so it is
// created readable by the owner only.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Profile returns the named profile. An empty name selects the active
// profile, falling back to DefaultProfile.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.ActiveProfile
	}
	if name == "" {
		name = DefaultProfile
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found (have: %s)", name, strings.Join(c.ProfileNames(), ", "))
	}
	return p, nil
}

// SetProfile stores p under name.
func (c *Config) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = p
}

// ProfileNames returns profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for n := range c.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ClientConfig converts the profile into library configuration.
func (p Profile) ClientConfig() twilio.Config {
	return twilio.Config{
		AccountSID: p.AccountSID,
		AuthToken:  p.AuthToken,
		BaseURL:    p.BaseURL,
	}
}

// MaskToken hides all but the first and last two characters of a secret.
func MaskToken(token string) string {
	if len(token) <= 6 {
		return strings.Repeat("*", len(token))
	}
	return token[:2] + strings.Repeat("*", len(token)-4) + token[len(token)-2:]
}
