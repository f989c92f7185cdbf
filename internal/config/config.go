// Package config provides configuration structures and loading functionality
// for sonicctl.
package config

import (
	"time"

	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

// Config represents the complete application configuration.
type Config struct {
	Logging   LoggingConfig `yaml:"logging"`
	Firewalls []Firewall    `yaml:"firewalls"`
}

// LoggingConfig contains logging-related configuration.
type LoggingConfig struct {
	// Level is the log level: trace, debug, info, warning, error (default: info)
	Level string `yaml:"level"`
	// Format is the output format: text or json (default: text)
	Format string `yaml:"format"`
}

// Firewall describes one SonicOS device.
type Firewall struct {
	// ID is a unique identifier used to select the firewall
	ID string `yaml:"id"`
	// Host is the device address without scheme (e.g., 192.168.168.168)
	Host string `yaml:"host"`
	// Port is the HTTPS management port (default: 443)
	Port int `yaml:"port,omitempty"`
	// Username is the administrator account
	Username string `yaml:"username"`
	// Password is usually given as ${SONICOS_PASSWORD}
	Password string `yaml:"password"`
	// Timeout bounds each request (default: 30s)
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// InsecureSkipVerify accepts self-signed device certificates
	InsecureSkipVerify bool `yaml:"insecure_skip_verify,omitempty"`
	// ReuseSession keeps one login for all requests of a command
	ReuseSession bool `yaml:"reuse_session,omitempty"`
	// CommitPolicy is on-success or legacy (default: on-success)
	CommitPolicy string `yaml:"commit_policy,omitempty"`
	// MaxFailedLogins blocks logins after this many rejections (default: 0, disabled)
	MaxFailedLogins int `yaml:"max_failed_logins,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Firewalls: []Firewall{},
	}
}

// GetFirewall returns the firewall with the given ID.
// An empty ID selects the first firewall. Returns nil if no firewall matches.
func (c *Config) GetFirewall(id string) *Firewall {
	if id == "" {
		if len(c.Firewalls) == 0 {
			return nil
		}
		return &c.Firewalls[0]
	}
	for i := range c.Firewalls {
		if c.Firewalls[i].ID == id {
			return &c.Firewalls[i]
		}
	}
	return nil
}

// ClientConfig converts the entry to the client's connection parameters.
// The commit policy has been validated by Parse; an unknown value falls
// back to on-success.
func (f *Firewall) ClientConfig() sonicos.ClientConfig {
	policy, _ := sonicos.ParseCommitPolicy(f.CommitPolicy)
	return sonicos.ClientConfig{
		Host:               f.Host,
		Port:               f.Port,
		Username:           f.Username,
		Password:           f.Password,
		Timeout:            f.Timeout,
		InsecureSkipVerify: f.InsecureSkipVerify,
		ReuseSession:       f.ReuseSession,
		CommitPolicy:       policy,
		MaxFailedLogins:    f.MaxFailedLogins,
	}
}
