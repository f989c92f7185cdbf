// Package sonicos is a client for the SonicOS REST configuration API.
//
// Every operation opens its own authenticated session, issues one request
// and logs out again. Mutating resource operations check that the object
// does (or does not) exist first, and commit the device's pending changes
// after a successful write. Nothing is atomic: a write whose commit fails is
// left staged on the device and reported with ErrCommitFailed.
package sonicos

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/RiskIdent/sonicapi/internal/logging"
	"github.com/RiskIdent/sonicapi/internal/loginguard"
)

const (
	// DefaultPort is the HTTPS management port.
	DefaultPort = 443
	// DefaultTimeout bounds every single HTTP request.
	DefaultTimeout = 30 * time.Second
)

// CommitPolicy decides when a delete is followed by a commit.
type CommitPolicy int

const (
	// CommitOnSuccess commits only after a write answered with 200.
	CommitOnSuccess CommitPolicy = iota
	// CommitLegacy commits after every delete of address groups, service
	// objects and service groups, whatever the delete returned. Address
	// object deletes still commit only on success.
	CommitLegacy
)

// ParseCommitPolicy converts "on-success" or "legacy" to a CommitPolicy.
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch strings.ToLower(s) {
	case "", "on-success", "on_success":
		return CommitOnSuccess, nil
	case "legacy":
		return CommitLegacy, nil
	default:
		return CommitOnSuccess, fmt.Errorf("unknown commit policy %q", s)
	}
}

func (p CommitPolicy) String() string {
	if p == CommitLegacy {
		return "legacy"
	}
	return "on-success"
}

// headers sent with every request.
var headers = map[string]string{
	"Accept":          "application/json",
	"Content-Type":    "application/json",
	"Accept-Encoding": "application/json",
	"charset":         "UTF-8",
}

// ClientConfig holds connection parameters for a device.
type ClientConfig struct {
	// Host is the device address, without scheme or port (e.g. "10.0.0.1")
	Host string
	// Username and Password are sent with HTTP Basic on login
	Username string
	Password string
	// Port is the management port (default: 443)
	Port int
	// Timeout bounds each HTTP request (default: 30s)
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. Devices
	// usually ship self-signed certificates, so this is commonly true.
	InsecureSkipVerify bool
	// ReuseSession keeps one authenticated session open across operations
	// until Close is called, instead of logging in and out per request.
	ReuseSession bool
	// CommitPolicy selects when deletes are committed (default: CommitOnSuccess)
	CommitPolicy CommitPolicy
	// MaxFailedLogins refuses further logins after this many rejected ones
	// within five minutes. Zero disables the guard.
	MaxFailedLogins int
	// Logger receives client logs (default: logging.WithComponent("sonicos"))
	Logger *slog.Logger
}

// Client talks to one SonicOS device.
type Client struct {
	cfg     ClientConfig
	rootURL string
	apiURL  string
	log     *slog.Logger
	guard   *loginguard.Guard

	// shared is the reused session when cfg.ReuseSession is set.
	mu     sync.Mutex
	shared *session
}

// NewClient creates a client. It does not contact the device.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, errors.New("host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	log := cfg.Logger
	if log == nil {
		log = logging.WithComponent("sonicos")
	}

	host := strings.TrimSuffix(strings.TrimPrefix(cfg.Host, "["), "]")
	root := "https://" + net.JoinHostPort(host, strconv.Itoa(cfg.Port)) + "/"

	c := &Client{
		cfg:     cfg,
		rootURL: root,
		apiURL:  root + "api/sonicos/",
		log:     log.With("host", cfg.Host),
	}
	if cfg.MaxFailedLogins > 0 {
		c.guard = loginguard.New(loginguard.Config{MaxFailures: cfg.MaxFailedLogins})
	}
	return c, nil
}

// newHTTP builds the transport for one session. Each session gets its own
// resty client, and with it its own cookie jar.
func (c *Client) newHTTP() *resty.Client {
	return resty.New().
		SetTimeout(c.cfg.Timeout).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify}).
		SetHeaders(headers).
		SetLogger(logging.Printf(c.log))
}

// RootURL returns https://host:port/.
func (c *Client) RootURL() string {
	return c.rootURL
}

// APIURL returns https://host:port/api/sonicos/.
func (c *Client) APIURL() string {
	return c.apiURL
}

// URL joins path onto the API root, e.g. URL("address-objects/ipv4").
func (c *Client) URL(path string) string {
	return c.apiURL + strings.TrimPrefix(path, "/")
}

// Config returns the effective configuration with defaults applied.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

// Close logs out the reused session, if any. It is a no-op for clients
// that open a session per request.
func (c *Client) Close() {
	c.mu.Lock()
	s := c.shared
	c.shared = nil
	c.mu.Unlock()

	if s != nil {
		c.logout(s)
	}
}

// String returns a representation of the client that is safe to log.
func (c *Client) String() string {
	return fmt.Sprintf("SonicOSClient{host: %s, port: %d, user: %s, password: %s}",
		c.cfg.Host, c.cfg.Port, c.cfg.Username, maskSecret(c.cfg.Password))
}

// maskSecret shows the first and last two characters at most.
func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-2:]
}
