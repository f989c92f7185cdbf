package sonicos

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/RiskIdent/sonicapi/internal/logging"
)

// session is one authenticated HTTP context. Its resty client carries the
// cookies set by the device at login.
type session struct {
	http *resty.Client
}

func (c *Client) guardKey() string {
	return c.cfg.Username + "@" + c.cfg.Host
}

// login opens a session with HTTP Basic credentials. A non-200 answer is
// reported as ErrAuth and no session is returned.
func (c *Client) login() (*session, error) {
	url := c.apiURL + "auth"

	if c.guard != nil && c.guard.IsBlocked(c.guardKey()) {
		until := c.guard.BlockedUntil(c.guardKey())
		return nil, fmt.Errorf("login %s: %w (until %s)", url, ErrLoginBlocked, until.Format(time.RFC3339))
	}

	s := &session{http: c.newHTTP()}
	logging.Trace(c.log, "request", "method", http.MethodPost, "url", url)
	resp, err := s.http.R().
		SetBasicAuth(c.cfg.Username, c.cfg.Password).
		Post(url)
	if err != nil {
		return nil, &TransportError{Op: "login", URL: url, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		attrs := []any{"user", c.cfg.Username, "status", resp.StatusCode()}
		if c.guard != nil {
			if c.guard.RecordFailure(c.guardKey()) {
				c.log.Warn("further logins blocked after repeated failures", "user", c.cfg.Username)
			}
			attrs = append(attrs, "remaining", c.guard.RemainingAttempts(c.guardKey()))
		}
		c.log.Warn("login rejected", attrs...)
		return nil, statusError("login", url, resp.StatusCode(), ErrAuth)
	}

	if c.guard != nil {
		c.guard.RecordSuccess(c.guardKey())
	}
	c.log.Debug("session opened", "user", c.cfg.Username)
	return s, nil
}

// logout ends the session. The device's answer is ignored.
func (c *Client) logout(s *session) {
	url := c.rootURL + "auth"
	logging.Trace(c.log, "request", "method", http.MethodDelete, "url", url)
	resp, err := s.http.R().Delete(url)
	if err != nil {
		c.log.Debug("logout failed", "error", err)
		return
	}
	c.log.Debug("session closed", "status", resp.StatusCode())
}

// do performs exactly one request inside a session. By default the session
// is opened for this request and closed again on every exit path.
func (c *Client) do(method, url string, body *string) (*resty.Response, error) {
	if c.cfg.ReuseSession {
		return c.doShared(method, url, body)
	}

	s, err := c.login()
	if err != nil {
		return nil, err
	}
	defer c.logout(s)

	return c.send(s, method, url, body)
}

// doShared runs the request on the reused session, opening it on first use.
// Requests are serialized while the session is shared. A 401 on a session
// that was already open means it expired on the device: the request is
// sent once more on a fresh session.
func (c *Client) doShared(method, url string, body *string) (*resty.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := false
	if c.shared == nil {
		s, err := c.login()
		if err != nil {
			return nil, err
		}
		c.shared = s
		fresh = true
	}

	resp, err := c.sendShared(method, url, body)
	if err != nil || resp.StatusCode() != http.StatusUnauthorized || fresh {
		return resp, err
	}

	c.log.Debug("reused session rejected, logging in again", "url", url)
	c.dropShared()
	s, err := c.login()
	if err != nil {
		return nil, err
	}
	c.shared = s
	return c.sendShared(method, url, body)
}

// sendShared sends on the reused session. The session is torn down after a
// transport failure or a 401. Caller holds c.mu.
func (c *Client) sendShared(method, url string, body *string) (*resty.Response, error) {
	resp, err := c.send(c.shared, method, url, body)
	if err != nil {
		c.dropShared()
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.dropShared()
	}
	return resp, nil
}

// dropShared logs out and forgets the reused session. Caller holds c.mu.
func (c *Client) dropShared() {
	if c.shared == nil {
		return
	}
	c.logout(c.shared)
	c.shared = nil
}

func (c *Client) send(s *session, method, url string, body *string) (*resty.Response, error) {
	req := s.http.R()
	if body != nil {
		req.SetBody(*body)
	}

	logging.Trace(c.log, "request", "method", method, "url", url)
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, &TransportError{Op: method, URL: url, Err: err}
	}
	logging.Trace(c.log, "response", "method", method, "url", url, "status", resp.StatusCode())
	return resp, nil
}
