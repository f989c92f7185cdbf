package sonicos

import (
	"net/http"
	"strings"
)

const pendingPath = "config/pending/"

// PendingQuery narrows GetPendingChanges.
type PendingQuery struct {
	// Path is appended to the pending-changes URL to select one item,
	// e.g. "address-objects/ipv4".
	Path string
	// Filter is a raw query string such as "name=web". It is appended
	// unchanged after a "?", which is added when Filter does not start with one.
	Filter string
}

// PendingURL returns the URL GetPendingChanges requests for q.
func (c *Client) PendingURL(q PendingQuery) string {
	url := c.URL(pendingPath) + strings.TrimPrefix(q.Path, "/")
	if q.Filter != "" {
		if !strings.HasPrefix(q.Filter, "?") {
			url += "?"
		}
		url += q.Filter
	}
	return url
}

// GetPendingChanges returns the changes staged on the device.
func (c *Client) GetPendingChanges(q PendingQuery) (*Result, error) {
	return c.Get(c.PendingURL(q))
}

// CommitPendingChanges makes all staged changes durable.
func (c *Client) CommitPendingChanges() (int, error) {
	resp, err := c.do(http.MethodPost, c.URL(pendingPath), nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// DeletePendingChanges discards all staged changes.
func (c *Client) DeletePendingChanges() (int, error) {
	return c.Delete(c.URL(pendingPath))
}
