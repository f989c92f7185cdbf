package sonicos

import (
	"net/http"
)

// Get performs a GET on url. The Result holds the decoded document when
// the device answered 200 and only the status code otherwise. The error is
// reserved for login, transport and decoding failures.
func (c *Client) Get(url string) (*Result, error) {
	resp, err := c.do(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return newResult(resp.StatusCode(), resp.Body())
}

// Put sends payload verbatim with PUT and returns the status code.
func (c *Client) Put(url, payload string) (int, error) {
	resp, err := c.do(http.MethodPut, url, &payload)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// Post sends payload verbatim with POST and returns the status code.
func (c *Client) Post(url, payload string) (int, error) {
	resp, err := c.do(http.MethodPost, url, &payload)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// Delete issues a DELETE and returns the status code.
func (c *Client) Delete(url string) (int, error) {
	resp, err := c.do(http.MethodDelete, url, nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// DoesExist reports whether a GET on url answers 200. It works for any
// URL, not only resource URLs.
func (c *Client) DoesExist(url string) (bool, error) {
	resp, err := c.do(http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	return resp.StatusCode() == http.StatusOK, nil
}
