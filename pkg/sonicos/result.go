package sonicos

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is the outcome of a GET: either a decoded document (Status 200)
// or the raw status code of the failed request.
type Result struct {
	Status int
	// Body is the raw response body. Empty unless Status is 200.
	Body []byte
	// Document is Body decoded into generic JSON values
	// (map[string]any, []any, ...). Nil unless Status is 200.
	Document any
}

// OK reports whether the request succeeded.
func (r *Result) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// Decode unmarshals the response body into v.
func (r *Result) Decode(v any) error {
	if !r.OK() {
		return fmt.Errorf("no document: status %d", r.Status)
	}
	return json.Unmarshal(r.Body, v)
}

func newResult(status int, body []byte) (*Result, error) {
	if status != http.StatusOK {
		return &Result{Status: status}, nil
	}

	res := &Result{Status: status, Body: body}
	if len(body) == 0 {
		return res, nil
	}
	if err := json.Unmarshal(body, &res.Document); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return res, nil
}
