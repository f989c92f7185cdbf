package sonicos

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// AddressKind is the address family segment of address object and
// address group URLs.
type AddressKind string

const (
	KindIPv4 AddressKind = "ipv4"
	KindIPv6 AddressKind = "ipv6"
	KindMAC  AddressKind = "mac"
	KindFQDN AddressKind = "fqdn"
)

// AddressKinds lists every valid AddressKind.
var AddressKinds = []AddressKind{KindIPv4, KindIPv6, KindMAC, KindFQDN}

// Valid reports whether k is one of AddressKinds.
func (k AddressKind) Valid() bool {
	switch k {
	case KindIPv4, KindIPv6, KindMAC, KindFQDN:
		return true
	}
	return false
}

// ParseAddressKind accepts ipv4, ipv6, mac or fqdn in any case.
func ParseAddressKind(s string) (AddressKind, error) {
	k := AddressKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w %q", ErrInvalidKind, s)
	}
	return k, nil
}

// family describes one resource collection. All four follow the same
// check, write, commit template and differ only in these fields.
type family struct {
	name string
	path string
	// versioned collections carry an AddressKind segment
	versioned bool
	// conflictStatus is returned when creating an existing name
	conflictStatus int
	// commitAlways commits after a delete whatever it returned, under CommitLegacy
	commitAlways bool
}

var (
	addressObjects = family{
		name:           "address object",
		path:           "address-objects",
		versioned:      true,
		conflictStatus: http.StatusForbidden,
	}
	addressGroups = family{
		name:           "address group",
		path:           "address-groups",
		versioned:      true,
		conflictStatus: http.StatusFailedDependency,
		commitAlways:   true,
	}
	serviceObjects = family{
		name:         "service object",
		path:         "service-objects",
		commitAlways: true,
	}
	serviceGroups = family{
		name:         "service group",
		path:         "service-groups",
		commitAlways: true,
	}
)

func (c *Client) collectionURL(f family, kind AddressKind) (string, error) {
	if !f.versioned {
		return c.URL(f.path), nil
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%s: %w %q", f.name, ErrInvalidKind, kind)
	}
	return c.URL(f.path + "/" + string(kind)), nil
}

func itemURL(collection, name string) string {
	return collection + "/name/" + url.PathEscape(name)
}

// getResource returns the whole collection when name is empty. A named
// object that does not exist yields a 404 Result and ErrNotFound without
// the GET being issued.
func (c *Client) getResource(f family, kind AddressKind, name string) (*Result, error) {
	u, err := c.collectionURL(f, kind)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return c.Get(u)
	}

	u = itemURL(u, name)
	exists, err := c.DoesExist(u)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &Result{Status: http.StatusNotFound}, statusError("get "+f.name, u, http.StatusNotFound, ErrNotFound)
	}
	return c.Get(u)
}

func (c *Client) createResource(f family, kind AddressKind, name, payload string) (int, error) {
	u, err := c.collectionURL(f, kind)
	if err != nil {
		return 0, err
	}

	item := itemURL(u, name)
	exists, err := c.DoesExist(item)
	if err != nil {
		return 0, err
	}
	if exists {
		c.log.Info(f.name+" already exists", "name", name, "kind", kind)
		return f.conflictStatus, statusError("create "+f.name, item, f.conflictStatus, ErrConflict)
	}

	status, err := c.Post(u, payload)
	if err != nil {
		return 0, err
	}
	c.log.Info(f.name+" created", "name", name, "kind", kind, "status", status)
	return c.finishWrite("create "+f.name, u, status, status == http.StatusOK)
}

func (c *Client) updateResource(f family, kind AddressKind, name, payload string) (int, error) {
	u, err := c.existingItemURL(f, kind, name, "update")
	if err != nil {
		return notFoundStatus(err), err
	}

	status, err := c.Put(u, payload)
	if err != nil {
		return 0, err
	}
	c.log.Info(f.name+" updated", "name", name, "kind", kind, "status", status)
	return c.finishWrite("update "+f.name, u, status, status == http.StatusOK)
}

func (c *Client) deleteResource(f family, kind AddressKind, name string) (int, error) {
	u, err := c.existingItemURL(f, kind, name, "delete")
	if err != nil {
		return notFoundStatus(err), err
	}

	status, err := c.Delete(u)
	if err != nil {
		return 0, err
	}
	c.log.Info(f.name+" deleted", "name", name, "kind", kind, "status", status)

	commit := status == http.StatusOK ||
		(c.cfg.CommitPolicy == CommitLegacy && f.commitAlways)
	return c.finishWrite("delete "+f.name, u, status, commit)
}

// existingItemURL builds the item URL and fails with ErrNotFound when the
// object is absent.
func (c *Client) existingItemURL(f family, kind AddressKind, name, op string) (string, error) {
	u, err := c.collectionURL(f, kind)
	if err != nil {
		return "", err
	}

	u = itemURL(u, name)
	exists, err := c.DoesExist(u)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", statusError(op+" "+f.name, u, http.StatusNotFound, ErrNotFound)
	}
	return u, nil
}

func notFoundStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return 0
}

// finishWrite turns the write's status into an error and, if asked,
// commits. The write's status is returned whatever the commit did.
func (c *Client) finishWrite(op, url string, status int, commit bool) (int, error) {
	var writeErr error
	if status != http.StatusOK {
		writeErr = statusError(op, url, status, ErrUnexpectedStatus)
	}
	if !commit {
		return status, writeErr
	}

	if err := c.commit(); err != nil {
		return status, errors.Join(writeErr, err)
	}
	return status, writeErr
}

func (c *Client) commit() error {
	status, err := c.CommitPendingChanges()
	if err != nil {
		c.log.Warn("commit failed, changes remain staged", "error", err)
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	if status != http.StatusOK {
		c.log.Warn("commit rejected, changes remain staged", "status", status)
		return statusError("commit", c.URL(pendingPath), status, ErrCommitFailed)
	}
	c.log.Info("pending changes committed")
	return nil
}

func unsupported(op string, f family) error {
	return fmt.Errorf("%s %s: %w", op, f.name, ErrUnimplemented)
}
