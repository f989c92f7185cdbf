package sonicos

// GetFirewallAddress returns all address objects of kind, or the one named
// name when name is not empty.
func (c *Client) GetFirewallAddress(kind AddressKind, name string) (*Result, error) {
	return c.getResource(addressObjects, kind, name)
}

// CreateFirewallAddress posts payload to the address objects of kind and
// commits. If name already exists nothing is written and 403 is returned
// with ErrConflict.
//
// A single object payload looks like
//
//	{"address_object": {"ipv4": {"name": "web", "zone": "LAN", "host": {"ip": "192.168.168.20"}}}}
func (c *Client) CreateFirewallAddress(kind AddressKind, name, payload string) (int, error) {
	return c.createResource(addressObjects, kind, name, payload)
}

// UpdateFirewallAddress replaces the named address object with payload and
// commits. An absent object yields 404 with ErrNotFound.
func (c *Client) UpdateFirewallAddress(kind AddressKind, name, payload string) (int, error) {
	return c.updateResource(addressObjects, kind, name, payload)
}

// DeleteFirewallAddress deletes the named address object and commits on success.
func (c *Client) DeleteFirewallAddress(kind AddressKind, name string) (int, error) {
	return c.deleteResource(addressObjects, kind, name)
}

// GetAddressGroup returns all address groups of kind, or the named one.
func (c *Client) GetAddressGroup(kind AddressKind, name string) (*Result, error) {
	return c.getResource(addressGroups, kind, name)
}

// CreateAddressGroup posts payload and commits. An existing name yields 424
// with ErrConflict.
//
//	{"address_group": {"ipv4": {"name": "web", "address_object": {"ipv4": [{"name": "web-1"}]}}}}
func (c *Client) CreateAddressGroup(kind AddressKind, name, payload string) (int, error) {
	return c.createResource(addressGroups, kind, name, payload)
}

// UpdateAddressGroup replaces the named address group with payload and commits.
func (c *Client) UpdateAddressGroup(kind AddressKind, name, payload string) (int, error) {
	return c.updateResource(addressGroups, kind, name, payload)
}

// DeleteAddressGroup deletes the named address group and commits.
func (c *Client) DeleteAddressGroup(kind AddressKind, name string) (int, error) {
	return c.deleteResource(addressGroups, kind, name)
}
