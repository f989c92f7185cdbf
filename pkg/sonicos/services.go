package sonicos

// GetServiceObject returns all service objects, or the named one.
func (c *Client) GetServiceObject(name string) (*Result, error) {
	return c.getResource(serviceObjects, "", name)
}

// CreateServiceObject is not supported and always fails with ErrUnimplemented.
func (c *Client) CreateServiceObject(name, payload string) (int, error) {
	return 0, unsupported("create", serviceObjects)
}

// UpdateServiceObject is not supported and always fails with ErrUnimplemented.
func (c *Client) UpdateServiceObject(name, payload string) (int, error) {
	return 0, unsupported("update", serviceObjects)
}

// DeleteServiceObject deletes the named service object and commits.
func (c *Client) DeleteServiceObject(name string) (int, error) {
	return c.deleteResource(serviceObjects, "", name)
}

// GetServiceGroup returns all service groups, or the named one.
func (c *Client) GetServiceGroup(name string) (*Result, error) {
	return c.getResource(serviceGroups, "", name)
}

// CreateServiceGroup is not supported and always fails with ErrUnimplemented.
func (c *Client) CreateServiceGroup(name, payload string) (int, error) {
	return 0, unsupported("create", serviceGroups)
}

// UpdateServiceGroup is not supported and always fails with ErrUnimplemented.
func (c *Client) UpdateServiceGroup(name, payload string) (int, error) {
	return 0, unsupported("update", serviceGroups)
}

// DeleteServiceGroup deletes the named service group and commits.
func (c *Client) DeleteServiceGroup(name string) (int, error) {
	return c.deleteResource(serviceGroups, "", name)
}
