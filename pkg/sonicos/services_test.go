package sonicos

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteMissingServiceObject(t *testing.T) {
	client, device := newTestClient(t)

	status, err := client.DeleteServiceObject("Obj1")
	assert.Equal(t, http.StatusNotFound, status)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, device.Count(http.MethodDelete, "/api/sonicos/service-objects"))
	assert.Zero(t, device.Commits())
}

func TestDeleteServiceObject(t *testing.T) {
	client, device := newTestClient(t)
	device.Seed("service-objects", "Obj1", map[string]any{"tcp": map[string]any{"begin": 8080, "end": 8080}})

	status, err := client.DeleteServiceObject("Obj1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, device.Commits())
	assert.False(t, device.Committed("service-objects", "Obj1"))
}

func TestGetServiceGroup(t *testing.T) {
	client, device := newTestClient(t)
	device.Seed("service-groups", "Web", nil)

	res, err := client.GetServiceGroup("")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = client.GetServiceGroup("Web")
	require.NoError(t, err)
	assert.True(t, res.OK())

	res, err = client.GetServiceGroup("Mail")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestServiceCreateAndUpdateUnsupported(t *testing.T) {
	client, device := newTestClient(t)

	calls := map[string]func() (int, error){
		"create object": func() (int, error) { return client.CreateServiceObject("a", `{}`) },
		"update object": func() (int, error) { return client.UpdateServiceObject("a", `{}`) },
		"create group":  func() (int, error) { return client.CreateServiceGroup("a", `{}`) },
		"update group":  func() (int, error) { return client.UpdateServiceGroup("a", `{}`) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			status, err := call()
			assert.Zero(t, status)
			assert.ErrorIs(t, err, ErrUnimplemented)
		})
	}

	assert.Empty(t, device.Requests())
}

func TestDeleteCommitPolicy(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		path       string
		del        func(c *Client) (int, error)
		// commit expected after a failed delete under CommitLegacy
		legacyCommit bool
	}{
		{
			name:       "address object",
			collection: "address-objects/ipv4",
			path:       "/api/sonicos/address-objects/ipv4/name/x",
			del:        func(c *Client) (int, error) { return c.DeleteFirewallAddress(KindIPv4, "x") },
		},
		{
			name:         "address group",
			collection:   "address-groups/ipv4",
			path:         "/api/sonicos/address-groups/ipv4/name/x",
			del:          func(c *Client) (int, error) { return c.DeleteAddressGroup(KindIPv4, "x") },
			legacyCommit: true,
		},
		{
			name:         "service object",
			collection:   "service-objects",
			path:         "/api/sonicos/service-objects/name/x",
			del:          func(c *Client) (int, error) { return c.DeleteServiceObject("x") },
			legacyCommit: true,
		},
		{
			name:         "service group",
			collection:   "service-groups",
			path:         "/api/sonicos/service-groups/name/x",
			del:          func(c *Client) (int, error) { return c.DeleteServiceGroup("x") },
			legacyCommit: true,
		},
	}

	for _, tt := range tests {
		for _, policy := range []CommitPolicy{CommitOnSuccess, CommitLegacy} {
			t.Run(tt.name+"/"+policy.String(), func(t *testing.T) {
				client, device := newTestClient(t, func(cfg *ClientConfig) {
					cfg.CommitPolicy = policy
				})
				device.Seed(tt.collection, "x", nil)
				device.Respond(http.MethodDelete, tt.path, http.StatusInternalServerError)

				status, err := tt.del(client)
				assert.Equal(t, http.StatusInternalServerError, status)
				require.ErrorIs(t, err, ErrUnexpectedStatus)

				expected := 0
				if policy == CommitLegacy && tt.legacyCommit {
					expected = 1
				}
				assert.Equal(t, expected, device.Count(http.MethodPost, pendingURL))
			})

			t.Run(tt.name+"/"+policy.String()+"/success", func(t *testing.T) {
				client, device := newTestClient(t, func(cfg *ClientConfig) {
					cfg.CommitPolicy = policy
				})
				device.Seed(tt.collection, "x", nil)

				status, err := tt.del(client)
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, status)
				assert.Equal(t, 1, device.Count(http.MethodPost, pendingURL), "exactly one commit")
			})
		}
	}
}
