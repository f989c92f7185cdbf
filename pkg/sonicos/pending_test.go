package sonicos

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingURL(t *testing.T) {
	client, err := NewClient(ClientConfig{Host: "10.0.0.1"})
	require.NoError(t, err)

	base := "https://10.0.0.1:443/api/sonicos/config/pending/"
	tests := []struct {
		query    PendingQuery
		expected string
	}{
		{PendingQuery{}, base},
		{PendingQuery{Path: "address-objects/ipv4"}, base + "address-objects/ipv4"},
		{PendingQuery{Path: "/address-objects"}, base + "address-objects"},
		{PendingQuery{Filter: "name=web"}, base + "?name=web"},
		{PendingQuery{Filter: "?name=web&zone=LAN"}, base + "?name=web&zone=LAN"},
		{PendingQuery{Path: "service-objects", Filter: "name=ssh"}, base + "service-objects?name=ssh"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, client.PendingURL(tt.query))
	}
}

func stage(t *testing.T, client *Client, kind AddressKind, name string) {
	t.Helper()
	status, err := client.Post(client.URL("address-objects/"+string(kind)), addressPayload(kind, name, "LAN"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
}

func TestGetPendingChanges(t *testing.T) {
	client, _ := newTestClient(t)
	stage(t, client, KindIPv4, "web")
	stage(t, client, KindIPv6, "web6")

	count := func(q PendingQuery) int {
		t.Helper()
		res, err := client.GetPendingChanges(q)
		require.NoError(t, err)
		require.True(t, res.OK())

		var doc struct {
			Changes []map[string]string `json:"changes"`
		}
		require.NoError(t, res.Decode(&doc))
		return len(doc.Changes)
	}

	assert.Equal(t, 2, count(PendingQuery{}))
	assert.Equal(t, 1, count(PendingQuery{Path: "address-objects/ipv6"}))
	assert.Equal(t, 0, count(PendingQuery{Path: "service-objects"}))
	assert.Equal(t, 1, count(PendingQuery{Filter: "name=web"}))
	assert.Equal(t, 0, count(PendingQuery{Filter: "name=nothing"}))
}

func TestCommitPendingChanges(t *testing.T) {
	client, device := newTestClient(t)
	stage(t, client, KindIPv4, "web")
	require.False(t, device.Committed("address-objects/ipv4", "web"))

	status, err := client.CommitPendingChanges()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, device.Committed("address-objects/ipv4", "web"))

	for _, r := range device.Requests() {
		if r.Method == http.MethodPost && r.Path == pendingURL {
			assert.Empty(t, r.Body, "commit has an empty body")
		}
	}
}

func TestDeletePendingChanges(t *testing.T) {
	client, device := newTestClient(t)
	device.Seed("address-objects/ipv4", "keep", nil)
	stage(t, client, KindIPv4, "drop")

	status, err := client.DeletePendingChanges()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	_, dropped := device.Object("address-objects/ipv4", "drop")
	assert.False(t, dropped)
	_, kept := device.Object("address-objects/ipv4", "keep")
	assert.True(t, kept)
	assert.Empty(t, device.Pending())
	assert.Zero(t, device.Commits())
}
