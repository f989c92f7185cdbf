package sonicos

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsDocumentOnSuccess(t *testing.T) {
	client, device := newTestClient(t)
	device.Seed("address-objects/ipv4", "web", map[string]any{"zone": "LAN"})

	res, err := client.Get(client.URL("address-objects/ipv4"))
	require.NoError(t, err)
	require.True(t, res.OK())

	doc, ok := res.Document.(map[string]any)
	require.True(t, ok, "expected a JSON object, got %T", res.Document)
	list, ok := doc["address_objects"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)

	var typed struct {
		AddressObjects []map[string]struct {
			Name string `json:"name"`
			Zone string `json:"zone"`
		} `json:"address_objects"`
	}
	require.NoError(t, res.Decode(&typed))
	assert.Equal(t, "LAN", typed.AddressObjects[0]["ipv4"].Zone)
}

func TestGetReturnsStatusOnFailure(t *testing.T) {
	for _, status := range []int{
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusInternalServerError,
	} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			client, device := newTestClient(t)
			device.Respond(http.MethodGet, "/api/sonicos/service-groups", status)

			res, err := client.Get(client.URL("service-groups"))
			require.NoError(t, err)
			assert.False(t, res.OK())
			assert.Equal(t, status, res.Status)
			assert.Nil(t, res.Document)
			assert.Error(t, res.Decode(&map[string]any{}))
		})
	}
}

func TestDoesExistIsGeneric(t *testing.T) {
	client, device := newTestClient(t)
	device.Seed("service-objects", "HTTPS", nil)

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"existing object", client.URL("service-objects/name/HTTPS"), true},
		{"missing object", client.URL("service-objects/name/Gopher"), false},
		{"collection", client.URL("service-objects"), true},
		{"pending changes", client.URL("config/pending/"), true},
		{"unknown endpoint", client.RootURL() + "nowhere", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := client.DoesExist(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestWriteVerbsReturnRawStatus(t *testing.T) {
	client, device := newTestClient(t)

	status, err := client.Post(client.URL("address-objects/ipv4"), `not json`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	status, err = client.Put(client.URL("address-objects/ipv4/name/missing"), `{"address_object": {"ipv4": {"name": "missing"}}}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	status, err = client.Delete(client.URL("address-objects/ipv4/name/missing"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	assert.Zero(t, device.Commits(), "generic verbs never commit")
}

func TestPayloadIsSentVerbatim(t *testing.T) {
	client, device := newTestClient(t)
	payload := `{"address_objects": [{"ipv4": {"name": "a", "host": {"ip": "10.1.1.1"}}}, {"ipv4": {"name": "b"}}]}`

	status, err := client.Post(client.URL("address-objects/ipv4"), payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var body string
	for _, r := range device.Requests() {
		if r.Method == http.MethodPost && r.Path == "/api/sonicos/address-objects/ipv4" {
			body = r.Body
		}
	}
	assert.Equal(t, payload, body)

	_, ok := device.Object("address-objects/ipv4", "b")
	assert.True(t, ok)
}
