package sonicos

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiskIdent/sonicapi/internal/sonictest"
)

const (
	testUser     = "admin"
	testPassword = "password"
)

// newTestClient starts a fake device and returns a client pointed at it.
func newTestClient(t *testing.T, opts ...func(*ClientConfig)) (*Client, *sonictest.Device) {
	t.Helper()

	device := sonictest.NewDevice(testUser, testPassword)
	t.Cleanup(device.Close)

	cfg := ClientConfig{
		Host:               device.Host(),
		Port:               device.Port(),
		Username:           testUser,
		Password:           testPassword,
		Timeout:            5 * time.Second,
		InsecureSkipVerify: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client, device
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(ClientConfig{
		Host:     "10.0.0.1",
		Username: "admin",
		Password: "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://10.0.0.1:443/", client.RootURL())
	assert.Equal(t, "https://10.0.0.1:443/api/sonicos/", client.APIURL())
	assert.Equal(t, DefaultTimeout, client.Config().Timeout)
	assert.Equal(t, DefaultPort, client.Config().Port)
	assert.Equal(t, CommitOnSuccess, client.Config().CommitPolicy)
	assert.False(t, client.Config().InsecureSkipVerify, "certificate checks stay on unless asked")
}

func TestNewClientCustomPort(t *testing.T) {
	client, err := NewClient(ClientConfig{Host: "fw.example.com", Port: 8443})
	require.NoError(t, err)

	assert.Equal(t, "https://fw.example.com:8443/api/sonicos/address-objects/ipv4",
		client.URL("/address-objects/ipv4"))
}

func TestNewClientIPv6Host(t *testing.T) {
	for _, host := range []string{"fd00::1", "[fd00::1]"} {
		client, err := NewClient(ClientConfig{Host: host})
		require.NoError(t, err)
		assert.Equal(t, "https://[fd00::1]:443/", client.RootURL())
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{Host: "  "})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{Host: "10.0.0.1", Port: 70000})
	assert.Error(t, err)
}

func TestClientStringMasksPassword(t *testing.T) {
	client, err := NewClient(ClientConfig{
		Host:     "10.0.0.1",
		Username: "admin",
		Password: "very-secret-password",
	})
	require.NoError(t, err)

	s := client.String()
	assert.NotContains(t, s, "very-secret-password")
	assert.Contains(t, s, "ve****rd")
	assert.Contains(t, s, "admin")

	assert.Equal(t, "****", maskSecret("short"))
}

func TestParseCommitPolicy(t *testing.T) {
	tests := []struct {
		input    string
		expected CommitPolicy
		wantErr  bool
	}{
		{"", CommitOnSuccess, false},
		{"on-success", CommitOnSuccess, false},
		{"ON_SUCCESS", CommitOnSuccess, false},
		{"legacy", CommitLegacy, false},
		{"always", CommitOnSuccess, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParseCommitPolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
			assert.Equal(t, p, mustParse(t, p.String()))
		})
	}
}

func mustParse(t *testing.T, s string) CommitPolicy {
	t.Helper()
	p, err := ParseCommitPolicy(s)
	require.NoError(t, err)
	return p
}

func TestParseAddressKind(t *testing.T) {
	for _, k := range AddressKinds {
		parsed, err := ParseAddressKind(strings.ToUpper(string(k)))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseAddressKind("ipx")
	assert.ErrorIs(t, err, ErrInvalidKind)
}
