package firewalls

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiskIdent/sonicapi/internal/config"
	"github.com/RiskIdent/sonicapi/internal/sonictest"
	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Firewalls: []config.Firewall{
			{ID: "fw-b", Host: "10.0.0.2", Username: "admin", CommitPolicy: "legacy"},
			{ID: "fw-a", Host: "10.0.0.1", Port: 8443, Username: "admin"},
		},
	}

	m, err := FromConfig(cfg)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []string{"fw-a", "fw-b"}, m.IDs())

	client, err := m.Get("fw-a")
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.1:8443/", client.RootURL())

	first, err := m.Get("")
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.2:443/", first.RootURL(), "empty id selects the first configured firewall")
	assert.Equal(t, sonicos.CommitLegacy, first.Config().CommitPolicy)
}

func TestFromConfigRejectsInvalidFirewall(t *testing.T) {
	cfg := &config.Config{
		Firewalls: []config.Firewall{
			{ID: "fw-a", Host: "10.0.0.1"},
			{ID: "fw-b", Host: "", Username: "admin"},
		},
	}

	_, err := FromConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fw-b")
}

func TestGetUnknown(t *testing.T) {
	m := NewManager()

	_, err := m.Get("")
	assert.ErrorIs(t, err, ErrUnknownFirewall)

	require.NoError(t, m.Add("fw", sonicos.ClientConfig{Host: "10.0.0.1"}))
	_, err = m.Get("other")
	assert.ErrorIs(t, err, ErrUnknownFirewall)
}

func TestAddExistingIsNoop(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Add("fw", sonicos.ClientConfig{Host: "10.0.0.1"}))
	require.NoError(t, m.Add("fw", sonicos.ClientConfig{Host: "10.0.0.2"}))

	client, err := m.Get("fw")
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.1:443/", client.RootURL())
}

func TestRemove(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Add("fw-a", sonicos.ClientConfig{Host: "10.0.0.1"}))
	require.NoError(t, m.Add("fw-b", sonicos.ClientConfig{Host: "10.0.0.2"}))

	m.Remove("fw-a")
	m.Remove("missing")

	assert.Equal(t, []string{"fw-b"}, m.IDs())
	client, err := m.Get("")
	require.NoError(t, err, "the remaining firewall becomes the default")
	assert.Equal(t, "https://10.0.0.2:443/", client.RootURL())

	m.Remove("fw-b")
	_, err = m.Get("")
	assert.ErrorIs(t, err, ErrUnknownFirewall)
}

func TestRemoveThenAddKeepsOrder(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Add("fw-a", sonicos.ClientConfig{Host: "10.0.0.1"}))
	require.NoError(t, m.Add("fw-b", sonicos.ClientConfig{Host: "10.0.0.2"}))

	m.Remove("fw-a")
	require.NoError(t, m.Add("fw-a", sonicos.ClientConfig{Host: "10.0.0.3"}))

	client, err := m.Get("")
	require.NoError(t, err)
	assert.Equal(t, "https://10.0.0.2:443/", client.RootURL())
	assert.Equal(t, 2, m.Count())
}

func TestCloseLogsOutSharedSessions(t *testing.T) {
	device := sonictest.NewDevice("admin", "password")
	defer device.Close()

	m := NewManager()
	require.NoError(t, m.Add("fw", sonicos.ClientConfig{
		Host:               device.Host(),
		Port:               device.Port(),
		Username:           "admin",
		Password:           "password",
		Timeout:            5 * time.Second,
		InsecureSkipVerify: true,
		ReuseSession:       true,
	}))

	client, err := m.Get("fw")
	require.NoError(t, err)
	res, err := client.Get(client.URL("service-objects"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, 1, device.OpenSessions())

	m.Close()
	assert.Equal(t, 0, device.OpenSessions())
	assert.Equal(t, 0, m.Count())
}
