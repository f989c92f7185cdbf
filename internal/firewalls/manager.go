// Package firewalls keeps one sonicos client per configured firewall.
package firewalls

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/RiskIdent/sonicapi/internal/config"
	"github.com/RiskIdent/sonicapi/internal/logging"
	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

// ErrUnknownFirewall is returned by Get for an ID that was never added.
var ErrUnknownFirewall = errors.New("unknown firewall")

// Manager manages multiple clients, keyed by firewall ID.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*sonicos.Client
	// order holds IDs as added; order[0] is returned for an empty ID
	order []string
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*sonicos.Client),
	}
}

// FromConfig creates a manager holding a client for every configured firewall.
func FromConfig(cfg *config.Config) (*Manager, error) {
	m := NewManager()
	for i := range cfg.Firewalls {
		fw := &cfg.Firewalls[i]
		if err := m.Add(fw.ID, fw.ClientConfig()); err != nil {
			m.Close()
			return nil, err
		}
	}
	return m, nil
}

// Add creates a client for the firewall. Adding an existing ID is a no-op.
func (m *Manager) Add(id string, cfg sonicos.ClientConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[id]; exists {
		logging.Warning("firewall already registered", "firewall", id)
		return nil
	}

	if cfg.Logger == nil {
		cfg.Logger = logging.WithComponent("sonicos").With("firewall", id)
	}
	client, err := sonicos.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("firewall %s: %w", id, err)
	}

	m.clients[id] = client
	m.order = append(m.order, id)
	logging.Debug("firewall added", "firewall", id, "client", client.String())
	return nil
}

// Remove closes and forgets the client for id. If id was the first
// firewall, the next one added after it takes its place.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	client, exists := m.clients[id]
	delete(m.clients, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	m.mu.Unlock()

	if exists {
		client.Close()
		logging.Debug("firewall removed", "firewall", id)
	}
}

// Get returns the client for id. An empty id selects the first firewall added.
func (m *Manager) Get(id string) (*sonicos.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id == "" && len(m.order) > 0 {
		id = m.order[0]
	}
	client, ok := m.clients[id]
	if !ok {
		if id == "" {
			return nil, fmt.Errorf("%w: no firewall configured", ErrUnknownFirewall)
		}
		return nil, fmt.Errorf("%w %q", ErrUnknownFirewall, id)
	}
	return client, nil
}

// IDs returns the registered firewall IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered firewalls.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Close logs out every reused session and empties the manager.
func (m *Manager) Close() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*sonicos.Client)
	m.order = nil
	m.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
