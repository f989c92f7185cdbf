package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RiskIdent/sonicapi/internal/firewalls"
)

func newFirewallsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firewalls",
		Short: "Inspect the firewalls of the configuration file",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured firewalls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath == "" {
				return errors.New("firewalls list requires --config")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.manager, err = firewalls.FromConfig(cfg)
			if err != nil {
				return err
			}
			return a.listFirewalls(a.manager)
		},
	}

	cmd.AddCommand(list)
	return cmd
}

// listFirewalls prints every registered firewall without contacting it.
// The first entry is the one used when --firewall is not given.
func (a *app) listFirewalls(m *firewalls.Manager) error {
	def, err := m.Get("")
	if err != nil {
		return err
	}

	entries := make([]any, 0, m.Count())
	rows := make([][]string, 0, m.Count())
	for _, id := range m.IDs() {
		client, err := m.Get(id)
		if err != nil {
			return err
		}
		cc := client.Config()
		isDefault := client == def
		entries = append(entries, map[string]any{
			"id":            id,
			"host":          cc.Host,
			"port":          cc.Port,
			"username":      cc.Username,
			"reuse_session": cc.ReuseSession,
			"commit_policy": cc.CommitPolicy.String(),
			"default":       isDefault,
		})
		marker := ""
		if isDefault {
			marker = "*"
		}
		rows = append(rows, []string{marker, id, cc.Host, strconv.Itoa(cc.Port), cc.Username, cc.CommitPolicy.String()})
	}

	if a.output != outputTable {
		return a.render(map[string]any{"firewalls": entries})
	}
	renderTable(a.stdout, []string{"", "ID", "Host", "Port", "User", "Commit policy"}, rows)
	fmt.Fprintf(a.stdout, "%d firewall(s) configured\n", m.Count())
	return nil
}
