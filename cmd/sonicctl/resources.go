package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/RiskIdent/sonicapi/internal/logging"
	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

// resource describes the subcommands of one object family.
type resource struct {
	use     string
	aliases []string
	noun    string
	// versioned families take --kind
	versioned bool

	get    func(c *sonicos.Client, kind sonicos.AddressKind, name string) (*sonicos.Result, error)
	create func(c *sonicos.Client, kind sonicos.AddressKind, name, payload string) (int, error)
	update func(c *sonicos.Client, kind sonicos.AddressKind, name, payload string) (int, error)
	del    func(c *sonicos.Client, kind sonicos.AddressKind, name string) (int, error)
}

var addressObjectsCmd = resource{
	use:       "address",
	aliases:   []string{"addresses", "address-object"},
	noun:      "address object",
	versioned: true,
	get:       (*sonicos.Client).GetFirewallAddress,
	create:    (*sonicos.Client).CreateFirewallAddress,
	update:    (*sonicos.Client).UpdateFirewallAddress,
	del:       (*sonicos.Client).DeleteFirewallAddress,
}

var addressGroupsCmd = resource{
	use:       "group",
	aliases:   []string{"groups", "address-group"},
	noun:      "address group",
	versioned: true,
	get:       (*sonicos.Client).GetAddressGroup,
	create:    (*sonicos.Client).CreateAddressGroup,
	update:    (*sonicos.Client).UpdateAddressGroup,
	del:       (*sonicos.Client).DeleteAddressGroup,
}

// Service objects and groups cannot be created or updated.
var serviceObjectsCmd = resource{
	use:     "service",
	aliases: []string{"services", "service-object"},
	noun:    "service object",
	get: func(c *sonicos.Client, _ sonicos.AddressKind, name string) (*sonicos.Result, error) {
		return c.GetServiceObject(name)
	},
	del: func(c *sonicos.Client, _ sonicos.AddressKind, name string) (int, error) {
		return c.DeleteServiceObject(name)
	},
}

var serviceGroupsCmd = resource{
	use:     "service-group",
	aliases: []string{"service-groups"},
	noun:    "service group",
	get: func(c *sonicos.Client, _ sonicos.AddressKind, name string) (*sonicos.Result, error) {
		return c.GetServiceGroup(name)
	},
	del: func(c *sonicos.Client, _ sonicos.AddressKind, name string) (int, error) {
		return c.DeleteServiceGroup(name)
	},
}

func newResourceCmd(a *app, r resource) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:     r.use,
		Aliases: r.aliases,
		Short:   fmt.Sprintf("Manage %ss", r.noun),
	}
	if r.versioned {
		cmd.PersistentFlags().StringVar(&kind, "kind", string(sonicos.KindIPv4), "Address kind: ipv4, ipv6, mac or fqdn")
	}

	parseKind := func() (sonicos.AddressKind, error) {
		if !r.versioned {
			return "", nil
		}
		return sonicos.ParseAddressKind(kind)
	}

	show := func(cmd *cobra.Command, name string) error {
		k, err := parseKind()
		if err != nil {
			return err
		}
		client, err := a.connect(cmd)
		if err != nil {
			return err
		}
		res, err := r.get(client, k, name)
		if err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("device answered %d %s", res.Status, http.StatusText(res.Status))
		}
		return a.render(res.Document)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %ss", r.noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd, "")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: fmt.Sprintf("Show one %s", r.noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return show(cmd, args[0])
		},
	})

	write := func(use, title, verb string, op func(c *sonicos.Client, kind sonicos.AddressKind, name, payload string) (int, error)) *cobra.Command {
		var data, file string
		c := &cobra.Command{
			Use:   use + " NAME",
			Short: fmt.Sprintf("%s a %s from a JSON payload", title, r.noun),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				k, err := parseKind()
				if err != nil {
					return err
				}
				payload, err := a.readPayload(data, file)
				if err != nil {
					return err
				}
				client, err := a.connect(cmd)
				if err != nil {
					return err
				}
				status, err := op(client, k, args[0], payload)
				if err != nil {
					return err
				}
				a.report(cmd, r.noun, args[0], verb, status)
				return nil
			},
		}
		c.Flags().StringVarP(&data, "data", "d", "", "JSON payload")
		c.Flags().StringVar(&file, "file", "", "Read the JSON payload from a file, - for stdin")
		c.MarkFlagsMutuallyExclusive("data", "file")
		c.MarkFlagsOneRequired("data", "file")
		return c
	}
	if r.create != nil {
		cmd.AddCommand(write("create", "Create", "created", r.create))
	}
	if r.update != nil {
		cmd.AddCommand(write("update", "Update", "updated", r.update))
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: fmt.Sprintf("Delete a %s", r.noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind()
			if err != nil {
				return err
			}
			client, err := a.connect(cmd)
			if err != nil {
				return err
			}
			status, err := r.del(client, k, args[0])
			if err != nil {
				return err
			}
			a.report(cmd, r.noun, args[0], "deleted", status)
			return nil
		},
	})
	return cmd
}

// readPayload returns --data, or the contents of --file where "-" is stdin.
func (a *app) readPayload(data, file string) (string, error) {
	if file == "" {
		return data, nil
	}

	var (
		raw []byte
		err error
	)
	if file == "-" {
		raw, err = io.ReadAll(a.stdin)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}
	return string(raw), nil
}

func (a *app) report(cmd *cobra.Command, noun, name, verb string, status int) {
	logging.FromContext(cmd.Context()).Info(noun+" "+verb, "name", name, "status", status)
	fmt.Fprintf(a.stdout, "%s %q %s and committed\n", noun, name, verb)
}
