package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/RiskIdent/sonicapi/internal/logging"
	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

func newPendingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show, commit or discard staged configuration changes",
	}

	var query sonicos.PendingQuery
	show := &cobra.Command{
		Use:   "show",
		Short: "Show staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect(cmd)
			if err != nil {
				return err
			}
			res, err := client.GetPendingChanges(query)
			if err != nil {
				return err
			}
			if !res.OK() {
				return fmt.Errorf("device answered %d %s", res.Status, http.StatusText(res.Status))
			}
			return a.render(res.Document)
		},
	}
	show.Flags().StringVar(&query.Path, "path", "", "Only changes below this path, e.g. address-objects/ipv4")
	show.Flags().StringVar(&query.Filter, "filter", "", "Raw query string appended to the request, e.g. name=web")

	commit := &cobra.Command{
		Use:   "commit",
		Short: "Commit staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.pendingAction(cmd, "committed", (*sonicos.Client).CommitPendingChanges)
		},
	}

	discard := &cobra.Command{
		Use:   "discard",
		Short: "Discard staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.pendingAction(cmd, "discarded", (*sonicos.Client).DeletePendingChanges)
		},
	}

	cmd.AddCommand(show, commit, discard)
	return cmd
}

func (a *app) pendingAction(cmd *cobra.Command, verb string, op func(*sonicos.Client) (int, error)) error {
	client, err := a.connect(cmd)
	if err != nil {
		return err
	}
	status, err := op(client)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("pending changes not %s: device answered %d %s", verb, status, http.StatusText(status))
	}
	logging.FromContext(cmd.Context()).Info("pending changes "+verb, "status", status)
	fmt.Fprintf(a.stdout, "pending changes %s\n", verb)
	return nil
}
