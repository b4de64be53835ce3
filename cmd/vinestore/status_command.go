package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vinestore/internal/store"
)

type statusOutput struct {
	Socket     string `json:"socket"`
	Reachable  bool   `json:"reachable"`
	InstanceID string `json:"instance_id,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}
			out := statusOutput{Socket: socket}

			dialErr := ctx.withClient(cmd.Context(), func(client *store.Client) error {
				out.Reachable = client.Ping(cmd.Context())
				out.InstanceID = client.InstanceID()
				out.SessionID = client.SessionID()
				return nil
			})
			if dialErr != nil {
				out.Error = dialErr.Error()
			}

			// The JSON payload is emitted even on failure so scripts see
			// the error detail; the non-zero exit still signals it.
			if ctx.jsonOutput() {
				if err := printJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				return dialErr
			}
			if dialErr != nil {
				return dialErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Socket", "Reachable", "Instance"},
				[][]string{{out.Socket, yesNo(out.Reachable), out.InstanceID}},
				nil,
			))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
