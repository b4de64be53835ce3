package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vinestore/internal/store"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <object-id>...",
		Short: "Remove objects from the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]store.ObjectID, 0, len(args))
			for _, arg := range args {
				id, err := store.ParseObjectID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return ctx.withClient(cmd.Context(), func(client *store.Client) error {
				removed := 0
				for _, id := range ids {
					ok, err := client.Delete(cmd.Context(), id)
					if err != nil {
						return err
					}
					if ok {
						removed++
					} else {
						fmt.Fprintf(cmd.ErrOrStderr(), "object %s not found\n", id)
					}
				}
				if ctx.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), map[string]int{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d of %d objects\n", removed, len(ids))
				return nil
			})
		},
	}
}
